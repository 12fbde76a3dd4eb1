package handler

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dreschagin/buoywatch/pkg/logger"
)

func seriesRequest(t *testing.T, rawQuery string) *httptest.ResponseRecorder {
	t.Helper()

	h := NewSeriesAPIHandler(nil, 744*time.Hour, logger.New("error"))
	req := httptest.NewRequest("GET", "/api/v1/series?"+rawQuery, nil)
	rec := httptest.NewRecorder()
	h.GetSeries(rec, req)
	return rec
}

func TestGetSeriesRejectsInvalidQueries(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	start := now.Format(time.RFC3339)
	end := now.Add(2 * time.Hour).Format(time.RFC3339)

	tests := []struct {
		name     string
		rawQuery string
	}{
		{"missing parameter ids", "start=" + start + "&end=" + end},
		{"non-numeric parameter id", "parameter_ids=abc&start=" + start + "&end=" + end},
		{"malformed start", "parameter_ids=1&start=yesterday&end=" + end},
		{"start after end", "parameter_ids=1&start=" + end + "&end=" + start},
		{"range beyond limit", "parameter_ids=1&start=" + now.Add(-800*time.Hour).Format(time.RFC3339) + "&end=" + end},
		{"negative cadence", "parameter_ids=1&start=" + start + "&end=" + end + "&cadence=-5m"},
		{"cadence too fine for range", "parameter_ids=1&start=" + now.Add(-700*time.Hour).Format(time.RFC3339) + "&end=" + end + "&cadence=1s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := seriesRequest(t, tt.rawQuery)
			if rec.Code != 400 {
				t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestParseQueryAcceptsValidRange(t *testing.T) {
	h := NewSeriesAPIHandler(nil, 744*time.Hour, logger.New("error"))

	start := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	end := start.Add(6 * time.Hour)
	req := httptest.NewRequest("GET", "/api/v1/series?parameter_ids=1,2&start="+
		start.Format(time.RFC3339)+"&end="+end.Format(time.RFC3339)+"&cadence=30m&fill=nearest", nil)

	query, err := h.parseQuery(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(query.ParameterIDs) != 2 || query.ParameterIDs[0] != 1 || query.ParameterIDs[1] != 2 {
		t.Fatalf("unexpected parameter ids: %v", query.ParameterIDs)
	}
	if !query.Start.Equal(start) || !query.End.Equal(end) {
		t.Fatalf("range not preserved: %v..%v", query.Start, query.End)
	}
	if query.Cadence != 30*time.Minute {
		t.Fatalf("unexpected cadence: %v", query.Cadence)
	}
	if string(query.Fill) != "nearest" {
		t.Fatalf("unexpected fill mode: %v", query.Fill)
	}
}

func TestParseQueryAllowsCoarseCadenceOverLongRange(t *testing.T) {
	h := NewSeriesAPIHandler(nil, 744*time.Hour, logger.New("error"))

	start := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(720 * time.Hour)
	req := httptest.NewRequest("GET", "/api/v1/series?parameter_ids=1&start="+
		start.Format(time.RFC3339)+"&end="+end.Format(time.RFC3339)+"&cadence=6h", nil)

	if _, err := h.parseQuery(req); err != nil {
		t.Fatalf("coarse cadence over a month must be accepted, got: %v", err)
	}
}
