package usecase

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/dreschagin/buoywatch/internal/application/dto"
	"github.com/dreschagin/buoywatch/internal/application/port"
	"github.com/dreschagin/buoywatch/internal/domain/entity"
)

func TestExportSeriesWritesCSVAndMetadata(t *testing.T) {
	source := &mockMeasurementSource{
		series: map[int64][]entity.Measurement{
			1: {{ParameterID: 1, Timestamp: seriesBase.Add(5 * time.Minute), Value: floatPtr(12.5), Unit: "°C"}},
		},
	}
	loader := newSeriesFixture(source, seriesCatalog(), nil, nil)
	storage := newMockExportStorage()
	metadata := &mockExportMetadataRepository{}
	metrics := newMockMetrics()

	uc := NewExportSeriesUseCase(loader, storage, metadata, metrics, testLogger())

	result, err := uc.Execute(context.Background(), ExportRequest{
		TeamID: "team-1",
		Query: SeriesQuery{
			ParameterIDs: []int64{1},
			Start:        seriesBase,
			End:          seriesBase.Add(10 * time.Minute),
			Cadence:      10 * time.Minute,
		},
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if result.RowCount != 2 {
		t.Errorf("row count = %d, want 2", result.RowCount)
	}
	if !strings.HasPrefix(result.Key, "exports/team-1/") || !strings.HasSuffix(result.Key, ".csv") {
		t.Errorf("unexpected object key %q", result.Key)
	}

	body, ok := storage.objects[result.Key]
	if !ok {
		t.Fatal("expected the csv object to be uploaded")
	}
	lines := strings.Split(strings.TrimRight(string(body), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d lines", len(lines))
	}
	if lines[0] != "timestamp,Water Temperature (°C)" {
		t.Errorf("header = %q", lines[0])
	}
	if lines[1] != "2026-04-12T08:00:00Z," {
		t.Errorf("empty-cell row = %q", lines[1])
	}
	if lines[2] != "2026-04-12T08:10:00Z,12.5" {
		t.Errorf("value row = %q", lines[2])
	}

	if len(metadata.records) != 1 {
		t.Fatalf("expected one metadata record, got %d", len(metadata.records))
	}
	record := metadata.records[0]
	if record.TeamID != "team-1" || record.S3Key != result.Key || record.RowCount != 2 {
		t.Errorf("unexpected metadata record %+v", record)
	}
	if got := metrics.count(port.CounterExportsCreated); got != 1 {
		t.Errorf("expected export counter 1, got %v", got)
	}
}

func TestExportSeriesMetadataFailureIsNotFatal(t *testing.T) {
	source := &mockMeasurementSource{
		series: map[int64][]entity.Measurement{
			1: {{ParameterID: 1, Timestamp: seriesBase, Value: floatPtr(10), Unit: "°C"}},
		},
	}
	loader := newSeriesFixture(source, seriesCatalog(), nil, nil)
	metadata := &mockExportMetadataRepository{err: context.DeadlineExceeded}

	uc := NewExportSeriesUseCase(loader, newMockExportStorage(), metadata, nil, testLogger())

	result, err := uc.Execute(context.Background(), ExportRequest{
		TeamID: "team-1",
		Query: SeriesQuery{
			ParameterIDs: []int64{1},
			Start:        seriesBase,
			End:          seriesBase.Add(10 * time.Minute),
		},
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if result.URL == "" {
		t.Error("expected a download url even when the metadata write fails")
	}
}

func TestExportSeriesRequiresTeamAndStorage(t *testing.T) {
	loader := newSeriesFixture(&mockMeasurementSource{}, seriesCatalog(), nil, nil)

	uc := NewExportSeriesUseCase(loader, newMockExportStorage(), nil, nil, testLogger())
	if _, err := uc.Execute(context.Background(), ExportRequest{}); err == nil {
		t.Fatal("expected an error for a missing team id")
	}

	uc = NewExportSeriesUseCase(loader, nil, nil, nil, testLogger())
	if _, err := uc.Execute(context.Background(), ExportRequest{TeamID: "team-1"}); err == nil {
		t.Fatal("expected an error when storage is not configured")
	}
}

func TestRenderCSVQuotesLabels(t *testing.T) {
	series := &dto.AlignedSeriesDTO{
		Grid: []time.Time{seriesBase},
		Columns: []*dto.SeriesColumnDTO{
			{Label: `Salinity, surface`, Values: []*float64{floatPtr(35.104)}},
		},
	}

	body, err := RenderCSV(series)
	if err != nil {
		t.Fatalf("RenderCSV() error = %v", err)
	}
	lines := strings.Split(strings.TrimRight(string(body), "\n"), "\n")
	if lines[0] != `timestamp,"Salinity, surface"` {
		t.Errorf("header = %q", lines[0])
	}
	if lines[1] != "2026-04-12T08:00:00Z,35.104" {
		t.Errorf("row = %q", lines[1])
	}
}

func TestListExports(t *testing.T) {
	metadata := &mockExportMetadataRepository{
		records: []port.ExportMetadata{
			{ID: "e1", TeamID: "team-1"},
			{ID: "e2", TeamID: "team-2"},
			{ID: "e3", TeamID: "team-1"},
		},
	}
	uc := NewListExportsUseCase(metadata)

	records, err := uc.Execute(context.Background(), "team-1", 0)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].ID != "e3" {
		t.Errorf("expected newest-first ordering, got %s first", records[0].ID)
	}

	if _, err := uc.Execute(context.Background(), "", 10); err == nil {
		t.Fatal("expected an error for an empty team id")
	}
}

func TestBackfillAlertsPaginates(t *testing.T) {
	feed := &mockAlertFeed{
		events: []entity.AlertEvent{
			alertEvent("e1", "buoy-a", entity.AlertSeverityCritical, seriesBase),
			alertEvent("e2", "buoy-a", entity.AlertSeverityWarning, seriesBase),
			alertEvent("e3", "buoy-b", entity.AlertSeverityInfo, seriesBase),
		},
	}
	uc := NewBackfillAlertsUseCase(feed)

	page, err := uc.Execute(context.Background(), port.AlertCriteria{}, 1, 2)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if len(page) != 2 {
		t.Fatalf("expected 2 events, got %d", len(page))
	}
	if page[0].ID != "e2" || page[1].ID != "e3" {
		t.Errorf("unexpected page contents: %s, %s", page[0].ID, page[1].ID)
	}

	empty, err := uc.Execute(context.Background(), port.AlertCriteria{}, 10, 2)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("expected an empty page past the end, got %d", len(empty))
	}
}
