package usecase

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/dreschagin/buoywatch/internal/application/port"
	"github.com/dreschagin/buoywatch/internal/domain/entity"
	"github.com/dreschagin/buoywatch/internal/domain/service"
	"github.com/dreschagin/buoywatch/internal/domain/valueobject"
)

func floatPtr(v float64) *float64 { return &v }

func boundPair(min, max *float64) *[2]*float64 {
	return &[2]*float64{min, max}
}

func newRefreshFixture(source *mockMeasurementSource, catalog *mockParameterCatalog, thresholds *mockThresholdStore, notifier *mockNotifier, metrics *mockMetrics, prefs service.UnitPreferences) *RefreshLatestUseCase {
	return NewRefreshLatestUseCase(
		source,
		catalog,
		thresholds,
		service.NewPreferenceStore(prefs),
		service.NewUnitConverter(),
		service.NewCategoryResolver(),
		service.NewThresholdClassifier(),
		notifier,
		metrics,
		testLogger(),
	)
}

func TestRefreshLatestBuildsClassifiedSnapshot(t *testing.T) {
	now := time.Now().UTC()

	source := &mockMeasurementSource{
		latest: map[string][]entity.Measurement{
			"buoy-a": {
				{ParameterID: 1, StationID: "buoy-a", Timestamp: now.Add(-5 * time.Minute), Value: floatPtr(12.5), Unit: "°C"},
				// Stale reading superseded by the one above.
				{ParameterID: 1, StationID: "buoy-a", Timestamp: now.Add(-15 * time.Minute), Value: floatPtr(80), Unit: "°C"},
				{ParameterID: 3, StationID: "buoy-a", Timestamp: now.Add(-3 * time.Minute), Value: floatPtr(7.1), Unit: "pH"},
			},
		},
	}
	catalog := &mockParameterCatalog{
		parameters: map[string][]entity.Parameter{
			"buoy-a": {
				{ParameterID: 1, StationID: "buoy-a", DisplayName: "Water Temperature", NativeUnit: "°C"},
				{ParameterID: 2, StationID: "buoy-a", DisplayName: "Wind Speed", NativeUnit: "m/s"},
				{ParameterID: 3, StationID: "buoy-a", DisplayName: "pH", NativeUnit: "pH"},
			},
		},
	}
	thresholds := &mockThresholdStore{
		thresholds: map[int64]*entity.Threshold{
			1: {
				ID:    "t-1",
				Scope: entity.ThresholdScopeStation,
				Ranges: entity.ObjectShapeRanges(
					boundPair(nil, floatPtr(70)),
					boundPair(floatPtr(70), floatPtr(90)),
					boundPair(floatPtr(90), nil),
				),
			},
		},
	}
	notifier := &mockNotifier{}
	metrics := newMockMetrics()

	prefs := service.DefaultUnitPreferences()
	prefs[valueobject.Temperature] = "°F"

	uc := newRefreshFixture(source, catalog, thresholds, notifier, metrics, prefs)

	snapshot, err := uc.Execute(context.Background(), "buoy-a")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if len(snapshot.Tiles) != 3 {
		t.Fatalf("expected 3 tiles, got %d", len(snapshot.Tiles))
	}

	// Classification runs against the native value, conversion after.
	temperature := snapshot.Tiles[0]
	if temperature.Severity != valueobject.SeverityGreen.String() {
		t.Errorf("temperature severity = %s, want green", temperature.Severity)
	}
	if temperature.Value == nil || *temperature.Value != 54.5 {
		t.Errorf("temperature value = %v, want 54.5", temperature.Value)
	}
	if temperature.Unit != "°F" {
		t.Errorf("temperature unit = %s, want °F", temperature.Unit)
	}

	// No measurement within the freshness window degrades to gray.
	wind := snapshot.Tiles[1]
	if wind.Severity != valueobject.SeverityGray.String() {
		t.Errorf("wind severity = %s, want gray", wind.Severity)
	}
	if wind.Value != nil {
		t.Errorf("wind value = %v, want nil", wind.Value)
	}

	// Unresolvable category passes the native value through untouched.
	ph := snapshot.Tiles[2]
	if ph.Value == nil || *ph.Value != 7.1 {
		t.Errorf("ph value = %v, want 7.1", ph.Value)
	}
	if ph.Unit != "pH" {
		t.Errorf("ph unit = %s, want pH", ph.Unit)
	}

	if snapshot.Summary.OverallStatus != "ok" {
		t.Errorf("overall status = %s, want ok", snapshot.Summary.OverallStatus)
	}
	if len(notifier.snapshots) != 1 {
		t.Errorf("expected one broadcast snapshot, got %d", len(notifier.snapshots))
	}
	if got := metrics.count(port.CounterSnapshotsRefreshed); got != 1 {
		t.Errorf("expected refresh counter 1, got %v", got)
	}
}

func TestRefreshLatestThresholdStoreFailureDegradesToGray(t *testing.T) {
	now := time.Now().UTC()

	source := &mockMeasurementSource{
		latest: map[string][]entity.Measurement{
			"buoy-a": {
				{ParameterID: 1, StationID: "buoy-a", Timestamp: now, Value: floatPtr(95), Unit: "°C"},
			},
		},
	}
	catalog := &mockParameterCatalog{
		parameters: map[string][]entity.Parameter{
			"buoy-a": {
				{ParameterID: 1, StationID: "buoy-a", DisplayName: "Water Temperature", NativeUnit: "°C"},
			},
		},
	}
	thresholds := &mockThresholdStore{err: fmt.Errorf("store unavailable")}

	uc := newRefreshFixture(source, catalog, thresholds, &mockNotifier{}, newMockMetrics(), nil)

	snapshot, err := uc.Execute(context.Background(), "buoy-a")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if got := snapshot.Tiles[0].Severity; got != valueobject.SeverityGray.String() {
		t.Errorf("severity = %s, want gray on threshold store failure", got)
	}
}

func TestRefreshLatestRequiresStationID(t *testing.T) {
	uc := newRefreshFixture(&mockMeasurementSource{}, &mockParameterCatalog{}, &mockThresholdStore{}, nil, nil, nil)
	if _, err := uc.Execute(context.Background(), ""); err == nil {
		t.Fatal("expected an error for an empty station id")
	}
}

func TestRefreshLatestSourceErrorPropagates(t *testing.T) {
	source := &mockMeasurementSource{latestErr: fmt.Errorf("connection refused")}
	catalog := &mockParameterCatalog{}
	uc := newRefreshFixture(source, catalog, &mockThresholdStore{}, nil, nil, nil)

	if _, err := uc.Execute(context.Background(), "buoy-a"); err == nil {
		t.Fatal("expected the source error to propagate")
	}
}
