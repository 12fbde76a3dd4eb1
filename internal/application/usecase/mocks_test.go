package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/dreschagin/buoywatch/internal/application/dto"
	"github.com/dreschagin/buoywatch/internal/application/port"
	"github.com/dreschagin/buoywatch/internal/domain/entity"
)

// Hand-rolled mocks shared by the usecase tests.

type mockNotifier struct {
	mu         sync.Mutex
	snapshots  []*dto.StationSnapshotDTO
	toasts     []*dto.ToastDTO
	spotlights []*dto.SpotlightDTO
}

func (m *mockNotifier) BroadcastSnapshot(snapshot *dto.StationSnapshotDTO) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots = append(m.snapshots, snapshot)
}

func (m *mockNotifier) BroadcastToast(toast *dto.ToastDTO) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.toasts = append(m.toasts, toast)
}

func (m *mockNotifier) BroadcastSpotlight(spotlight *dto.SpotlightDTO) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.spotlights = append(m.spotlights, spotlight)
}

func (m *mockNotifier) ClientCount() int { return 1 }

func (m *mockNotifier) spotlightStations() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.spotlights))
	for _, s := range m.spotlights {
		out = append(out, s.StationID)
	}
	return out
}

type mockMetrics struct {
	mu     sync.Mutex
	counts map[string]float64
}

func newMockMetrics() *mockMetrics {
	return &mockMetrics{counts: make(map[string]float64)}
}

func (m *mockMetrics) Count(name string, delta float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counts[name] += delta
}

func (m *mockMetrics) Flush(ctx context.Context) error { return nil }
func (m *mockMetrics) Close() error                    { return nil }

func (m *mockMetrics) count(name string) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counts[name]
}

type mockMeasurementSource struct {
	latest    map[string][]entity.Measurement
	series    map[int64][]entity.Measurement
	latestErr error
	seriesErr error

	fetchSeriesCalls int
}

func (m *mockMeasurementSource) FetchLatest(ctx context.Context, stationID string, cutoff time.Time) ([]entity.Measurement, error) {
	if m.latestErr != nil {
		return nil, m.latestErr
	}
	return m.latest[stationID], nil
}

func (m *mockMeasurementSource) FetchSeries(ctx context.Context, parameterID int64, start, end time.Time) ([]entity.Measurement, error) {
	m.fetchSeriesCalls++
	if m.seriesErr != nil {
		return nil, m.seriesErr
	}
	return m.series[parameterID], nil
}

type mockParameterCatalog struct {
	parameters map[string][]entity.Parameter
	byID       map[int64]*entity.Parameter
}

func (m *mockParameterCatalog) ListParameters(ctx context.Context, stationID string) ([]entity.Parameter, error) {
	return m.parameters[stationID], nil
}

func (m *mockParameterCatalog) GetParameter(ctx context.Context, parameterID int64) (*entity.Parameter, error) {
	parameter, ok := m.byID[parameterID]
	if !ok {
		return nil, fmt.Errorf("parameter %d not found", parameterID)
	}
	return parameter, nil
}

type mockThresholdStore struct {
	thresholds map[int64]*entity.Threshold
	err        error
}

func (m *mockThresholdStore) FetchThreshold(ctx context.Context, stationID string, parameterID int64) (*entity.Threshold, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.thresholds[parameterID], nil
}

type mockCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	sets    int
	hits    int
}

func newMockCache() *mockCache {
	return &mockCache{entries: make(map[string][]byte)}
}

func (m *mockCache) Get(ctx context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.entries[key]
	if !ok {
		return fmt.Errorf("cache miss: %s", key)
	}
	m.hits++
	return json.Unmarshal(raw, dest)
}

func (m *mockCache) Set(ctx context.Context, key string, value interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.entries[key] = raw
	m.sets++
	return nil
}

func (m *mockCache) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

type mockExportStorage struct {
	objects map[string][]byte
	err     error
}

func newMockExportStorage() *mockExportStorage {
	return &mockExportStorage{objects: make(map[string][]byte)}
}

func (m *mockExportStorage) PutObject(ctx context.Context, key, contentType string, body []byte) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.objects[key] = body
	return "https://exports.example.com/" + key, nil
}

type mockExportMetadataRepository struct {
	records []port.ExportMetadata
	err     error
}

func (m *mockExportMetadataRepository) Put(ctx context.Context, record port.ExportMetadata) error {
	if m.err != nil {
		return m.err
	}
	m.records = append(m.records, record)
	return nil
}

func (m *mockExportMetadataRepository) List(ctx context.Context, teamID string, limit int) ([]port.ExportMetadata, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make([]port.ExportMetadata, 0, len(m.records))
	for i := len(m.records) - 1; i >= 0 && len(out) < limit; i-- {
		if m.records[i].TeamID == teamID {
			out = append(out, m.records[i])
		}
	}
	return out, nil
}

type mockAlertFeed struct {
	events []entity.AlertEvent
	err    error
}

func (m *mockAlertFeed) FetchAlerts(ctx context.Context, criteria port.AlertCriteria, offset, limit int) ([]entity.AlertEvent, error) {
	if m.err != nil {
		return nil, m.err
	}
	if offset >= len(m.events) {
		return []entity.AlertEvent{}, nil
	}
	end := offset + limit
	if end > len(m.events) {
		end = len(m.events)
	}
	return m.events[offset:end], nil
}
