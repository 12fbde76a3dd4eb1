package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dreschagin/buoywatch/internal/application/dto"
	"github.com/dreschagin/buoywatch/internal/application/port"
	"github.com/dreschagin/buoywatch/internal/domain/entity"
	"github.com/dreschagin/buoywatch/internal/domain/service"
	"github.com/dreschagin/buoywatch/pkg/logger"
)

// DefaultFreshnessWindow — срез давности для "последних" измерений
const DefaultFreshnessWindow = 2 * time.Hour

// RefreshLatestUseCase собирает снимок станции: последние значения всех
// параметров, приведенные к предпочитаемым единицам и раскрашенные по
// порогам.
//
// Параллельные запросы одной станции защищены токеном поколения:
// результат устаревшего запроса отбрасывается, а не затирает свежий
type RefreshLatestUseCase struct {
	source      port.MeasurementSource
	catalog     port.ParameterCatalog
	thresholds  port.ThresholdStore
	preferences *service.PreferenceStore
	converter   *service.UnitConverter
	resolver    *service.CategoryResolver
	classifier  *service.ThresholdClassifier
	notifier    port.NotificationService
	metrics     port.MetricsPublisher
	logger      *logger.Logger

	mu          sync.Mutex
	generations map[string]uint64
}

// NewRefreshLatestUseCase создает юзкейс обновления снимка
func NewRefreshLatestUseCase(
	source port.MeasurementSource,
	catalog port.ParameterCatalog,
	thresholds port.ThresholdStore,
	preferences *service.PreferenceStore,
	converter *service.UnitConverter,
	resolver *service.CategoryResolver,
	classifier *service.ThresholdClassifier,
	notifier port.NotificationService,
	metrics port.MetricsPublisher,
	logger *logger.Logger,
) *RefreshLatestUseCase {
	return &RefreshLatestUseCase{
		source:      source,
		catalog:     catalog,
		thresholds:  thresholds,
		preferences: preferences,
		converter:   converter,
		resolver:    resolver,
		classifier:  classifier,
		notifier:    notifier,
		metrics:     metrics,
		logger:      logger,
		generations: make(map[string]uint64),
	}
}

// Execute строит снимок станции и, если результат не устарел,
// рассылает его подписчикам
func (uc *RefreshLatestUseCase) Execute(ctx context.Context, stationID string) (*dto.StationSnapshotDTO, error) {
	if stationID == "" {
		return nil, fmt.Errorf("station id is required")
	}

	generation := uc.nextGeneration(stationID)

	now := time.Now().UTC()
	cutoff := now.Add(-DefaultFreshnessWindow)

	parameters, err := uc.catalog.ListParameters(ctx, stationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list parameters: %w", err)
	}

	measurements, err := uc.source.FetchLatest(ctx, stationID, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch latest measurements: %w", err)
	}

	latest := make(map[int64]entity.Measurement, len(measurements))
	for _, m := range measurements {
		current, ok := latest[m.ParameterID]
		if !ok || m.Timestamp.After(current.Timestamp) {
			latest[m.ParameterID] = m
		}
	}

	prefs := uc.preferences.Snapshot()

	tiles := make([]*dto.ParameterTileDTO, 0, len(parameters))
	for _, parameter := range parameters {
		tiles = append(tiles, uc.buildTile(ctx, parameter, latest, prefs))
	}

	snapshot := dto.NewStationSnapshotDTO(stationID, now, tiles)

	if uc.stale(stationID, generation) {
		uc.logger.Debug("Discarding stale snapshot", "station_id", stationID)
		return snapshot, nil
	}

	if uc.notifier != nil {
		uc.notifier.BroadcastSnapshot(snapshot)
	}
	if uc.metrics != nil {
		uc.metrics.Count(port.CounterSnapshotsRefreshed, 1)
	}

	return snapshot, nil
}

// buildTile раскрашивает и конвертирует один параметр.
// Порог сверяется с НАТИВНЫМ значением до конвертации: пороги хранятся
// в нативных единицах параметра
func (uc *RefreshLatestUseCase) buildTile(
	ctx context.Context,
	parameter entity.Parameter,
	latest map[int64]entity.Measurement,
	prefs service.UnitPreferences,
) *dto.ParameterTileDTO {
	tile := &dto.ParameterTileDTO{
		ParameterID: parameter.ParameterID,
		DisplayName: parameter.DisplayName,
		Unit:        parameter.NativeUnit,
		Depth:       parameter.Depth,
	}

	measurement, ok := latest[parameter.ParameterID]
	if !ok {
		tile.Severity = uc.classifier.Classify(nil, nil).String()
		return tile
	}
	tile.MeasuredAt = measurement.Timestamp

	threshold, err := uc.thresholds.FetchThreshold(ctx, parameter.StationID, parameter.ParameterID)
	if err != nil {
		// Сбой хранилища порогов деградирует плитку до серого,
		// но не валит снимок целиком
		uc.logger.Error("Failed to fetch threshold", err, "parameter_id", parameter.ParameterID)
		threshold = nil
	}
	tile.Severity = uc.classifier.Classify(measurement.Value, threshold).String()

	category, ok := uc.resolver.Resolve(parameter.DisplayName, parameter.NativeUnit)
	if !ok {
		tile.Value = measurement.Value
		return tile
	}
	preferred, ok := prefs.Preferred(category)
	if !ok {
		tile.Value = measurement.Value
		return tile
	}

	value, unit := uc.converter.ConvertMeasurement(
		measurement.Value,
		measurement.Unit,
		category,
		preferred,
	)
	tile.Value = value
	tile.Unit = unit
	return tile
}

func (uc *RefreshLatestUseCase) nextGeneration(stationID string) uint64 {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	uc.generations[stationID]++
	return uc.generations[stationID]
}

func (uc *RefreshLatestUseCase) stale(stationID string, generation uint64) bool {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	return uc.generations[stationID] != generation
}
