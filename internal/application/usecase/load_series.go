package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/dreschagin/buoywatch/internal/application/dto"
	"github.com/dreschagin/buoywatch/internal/application/port"
	"github.com/dreschagin/buoywatch/internal/domain/entity"
	"github.com/dreschagin/buoywatch/internal/domain/service"
	"github.com/dreschagin/buoywatch/pkg/logger"
)

// FillMode — стратегия заполнения пропусков на сетке
type FillMode string

const (
	FillForward FillMode = "forward"
	FillNearest FillMode = "nearest"
)

// ErrStaleSeriesRequest возвращается, когда за время загрузки успел
// стартовать более новый запрос и результат этого уже никому не нужен
var ErrStaleSeriesRequest = fmt.Errorf("series request superseded by a newer one")

// SeriesQuery — запрос выровненных серий
type SeriesQuery struct {
	ParameterIDs []int64
	Start        time.Time
	End          time.Time
	Cadence      time.Duration
	Fill         FillMode
	// Tolerance действует только для FillNearest; ноль — половина шага
	Tolerance time.Duration
}

// LoadSeriesUseCase загружает исторические серии нескольких параметров,
// конвертирует их в предпочитаемые единицы и выравнивает на общую сетку.
//
// Конвертация выполняется ДО заполнения: перенесенное значение всегда
// совпадает с последним конвертированным
type LoadSeriesUseCase struct {
	source      port.MeasurementSource
	catalog     port.ParameterCatalog
	preferences *service.PreferenceStore
	converter   *service.UnitConverter
	resolver    *service.CategoryResolver
	aligner     *service.GridAligner
	cache       port.Cache
	logger      *logger.Logger

	generation atomic.Uint64
}

// NewLoadSeriesUseCase создает юзкейс загрузки серий
func NewLoadSeriesUseCase(
	source port.MeasurementSource,
	catalog port.ParameterCatalog,
	preferences *service.PreferenceStore,
	converter *service.UnitConverter,
	resolver *service.CategoryResolver,
	aligner *service.GridAligner,
	cache port.Cache,
	logger *logger.Logger,
) *LoadSeriesUseCase {
	return &LoadSeriesUseCase{
		source:      source,
		catalog:     catalog,
		preferences: preferences,
		converter:   converter,
		resolver:    resolver,
		aligner:     aligner,
		cache:       cache,
		logger:      logger,
	}
}

// Execute выполняет запрос. Каждый вызов делает предыдущие незавершенные
// запросы устаревшими: их результаты отбрасываются с ErrStaleSeriesRequest
func (uc *LoadSeriesUseCase) Execute(ctx context.Context, query SeriesQuery) (*dto.AlignedSeriesDTO, error) {
	if len(query.ParameterIDs) == 0 {
		return nil, fmt.Errorf("at least one parameter id is required")
	}
	if !query.End.After(query.Start) {
		return nil, fmt.Errorf("invalid time range: end must be after start")
	}
	if query.Cadence <= 0 {
		query.Cadence = service.DefaultCadence
	}
	if query.Fill == "" {
		query.Fill = FillForward
	}
	if query.Fill != FillForward && query.Fill != FillNearest {
		return nil, fmt.Errorf("unsupported fill mode: %s", query.Fill)
	}

	generation := uc.generation.Add(1)
	prefs := uc.preferences.Snapshot()

	cacheKey := uc.cacheKey(query, prefs)
	if uc.cache != nil {
		var cached dto.AlignedSeriesDTO
		if err := uc.cache.Get(ctx, cacheKey, &cached); err == nil {
			uc.logger.Debug("Aligned series served from cache", "key", cacheKey)
			return &cached, nil
		}
	}

	grid := uc.aligner.BuildGrid(query.Start, query.End, query.Cadence)

	tolerance := query.Tolerance
	if tolerance <= 0 {
		tolerance = query.Cadence / 2
	}

	inputs := make([]service.SeriesInput, 0, len(query.ParameterIDs))
	units := make([]string, 0, len(query.ParameterIDs))
	for _, parameterID := range query.ParameterIDs {
		input, unit, err := uc.loadColumn(ctx, parameterID, query, prefs)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, input)
		units = append(units, unit)
	}

	if uc.generation.Load() != generation {
		return nil, ErrStaleSeriesRequest
	}

	var table *service.AlignedTable
	switch query.Fill {
	case FillNearest:
		table = &service.AlignedTable{Grid: grid}
		for _, input := range inputs {
			table.Columns = append(table.Columns, service.AlignedColumn{
				Label:  input.Label,
				Values: uc.aligner.NearestFill(input.Measurements, grid, tolerance),
			})
		}
	default:
		table = uc.aligner.AlignTable(grid, inputs...)
	}

	result := dto.FromAlignedTable(table, query.Cadence, query.ParameterIDs, units)

	if uc.cache != nil {
		if err := uc.cache.Set(ctx, cacheKey, result); err != nil {
			uc.logger.Warn("Failed to cache aligned series", "key", cacheKey, "error", err)
		}
	}

	return result, nil
}

// Invalidate сбрасывает кешированный результат запроса
func (uc *LoadSeriesUseCase) Invalidate(ctx context.Context, query SeriesQuery) error {
	if uc.cache == nil {
		return nil
	}
	return uc.cache.Delete(ctx, uc.cacheKey(query, uc.preferences.Snapshot()))
}

// loadColumn загружает и конвертирует серию одного параметра
func (uc *LoadSeriesUseCase) loadColumn(
	ctx context.Context,
	parameterID int64,
	query SeriesQuery,
	prefs service.UnitPreferences,
) (service.SeriesInput, string, error) {
	parameter, err := uc.catalog.GetParameter(ctx, parameterID)
	if err != nil {
		return service.SeriesInput{}, "", fmt.Errorf("failed to resolve parameter %d: %w", parameterID, err)
	}

	measurements, err := uc.source.FetchSeries(ctx, parameterID, query.Start, query.End)
	if err != nil {
		return service.SeriesInput{}, "", fmt.Errorf("failed to fetch series for parameter %d: %w", parameterID, err)
	}

	unit := parameter.NativeUnit
	category, resolved := uc.resolver.Resolve(parameter.DisplayName, parameter.NativeUnit)
	preferred, hasPreference := "", false
	if resolved {
		preferred, hasPreference = prefs.Preferred(category)
	}
	if resolved && hasPreference {
		converted := make([]entity.Measurement, len(measurements))
		for i, m := range measurements {
			value, outUnit := uc.converter.ConvertMeasurement(
				m.Value,
				m.Unit,
				category,
				preferred,
			)
			m.Value = value
			m.Unit = outUnit
			converted[i] = m
			unit = outUnit
		}
		measurements = converted
	}

	return service.SeriesInput{
		Label:        parameter.LabelWithUnit(unit),
		Measurements: measurements,
	}, unit, nil
}

// cacheKey строит детерминированный ключ запроса; порядок параметров
// не влияет на ключ
func (uc *LoadSeriesUseCase) cacheKey(query SeriesQuery, prefs service.UnitPreferences) string {
	ids := append([]int64(nil), query.ParameterIDs...)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, fmt.Sprintf("%d", id))
	}

	units := make([]string, 0, len(prefs))
	for _, unit := range prefs {
		units = append(units, unit)
	}
	sort.Strings(units)

	return fmt.Sprintf("series:%s:%d:%d:%d:%s:%s",
		strings.Join(parts, ","),
		query.Start.UTC().Unix(),
		query.End.UTC().Unix(),
		int64(query.Cadence/time.Second),
		query.Fill,
		strings.Join(units, ","),
	)
}
