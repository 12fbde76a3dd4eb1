package redis

import (
	"context"

	"github.com/dreschagin/buoywatch/internal/application/port"
	"github.com/dreschagin/buoywatch/internal/domain/entity"
	"github.com/dreschagin/buoywatch/pkg/logger"
)

// CachedParameterCatalog decorates a parameter catalog with cache-aside
// reads. Parameter metadata is read-only reference data, so serving a
// slightly stale catalog is acceptable; InvalidateStation drops it.
type CachedParameterCatalog struct {
	catalog port.ParameterCatalog
	cache   port.Cache
	logger  *logger.Logger
}

// NewCachedParameterCatalog wraps a catalog with caching
func NewCachedParameterCatalog(catalog port.ParameterCatalog, cache port.Cache, logger *logger.Logger) *CachedParameterCatalog {
	return &CachedParameterCatalog{
		catalog: catalog,
		cache:   cache,
		logger:  logger,
	}
}

// ListParameters returns the station catalog, preferring the cache
func (c *CachedParameterCatalog) ListParameters(ctx context.Context, stationID string) ([]entity.Parameter, error) {
	key := ParametersKey(stationID)

	var cached []entity.Parameter
	if err := c.cache.Get(ctx, key, &cached); err == nil {
		c.logger.Debug("Parameter catalog served from cache", "station_id", stationID)
		return cached, nil
	}

	parameters, err := c.catalog.ListParameters(ctx, stationID)
	if err != nil {
		return nil, err
	}

	if err := c.cache.Set(ctx, key, parameters); err != nil {
		c.logger.Warn("Failed to cache parameter catalog", "station_id", stationID, "error", err)
	}

	return parameters, nil
}

// GetParameter passes through: per-id lookups are rare outside series
// loading and the postgres read is a primary-key hit
func (c *CachedParameterCatalog) GetParameter(ctx context.Context, parameterID int64) (*entity.Parameter, error) {
	return c.catalog.GetParameter(ctx, parameterID)
}

// CachedThresholdStore decorates a threshold store with cache-aside reads.
// Only resolved thresholds are cached; a station/parameter pair without a
// threshold falls through to the store so new specifications show up
// without an explicit invalidation.
type CachedThresholdStore struct {
	store  port.ThresholdStore
	cache  port.Cache
	logger *logger.Logger
}

// NewCachedThresholdStore wraps a threshold store with caching
func NewCachedThresholdStore(store port.ThresholdStore, cache port.Cache, logger *logger.Logger) *CachedThresholdStore {
	return &CachedThresholdStore{
		store:  store,
		cache:  cache,
		logger: logger,
	}
}

// FetchThreshold returns the effective threshold, preferring the cache
func (s *CachedThresholdStore) FetchThreshold(ctx context.Context, stationID string, parameterID int64) (*entity.Threshold, error) {
	key := ThresholdKey(stationID, parameterID)

	var cached entity.Threshold
	if err := s.cache.Get(ctx, key, &cached); err == nil {
		return &cached, nil
	}

	threshold, err := s.store.FetchThreshold(ctx, stationID, parameterID)
	if err != nil {
		return nil, err
	}
	if threshold == nil {
		return nil, nil
	}

	if err := s.cache.Set(ctx, key, threshold); err != nil {
		s.logger.Warn("Failed to cache threshold",
			"station_id", stationID,
			"parameter_id", parameterID,
			"error", err,
		)
	}

	return threshold, nil
}
