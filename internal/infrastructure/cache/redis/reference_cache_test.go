package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/dreschagin/buoywatch/internal/domain/entity"
	"github.com/dreschagin/buoywatch/pkg/logger"
)

type memoryCache struct {
	entries map[string][]byte
	sets    int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string][]byte)}
}

func (c *memoryCache) Get(_ context.Context, key string, dest interface{}) error {
	raw, ok := c.entries[key]
	if !ok {
		return fmt.Errorf("cache miss: key not found")
	}
	return json.Unmarshal(raw, dest)
}

func (c *memoryCache) Set(_ context.Context, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.entries[key] = raw
	c.sets++
	return nil
}

func (c *memoryCache) Delete(_ context.Context, key string) error {
	delete(c.entries, key)
	return nil
}

type countingCatalog struct {
	parameters map[string][]entity.Parameter
	listCalls  int
}

func (c *countingCatalog) ListParameters(_ context.Context, stationID string) ([]entity.Parameter, error) {
	c.listCalls++
	return c.parameters[stationID], nil
}

func (c *countingCatalog) GetParameter(_ context.Context, parameterID int64) (*entity.Parameter, error) {
	for _, params := range c.parameters {
		for _, p := range params {
			if p.ParameterID == parameterID {
				return &p, nil
			}
		}
	}
	return nil, fmt.Errorf("parameter %d not found", parameterID)
}

type countingThresholdStore struct {
	thresholds map[int64]*entity.Threshold
	fetchCalls int
}

func (s *countingThresholdStore) FetchThreshold(_ context.Context, _ string, parameterID int64) (*entity.Threshold, error) {
	s.fetchCalls++
	return s.thresholds[parameterID], nil
}

func TestCachedParameterCatalogServesSecondReadFromCache(t *testing.T) {
	catalog := &countingCatalog{parameters: map[string][]entity.Parameter{
		"buoy-1": {
			{ParameterID: 1, StationID: "buoy-1", DisplayName: "Water Temperature", NativeUnit: "°C"},
			{ParameterID: 2, StationID: "buoy-1", DisplayName: "Wind Speed", NativeUnit: "m/s"},
		},
	}}
	cache := newMemoryCache()
	cached := NewCachedParameterCatalog(catalog, cache, logger.New("error"))

	first, err := cached.ListParameters(context.Background(), "buoy-1")
	if err != nil {
		t.Fatalf("first read failed: %v", err)
	}
	second, err := cached.ListParameters(context.Background(), "buoy-1")
	if err != nil {
		t.Fatalf("second read failed: %v", err)
	}

	if catalog.listCalls != 1 {
		t.Fatalf("expected 1 upstream call, got %d", catalog.listCalls)
	}
	if cache.sets != 1 {
		t.Fatalf("expected 1 cache write, got %d", cache.sets)
	}
	if len(first) != 2 || len(second) != 2 {
		t.Fatalf("expected 2 parameters on both reads, got %d and %d", len(first), len(second))
	}
	if second[0].DisplayName != "Water Temperature" {
		t.Fatalf("cached parameter lost its name: %+v", second[0])
	}
}

func TestCachedThresholdStoreRoundTripsTaggedUnion(t *testing.T) {
	low, high := 0.0, 20.0
	store := &countingThresholdStore{thresholds: map[int64]*entity.Threshold{
		1: {
			ID:     "temp-global",
			Scope:  entity.ThresholdScopeGlobal,
			Ranges: entity.ObjectShapeRanges(&[2]*float64{&low, &high}, nil, nil),
		},
	}}
	cache := newMemoryCache()
	cached := NewCachedThresholdStore(store, cache, logger.New("error"))

	first, err := cached.FetchThreshold(context.Background(), "buoy-1", 1)
	if err != nil {
		t.Fatalf("first fetch failed: %v", err)
	}
	second, err := cached.FetchThreshold(context.Background(), "buoy-1", 1)
	if err != nil {
		t.Fatalf("second fetch failed: %v", err)
	}

	if store.fetchCalls != 1 {
		t.Fatalf("expected 1 upstream fetch, got %d", store.fetchCalls)
	}
	if second == nil || second.ID != first.ID {
		t.Fatalf("cached threshold mismatch: %+v", second)
	}
	if len(second.Ranges.Bands()) != len(first.Ranges.Bands()) {
		t.Fatal("cached threshold lost its bands after round trip")
	}
}

func TestCachedThresholdStoreDoesNotCacheAbsence(t *testing.T) {
	store := &countingThresholdStore{thresholds: map[int64]*entity.Threshold{}}
	cache := newMemoryCache()
	cached := NewCachedThresholdStore(store, cache, logger.New("error"))

	for i := 0; i < 2; i++ {
		threshold, err := cached.FetchThreshold(context.Background(), "buoy-1", 7)
		if err != nil {
			t.Fatalf("fetch failed: %v", err)
		}
		if threshold != nil {
			t.Fatalf("expected no threshold, got %+v", threshold)
		}
	}

	if store.fetchCalls != 2 {
		t.Fatalf("expected absence to fall through both times, got %d fetches", store.fetchCalls)
	}
	if cache.sets != 0 {
		t.Fatalf("expected no cache writes for absent threshold, got %d", cache.sets)
	}
}
