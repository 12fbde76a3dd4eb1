package service

import (
	"testing"
	"time"

	"github.com/dreschagin/buoywatch/internal/domain/entity"
	"github.com/dreschagin/buoywatch/internal/domain/valueobject"
)

var gridBase = time.Date(2026, 4, 12, 8, 0, 0, 0, time.UTC)

func TestGridAligner_BuildGrid(t *testing.T) {
	aligner := NewGridAligner()

	t.Run("aligned single point", func(t *testing.T) {
		grid := aligner.BuildGrid(gridBase, gridBase, DefaultCadence)
		if len(grid) != 1 || !grid[0].Equal(gridBase) {
			t.Fatalf("BuildGrid(t, t) = %v, want [t]", grid)
		}
	})

	t.Run("start after end is empty", func(t *testing.T) {
		grid := aligner.BuildGrid(gridBase, gridBase.Add(-time.Millisecond), DefaultCadence)
		if len(grid) != 0 {
			t.Fatalf("expected empty grid, got %v", grid)
		}
	})

	t.Run("unaligned start rounds up", func(t *testing.T) {
		start := gridBase.Add(3 * time.Minute)
		grid := aligner.BuildGrid(start, gridBase.Add(30*time.Minute), DefaultCadence)
		want := []time.Time{
			gridBase.Add(10 * time.Minute),
			gridBase.Add(20 * time.Minute),
			gridBase.Add(30 * time.Minute),
		}
		if len(grid) != len(want) {
			t.Fatalf("expected %d points, got %d", len(want), len(grid))
		}
		for i := range want {
			if !grid[i].Equal(want[i]) {
				t.Fatalf("grid[%d] = %v, want %v", i, grid[i], want[i])
			}
		}
	})

	t.Run("invalid cadence panics", func(t *testing.T) {
		defer func() {
			if recover() == nil {
				t.Fatalf("expected panic for non-positive cadence")
			}
		}()
		aligner.BuildGrid(gridBase, gridBase.Add(time.Hour), 0)
	})
}

func TestGridAligner_ForwardFill(t *testing.T) {
	aligner := NewGridAligner()
	grid := aligner.BuildGrid(gridBase, gridBase.Add(30*time.Minute), DefaultCadence)

	t.Run("empty series yields all nil", func(t *testing.T) {
		values := aligner.ForwardFill(nil, grid)
		if len(values) != len(grid) {
			t.Fatalf("expected %d slots, got %d", len(grid), len(values))
		}
		for i, v := range values {
			if v != nil {
				t.Fatalf("slot %d must be nil, got %v", i, *v)
			}
		}
	})

	t.Run("nil before first sample then carried forward", func(t *testing.T) {
		series := []entity.Measurement{
			{ParameterID: 1, Timestamp: gridBase.Add(15 * time.Minute), Value: entity.Float64Ptr(5)},
		}
		values := aligner.ForwardFill(series, grid)
		if values[0] != nil || values[1] != nil {
			t.Fatalf("slots before first sample must be nil")
		}
		for i := 2; i < len(values); i++ {
			if values[i] == nil || *values[i] != 5 {
				t.Fatalf("slot %d must carry 5 forward, got %v", i, values[i])
			}
		}
	})

	t.Run("unsorted input is sorted on a copy", func(t *testing.T) {
		series := []entity.Measurement{
			{ParameterID: 1, Timestamp: gridBase.Add(20 * time.Minute), Value: entity.Float64Ptr(2)},
			{ParameterID: 1, Timestamp: gridBase, Value: entity.Float64Ptr(1)},
		}
		values := aligner.ForwardFill(series, grid)
		if values[0] == nil || *values[0] != 1 {
			t.Fatalf("slot 0 must be 1, got %v", values[0])
		}
		if values[3] == nil || *values[3] != 2 {
			t.Fatalf("slot 3 must be 2, got %v", values[3])
		}
		if !series[0].Timestamp.After(series[1].Timestamp) {
			t.Fatalf("input slice order must not change")
		}
	})

	t.Run("gap samples stay gaps", func(t *testing.T) {
		series := []entity.Measurement{
			{ParameterID: 1, Timestamp: gridBase, Value: entity.Float64Ptr(3)},
			{ParameterID: 1, Timestamp: gridBase.Add(10 * time.Minute), Value: nil},
		}
		values := aligner.ForwardFill(series, grid)
		if values[0] == nil || *values[0] != 3 {
			t.Fatalf("slot 0 must be 3")
		}
		// A null sample supersedes the previous value and is preserved as a gap
		for i := 1; i < len(values); i++ {
			if values[i] != nil {
				t.Fatalf("slot %d must be a gap, got %v", i, *values[i])
			}
		}
	})
}

func TestGridAligner_NearestFill(t *testing.T) {
	aligner := NewGridAligner()
	grid := aligner.BuildGrid(gridBase, gridBase.Add(20*time.Minute), DefaultCadence)

	series := []entity.Measurement{
		{ParameterID: 1, Timestamp: gridBase.Add(1 * time.Minute), Value: entity.Float64Ptr(10)},
		{ParameterID: 1, Timestamp: gridBase.Add(18 * time.Minute), Value: entity.Float64Ptr(20)},
	}

	t.Run("closest sample within tolerance", func(t *testing.T) {
		values := aligner.NearestFill(series, grid, 3*time.Minute)
		if values[0] == nil || *values[0] != 10 {
			t.Fatalf("slot 0 must match sample at +1m, got %v", values[0])
		}
		if values[1] != nil {
			t.Fatalf("slot 1 has no sample within tolerance, got %v", *values[1])
		}
		if values[2] == nil || *values[2] != 20 {
			t.Fatalf("slot 2 must match sample at +18m, got %v", values[2])
		}
	})

	t.Run("empty series yields all nil", func(t *testing.T) {
		values := aligner.NearestFill(nil, grid, time.Minute)
		for i, v := range values {
			if v != nil {
				t.Fatalf("slot %d must be nil", i)
			}
		}
	})
}

func TestGridAligner_AlignTable(t *testing.T) {
	aligner := NewGridAligner()
	grid := aligner.BuildGrid(gridBase, gridBase.Add(20*time.Minute), DefaultCadence)

	table := aligner.AlignTable(grid,
		SeriesInput{Label: "Water Temperature (°C)", Measurements: []entity.Measurement{
			{ParameterID: 1, Timestamp: gridBase, Value: entity.Float64Ptr(12.5)},
		}},
		SeriesInput{Label: "Wave Height (m)", Measurements: []entity.Measurement{
			{ParameterID: 2, Timestamp: gridBase.Add(10 * time.Minute), Value: entity.Float64Ptr(0.8)},
		}},
	)

	if table.RowCount() != 3 {
		t.Fatalf("expected 3 rows, got %d", table.RowCount())
	}
	if len(table.Columns) != 2 {
		t.Fatalf("expected 2 columns, got %d", len(table.Columns))
	}
	// Columns fill independently against the one shared grid
	if table.Columns[0].Values[2] == nil || *table.Columns[0].Values[2] != 12.5 {
		t.Fatalf("column 0 must carry 12.5 forward")
	}
	if table.Columns[1].Values[0] != nil {
		t.Fatalf("column 1 slot 0 must be nil before its first sample")
	}
}

// The end-to-end scenario: conversion is applied per sample before filling
func TestGridAligner_ConvertThenForwardFill(t *testing.T) {
	aligner := NewGridAligner()
	converter := NewUnitConverter()

	t0 := gridBase
	series := []entity.Measurement{
		{ParameterID: 1, Timestamp: t0, Value: nil, Unit: "°C"},
		{ParameterID: 1, Timestamp: t0.Add(10 * time.Minute), Value: nil, Unit: "°C"},
		{ParameterID: 1, Timestamp: t0.Add(20 * time.Minute), Value: entity.Float64Ptr(12.5), Unit: "°C"},
	}

	converted := make([]entity.Measurement, len(series))
	for i, m := range series {
		value, unit := converter.ConvertMeasurement(m.Value, m.Unit, valueobject.Temperature, "°F")
		m.Value = value
		m.Unit = unit
		converted[i] = m
	}

	grid := aligner.BuildGrid(t0, t0.Add(30*time.Minute), DefaultCadence)
	values := aligner.ForwardFill(converted, grid)

	want := []*float64{nil, nil, entity.Float64Ptr(54.5), entity.Float64Ptr(54.5)}
	if len(values) != len(want) {
		t.Fatalf("expected %d slots, got %d", len(want), len(values))
	}
	for i := range want {
		switch {
		case want[i] == nil && values[i] != nil:
			t.Fatalf("slot %d must be nil, got %v", i, *values[i])
		case want[i] != nil && (values[i] == nil || *values[i] != *want[i]):
			t.Fatalf("slot %d must be %v, got %v", i, *want[i], values[i])
		}
	}
}
