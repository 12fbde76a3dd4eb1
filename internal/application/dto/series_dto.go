package dto

import (
	"time"

	"github.com/dreschagin/buoywatch/internal/domain/service"
)

// SeriesColumnDTO — одна колонка выровненной таблицы
type SeriesColumnDTO struct {
	ParameterID int64      `json:"parameter_id"`
	Label       string     `json:"label"`
	Unit        string     `json:"unit"`
	Values      []*float64 `json:"values"`
}

// AlignedSeriesDTO — выровненные серии на общей сетке.
// Строка на точку сетки, колонка на серию: структура общая для графиков
// сравнения и для экспорта
type AlignedSeriesDTO struct {
	Grid    []time.Time        `json:"grid"`
	Cadence time.Duration      `json:"cadence"`
	Columns []*SeriesColumnDTO `json:"columns"`
}

// FromAlignedTable конвертирует доменную таблицу в DTO
func FromAlignedTable(table *service.AlignedTable, cadence time.Duration, parameterIDs []int64, units []string) *AlignedSeriesDTO {
	out := &AlignedSeriesDTO{
		Grid:    table.Grid,
		Cadence: cadence,
		Columns: make([]*SeriesColumnDTO, 0, len(table.Columns)),
	}

	for i, column := range table.Columns {
		dto := &SeriesColumnDTO{
			Label:  column.Label,
			Values: column.Values,
		}
		if i < len(parameterIDs) {
			dto.ParameterID = parameterIDs[i]
		}
		if i < len(units) {
			dto.Unit = units[i]
		}
		out.Columns = append(out.Columns, dto)
	}

	return out
}
