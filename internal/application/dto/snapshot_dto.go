package dto

import (
	"time"

	"github.com/dreschagin/buoywatch/internal/domain/valueobject"
)

// ParameterTileDTO — одна плитка снимка станции: нормализованное значение
// плюс полоса классификации. Value == nil рендерится как "—"
type ParameterTileDTO struct {
	ParameterID int64     `json:"parameter_id"`
	DisplayName string    `json:"display_name"`
	Value       *float64  `json:"value"`
	Unit        string    `json:"unit"`
	Severity    string    `json:"severity"`
	Depth       *float64  `json:"depth,omitempty"`
	MeasuredAt  time.Time `json:"measured_at"`
}

// StationSnapshotDTO — классифицированный снимок последних значений станции.
// Рассылается через WebSocket и отдается через API
type StationSnapshotDTO struct {
	StationID string              `json:"station_id"`
	Timestamp time.Time           `json:"timestamp"`
	Tiles     []*ParameterTileDTO `json:"tiles"`
	Summary   SnapshotSummaryDTO  `json:"summary"`
}

// SnapshotSummaryDTO — сводка по снимку
type SnapshotSummaryDTO struct {
	TotalParameters int    `json:"total_parameters"`
	CriticalCount   int    `json:"critical_count"`
	WarningCount    int    `json:"warning_count"`
	NoDataCount     int    `json:"no_data_count"`
	OverallStatus   string `json:"overall_status"` // "ok", "warning", "critical", "no_data"
}

// NewStationSnapshotDTO собирает снимок из плиток и вычисляет сводку
func NewStationSnapshotDTO(stationID string, at time.Time, tiles []*ParameterTileDTO) *StationSnapshotDTO {
	snapshot := &StationSnapshotDTO{
		StationID: stationID,
		Timestamp: at,
		Tiles:     tiles,
	}

	for _, tile := range tiles {
		snapshot.Summary.TotalParameters++
		switch valueobject.Severity(tile.Severity) {
		case valueobject.SeverityRed:
			snapshot.Summary.CriticalCount++
		case valueobject.SeverityYellow:
			snapshot.Summary.WarningCount++
		case valueobject.SeverityGray:
			snapshot.Summary.NoDataCount++
		}
	}

	switch {
	case snapshot.Summary.CriticalCount > 0:
		snapshot.Summary.OverallStatus = "critical"
	case snapshot.Summary.WarningCount > 0:
		snapshot.Summary.OverallStatus = "warning"
	case snapshot.Summary.TotalParameters == snapshot.Summary.NoDataCount:
		snapshot.Summary.OverallStatus = "no_data"
	default:
		snapshot.Summary.OverallStatus = "ok"
	}

	return snapshot
}

// HasCritical проверяет наличие критической плитки
func (s *StationSnapshotDTO) HasCritical() bool {
	return s.Summary.CriticalCount > 0
}
