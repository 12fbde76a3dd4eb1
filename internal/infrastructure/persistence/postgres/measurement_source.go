package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dreschagin/buoywatch/internal/domain/entity"
	_ "github.com/lib/pq"
)

// PostgresMeasurementSource реализует port.MeasurementSource для PostgreSQL
type PostgresMeasurementSource struct {
	db *sql.DB
}

// NewPostgresMeasurementSource создает новый PostgreSQL source
func NewPostgresMeasurementSource(db *sql.DB) *PostgresMeasurementSource {
	return &PostgresMeasurementSource{
		db: db,
	}
}

// FetchLatest возвращает последнее измерение каждого параметра станции
// не старше cutoff
func (s *PostgresMeasurementSource) FetchLatest(ctx context.Context, stationID string, cutoff time.Time) ([]entity.Measurement, error) {
	query := `
		SELECT DISTINCT ON (m.parameter_id)
			m.parameter_id, m.station_id, m.measured_at, m.value, m.unit
		FROM measurements m
		WHERE m.station_id = $1 AND m.measured_at >= $2
		ORDER BY m.parameter_id, m.measured_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query, stationID, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to query latest measurements: %w", err)
	}
	defer rows.Close()

	return s.scanMeasurements(rows)
}

// FetchSeries возвращает измерения параметра за диапазон, старейшие первыми
func (s *PostgresMeasurementSource) FetchSeries(ctx context.Context, parameterID int64, start, end time.Time) ([]entity.Measurement, error) {
	query := `
		SELECT m.parameter_id, m.station_id, m.measured_at, m.value, m.unit
		FROM measurements m
		WHERE m.parameter_id = $1 AND m.measured_at BETWEEN $2 AND $3
		ORDER BY m.measured_at ASC
	`

	rows, err := s.db.QueryContext(ctx, query, parameterID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query measurement series: %w", err)
	}
	defer rows.Close()

	return s.scanMeasurements(rows)
}

// scanMeasurements сканирует несколько строк в слайс измерений
func (s *PostgresMeasurementSource) scanMeasurements(rows *sql.Rows) ([]entity.Measurement, error) {
	var measurements []entity.Measurement

	for rows.Next() {
		model, err := ScanMeasurementRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan measurement row: %w", err)
		}
		measurements = append(measurements, ToMeasurementEntity(model))
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return measurements, nil
}
