package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dreschagin/buoywatch/internal/domain/entity"
)

// PostgresParameterCatalog реализует port.ParameterCatalog для PostgreSQL
type PostgresParameterCatalog struct {
	db *sql.DB
}

// NewPostgresParameterCatalog создает новый PostgreSQL каталог
func NewPostgresParameterCatalog(db *sql.DB) *PostgresParameterCatalog {
	return &PostgresParameterCatalog{
		db: db,
	}
}

// ListParameters возвращает параметры станции в стабильном порядке
func (c *PostgresParameterCatalog) ListParameters(ctx context.Context, stationID string) ([]entity.Parameter, error) {
	query := `
		SELECT p.parameter_id, p.station_id, p.display_name, p.native_unit, p.depth_m
		FROM parameters p
		WHERE p.station_id = $1
		ORDER BY p.display_name, p.depth_m NULLS FIRST
	`

	rows, err := c.db.QueryContext(ctx, query, stationID)
	if err != nil {
		return nil, fmt.Errorf("failed to query parameters: %w", err)
	}
	defer rows.Close()

	var parameters []entity.Parameter
	for rows.Next() {
		model, err := ScanParameterRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan parameter row: %w", err)
		}
		parameters = append(parameters, ToParameterEntity(model))
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return parameters, nil
}

// GetParameter возвращает параметр по идентификатору
func (c *PostgresParameterCatalog) GetParameter(ctx context.Context, parameterID int64) (*entity.Parameter, error) {
	query := `
		SELECT p.parameter_id, p.station_id, p.display_name, p.native_unit, p.depth_m
		FROM parameters p
		WHERE p.parameter_id = $1
	`

	row := c.db.QueryRowContext(ctx, query, parameterID)
	model, err := ScanParameterRow(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("parameter not found: %d", parameterID)
		}
		return nil, fmt.Errorf("failed to scan parameter: %w", err)
	}

	parameter := ToParameterEntity(model)
	return &parameter, nil
}
