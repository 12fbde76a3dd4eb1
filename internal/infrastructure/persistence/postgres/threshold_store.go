package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dreschagin/buoywatch/internal/domain/entity"
)

// PostgresThresholdStore реализует port.ThresholdStore для PostgreSQL
type PostgresThresholdStore struct {
	db *sql.DB
}

// NewPostgresThresholdStore создает новое PostgreSQL хранилище порогов
func NewPostgresThresholdStore(db *sql.DB) *PostgresThresholdStore {
	return &PostgresThresholdStore{
		db: db,
	}
}

// FetchThreshold возвращает действующий порог параметра.
// Станционный порог перекрывает глобальный; отсутствие порога — это
// (nil, nil), а не ошибка
func (s *PostgresThresholdStore) FetchThreshold(ctx context.Context, stationID string, parameterID int64) (*entity.Threshold, error) {
	query := `
		SELECT t.id, t.scope, t.ranges
		FROM thresholds t
		WHERE t.parameter_id = $1
		  AND (t.scope = 'global' OR (t.scope = 'station' AND t.station_id = $2))
		ORDER BY CASE t.scope WHEN 'station' THEN 0 ELSE 1 END
		LIMIT 1
	`

	row := s.db.QueryRowContext(ctx, query, parameterID, stationID)

	var model ThresholdDBModel
	var ranges sql.NullString
	err := row.Scan(&model.ID, &model.Scope, &ranges)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan threshold: %w", err)
	}
	if ranges.Valid {
		model.Ranges = []byte(ranges.String)
	}

	threshold, err := ToThresholdEntity(&model)
	if err != nil {
		return nil, fmt.Errorf("failed to decode threshold ranges: %w", err)
	}
	return threshold, nil
}
