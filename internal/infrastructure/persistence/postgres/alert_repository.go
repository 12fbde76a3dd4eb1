package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/dreschagin/buoywatch/internal/application/port"
	"github.com/dreschagin/buoywatch/internal/domain/entity"
)

// PostgresAlertRepository реализует port.AlertFeed для PostgreSQL
type PostgresAlertRepository struct {
	db *sql.DB
}

// NewPostgresAlertRepository создает новый PostgreSQL репозиторий алертов
func NewPostgresAlertRepository(db *sql.DB) *PostgresAlertRepository {
	return &PostgresAlertRepository{
		db: db,
	}
}

// FetchAlerts возвращает страницу событий по критериям, newest-first
func (r *PostgresAlertRepository) FetchAlerts(ctx context.Context, criteria port.AlertCriteria, offset, limit int) ([]entity.AlertEvent, error) {
	query := `
		SELECT a.id, a.scope_id, a.rule_id, a.kind, a.severity, a.station_id,
		       a.parameter_id, a.measured_at, a.created_at, a.value,
		       a.throttled, a.message, a.context
		FROM alert_events a
		WHERE 1=1
	`
	args := make([]interface{}, 0, 6)

	if len(criteria.StationIDs) > 0 {
		args = append(args, pq.Array(criteria.StationIDs))
		query += fmt.Sprintf(" AND a.station_id = ANY($%d)", len(args))
	}
	if len(criteria.Severities) > 0 {
		severities := make([]string, len(criteria.Severities))
		for i, s := range criteria.Severities {
			severities[i] = string(s)
		}
		args = append(args, pq.Array(severities))
		query += fmt.Sprintf(" AND a.severity = ANY($%d)", len(args))
	}
	if !criteria.Since.IsZero() {
		args = append(args, criteria.Since)
		query += fmt.Sprintf(" AND a.created_at >= $%d", len(args))
	}
	if !criteria.Until.IsZero() {
		args = append(args, criteria.Until)
		query += fmt.Sprintf(" AND a.created_at <= $%d", len(args))
	}

	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY a.created_at DESC LIMIT $%d", len(args))
	args = append(args, offset)
	query += fmt.Sprintf(" OFFSET $%d", len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query alert events: %w", err)
	}
	defer rows.Close()

	var events []entity.AlertEvent
	for rows.Next() {
		model, err := ScanAlertEventRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan alert event row: %w", err)
		}
		event, err := ToAlertEventEntity(model)
		if err != nil {
			return nil, fmt.Errorf("failed to convert alert event: %w", err)
		}
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return events, nil
}
