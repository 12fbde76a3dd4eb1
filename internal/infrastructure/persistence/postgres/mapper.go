package postgres

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/dreschagin/buoywatch/internal/domain/entity"
)

// MeasurementDBModel представляет измерение в БД
type MeasurementDBModel struct {
	ParameterID int64
	StationID   string
	Timestamp   time.Time
	Value       sql.NullFloat64
	Unit        string
}

// ToMeasurementEntity конвертирует DB Model в Domain Entity.
// NULL-значение БД — это легитимный пропуск, не ошибка
func ToMeasurementEntity(model *MeasurementDBModel) entity.Measurement {
	m := entity.Measurement{
		ParameterID: model.ParameterID,
		StationID:   model.StationID,
		Timestamp:   model.Timestamp.UTC(),
		Unit:        model.Unit,
	}
	if model.Value.Valid {
		v := model.Value.Float64
		m.Value = &v
	}
	return m
}

// ScanMeasurementRow сканирует строку БД в MeasurementDBModel
func ScanMeasurementRow(row interface {
	Scan(dest ...interface{}) error
}) (*MeasurementDBModel, error) {
	var model MeasurementDBModel
	err := row.Scan(
		&model.ParameterID,
		&model.StationID,
		&model.Timestamp,
		&model.Value,
		&model.Unit,
	)
	if err != nil {
		return nil, err
	}
	return &model, nil
}

// ParameterDBModel представляет параметр станции в БД
type ParameterDBModel struct {
	ParameterID int64
	StationID   string
	DisplayName string
	NativeUnit  string
	Depth       sql.NullFloat64
}

// ToParameterEntity конвертирует DB Model в Domain Entity
func ToParameterEntity(model *ParameterDBModel) entity.Parameter {
	p := entity.Parameter{
		ParameterID: model.ParameterID,
		StationID:   model.StationID,
		DisplayName: model.DisplayName,
		NativeUnit:  model.NativeUnit,
	}
	if model.Depth.Valid {
		d := model.Depth.Float64
		p.Depth = &d
	}
	return p
}

// ScanParameterRow сканирует строку БД в ParameterDBModel
func ScanParameterRow(row interface {
	Scan(dest ...interface{}) error
}) (*ParameterDBModel, error) {
	var model ParameterDBModel
	err := row.Scan(
		&model.ParameterID,
		&model.StationID,
		&model.DisplayName,
		&model.NativeUnit,
		&model.Depth,
	)
	if err != nil {
		return nil, err
	}
	return &model, nil
}

// ThresholdDBModel представляет спецификацию порога в БД.
// Ranges хранится как JSONB в одной из двух wire-форм
type ThresholdDBModel struct {
	ID     string
	Scope  string
	Ranges []byte
}

// ToThresholdEntity конвертирует DB Model в Domain Entity
func ToThresholdEntity(model *ThresholdDBModel) (*entity.Threshold, error) {
	threshold := &entity.Threshold{
		ID:    model.ID,
		Scope: entity.ThresholdScope(model.Scope),
	}
	if len(model.Ranges) > 0 {
		if err := json.Unmarshal(model.Ranges, &threshold.Ranges); err != nil {
			return nil, err
		}
	}
	return threshold, nil
}

// AlertEventDBModel представляет событие алерта в БД
type AlertEventDBModel struct {
	ID          string
	ScopeID     string
	RuleID      string
	Kind        string
	Severity    string
	StationID   string
	ParameterID sql.NullInt64
	MeasuredAt  time.Time
	CreatedAt   time.Time
	Value       sql.NullFloat64
	Throttled   bool
	Message     sql.NullString
	Context     []byte // JSON
}

// ToAlertEventEntity конвертирует DB Model в Domain Entity
func ToAlertEventEntity(model *AlertEventDBModel) (entity.AlertEvent, error) {
	event := entity.AlertEvent{
		ID:         model.ID,
		ScopeID:    model.ScopeID,
		RuleID:     model.RuleID,
		Kind:       entity.AlertKind(model.Kind),
		Severity:   entity.ParseAlertSeverity(model.Severity),
		StationID:  model.StationID,
		MeasuredAt: model.MeasuredAt.UTC(),
		CreatedAt:  model.CreatedAt.UTC(),
		Throttled:  model.Throttled,
	}
	if model.ParameterID.Valid {
		id := model.ParameterID.Int64
		event.ParameterID = &id
	}
	if model.Value.Valid {
		v := model.Value.Float64
		event.Value = &v
	}
	if model.Message.Valid {
		event.Message = model.Message.String
	}
	if len(model.Context) > 0 {
		if err := json.Unmarshal(model.Context, &event.Context); err != nil {
			return entity.AlertEvent{}, err
		}
	}
	return event, nil
}

// ScanAlertEventRow сканирует строку БД в AlertEventDBModel
func ScanAlertEventRow(row interface {
	Scan(dest ...interface{}) error
}) (*AlertEventDBModel, error) {
	var model AlertEventDBModel
	var context sql.NullString

	err := row.Scan(
		&model.ID,
		&model.ScopeID,
		&model.RuleID,
		&model.Kind,
		&model.Severity,
		&model.StationID,
		&model.ParameterID,
		&model.MeasuredAt,
		&model.CreatedAt,
		&model.Value,
		&model.Throttled,
		&model.Message,
		&context,
	)
	if err != nil {
		return nil, err
	}

	if context.Valid {
		model.Context = []byte(context.String)
	}
	return &model, nil
}
