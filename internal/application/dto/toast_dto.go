package dto

import (
	"fmt"
	"time"

	"github.com/dreschagin/buoywatch/internal/domain/entity"
)

// ToastDTO — транзиентное представление одного дедуплицированного события
type ToastDTO struct {
	ID        string `json:"id"`
	Severity  string `json:"severity"`
	Title     string `json:"title"`
	TimeLabel string `json:"time_label"`
	Message   string `json:"message"`
	Throttled bool   `json:"throttled"`
}

// NewToastDTO проецирует событие в toast
func NewToastDTO(event entity.AlertEvent) *ToastDTO {
	return &ToastDTO{
		ID:        event.ID,
		Severity:  string(event.Severity),
		Title:     toastTitle(event),
		TimeLabel: event.MeasuredAt.Local().Format("15:04"),
		Message:   event.Message,
		Throttled: event.Throttled,
	}
}

func toastTitle(event entity.AlertEvent) string {
	if event.StationID == "" {
		return string(event.Kind)
	}
	return fmt.Sprintf("%s: %s", event.StationID, event.Kind)
}

// SpotlightDTO — смена сфокусированной станции ротации
type SpotlightDTO struct {
	StationID string    `json:"station_id"`
	Position  int       `json:"position"`
	Total     int       `json:"total"`
	Critical  bool      `json:"critical_only"`
	ChangedAt time.Time `json:"changed_at"`
}

// AlertEventDTO — событие для отдачи через API backfill
type AlertEventDTO struct {
	ID          string    `json:"id"`
	RuleID      string    `json:"rule_id"`
	Kind        string    `json:"kind"`
	Severity    string    `json:"severity"`
	StationID   string    `json:"station_id"`
	ParameterID *int64    `json:"parameter_id,omitempty"`
	MeasuredAt  time.Time `json:"measured_at"`
	CreatedAt   time.Time `json:"created_at"`
	Value       *float64  `json:"value,omitempty"`
	Throttled   bool      `json:"throttled"`
	Message     string    `json:"message"`
}

// ToAlertEventDTOs конвертирует события в DTO
func ToAlertEventDTOs(events []entity.AlertEvent) []*AlertEventDTO {
	dtos := make([]*AlertEventDTO, len(events))
	for i, e := range events {
		dtos[i] = &AlertEventDTO{
			ID:          e.ID,
			RuleID:      e.RuleID,
			Kind:        string(e.Kind),
			Severity:    string(e.Severity),
			StationID:   e.StationID,
			ParameterID: e.ParameterID,
			MeasuredAt:  e.MeasuredAt,
			CreatedAt:   e.CreatedAt,
			Value:       e.Value,
			Throttled:   e.Throttled,
			Message:     e.Message,
		}
	}
	return dtos
}
