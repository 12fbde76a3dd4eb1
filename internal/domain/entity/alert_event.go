package entity

import "time"

// AlertKind представляет вид анализа, породившего событие
type AlertKind string

const (
	AlertKindThreshold   AlertKind = "threshold"
	AlertKindSpike       AlertKind = "spike"
	AlertKindFlatline    AlertKind = "flatline"
	AlertKindGap         AlertKind = "gap"
	AlertKindTrend       AlertKind = "trend"
	AlertKindRateOfRise  AlertKind = "rate_of_rise"
	AlertKindSensorFault AlertKind = "sensor_fault"
	AlertKindBattery     AlertKind = "battery"
)

// AlertSeverity представляет уровень важности события
type AlertSeverity string

const (
	AlertSeverityInfo     AlertSeverity = "info"
	AlertSeverityWarning  AlertSeverity = "warning"
	AlertSeverityCritical AlertSeverity = "critical"
	AlertSeverityOther    AlertSeverity = "other"
)

// ParseAlertSeverity разбирает уровень; неизвестное значение становится other
func ParseAlertSeverity(raw string) AlertSeverity {
	switch AlertSeverity(raw) {
	case AlertSeverityInfo, AlertSeverityWarning, AlertSeverityCritical:
		return AlertSeverity(raw)
	default:
		return AlertSeverityOther
	}
}

// AlertEvent представляет событие от внешнего rule engine
// Канал доставки может доставить событие повторно: ID является
// единственным ключом дедупликации
type AlertEvent struct {
	ID          string                 `json:"id"`
	ScopeID     string                 `json:"scope_id"`
	RuleID      string                 `json:"rule_id"`
	Kind        AlertKind              `json:"kind"`
	Severity    AlertSeverity          `json:"severity"`
	StationID   string                 `json:"station_id"`
	ParameterID *int64                 `json:"parameter_id,omitempty"`
	MeasuredAt  time.Time              `json:"measured_at"`
	CreatedAt   time.Time              `json:"created_at"`
	Value       *float64               `json:"value,omitempty"`
	Throttled   bool                   `json:"throttled"`
	Message     string                 `json:"message"`
	Context     map[string]interface{} `json:"context,omitempty"`
}
