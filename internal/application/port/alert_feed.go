package port

import (
	"context"
	"time"

	"github.com/dreschagin/buoywatch/internal/domain/entity"
)

// AlertCriteria — фильтр выборки событий
type AlertCriteria struct {
	StationIDs []string
	Severities []entity.AlertSeverity
	Since      time.Time
	Until      time.Time
}

// AlertFeed — pull-доступ к истории событий (backfill, newest-first)
type AlertFeed interface {
	FetchAlerts(ctx context.Context, criteria AlertCriteria, offset, limit int) ([]entity.AlertEvent, error)
}

// AlertSubscription — push-подписка на realtime события.
// Канал доставки гарантирует at-least-once: обработчик обязан быть
// идемпотентным к повторной доставке
type AlertSubscription interface {
	Subscribe(ctx context.Context, handler func(entity.AlertEvent)) error
	Close() error
}
