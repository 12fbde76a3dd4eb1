package port

import (
	"context"

	"github.com/dreschagin/buoywatch/internal/domain/entity"
)

// ThresholdStore — хранилище спецификаций порогов.
// Реализация предпочитает запись уровня станции глобальной записи,
// когда существуют обе. Отсутствие порога — (nil, nil), не ошибка
type ThresholdStore interface {
	FetchThreshold(ctx context.Context, stationID string, parameterID int64) (*entity.Threshold, error)
}
