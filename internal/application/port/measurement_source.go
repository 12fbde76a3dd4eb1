package port

import (
	"context"
	"time"

	"github.com/dreschagin/buoywatch/internal/domain/entity"
)

// MeasurementSource — источник измерений (hosted backend)
// Обе операции обязаны переносить пустой результат без ошибки
type MeasurementSource interface {
	// FetchLatest возвращает последние измерения станции не старше cutoff,
	// по одному на параметр
	FetchLatest(ctx context.Context, stationID string, cutoff time.Time) ([]entity.Measurement, error)

	// FetchSeries возвращает измерения параметра внутри диапазона,
	// отсортированные по возрастанию времени
	FetchSeries(ctx context.Context, parameterID int64, start, end time.Time) ([]entity.Measurement, error)
}

// ParameterCatalog — справочник метаданных параметров
type ParameterCatalog interface {
	// ListParameters возвращает параметры станции
	ListParameters(ctx context.Context, stationID string) ([]entity.Parameter, error)

	// GetParameter возвращает метаданные одного параметра (nil — не найден)
	GetParameter(ctx context.Context, parameterID int64) (*entity.Parameter, error)
}
