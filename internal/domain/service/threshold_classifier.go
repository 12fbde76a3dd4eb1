package service

import (
	"github.com/dreschagin/buoywatch/internal/domain/entity"
	"github.com/dreschagin/buoywatch/internal/domain/valueobject"
)

// ThresholdClassifier вычисляет полосу классификации значения
// по спецификации порогов (Domain Service, stateless)
//
// Функция чистая и детерминированная: никакого скрытого чтения текущего
// времени или внешнего состояния
type ThresholdClassifier struct{}

// NewThresholdClassifier создает классификатор
func NewThresholdClassifier() *ThresholdClassifier {
	return &ThresholdClassifier{}
}

// Classify возвращает полосу для значения.
// nil-значение или отсутствующий порог немедленно дают gray.
// Полосы оцениваются в нормализованном порядке (см. ThresholdRanges.Bands):
// первая содержащая значение полоса выигрывает; значение вне всех полос — gray.
// Некорректная полоса (инвертированные границы) не содержит ничего и
// деградирует в gray вместо ошибки
func (c *ThresholdClassifier) Classify(value *float64, threshold *entity.Threshold) valueobject.Severity {
	if value == nil || threshold == nil {
		return valueobject.SeverityGray
	}

	for _, band := range threshold.Ranges.Bands() {
		if band.Contains(*value) {
			return band.Severity
		}
	}

	return valueobject.SeverityGray
}

// ClassifyMeasurement — удобная обертка для измерений
func (c *ThresholdClassifier) ClassifyMeasurement(m entity.Measurement, threshold *entity.Threshold) valueobject.Severity {
	return c.Classify(m.Value, threshold)
}
