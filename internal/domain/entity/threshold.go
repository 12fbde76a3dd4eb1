package entity

import (
	"bytes"
	"encoding/json"

	"github.com/dreschagin/buoywatch/internal/domain/valueobject"
)

// ThresholdScope указывает область действия порога
type ThresholdScope string

const (
	ThresholdScopeStation ThresholdScope = "station"
	ThresholdScopeGlobal  ThresholdScope = "global"
)

// Threshold представляет именованную спецификацию порогов для параметра
type Threshold struct {
	ID     string          `json:"id"`
	Scope  ThresholdScope  `json:"scope"`
	Ranges ThresholdRanges `json:"ranges"`
}

// Band — нормализованная полоса порога. Обе границы включительны,
// nil означает отсутствие границы с этой стороны
type Band struct {
	Severity valueobject.Severity
	Min      *float64
	Max      *float64
}

// Contains проверяет попадание значения в полосу.
// Инвертированная полоса (min > max) не содержит ничего
func (b Band) Contains(v float64) bool {
	if b.Min != nil && b.Max != nil && *b.Min > *b.Max {
		return false
	}
	if b.Min != nil && v < *b.Min {
		return false
	}
	if b.Max != nil && v > *b.Max {
		return false
	}
	return true
}

// ThresholdRanges хранит одну из двух эквивалентных wire-форм спецификации:
// объект с именованными полосами green/yellow/red или упорядоченный массив
// полос {color, min, max}. Обе формы нормализуются через Bands()
type ThresholdRanges struct {
	object *objectRanges
	array  []ArrayBand
}

type objectRanges struct {
	Green  *[2]*float64 `json:"green,omitempty"`
	Yellow *[2]*float64 `json:"yellow,omitempty"`
	Red    *[2]*float64 `json:"red,omitempty"`
}

// ArrayBand — элемент массивной формы спецификации
type ArrayBand struct {
	Color string   `json:"color"`
	Min   *float64 `json:"min"`
	Max   *float64 `json:"max"`
}

// ObjectShapeRanges создает объектную форму спецификации.
// Пара [min, max]; nil-граница означает "не ограничено"
func ObjectShapeRanges(green, yellow, red *[2]*float64) ThresholdRanges {
	return ThresholdRanges{object: &objectRanges{Green: green, Yellow: yellow, Red: red}}
}

// ArrayShapeRanges создает массивную форму спецификации
func ArrayShapeRanges(bands ...ArrayBand) ThresholdRanges {
	return ThresholdRanges{array: bands}
}

// Bands нормализует спецификацию в упорядоченный список полос.
// Для объектной формы порядок оценки фиксирован: red → yellow → green
// (первая совпавшая полоса выигрывает, самая строгая проверяется первой).
// Для массивной формы порядок — как в массиве; неизвестный цветовой токен
// нормализуется в gray
func (r ThresholdRanges) Bands() []Band {
	if r.array != nil {
		bands := make([]Band, 0, len(r.array))
		for _, b := range r.array {
			bands = append(bands, Band{
				Severity: valueobject.ParseSeverity(b.Color),
				Min:      b.Min,
				Max:      b.Max,
			})
		}
		return bands
	}

	if r.object == nil {
		return nil
	}

	bands := make([]Band, 0, 3)
	appendBand := func(severity valueobject.Severity, pair *[2]*float64) {
		if pair != nil {
			bands = append(bands, Band{Severity: severity, Min: pair[0], Max: pair[1]})
		}
	}
	appendBand(valueobject.SeverityRed, r.object.Red)
	appendBand(valueobject.SeverityYellow, r.object.Yellow)
	appendBand(valueobject.SeverityGreen, r.object.Green)

	return bands
}

// IsEmpty проверяет, что спецификация не содержит ни одной полосы
func (r ThresholdRanges) IsEmpty() bool {
	return len(r.Bands()) == 0
}

// UnmarshalJSON различает две wire-формы по первому символу
func (r *ThresholdRanges) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*r = ThresholdRanges{}
		return nil
	}

	if trimmed[0] == '[' {
		var bands []ArrayBand
		if err := json.Unmarshal(trimmed, &bands); err != nil {
			return err
		}
		*r = ThresholdRanges{array: bands}
		return nil
	}

	var obj objectRanges
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return err
	}
	*r = ThresholdRanges{object: &obj}
	return nil
}

// MarshalJSON сохраняет исходную форму спецификации (важно для кеша)
func (r ThresholdRanges) MarshalJSON() ([]byte, error) {
	if r.array != nil {
		return json.Marshal(r.array)
	}
	if r.object != nil {
		return json.Marshal(r.object)
	}
	return []byte("null"), nil
}
