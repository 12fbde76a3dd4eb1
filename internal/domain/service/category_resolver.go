package service

import (
	"strings"

	"github.com/dreschagin/buoywatch/internal/domain/valueobject"
)

// nameRule — правило сопоставления по имени параметра
type nameRule struct {
	keywords []string
	category valueobject.UnitCategory
}

// CategoryResolver определяет физическую категорию параметра
// по его отображаемому имени, с fallback на строку единицы измерения
// (Domain Service, stateless)
type CategoryResolver struct {
	nameRules []nameRule
	unitSets  map[valueobject.UnitCategory][]string
}

// NewCategoryResolver создает resolver с фиксированным набором правил
func NewCategoryResolver() *CategoryResolver {
	return &CategoryResolver{
		// Порядок правил фиксирован: первое совпавшее выигрывает
		nameRules: []nameRule{
			{keywords: []string{"temp"}, category: valueobject.Temperature},
			{keywords: []string{"pressure", "baro"}, category: valueobject.Pressure},
			{keywords: []string{"speed", "velocity"}, category: valueobject.Speed},
			{keywords: []string{"height"}, category: valueobject.Distance},
			{keywords: []string{"chlorophyll", "phycocyanin", "cdom"}, category: valueobject.Concentration},
		},
		unitSets: map[valueobject.UnitCategory][]string{
			valueobject.Temperature:   {"°c", "°f", "k"},
			valueobject.Pressure:      {"hpa", "mbar", "mmhg", "inhg"},
			valueobject.Speed:         {"m/s", "kn", "km/h", "mph"},
			valueobject.Distance:      {"m", "cm", "ft"},
			valueobject.Concentration: {"µg/l", "mg/l", "g/l", "ppm", "ppb"},
		},
	}
}

// Resolve определяет категорию параметра.
// Сначала case-insensitive substring-совпадение по имени, затем точное
// совпадение нормализованной единицы. Отсутствие совпадения — ("", false):
// вызывающая сторона не конвертирует и показывает родную единицу как есть
func (r *CategoryResolver) Resolve(displayName, unit string) (valueobject.UnitCategory, bool) {
	name := strings.ToLower(displayName)
	for _, rule := range r.nameRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(name, keyword) {
				return rule.category, true
			}
		}
	}

	normalized := NormalizeUnit(unit)
	if normalized == "" {
		return "", false
	}
	for _, category := range valueobject.AllUnitCategories() {
		for _, known := range r.unitSets[category] {
			if normalized == known {
				return category, true
			}
		}
	}

	return "", false
}
