package valueobject

import "errors"

// UnitCategory представляет физическую категорию измерения (Value Object)
type UnitCategory string

const (
	Temperature   UnitCategory = "temperature"
	Pressure      UnitCategory = "pressure"
	Speed         UnitCategory = "speed"
	Distance      UnitCategory = "distance"
	Concentration UnitCategory = "concentration"
)

// Validate проверяет валидность категории
func (c UnitCategory) Validate() error {
	switch c {
	case Temperature, Pressure, Speed, Distance, Concentration:
		return nil
	default:
		return errors.New("invalid unit category")
	}
}

// String возвращает строковое представление категории
func (c UnitCategory) String() string {
	return string(c)
}

// AllUnitCategories возвращает список всех допустимых категорий
func AllUnitCategories() []UnitCategory {
	return []UnitCategory{Temperature, Pressure, Speed, Distance, Concentration}
}
