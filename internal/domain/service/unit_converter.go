package service

import (
	"strings"

	"github.com/dreschagin/buoywatch/internal/domain/valueobject"
)

// transform — направленное ребро таблицы конвертации
type transform func(v float64) float64

// UnitConverter конвертирует значения между единицами внутри одной
// физической категории (Domain Service, stateless)
//
// Таблицы записаны направленными ребрами и не обязаны быть полносвязными:
// ребро g/L → µg/L определено только в одну сторону (см. таблицу
// концентраций). Неподдерживаемая пара — это не ошибка, а тихий
// pass-through: вызывающая сторона обнаруживает его по возвращенной единице
type UnitConverter struct {
	tables map[valueobject.UnitCategory]map[string]map[string]transform
}

// NewUnitConverter создает реестр конвертаций со встроенными таблицами
func NewUnitConverter() *UnitConverter {
	c := &UnitConverter{
		tables: make(map[valueobject.UnitCategory]map[string]map[string]transform),
	}

	// Температура
	c.add(valueobject.Temperature, "°c", "°f", func(v float64) float64 { return v*9/5 + 32 })
	c.add(valueobject.Temperature, "°f", "°c", func(v float64) float64 { return (v - 32) * 5 / 9 })
	c.add(valueobject.Temperature, "°c", "k", func(v float64) float64 { return v + 273.15 })
	c.add(valueobject.Temperature, "k", "°c", func(v float64) float64 { return v - 273.15 })

	// Давление
	c.add(valueobject.Pressure, "hpa", "mbar", func(v float64) float64 { return v })
	c.add(valueobject.Pressure, "mbar", "hpa", func(v float64) float64 { return v })
	c.add(valueobject.Pressure, "hpa", "inhg", func(v float64) float64 { return v * 0.02952998307144 })
	c.add(valueobject.Pressure, "inhg", "hpa", func(v float64) float64 { return v / 0.02952998307144 })
	c.add(valueobject.Pressure, "mbar", "mmhg", func(v float64) float64 { return v * 0.750061575846 })
	c.add(valueobject.Pressure, "mmhg", "mbar", func(v float64) float64 { return v / 0.750061575846 })

	// Скорость
	c.add(valueobject.Speed, "m/s", "kn", func(v float64) float64 { return v * 1.943844492441 })
	c.add(valueobject.Speed, "kn", "m/s", func(v float64) float64 { return v / 1.943844492441 })
	c.add(valueobject.Speed, "m/s", "km/h", func(v float64) float64 { return v * 3.6 })
	c.add(valueobject.Speed, "km/h", "m/s", func(v float64) float64 { return v / 3.6 })
	c.add(valueobject.Speed, "m/s", "mph", func(v float64) float64 { return v * 2.236936292054 })
	c.add(valueobject.Speed, "mph", "m/s", func(v float64) float64 { return v / 2.236936292054 })

	// Расстояние
	c.add(valueobject.Distance, "m", "ft", func(v float64) float64 { return v * 3.280839895013 })
	c.add(valueobject.Distance, "ft", "m", func(v float64) float64 { return v / 3.280839895013 })
	c.add(valueobject.Distance, "m", "cm", func(v float64) float64 { return v * 100 })
	c.add(valueobject.Distance, "cm", "m", func(v float64) float64 { return v / 100 })

	// Концентрация
	// Ребро g/L → µg/L односторонее: обратного направления в исходных
	// таблицах нет, и оно сознательно не добавлено
	c.add(valueobject.Concentration, "µg/l", "mg/l", func(v float64) float64 { return v / 1000 })
	c.add(valueobject.Concentration, "mg/l", "µg/l", func(v float64) float64 { return v * 1000 })
	c.add(valueobject.Concentration, "ppm", "mg/l", func(v float64) float64 { return v })
	c.add(valueobject.Concentration, "mg/l", "ppm", func(v float64) float64 { return v })
	c.add(valueobject.Concentration, "g/l", "µg/l", func(v float64) float64 { return v * 1e6 })

	return c
}

func (c *UnitConverter) add(category valueobject.UnitCategory, from, to string, fn transform) {
	table, ok := c.tables[category]
	if !ok {
		table = make(map[string]map[string]transform)
		c.tables[category] = table
	}
	edges, ok := table[from]
	if !ok {
		edges = make(map[string]transform)
		table[from] = edges
	}
	edges[to] = fn
}

// Convert конвертирует значение из fromUnit в toUnit внутри категории.
// Возвращает результат и единицу, в которой он фактически находится.
// Совпадающие единицы — точная идентичность без плавающего round-trip.
// Незарегистрированная пара — значение и единица возвращаются как есть;
// Convert никогда не возвращает ошибку и не порождает NaN
func (c *UnitConverter) Convert(value float64, fromUnit string, category valueobject.UnitCategory, toUnit string) (float64, string) {
	from := NormalizeUnit(fromUnit)
	to := NormalizeUnit(toUnit)

	if from == to {
		return value, fromUnit
	}

	table, ok := c.tables[category]
	if !ok {
		return value, fromUnit
	}
	fn, ok := table[from][to]
	if !ok {
		return value, fromUnit
	}

	return fn(value), toUnit
}

// ConvertMeasurement конвертирует измерение в указанную единицу.
// Пропуск (Value == nil) проходит насквозь, меняется только единица —
// если пара поддержана
func (c *UnitConverter) ConvertMeasurement(value *float64, fromUnit string, category valueobject.UnitCategory, toUnit string) (*float64, string) {
	if value == nil {
		if c.Supports(category, fromUnit, toUnit) || NormalizeUnit(fromUnit) == NormalizeUnit(toUnit) {
			return nil, toUnit
		}
		return nil, fromUnit
	}

	converted, unit := c.Convert(*value, fromUnit, category, toUnit)
	return &converted, unit
}

// Supports проверяет, зарегистрировано ли направленное ребро (from, to)
func (c *UnitConverter) Supports(category valueobject.UnitCategory, fromUnit, toUnit string) bool {
	from := NormalizeUnit(fromUnit)
	to := NormalizeUnit(toUnit)
	_, ok := c.tables[category][from][to]
	return ok
}

// unitAliases сводит разные написания одной единицы к каноническому
var unitAliases = map[string]string{
	"c":       "°c",
	"celsius": "°c",
	"f":       "°f",
	"deg c":   "°c",
	"deg f":   "°f",
	"knots":   "kn",
	"kt":      "kn",
	"ug/l":    "µg/l",
	"μg/l":    "µg/l", // греческая мю вместо знака микро
	"mg/m3":   "µg/l",
}

// NormalizeUnit приводит написание единицы к каноническому ключу таблиц
func NormalizeUnit(unit string) string {
	u := strings.ToLower(strings.TrimSpace(unit))
	if canonical, ok := unitAliases[u]; ok {
		return canonical
	}
	return u
}
