package entity

import "time"

// Measurement представляет одно измерение, полученное от буя
// Иммутабельная запись, создается внешним источником данных.
// Value == nil означает пропущенный отсчет; пропуск никогда не приводится к нулю
type Measurement struct {
	ParameterID int64     `json:"parameter_id"`
	StationID   string    `json:"station_id"`
	Timestamp   time.Time `json:"timestamp"`
	Value       *float64  `json:"value"`
	Unit        string    `json:"unit"`
}

// HasValue проверяет, есть ли у измерения значение
func (m Measurement) HasValue() bool {
	return m.Value != nil
}

// Age возвращает возраст измерения относительно указанного момента
func (m Measurement) Age(now time.Time) time.Duration {
	return now.Sub(m.Timestamp)
}

// Float64Ptr упаковывает значение в указатель (для построения измерений)
func Float64Ptr(v float64) *float64 {
	return &v
}
