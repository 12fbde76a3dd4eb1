package entity

// Parameter представляет справочные метаданные измеряемого параметра
// Read-only данные, кешируются на время сессии
type Parameter struct {
	ParameterID int64    `json:"parameter_id"`
	StationID   string   `json:"station_id"`
	DisplayName string   `json:"display_name"`
	NativeUnit  string   `json:"native_unit"`
	Depth       *float64 `json:"depth,omitempty"`
}

// Label возвращает подпись параметра для заголовков таблиц и колонок экспорта
func (p Parameter) Label() string {
	if p.NativeUnit == "" {
		return p.DisplayName
	}
	return p.DisplayName + " (" + p.NativeUnit + ")"
}

// LabelWithUnit возвращает подпись с указанной единицей (после конвертации)
func (p Parameter) LabelWithUnit(unit string) string {
	if unit == "" {
		return p.DisplayName
	}
	return p.DisplayName + " (" + unit + ")"
}
