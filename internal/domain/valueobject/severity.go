package valueobject

// Severity представляет цветовую полосу классификации значения (Value Object)
// Gray означает "нет данных" и отличается от "известно, что норма"
type Severity string

const (
	SeverityGreen  Severity = "green"
	SeverityYellow Severity = "yellow"
	SeverityRed    Severity = "red"
	SeverityGray   Severity = "gray"
)

// ParseSeverity разбирает цветовой токен; неизвестный токен деградирует в gray
func ParseSeverity(token string) Severity {
	switch token {
	case "green":
		return SeverityGreen
	case "yellow":
		return SeverityYellow
	case "red":
		return SeverityRed
	default:
		return SeverityGray
	}
}

// String возвращает строковое представление
func (s Severity) String() string {
	return string(s)
}

// IsCritical проверяет, является ли полоса критической
func (s Severity) IsCritical() bool {
	return s == SeverityRed
}
