package port

import "context"

// Имена счетчиков, публикуемых ядром
const (
	CounterAlertsSeen         = "AlertsSeen"
	CounterAlertsDeduplicated = "AlertsDeduplicated"
	CounterToastsEmitted      = "ToastsEmitted"
	CounterExportsCreated     = "ExportsCreated"
	CounterSnapshotsRefreshed = "SnapshotsRefreshed"
)

// MetricsPublisher — публикация счетчиков работы ядра во внешнюю
// систему наблюдаемости. Реализация буферизует и шлет батчами
type MetricsPublisher interface {
	// Count добавляет delta к именованному счетчику
	Count(name string, delta float64)

	// Flush принудительно отправляет буфер
	Flush(ctx context.Context) error

	// Close останавливает фоновую отправку
	Close() error
}
