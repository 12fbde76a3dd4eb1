package port

import "github.com/dreschagin/buoywatch/internal/application/dto"

// NotificationService — push-уведомления подключенным клиентам мониторинга
type NotificationService interface {
	// BroadcastSnapshot рассылает классифицированный снимок станции
	BroadcastSnapshot(snapshot *dto.StationSnapshotDTO)

	// BroadcastToast рассылает новый toast дедупликатора
	BroadcastToast(toast *dto.ToastDTO)

	// BroadcastSpotlight рассылает смену сфокусированной станции
	BroadcastSpotlight(spotlight *dto.SpotlightDTO)

	// ClientCount возвращает количество подключенных клиентов
	ClientCount() int
}
