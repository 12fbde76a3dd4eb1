package usecase

import (
	"sync"
	"time"

	"github.com/dreschagin/buoywatch/internal/application/dto"
	"github.com/dreschagin/buoywatch/internal/application/port"
	"github.com/dreschagin/buoywatch/internal/domain/entity"
	"github.com/dreschagin/buoywatch/pkg/logger"
)

const (
	// Емкость окна идентичности (дедупликация по event.ID)
	identityWindowCapacity = 200

	// Емкость презентационной очереди toast'ов
	toastQueueCapacity = 5
)

// AlertFilter — активные критерии, применяемые ДО дедупликации.
// Сам дедупликатор фильтров не знает
type AlertFilter struct {
	Window     time.Duration
	Severities map[entity.AlertSeverity]bool
	StationIDs map[string]bool
}

// Matches проверяет событие против критериев.
// Пустое множество критерия означает "пропускать все"
func (f AlertFilter) Matches(event entity.AlertEvent, now time.Time) bool {
	if f.Window > 0 && now.Sub(event.CreatedAt) > f.Window {
		return false
	}
	if len(f.Severities) > 0 && !f.Severities[event.Severity] {
		return false
	}
	if len(f.StationIDs) > 0 && !f.StationIDs[event.StationID] {
		return false
	}
	return true
}

// StreamAlertsUseCase — ограниченный по памяти дедупликатор realtime событий.
// Владеет окном идентичности и презентационной очередью; никакая другая
// инстанция их не мутирует. Идемпотентен к повторной доставке: канал
// гарантирует только at-least-once
type StreamAlertsUseCase struct {
	mu    sync.Mutex
	seen  map[string]struct{}
	order []string // порядок вставки для вытеснения старой половины
	queue []*dto.ToastDTO

	notifier port.NotificationService
	metrics  port.MetricsPublisher
	logger   *logger.Logger
}

// NewStreamAlertsUseCase создает дедупликатор.
// notifier и metrics могут быть nil (выключенная инфраструктура)
func NewStreamAlertsUseCase(
	notifier port.NotificationService,
	metrics port.MetricsPublisher,
	logger *logger.Logger,
) *StreamAlertsUseCase {
	return &StreamAlertsUseCase{
		seen:     make(map[string]struct{}, identityWindowCapacity),
		order:    make([]string, 0, identityWindowCapacity),
		queue:    make([]*dto.ToastDTO, 0, toastQueueCapacity),
		notifier: notifier,
		metrics:  metrics,
		logger:   logger,
	}
}

// OnEvent обрабатывает одно событие. Повторная доставка уже виденного ID
// молча отбрасывается и возвращает nil. Новое событие проецируется в toast,
// добавляется в начало очереди (старейший видимый toast вытесняется за
// пределами cap) и рассылается клиентам
func (uc *StreamAlertsUseCase) OnEvent(event entity.AlertEvent) *dto.ToastDTO {
	uc.mu.Lock()

	uc.count(port.CounterAlertsSeen, 1)

	if _, dup := uc.seen[event.ID]; dup {
		uc.count(port.CounterAlertsDeduplicated, 1)
		uc.mu.Unlock()
		return nil
	}

	uc.admit(event.ID)

	toast := dto.NewToastDTO(event)
	uc.queue = append([]*dto.ToastDTO{toast}, uc.queue...)
	if len(uc.queue) > toastQueueCapacity {
		uc.queue = uc.queue[:toastQueueCapacity]
	}

	uc.count(port.CounterToastsEmitted, 1)
	uc.mu.Unlock()

	if uc.notifier != nil {
		uc.notifier.BroadcastToast(toast)
	}
	uc.logger.Debug("Alert admitted",
		"id", event.ID,
		"severity", string(event.Severity),
		"station", event.StationID,
	)

	return toast
}

// admit регистрирует ID в окне идентичности; при переполнении вытесняется
// старейшая половина окна одним проходом
func (uc *StreamAlertsUseCase) admit(id string) {
	uc.seen[id] = struct{}{}
	uc.order = append(uc.order, id)

	if len(uc.order) <= identityWindowCapacity {
		return
	}

	half := len(uc.order) / 2
	for _, evicted := range uc.order[:half] {
		delete(uc.seen, evicted)
	}
	uc.order = append(uc.order[:0:0], uc.order[half:]...)

	uc.logger.Debug("Identity window compacted", "kept", len(uc.order))
}

// Dismiss убирает toast из презентационной очереди.
// Окно идентичности НЕ трогается: закрытое и доставленное повторно
// событие обязано остаться подавленным
func (uc *StreamAlertsUseCase) Dismiss(id string) bool {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	for i, toast := range uc.queue {
		if toast.ID == id {
			uc.queue = append(uc.queue[:i], uc.queue[i+1:]...)
			return true
		}
	}
	return false
}

// Toasts возвращает копию презентационной очереди, newest-first
func (uc *StreamAlertsUseCase) Toasts() []*dto.ToastDTO {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	out := make([]*dto.ToastDTO, len(uc.queue))
	copy(out, uc.queue)
	return out
}

// SeenCount возвращает размер окна идентичности (для диагностики)
func (uc *StreamAlertsUseCase) SeenCount() int {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return len(uc.seen)
}

func (uc *StreamAlertsUseCase) count(name string, delta float64) {
	if uc.metrics != nil {
		uc.metrics.Count(name, delta)
	}
}
