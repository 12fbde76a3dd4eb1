package websocket

import (
	"sync"

	"github.com/dreschagin/buoywatch/internal/application/dto"
	"github.com/dreschagin/buoywatch/pkg/logger"
)

// Hub управляет WebSocket клиентами и рассылает сообщения
// Реализует интерфейс port.NotificationService
type Hub struct {
	// Зарегистрированные клиенты
	clients map[*Client]bool

	// Канал для broadcast снимков станций
	broadcastSnapshot chan *dto.StationSnapshotDTO

	// Канал для broadcast toast'ов
	broadcastToast chan *dto.ToastDTO

	// Канал для broadcast смен фокуса ротации
	broadcastSpotlight chan *dto.SpotlightDTO

	// Канал для регистрации клиентов
	register chan *Client

	// Канал для удаления клиентов
	unregister chan *Client

	// Обработчик dismiss-сообщений от клиентов
	onDismiss func(id string)

	// Mutex для защиты clients map
	mu sync.RWMutex

	// Logger
	logger *logger.Logger
}

// NewHub создает новый WebSocket hub
func NewHub(logger *logger.Logger) *Hub {
	return &Hub{
		clients:            make(map[*Client]bool),
		broadcastSnapshot:  make(chan *dto.StationSnapshotDTO, 256),
		broadcastToast:     make(chan *dto.ToastDTO, 256),
		broadcastSpotlight: make(chan *dto.SpotlightDTO, 256),
		register:           make(chan *Client),
		unregister:         make(chan *Client),
		logger:             logger,
	}
}

// SetDismissHandler задает обработчик dismiss-сообщений клиентов
func (h *Hub) SetDismissHandler(handler func(id string)) {
	h.onDismiss = handler
}

// Run запускает hub (должен быть запущен в отдельной goroutine)
func (h *Hub) Run() {
	h.logger.Info("WebSocket hub started")

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			h.logger.Debug("Client registered", "total_clients", len(h.clients))

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			h.logger.Debug("Client unregistered", "total_clients", len(h.clients))

		case snapshot := <-h.broadcastSnapshot:
			h.fanOut(Message{Type: "snapshot", Data: snapshot})

		case toast := <-h.broadcastToast:
			h.fanOut(Message{Type: "toast", Data: toast})
			h.logger.Debug("Toast broadcasted to clients", "severity", toast.Severity)

		case spotlight := <-h.broadcastSpotlight:
			h.fanOut(Message{Type: "spotlight", Data: spotlight})
		}
	}
}

// fanOut доставляет сообщение всем клиентам; клиент с заполненным
// каналом отключается
func (h *Hub) fanOut(message Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		select {
		case client.send <- message:
			// Сообщение отправлено
		default:
			close(client.send)
			delete(h.clients, client)
			h.logger.Warn("Client channel full, disconnected")
		}
	}
}

// Register регистрирует нового клиента
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister удаляет клиента
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// BroadcastSnapshot отправляет снимок всем клиентам (реализация port.NotificationService)
func (h *Hub) BroadcastSnapshot(snapshot *dto.StationSnapshotDTO) {
	select {
	case h.broadcastSnapshot <- snapshot:
		// Snapshot отправлен в канал
	default:
		h.logger.Warn("Broadcast channel full, dropping snapshot")
	}
}

// BroadcastToast отправляет toast всем клиентам (реализация port.NotificationService)
func (h *Hub) BroadcastToast(toast *dto.ToastDTO) {
	select {
	case h.broadcastToast <- toast:
		// Toast отправлен в канал
	default:
		h.logger.Warn("Broadcast toast channel full, dropping toast")
	}
}

// BroadcastSpotlight отправляет смену фокуса всем клиентам (реализация port.NotificationService)
func (h *Hub) BroadcastSpotlight(spotlight *dto.SpotlightDTO) {
	select {
	case h.broadcastSpotlight <- spotlight:
		// Смена фокуса отправлена в канал
	default:
		h.logger.Warn("Broadcast spotlight channel full, dropping change")
	}
}

// ClientCount возвращает количество подключенных клиентов (реализация port.NotificationService)
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Message представляет сообщение для отправки клиенту
type Message struct {
	Type string      `json:"type"` // "snapshot", "toast" или "spotlight"
	Data interface{} `json:"data"`
}

// InboundMessage представляет сообщение от клиента
type InboundMessage struct {
	Type string `json:"type"` // пока только "dismiss"
	ID   string `json:"id"`
}
