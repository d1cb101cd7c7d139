package realtime

import (
	"encoding/json"
	"sync"
	"time"

	"resto-server/internal/interfaces"
	"resto-server/internal/models"

	"github.com/rs/zerolog"
)

// FeedEvent - конверт события ленты заказов, уходящий в WebSocket.
type FeedEvent struct {
	Type      string               `json:"type"`
	Event     models.OrderEventKind `json:"event"`
	Order     models.OrderSummary  `json:"order"`
	Timestamp time.Time            `json:"timestamp"`
}

// Hub управляет активными WebSocket соединениями ленты заказов
// и рассылает события всем подключенным клиентам.
type Hub struct {
	clients    map[string]*Client // connID -> Client
	register   chan *Client
	unregister chan string
	broadcast  chan []byte
	mu         sync.RWMutex
	logger     zerolog.Logger
}

var _ interfaces.OrderEventBroadcaster = (*Hub)(nil)

// NewHub создает и запускает новый хаб соединений.
func NewHub(logger zerolog.Logger) *Hub {
	h := &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan string),
		broadcast:  make(chan []byte, 64),
		logger:     logger.With().Str("component", "Hub").Logger(),
	}
	go h.run()
	return h
}

// run - основной цикл хаба: регистрация, дерегистрация, рассылка.
func (h *Hub) run() {
	h.logger.Info().Msg("Hub запущен")
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.ConnID] = client
			h.mu.Unlock()
			h.logger.Info().Str("connID", client.ConnID).Str("userID", client.UserID).Msg("Клиент зарегистрирован")

		case connID := <-h.unregister:
			h.mu.Lock()
			if client, ok := h.clients[connID]; ok {
				delete(h.clients, connID)
				close(client.send)
			}
			h.mu.Unlock()
			h.logger.Info().Str("connID", connID).Msg("Клиент отключен")

		case message := <-h.broadcast:
			h.mu.RLock()
			for _, client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Очередь клиента переполнена, событие для него теряется.
					h.logger.Warn().Str("connID", client.ConnID).Msg("Очередь отправки переполнена, событие пропущено")
				}
			}
			h.mu.RUnlock()
		}
	}
}

// RegisterClient регистрирует нового клиента.
func (h *Hub) RegisterClient(client *Client) {
	h.register <- client
}

// UnregisterClient удаляет клиента.
func (h *Hub) UnregisterClient(connID string) {
	h.unregister <- connID
}

// ClientCount возвращает число подключенных клиентов.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// BroadcastOrderEvent рассылает событие заказа всем подключенным клиентам.
func (h *Hub) BroadcastOrderEvent(event models.OrderEventKind, summary models.OrderSummary) {
	payload, err := json.Marshal(FeedEvent{
		Type:      "order_event",
		Event:     event,
		Order:     summary,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		h.logger.Error().Err(err).Msg("Не удалось сериализовать событие ленты")
		return
	}
	select {
	case h.broadcast <- payload:
	default:
		h.logger.Warn().Msg("Канал рассылки переполнен, событие пропущено")
	}
}
