package realtime

import (
	"context"
	"net/http"

	"resto-server/internal/models"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// TokenVerifier проверяет access токен и возвращает claims.
type TokenVerifier interface {
	VerifyAccessToken(ctx context.Context, tokenString string) (*models.Claims, error)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Браузерных клиентов у ленты нет, соединяются только приложения персонала.
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WebSocketHandler обрабатывает запросы на подключение к ленте заказов.
type WebSocketHandler struct {
	hub      *Hub
	verifier TokenVerifier
	logger   zerolog.Logger
}

func NewWebSocketHandler(hub *Hub, verifier TokenVerifier, logger zerolog.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		hub:      hub,
		verifier: verifier,
		logger:   logger.With().Str("component", "WebSocketHandler").Logger(),
	}
}

// ServeWS обрабатывает входящий HTTP запрос для WebSocket.
// Токен передается query-параметром 'token', так как браузерный
// WebSocket API не позволяет выставить заголовок Authorization.
func (h *WebSocketHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	tokenString := r.URL.Query().Get("token")
	if tokenString == "" {
		h.logger.Warn().Msg("Отсутствует query-параметр 'token'")
		http.Error(w, "Unauthorized: Missing token", http.StatusUnauthorized)
		return
	}

	claims, err := h.verifier.VerifyAccessToken(r.Context(), tokenString)
	if err != nil {
		h.logger.Warn().Err(err).Msg("Невалидный токен")
		http.Error(w, "Unauthorized: Invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// upgrader уже записал ответ с ошибкой.
		h.logger.Error().Err(err).Str("userID", claims.UserID.String()).Msg("Не удалось обновить соединение")
		return
	}

	client := &Client{
		ConnID: uuid.New().String(),
		UserID: claims.UserID.String(),
		Conn:   conn,
		send:   make(chan []byte, 256),
	}

	h.logger.Info().Str("userID", client.UserID).Str("connID", client.ConnID).Msg("WebSocket соединение установлено")
	h.hub.RegisterClient(client)

	logger := h.logger.With().Str("connID", client.ConnID).Logger()
	go client.writePump(logger)
	go client.readPump(h.hub, logger)
}
