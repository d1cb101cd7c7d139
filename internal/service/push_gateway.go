package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"resto-server/internal/interfaces"
	"resto-server/internal/models"

	"go.uber.org/zap"
)

// expoPushGateway отправляет пачки сообщений в Expo-совместимый шлюз доставки.
// Шлюз принимает JSON массив сообщений (не более 100 за запрос) и возвращает
// по одному тикету на сообщение в том же порядке.
type expoPushGateway struct {
	endpoint  string
	authToken string
	client    *http.Client
	logger    *zap.Logger
}

var _ interfaces.PushGateway = (*expoPushGateway)(nil)

// NewExpoPushGateway создает клиента шлюза доставки.
// Если endpoint пуст, возвращается заглушка.
func NewExpoPushGateway(endpoint, authToken string, timeout time.Duration, logger *zap.Logger) interfaces.PushGateway {
	if endpoint == "" {
		logger.Warn("Push gateway endpoint не указан, используется заглушка.")
		return NewStubPushGateway(logger)
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &expoPushGateway{
		endpoint:  endpoint,
		authToken: authToken,
		client:    &http.Client{Timeout: timeout},
		logger:    logger.Named("expo_gateway"),
	}
}

// expoSendResponse - обертка ответа шлюза. Содержимое тикетов не
// интерпретируется, передается вызывающему как есть.
type expoSendResponse struct {
	Data []models.PushTicket `json:"data"`
}

func (g *expoPushGateway) SendBatch(ctx context.Context, batch []models.PushMessage) ([]models.PushTicket, error) {
	if len(batch) == 0 {
		return nil, fmt.Errorf("push gateway: empty batch")
	}

	body, err := json.Marshal(batch)
	if err != nil {
		return nil, fmt.Errorf("push gateway: marshal batch: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("push gateway: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if g.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+g.authToken)
	}

	start := time.Now()
	resp, err := g.client.Do(req)
	duration := time.Since(start)
	if err != nil {
		g.logger.Error("Ошибка запроса к шлюзу доставки", zap.Error(err), zap.Duration("duration", duration))
		return nil, fmt.Errorf("push gateway: request failed: %w", err)
	}
	defer resp.Body.Close()

	g.logger.Debug("Ответ шлюза доставки получен",
		zap.Int("status_code", resp.StatusCode),
		zap.Int("batch_size", len(batch)),
		zap.Duration("duration", duration),
	)

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("push gateway: read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("push gateway: received status %d: %s", resp.StatusCode, string(raw))
	}

	var parsed expoSendResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("push gateway: decode response: %w", err)
	}

	return parsed.Data, nil
}

// --- Заглушка для PushGateway ---

type stubPushGateway struct {
	logger *zap.Logger
}

func NewStubPushGateway(logger *zap.Logger) interfaces.PushGateway {
	return &stubPushGateway{logger: logger.Named("stub_push_gateway")}
}

func (g *stubPushGateway) SendBatch(ctx context.Context, batch []models.PushMessage) ([]models.PushTicket, error) {
	g.logger.Info("ЗАГЛУШКА: Отправка push пачки", zap.Int("count", len(batch)))
	tickets := make([]models.PushTicket, len(batch))
	for i := range batch {
		tickets[i] = models.PushTicket{Status: "ok"}
	}
	return tickets, nil
}
