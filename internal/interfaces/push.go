package interfaces

import (
	"context"

	"resto-server/internal/models"
)

// PushGateway - внешний шлюз доставки push сообщений.
// Принимает одну пачку (не более 100 сообщений) и возвращает результаты
// доставки в том порядке, в котором шли сообщения. Тело ответа шлюза
// не интерпретируется, результаты передаются вызывающему как есть.
type PushGateway interface {
	SendBatch(ctx context.Context, batch []models.PushMessage) ([]models.PushTicket, error)
}

// OrderEventPublisher публикует события заказов в очередь.
type OrderEventPublisher interface {
	PublishOrderEvent(ctx context.Context, payload models.TriggerPayload) error
}

// OrderEventBroadcaster рассылает события заказов подключенным realtime клиентам.
type OrderEventBroadcaster interface {
	BroadcastOrderEvent(event models.OrderEventKind, summary models.OrderSummary)
}
