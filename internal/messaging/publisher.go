package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"resto-server/internal/interfaces"
	"resto-server/internal/models"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

var _ interfaces.OrderEventPublisher = (*rabbitOrderEventPublisher)(nil)

// rabbitOrderEventPublisher публикует события заказов в очередь RabbitMQ,
// откуда их забирает консьюмер диспетчера уведомлений.
type rabbitOrderEventPublisher struct {
	conn      *amqp.Connection
	logger    *zap.Logger
	queueName string
}

func NewRabbitOrderEventPublisher(conn *amqp.Connection, queueName string, logger *zap.Logger) (interfaces.OrderEventPublisher, error) {
	if conn == nil {
		return nil, fmt.Errorf("RabbitMQ connection is nil")
	}

	publisher := &rabbitOrderEventPublisher{
		conn:      conn,
		logger:    logger.Named("order_event_publisher").With(zap.String("queue", queueName)),
		queueName: queueName,
	}

	// Объявляем очередь при старте, чтобы поймать проблемы конфигурации сразу.
	if err := publisher.verifyQueue(); err != nil {
		return nil, fmt.Errorf("failed to verify queue %s on init: %w", queueName, err)
	}

	publisher.logger.Info("Publisher событий заказов инициализирован")
	return publisher, nil
}

func (p *rabbitOrderEventPublisher) verifyQueue() error {
	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	_, err = ch.QueueDeclare(
		p.queueName,
		true,  // durable (должно совпадать с consumer'ом)
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue '%s': %w", p.queueName, err)
	}
	return nil
}

func (p *rabbitOrderEventPublisher) PublishOrderEvent(ctx context.Context, payload models.TriggerPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal order event: %w", err)
	}

	ch, err := p.conn.Channel()
	if err != nil {
		p.logger.Error("Не удалось открыть канал для публикации", zap.Error(err))
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	err = ch.PublishWithContext(ctx,
		"",          // exchange (default)
		p.queueName, // routing key (имя очереди)
		false,       // mandatory
		false,       // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		p.logger.Error("Ошибка публикации события заказа", zap.Error(err))
		return fmt.Errorf("failed to publish order event: %w", err)
	}

	p.logger.Debug("Событие заказа опубликовано", zap.String("event", string(payload.EventType)))
	return nil
}
