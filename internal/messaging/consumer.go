package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"resto-server/internal/models"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// OrderEventHandler обрабатывает одно событие заказа.
// Определен здесь, чтобы не тянуть пакет service и не создавать цикл импорта.
type OrderEventHandler interface {
	Dispatch(ctx context.Context, payload models.TriggerPayload) (*models.DispatchResult, error)
}

// Consumer читает события заказов из очереди и передает их обработчику
// через пул воркеров.
type Consumer struct {
	conn        *amqp.Connection
	logger      *zap.Logger
	queueName   string
	concurrency int
	processor   *Processor
	stopChannel chan struct{}
	cancelFunc  context.CancelFunc
	wg          sync.WaitGroup
}

func NewConsumer(conn *amqp.Connection, logger *zap.Logger, queueName string, concurrency int, processor *Processor) (*Consumer, error) {
	if concurrency <= 0 {
		concurrency = 1
	}
	c := &Consumer{
		conn:        conn,
		logger:      logger.Named("consumer"),
		queueName:   queueName,
		concurrency: concurrency,
		processor:   processor,
		stopChannel: make(chan struct{}),
	}
	return c, nil
}

func (c *Consumer) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	c.cancelFunc = cancel

	ch, err := c.conn.Channel()
	if err != nil {
		return fmt.Errorf("не удалось открыть канал RabbitMQ: %w", err)
	}
	defer ch.Close()

	q, err := ch.QueueDeclare(
		c.queueName,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return fmt.Errorf("не удалось объявить очередь '%s': %w", c.queueName, err)
	}
	c.logger.Info("Очередь успешно объявлена/найдена", zap.String("queue", q.Name))

	if err := ch.Qos(c.concurrency, 0, false); err != nil {
		return fmt.Errorf("не удалось установить QoS: %w", err)
	}

	msgs, err := ch.Consume(
		q.Name,
		"order-events-consumer", // consumer tag
		false,                   // auto-ack = false
		false,                   // exclusive
		false,                   // no-local
		false,                   // no-wait
		nil,                     // args
	)
	if err != nil {
		return fmt.Errorf("не удалось зарегистрировать консьюмера: %w", err)
	}

	c.logger.Info("Консьюмер запущен, ожидание событий...", zap.Int("concurrency", c.concurrency))

	c.wg.Add(c.concurrency)
	for i := 0; i < c.concurrency; i++ {
		go func(workerID int) {
			defer c.wg.Done()
			logger := c.logger.With(zap.Int("worker_id", workerID))
			logger.Info("Воркер запущен")
			for {
				select {
				case <-ctx.Done():
					logger.Info("Воркер останавливается из-за отмены контекста")
					return
				case <-c.stopChannel:
					logger.Info("Воркер останавливается из-за сигнала stopChannel")
					return
				case d, ok := <-msgs:
					if !ok {
						logger.Info("Канал сообщений закрыт, воркер завершает работу")
						return
					}
					c.processor.ProcessMessage(ctx, d)
				}
			}
		}(i)
	}

	<-c.stopChannel
	c.logger.Info("Получен сигнал остановки, отменяем контекст воркеров...")
	c.cancelFunc()

	c.wg.Wait()
	c.logger.Info("Все воркеры консьюмера остановлены")
	return nil
}

func (c *Consumer) Stop() {
	c.logger.Info("Инициирована остановка консьюмера...")
	close(c.stopChannel)
}

// Processor десериализует событие и зовет диспетчер уведомлений.
type Processor struct {
	logger  *zap.Logger
	handler OrderEventHandler
}

func NewProcessor(logger *zap.Logger, handler OrderEventHandler) *Processor {
	return &Processor{
		logger:  logger.Named("processor"),
		handler: handler,
	}
}

func (p *Processor) ProcessMessage(ctx context.Context, d amqp.Delivery) {
	var payload models.TriggerPayload
	if err := json.Unmarshal(d.Body, &payload); err != nil {
		p.logger.Error("Ошибка десериализации события заказа",
			zap.Error(err),
			zap.ByteString("body", d.Body),
			zap.Uint64("delivery_tag", d.DeliveryTag))
		// Битый JSON не станет лучше при повторе (nack, requeue=false).
		if ackErr := d.Nack(false, false); ackErr != nil {
			p.logger.Error("Ошибка Nack сообщения после ошибки JSON", zap.Error(ackErr), zap.Uint64("delivery_tag", d.DeliveryTag))
		}
		return
	}

	processCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	result, err := p.handler.Dispatch(processCtx, payload)
	if err != nil {
		p.logger.Error("Ошибка обработки события заказа",
			zap.Error(err),
			zap.String("event", string(payload.EventType)),
			zap.Uint64("delivery_tag", d.DeliveryTag))
		// Доставка best-effort, повторную постановку не используем.
		if ackErr := d.Nack(false, false); ackErr != nil {
			p.logger.Error("Ошибка Nack сообщения после ошибки обработки", zap.Error(ackErr), zap.Uint64("delivery_tag", d.DeliveryTag))
		}
		return
	}

	if ackErr := d.Ack(false); ackErr != nil {
		p.logger.Error("Ошибка Ack сообщения после успешной обработки", zap.Error(ackErr), zap.Uint64("delivery_tag", d.DeliveryTag))
		return
	}
	p.logger.Info("Событие заказа обработано",
		zap.String("event", string(payload.EventType)),
		zap.Int("recipients", result.Recipients),
		zap.Uint64("delivery_tag", d.DeliveryTag))
}
