package service

import (
	"context"
	"fmt"
	"strconv"

	"resto-server/internal/interfaces"
	"resto-server/internal/models"

	"go.uber.org/zap"
)

const (
	// Максимальный размер пачки, который принимает шлюз доставки за один запрос.
	pushBatchSize = 100

	pushSound     = "default"
	pushChannelID = "orders"
	pushPriority  = "high"
)

// NotificationDispatcher превращает событие изменения заказа в push
// уведомления всем поварам. Вызов без записи (ping) и вызов без
// получателей завершаются успешно и ничего не отправляют.
type NotificationDispatcher struct {
	orders     interfaces.OrderRepository
	recipients interfaces.RecipientProvider
	gateway    interfaces.PushGateway
	logger     *zap.Logger
}

func NewNotificationDispatcher(
	orders interfaces.OrderRepository,
	recipients interfaces.RecipientProvider,
	gateway interfaces.PushGateway,
	logger *zap.Logger,
) *NotificationDispatcher {
	return &NotificationDispatcher{
		orders:     orders,
		recipients: recipients,
		gateway:    gateway,
		logger:     logger.Named("dispatcher"),
	}
}

// Dispatch обрабатывает одно событие. Ошибка возвращается только при
// невозможности собрать уведомление (БД недоступна, получатели не
// прочитаны); результаты самого шлюза передаются в DispatchResult как есть.
func (d *NotificationDispatcher) Dispatch(ctx context.Context, payload models.TriggerPayload) (*models.DispatchResult, error) {
	if payload.Record == nil {
		d.logger.Debug("Получен ping без записи, пропускаем.")
		return &models.DispatchResult{Message: "ping acknowledged"}, nil
	}

	event := payload.EventType
	if event == "" {
		event = models.EventNewOrder
	}

	title, body, data, err := d.composeMessage(ctx, event, payload.Record)
	if err != nil {
		return nil, err
	}
	if title == "" {
		// Запись не содержит достаточно данных для уведомления.
		return &models.DispatchResult{Message: "nothing to notify", Event: event}, nil
	}

	tokens, err := d.recipients.ListChefTokens(ctx)
	if err != nil {
		return nil, fmt.Errorf("list chef tokens: %w", err)
	}
	if len(tokens) == 0 {
		d.logger.Info("Нет зарегистрированных получателей, уведомление не отправлено.")
		return &models.DispatchResult{Message: "no recipients", Event: event}, nil
	}

	messages := make([]models.PushMessage, 0, len(tokens))
	for _, t := range tokens {
		messages = append(messages, models.PushMessage{
			To:        t.Token,
			Sound:     pushSound,
			Title:     title,
			Body:      body,
			Data:      data,
			ChannelID: pushChannelID,
			Priority:  pushPriority,
		})
	}

	result := &models.DispatchResult{
		Event:      event,
		Recipients: len(messages),
	}

	// Шлюз принимает не более pushBatchSize сообщений за запрос.
	// Пачки отправляются последовательно; ошибка пачки не прерывает
	// отправку остальных, тикеты и ошибки попадают в результат.
	for start := 0; start < len(messages); start += pushBatchSize {
		end := start + pushBatchSize
		if end > len(messages) {
			end = len(messages)
		}
		tickets, sendErr := d.gateway.SendBatch(ctx, messages[start:end])
		if sendErr != nil {
			d.logger.Error("Ошибка отправки пачки уведомлений",
				zap.Int("batch_start", start),
				zap.Int("batch_size", end-start),
				zap.Error(sendErr),
			)
			failed := make([]models.PushTicket, end-start)
			for i := range failed {
				failed[i] = models.PushTicket{Status: "error", Message: sendErr.Error()}
			}
			result.Batches = append(result.Batches, failed)
			continue
		}
		result.Batches = append(result.Batches, tickets)
	}

	d.logger.Info("Уведомления отправлены",
		zap.String("event", string(event)),
		zap.Int("recipients", result.Recipients),
		zap.Int("batches", len(result.Batches)),
	)
	return result, nil
}

// composeMessage собирает заголовок, текст и полезную нагрузку уведомления.
// Пустой заголовок означает, что уведомлять не о чем.
func (d *NotificationDispatcher) composeMessage(ctx context.Context, event models.OrderEventKind, rec *models.ChangeRecord) (string, string, map[string]string, error) {
	switch event {
	case models.EventItemAdded:
		if rec.OrderID == nil {
			return "", "", nil, nil
		}
		summary, err := d.orders.GetSummary(ctx, *rec.OrderID)
		if err != nil {
			return "", "", nil, fmt.Errorf("get order summary: %w", err)
		}
		title := fmt.Sprintf("Order Updated #%d", summary.Number)
		body := fmt.Sprintf("+%d %s (Table %s)", rec.Quantity, rec.ItemName, tableLabel(summary.TableNumber))
		data := map[string]string{
			"type":     "update",
			"orderId":  strconv.FormatInt(summary.Number, 10),
			"orderUid": summary.ID.String(),
		}
		return title, body, data, nil

	default:
		if rec.ID == nil {
			return "", "", nil, nil
		}
		var total int64
		if rec.TotalCents != nil {
			total = *rec.TotalCents
		}
		// Номер присваивает база; в ручном триггере его может не быть,
		// тогда заказ обозначается своим uuid.
		ref := rec.ID.String()
		if rec.Number != nil {
			ref = strconv.FormatInt(*rec.Number, 10)
		}
		title := fmt.Sprintf("New Order #%s", ref)
		body := fmt.Sprintf("Table %s - $%s", tableLabel(rec.TableNumber), formatCents(total))
		data := map[string]string{
			"type":     "new",
			"orderId":  ref,
			"orderUid": rec.ID.String(),
		}
		return title, body, data, nil
	}
}

func tableLabel(table *int) string {
	if table == nil {
		return "N/A"
	}
	return strconv.Itoa(*table)
}

// formatCents печатает сумму в минимальных единицах как десятичную строку.
func formatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}
