package models

import "github.com/google/uuid"

// OrderEventKind - тип события заказа, приводящего к push уведомлению.
type OrderEventKind string

const (
	EventNewOrder  OrderEventKind = "new_order"
	EventItemAdded OrderEventKind = "item_added"
)

// TriggerPayload - входящее событие изменения данных для диспетчера.
// Record может отсутствовать (health-check ping). EventType по умолчанию
// трактуется как new_order.
type TriggerPayload struct {
	EventType OrderEventKind `json:"eventType,omitempty"`
	Record    *ChangeRecord  `json:"record,omitempty"`
}

// ChangeRecord - измененная строка. Для new_order заполнены ID/Number/Table/Total,
// для item_added - OrderID/ItemName/Quantity.
type ChangeRecord struct {
	ID          *uuid.UUID `json:"id,omitempty"`
	OrderID     *uuid.UUID `json:"order_id,omitempty"`
	Number      *int64     `json:"number,omitempty"`
	TableNumber *int       `json:"table_number,omitempty"`
	TotalCents  *int64     `json:"total_cents,omitempty"`
	ItemName    string     `json:"item_name,omitempty"`
	Quantity    int        `json:"quantity,omitempty"`
}

// PushMessage - одно сообщение для шлюза доставки в его wire-формате.
// Шлюз принимает пачки не более чем по 100 таких объектов.
type PushMessage struct {
	To        string            `json:"to"`
	Sound     string            `json:"sound"`
	Title     string            `json:"title"`
	Body      string            `json:"body"`
	Data      map[string]string `json:"data,omitempty"`
	ChannelID string            `json:"channelId"`
	Priority  string            `json:"priority"`
}

// PushTicket - результат доставки одного сообщения, как его вернул шлюз.
// Тело ответа шлюза не интерпретируется, передается вызывающему как есть.
type PushTicket struct {
	ID      string            `json:"id,omitempty"`
	Status  string            `json:"status,omitempty"`
	Message string            `json:"message,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

// DispatchResult - итог одного вызова диспетчера.
type DispatchResult struct {
	Message    string         `json:"message,omitempty"`
	Event      OrderEventKind `json:"event,omitempty"`
	Recipients int            `json:"recipients"`
	Batches    [][]PushTicket `json:"batches,omitempty"`
}

// NoOp сообщает, был ли вызов пустым (ping, нет получателей и т.п.).
func (r *DispatchResult) NoOp() bool {
	return len(r.Batches) == 0
}
