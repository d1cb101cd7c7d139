package models

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatus - статус заказа.
type OrderStatus string

const (
	OrderStatusOpen      OrderStatus = "open"
	OrderStatusPreparing OrderStatus = "preparing"
	OrderStatusServed    OrderStatus = "served"
	OrderStatusPaid      OrderStatus = "paid"
)

// CanTransitionTo проверяет допустимость перехода статуса.
// Переходы только вперед: open -> preparing -> served -> paid.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	order := map[OrderStatus]int{
		OrderStatusOpen:      0,
		OrderStatusPreparing: 1,
		OrderStatusServed:    2,
		OrderStatusPaid:      3,
	}
	cur, okCur := order[s]
	nxt, okNext := order[next]
	return okCur && okNext && nxt == cur+1
}

// Order - заказ. Number - человекочитаемый номер для кухни и чека,
// TotalCents - сумма в минимальных единицах валюты.
type Order struct {
	ID          uuid.UUID   `json:"id"`
	Number      int64       `json:"number"`
	TableNumber *int        `json:"table_number,omitempty"`
	Status      OrderStatus `json:"status"`
	TotalCents  int64       `json:"total_cents"`
	Items       []OrderItem `json:"items,omitempty"`
	CreatedBy   uuid.UUID   `json:"created_by"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// OrderItem - позиция заказа.
type OrderItem struct {
	ID         uuid.UUID `json:"id"`
	OrderID    uuid.UUID `json:"order_id"`
	MenuItemID uuid.UUID `json:"menu_item_id"`
	Name       string    `json:"name"`
	Quantity   int       `json:"quantity"`
	PriceCents int64     `json:"price_cents"`
	CreatedAt  time.Time `json:"created_at"`
}

// OrderSummary - сокращенное представление заказа для уведомлений и realtime ленты.
type OrderSummary struct {
	ID          uuid.UUID `json:"id"`
	Number      int64     `json:"number"`
	TableNumber *int      `json:"table_number,omitempty"`
	TotalCents  int64     `json:"total_cents"`
}
