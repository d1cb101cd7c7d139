package repository

import (
	"context"
	"errors"
	"fmt"

	"resto-server/internal/interfaces"
	"resto-server/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

var _ interfaces.OrderRepository = (*pgOrderRepository)(nil)

type pgOrderRepository struct {
	db     interfaces.DBTX
	logger *zap.Logger
}

func NewPgOrderRepository(db interfaces.DBTX, logger *zap.Logger) interfaces.OrderRepository {
	return &pgOrderRepository{
		db:     db,
		logger: logger.Named("PgOrderRepo"),
	}
}

// Create вставляет заказ. Номер выдает последовательность order_number_seq.
func (r *pgOrderRepository) Create(ctx context.Context, q interfaces.DBTX, order *models.Order) error {
	query := `
		INSERT INTO orders (table_number, status, total_cents, created_by)
		VALUES ($1, $2, $3, $4)
		RETURNING id, number, created_at, updated_at`
	err := q.QueryRow(ctx, query, order.TableNumber, order.Status, order.TotalCents, order.CreatedBy).
		Scan(&order.ID, &order.Number, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		r.logger.Error("Failed to create order", zap.Error(err))
		return fmt.Errorf("db error creating order: %w", err)
	}
	return nil
}

func (r *pgOrderRepository) AddItem(ctx context.Context, q interfaces.DBTX, item *models.OrderItem) error {
	query := `
		INSERT INTO order_items (order_id, menu_item_id, name, quantity, price_cents)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`
	err := q.QueryRow(ctx, query, item.OrderID, item.MenuItemID, item.Name, item.Quantity, item.PriceCents).
		Scan(&item.ID, &item.CreatedAt)
	if err != nil {
		r.logger.Error("Failed to add order item", zap.Error(err), zap.String("orderID", item.OrderID.String()))
		return fmt.Errorf("db error adding order item: %w", err)
	}
	return nil
}

func (r *pgOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	query := `SELECT id, number, table_number, status, total_cents, created_by, created_at, updated_at FROM orders WHERE id = $1`
	order := &models.Order{}
	err := r.db.QueryRow(ctx, query, id).Scan(
		&order.ID, &order.Number, &order.TableNumber, &order.Status,
		&order.TotalCents, &order.CreatedBy, &order.CreatedAt, &order.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrOrderNotFound
		}
		r.logger.Error("Failed to get order", zap.Error(err), zap.String("id", id.String()))
		return nil, fmt.Errorf("db error getting order: %w", err)
	}

	items, err := r.listItems(ctx, id)
	if err != nil {
		return nil, err
	}
	order.Items = items
	return order, nil
}

// GetSummary возвращает сокращенное представление заказа для уведомлений.
func (r *pgOrderRepository) GetSummary(ctx context.Context, id uuid.UUID) (*models.OrderSummary, error) {
	query := `SELECT id, number, table_number, total_cents FROM orders WHERE id = $1`
	summary := &models.OrderSummary{}
	err := r.db.QueryRow(ctx, query, id).Scan(&summary.ID, &summary.Number, &summary.TableNumber, &summary.TotalCents)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrOrderNotFound
		}
		r.logger.Error("Failed to get order summary", zap.Error(err), zap.String("id", id.String()))
		return nil, fmt.Errorf("db error getting order summary: %w", err)
	}
	return summary, nil
}

func (r *pgOrderRepository) List(ctx context.Context, status *models.OrderStatus, limit int) ([]models.Order, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	query := `SELECT id, number, table_number, status, total_cents, created_by, created_at, updated_at FROM orders`
	args := []any{}
	if status != nil {
		query += ` WHERE status = $1`
		args = append(args, *status)
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT %d`, limit)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list orders", zap.Error(err))
		return nil, fmt.Errorf("db error listing orders: %w", err)
	}
	defer rows.Close()

	orders := make([]models.Order, 0, limit)
	for rows.Next() {
		var o models.Order
		if err := rows.Scan(&o.ID, &o.Number, &o.TableNumber, &o.Status, &o.TotalCents, &o.CreatedBy, &o.CreatedAt, &o.UpdatedAt); err != nil {
			r.logger.Error("Failed to scan order row", zap.Error(err))
			return nil, fmt.Errorf("db error scanning order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error iterating orders: %w", err)
	}
	return orders, nil
}

func (r *pgOrderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus) error {
	cmdTag, err := r.db.Exec(ctx, `UPDATE orders SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	if err != nil {
		r.logger.Error("Failed to update order status", zap.Error(err), zap.String("id", id.String()))
		return fmt.Errorf("db error updating order status: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return models.ErrOrderNotFound
	}
	return nil
}

func (r *pgOrderRepository) UpdateTotal(ctx context.Context, q interfaces.DBTX, id uuid.UUID, totalCents int64) error {
	cmdTag, err := q.Exec(ctx, `UPDATE orders SET total_cents = $2, updated_at = NOW() WHERE id = $1`, id, totalCents)
	if err != nil {
		r.logger.Error("Failed to update order total", zap.Error(err), zap.String("id", id.String()))
		return fmt.Errorf("db error updating order total: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return models.ErrOrderNotFound
	}
	return nil
}

func (r *pgOrderRepository) listItems(ctx context.Context, orderID uuid.UUID) ([]models.OrderItem, error) {
	query := `SELECT id, order_id, menu_item_id, name, quantity, price_cents, created_at FROM order_items WHERE order_id = $1 ORDER BY created_at`
	rows, err := r.db.Query(ctx, query, orderID)
	if err != nil {
		r.logger.Error("Failed to list order items", zap.Error(err), zap.String("orderID", orderID.String()))
		return nil, fmt.Errorf("db error listing order items: %w", err)
	}
	defer rows.Close()

	items := make([]models.OrderItem, 0)
	for rows.Next() {
		var it models.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.MenuItemID, &it.Name, &it.Quantity, &it.PriceCents, &it.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error scanning order item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error iterating order items: %w", err)
	}
	return items, nil
}
