package repository

import (
	"context"
	"errors"
	"fmt"

	"resto-server/internal/interfaces"
	"resto-server/internal/models"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

var _ interfaces.MenuRepository = (*pgMenuRepository)(nil)

type pgMenuRepository struct {
	db     interfaces.DBTX
	logger *zap.Logger
}

func NewPgMenuRepository(db interfaces.DBTX, logger *zap.Logger) interfaces.MenuRepository {
	return &pgMenuRepository{
		db:     db,
		logger: logger.Named("PgMenuRepo"),
	}
}

func (r *pgMenuRepository) Create(ctx context.Context, item *models.MenuItem) error {
	query := `
		INSERT INTO menu_items (name, category, price_cents, available, image_path)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`
	err := r.db.QueryRow(ctx, query, item.Name, item.Category, item.PriceCents, item.Available, item.ImagePath).
		Scan(&item.ID, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		r.logger.Error("Failed to create menu item", zap.Error(err), zap.String("name", item.Name))
		return fmt.Errorf("db error creating menu item: %w", err)
	}
	return nil
}

func (r *pgMenuRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.MenuItem, error) {
	query := `SELECT id, name, category, price_cents, available, image_path, created_at, updated_at FROM menu_items WHERE id = $1`
	item := &models.MenuItem{}
	err := r.db.QueryRow(ctx, query, id).Scan(
		&item.ID, &item.Name, &item.Category, &item.PriceCents,
		&item.Available, &item.ImagePath, &item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrMenuItemNotFound
		}
		r.logger.Error("Failed to get menu item", zap.Error(err), zap.String("id", id.String()))
		return nil, fmt.Errorf("db error getting menu item: %w", err)
	}
	return item, nil
}

func (r *pgMenuRepository) List(ctx context.Context) ([]models.MenuItem, error) {
	query := `SELECT id, name, category, price_cents, available, image_path, created_at, updated_at FROM menu_items ORDER BY category, name`
	items := make([]models.MenuItem, 0)
	if err := pgxscan.Select(ctx, r.db, &items, query); err != nil {
		r.logger.Error("Failed to list menu items", zap.Error(err))
		return nil, fmt.Errorf("db error listing menu items: %w", err)
	}
	return items, nil
}

func (r *pgMenuRepository) Update(ctx context.Context, item *models.MenuItem) error {
	query := `
		UPDATE menu_items
		SET name = $2, category = $3, price_cents = $4, available = $5, image_path = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`
	err := r.db.QueryRow(ctx, query, item.ID, item.Name, item.Category, item.PriceCents, item.Available, item.ImagePath).
		Scan(&item.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.ErrMenuItemNotFound
		}
		r.logger.Error("Failed to update menu item", zap.Error(err), zap.String("id", item.ID.String()))
		return fmt.Errorf("db error updating menu item: %w", err)
	}
	return nil
}

func (r *pgMenuRepository) Delete(ctx context.Context, id uuid.UUID) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM menu_items WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Failed to delete menu item", zap.Error(err), zap.String("id", id.String()))
		return fmt.Errorf("db error deleting menu item: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return models.ErrMenuItemNotFound
	}
	return nil
}
