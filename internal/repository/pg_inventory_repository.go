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

const (
	// Списание внутри транзакции: уменьшаем остаток и пересчитываем флаг is_low
	// одним оператором, чтобы не было окна между чтением и записью.
	deductIngredientQuery = `
		UPDATE ingredients
		SET quantity = quantity - $2,
		    is_low = (quantity - $2) <= low_threshold,
		    updated_at = NOW()
		WHERE id = $1;
	`
)

var _ interfaces.InventoryRepository = (*pgInventoryRepository)(nil)

type pgInventoryRepository struct {
	db     interfaces.DBTX
	logger *zap.Logger
}

func NewPgInventoryRepository(db interfaces.DBTX, logger *zap.Logger) interfaces.InventoryRepository {
	return &pgInventoryRepository{
		db:     db,
		logger: logger.Named("PgInventoryRepo"),
	}
}

func (r *pgInventoryRepository) CreateIngredient(ctx context.Context, ing *models.Ingredient) error {
	query := `
		INSERT INTO ingredients (name, unit, quantity, low_threshold, is_low)
		VALUES ($1, $2, $3, $4, $3 <= $4)
		RETURNING id, is_low, updated_at`
	err := r.db.QueryRow(ctx, query, ing.Name, ing.Unit, ing.Quantity, ing.LowThreshold).
		Scan(&ing.ID, &ing.IsLow, &ing.UpdatedAt)
	if err != nil {
		r.logger.Error("Failed to create ingredient", zap.Error(err), zap.String("name", ing.Name))
		return fmt.Errorf("db error creating ingredient: %w", err)
	}
	return nil
}

func (r *pgInventoryRepository) GetIngredient(ctx context.Context, id uuid.UUID) (*models.Ingredient, error) {
	query := `SELECT id, name, unit, quantity, low_threshold, is_low, updated_at FROM ingredients WHERE id = $1`
	ing := &models.Ingredient{}
	err := r.db.QueryRow(ctx, query, id).Scan(
		&ing.ID, &ing.Name, &ing.Unit, &ing.Quantity, &ing.LowThreshold, &ing.IsLow, &ing.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrIngredientNotFound
		}
		r.logger.Error("Failed to get ingredient", zap.Error(err), zap.String("id", id.String()))
		return nil, fmt.Errorf("db error getting ingredient: %w", err)
	}
	return ing, nil
}

func (r *pgInventoryRepository) ListIngredients(ctx context.Context) ([]models.Ingredient, error) {
	query := `SELECT id, name, unit, quantity, low_threshold, is_low, updated_at FROM ingredients ORDER BY name`
	ingredients := make([]models.Ingredient, 0)
	if err := pgxscan.Select(ctx, r.db, &ingredients, query); err != nil {
		r.logger.Error("Failed to list ingredients", zap.Error(err))
		return nil, fmt.Errorf("db error listing ingredients: %w", err)
	}
	return ingredients, nil
}

// AdjustQuantity изменяет остаток вручную (приход, инвентаризация).
func (r *pgInventoryRepository) AdjustQuantity(ctx context.Context, id uuid.UUID, delta float64) (*models.Ingredient, error) {
	query := `
		UPDATE ingredients
		SET quantity = quantity + $2,
		    is_low = (quantity + $2) <= low_threshold,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING id, name, unit, quantity, low_threshold, is_low, updated_at`
	ing := &models.Ingredient{}
	err := r.db.QueryRow(ctx, query, id, delta).Scan(
		&ing.ID, &ing.Name, &ing.Unit, &ing.Quantity, &ing.LowThreshold, &ing.IsLow, &ing.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrIngredientNotFound
		}
		r.logger.Error("Failed to adjust ingredient quantity", zap.Error(err), zap.String("id", id.String()))
		return nil, fmt.Errorf("db error adjusting ingredient: %w", err)
	}
	return ing, nil
}

func (r *pgInventoryRepository) LinkRecipe(ctx context.Context, link *models.RecipeLink) error {
	query := `
		INSERT INTO recipe_links (menu_item_id, ingredient_id, amount_per_use)
		VALUES ($1, $2, $3)
		ON CONFLICT (menu_item_id, ingredient_id)
		DO UPDATE SET amount_per_use = EXCLUDED.amount_per_use`
	if _, err := r.db.Exec(ctx, query, link.MenuItemID, link.IngredientID, link.AmountPerUse); err != nil {
		r.logger.Error("Failed to link recipe", zap.Error(err))
		return fmt.Errorf("db error linking recipe: %w", err)
	}
	return nil
}

// GetRecipeLinks возвращает рецептурные связи для набора позиций меню.
// Выполняется на переданном исполнителе, чтобы попасть в транзакцию списания.
func (r *pgInventoryRepository) GetRecipeLinks(ctx context.Context, q interfaces.DBTX, menuItemIDs []uuid.UUID) ([]models.RecipeLink, error) {
	query := `SELECT menu_item_id, ingredient_id, amount_per_use FROM recipe_links WHERE menu_item_id = ANY($1)`
	links := make([]models.RecipeLink, 0)
	if err := pgxscan.Select(ctx, q, &links, query, menuItemIDs); err != nil {
		r.logger.Error("Failed to get recipe links", zap.Error(err))
		return nil, fmt.Errorf("db error getting recipe links: %w", err)
	}
	return links, nil
}

// DeductTx списывает агрегированные количества ингредиентов внутри транзакции.
// Ингредиенты без рецептурных связей сюда не попадают: позиция без рецепта
// молча пропускается на уровне сервиса.
func (r *pgInventoryRepository) DeductTx(ctx context.Context, tx pgx.Tx, required map[uuid.UUID]float64) error {
	for ingredientID, amount := range required {
		if amount <= 0 {
			continue
		}
		if _, err := tx.Exec(ctx, deductIngredientQuery, ingredientID, amount); err != nil {
			r.logger.Error("Failed to deduct ingredient",
				zap.String("ingredientID", ingredientID.String()),
				zap.Float64("amount", amount),
				zap.Error(err),
			)
			return fmt.Errorf("db error deducting ingredient %s: %w", ingredientID, err)
		}
	}
	return nil
}
