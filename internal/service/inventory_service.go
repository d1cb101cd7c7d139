package service

import (
	"context"
	"fmt"
	"strings"

	"resto-server/internal/interfaces"
	"resto-server/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// InventoryService - бизнес-логика склада.
type InventoryService interface {
	CreateIngredient(ctx context.Context, ing *models.Ingredient) (*models.Ingredient, error)
	GetIngredient(ctx context.Context, id uuid.UUID) (*models.Ingredient, error)
	ListIngredients(ctx context.Context) ([]models.Ingredient, error)
	Restock(ctx context.Context, id uuid.UUID, amount float64) (*models.Ingredient, error)
	LinkRecipe(ctx context.Context, link *models.RecipeLink) error
	ListLowStock(ctx context.Context) ([]models.Ingredient, error)
}

type inventoryService struct {
	repo   interfaces.InventoryRepository
	logger *zap.Logger
}

var _ InventoryService = (*inventoryService)(nil)

func NewInventoryService(repo interfaces.InventoryRepository, logger *zap.Logger) InventoryService {
	return &inventoryService{repo: repo, logger: logger.Named("inventory_service")}
}

func (s *inventoryService) CreateIngredient(ctx context.Context, ing *models.Ingredient) (*models.Ingredient, error) {
	if strings.TrimSpace(ing.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", models.ErrBadRequest)
	}
	if ing.Quantity < 0 || ing.LowThreshold < 0 {
		return nil, fmt.Errorf("%w: quantities must not be negative", models.ErrBadRequest)
	}
	ing.ID = uuid.New()
	ing.IsLow = ing.Quantity <= ing.LowThreshold
	if err := s.repo.CreateIngredient(ctx, ing); err != nil {
		return nil, fmt.Errorf("create ingredient: %w", err)
	}
	return ing, nil
}

func (s *inventoryService) GetIngredient(ctx context.Context, id uuid.UUID) (*models.Ingredient, error) {
	return s.repo.GetIngredient(ctx, id)
}

func (s *inventoryService) ListIngredients(ctx context.Context) ([]models.Ingredient, error) {
	return s.repo.ListIngredients(ctx)
}

// Restock увеличивает остаток. Отрицательный amount - ручная корректировка вниз.
func (s *inventoryService) Restock(ctx context.Context, id uuid.UUID, amount float64) (*models.Ingredient, error) {
	if amount == 0 {
		return nil, fmt.Errorf("%w: amount must not be zero", models.ErrBadRequest)
	}
	ing, err := s.repo.AdjustQuantity(ctx, id, amount)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Остаток ингредиента изменен",
		zap.String("id", id.String()),
		zap.Float64("delta", amount),
		zap.Float64("quantity", ing.Quantity),
	)
	return ing, nil
}

func (s *inventoryService) LinkRecipe(ctx context.Context, link *models.RecipeLink) error {
	if link.AmountPerUse <= 0 {
		return fmt.Errorf("%w: amount_per_use must be positive", models.ErrBadRequest)
	}
	return s.repo.LinkRecipe(ctx, link)
}

func (s *inventoryService) ListLowStock(ctx context.Context) ([]models.Ingredient, error) {
	all, err := s.repo.ListIngredients(ctx)
	if err != nil {
		return nil, err
	}
	low := make([]models.Ingredient, 0)
	for _, ing := range all {
		if ing.IsLow {
			low = append(low, ing)
		}
	}
	return low, nil
}
