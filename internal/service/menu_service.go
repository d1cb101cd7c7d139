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

// MenuService - бизнес-логика позиций меню.
type MenuService interface {
	CreateMenuItem(ctx context.Context, item *models.MenuItem) (*models.MenuItem, error)
	GetMenuItem(ctx context.Context, id uuid.UUID) (*models.MenuItem, error)
	ListMenu(ctx context.Context) ([]models.MenuItem, error)
	UpdateMenuItem(ctx context.Context, item *models.MenuItem) (*models.MenuItem, error)
	DeleteMenuItem(ctx context.Context, id uuid.UUID) error
}

type menuService struct {
	repo   interfaces.MenuRepository
	logger *zap.Logger
}

var _ MenuService = (*menuService)(nil)

func NewMenuService(repo interfaces.MenuRepository, logger *zap.Logger) MenuService {
	return &menuService{repo: repo, logger: logger.Named("menu_service")}
}

func (s *menuService) CreateMenuItem(ctx context.Context, item *models.MenuItem) (*models.MenuItem, error) {
	if err := validateMenuItem(item); err != nil {
		return nil, err
	}
	item.ID = uuid.New()
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("create menu item: %w", err)
	}
	s.logger.Info("Позиция меню создана", zap.String("id", item.ID.String()), zap.String("name", item.Name))
	return item, nil
}

func (s *menuService) GetMenuItem(ctx context.Context, id uuid.UUID) (*models.MenuItem, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *menuService) ListMenu(ctx context.Context) ([]models.MenuItem, error) {
	return s.repo.List(ctx)
}

func (s *menuService) UpdateMenuItem(ctx context.Context, item *models.MenuItem) (*models.MenuItem, error) {
	if err := validateMenuItem(item); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *menuService) DeleteMenuItem(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func validateMenuItem(item *models.MenuItem) error {
	if strings.TrimSpace(item.Name) == "" {
		return fmt.Errorf("%w: name is required", models.ErrBadRequest)
	}
	if item.PriceCents < 0 {
		return fmt.Errorf("%w: price must not be negative", models.ErrBadRequest)
	}
	return nil
}
