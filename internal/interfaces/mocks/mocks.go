package mocks

import (
	"context"

	"resto-server/internal/interfaces"
	"resto-server/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"
)

// Mock RecipientProvider
type RecipientProvider struct {
	mock.Mock
}

func (m *RecipientProvider) ListChefTokens(ctx context.Context) ([]models.DeviceTokenInfo, error) {
	args := m.Called(ctx)
	if tokens, ok := args.Get(0).([]models.DeviceTokenInfo); ok {
		return tokens, args.Error(1)
	}
	return nil, args.Error(1)
}

// Mock PushGateway
type PushGateway struct {
	mock.Mock
}

func (m *PushGateway) SendBatch(ctx context.Context, batch []models.PushMessage) ([]models.PushTicket, error) {
	args := m.Called(ctx, batch)
	if tickets, ok := args.Get(0).([]models.PushTicket); ok {
		return tickets, args.Error(1)
	}
	return nil, args.Error(1)
}

// Mock OrderEventPublisher
type OrderEventPublisher struct {
	mock.Mock
}

func (m *OrderEventPublisher) PublishOrderEvent(ctx context.Context, payload models.TriggerPayload) error {
	args := m.Called(ctx, payload)
	return args.Error(0)
}

// Mock OrderEventBroadcaster
type OrderEventBroadcaster struct {
	mock.Mock
}

func (m *OrderEventBroadcaster) BroadcastOrderEvent(event models.OrderEventKind, summary models.OrderSummary) {
	m.Called(event, summary)
}

// Mock OrderRepository
type OrderRepository struct {
	mock.Mock
}

func (m *OrderRepository) Create(ctx context.Context, q interfaces.DBTX, order *models.Order) error {
	args := m.Called(ctx, q, order)
	return args.Error(0)
}

func (m *OrderRepository) AddItem(ctx context.Context, q interfaces.DBTX, item *models.OrderItem) error {
	args := m.Called(ctx, q, item)
	return args.Error(0)
}

func (m *OrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	args := m.Called(ctx, id)
	if order, ok := args.Get(0).(*models.Order); ok {
		return order, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *OrderRepository) GetSummary(ctx context.Context, id uuid.UUID) (*models.OrderSummary, error) {
	args := m.Called(ctx, id)
	if summary, ok := args.Get(0).(*models.OrderSummary); ok {
		return summary, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *OrderRepository) List(ctx context.Context, status *models.OrderStatus, limit int) ([]models.Order, error) {
	args := m.Called(ctx, status, limit)
	if orders, ok := args.Get(0).([]models.Order); ok {
		return orders, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *OrderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *OrderRepository) UpdateTotal(ctx context.Context, q interfaces.DBTX, id uuid.UUID, totalCents int64) error {
	args := m.Called(ctx, q, id, totalCents)
	return args.Error(0)
}

// Mock MenuRepository
type MenuRepository struct {
	mock.Mock
}

func (m *MenuRepository) Create(ctx context.Context, item *models.MenuItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MenuRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.MenuItem, error) {
	args := m.Called(ctx, id)
	if item, ok := args.Get(0).(*models.MenuItem); ok {
		return item, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MenuRepository) List(ctx context.Context) ([]models.MenuItem, error) {
	args := m.Called(ctx)
	if items, ok := args.Get(0).([]models.MenuItem); ok {
		return items, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MenuRepository) Update(ctx context.Context, item *models.MenuItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MenuRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// Mock InventoryRepository
type InventoryRepository struct {
	mock.Mock
}

func (m *InventoryRepository) CreateIngredient(ctx context.Context, ing *models.Ingredient) error {
	args := m.Called(ctx, ing)
	return args.Error(0)
}

func (m *InventoryRepository) GetIngredient(ctx context.Context, id uuid.UUID) (*models.Ingredient, error) {
	args := m.Called(ctx, id)
	if ing, ok := args.Get(0).(*models.Ingredient); ok {
		return ing, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *InventoryRepository) ListIngredients(ctx context.Context) ([]models.Ingredient, error) {
	args := m.Called(ctx)
	if ings, ok := args.Get(0).([]models.Ingredient); ok {
		return ings, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *InventoryRepository) AdjustQuantity(ctx context.Context, id uuid.UUID, delta float64) (*models.Ingredient, error) {
	args := m.Called(ctx, id, delta)
	if ing, ok := args.Get(0).(*models.Ingredient); ok {
		return ing, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *InventoryRepository) LinkRecipe(ctx context.Context, link *models.RecipeLink) error {
	args := m.Called(ctx, link)
	return args.Error(0)
}

func (m *InventoryRepository) GetRecipeLinks(ctx context.Context, q interfaces.DBTX, menuItemIDs []uuid.UUID) ([]models.RecipeLink, error) {
	args := m.Called(ctx, q, menuItemIDs)
	if links, ok := args.Get(0).([]models.RecipeLink); ok {
		return links, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *InventoryRepository) DeductTx(ctx context.Context, tx pgx.Tx, required map[uuid.UUID]float64) error {
	args := m.Called(ctx, tx, required)
	return args.Error(0)
}

// Mock DeviceTokenRepository
type DeviceTokenRepository struct {
	mock.Mock
}

func (m *DeviceTokenRepository) SaveDeviceToken(ctx context.Context, userID uuid.UUID, token, platform string) error {
	args := m.Called(ctx, userID, token, platform)
	return args.Error(0)
}

func (m *DeviceTokenRepository) DeleteDeviceToken(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *DeviceTokenRepository) DeleteDeviceTokensForUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}
