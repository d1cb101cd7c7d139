package interfaces

import (
	"context"

	"resto-server/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// UserRepository - хранилище учетных записей.
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
}

// TokenRepository - хранилище идентификаторов выданных токенов (Redis).
// Возвращает models.ErrTokenNotFound, если токен не найден или истек.
type TokenRepository interface {
	SetToken(ctx context.Context, userID uuid.UUID, td *models.TokenDetails) error
	GetUserIDByAccessUUID(ctx context.Context, accessUUID string) (uuid.UUID, error)
	GetUserIDByRefreshUUID(ctx context.Context, refreshUUID string) (uuid.UUID, error)
	DeleteTokens(ctx context.Context, userID uuid.UUID, accessUUID, refreshUUID string) (int64, error)
}

// DeviceTokenRepository - хранилище push токенов устройств.
type DeviceTokenRepository interface {
	SaveDeviceToken(ctx context.Context, userID uuid.UUID, token, platform string) error
	DeleteDeviceToken(ctx context.Context, token string) error
	DeleteDeviceTokensForUser(ctx context.Context, userID uuid.UUID) (int64, error)
}

// RecipientProvider отдает push токены всех пользователей с ролью повара.
// Диспетчер зависит именно от него; реализации - pg репозиторий и
// кэширующая обертка поверх него.
type RecipientProvider interface {
	ListChefTokens(ctx context.Context) ([]models.DeviceTokenInfo, error)
}

// MenuRepository - хранилище позиций меню.
type MenuRepository interface {
	Create(ctx context.Context, item *models.MenuItem) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.MenuItem, error)
	List(ctx context.Context) ([]models.MenuItem, error)
	Update(ctx context.Context, item *models.MenuItem) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// InventoryRepository - хранилище ингредиентов и рецептурных связей.
// Методы с параметром q выполняются на переданном исполнителе,
// что позволяет включать их в транзакцию списания.
type InventoryRepository interface {
	CreateIngredient(ctx context.Context, ing *models.Ingredient) error
	GetIngredient(ctx context.Context, id uuid.UUID) (*models.Ingredient, error)
	ListIngredients(ctx context.Context) ([]models.Ingredient, error)
	AdjustQuantity(ctx context.Context, id uuid.UUID, delta float64) (*models.Ingredient, error)
	LinkRecipe(ctx context.Context, link *models.RecipeLink) error
	GetRecipeLinks(ctx context.Context, q DBTX, menuItemIDs []uuid.UUID) ([]models.RecipeLink, error)
	DeductTx(ctx context.Context, tx pgx.Tx, required map[uuid.UUID]float64) error
}

// OrderRepository - хранилище заказов.
type OrderRepository interface {
	Create(ctx context.Context, q DBTX, order *models.Order) error
	AddItem(ctx context.Context, q DBTX, item *models.OrderItem) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	GetSummary(ctx context.Context, id uuid.UUID) (*models.OrderSummary, error)
	List(ctx context.Context, status *models.OrderStatus, limit int) ([]models.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus) error
	UpdateTotal(ctx context.Context, q DBTX, id uuid.UUID, totalCents int64) error
}
