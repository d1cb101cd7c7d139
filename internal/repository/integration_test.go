package repository_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"resto-server/internal/database"
	"resto-server/internal/interfaces"
	"resto-server/internal/models"
	"resto-server/internal/repository"
	"resto-server/internal/service"
	"resto-server/migrations"

	"github.com/docker/docker/client"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

// deviceTokenStore объединяет обе роли pg репозитория токенов устройств.
type deviceTokenStore interface {
	interfaces.DeviceTokenRepository
	interfaces.RecipientProvider
}

// RepositoryIntegrationSuite поднимает настоящие PostgreSQL и Redis
// в контейнерах и прогоняет репозитории против применённых миграций.
type RepositoryIntegrationSuite struct {
	suite.Suite
	ctx         context.Context
	pgContainer *postgres.PostgresContainer
	rdContainer *tcredis.RedisContainer
	pgPool      *pgxpool.Pool
	redisClient *redis.Client
	logger      *zap.Logger

	userRepo        interfaces.UserRepository
	deviceTokenRepo deviceTokenStore
	tokenRepo       interfaces.TokenRepository
	menuRepo        interfaces.MenuRepository
	inventoryRepo   interfaces.InventoryRepository
	orderRepo       interfaces.OrderRepository
}

func (s *RepositoryIntegrationSuite) SetupSuite() {
	s.ctx = context.Background()
	s.logger = zap.NewNop()

	var err error
	s.pgContainer, err = postgres.Run(s.ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("resto_test"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Minute),
		),
	)
	require.NoError(s.T(), err, "Failed to start postgres container")

	pgConnStr, err := s.pgContainer.ConnectionString(s.ctx, "sslmode=disable")
	require.NoError(s.T(), err)

	s.pgPool, err = pgxpool.New(s.ctx, pgConnStr)
	require.NoError(s.T(), err, "Failed to connect to test postgres")

	migrator := database.NewMigrator(database.MigratorConfig{
		MigrationsPath: ".",
		MigrationsFS:   migrations.FS,
	}, s.pgPool, s.logger)
	require.NoError(s.T(), migrator.Up(s.ctx), "Failed to apply migrations")

	s.rdContainer, err = tcredis.Run(s.ctx,
		"docker.io/redis:7-alpine",
		testcontainers.WithWaitStrategy(
			wait.ForLog("* Ready to accept connections").
				WithOccurrence(1).
				WithStartupTimeout(1*time.Minute),
		),
	)
	require.NoError(s.T(), err, "Failed to start redis container")

	redisHost, err := s.rdContainer.Host(s.ctx)
	require.NoError(s.T(), err)
	redisPort, err := s.rdContainer.MappedPort(s.ctx, "6379/tcp")
	require.NoError(s.T(), err)
	s.redisClient = redis.NewClient(&redis.Options{Addr: fmt.Sprintf("%s:%s", redisHost, redisPort.Port())})
	require.NoError(s.T(), s.redisClient.Ping(s.ctx).Err(), "Failed to connect to test redis")

	s.userRepo = repository.NewPgUserRepository(s.pgPool, s.logger)
	s.deviceTokenRepo = repository.NewDeviceTokenRepository(s.pgPool, s.logger)
	s.tokenRepo = repository.NewRedisTokenRepository(s.redisClient, s.logger)
	s.menuRepo = repository.NewPgMenuRepository(s.pgPool, s.logger)
	s.inventoryRepo = repository.NewPgInventoryRepository(s.pgPool, s.logger)
	s.orderRepo = repository.NewPgOrderRepository(s.pgPool, s.logger)
}

func (s *RepositoryIntegrationSuite) TearDownSuite() {
	if s.pgPool != nil {
		s.pgPool.Close()
	}
	if s.redisClient != nil {
		s.redisClient.Close()
	}
	if s.pgContainer != nil {
		_ = s.pgContainer.Terminate(s.ctx)
	}
	if s.rdContainer != nil {
		_ = s.rdContainer.Terminate(s.ctx)
	}
}

func (s *RepositoryIntegrationSuite) SetupTest() {
	require.NoError(s.T(), s.redisClient.FlushDB(s.ctx).Err())
	_, err := s.pgPool.Exec(s.ctx, "TRUNCATE TABLE users, menu_items, ingredients RESTART IDENTITY CASCADE")
	require.NoError(s.T(), err)
}

func TestRepositoryIntegrationSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}
	cli, err := client.NewClientWithOpts(client.FromEnv)
	if err != nil {
		t.Fatalf("Docker client init error: %v. Ensure Docker is running and accessible.", err)
	}
	if _, err := cli.Ping(context.Background()); err != nil {
		t.Fatalf("Docker daemon is not running or accessible: %v", err)
	}
	cli.Close()

	suite.Run(t, new(RepositoryIntegrationSuite))
}

// --- Хелперы ---

func (s *RepositoryIntegrationSuite) createUser(username string, roles ...string) *models.User {
	user := &models.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        username + "@resto.test",
		PasswordHash: "$2a$10$fakehashfortests",
		Roles:        roles,
		IsActive:     true,
	}
	require.NoError(s.T(), s.userRepo.CreateUser(s.ctx, user))
	return user
}

func (s *RepositoryIntegrationSuite) createMenuItem(name string, priceCents int64) *models.MenuItem {
	item := &models.MenuItem{
		ID:         uuid.New(),
		Name:       name,
		Category:   "main",
		PriceCents: priceCents,
		Available:  true,
	}
	require.NoError(s.T(), s.menuRepo.Create(s.ctx, item))
	return item
}

func (s *RepositoryIntegrationSuite) createIngredient(name string, quantity, lowThreshold float64) *models.Ingredient {
	ing := &models.Ingredient{
		ID:           uuid.New(),
		Name:         name,
		Unit:         "kg",
		Quantity:     quantity,
		LowThreshold: lowThreshold,
	}
	require.NoError(s.T(), s.inventoryRepo.CreateIngredient(s.ctx, ing))
	return ing
}

// --- Тесты ---

func (s *RepositoryIntegrationSuite) TestUserRepository() {
	t := s.T()

	user := s.createUser("chef_ivan", models.RoleChef)

	got, err := s.userRepo.GetUserByUsername(s.ctx, "chef_ivan")
	require.NoError(t, err)
	require.Equal(t, user.ID, got.ID)
	require.Equal(t, []string{models.RoleChef}, got.Roles)

	byID, err := s.userRepo.GetUserByID(s.ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, "chef_ivan", byID.Username)

	_, err = s.userRepo.GetUserByUsername(s.ctx, "nobody")
	require.ErrorIs(t, err, models.ErrUserNotFound)

	dup := &models.User{ID: uuid.New(), Username: "chef_ivan", Email: "other@resto.test", PasswordHash: "x"}
	err = s.userRepo.CreateUser(s.ctx, dup)
	require.ErrorIs(t, err, models.ErrUserAlreadyExists)
}

func (s *RepositoryIntegrationSuite) TestDeviceTokensAndChefRecipients() {
	t := s.T()

	chef := s.createUser("chef_push", models.RoleChef)
	manager := s.createUser("manager_push", models.RoleManager)

	require.NoError(t, s.deviceTokenRepo.SaveDeviceToken(s.ctx, chef.ID, "ExponentPushToken[chef]", "android"))
	require.NoError(t, s.deviceTokenRepo.SaveDeviceToken(s.ctx, manager.ID, "ExponentPushToken[manager]", "ios"))

	// Повторное сохранение того же токена не плодит дубликатов.
	require.NoError(t, s.deviceTokenRepo.SaveDeviceToken(s.ctx, chef.ID, "ExponentPushToken[chef]", "android"))

	tokens, err := s.deviceTokenRepo.ListChefTokens(s.ctx)
	require.NoError(t, err)
	require.Len(t, tokens, 1, "only chef tokens must be listed")
	require.Equal(t, "ExponentPushToken[chef]", tokens[0].Token)

	require.NoError(t, s.deviceTokenRepo.DeleteDeviceToken(s.ctx, "ExponentPushToken[chef]"))
	tokens, err = s.deviceTokenRepo.ListChefTokens(s.ctx)
	require.NoError(t, err)
	require.Empty(t, tokens)
}

func (s *RepositoryIntegrationSuite) TestCachedRecipientProvider() {
	t := s.T()

	chef := s.createUser("chef_cached", models.RoleChef)
	require.NoError(t, s.deviceTokenRepo.SaveDeviceToken(s.ctx, chef.ID, "ExponentPushToken[cached]", "android"))

	cached := repository.NewCachedRecipientProvider(s.deviceTokenRepo, s.redisClient, time.Minute, s.logger)

	tokens, err := cached.ListChefTokens(s.ctx)
	require.NoError(t, err)
	require.Len(t, tokens, 1)

	// Прямое удаление из БД не видно через кэш, пока не истек TTL.
	require.NoError(t, s.deviceTokenRepo.DeleteDeviceToken(s.ctx, "ExponentPushToken[cached]"))
	tokens, err = cached.ListChefTokens(s.ctx)
	require.NoError(t, err)
	require.Len(t, tokens, 1, "cached list should survive direct deletion")

	// Сброс ключа кэша заставляет перечитать из БД.
	require.NoError(t, s.redisClient.FlushDB(s.ctx).Err())
	tokens, err = cached.ListChefTokens(s.ctx)
	require.NoError(t, err)
	require.Empty(t, tokens)
}

func (s *RepositoryIntegrationSuite) TestRedisTokenRepository() {
	t := s.T()
	userID := uuid.New()

	td := &models.TokenDetails{
		AccessUUID:  uuid.NewString(),
		RefreshUUID: uuid.NewString(),
		AtExpires:   time.Now().Add(time.Minute).Unix(),
		RtExpires:   time.Now().Add(time.Hour).Unix(),
	}
	require.NoError(t, s.tokenRepo.SetToken(s.ctx, userID, td))

	gotID, err := s.tokenRepo.GetUserIDByAccessUUID(s.ctx, td.AccessUUID)
	require.NoError(t, err)
	require.Equal(t, userID, gotID)

	gotID, err = s.tokenRepo.GetUserIDByRefreshUUID(s.ctx, td.RefreshUUID)
	require.NoError(t, err)
	require.Equal(t, userID, gotID)

	deleted, err := s.tokenRepo.DeleteTokens(s.ctx, userID, td.AccessUUID, td.RefreshUUID)
	require.NoError(t, err)
	require.Equal(t, int64(2), deleted)

	_, err = s.tokenRepo.GetUserIDByAccessUUID(s.ctx, td.AccessUUID)
	require.True(t, errors.Is(err, models.ErrTokenNotFound) || errors.Is(err, redis.Nil))
}

func (s *RepositoryIntegrationSuite) TestOrderFlowDeductsInventory() {
	t := s.T()

	waiter := s.createUser("waiter_flow", models.RoleManager)
	pelmeni := s.createMenuItem("Пельмени", 450)
	flour := s.createIngredient("Мука", 10, 2)
	require.NoError(t, s.inventoryRepo.LinkRecipe(s.ctx, &models.RecipeLink{
		MenuItemID:   pelmeni.ID,
		IngredientID: flour.ID,
		AmountPerUse: 0.5,
	}))

	orderSvc := service.NewOrderService(s.pgPool, s.orderRepo, s.menuRepo, s.inventoryRepo, nil, nil, s.logger)

	table := 7
	order, err := orderSvc.CreateOrder(s.ctx, waiter.ID, &table, []service.OrderLine{
		{MenuItemID: pelmeni.ID, Quantity: 4},
	})
	require.NoError(t, err)
	require.NotZero(t, order.Number)
	require.Equal(t, int64(1800), order.TotalCents)

	// Склад уменьшился на 4 * 0.5.
	ing, err := s.inventoryRepo.GetIngredient(s.ctx, flour.ID)
	require.NoError(t, err)
	require.InDelta(t, 8.0, ing.Quantity, 1e-9)
	require.False(t, ing.IsLow)

	// Дозаказ добавляет позиции и долистывает остаток ниже порога.
	_, err = orderSvc.AddItems(s.ctx, order.ID, []service.OrderLine{
		{MenuItemID: pelmeni.ID, Quantity: 13},
	})
	require.NoError(t, err)

	ing, err = s.inventoryRepo.GetIngredient(s.ctx, flour.ID)
	require.NoError(t, err)
	require.InDelta(t, 1.5, ing.Quantity, 1e-9)
	require.True(t, ing.IsLow)

	got, err := s.orderRepo.GetByID(s.ctx, order.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1800+13*450), got.TotalCents)
	require.Len(t, got.Items, 2)

	summary, err := s.orderRepo.GetSummary(s.ctx, order.ID)
	require.NoError(t, err)
	require.Equal(t, order.Number, summary.Number)
	require.Equal(t, &table, summary.TableNumber)

	// Переходы статуса: только вперед, оплаченный заказ закрыт для дозаказа.
	_, err = orderSvc.UpdateStatus(s.ctx, order.ID, models.OrderStatusPreparing)
	require.NoError(t, err)
	_, err = orderSvc.UpdateStatus(s.ctx, order.ID, models.OrderStatusServed)
	require.NoError(t, err)
	_, err = orderSvc.UpdateStatus(s.ctx, order.ID, models.OrderStatusPaid)
	require.NoError(t, err)

	_, err = orderSvc.AddItems(s.ctx, order.ID, []service.OrderLine{{MenuItemID: pelmeni.ID, Quantity: 1}})
	require.ErrorIs(t, err, models.ErrOrderClosed)

	open := models.OrderStatusOpen
	listed, err := s.orderRepo.List(s.ctx, &open, 10)
	require.NoError(t, err)
	require.Empty(t, listed)
}
