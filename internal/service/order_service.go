package service

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

// OrderLine - позиция нового заказа или дозаказа.
type OrderLine struct {
	MenuItemID uuid.UUID `json:"menu_item_id"`
	Quantity   int       `json:"quantity"`
}

// OrderService - бизнес-логика заказов. Создание и дозаказ выполняются
// в одной транзакции со списанием ингредиентов: либо заказ записан и
// склад уменьшен, либо ничего не произошло.
type OrderService interface {
	CreateOrder(ctx context.Context, createdBy uuid.UUID, tableNumber *int, lines []OrderLine) (*models.Order, error)
	AddItems(ctx context.Context, orderID uuid.UUID, lines []OrderLine) (*models.Order, error)
	GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListOrders(ctx context.Context, status *models.OrderStatus, limit int) ([]models.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus) (*models.Order, error)
}

type orderService struct {
	pool        interfaces.TxStarter
	orders      interfaces.OrderRepository
	menu        interfaces.MenuRepository
	inventory   interfaces.InventoryRepository
	publisher   interfaces.OrderEventPublisher
	broadcaster interfaces.OrderEventBroadcaster
	logger      *zap.Logger
}

var _ OrderService = (*orderService)(nil)

func NewOrderService(
	pool interfaces.TxStarter,
	orders interfaces.OrderRepository,
	menu interfaces.MenuRepository,
	inventory interfaces.InventoryRepository,
	publisher interfaces.OrderEventPublisher,
	broadcaster interfaces.OrderEventBroadcaster,
	logger *zap.Logger,
) OrderService {
	return &orderService{
		pool:        pool,
		orders:      orders,
		menu:        menu,
		inventory:   inventory,
		publisher:   publisher,
		broadcaster: broadcaster,
		logger:      logger.Named("order_service"),
	}
}

func (s *orderService) CreateOrder(ctx context.Context, createdBy uuid.UUID, tableNumber *int, lines []OrderLine) (*models.Order, error) {
	if len(lines) == 0 {
		return nil, models.ErrEmptyOrder
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	order := &models.Order{
		ID:          uuid.New(),
		TableNumber: tableNumber,
		Status:      models.OrderStatusOpen,
		CreatedBy:   createdBy,
	}
	if err := s.orders.Create(ctx, tx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	items, total, err := s.appendItems(ctx, tx, order.ID, lines)
	if err != nil {
		return nil, err
	}
	order.Items = items
	order.TotalCents = total

	if err := s.orders.UpdateTotal(ctx, tx, order.ID, total); err != nil {
		return nil, fmt.Errorf("update total: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	s.notify(models.EventNewOrder, models.TriggerPayload{
		EventType: models.EventNewOrder,
		Record: &models.ChangeRecord{
			ID:          &order.ID,
			Number:      &order.Number,
			TableNumber: order.TableNumber,
			TotalCents:  &order.TotalCents,
		},
	}, order)

	return order, nil
}

func (s *orderService) AddItems(ctx context.Context, orderID uuid.UUID, lines []OrderLine) (*models.Order, error) {
	if len(lines) == 0 {
		return nil, models.ErrEmptyOrder
	}

	existing, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if existing.Status != models.OrderStatusOpen && existing.Status != models.OrderStatusPreparing {
		return nil, models.ErrOrderClosed
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	items, added, err := s.appendItems(ctx, tx, orderID, lines)
	if err != nil {
		return nil, err
	}

	newTotal := existing.TotalCents + added
	if err := s.orders.UpdateTotal(ctx, tx, orderID, newTotal); err != nil {
		return nil, fmt.Errorf("update total: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	// Каждая добавленная позиция - отдельное событие, как и пишет их БД.
	for _, it := range items {
		it := it
		s.notify(models.EventItemAdded, models.TriggerPayload{
			EventType: models.EventItemAdded,
			Record: &models.ChangeRecord{
				OrderID:  &it.OrderID,
				ItemName: it.Name,
				Quantity: it.Quantity,
			},
		}, order)
	}

	return order, nil
}

// appendItems вставляет позиции, считает их стоимость и списывает
// ингредиенты по рецептам. Выполняется на переданной транзакции.
func (s *orderService) appendItems(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, lines []OrderLine) ([]models.OrderItem, int64, error) {
	items := make([]models.OrderItem, 0, len(lines))
	required := make(map[uuid.UUID]float64)
	menuIDs := make([]uuid.UUID, 0, len(lines))
	var total int64

	for _, line := range lines {
		if line.Quantity <= 0 {
			return nil, 0, fmt.Errorf("%w: quantity must be positive", models.ErrBadRequest)
		}
		mi, err := s.menu.GetByID(ctx, line.MenuItemID)
		if err != nil {
			return nil, 0, err
		}
		if !mi.Available {
			return nil, 0, fmt.Errorf("%w: %s is not available", models.ErrBadRequest, mi.Name)
		}
		item := models.OrderItem{
			ID:         uuid.New(),
			OrderID:    orderID,
			MenuItemID: mi.ID,
			Name:       mi.Name,
			Quantity:   line.Quantity,
			PriceCents: mi.PriceCents,
		}
		if err := s.orders.AddItem(ctx, tx, &item); err != nil {
			return nil, 0, fmt.Errorf("add order item: %w", err)
		}
		items = append(items, item)
		total += mi.PriceCents * int64(line.Quantity)
		menuIDs = append(menuIDs, mi.ID)
	}

	links, err := s.inventory.GetRecipeLinks(ctx, tx, menuIDs)
	if err != nil {
		return nil, 0, fmt.Errorf("get recipe links: %w", err)
	}
	perItem := make(map[uuid.UUID][]models.RecipeLink)
	for _, l := range links {
		perItem[l.MenuItemID] = append(perItem[l.MenuItemID], l)
	}
	for _, it := range items {
		for _, l := range perItem[it.MenuItemID] {
			required[l.IngredientID] += l.AmountPerUse * float64(it.Quantity)
		}
	}
	if len(required) > 0 {
		if err := s.inventory.DeductTx(ctx, tx, required); err != nil {
			return nil, 0, fmt.Errorf("deduct ingredients: %w", err)
		}
	}

	return items, total, nil
}

func (s *orderService) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return s.orders.GetByID(ctx, id)
}

func (s *orderService) ListOrders(ctx context.Context, status *models.OrderStatus, limit int) ([]models.Order, error) {
	return s.orders.List(ctx, status, limit)
}

func (s *orderService) UpdateStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus) (*models.Order, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !order.Status.CanTransitionTo(status) {
		return nil, models.ErrInvalidTransition
	}
	if err := s.orders.UpdateStatus(ctx, id, status); err != nil {
		if errors.Is(err, models.ErrOrderNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("update status: %w", err)
	}
	order.Status = status
	return order, nil
}

// notify публикует событие в очередь и рассылает его realtime клиентам.
// Доставка best-effort: заказ уже зафиксирован, ошибки только логируются.
func (s *orderService) notify(event models.OrderEventKind, payload models.TriggerPayload, order *models.Order) {
	if s.publisher != nil {
		if err := s.publisher.PublishOrderEvent(context.Background(), payload); err != nil {
			s.logger.Error("Не удалось опубликовать событие заказа", zap.String("event", string(event)), zap.Error(err))
		}
	}
	if s.broadcaster != nil {
		s.broadcaster.BroadcastOrderEvent(event, models.OrderSummary{
			ID:          order.ID,
			Number:      order.Number,
			TableNumber: order.TableNumber,
			TotalCents:  order.TotalCents,
		})
	}
}
