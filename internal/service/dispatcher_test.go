package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"resto-server/internal/interfaces/mocks"
	"resto-server/internal/models"
	"resto-server/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newDispatcher(orders *mocks.OrderRepository, recipients *mocks.RecipientProvider, gateway *mocks.PushGateway) *service.NotificationDispatcher {
	return service.NewNotificationDispatcher(orders, recipients, gateway, zap.NewNop())
}

func chefTokens(n int) []models.DeviceTokenInfo {
	tokens := make([]models.DeviceTokenInfo, n)
	for i := range tokens {
		tokens[i] = models.DeviceTokenInfo{
			Token:    fmt.Sprintf("ExponentPushToken[chef-%d]", i),
			Platform: "android",
		}
	}
	return tokens
}

func okTickets(n int) []models.PushTicket {
	tickets := make([]models.PushTicket, n)
	for i := range tickets {
		tickets[i] = models.PushTicket{ID: fmt.Sprintf("ticket-%d", i), Status: "ok"}
	}
	return tickets
}

func TestDispatchPing(t *testing.T) {
	orders := new(mocks.OrderRepository)
	recipients := new(mocks.RecipientProvider)
	gateway := new(mocks.PushGateway)
	d := newDispatcher(orders, recipients, gateway)

	// Вызов без записи - health-check ping, ничего не отправляется.
	result, err := d.Dispatch(context.Background(), models.TriggerPayload{})
	require.NoError(t, err)
	assert.True(t, result.NoOp())
	assert.Equal(t, 0, result.Recipients)

	gateway.AssertNotCalled(t, "SendBatch", mock.Anything, mock.Anything)
	recipients.AssertNotCalled(t, "ListChefTokens", mock.Anything)
}

func TestDispatchNewOrder(t *testing.T) {
	orderID := uuid.New()
	number := int64(12)
	table := 5
	total := int64(3450)

	payload := models.TriggerPayload{
		EventType: models.EventNewOrder,
		Record: &models.ChangeRecord{
			ID:          &orderID,
			Number:      &number,
			TableNumber: &table,
			TotalCents:  &total,
		},
	}

	t.Run("Message contents and passthrough tickets", func(t *testing.T) {
		orders := new(mocks.OrderRepository)
		recipients := new(mocks.RecipientProvider)
		gateway := new(mocks.PushGateway)
		d := newDispatcher(orders, recipients, gateway)

		recipients.On("ListChefTokens", mock.Anything).Return(chefTokens(2), nil).Once()

		tickets := []models.PushTicket{
			{ID: "t-1", Status: "ok"},
			{Status: "error", Message: "DeviceNotRegistered", Details: map[string]string{"error": "DeviceNotRegistered"}},
		}
		gateway.On("SendBatch", mock.Anything, mock.MatchedBy(func(batch []models.PushMessage) bool {
			require.Len(t, batch, 2)
			msg := batch[0]
			assert.Equal(t, "ExponentPushToken[chef-0]", msg.To)
			assert.Equal(t, "New Order #12", msg.Title)
			assert.Equal(t, "Table 5 - $34.50", msg.Body)
			assert.Equal(t, "default", msg.Sound)
			assert.Equal(t, "orders", msg.ChannelID)
			assert.Equal(t, "high", msg.Priority)
			assert.Equal(t, "new", msg.Data["type"])
			assert.Equal(t, "12", msg.Data["orderId"])
			assert.Equal(t, orderID.String(), msg.Data["orderUid"])
			return true
		})).Return(tickets, nil).Once()

		result, err := d.Dispatch(context.Background(), payload)
		require.NoError(t, err)
		assert.False(t, result.NoOp())
		assert.Equal(t, models.EventNewOrder, result.Event)
		assert.Equal(t, 2, result.Recipients)
		// Результаты шлюза передаются как есть, без интерпретации.
		require.Len(t, result.Batches, 1)
		assert.Equal(t, tickets, result.Batches[0])

		gateway.AssertExpectations(t)
		recipients.AssertExpectations(t)
	})

	t.Run("Table missing renders as N/A", func(t *testing.T) {
		orders := new(mocks.OrderRepository)
		recipients := new(mocks.RecipientProvider)
		gateway := new(mocks.PushGateway)
		d := newDispatcher(orders, recipients, gateway)

		noTable := models.TriggerPayload{
			EventType: models.EventNewOrder,
			Record:    &models.ChangeRecord{ID: &orderID, Number: &number, TotalCents: &total},
		}

		recipients.On("ListChefTokens", mock.Anything).Return(chefTokens(1), nil).Once()
		gateway.On("SendBatch", mock.Anything, mock.MatchedBy(func(batch []models.PushMessage) bool {
			return batch[0].Body == "Table N/A - $34.50"
		})).Return(okTickets(1), nil).Once()

		_, err := d.Dispatch(context.Background(), noTable)
		require.NoError(t, err)
		gateway.AssertExpectations(t)
	})

	t.Run("Number missing falls back to the order uuid", func(t *testing.T) {
		orders := new(mocks.OrderRepository)
		recipients := new(mocks.RecipientProvider)
		gateway := new(mocks.PushGateway)
		d := newDispatcher(orders, recipients, gateway)

		noNumber := models.TriggerPayload{
			EventType: models.EventNewOrder,
			Record:    &models.ChangeRecord{ID: &orderID, TotalCents: &total},
		}

		recipients.On("ListChefTokens", mock.Anything).Return(chefTokens(1), nil).Once()
		gateway.On("SendBatch", mock.Anything, mock.MatchedBy(func(batch []models.PushMessage) bool {
			assert.Equal(t, "New Order #"+orderID.String(), batch[0].Title)
			assert.Equal(t, orderID.String(), batch[0].Data["orderId"])
			assert.Equal(t, orderID.String(), batch[0].Data["orderUid"])
			return true
		})).Return(okTickets(1), nil).Once()

		result, err := d.Dispatch(context.Background(), noNumber)
		require.NoError(t, err)
		assert.False(t, result.NoOp())
		gateway.AssertExpectations(t)
	})

	t.Run("Record without id is a no-op", func(t *testing.T) {
		orders := new(mocks.OrderRepository)
		recipients := new(mocks.RecipientProvider)
		gateway := new(mocks.PushGateway)
		d := newDispatcher(orders, recipients, gateway)

		result, err := d.Dispatch(context.Background(), models.TriggerPayload{
			EventType: models.EventNewOrder,
			Record:    &models.ChangeRecord{TotalCents: &total},
		})
		require.NoError(t, err)
		assert.True(t, result.NoOp())
		gateway.AssertNotCalled(t, "SendBatch", mock.Anything, mock.Anything)
	})

	t.Run("No recipients is a no-op", func(t *testing.T) {
		orders := new(mocks.OrderRepository)
		recipients := new(mocks.RecipientProvider)
		gateway := new(mocks.PushGateway)
		d := newDispatcher(orders, recipients, gateway)

		recipients.On("ListChefTokens", mock.Anything).Return([]models.DeviceTokenInfo{}, nil).Once()

		result, err := d.Dispatch(context.Background(), payload)
		require.NoError(t, err)
		assert.True(t, result.NoOp())
		gateway.AssertNotCalled(t, "SendBatch", mock.Anything, mock.Anything)
	})

	t.Run("Recipient lookup failure is an error", func(t *testing.T) {
		orders := new(mocks.OrderRepository)
		recipients := new(mocks.RecipientProvider)
		gateway := new(mocks.PushGateway)
		d := newDispatcher(orders, recipients, gateway)

		recipients.On("ListChefTokens", mock.Anything).Return(nil, errors.New("pg down")).Once()

		result, err := d.Dispatch(context.Background(), payload)
		require.Error(t, err)
		assert.Nil(t, result)
	})

	t.Run("Empty event type defaults to new_order", func(t *testing.T) {
		orders := new(mocks.OrderRepository)
		recipients := new(mocks.RecipientProvider)
		gateway := new(mocks.PushGateway)
		d := newDispatcher(orders, recipients, gateway)

		recipients.On("ListChefTokens", mock.Anything).Return(chefTokens(1), nil).Once()
		gateway.On("SendBatch", mock.Anything, mock.Anything).Return(okTickets(1), nil).Once()

		noType := payload
		noType.EventType = ""
		result, err := d.Dispatch(context.Background(), noType)
		require.NoError(t, err)
		assert.Equal(t, models.EventNewOrder, result.Event)
	})
}

func TestDispatchItemAdded(t *testing.T) {
	orderID := uuid.New()
	table := 7
	summary := &models.OrderSummary{
		ID:          orderID,
		Number:      42,
		TableNumber: &table,
		TotalCents:  1500,
	}

	payload := models.TriggerPayload{
		EventType: models.EventItemAdded,
		Record: &models.ChangeRecord{
			OrderID:  &orderID,
			ItemName: "Пельмени",
			Quantity: 2,
		},
	}

	t.Run("Resolves order and formats body", func(t *testing.T) {
		orders := new(mocks.OrderRepository)
		recipients := new(mocks.RecipientProvider)
		gateway := new(mocks.PushGateway)
		d := newDispatcher(orders, recipients, gateway)

		orders.On("GetSummary", mock.Anything, orderID).Return(summary, nil).Once()
		recipients.On("ListChefTokens", mock.Anything).Return(chefTokens(1), nil).Once()
		gateway.On("SendBatch", mock.Anything, mock.MatchedBy(func(batch []models.PushMessage) bool {
			msg := batch[0]
			assert.Equal(t, "Order Updated #42", msg.Title)
			assert.Equal(t, "+2 Пельмени (Table 7)", msg.Body)
			assert.Equal(t, "update", msg.Data["type"])
			assert.Equal(t, "42", msg.Data["orderId"])
			return true
		})).Return(okTickets(1), nil).Once()

		result, err := d.Dispatch(context.Background(), payload)
		require.NoError(t, err)
		assert.Equal(t, models.EventItemAdded, result.Event)

		orders.AssertExpectations(t)
		gateway.AssertExpectations(t)
	})

	t.Run("Missing order id is a no-op", func(t *testing.T) {
		orders := new(mocks.OrderRepository)
		recipients := new(mocks.RecipientProvider)
		gateway := new(mocks.PushGateway)
		d := newDispatcher(orders, recipients, gateway)

		result, err := d.Dispatch(context.Background(), models.TriggerPayload{
			EventType: models.EventItemAdded,
			Record:    &models.ChangeRecord{ItemName: "Борщ", Quantity: 1},
		})
		require.NoError(t, err)
		assert.True(t, result.NoOp())
		orders.AssertNotCalled(t, "GetSummary", mock.Anything, mock.Anything)
	})

	t.Run("Order lookup failure is an error", func(t *testing.T) {
		orders := new(mocks.OrderRepository)
		recipients := new(mocks.RecipientProvider)
		gateway := new(mocks.PushGateway)
		d := newDispatcher(orders, recipients, gateway)

		orders.On("GetSummary", mock.Anything, orderID).Return(nil, models.ErrOrderNotFound).Once()

		result, err := d.Dispatch(context.Background(), payload)
		require.Error(t, err)
		assert.Nil(t, result)
		recipients.AssertNotCalled(t, "ListChefTokens", mock.Anything)
	})
}

func TestDispatchBatching(t *testing.T) {
	orderID := uuid.New()
	number := int64(1)
	total := int64(100)
	payload := models.TriggerPayload{
		EventType: models.EventNewOrder,
		Record:    &models.ChangeRecord{ID: &orderID, Number: &number, TotalCents: &total},
	}

	t.Run("Splits recipients into batches of at most 100", func(t *testing.T) {
		orders := new(mocks.OrderRepository)
		recipients := new(mocks.RecipientProvider)
		gateway := new(mocks.PushGateway)
		d := newDispatcher(orders, recipients, gateway)

		recipients.On("ListChefTokens", mock.Anything).Return(chefTokens(250), nil).Once()

		var batchSizes []int
		gateway.On("SendBatch", mock.Anything, mock.MatchedBy(func(batch []models.PushMessage) bool {
			batchSizes = append(batchSizes, len(batch))
			return true
		})).Return(okTickets(100), nil).Times(3)

		result, err := d.Dispatch(context.Background(), payload)
		require.NoError(t, err)
		assert.Equal(t, []int{100, 100, 50}, batchSizes)
		assert.Equal(t, 250, result.Recipients)
		assert.Len(t, result.Batches, 3)

		gateway.AssertExpectations(t)
	})

	t.Run("Failed batch does not stop the rest", func(t *testing.T) {
		orders := new(mocks.OrderRepository)
		recipients := new(mocks.RecipientProvider)
		gateway := new(mocks.PushGateway)
		d := newDispatcher(orders, recipients, gateway)

		recipients.On("ListChefTokens", mock.Anything).Return(chefTokens(150), nil).Once()

		gateway.On("SendBatch", mock.Anything, mock.MatchedBy(func(batch []models.PushMessage) bool {
			return len(batch) == 100
		})).Return(nil, errors.New("gateway timeout")).Once()
		gateway.On("SendBatch", mock.Anything, mock.MatchedBy(func(batch []models.PushMessage) bool {
			return len(batch) == 50
		})).Return(okTickets(50), nil).Once()

		result, err := d.Dispatch(context.Background(), payload)
		require.NoError(t, err)
		require.Len(t, result.Batches, 2)
		// Для упавшей пачки синтезируются error-тикеты по числу сообщений.
		assert.Len(t, result.Batches[0], 100)
		assert.Equal(t, "error", result.Batches[0][0].Status)
		assert.Len(t, result.Batches[1], 50)
		assert.Equal(t, "ok", result.Batches[1][0].Status)

		gateway.AssertExpectations(t)
	})
}
