package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"resto-server/internal/config"
	"resto-server/internal/interfaces/mocks"
	"resto-server/internal/models"
	"resto-server/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testInternalSecret = "inter-service-secret"

type dispatchEndpointFixture struct {
	orders     *mocks.OrderRepository
	recipients *mocks.RecipientProvider
	gateway    *mocks.PushGateway
	router     *gin.Engine
}

func newDispatchEndpointFixture(secret string) *dispatchEndpointFixture {
	gin.SetMode(gin.TestMode)

	f := &dispatchEndpointFixture{
		orders:     new(mocks.OrderRepository),
		recipients: new(mocks.RecipientProvider),
		gateway:    new(mocks.PushGateway),
	}
	dispatcher := service.NewNotificationDispatcher(f.orders, f.recipients, f.gateway, zap.NewNop())
	h := NewHandler(nil, nil, nil, nil, nil, nil, nil, dispatcher, nil, &config.Config{InternalSecret: secret})

	f.router = gin.New()
	internal := f.router.Group("/internal", h.InternalAuthMiddleware())
	internal.POST("/dispatch", h.dispatchNotification)
	internal.OPTIONS("/dispatch", func(c *gin.Context) {})
	return f
}

func (f *dispatchEndpointFixture) post(t *testing.T, secret string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/internal/dispatch", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if secret != "" {
		req.Header.Set("X-Internal-Service-Token", secret)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestInternalAuthMiddleware(t *testing.T) {
	t.Run("Missing secret returns 401", func(t *testing.T) {
		f := newDispatchEndpointFixture(testInternalSecret)
		w := f.post(t, "", models.TriggerPayload{})

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.JSONEq(t, `{"error": "Unauthorized"}`, w.Body.String())
	})

	t.Run("Wrong secret returns 401", func(t *testing.T) {
		f := newDispatchEndpointFixture(testInternalSecret)
		w := f.post(t, "not-the-secret", models.TriggerPayload{})

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.JSONEq(t, `{"error": "Unauthorized"}`, w.Body.String())
	})

	t.Run("Unset server secret rejects any value", func(t *testing.T) {
		f := newDispatchEndpointFixture("")
		w := f.post(t, "anything", models.TriggerPayload{})

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Preflight passes without secret", func(t *testing.T) {
		f := newDispatchEndpointFixture(testInternalSecret)

		req := httptest.NewRequest(http.MethodOptions, "/internal/dispatch", nil)
		w := httptest.NewRecorder()
		f.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Body.String())
	})
}

func TestDispatchNotificationEndpoint(t *testing.T) {
	t.Run("Ping without record returns noop", func(t *testing.T) {
		f := newDispatchEndpointFixture(testInternalSecret)
		w := f.post(t, testInternalSecret, models.TriggerPayload{EventType: models.EventNewOrder})

		require.Equal(t, http.StatusOK, w.Code)

		var result models.DispatchResult
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
		assert.Zero(t, result.Recipients)
		assert.Empty(t, result.Batches)
		f.gateway.AssertNotCalled(t, "SendBatch", mock.Anything, mock.Anything)
	})

	t.Run("Invalid JSON returns 400", func(t *testing.T) {
		f := newDispatchEndpointFixture(testInternalSecret)

		req := httptest.NewRequest(http.MethodPost, "/internal/dispatch", bytes.NewBufferString("{not json"))
		req.Header.Set("X-Internal-Service-Token", testInternalSecret)
		w := httptest.NewRecorder()
		f.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Invalid payload")
	})

	t.Run("Dispatcher failure returns 400 with message", func(t *testing.T) {
		f := newDispatchEndpointFixture(testInternalSecret)
		f.recipients.On("ListChefTokens", mock.Anything).Return(nil, errors.New("redis down")).Once()

		orderID := uuid.New()
		number := int64(42)
		w := f.post(t, testInternalSecret, models.TriggerPayload{
			EventType: models.EventNewOrder,
			Record:    &models.ChangeRecord{ID: &orderID, Number: &number},
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "redis down")
	})

	t.Run("Successful dispatch returns tickets", func(t *testing.T) {
		f := newDispatchEndpointFixture(testInternalSecret)
		f.recipients.On("ListChefTokens", mock.Anything).
			Return([]models.DeviceTokenInfo{
				{Token: "ExponentPushToken[a]", Platform: "android"},
				{Token: "ExponentPushToken[b]", Platform: "ios"},
			}, nil).Once()
		f.gateway.On("SendBatch", mock.Anything, mock.Anything).
			Return([]models.PushTicket{{Status: "ok"}, {Status: "ok"}}, nil).Once()

		orderID := uuid.New()
		number := int64(42)
		w := f.post(t, testInternalSecret, models.TriggerPayload{
			EventType: models.EventNewOrder,
			Record:    &models.ChangeRecord{ID: &orderID, Number: &number},
		})

		require.Equal(t, http.StatusOK, w.Code)

		var result models.DispatchResult
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
		assert.Equal(t, 2, result.Recipients)
		require.Len(t, result.Batches, 1)
		assert.Len(t, result.Batches[0], 2)

		f.recipients.AssertExpectations(t)
		f.gateway.AssertExpectations(t)
	})
}
