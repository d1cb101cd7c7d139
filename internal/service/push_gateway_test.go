package service_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"resto-server/internal/models"
	"resto-server/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestExpoPushGatewaySendBatch(t *testing.T) {
	batch := []models.PushMessage{
		{To: "ExponentPushToken[a]", Title: "New Order #1", Body: "Table 2 - $10.00", Sound: "default", ChannelID: "orders", Priority: "high"},
		{To: "ExponentPushToken[b]", Title: "New Order #1", Body: "Table 2 - $10.00", Sound: "default", ChannelID: "orders", Priority: "high"},
	}

	t.Run("Posts JSON array and decodes tickets", func(t *testing.T) {
		var gotAuth string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			gotAuth = r.Header.Get("Authorization")

			var received []models.PushMessage
			require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
			require.Len(t, received, 2)
			assert.Equal(t, "ExponentPushToken[a]", received[0].To)

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"data":[{"id":"x1","status":"ok"},{"status":"error","message":"DeviceNotRegistered","details":{"error":"DeviceNotRegistered"}}]}`))
		}))
		defer srv.Close()

		gw := service.NewExpoPushGateway(srv.URL, "secret-token", 5*time.Second, zap.NewNop())
		tickets, err := gw.SendBatch(context.Background(), batch)
		require.NoError(t, err)

		assert.Equal(t, "Bearer secret-token", gotAuth)
		require.Len(t, tickets, 2)
		assert.Equal(t, "x1", tickets[0].ID)
		assert.Equal(t, "ok", tickets[0].Status)
		// Содержимое тикета не интерпретируется, детали доходят как есть.
		assert.Equal(t, "error", tickets[1].Status)
		assert.Equal(t, "DeviceNotRegistered", tickets[1].Details["error"])
	})

	t.Run("No Authorization header without token", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Empty(t, r.Header.Get("Authorization"))
			_, _ = w.Write([]byte(`{"data":[{"status":"ok"},{"status":"ok"}]}`))
		}))
		defer srv.Close()

		gw := service.NewExpoPushGateway(srv.URL, "", 5*time.Second, zap.NewNop())
		_, err := gw.SendBatch(context.Background(), batch)
		require.NoError(t, err)
	})

	t.Run("HTTP error status becomes an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte(`{"errors":[{"code":"PUSH_TOO_MANY_REQUESTS"}]}`))
		}))
		defer srv.Close()

		gw := service.NewExpoPushGateway(srv.URL, "", 5*time.Second, zap.NewNop())
		tickets, err := gw.SendBatch(context.Background(), batch)
		require.Error(t, err)
		assert.Nil(t, tickets)
		assert.Contains(t, err.Error(), "502")
	})

	t.Run("Empty batch is rejected", func(t *testing.T) {
		gw := service.NewExpoPushGateway("http://localhost:1", "", time.Second, zap.NewNop())
		_, err := gw.SendBatch(context.Background(), nil)
		require.Error(t, err)
	})
}

func TestStubPushGateway(t *testing.T) {
	gw := service.NewStubPushGateway(zap.NewNop())
	tickets, err := gw.SendBatch(context.Background(), make([]models.PushMessage, 3))
	require.NoError(t, err)
	require.Len(t, tickets, 3)
	for _, ticket := range tickets {
		assert.Equal(t, "ok", ticket.Status)
	}
}
