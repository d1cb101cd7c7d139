package appclient

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestListener() *Listener {
	return NewListener(zerolog.Nop())
}

func orderNotification(id, orderID string) Notification {
	return Notification{
		ID:    id,
		Title: "New Order #42",
		Body:  "Table 7 - $12.50",
		Data:  map[string]string{"type": "new", "orderId": orderID},
	}
}

func TestListenerOnReceive(t *testing.T) {
	t.Run("Accepts notification and exposes it until consumed", func(t *testing.T) {
		l := newTestListener()

		require.True(t, l.OnReceive(orderNotification("d-1", "42")))
		assert.True(t, l.HasPending())

		notice := l.Consume()
		require.NotNil(t, notice)
		assert.Equal(t, int64(42), notice.OrderID)
		assert.Equal(t, "new", notice.Kind)
		assert.Equal(t, "New Order #42", notice.Title)
		assert.Equal(t, "Table 7 - $12.50", notice.Body)

		assert.Nil(t, l.Consume())
		assert.False(t, l.HasPending())
	})

	t.Run("Repeated delivery id is dropped", func(t *testing.T) {
		l := newTestListener()

		require.True(t, l.OnReceive(orderNotification("d-1", "42")))
		assert.False(t, l.OnReceive(orderNotification("d-1", "42")))

		// После Consume дубль все равно не проходит: запоминается id, а не pending.
		l.Consume()
		assert.False(t, l.OnReceive(orderNotification("d-1", "42")))
	})

	t.Run("Empty delivery id is never treated as duplicate", func(t *testing.T) {
		l := newTestListener()
		assert.True(t, l.OnReceive(orderNotification("", "1")))
		assert.True(t, l.OnReceive(orderNotification("", "2")))
	})

	t.Run("Newer notification replaces unconsumed one", func(t *testing.T) {
		l := newTestListener()

		require.True(t, l.OnReceive(orderNotification("d-1", "10")))
		require.True(t, l.OnReceive(orderNotification("d-2", "11")))

		notice := l.Consume()
		require.NotNil(t, notice)
		assert.Equal(t, int64(11), notice.OrderID)
		assert.Nil(t, l.Consume())
	})

	t.Run("Missing type defaults to new", func(t *testing.T) {
		l := newTestListener()
		require.True(t, l.OnReceive(Notification{
			ID:   "d-1",
			Data: map[string]string{"orderId": "5"},
		}))
		assert.Equal(t, "new", l.Consume().Kind)
	})

	t.Run("Unreadable orderId is dropped", func(t *testing.T) {
		for _, raw := range []string{"", "abc", "-3", "0", "12.5"} {
			l := newTestListener()
			n := orderNotification("d-1", raw)
			assert.False(t, l.OnReceive(n), "orderId=%q", raw)
			assert.False(t, l.HasPending())
		}
	})

	t.Run("Oldest delivery ids are forgotten past the limit", func(t *testing.T) {
		l := newTestListener()

		for i := 0; i <= seenLimit; i++ {
			require.True(t, l.OnReceive(orderNotification(fmt.Sprintf("d-%d", i), "1")))
		}

		// d-0 вытеснен и принимается как новое уведомление.
		assert.True(t, l.OnReceive(orderNotification("d-0", "1")))
		// Свежие id еще помнятся.
		assert.False(t, l.OnReceive(orderNotification(fmt.Sprintf("d-%d", seenLimit), "1")))
	})
}

type stubColdStart struct {
	n   *Notification
	err error
}

func (s *stubColdStart) LastNotification(ctx context.Context) (*Notification, error) {
	return s.n, s.err
}

func TestListenerCheckColdStart(t *testing.T) {
	ctx := context.Background()

	t.Run("Processes launch notification", func(t *testing.T) {
		l := newTestListener()
		n := orderNotification("d-cold", "42")

		require.True(t, l.CheckColdStart(ctx, &stubColdStart{n: &n}))
		assert.Equal(t, int64(42), l.Consume().OrderID)
	})

	t.Run("Live delivery of the same notification is deduplicated", func(t *testing.T) {
		l := newTestListener()
		n := orderNotification("d-cold", "42")

		require.True(t, l.CheckColdStart(ctx, &stubColdStart{n: &n}))
		assert.False(t, l.OnReceive(n))
	})

	t.Run("No launch notification", func(t *testing.T) {
		l := newTestListener()
		assert.False(t, l.CheckColdStart(ctx, &stubColdStart{}))
		assert.False(t, l.CheckColdStart(ctx, nil))
		assert.False(t, l.HasPending())
	})

	t.Run("Source error is swallowed", func(t *testing.T) {
		l := newTestListener()
		assert.False(t, l.CheckColdStart(ctx, &stubColdStart{err: errors.New("platform gone")}))
	})
}

func TestParseOrderID(t *testing.T) {
	tests := []struct {
		raw  string
		want int64
		ok   bool
	}{
		{"42", 42, true},
		{"1", 1, true},
		{"9223372036854775807", 9223372036854775807, true},
		{"", 0, false},
		{"0", 0, false},
		{"-1", 0, false},
		{"abc", 0, false},
		{"4 2", 0, false},
	}
	for _, tt := range tests {
		got, ok := parseOrderID(tt.raw)
		assert.Equal(t, tt.ok, ok, "raw=%q", tt.raw)
		assert.Equal(t, tt.want, got, "raw=%q", tt.raw)
	}
}
