package appclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedPermission struct {
	granted bool
	err     error
}

func (p *fixedPermission) RequestPermission(ctx context.Context) (bool, error) {
	return p.granted, p.err
}

type fixedTokenSource struct {
	token string
	err   error
}

func (s *fixedTokenSource) PushToken(ctx context.Context) (string, error) {
	return s.token, s.err
}

type recordingChannel struct {
	created []string
}

func (c *recordingChannel) CreateChannel(ctx context.Context, id string) error {
	c.created = append(c.created, id)
	return nil
}

func TestRegistrar(t *testing.T) {
	ctx := context.Background()

	t.Run("Registers token on the server", func(t *testing.T) {
		var gotAuth string
		var gotBody map[string]string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodPost, r.Method)
			require.Equal(t, "/devices/token", r.URL.Path)
			gotAuth = r.Header.Get("Authorization")
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		channels := &recordingChannel{}
		r := NewRegistrar(srv.URL, "access-token", "android",
			&fixedPermission{granted: true},
			&fixedTokenSource{token: "ExponentPushToken[abc]"},
			channels, srv.Client(), zerolog.Nop())

		registered, err := r.Register(ctx)
		require.NoError(t, err)
		assert.True(t, registered)
		assert.Equal(t, "Bearer access-token", gotAuth)
		assert.Equal(t, map[string]string{"token": "ExponentPushToken[abc]", "platform": "android"}, gotBody)
		assert.Equal(t, []string{"orders"}, channels.created)
	})

	t.Run("Denied permission is not an error", func(t *testing.T) {
		channels := &recordingChannel{}
		r := NewRegistrar("http://unused", "tok", "android",
			&fixedPermission{granted: false},
			&fixedTokenSource{token: "ExponentPushToken[abc]"},
			channels, nil, zerolog.Nop())

		registered, err := r.Register(ctx)
		require.NoError(t, err)
		assert.False(t, registered)
		assert.Empty(t, channels.created, "channel must not be created without permission")
	})

	t.Run("Permission request failure is an error", func(t *testing.T) {
		r := NewRegistrar("http://unused", "tok", "android",
			&fixedPermission{err: errors.New("platform unavailable")},
			&fixedTokenSource{token: "x"}, nil, nil, zerolog.Nop())

		_, err := r.Register(ctx)
		assert.Error(t, err)
	})

	t.Run("Nil channel creator is allowed", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		r := NewRegistrar(srv.URL, "tok", "ios",
			&fixedPermission{granted: true},
			&fixedTokenSource{token: "ExponentPushToken[ios]"},
			nil, srv.Client(), zerolog.Nop())

		registered, err := r.Register(ctx)
		require.NoError(t, err)
		assert.True(t, registered)
	})

	t.Run("Server rejection surfaces as error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer srv.Close()

		r := NewRegistrar(srv.URL, "expired", "android",
			&fixedPermission{granted: true},
			&fixedTokenSource{token: "ExponentPushToken[abc]"},
			nil, srv.Client(), zerolog.Nop())

		_, err := r.Register(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "401")
	})

	t.Run("Empty push token is an error", func(t *testing.T) {
		r := NewRegistrar("http://unused", "tok", "android",
			&fixedPermission{granted: true},
			&fixedTokenSource{token: ""}, nil, nil, zerolog.Nop())

		_, err := r.Register(ctx)
		assert.Error(t, err)
	})
}
