package appclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
)

// PermissionRequester запрашивает у платформы разрешение на уведомления.
type PermissionRequester interface {
	RequestPermission(ctx context.Context) (bool, error)
}

// PushTokenSource выдает push токен этого устройства.
type PushTokenSource interface {
	PushToken(ctx context.Context) (string, error)
}

// ChannelCreator создает канал доставки уведомлений на устройстве.
// На платформах без каналов (iOS) передается nil.
type ChannelCreator interface {
	CreateChannel(ctx context.Context, id string) error
}

// Канал, в который сервер шлет уведомления о заказах.
const ordersChannelID = "orders"

// Registrar получает разрешение на уведомления, берет push токен
// устройства и регистрирует его на сервере.
type Registrar struct {
	serverURL   string
	accessToken string
	platform    string
	permissions PermissionRequester
	tokens      PushTokenSource
	channels    ChannelCreator
	client      *http.Client
	logger      zerolog.Logger
}

func NewRegistrar(
	serverURL, accessToken, platform string,
	permissions PermissionRequester,
	tokens PushTokenSource,
	channels ChannelCreator,
	client *http.Client,
	logger zerolog.Logger,
) *Registrar {
	if client == nil {
		client = http.DefaultClient
	}
	return &Registrar{
		serverURL:   serverURL,
		accessToken: accessToken,
		platform:    platform,
		permissions: permissions,
		tokens:      tokens,
		channels:    channels,
		client:      client,
		logger:      logger.With().Str("component", "Registrar").Logger(),
	}
}

// Register проходит полный цикл регистрации. Отказ в разрешении - не
// ошибка: приложение продолжает работать без уведомлений.
func (r *Registrar) Register(ctx context.Context) (bool, error) {
	granted, err := r.permissions.RequestPermission(ctx)
	if err != nil {
		return false, fmt.Errorf("request permission: %w", err)
	}
	if !granted {
		r.logger.Info().Msg("Разрешение на уведомления не получено, регистрация пропущена")
		return false, nil
	}

	if r.channels != nil {
		if err := r.channels.CreateChannel(ctx, ordersChannelID); err != nil {
			return false, fmt.Errorf("create notification channel: %w", err)
		}
	}

	token, err := r.tokens.PushToken(ctx)
	if err != nil {
		return false, fmt.Errorf("get push token: %w", err)
	}
	if token == "" {
		return false, fmt.Errorf("empty push token")
	}

	if err := r.sendToken(ctx, token); err != nil {
		return false, err
	}

	r.logger.Info().Msg("Push токен зарегистрирован на сервере")
	return true, nil
}

func (r *Registrar) sendToken(ctx context.Context, token string) error {
	body, err := json.Marshal(map[string]string{
		"token":    token,
		"platform": r.platform,
	})
	if err != nil {
		return fmt.Errorf("marshal token request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.serverURL+"/devices/token", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+r.accessToken)

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("send token request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server rejected device token: status %d", resp.StatusCode)
	}
	return nil
}
