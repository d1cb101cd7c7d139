package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"resto-server/internal/interfaces"
	"resto-server/internal/models"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const recipientCacheKey = "push_recipients:chefs"

var _ interfaces.RecipientProvider = (*cachedRecipientProvider)(nil)

// cachedRecipientProvider - cache-aside обертка над провайдером получателей.
// Список токенов поваров меняется редко, а диспетчер дергает его на каждое
// событие заказа, поэтому держим короткий TTL в Redis.
type cachedRecipientProvider struct {
	inner  interfaces.RecipientProvider
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewCachedRecipientProvider(inner interfaces.RecipientProvider, client *redis.Client, ttl time.Duration, logger *zap.Logger) interfaces.RecipientProvider {
	return &cachedRecipientProvider{
		inner:  inner,
		client: client,
		ttl:    ttl,
		logger: logger.Named("recipient_cache"),
	}
}

func (p *cachedRecipientProvider) ListChefTokens(ctx context.Context) ([]models.DeviceTokenInfo, error) {
	raw, err := p.client.Get(ctx, recipientCacheKey).Bytes()
	if err == nil {
		var tokens []models.DeviceTokenInfo
		if jsonErr := json.Unmarshal(raw, &tokens); jsonErr == nil {
			p.logger.Debug("Recipient cache hit", zap.Int("count", len(tokens)))
			return tokens, nil
		}
		// Битое значение в кэше игнорируем и идем в базу
		p.logger.Warn("Corrupted recipient cache entry, falling through")
	} else if !errors.Is(err, redis.Nil) {
		// Недоступный Redis не должен ломать отправку уведомлений
		p.logger.Warn("Recipient cache read failed, falling through", zap.Error(err))
	}

	tokens, err := p.inner.ListChefTokens(ctx)
	if err != nil {
		return nil, fmt.Errorf("recipient provider: %w", err)
	}

	if raw, jsonErr := json.Marshal(tokens); jsonErr == nil {
		if setErr := p.client.Set(ctx, recipientCacheKey, raw, p.ttl).Err(); setErr != nil {
			p.logger.Warn("Recipient cache write failed", zap.Error(setErr))
		}
	}

	return tokens, nil
}
