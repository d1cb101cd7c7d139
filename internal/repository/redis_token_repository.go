package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"resto-server/internal/interfaces"
	"resto-server/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var _ interfaces.TokenRepository = (*redisTokenRepository)(nil)

type redisTokenRepository struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisTokenRepository creates a new Redis-backed TokenRepository.
func NewRedisTokenRepository(client *redis.Client, logger *zap.Logger) interfaces.TokenRepository {
	return &redisTokenRepository{
		client: client,
		logger: logger.Named("RedisTokenRepo"),
	}
}

func accessKey(accessUUID string) string   { return fmt.Sprintf("access_uuid:%s", accessUUID) }
func refreshKey(refreshUUID string) string { return fmt.Sprintf("refresh_uuid:%s", refreshUUID) }

// SetToken сохраняет идентификаторы пары токенов с их TTL.
// AccessUUID -> UserID и RefreshUUID -> UserID; наличие ключа означает,
// что токен не отозван.
func (r *redisTokenRepository) SetToken(ctx context.Context, userID uuid.UUID, td *models.TokenDetails) error {
	now := time.Now()
	accessTTL := time.Unix(td.AtExpires, 0).Sub(now)
	refreshTTL := time.Unix(td.RtExpires, 0).Sub(now)
	userIDStr := userID.String()

	pipe := r.client.Pipeline()
	pipe.Set(ctx, accessKey(td.AccessUUID), userIDStr, accessTTL)
	pipe.Set(ctx, refreshKey(td.RefreshUUID), userIDStr, refreshTTL)

	if _, err := pipe.Exec(ctx); err != nil {
		r.logger.Error("Failed to set token details in redis", zap.Error(err), zap.String("userID", userIDStr))
		return fmt.Errorf("failed to set token details in redis: %w", err)
	}

	r.logger.Debug("Tokens stored in redis",
		zap.String("userID", userIDStr),
		zap.Duration("accessTTL", accessTTL),
		zap.Duration("refreshTTL", refreshTTL),
	)
	return nil
}

// GetUserIDByAccessUUID возвращает UserID по идентификатору access токена.
func (r *redisTokenRepository) GetUserIDByAccessUUID(ctx context.Context, accessUUID string) (uuid.UUID, error) {
	return r.getUserID(ctx, accessKey(accessUUID))
}

// GetUserIDByRefreshUUID возвращает UserID по идентификатору refresh токена.
func (r *redisTokenRepository) GetUserIDByRefreshUUID(ctx context.Context, refreshUUID string) (uuid.UUID, error) {
	return r.getUserID(ctx, refreshKey(refreshUUID))
}

func (r *redisTokenRepository) getUserID(ctx context.Context, key string) (uuid.UUID, error) {
	val, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return uuid.Nil, models.ErrTokenNotFound
		}
		r.logger.Error("Failed to get token from redis", zap.Error(err))
		return uuid.Nil, fmt.Errorf("failed to get token from redis: %w", err)
	}

	userID, err := uuid.Parse(val)
	if err != nil {
		r.logger.Error("Invalid userID stored in redis", zap.String("value", val), zap.Error(err))
		return uuid.Nil, fmt.Errorf("invalid userID in redis: %w", err)
	}
	return userID, nil
}

// DeleteTokens удаляет идентификаторы токенов (logout).
// Возвращает количество удаленных ключей.
func (r *redisTokenRepository) DeleteTokens(ctx context.Context, userID uuid.UUID, accessUUID, refreshUUID string) (int64, error) {
	keysToDelete := []string{}
	if accessUUID != "" {
		keysToDelete = append(keysToDelete, accessKey(accessUUID))
	}
	if refreshUUID != "" {
		keysToDelete = append(keysToDelete, refreshKey(refreshUUID))
	}

	if len(keysToDelete) == 0 {
		r.logger.Warn("DeleteTokens called with no UUIDs", zap.String("userID", userID.String()))
		return 0, nil
	}

	deleted, err := r.client.Del(ctx, keysToDelete...).Result()
	if err != nil {
		r.logger.Error("Failed to delete tokens from redis", zap.Error(err), zap.String("userID", userID.String()))
		return 0, fmt.Errorf("failed to delete tokens from redis: %w", err)
	}

	r.logger.Debug("Tokens deleted from redis", zap.String("userID", userID.String()), zap.Int64("deleted", deleted))
	return deleted, nil
}
