package repository

import (
	"context"
	"fmt"

	"resto-server/internal/interfaces"
	"resto-server/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	saveDeviceTokenQuery = `
		INSERT INTO user_device_tokens (user_id, token, platform, last_used_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (user_id, token)
		DO UPDATE SET
			platform = EXCLUDED.platform,
			last_used_at = NOW();
	`
	// Получатели уведомлений: все повара с непустым push токеном.
	listChefTokensQuery = `
		SELECT dt.token, dt.platform
		FROM user_device_tokens dt
		JOIN users u ON u.id = dt.user_id
		WHERE $1 = ANY(u.roles)
		  AND u.is_active
		  AND dt.token <> '';
	`
	deleteDeviceTokenQuery         = `DELETE FROM user_device_tokens WHERE token = $1;`
	deleteDeviceTokensForUserQuery = `DELETE FROM user_device_tokens WHERE user_id = $1;`
)

var (
	_ interfaces.DeviceTokenRepository = (*pgDeviceTokenRepository)(nil)
	_ interfaces.RecipientProvider     = (*pgDeviceTokenRepository)(nil)
)

type pgDeviceTokenRepository struct {
	db     interfaces.DBTX
	logger *zap.Logger
}

func NewDeviceTokenRepository(db interfaces.DBTX, logger *zap.Logger) *pgDeviceTokenRepository {
	return &pgDeviceTokenRepository{
		db:     db,
		logger: logger.Named("device_token_repo"),
	}
}

// SaveDeviceToken сохраняет или обновляет токен устройства пользователя.
// INSERT ... ON CONFLICT DO UPDATE для атомарности.
func (r *pgDeviceTokenRepository) SaveDeviceToken(ctx context.Context, userID uuid.UUID, token, platform string) error {
	_, err := r.db.Exec(ctx, saveDeviceTokenQuery, userID, token, platform)
	if err != nil {
		r.logger.Error("Failed to save device token",
			zap.String("userID", userID.String()),
			zap.String("platform", platform),
			zap.Error(err),
		)
		return fmt.Errorf("db error saving device token: %w", err)
	}

	r.logger.Debug("Successfully saved device token",
		zap.String("userID", userID.String()),
		zap.String("platform", platform),
	)
	return nil
}

// ListChefTokens возвращает push токены всех активных поваров.
func (r *pgDeviceTokenRepository) ListChefTokens(ctx context.Context) ([]models.DeviceTokenInfo, error) {
	rows, err := r.db.Query(ctx, listChefTokensQuery, models.RoleChef)
	if err != nil {
		r.logger.Error("Failed to query chef tokens", zap.Error(err))
		return nil, fmt.Errorf("db error querying chef tokens: %w", err)
	}
	defer rows.Close()

	tokens := make([]models.DeviceTokenInfo, 0)
	for rows.Next() {
		var tokenInfo models.DeviceTokenInfo
		if err := rows.Scan(&tokenInfo.Token, &tokenInfo.Platform); err != nil {
			r.logger.Error("Failed to scan chef token row", zap.Error(err))
			// Не прерываем из-за одной плохой строки
			continue
		}
		tokens = append(tokens, tokenInfo)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating chef token rows", zap.Error(err))
		return tokens, fmt.Errorf("db error iterating chef tokens: %w", err)
	}

	r.logger.Debug("Successfully fetched chef tokens", zap.Int("count", len(tokens)))
	return tokens, nil
}

// DeleteDeviceToken удаляет конкретный токен.
// Используется, когда шлюз сообщает о невалидном токене.
func (r *pgDeviceTokenRepository) DeleteDeviceToken(ctx context.Context, token string) error {
	cmdTag, err := r.db.Exec(ctx, deleteDeviceTokenQuery, token)
	if err != nil {
		r.logger.Error("Failed to delete device token", zap.Error(err))
		return fmt.Errorf("db error deleting device token: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		r.logger.Warn("Attempted to delete non-existent device token")
	}
	return nil
}

// DeleteDeviceTokensForUser удаляет все токены пользователя (logout, удаление аккаунта).
func (r *pgDeviceTokenRepository) DeleteDeviceTokensForUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	cmdTag, err := r.db.Exec(ctx, deleteDeviceTokensForUserQuery, userID)
	if err != nil {
		r.logger.Error("Failed to delete device tokens for user", zap.String("userID", userID.String()), zap.Error(err))
		return 0, fmt.Errorf("db error deleting user device tokens: %w", err)
	}

	rowsAffected := cmdTag.RowsAffected()
	r.logger.Debug("Deleted device tokens for user", zap.String("userID", userID.String()), zap.Int64("count", rowsAffected))
	return rowsAffected, nil
}
