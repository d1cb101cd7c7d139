package service

import (
	"context"
	"fmt"
	"strings"

	"resto-server/internal/interfaces"
	"resto-server/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DeviceTokenService управляет push токенами устройств.
type DeviceTokenService struct {
	deviceTokenRepo interfaces.DeviceTokenRepository
	logger          *zap.Logger
}

func NewDeviceTokenService(deviceTokenRepo interfaces.DeviceTokenRepository, logger *zap.Logger) *DeviceTokenService {
	return &DeviceTokenService{
		deviceTokenRepo: deviceTokenRepo,
		logger:          logger.Named("device_token_service"),
	}
}

// RegisterDeviceToken регистрирует токен устройства пользователя.
func (s *DeviceTokenService) RegisterDeviceToken(ctx context.Context, userID uuid.UUID, token, platform string) error {
	token = strings.TrimSpace(token)
	platform = strings.ToLower(strings.TrimSpace(platform))
	if token == "" {
		return fmt.Errorf("%w: token is required", models.ErrBadRequest)
	}
	if platform != "android" && platform != "ios" {
		return fmt.Errorf("%w: platform must be 'android' or 'ios'", models.ErrBadRequest)
	}

	if err := s.deviceTokenRepo.SaveDeviceToken(ctx, userID, token, platform); err != nil {
		return fmt.Errorf("failed to save device token: %w", err)
	}

	s.logger.Info("Device token registered successfully",
		zap.String("userID", userID.String()),
		zap.String("platform", platform),
	)
	return nil
}

// UnregisterDeviceToken удаляет конкретный токен устройства.
func (s *DeviceTokenService) UnregisterDeviceToken(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return fmt.Errorf("%w: token is required", models.ErrBadRequest)
	}

	if err := s.deviceTokenRepo.DeleteDeviceToken(ctx, token); err != nil {
		return fmt.Errorf("failed to delete device token: %w", err)
	}

	s.logger.Info("Device token unregistered successfully")
	return nil
}

// UnregisterAllForUser удаляет все токены пользователя (вызывается при logout).
func (s *DeviceTokenService) UnregisterAllForUser(ctx context.Context, userID uuid.UUID) error {
	if _, err := s.deviceTokenRepo.DeleteDeviceTokensForUser(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete user device tokens: %w", err)
	}
	return nil
}
