package service

import (
	"context"

	"resto-server/internal/models"

	"github.com/google/uuid"
)

// AuthService определяет контракт сервиса аутентификации.
type AuthService interface {
	// Register создает учетную запись сотрудника с указанными ролями.
	Register(ctx context.Context, username, email, password string, roles []string) (*models.User, error)
	// Login проверяет учетные данные и возвращает пару токенов.
	Login(ctx context.Context, username, password string) (*models.TokenDetails, error)
	// Logout отзывает пару токенов. Успешен, даже если токены уже отозваны.
	Logout(ctx context.Context, userID uuid.UUID, accessUUID, refreshUUID string) error
	// Refresh выдает новую пару токенов по валидному refresh токену.
	Refresh(ctx context.Context, refreshTokenString string) (*models.TokenDetails, error)
	// VerifyAccessToken проверяет подпись, срок и неотозванность access токена.
	VerifyAccessToken(ctx context.Context, tokenString string) (*models.Claims, error)
	// VerifyRefreshToken проверяет подпись и срок refresh токена без обращения к хранилищу.
	VerifyRefreshToken(ctx context.Context, tokenString string) (*models.Claims, error)
}
