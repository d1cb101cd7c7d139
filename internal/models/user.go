package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// User - учетная запись сотрудника ресторана.
type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	DisplayName  string    `json:"display_name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Roles        []string  `json:"roles"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

// Claims - полезная нагрузка access токена.
type Claims struct {
	UserID uuid.UUID `json:"user_id"`
	Roles  []string  `json:"roles"`
	jwt.RegisteredClaims
}

// TokenDetails содержит пару токенов и их идентификаторы/сроки жизни.
// Идентификаторы (UUID) хранятся в Redis для возможности отзыва.
type TokenDetails struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	AccessUUID   string `json:"-"`
	RefreshUUID  string `json:"-"`
	AtExpires    int64  `json:"-"`
	RtExpires    int64  `json:"-"`
}

// DeviceTokenInfo содержит push токен устройства и его платформу.
type DeviceTokenInfo struct {
	Token    string `json:"token"`    // Expo push токен ("ExponentPushToken[...]")
	Platform string `json:"platform"` // 'android' или 'ios'
}
