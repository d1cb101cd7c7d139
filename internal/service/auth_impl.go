package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"resto-server/internal/config"
	"resto-server/internal/interfaces"
	"resto-server/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type authServiceImpl struct {
	userRepo  interfaces.UserRepository
	tokenRepo interfaces.TokenRepository
	cfg       *config.Config
	logger    *zap.Logger
}

// NewAuthService создает сервис аутентификации.
func NewAuthService(userRepo interfaces.UserRepository, tokenRepo interfaces.TokenRepository, cfg *config.Config, logger *zap.Logger) AuthService {
	return &authServiceImpl{
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
		cfg:       cfg,
		logger:    logger.Named("AuthService"),
	}
}

func (s *authServiceImpl) Register(ctx context.Context, username, email, password string, roles []string) (*models.User, error) {
	s.logger.Info("Registration attempt", zap.String("username", username))

	// Неизвестные роли отбрасываем, по умолчанию - менеджер
	validRoles := make([]string, 0, len(roles))
	known := map[string]struct{}{}
	for _, r := range models.AllRoles() {
		known[r] = struct{}{}
	}
	for _, r := range roles {
		if _, ok := known[r]; ok {
			validRoles = append(validRoles, r)
		}
	}
	if len(validRoles) == 0 {
		validRoles = []string{models.RoleManager}
	}

	hash, err := hashPassword(password)
	if err != nil {
		s.logger.Error("Failed to hash password", zap.Error(err))
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     username,
		DisplayName:  username,
		Email:        email,
		PasswordHash: hash,
		Roles:        validRoles,
		IsActive:     true,
	}

	if err := s.userRepo.CreateUser(ctx, user); err != nil {
		// ErrUserAlreadyExists / ErrEmailAlreadyExists пробрасываем как есть
		return nil, err
	}

	s.logger.Info("User registered", zap.String("userID", user.ID.String()), zap.Strings("roles", validRoles))
	return user, nil
}

func (s *authServiceImpl) Login(ctx context.Context, username, password string) (*models.TokenDetails, error) {
	s.logger.Info("Login attempt", zap.String("username", username))
	user, err := s.userRepo.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			s.logger.Warn("Login failed: user not found", zap.String("username", username))
			return nil, models.ErrInvalidCredentials
		}
		s.logger.Error("Login failed: error getting user from repository", zap.Error(err), zap.String("username", username))
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !checkPasswordHash(password, user.PasswordHash) {
		s.logger.Warn("Login failed: invalid password", zap.String("username", username))
		return nil, models.ErrInvalidCredentials
	}

	if !user.IsActive {
		// Не раскрываем причину отказа
		s.logger.Warn("Login failed: user is deactivated", zap.String("username", username))
		return nil, models.ErrInvalidCredentials
	}

	td, err := s.createTokens(user)
	if err != nil {
		return nil, fmt.Errorf("failed to create tokens: %w", err)
	}

	if err := s.tokenRepo.SetToken(ctx, user.ID, td); err != nil {
		return nil, fmt.Errorf("failed to save token details: %w", err)
	}

	s.logger.Info("User logged in successfully", zap.String("userID", user.ID.String()))
	return td, nil
}

// Logout удаляет идентификаторы токенов из хранилища.
// Успешен, даже если токены уже были удалены или истекли.
func (s *authServiceImpl) Logout(ctx context.Context, userID uuid.UUID, accessUUID, refreshUUID string) error {
	log := s.logger.With(zap.String("userID", userID.String()))

	deletedCount, err := s.tokenRepo.DeleteTokens(ctx, userID, accessUUID, refreshUUID)
	if err != nil {
		// Не возвращаем ошибку клиенту: токены могли уже быть удалены
		log.Error("Failed to delete tokens during logout", zap.Error(err))
	}

	if deletedCount > 0 {
		log.Info("Tokens deleted during logout", zap.Int64("deletedCount", deletedCount))
	} else {
		log.Info("No tokens found to delete during logout")
	}
	return nil
}

func (s *authServiceImpl) Refresh(ctx context.Context, refreshTokenString string) (*models.TokenDetails, error) {
	s.logger.Info("Token refresh attempt")

	claims, err := s.parseClaims(refreshTokenString)
	if err != nil {
		return nil, err
	}

	// Проверяем, что refresh токен не отозван
	userID, err := s.tokenRepo.GetUserIDByRefreshUUID(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, models.ErrTokenNotFound) {
			return nil, models.ErrTokenInvalid
		}
		return nil, fmt.Errorf("failed to check refresh token: %w", err)
	}
	if userID != claims.UserID {
		s.logger.Warn("Refresh token user mismatch", zap.String("tokenUserID", claims.UserID.String()))
		return nil, models.ErrTokenInvalid
	}

	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user during refresh: %w", err)
	}

	// Ротация: старый refresh отзывается, выдается новая пара
	if _, err := s.tokenRepo.DeleteTokens(ctx, userID, "", claims.ID); err != nil {
		s.logger.Warn("Failed to revoke old refresh token", zap.Error(err))
	}

	td, err := s.createTokens(user)
	if err != nil {
		return nil, fmt.Errorf("failed to create tokens: %w", err)
	}
	if err := s.tokenRepo.SetToken(ctx, user.ID, td); err != nil {
		return nil, fmt.Errorf("failed to save token details: %w", err)
	}

	s.logger.Info("Tokens refreshed", zap.String("userID", user.ID.String()))
	return td, nil
}

func (s *authServiceImpl) VerifyAccessToken(ctx context.Context, tokenString string) (*models.Claims, error) {
	claims, err := s.parseClaims(tokenString)
	if err != nil {
		return nil, err
	}

	// Наличие ключа в Redis означает, что токен не отозван
	userID, err := s.tokenRepo.GetUserIDByAccessUUID(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, models.ErrTokenNotFound) {
			return nil, models.ErrTokenInvalid
		}
		return nil, fmt.Errorf("failed to check access token: %w", err)
	}
	if userID != claims.UserID {
		return nil, models.ErrTokenInvalid
	}

	return claims, nil
}

func (s *authServiceImpl) VerifyRefreshToken(ctx context.Context, tokenString string) (*models.Claims, error) {
	return s.parseClaims(tokenString)
}

// parseClaims проверяет подпись и срок жизни токена и извлекает claims.
func (s *authServiceImpl) parseClaims(tokenString string) (*models.Claims, error) {
	claims := &models.Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, models.ErrTokenExpired
		}
		if errors.Is(err, jwt.ErrTokenMalformed) {
			return nil, models.ErrTokenMalformed
		}
		return nil, fmt.Errorf("%w: %v", models.ErrTokenInvalid, err)
	}
	if !token.Valid {
		return nil, models.ErrTokenInvalid
	}
	return claims, nil
}

// createTokens генерирует новую пару access/refresh токенов.
func (s *authServiceImpl) createTokens(user *models.User) (*models.TokenDetails, error) {
	now := time.Now()
	td := &models.TokenDetails{
		AccessUUID:  uuid.New().String(),
		RefreshUUID: uuid.New().String(),
		AtExpires:   now.Add(s.cfg.AccessTokenTTL).Unix(),
		RtExpires:   now.Add(s.cfg.RefreshTokenTTL).Unix(),
	}

	sign := func(jti string, expires int64) (string, error) {
		claims := &models.Claims{
			UserID: user.ID,
			Roles:  user.Roles,
			RegisteredClaims: jwt.RegisteredClaims{
				ID:        jti,
				ExpiresAt: jwt.NewNumericDate(time.Unix(expires, 0)),
				Subject:   user.ID.String(),
				Issuer:    "resto-server",
				IssuedAt:  jwt.NewNumericDate(now),
			},
		}
		return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTSecret))
	}

	var err error
	if td.AccessToken, err = sign(td.AccessUUID, td.AtExpires); err != nil {
		s.logger.Error("Failed to sign access token", zap.Error(err))
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}
	if td.RefreshToken, err = sign(td.RefreshUUID, td.RtExpires); err != nil {
		s.logger.Error("Failed to sign refresh token", zap.Error(err))
		return nil, fmt.Errorf("failed to sign refresh token: %w", err)
	}

	return td, nil
}

// hashPassword generates a bcrypt hash of the password.
func hashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// checkPasswordHash compares a plain text password with a stored hash.
func checkPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
