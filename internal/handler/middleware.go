package handler

import (
	"strings"

	"resto-server/internal/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func (h *Handler) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			zap.L().Warn("Authorization header missing")
			tokenVerificationsTotal.WithLabelValues("access", "failure").Inc()
			handleServiceError(c, models.ErrTokenInvalid)
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			zap.L().Warn("Invalid Authorization header format", zap.String("header", authHeader))
			tokenVerificationsTotal.WithLabelValues("access", "failure").Inc()
			handleServiceError(c, models.ErrTokenInvalid)
			return
		}

		tokenString := parts[1]
		claims, err := h.authService.VerifyAccessToken(c.Request.Context(), tokenString)
		if err != nil {
			zap.L().Warn("Access token verification failed", zap.Error(err))
			tokenVerificationsTotal.WithLabelValues("access", "failure").Inc()
			handleServiceError(c, err)
			return
		}

		tokenVerificationsTotal.WithLabelValues("access", "success").Inc()
		c.Set("user_id", claims.UserID)
		c.Set("access_uuid", claims.ID)
		c.Set("roles", claims.Roles)
		c.Next()
	}
}

// RequireRoleMiddleware пропускает только пользователей с одной из ролей.
// Должен стоять после AuthMiddleware.
func (h *Handler) RequireRoleMiddleware(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRoles, ok := c.Get("roles")
		if !ok {
			handleServiceError(c, models.ErrForbidden)
			return
		}
		have, _ := userRoles.([]string)
		for _, want := range roles {
			if models.HasRole(have, want) {
				c.Next()
				return
			}
		}
		zap.L().Warn("Доступ запрещен, нет требуемой роли",
			zap.Strings("have", have),
			zap.Strings("want", roles),
		)
		handleServiceError(c, models.ErrForbidden)
	}
}
