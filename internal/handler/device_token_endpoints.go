package handler

import (
	"net/http"

	"resto-server/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// @Summary Регистрация push токена устройства
// @Description Сохраняет push токен текущего сотрудника. Повторная регистрация того же токена обновляет владельца.
// @Tags devices
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body registerDeviceTokenRequest true "Токен и платформа"
// @Success 200 {object} map[string]string "Токен сохранен"
// @Failure 400 {object} models.ErrorResponse "Неверные данные"
// @Router /devices/token [post]
func (h *Handler) registerDeviceToken(c *gin.Context) {
	var req registerDeviceTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errResp := models.ErrorResponse{Code: models.ErrCodeBadRequest, Message: "Invalid request data: " + err.Error()}
		c.AbortWithStatusJSON(http.StatusBadRequest, errResp)
		return
	}

	userID := c.MustGet("user_id").(uuid.UUID)
	if err := h.deviceTokenService.RegisterDeviceToken(c.Request.Context(), userID, req.Token, req.Platform); err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Device token registered"})
}

// @Summary Удаление push токена устройства
// @Tags devices
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body unregisterDeviceTokenRequest true "Токен"
// @Success 200 {object} map[string]string "Токен удален"
// @Router /devices/token [delete]
func (h *Handler) unregisterDeviceToken(c *gin.Context) {
	var req unregisterDeviceTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errResp := models.ErrorResponse{Code: models.ErrCodeBadRequest, Message: "Invalid request data: " + err.Error()}
		c.AbortWithStatusJSON(http.StatusBadRequest, errResp)
		return
	}

	if err := h.deviceTokenService.UnregisterDeviceToken(c.Request.Context(), req.Token); err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Device token unregistered"})
}
