package handler

import (
	"net/http"

	"resto-server/internal/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// InternalAuthMiddleware пропускает только запросы с корректным
// межсервисным секретом в заголовке X-Internal-Service-Token.
func (h *Handler) InternalAuthMiddleware() gin.HandlerFunc {
	staticSecret := h.cfg.InternalSecret
	if staticSecret == "" {
		zap.L().Warn("InternalAuthMiddleware: INTERNAL_SECRET не задан! Проверка секрета всегда будет неуспешной.")
	}

	return func(c *gin.Context) {
		// Preflight запросы пропускаются без проверки секрета.
		if c.Request.Method == http.MethodOptions {
			c.Status(http.StatusOK)
			c.Abort()
			return
		}

		tokenString := c.GetHeader("X-Internal-Service-Token")
		if staticSecret == "" || tokenString != staticSecret {
			tokenVerificationsTotal.WithLabelValues("inter-service", "failure").Inc()
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		tokenVerificationsTotal.WithLabelValues("inter-service", "success").Inc()
		c.Next()
	}
}

// @Summary Триггер диспетчера уведомлений
// @Description Принимает событие изменения заказа и рассылает push уведомления поварам. Вызов без записи трактуется как ping и завершается успешно.
// @Tags internal
// @Accept json
// @Produce json
// @Param X-Internal-Service-Token header string true "Межсервисный секрет"
// @Param request body models.TriggerPayload true "Событие изменения"
// @Success 200 {object} models.DispatchResult
// @Failure 400 {object} map[string]string "Не удалось собрать уведомление"
// @Failure 401 {object} map[string]string "Неверный секрет"
// @Router /internal/dispatch [post]
func (h *Handler) dispatchNotification(c *gin.Context) {
	var payload models.TriggerPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		dispatchesTotal.WithLabelValues("bad_request").Inc()
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid payload: " + err.Error()})
		return
	}

	result, err := h.dispatcher.Dispatch(c.Request.Context(), payload)
	if err != nil {
		// Ошибка на стороне сервера при сборке уведомления (БД, получатели)
		// отдается как 400, чтобы источник события не повторял доставку.
		zap.L().Error("Dispatch failed", zap.Error(err))
		dispatchesTotal.WithLabelValues("error").Inc()
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if result.NoOp() {
		dispatchesTotal.WithLabelValues("noop").Inc()
	} else {
		dispatchesTotal.WithLabelValues("sent").Inc()
		pushRecipientsTotal.Add(float64(result.Recipients))
	}

	c.JSON(http.StatusOK, result)
}
