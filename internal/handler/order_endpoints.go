package handler

import (
	"net/http"
	"strconv"

	"resto-server/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// @Summary Создание заказа
// @Description Создает заказ с позициями, списывает ингредиенты и уведомляет кухню.
// @Tags orders
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body createOrderRequest true "Заказ"
// @Success 201 {object} models.Order
// @Failure 400 {object} models.ErrorResponse "Пустой заказ или неверные данные"
// @Router /orders [post]
func (h *Handler) createOrder(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errResp := models.ErrorResponse{Code: models.ErrCodeBadRequest, Message: "Invalid request data: " + err.Error()}
		c.AbortWithStatusJSON(http.StatusBadRequest, errResp)
		return
	}

	userID := c.MustGet("user_id").(uuid.UUID)
	order, err := h.orderService.CreateOrder(c.Request.Context(), userID, req.TableNumber, req.Items)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	ordersCreatedTotal.Inc()
	c.JSON(http.StatusCreated, order)
}

// @Summary Дозаказ: добавление позиций в открытый заказ
// @Tags orders
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "ID заказа"
// @Param request body addItemsRequest true "Добавляемые позиции"
// @Success 200 {object} models.Order
// @Failure 409 {object} models.ErrorResponse "Заказ закрыт для изменений"
// @Router /orders/{id}/items [post]
func (h *Handler) addOrderItems(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		errResp := models.ErrorResponse{Code: models.ErrCodeBadRequest, Message: "Invalid order ID"}
		c.AbortWithStatusJSON(http.StatusBadRequest, errResp)
		return
	}

	var req addItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errResp := models.ErrorResponse{Code: models.ErrCodeBadRequest, Message: "Invalid request data: " + err.Error()}
		c.AbortWithStatusJSON(http.StatusBadRequest, errResp)
		return
	}

	order, err := h.orderService.AddItems(c.Request.Context(), id, req.Items)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	orderItemsAddedTotal.Inc()
	c.JSON(http.StatusOK, order)
}

// @Summary Заказ по ID
// @Tags orders
// @Security BearerAuth
// @Produce json
// @Param id path string true "ID заказа"
// @Success 200 {object} models.Order
// @Failure 404 {object} models.ErrorResponse
// @Router /orders/{id} [get]
func (h *Handler) getOrder(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		errResp := models.ErrorResponse{Code: models.ErrCodeBadRequest, Message: "Invalid order ID"}
		c.AbortWithStatusJSON(http.StatusBadRequest, errResp)
		return
	}
	order, err := h.orderService.GetOrder(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// @Summary Список заказов
// @Tags orders
// @Security BearerAuth
// @Produce json
// @Param status query string false "Фильтр по статусу (open, preparing, served, paid)"
// @Param limit query int false "Максимум записей (по умолчанию 50)"
// @Success 200 {array} models.Order
// @Router /orders [get]
func (h *Handler) listOrders(c *gin.Context) {
	var status *models.OrderStatus
	if s := c.Query("status"); s != "" {
		st := models.OrderStatus(s)
		status = &st
	}
	limit := 50
	if l := c.Query("limit"); l != "" {
		parsed, err := strconv.Atoi(l)
		if err != nil || parsed <= 0 {
			errResp := models.ErrorResponse{Code: models.ErrCodeBadRequest, Message: "Invalid limit"}
			c.AbortWithStatusJSON(http.StatusBadRequest, errResp)
			return
		}
		limit = parsed
	}

	orders, err := h.orderService.ListOrders(c.Request.Context(), status, limit)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// @Summary Смена статуса заказа
// @Description Переходы только вперед: open -> preparing -> served -> paid.
// @Tags orders
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "ID заказа"
// @Param request body updateOrderStatusRequest true "Новый статус"
// @Success 200 {object} models.Order
// @Failure 409 {object} models.ErrorResponse "Недопустимый переход"
// @Router /orders/{id}/status [patch]
func (h *Handler) updateOrderStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		errResp := models.ErrorResponse{Code: models.ErrCodeBadRequest, Message: "Invalid order ID"}
		c.AbortWithStatusJSON(http.StatusBadRequest, errResp)
		return
	}

	var req updateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errResp := models.ErrorResponse{Code: models.ErrCodeBadRequest, Message: "Invalid request data: " + err.Error()}
		c.AbortWithStatusJSON(http.StatusBadRequest, errResp)
		return
	}

	order, err := h.orderService.UpdateStatus(c.Request.Context(), id, models.OrderStatus(req.Status))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}
