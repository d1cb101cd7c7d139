package handler

import (
	"io"
	"net/http"

	"resto-server/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Максимальный размер загружаемого изображения (5 MiB).
const maxImageSize = 5 << 20

// @Summary Список позиций меню
// @Tags menu
// @Security BearerAuth
// @Produce json
// @Success 200 {array} models.MenuItem
// @Router /menu [get]
func (h *Handler) listMenu(c *gin.Context) {
	items, err := h.menuService.ListMenu(c.Request.Context())
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// @Summary Позиция меню по ID
// @Tags menu
// @Security BearerAuth
// @Produce json
// @Param id path string true "ID позиции"
// @Success 200 {object} models.MenuItem
// @Failure 404 {object} models.ErrorResponse
// @Router /menu/{id} [get]
func (h *Handler) getMenuItem(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		errResp := models.ErrorResponse{Code: models.ErrCodeBadRequest, Message: "Invalid menu item ID"}
		c.AbortWithStatusJSON(http.StatusBadRequest, errResp)
		return
	}
	item, err := h.menuService.GetMenuItem(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// @Summary Создание позиции меню
// @Tags menu
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body menuItemRequest true "Позиция меню"
// @Success 201 {object} models.MenuItem
// @Router /menu [post]
func (h *Handler) createMenuItem(c *gin.Context) {
	var req menuItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errResp := models.ErrorResponse{Code: models.ErrCodeBadRequest, Message: "Invalid request data: " + err.Error()}
		c.AbortWithStatusJSON(http.StatusBadRequest, errResp)
		return
	}

	available := true
	if req.Available != nil {
		available = *req.Available
	}
	item := &models.MenuItem{
		Name:       req.Name,
		Category:   req.Category,
		PriceCents: req.PriceCents,
		Available:  available,
		ImagePath:  req.ImagePath,
	}
	created, err := h.menuService.CreateMenuItem(c.Request.Context(), item)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// @Summary Обновление позиции меню
// @Tags menu
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "ID позиции"
// @Param request body menuItemRequest true "Позиция меню"
// @Success 200 {object} models.MenuItem
// @Router /menu/{id} [put]
func (h *Handler) updateMenuItem(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		errResp := models.ErrorResponse{Code: models.ErrCodeBadRequest, Message: "Invalid menu item ID"}
		c.AbortWithStatusJSON(http.StatusBadRequest, errResp)
		return
	}

	var req menuItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errResp := models.ErrorResponse{Code: models.ErrCodeBadRequest, Message: "Invalid request data: " + err.Error()}
		c.AbortWithStatusJSON(http.StatusBadRequest, errResp)
		return
	}

	available := true
	if req.Available != nil {
		available = *req.Available
	}
	item := &models.MenuItem{
		ID:         id,
		Name:       req.Name,
		Category:   req.Category,
		PriceCents: req.PriceCents,
		Available:  available,
		ImagePath:  req.ImagePath,
	}
	updated, err := h.menuService.UpdateMenuItem(c.Request.Context(), item)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// @Summary Удаление позиции меню
// @Tags menu
// @Security BearerAuth
// @Param id path string true "ID позиции"
// @Success 200 {object} map[string]string
// @Router /menu/{id} [delete]
func (h *Handler) deleteMenuItem(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		errResp := models.ErrorResponse{Code: models.ErrCodeBadRequest, Message: "Invalid menu item ID"}
		c.AbortWithStatusJSON(http.StatusBadRequest, errResp)
		return
	}
	if err := h.menuService.DeleteMenuItem(c.Request.Context(), id); err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Menu item deleted"})
}

// @Summary Загрузка изображения позиции меню
// @Tags menu
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param image formData file true "Изображение (jpg, png, webp)"
// @Success 201 {object} map[string]string "Имя сохраненного файла"
// @Router /menu/images [post]
func (h *Handler) uploadMenuImage(c *gin.Context) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		errResp := models.ErrorResponse{Code: models.ErrCodeBadRequest, Message: "Image file is required"}
		c.AbortWithStatusJSON(http.StatusBadRequest, errResp)
		return
	}
	if fileHeader.Size > maxImageSize {
		errResp := models.ErrorResponse{Code: models.ErrCodeBadRequest, Message: "Image is too large"}
		c.AbortWithStatusJSON(http.StatusBadRequest, errResp)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		handleServiceError(c, err)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxImageSize))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	fileName, err := h.imageService.SaveImage(data, fileHeader.Filename)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"file": fileName})
}

// @Summary Отдача изображения позиции меню
// @Tags menu
// @Produce image/*
// @Param file path string true "Имя файла"
// @Success 200 {file} binary
// @Router /menu/images/{file} [get]
func (h *Handler) serveMenuImage(c *gin.Context) {
	fullPath, err := h.imageService.ImagePath(c.Param("file"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.File(fullPath)
}
