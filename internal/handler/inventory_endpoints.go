package handler

import (
	"net/http"

	"resto-server/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// @Summary Список ингредиентов
// @Tags inventory
// @Security BearerAuth
// @Produce json
// @Success 200 {array} models.Ingredient
// @Router /inventory [get]
func (h *Handler) listIngredients(c *gin.Context) {
	ingredients, err := h.inventoryService.ListIngredients(c.Request.Context())
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, ingredients)
}

// @Summary Ингредиенты с остатком ниже порога
// @Tags inventory
// @Security BearerAuth
// @Produce json
// @Success 200 {array} models.Ingredient
// @Router /inventory/low [get]
func (h *Handler) listLowStock(c *gin.Context) {
	ingredients, err := h.inventoryService.ListLowStock(c.Request.Context())
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, ingredients)
}

// @Summary Создание ингредиента
// @Tags inventory
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body ingredientRequest true "Ингредиент"
// @Success 201 {object} models.Ingredient
// @Router /inventory [post]
func (h *Handler) createIngredient(c *gin.Context) {
	var req ingredientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errResp := models.ErrorResponse{Code: models.ErrCodeBadRequest, Message: "Invalid request data: " + err.Error()}
		c.AbortWithStatusJSON(http.StatusBadRequest, errResp)
		return
	}

	ing := &models.Ingredient{
		Name:         req.Name,
		Unit:         req.Unit,
		Quantity:     req.Quantity,
		LowThreshold: req.LowThreshold,
	}
	created, err := h.inventoryService.CreateIngredient(c.Request.Context(), ing)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// @Summary Пополнение остатка ингредиента
// @Tags inventory
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "ID ингредиента"
// @Param request body restockRequest true "Изменение остатка"
// @Success 200 {object} models.Ingredient
// @Failure 404 {object} models.ErrorResponse
// @Router /inventory/{id}/restock [post]
func (h *Handler) restockIngredient(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		errResp := models.ErrorResponse{Code: models.ErrCodeBadRequest, Message: "Invalid ingredient ID"}
		c.AbortWithStatusJSON(http.StatusBadRequest, errResp)
		return
	}

	var req restockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errResp := models.ErrorResponse{Code: models.ErrCodeBadRequest, Message: "Invalid request data: " + err.Error()}
		c.AbortWithStatusJSON(http.StatusBadRequest, errResp)
		return
	}

	ing, err := h.inventoryService.Restock(c.Request.Context(), id, req.Amount)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, ing)
}

// @Summary Привязка ингредиента к позиции меню
// @Description Задает расход ингредиента на одну порцию позиции меню.
// @Tags inventory
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body recipeLinkRequest true "Рецептурная связь"
// @Success 201 {object} map[string]string
// @Router /inventory/recipes [post]
func (h *Handler) linkRecipe(c *gin.Context) {
	var req recipeLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errResp := models.ErrorResponse{Code: models.ErrCodeBadRequest, Message: "Invalid request data: " + err.Error()}
		c.AbortWithStatusJSON(http.StatusBadRequest, errResp)
		return
	}

	link := &models.RecipeLink{
		MenuItemID:   req.MenuItemID,
		IngredientID: req.IngredientID,
		AmountPerUse: req.AmountPerUse,
	}
	if err := h.inventoryService.LinkRecipe(c.Request.Context(), link); err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Recipe link created"})
}
