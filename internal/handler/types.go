package handler

import (
	"regexp"

	"resto-server/internal/service"

	"github.com/google/uuid"
)

// --- Константы для валидации ---
const (
	minUsernameLength = 3
	maxUsernameLength = 30
	minPasswordLength = 8
	maxPasswordLength = 100
)

// Регулярное выражение для проверки допустимых символов в имени пользователя
var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// --- Request Structs ---

type registerRequest struct {
	Username string   `json:"username" binding:"required"`
	Email    string   `json:"email" binding:"required,email"`
	Password string   `json:"password" binding:"required"`
	Roles    []string `json:"roles"`
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type logoutRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type registerDeviceTokenRequest struct {
	Token    string `json:"token" binding:"required"`
	Platform string `json:"platform" binding:"required"`
}

type unregisterDeviceTokenRequest struct {
	Token string `json:"token" binding:"required"`
}

type menuItemRequest struct {
	Name       string `json:"name" binding:"required"`
	Category   string `json:"category"`
	PriceCents int64  `json:"price_cents" binding:"required"`
	Available  *bool  `json:"available"`
	ImagePath  string `json:"image_path"`
}

type ingredientRequest struct {
	Name         string  `json:"name" binding:"required"`
	Unit         string  `json:"unit" binding:"required"`
	Quantity     float64 `json:"quantity"`
	LowThreshold float64 `json:"low_threshold"`
}

type restockRequest struct {
	Amount float64 `json:"amount" binding:"required"`
}

type recipeLinkRequest struct {
	MenuItemID   uuid.UUID `json:"menu_item_id" binding:"required"`
	IngredientID uuid.UUID `json:"ingredient_id" binding:"required"`
	AmountPerUse float64   `json:"amount_per_use" binding:"required"`
}

type createOrderRequest struct {
	TableNumber *int                `json:"table_number"`
	Items       []service.OrderLine `json:"items" binding:"required"`
}

type addItemsRequest struct {
	Items []service.OrderLine `json:"items" binding:"required"`
}

type updateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}
