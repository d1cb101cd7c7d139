package models

import (
	"time"

	"github.com/google/uuid"
)

// Ingredient - складская позиция.
// Quantity и LowThreshold в единицах Unit (граммы, штуки и т.д.).
type Ingredient struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Unit         string    `json:"unit" db:"unit"`
	Quantity     float64   `json:"quantity" db:"quantity"`
	LowThreshold float64   `json:"low_threshold" db:"low_threshold"`
	IsLow        bool      `json:"is_low" db:"is_low"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// RecipeLink - связь позиции меню с ингредиентом: сколько ингредиента
// уходит на одну порцию.
type RecipeLink struct {
	MenuItemID   uuid.UUID `json:"menu_item_id" db:"menu_item_id"`
	IngredientID uuid.UUID `json:"ingredient_id" db:"ingredient_id"`
	AmountPerUse float64   `json:"amount_per_use" db:"amount_per_use"`
}
