package models

import (
	"time"

	"github.com/google/uuid"
)

// MenuItem - позиция меню.
type MenuItem struct {
	ID         uuid.UUID `json:"id" db:"id"`
	Name       string    `json:"name" db:"name"`
	Category   string    `json:"category" db:"category"`
	PriceCents int64     `json:"price_cents" db:"price_cents"`
	Available  bool      `json:"available" db:"available"`
	ImagePath  string    `json:"image_path,omitempty" db:"image_path"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}
