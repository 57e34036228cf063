package model

import (
	"time"

	"github.com/google/uuid"
)

// Product represents a product in the catalogue.
type Product struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	Name        string     `json:"name" db:"name"`
	Description string     `json:"description,omitempty" db:"description"`
	Price       float64    `json:"price" db:"price"`
	Stock       int        `json:"stock" db:"stock"`
	ImageURL    string     `json:"imageUrl,omitempty" db:"image_url"`
	CategoryID  *uuid.UUID `json:"categoryId,omitempty" db:"category_id"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`
}

// Category groups products in the catalogue.
type Category struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
