package store

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Restaurant is the root tenant boundary. Every menu item and order belongs
// to exactly one restaurant.
type Restaurant struct {
	ID        uuid.UUID
	Slug      string
	Name      string
	LogoURL   string
	OwnerID   uuid.UUID
	Status    string
	CreatedAt time.Time
}

type MenuItem struct {
	ID           uuid.UUID
	RestaurantID uuid.UUID
	Name         string
	Category     string
	Price        decimal.Decimal
	IsAvailable  bool
	ImageURL     string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// OrderLine is one unit of a product captured at add-to-cart time. The
// price snapshot is intentionally independent of later menu edits.
type OrderLine struct {
	LineID     string          `json:"line_id"`
	MenuItemID string          `json:"menu_item_id"`
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	Dough      string          `json:"dough,omitempty"`
}

// Order rows are never deleted; terminal statuses are filtered out of
// active reads instead.
type Order struct {
	ID           uuid.UUID
	RestaurantID uuid.UUID
	TableNumber  string
	Status       string
	Total        decimal.Decimal
	Items        []OrderLine
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type User struct {
	ID             uuid.UUID
	RestaurantID   uuid.UUID
	Email          string
	HashedPassword string
	Role           string
	CreatedAt      time.Time
}
