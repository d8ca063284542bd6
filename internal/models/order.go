package models

import (
	"time"

	"github.com/google/uuid"
)

// Order is a placed order. PlacedAt is what the abandoned-cart sweep uses to
// classify a cart as converted rather than abandoned.
type Order struct {
	BaseModel
	CustomerID  uuid.UUID   `gorm:"type:uuid;index" json:"customer_id"`
	Customer    *Customer   `json:"customer,omitempty"`
	OrderNumber string      `gorm:"uniqueIndex" json:"order_number"`
	Status      string      `json:"status"`
	PlacedAt    time.Time   `gorm:"index" json:"placed_at"`
	Subtotal    float64     `json:"subtotal"`
	TotalAmount float64     `json:"total_amount"`
	Currency    string      `json:"currency"`
	Notes       string      `json:"notes"`
	Items       []OrderItem `json:"items,omitempty"`
}

// OrderItem is one line of an order, denormalized at placement time.
type OrderItem struct {
	BaseModel
	OrderID         uuid.UUID `gorm:"type:uuid;index" json:"order_id"`
	ProductID       uuid.UUID `gorm:"type:uuid" json:"product_id"`
	VariantPosition int       `json:"variant_position"`
	ProductName     string    `json:"product_name"`
	VariantLabel    string    `json:"variant_label"`
	Quantity        int       `json:"quantity"`
	UnitPrice       float64   `json:"unit_price"`
	LineTotal       float64   `json:"line_total"`
}
