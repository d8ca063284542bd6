package models

import (
	"time"

	"github.com/google/uuid"
)

// CartItem is one line in a customer's cart. SellingPrice and MRP are
// snapshots taken at add time; CreatedAt is the signal used to bucket
// abandoned carts into time windows.
type CartItem struct {
	BaseModel
	CustomerID      uuid.UUID `gorm:"type:uuid;index" json:"customer_id"`
	ProductID       uuid.UUID `gorm:"type:uuid;index" json:"product_id"`
	VariantPosition int       `json:"variant_position"`
	ProductName     string    `json:"product_name"`
	VariantLabel    string    `json:"variant_label"`
	Quantity        int       `json:"quantity"`
	SellingPrice    float64   `json:"selling_price"`
	MRP             float64   `json:"mrp"`
}

// CartReminder records that a reminder of the given kind was already sent
// for the cart state identified by the newest item's timestamp. Adding an
// item restarts the reminder schedule with a fresh CartLastItemAt.
type CartReminder struct {
	BaseModel
	CustomerID     uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_cart_reminder" json:"customer_id"`
	Kind           string    `gorm:"uniqueIndex:idx_cart_reminder" json:"kind"`
	CartLastItemAt time.Time `gorm:"uniqueIndex:idx_cart_reminder" json:"cart_last_item_at"`
}

// CartTotals aggregates a cart for display and reminder payloads.
type CartTotals struct {
	ItemCount int     `json:"item_count"`
	Value     float64 `json:"value"`
	Savings   float64 `json:"savings"`
}

// TotalCart computes item count, cart value (qty x selling price) and
// savings (qty x (MRP - selling price)) over the given items.
func TotalCart(items []CartItem) CartTotals {
	var t CartTotals
	for _, item := range items {
		qty := float64(item.Quantity)
		t.ItemCount += item.Quantity
		t.Value += qty * item.SellingPrice
		t.Savings += qty * (item.MRP - item.SellingPrice)
	}
	return t
}
