package models

import (
	"github.com/google/uuid"
)

// Customer is the storefront-facing profile linked to an account. Email,
// phone and name are denormalized copies; is_verified is kept in sync with
// the account's flag by the verification flow.
type Customer struct {
	BaseModel
	UserID     uuid.UUID      `gorm:"type:uuid;uniqueIndex" json:"user_id"`
	Email      string         `gorm:"index" json:"email"`
	Phone      string         `gorm:"index" json:"phone"`
	Name       string         `json:"name"`
	IsVerified bool           `json:"is_verified"`
	Wishlist   []WishlistItem `json:"wishlist,omitempty"`
	CartItems  []CartItem     `json:"cart_items,omitempty"`
}
