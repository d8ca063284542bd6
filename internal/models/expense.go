package models

import (
	"time"

	"github.com/google/uuid"
)

// ExpenseCategory classifies expenses (rent, logistics, marketing...).
type ExpenseCategory struct {
	BaseModel
	Name        string `gorm:"uniqueIndex" json:"name"`
	Description string `json:"description"`
}

// Supplier is a vendor an expense is paid to.
type Supplier struct {
	BaseModel
	Name         string `json:"name"`
	ContactName  string `json:"contact_name"`
	ContactPhone string `json:"contact_phone"`
	Email        string `json:"email"`
	IsActive     bool   `json:"is_active"`
}

// Expense is a purchase/expense record. ExpenseNumber is a human-readable
// per-year sequence of the form EXP-<year>-<NNN>.
type Expense struct {
	BaseModel
	ExpenseNumber string           `gorm:"uniqueIndex" json:"expense_number"`
	CategoryID    uuid.UUID        `gorm:"type:uuid;index" json:"category_id"`
	Category      *ExpenseCategory `json:"category,omitempty"`
	SupplierID    uuid.UUID        `gorm:"type:uuid;index" json:"supplier_id"`
	Supplier      *Supplier        `json:"supplier,omitempty"`
	Amount        float64          `json:"amount"`
	Currency      string           `json:"currency"`
	Description   string           `json:"description"`
	ReceiptURL    string           `json:"receipt_url"`
	IncurredAt    time.Time        `json:"incurred_at"`
}
