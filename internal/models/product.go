package models

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Product is a storefront item. Variants are addressed by their Position
// within the product; cart and wishlist rows record that position alongside
// a price/stock snapshot.
type Product struct {
	BaseModel
	Slug             string           `gorm:"uniqueIndex" json:"slug"`
	Name             string           `json:"name"`
	ShortDescription string           `json:"short_description"`
	LongDescription  string           `json:"long_description"`
	Currency         string           `json:"currency"`
	Images           pq.StringArray   `gorm:"type:text[]" json:"images"`
	IsActive         bool             `json:"is_active"`
	CategoryID       *uuid.UUID       `gorm:"type:uuid" json:"category_id"`
	Category         *Category        `json:"category,omitempty"`
	Variants         []ProductVariant `json:"variants,omitempty"`
}

// ProductVariant carries the sellable unit: selling price, MRP and stock.
type ProductVariant struct {
	BaseModel
	ProductID     uuid.UUID `gorm:"type:uuid;index" json:"product_id"`
	Position      int       `gorm:"index" json:"position"`
	SKU           string    `json:"sku"`
	Label         string    `json:"label"`
	SellingPrice  float64   `json:"selling_price"`
	MRP           float64   `json:"mrp"`
	StockQuantity int       `json:"stock_quantity"`
	IsActive      bool      `json:"is_active"`
}

// InStock reports whether the variant has sellable stock.
func (v ProductVariant) InStock() bool {
	return v.StockQuantity > 0
}

// VariantAt returns the variant at the given position, if present.
func (p *Product) VariantAt(position int) (*ProductVariant, bool) {
	for i := range p.Variants {
		if p.Variants[i].Position == position {
			return &p.Variants[i], true
		}
	}
	return nil, false
}
