package models

import (
	"github.com/google/uuid"
)

// WishlistItem references a product variant and caches a display snapshot.
// The snapshot doubles as the alert baseline: the price-drop sweep compares
// the live variant price against SnapshotPrice and overwrites it after a
// successful alert, and the back-in-stock check fires only on a cached-zero
// to live-nonzero transition of SnapshotStock.
type WishlistItem struct {
	BaseModel
	CustomerID      uuid.UUID `gorm:"type:uuid;index" json:"customer_id"`
	ProductID       uuid.UUID `gorm:"type:uuid;index" json:"product_id"`
	VariantPosition int       `json:"variant_position"`
	ProductName     string    `json:"product_name"`
	VariantLabel    string    `json:"variant_label"`
	Image           string    `json:"image"`
	SnapshotPrice   float64   `json:"snapshot_price"`
	SnapshotMRP     float64   `json:"snapshot_mrp"`
	SnapshotStock   int       `json:"snapshot_stock"`
	InStock         bool      `json:"in_stock"`
}

// RefreshSnapshot overwrites the cached display data from a live variant.
func (w *WishlistItem) RefreshSnapshot(p *Product, v *ProductVariant) {
	w.ProductName = p.Name
	if len(p.Images) > 0 {
		w.Image = p.Images[0]
	}
	w.VariantLabel = v.Label
	w.SnapshotPrice = v.SellingPrice
	w.SnapshotMRP = v.MRP
	w.SnapshotStock = v.StockQuantity
	w.InStock = v.InStock()
}
