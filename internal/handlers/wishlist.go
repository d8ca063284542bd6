package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/example/veloria/internal/middleware"
	"github.com/example/veloria/internal/models"
)

// WishlistHandler manages the authenticated customer's wishlist.
type WishlistHandler struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewWishlistHandler constructs WishlistHandler.
func NewWishlistHandler(db *gorm.DB, log *zap.Logger) *WishlistHandler {
	return &WishlistHandler{db: db, log: log}
}

// ListWishlist returns the wishlist with snapshots lazily refreshed from
// the live products. A stale snapshot is served as-is when the refresh
// fails; the sweeps will catch up later.
func (h *WishlistHandler) ListWishlist(c *fiber.Ctx) error {
	customer, err := h.currentCustomer(c)
	if err != nil {
		return err
	}

	var items []models.WishlistItem
	if err := h.db.Where("customer_id = ?", customer.ID).
		Order("created_at desc").Find(&items).Error; err != nil {
		return err
	}

	for i := range items {
		if err := h.refreshSnapshot(&items[i]); err != nil {
			h.log.Warn("wishlist snapshot refresh failed",
				zap.String("wishlist_item_id", items[i].ID.String()), zap.Error(err))
		}
	}

	return c.JSON(fiber.Map{"success": true, "data": items})
}

type addWishlistItemRequest struct {
	ProductID       string `json:"product_id"`
	VariantPosition int    `json:"variant_position"`
}

// AddWishlistItem adds a variant to the wishlist, idempotently returning
// the existing entry for an already-wishlisted variant.
func (h *WishlistHandler) AddWishlistItem(c *fiber.Ctx) error {
	customer, err := h.currentCustomer(c)
	if err != nil {
		return err
	}

	var req addWishlistItemRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.ProductID == "" {
		return fiber.NewError(fiber.StatusBadRequest, "product_id is required")
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid product_id")
	}

	var existing models.WishlistItem
	err = h.db.Where("customer_id = ? AND product_id = ? AND variant_position = ?",
		customer.ID, productID, req.VariantPosition).First(&existing).Error
	if err == nil {
		return c.JSON(fiber.Map{"success": true, "data": existing})
	}
	if err != gorm.ErrRecordNotFound {
		return err
	}

	var product models.Product
	if err := h.db.Preload("Variants").First(&product, "id = ?", productID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "product not found")
		}
		return err
	}

	variant, ok := product.VariantAt(req.VariantPosition)
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "variant not found")
	}

	item := models.WishlistItem{
		CustomerID:      customer.ID,
		ProductID:       productID,
		VariantPosition: req.VariantPosition,
	}
	item.RefreshSnapshot(&product, variant)

	if err := h.db.Create(&item).Error; err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": item})
}

// RemoveWishlistItem deletes one wishlist entry.
func (h *WishlistHandler) RemoveWishlistItem(c *fiber.Ctx) error {
	customer, err := h.currentCustomer(c)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	if err := h.db.Delete(&models.WishlistItem{}, "id = ? AND customer_id = ?", id, customer.ID).Error; err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *WishlistHandler) refreshSnapshot(item *models.WishlistItem) error {
	var product models.Product
	err := h.db.Preload("Variants").First(&product, "id = ?", item.ProductID).Error
	if err == gorm.ErrRecordNotFound {
		return nil
	}
	if err != nil {
		return err
	}

	variant, ok := product.VariantAt(item.VariantPosition)
	if !ok {
		return nil
	}

	changed := item.SnapshotPrice != variant.SellingPrice ||
		item.SnapshotMRP != variant.MRP ||
		item.SnapshotStock != variant.StockQuantity ||
		item.ProductName != product.Name
	item.RefreshSnapshot(&product, variant)
	if !changed {
		return nil
	}
	return h.db.Save(item).Error
}

func (h *WishlistHandler) currentCustomer(c *fiber.Ctx) (*models.Customer, error) {
	accountID, ok := middleware.GetCurrentAccountID(c)
	if !ok {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}
	return customerForAccount(h.db, accountID)
}
