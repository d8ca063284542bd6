package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/example/veloria/internal/middleware"
	"github.com/example/veloria/internal/models"
)

// CartHandler manages the authenticated customer's cart.
type CartHandler struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewCartHandler constructs CartHandler.
func NewCartHandler(db *gorm.DB, log *zap.Logger) *CartHandler {
	return &CartHandler{db: db, log: log}
}

// ListCart returns the cart items, newest first, with aggregate totals.
func (h *CartHandler) ListCart(c *fiber.Ctx) error {
	customer, err := h.currentCustomer(c)
	if err != nil {
		return err
	}

	var items []models.CartItem
	if err := h.db.Where("customer_id = ?", customer.ID).
		Order("created_at desc").Find(&items).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    items,
		"totals":  models.TotalCart(items),
	})
}

type addCartItemRequest struct {
	ProductID       string `json:"product_id"`
	VariantPosition int    `json:"variant_position"`
	Quantity        int    `json:"quantity"`
}

// AddCartItem adds a variant to the cart, snapshotting its prices. Adding
// an already-carted variant increments its quantity instead.
func (h *CartHandler) AddCartItem(c *fiber.Ctx) error {
	customer, err := h.currentCustomer(c)
	if err != nil {
		return err
	}

	var req addCartItemRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.ProductID == "" {
		return fiber.NewError(fiber.StatusBadRequest, "product_id is required")
	}
	if req.Quantity <= 0 {
		req.Quantity = 1
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid product_id")
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

	var existing models.CartItem
	err = h.db.Where("customer_id = ? AND product_id = ? AND variant_position = ?",
		customer.ID, productID, req.VariantPosition).First(&existing).Error
	if err == nil {
		existing.Quantity += req.Quantity
		if err := h.db.Save(&existing).Error; err != nil {
			return err
		}
		return c.JSON(fiber.Map{"success": true, "data": existing})
	}
	if err != gorm.ErrRecordNotFound {
		return err
	}

	item := models.CartItem{
		CustomerID:      customer.ID,
		ProductID:       productID,
		VariantPosition: req.VariantPosition,
		ProductName:     product.Name,
		VariantLabel:    variant.Label,
		Quantity:        req.Quantity,
		SellingPrice:    variant.SellingPrice,
		MRP:             variant.MRP,
	}
	if err := h.db.Create(&item).Error; err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": item})
}

type updateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

// UpdateCartItem changes an item's quantity; zero removes it.
func (h *CartHandler) UpdateCartItem(c *fiber.Ctx) error {
	customer, err := h.currentCustomer(c)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var req updateCartItemRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.Quantity < 0 {
		return fiber.NewError(fiber.StatusBadRequest, "quantity must not be negative")
	}

	var item models.CartItem
	if err := h.db.First(&item, "id = ? AND customer_id = ?", id, customer.ID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "cart item not found")
		}
		return err
	}

	if req.Quantity == 0 {
		if err := h.db.Delete(&item).Error; err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	}

	item.Quantity = req.Quantity
	if err := h.db.Save(&item).Error; err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": item})
}

// RemoveCartItem deletes one item from the cart.
func (h *CartHandler) RemoveCartItem(c *fiber.Ctx) error {
	customer, err := h.currentCustomer(c)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	if err := h.db.Delete(&models.CartItem{}, "id = ? AND customer_id = ?", id, customer.ID).Error; err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ClearCart empties the customer's cart.
func (h *CartHandler) ClearCart(c *fiber.Ctx) error {
	customer, err := h.currentCustomer(c)
	if err != nil {
		return err
	}

	if err := h.db.Where("customer_id = ?", customer.ID).Delete(&models.CartItem{}).Error; err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *CartHandler) currentCustomer(c *fiber.Ctx) (*models.Customer, error) {
	accountID, ok := middleware.GetCurrentAccountID(c)
	if !ok {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}
	return customerForAccount(h.db, accountID)
}
