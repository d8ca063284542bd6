package handlers

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/example/veloria/internal/middleware"
	"github.com/example/veloria/internal/models"
	"github.com/example/veloria/internal/utils"
)

// OrderHandler manages order placement and history.
type OrderHandler struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(db *gorm.DB, log *zap.Logger) *OrderHandler {
	return &OrderHandler{db: db, log: log}
}

type createOrderRequest struct {
	Currency string `json:"currency"`
	Notes    string `json:"notes"`
}

// CreateOrder places an order from the customer's current cart and clears
// the cart. The order's placed_at is what marks the cart converted for the
// abandoned-cart sweep.
func (h *OrderHandler) CreateOrder(c *fiber.Ctx) error {
	customer, err := h.currentCustomer(c)
	if err != nil {
		return err
	}

	var req createOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	var items []models.CartItem
	if err := h.db.Where("customer_id = ?", customer.ID).
		Order("created_at desc").Find(&items).Error; err != nil {
		return err
	}
	if len(items) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "cart is empty")
	}

	totals := models.TotalCart(items)

	order := models.Order{
		CustomerID:  customer.ID,
		OrderNumber: generateOrderNumber(),
		Status:      "pending",
		PlacedAt:    time.Now(),
		Subtotal:    totals.Value,
		TotalAmount: totals.Value,
		Currency:    req.Currency,
		Notes:       req.Notes,
	}
	if order.Currency == "" {
		order.Currency = "INR"
	}

	for _, item := range items {
		order.Items = append(order.Items, models.OrderItem{
			ProductID:       item.ProductID,
			VariantPosition: item.VariantPosition,
			ProductName:     item.ProductName,
			VariantLabel:    item.VariantLabel,
			Quantity:        item.Quantity,
			UnitPrice:       item.SellingPrice,
			LineTotal:       float64(item.Quantity) * item.SellingPrice,
		})
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&order).Error; err != nil {
			return err
		}
		return tx.Where("customer_id = ?", customer.ID).Delete(&models.CartItem{}).Error
	})
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"id":           order.ID,
			"order_number": order.OrderNumber,
			"status":       order.Status,
			"placed_at":    order.PlacedAt,
			"total":        order.TotalAmount,
			"currency":     order.Currency,
		},
	})
}

// ListOrders returns the customer's orders, newest first.
func (h *OrderHandler) ListOrders(c *fiber.Ctx) error {
	customer, err := h.currentCustomer(c)
	if err != nil {
		return err
	}

	pg := utils.ParsePagination(c)

	var orders []models.Order
	if err := h.db.Preload("Items").
		Where("customer_id = ?", customer.ID).
		Order("placed_at desc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&orders).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": orders})
}

// GetOrder returns a single order owned by the customer.
func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	customer, err := h.currentCustomer(c)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var order models.Order
	if err := h.db.Preload("Items").
		First(&order, "id = ? AND customer_id = ?", id, customer.ID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "order not found")
		}
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": order})
}

func (h *OrderHandler) currentCustomer(c *fiber.Ctx) (*models.Customer, error) {
	accountID, ok := middleware.GetCurrentAccountID(c)
	if !ok {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}
	return customerForAccount(h.db, accountID)
}

func generateOrderNumber() string {
	return fmt.Sprintf("#%d", time.Now().UnixNano()%1000000000)
}
