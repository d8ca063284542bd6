package handlers

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/example/veloria/internal/alerts"
	"github.com/example/veloria/internal/models"
	"github.com/example/veloria/internal/utils"
)

// ProductHandler manages product CRUD and inventory updates.
type ProductHandler struct {
	db        *gorm.DB
	scheduler *alerts.Scheduler
	log       *zap.Logger
}

// NewProductHandler constructs ProductHandler.
func NewProductHandler(db *gorm.DB, scheduler *alerts.Scheduler, log *zap.Logger) *ProductHandler {
	return &ProductHandler{db: db, scheduler: scheduler, log: log}
}

// ListProducts returns paginated products with optional filters.
func (h *ProductHandler) ListProducts(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)
	query := h.db.Model(&models.Product{})

	if v := c.Query("category_id"); v != "" {
		if id, err := uuid.Parse(v); err == nil {
			query = query.Where("category_id = ?", id)
		}
	}

	if search := strings.TrimSpace(c.Query("search")); search != "" {
		q := "%" + search + "%"
		query = query.Where("name ILIKE ? OR short_description ILIKE ?", q, q)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var products []models.Product
	if err := query.Preload("Variants", func(db *gorm.DB) *gorm.DB {
		return db.Order("position asc")
	}).Limit(pg.Limit).Offset(pg.Offset).
		Order("created_at desc").Find(&products).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": products, "pagination": fiber.Map{
		"current_page":   pg.Page,
		"items_per_page": pg.Limit,
		"total_items":    total,
	}})
}

// GetProduct returns one product by id or slug.
func (h *ProductHandler) GetProduct(c *fiber.Ctx) error {
	param := c.Params("id")

	query := h.db.Preload("Variants", func(db *gorm.DB) *gorm.DB {
		return db.Order("position asc")
	}).Preload("Category")

	var product models.Product
	var err error
	if id, parseErr := uuid.Parse(param); parseErr == nil {
		err = query.First(&product, "id = ?", id).Error
	} else {
		err = query.First(&product, "slug = ?", param).Error
	}
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "product not found")
		}
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": product})
}

type variantRequest struct {
	SKU           string  `json:"sku"`
	Label         string  `json:"label"`
	SellingPrice  float64 `json:"selling_price"`
	MRP           float64 `json:"mrp"`
	StockQuantity int     `json:"stock_quantity"`
}

type productRequest struct {
	Slug             string           `json:"slug"`
	Name             string           `json:"name"`
	ShortDescription string           `json:"short_description"`
	LongDescription  string           `json:"long_description"`
	Currency         string           `json:"currency"`
	Images           []string         `json:"images"`
	CategoryID       string           `json:"category_id"`
	Variants         []variantRequest `json:"variants"`
}

// CreateProduct adds a product with its variant list.
func (h *ProductHandler) CreateProduct(c *fiber.Ctx) error {
	var req productRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.Name == "" || req.Slug == "" {
		return fiber.NewError(fiber.StatusBadRequest, "name and slug are required")
	}
	if len(req.Variants) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "at least one variant is required")
	}

	product := h.buildProduct(req)
	if err := h.db.Create(&product).Error; err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": product})
}

// UpdateProduct replaces product fields and the variant list.
func (h *ProductHandler) UpdateProduct(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var product models.Product
	if err := h.db.First(&product, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "product not found")
		}
		return err
	}

	var req productRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	updated := h.buildProduct(req)
	updated.ID = id

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", id).Delete(&models.ProductVariant{}).Error; err != nil {
			return err
		}
		return tx.Session(&gorm.Session{FullSaveAssociations: true}).Save(&updated).Error
	})
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": updated})
}

// DeleteProduct removes a product and its variants.
func (h *ProductHandler) DeleteProduct(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", id).Delete(&models.ProductVariant{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Product{}, "id = ?", id).Error
	})
	if err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}

type stockUpdateRequest struct {
	VariantPosition int `json:"variant_position"`
	StockQuantity   int `json:"stock_quantity"`
}

// UpdateStock sets a variant's stock quantity and triggers the wishlist
// back-in-stock check for the product.
func (h *ProductHandler) UpdateStock(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var req stockUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.StockQuantity < 0 {
		return fiber.NewError(fiber.StatusBadRequest, "stock_quantity must not be negative")
	}

	var variant models.ProductVariant
	if err := h.db.First(&variant, "product_id = ? AND position = ?", id, req.VariantPosition).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "variant not found")
		}
		return err
	}

	if err := h.db.Model(&variant).Update("stock_quantity", req.StockQuantity).Error; err != nil {
		return err
	}

	productID, position, quantity := id, req.VariantPosition, req.StockQuantity
	dispatch(h.log, "back in stock check", func() error {
		_, err := h.scheduler.CheckBackInStock(context.Background(), productID, position, quantity)
		return err
	})

	return c.JSON(fiber.Map{"success": true, "data": fiber.Map{
		"product_id":       id,
		"variant_position": req.VariantPosition,
		"stock_quantity":   req.StockQuantity,
	}})
}

func (h *ProductHandler) buildProduct(req productRequest) models.Product {
	product := models.Product{
		Slug:             req.Slug,
		Name:             req.Name,
		ShortDescription: req.ShortDescription,
		LongDescription:  req.LongDescription,
		Currency:         req.Currency,
		Images:           req.Images,
		IsActive:         true,
	}
	if product.Currency == "" {
		product.Currency = "INR"
	}

	if req.CategoryID != "" {
		if categoryID, err := uuid.Parse(req.CategoryID); err == nil {
			product.CategoryID = &categoryID
		}
	}

	for i, v := range req.Variants {
		product.Variants = append(product.Variants, models.ProductVariant{
			Position:      i,
			SKU:           v.SKU,
			Label:         v.Label,
			SellingPrice:  v.SellingPrice,
			MRP:           v.MRP,
			StockQuantity: v.StockQuantity,
			IsActive:      true,
		})
	}

	return product
}

// RegisterProductRoutes attaches product routes.
func (h *ProductHandler) RegisterProductRoutes(router fiber.Router, admin fiber.Router) {
	router.Get("/", h.ListProducts)
	router.Get("/:id", h.GetProduct)
	admin.Post("/", h.CreateProduct)
	admin.Put("/:id", h.UpdateProduct)
	admin.Delete("/:id", h.DeleteProduct)
	admin.Put("/:id/stock", h.UpdateStock)
}
