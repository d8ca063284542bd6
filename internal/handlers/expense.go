package handlers

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/veloria/internal/models"
	"github.com/example/veloria/internal/utils"
)

// ExpenseHandler manages expense records, categories and suppliers.
type ExpenseHandler struct {
	db *gorm.DB
}

// NewExpenseHandler constructs ExpenseHandler.
func NewExpenseHandler(db *gorm.DB) *ExpenseHandler {
	return &ExpenseHandler{db: db}
}

type createExpenseRequest struct {
	CategoryID  string  `json:"category_id"`
	SupplierID  string  `json:"supplier_id"`
	Amount      float64 `json:"amount"`
	Currency    string  `json:"currency"`
	Description string  `json:"description"`
	ReceiptURL  string  `json:"receipt_url"`
	IncurredAt  string  `json:"incurred_at"`
}

// CreateExpense records an expense under the next per-year sequence number.
func (h *ExpenseHandler) CreateExpense(c *fiber.Ctx) error {
	var req createExpenseRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	switch {
	case req.CategoryID == "":
		return fiber.NewError(fiber.StatusBadRequest, "category_id is required")
	case req.SupplierID == "":
		return fiber.NewError(fiber.StatusBadRequest, "supplier_id is required")
	case req.Amount <= 0:
		return fiber.NewError(fiber.StatusBadRequest, "amount must be positive")
	}

	categoryID, err := uuid.Parse(req.CategoryID)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid category_id")
	}
	supplierID, err := uuid.Parse(req.SupplierID)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid supplier_id")
	}

	var category models.ExpenseCategory
	if err := h.db.First(&category, "id = ?", categoryID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "expense category not found")
		}
		return err
	}

	var supplier models.Supplier
	if err := h.db.First(&supplier, "id = ?", supplierID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "supplier not found")
		}
		return err
	}

	incurredAt := time.Now()
	if req.IncurredAt != "" {
		if parsed, err := time.Parse(time.RFC3339, req.IncurredAt); err == nil {
			incurredAt = parsed
		}
	}

	expense := models.Expense{
		CategoryID:  categoryID,
		SupplierID:  supplierID,
		Amount:      req.Amount,
		Currency:    req.Currency,
		Description: req.Description,
		ReceiptURL:  req.ReceiptURL,
		IncurredAt:  incurredAt,
	}
	if expense.Currency == "" {
		expense.Currency = "INR"
	}

	// Derive the number inside the transaction so concurrent creates in
	// the same year cannot both read the same latest value.
	err = h.db.Transaction(func(tx *gorm.DB) error {
		year := time.Now().Year()

		var latest models.Expense
		var latestNumber string
		// Length-first ordering: the sequence grows past the pad width,
		// and "EXP-2026-1000" sorts below "EXP-2026-999" as a plain string.
		err := tx.Where("expense_number LIKE ?", utils.ExpenseNumberPrefix(year)+"%").
			Order("length(expense_number) desc, expense_number desc").First(&latest).Error
		if err == nil {
			latestNumber = latest.ExpenseNumber
		} else if err != gorm.ErrRecordNotFound {
			return err
		}

		expense.ExpenseNumber = utils.NextExpenseNumber(latestNumber, year)
		return tx.Create(&expense).Error
	})
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": expense})
}

// ListExpenses returns paginated expenses, optionally filtered by year and
// category.
func (h *ExpenseHandler) ListExpenses(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)
	query := h.db.Model(&models.Expense{})

	if v := c.Query("year"); v != "" {
		if year, err := strconv.Atoi(v); err == nil {
			query = query.Where("expense_number LIKE ?", utils.ExpenseNumberPrefix(year)+"%")
		}
	}
	if v := c.Query("category_id"); v != "" {
		if id, err := uuid.Parse(v); err == nil {
			query = query.Where("category_id = ?", id)
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var expenses []models.Expense
	if err := query.Preload("Category").Preload("Supplier").
		Limit(pg.Limit).Offset(pg.Offset).
		Order("expense_number desc").Find(&expenses).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": expenses, "pagination": fiber.Map{
		"current_page":   pg.Page,
		"items_per_page": pg.Limit,
		"total_items":    total,
	}})
}

// Expense categories

func (h *ExpenseHandler) ListCategories(c *fiber.Ctx) error {
	var items []models.ExpenseCategory
	if err := h.db.Order("name asc").Find(&items).Error; err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": items})
}

func (h *ExpenseHandler) CreateCategory(c *fiber.Ctx) error {
	var item models.ExpenseCategory
	if err := c.BodyParser(&item); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if item.Name == "" {
		return fiber.NewError(fiber.StatusBadRequest, "name is required")
	}
	if err := h.db.Create(&item).Error; err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": item})
}

func (h *ExpenseHandler) DeleteCategory(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}
	if err := h.db.Delete(&models.ExpenseCategory{}, "id = ?", id).Error; err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Suppliers

func (h *ExpenseHandler) ListSuppliers(c *fiber.Ctx) error {
	var items []models.Supplier
	if err := h.db.Order("name asc").Find(&items).Error; err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": items})
}

func (h *ExpenseHandler) CreateSupplier(c *fiber.Ctx) error {
	var item models.Supplier
	if err := c.BodyParser(&item); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if item.Name == "" {
		return fiber.NewError(fiber.StatusBadRequest, "name is required")
	}
	item.IsActive = true
	if err := h.db.Create(&item).Error; err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": item})
}

func (h *ExpenseHandler) UpdateSupplier(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}
	var item models.Supplier
	if err := h.db.First(&item, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "supplier not found")
		}
		return err
	}
	if err := c.BodyParser(&item); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	item.ID = id
	if err := h.db.Save(&item).Error; err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": item})
}

func (h *ExpenseHandler) DeleteSupplier(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}
	if err := h.db.Delete(&models.Supplier{}, "id = ?", id).Error; err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
