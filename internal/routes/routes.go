package routes

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/example/veloria/internal/alerts"
	"github.com/example/veloria/internal/config"
	"github.com/example/veloria/internal/handlers"
	"github.com/example/veloria/internal/mailer"
	"github.com/example/veloria/internal/middleware"
	"github.com/example/veloria/internal/services"
)

// Deps carries the shared collaborators handlers are wired with.
type Deps struct {
	Mail      mailer.Service
	Push      *services.PushService
	Telegram  *services.TelegramService
	Sessions  *services.SessionService
	Verifier  services.PhoneVerifier
	Scheduler *alerts.Scheduler
	Log       *zap.Logger
}

// Register wires up all HTTP routes.
func Register(app *fiber.App, db *gorm.DB, cfg *config.Config, deps Deps) {
	authHandler := handlers.NewAuthHandler(db, cfg, deps.Mail, deps.Push, deps.Telegram, deps.Sessions, deps.Log)
	phoneAuthHandler := handlers.NewPhoneAuthHandler(db, cfg, deps.Verifier, deps.Telegram, deps.Sessions, deps.Log)
	catalogHandler := handlers.NewCatalogHandler(db)
	productHandler := handlers.NewProductHandler(db, deps.Scheduler, deps.Log)
	cartHandler := handlers.NewCartHandler(db, deps.Log)
	wishlistHandler := handlers.NewWishlistHandler(db, deps.Log)
	orderHandler := handlers.NewOrderHandler(db, deps.Log)
	expenseHandler := handlers.NewExpenseHandler(db)
	alertsHandler := handlers.NewAlertsHandler(deps.Scheduler)

	api := app.Group("/api")

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/verify", authHandler.Verify)
	auth.Post("/resend", authHandler.Resend)
	auth.Post("/login", authHandler.Login)
	auth.Post("/phone/register", phoneAuthHandler.Register)
	auth.Post("/phone/login", phoneAuthHandler.Login)

	// Public catalog
	categories := api.Group("/categories")
	categories.Get("/", catalogHandler.ListCategories)
	categories.Get("/:id", catalogHandler.GetCategory)

	// Authenticated storefront
	protected := api.Group("", middleware.AuthMiddleware(cfg))

	cart := protected.Group("/cart")
	cart.Get("/", cartHandler.ListCart)
	cart.Post("/", cartHandler.AddCartItem)
	cart.Put("/:id", cartHandler.UpdateCartItem)
	cart.Delete("/:id", cartHandler.RemoveCartItem)
	cart.Delete("/", cartHandler.ClearCart)

	wishlist := protected.Group("/wishlist")
	wishlist.Get("/", wishlistHandler.ListWishlist)
	wishlist.Post("/", wishlistHandler.AddWishlistItem)
	wishlist.Delete("/:id", wishlistHandler.RemoveWishlistItem)

	protected.Post("/orders", orderHandler.CreateOrder)
	protected.Get("/orders", orderHandler.ListOrders)
	protected.Get("/orders/:id", orderHandler.GetOrder)

	// Admin surface
	admin := protected.Group("", middleware.AdminOnly(db))

	adminCategories := admin.Group("/categories")
	adminCategories.Post("/", catalogHandler.CreateCategory)
	adminCategories.Put("/:id", catalogHandler.UpdateCategory)
	adminCategories.Delete("/:id", catalogHandler.DeleteCategory)

	products := api.Group("/products")
	adminProducts := admin.Group("/products")
	productHandler.RegisterProductRoutes(products, adminProducts)

	expenses := admin.Group("/expenses")
	expenses.Get("/", expenseHandler.ListExpenses)
	expenses.Post("/", expenseHandler.CreateExpense)
	expenses.Get("/categories", expenseHandler.ListCategories)
	expenses.Post("/categories", expenseHandler.CreateCategory)
	expenses.Delete("/categories/:id", expenseHandler.DeleteCategory)

	suppliers := admin.Group("/suppliers")
	suppliers.Get("/", expenseHandler.ListSuppliers)
	suppliers.Post("/", expenseHandler.CreateSupplier)
	suppliers.Put("/:id", expenseHandler.UpdateSupplier)
	suppliers.Delete("/:id", expenseHandler.DeleteSupplier)

	alertsGroup := admin.Group("/alerts")
	alertsGroup.Post("/sweep/carts", alertsHandler.SweepCarts)
	alertsGroup.Post("/sweep/price-drops", alertsHandler.SweepPriceDrops)
}
