package main

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"github.com/example/veloria/internal/alerts"
	"github.com/example/veloria/internal/config"
	"github.com/example/veloria/internal/database"
	"github.com/example/veloria/internal/logging"
	"github.com/example/veloria/internal/mailer"
	"github.com/example/veloria/internal/routes"
	"github.com/example/veloria/internal/services"
)

func main() {
	log := logging.Init()
	defer log.Sync()

	cfg := config.Load()
	db := database.Connect(cfg.DatabaseURL)

	sessions, err := services.NewSessionService(cfg.RedisURL, log)
	if err != nil {
		// Sessions are best-effort: login still works, tokens just are not tracked.
		log.Warn("session store unavailable", zap.Error(err))
	} else if err := sessions.Ping(context.Background()); err != nil {
		log.Warn("session store ping failed", zap.Error(err))
	}

	mail := mailer.FromConfig(cfg, log)
	push := services.NewPushService(cfg.FCMServerKey, db, log)
	telegram := services.NewTelegramService(cfg.TelegramBotToken, cfg.TelegramAdminChat, log)
	verifier := services.NewFirebaseVerifier(cfg.FirebaseAPIKey)

	scheduler := alerts.NewScheduler(db, push, log)
	go scheduler.Run(context.Background(), cfg.CartSweepInterval, cfg.PriceDropSweepInterval)

	app := fiber.New(fiber.Config{
		AppName:      "Veloria Backend",
		ErrorHandler: errorHandler(log),
	})

	app.Use(recover.New())
	app.Use(logger.New())

	routes.Register(app, db, cfg, routes.Deps{
		Mail:      mail,
		Push:      push,
		Telegram:  telegram,
		Sessions:  sessions,
		Verifier:  verifier,
		Scheduler: scheduler,
		Log:       log,
	})

	log.Info("starting server", zap.String("port", cfg.AppPort))
	if err := app.Listen(":" + cfg.AppPort); err != nil {
		log.Fatal("fiber.Listen error", zap.Error(err))
	}
}

// errorHandler keeps the response shape consistent and hides internal
// error details behind a generic message.
func errorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(fiber.Map{
				"success": false,
				"error":   fe.Message,
			})
		}
		log.Error("unhandled error",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "internal server error",
		})
	}
}
