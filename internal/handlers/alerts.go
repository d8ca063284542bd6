package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/example/veloria/internal/alerts"
)

// AlertsHandler exposes the sweeps to an external cron trigger.
type AlertsHandler struct {
	scheduler *alerts.Scheduler
}

// NewAlertsHandler constructs AlertsHandler.
func NewAlertsHandler(scheduler *alerts.Scheduler) *AlertsHandler {
	return &AlertsHandler{scheduler: scheduler}
}

// SweepCarts runs the abandoned-cart sweep once.
func (h *AlertsHandler) SweepCarts(c *fiber.Ctx) error {
	sent, err := h.scheduler.SweepAbandonedCarts(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "reminders_sent": sent})
}

// SweepPriceDrops runs the wishlist price-drop sweep once.
func (h *AlertsHandler) SweepPriceDrops(c *fiber.Ctx) error {
	sent, err := h.scheduler.SweepPriceDrops(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "alerts_sent": sent})
}
