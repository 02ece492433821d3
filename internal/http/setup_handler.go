package http

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"pagepulse/internal/visits"
)

// Setup runs schema initialization on demand. Recording self-heals a
// missing schema anyway, so this mostly serves first-boot checks and
// upgrades that add columns or indexes.
func (h *Handler) Setup(c *fiber.Ctx) error {
	if !validateAPIKey(c, h.cfg.APIKey, true) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	if err := visits.Initialize(h.db, h.logger); err != nil {
		h.logger.Error("Schema initialization failed", slog.Any("error", err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "initialization failed"})
	}
	return c.JSON(fiber.Map{"status": "ok"})
}

// Health is the liveness probe.
func (h *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok", "app": h.cfg.AppName})
}
