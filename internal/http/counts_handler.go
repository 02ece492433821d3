package http

import (
	"log/slog"
	"net/url"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"pagepulse/internal/stats"
	"pagepulse/internal/visits"
)

// Counts serves the public page/site counters used by badge widgets.
// It is always unauthenticated.
func (h *Handler) Counts(c *fiber.Ctx) error {
	raw := firstQuery(c, "u", "url")
	if !isValidURL(raw) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid url"})
	}

	cleanURL := sanitizeURL(raw)
	parsed, err := url.Parse(cleanURL)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid url"})
	}
	domain := parsed.Hostname()
	if domain == "" {
		domain = visits.UnknownDomain
	}

	params := stats.CounterParams{
		Domain:   domain,
		URL:      cleanURL,
		TzOffset: h.cfg.DefaultTzOffset,
	}
	if tz := c.Query("tz"); tz != "" {
		if offset, err := strconv.Atoi(tz); err == nil {
			params.TzOffset = offset
		}
	}

	counts, err := stats.GetPublicCounts(h.db, params)
	if err != nil {
		h.logger.Error("Failed to compute public counts", slog.Any("error", err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to compute counts"})
	}
	return c.JSON(counts)
}
