package http

import (
	"log/slog"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/pariz/gountries"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"pagepulse/internal/stats"
	"pagepulse/internal/timerange"
	"pagepulse/internal/visits"
)

// Stats serves the aggregated dashboard payload. When an API key is
// configured the endpoint requires it; otherwise the dashboard is
// public.
func (h *Handler) Stats(c *fiber.Ctx) error {
	if !validateAPIKey(c, h.cfg.APIKey, false) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	params := stats.Params{
		Range:    timerange.Parse(c.Query("range")),
		Domain:   c.Query("domain"),
		TzOffset: h.cfg.DefaultTzOffset,
	}
	if tz := c.Query("tz"); tz != "" {
		if offset, err := strconv.Atoi(tz); err == nil {
			params.TzOffset = offset
		}
	}

	result, err := stats.GetDashboardStats(h.db, h.logger, params)
	if err != nil {
		h.logger.Error("Failed to compute dashboard stats", slog.Any("error", err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to compute stats"})
	}

	result.TopCountries = convertCountryStats(result.TopCountries)
	return c.JSON(result)
}

// convertCountryStats maps stored ISO alpha-2 codes to display names.
// Codes the country database does not know are passed through
// uppercased.
func convertCountryStats(items []stats.KeyCount) []stats.KeyCount {
	if len(items) == 0 {
		return []stats.KeyCount{}
	}

	caser := cases.Upper(language.AmericanEnglish)
	countries := gountries.New()

	result := make([]stats.KeyCount, len(items))
	for i, item := range items {
		if item.Key == visits.UnknownCountry {
			result[i] = stats.KeyCount{Key: "Unknown", Count: item.Count}
			continue
		}
		country, err := countries.FindCountryByAlpha(item.Key)
		if err != nil {
			result[i] = stats.KeyCount{Key: caser.String(item.Key), Count: item.Count}
			continue
		}
		result[i] = stats.KeyCount{Key: country.Name.Common, Count: item.Count}
	}
	return result
}
