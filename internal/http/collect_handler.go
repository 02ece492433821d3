package http

import (
	"encoding/json"
	"log/slog"
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"

	"pagepulse/internal/pkg/botlist"
	"pagepulse/internal/pkg/geoip"
	"pagepulse/internal/visits"
)

type collectPayload struct {
	URL       string `json:"url"`
	Referrer  string `json:"referrer"`
	SessionID string `json:"sessionId"`
}

// CollectGet accepts beacon-style events as query parameters, with
// short aliases for size-constrained clients.
func (h *Handler) CollectGet(c *fiber.Ctx) error {
	p := collectPayload{
		URL:       firstQuery(c, "u", "url"),
		Referrer:  firstQuery(c, "r", "referrer"),
		SessionID: firstQuery(c, "s", "sessionId"),
	}
	return h.collect(c, p)
}

// CollectPost accepts events as a JSON body. Trackers send text/plain
// to stay within CORS simple-request rules, so the body is decoded
// directly rather than content-type negotiated.
func (h *Handler) CollectPost(c *fiber.Ctx) error {
	if allowed := h.cfg.GetAllowedOrigins(); len(allowed) > 0 {
		if origin := c.Get("Origin"); origin != "" && !checkOrigin(origin, allowed) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "origin not allowed"})
		}
	}

	var p collectPayload
	if err := json.Unmarshal(c.Body(), &p); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid payload"})
	}
	return h.collect(c, p)
}

func (h *Handler) collect(c *fiber.Ctx, p collectPayload) error {
	if !isValidURL(p.URL) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid url"})
	}

	ua := c.Get("User-Agent")
	if botlist.IsBot(ua) {
		return c.JSON(fiber.Map{"status": "ignored"})
	}

	ip := clientIP(c)
	for _, ignored := range h.cfg.GetIgnoredIPs() {
		if ip == ignored {
			return c.JSON(fiber.Map{"status": "ignored"})
		}
	}

	cleanURL := sanitizeURL(p.URL)
	parsed, err := url.Parse(cleanURL)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid url"})
	}

	domain := parsed.Hostname()
	if domain == "" {
		domain = visits.UnknownDomain
	}
	for _, ignored := range h.cfg.GetIgnoredPaths() {
		if ignored != "" && strings.HasPrefix(parsed.Path, ignored) {
			return c.JSON(fiber.Map{"status": "ignored"})
		}
	}

	country := c.Get("CF-IPCountry")
	if country == "" {
		country = geoip.CountryCode(ip)
	}
	if country == "" {
		country = visits.UnknownCountry
	}

	visit := &visits.Visit{
		URL:       cleanURL,
		Referrer:  sanitizeURL(p.Referrer),
		UserAgent: ua,
		IP:        ip,
		Country:   country,
		Domain:    domain,
		SessionID: sanitizeSessionID(p.SessionID),
	}

	if err := visits.RecordVisit(h.db, h.logger, visit); err != nil {
		h.logger.Error("Failed to record visit", slog.Any("error", err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to record visit"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"status": "ok"})
}

func firstQuery(c *fiber.Ctx, names ...string) string {
	for _, name := range names {
		if v := c.Query(name); v != "" {
			return v
		}
	}
	return ""
}
