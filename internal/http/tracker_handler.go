package http

import (
	"bytes"
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"log/slog"
	"text/template"

	"github.com/gofiber/fiber/v2"
)

//go:embed tracker.js
var trackerTemplate string

// Tracker renders the embedded tracking snippet with this server's
// base URL injected, and serves it with a strong ETag so repeat page
// loads hit the browser cache.
func (h *Handler) Tracker(c *fiber.Ctx) error {
	tmpl, err := template.New("tracker.js").Parse(trackerTemplate)
	if err != nil {
		h.logger.Error("Failed to parse tracker template", slog.Any("error", err))
		return c.Status(fiber.StatusInternalServerError).SendString("Internal Server Error")
	}

	var buf bytes.Buffer
	data := map[string]string{
		"BaseURL": c.BaseURL(),
	}
	if err := tmpl.Execute(&buf, data); err != nil {
		h.logger.Error("Failed to render tracker template", slog.Any("error", err))
		return c.Status(fiber.StatusInternalServerError).SendString("Internal Server Error")
	}

	content := buf.Bytes()
	etag := generateETag(content)

	if c.Get("If-None-Match") == etag {
		return c.Status(fiber.StatusNotModified).Send(nil)
	}

	c.Set("Content-Type", "application/javascript")
	c.Set("Cache-Control", "public, max-age=1800")
	c.Set("ETag", etag)
	c.Set("Cross-Origin-Resource-Policy", "cross-origin")
	return c.Send(content)
}

// generateETag creates a strong ETag from content using SHA-256.
func generateETag(content []byte) string {
	hash := sha256.Sum256(content)
	return `"` + hex.EncodeToString(hash[:]) + `"`
}
