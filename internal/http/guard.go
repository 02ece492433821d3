package http

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// sensitiveParams are stripped from tracked URLs before storage.
var sensitiveParams = []string{
	"token", "key", "password", "secret", "access_token", "auth", "authorization", "session_id",
}

const maxURLLength = 2048

var sessionIDCleaner = regexp.MustCompile(`[^a-zA-Z0-9-]`)

// validateAPIKey gates protected routes. With no key configured,
// required routes fail closed and optional routes pass (public mode).
// With a key configured, it must match the key query param or Bearer
// token.
func validateAPIKey(c *fiber.Ctx, configuredKey string, required bool) bool {
	if configuredKey == "" {
		return !required
	}

	key := c.Query("key")
	if key == "" {
		key = strings.TrimPrefix(c.Get("Authorization"), "Bearer ")
	}
	return key == configuredKey
}

// checkOrigin reports whether origin is covered by the allowed list.
// Entries of the form "*.example.com" match the domain and any
// subdomain.
func checkOrigin(origin string, allowed []string) bool {
	for _, entry := range allowed {
		if entry == "*" || entry == origin {
			return true
		}
		if strings.HasPrefix(entry, "*.") {
			domain := entry[2:]
			u, err := url.Parse(origin)
			if err != nil {
				continue
			}
			host := u.Hostname()
			if host == domain || strings.HasSuffix(host, "."+domain) {
				return true
			}
		}
	}
	return false
}

// isValidURL requires an absolute URL with a hostname.
func isValidURL(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && u.Scheme != "" && u.Hostname() != ""
}

// sanitizeURL strips sensitive query parameters and caps the length to
// the common browser limit. Unparseable input is returned truncated.
func sanitizeURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return truncate(raw, maxURLLength)
	}

	q := u.Query()
	for _, param := range sensitiveParams {
		q.Del(param)
	}
	u.RawQuery = q.Encode()

	return truncate(u.String(), maxURLLength)
}

// sanitizeSessionID reduces a client-sent session id to its
// alphanumeric/hyphen form, capped at 64 characters. An empty result
// gets a fresh random id; the value is a grouping key, not an identity.
func sanitizeSessionID(raw string) string {
	cleaned := truncate(sessionIDCleaner.ReplaceAllString(raw, ""), 64)
	if cleaned == "" {
		return uuid.NewString()
	}
	return cleaned
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
