package internal

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pagepulse/internal/config"
	"pagepulse/internal/database"
	"pagepulse/internal/testsupport"
)

// newRoutedApp mounts the real route table without opening a database;
// only db-free endpoints are exercised here.
func newRoutedApp(t *testing.T) *fiber.App {
	t.Helper()

	cfg := &config.Config{AppName: "pagepulse", Environment: config.Test}
	logger := testsupport.GetLogger()
	a := &Application{
		Config:    cfg,
		Logger:    logger,
		DBManager: database.NewManager(cfg, logger),
	}
	return NewServer(a)
}

func TestPublicMiddlewareScope(t *testing.T) {
	app := newRoutedApp(t)

	// Tracker delivery is cross-origin.
	req := httptest.NewRequest("GET", "/tracker.js", nil)
	req.Header.Set("Origin", "https://example.com")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))

	// Operational endpoints stay outside the public middleware.
	for _, path := range []string{"/_health", "/setup"} {
		req := httptest.NewRequest("GET", path, nil)
		req.Header.Set("Origin", "https://example.com")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"), path)
	}
}

func TestSecurityHeadersOnEveryRoute(t *testing.T) {
	app := newRoutedApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/_health", nil))
	require.NoError(t, err)
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", resp.Header.Get("X-Frame-Options"))
}

func TestMainJSAlias(t *testing.T) {
	app := newRoutedApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/main.js", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/javascript", resp.Header.Get("Content-Type"))
}
