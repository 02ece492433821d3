package internal

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"pagepulse/internal/http"
)

// publicCORSConfig is shared by all public endpoints. Collect and
// counts are meant to be called from arbitrary third-party pages.
var publicCORSConfig = cors.Config{
	AllowOrigins: "*",
	AllowMethods: "POST,GET,OPTIONS",
	AllowHeaders: "Origin, Content-Type, Accept, Authorization, Referrer, User-Agent",
}

// NewServer builds the fiber app with all routes mounted.
func NewServer(a *Application) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               a.Config.AppName,
		DisableStartupMessage: true,
	})

	app.Use(securityHeaders)

	// Rate limiting only in production; in development and test it
	// would interfere with local traffic and handler tests.
	conditionalRateLimiter := func(h fiber.Handler) fiber.Handler {
		return func(c *fiber.Ctx) error {
			if a.Config.IsProduction() {
				return h(c)
			}
			return c.Next()
		}
	}

	// 70/min per IP absorbs legitimate tracker traffic while capping abuse.
	publicRateLimiter := conditionalRateLimiter(limiter.New(limiter.Config{
		Max:        70,
		Expiration: time.Minute,
	}))

	h := http.NewHandler(a.DBManager.GetConnection(), a.Logger, a.Config)

	public := app.Group("/api", cors.New(publicCORSConfig), publicRateLimiter)
	public.Get("/event", h.CollectGet)
	public.Post("/event", h.CollectPost)
	public.Get("/info", h.Counts)
	public.Get("/stats", h.Stats)

	// Registered directly, not as a "/" group: a root-prefix group would
	// attach the public middleware to every later route as well.
	trackerCORS := cors.New(publicCORSConfig)
	app.Get("/tracker.js", trackerCORS, publicRateLimiter, h.Tracker)
	app.Get("/main.js", trackerCORS, publicRateLimiter, h.Tracker)

	app.Get("/setup", h.Setup)
	app.Get("/_health", h.Health)

	return app
}

// securityHeaders applies the baseline response headers to every route.
func securityHeaders(c *fiber.Ctx) error {
	c.Set("X-Content-Type-Options", "nosniff")
	c.Set("X-Frame-Options", "DENY")
	c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
	return c.Next()
}
