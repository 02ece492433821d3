// Package internal contains core application functionality
package internal

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"pagepulse/internal/config"
	"pagepulse/internal/database"
	"pagepulse/internal/logger"
	"pagepulse/internal/pkg/geoip"
	"pagepulse/internal/visits"
)

// Application wires config, logging, storage and the HTTP server.
type Application struct {
	Config    *config.Config
	Logger    *slog.Logger
	DBManager *database.Manager
	Fiber     *fiber.App
}

// NewApp creates an application instance from the environment config.
func NewApp() (*Application, error) {
	return NewAppWithConfig(config.GetConfig())
}

// NewAppWithConfig creates an application with the provided config.
func NewAppWithConfig(cfg *config.Config) (*Application, error) {
	log := logger.New(cfg)

	dbManager := database.NewManager(cfg, log)
	db, err := dbManager.Connect()
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	if err := visits.Initialize(db, log); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	geoip.Init(cfg.GeoDBPath, log)

	app := &Application{
		Config:    cfg,
		Logger:    log,
		DBManager: dbManager,
	}
	app.Fiber = NewServer(app)
	return app, nil
}

// StartAsync begins serving in a background goroutine. Listen errors
// after a successful bind are logged, not returned.
func (a *Application) StartAsync() {
	go func() {
		addr := ":" + a.Config.AppPort
		a.Logger.Info("Starting server", slog.String("addr", addr))
		if err := a.Fiber.Listen(addr); err != nil {
			a.Logger.Error("Server stopped", slog.Any("error", err))
		}
	}()
}

// Shutdown drains in-flight requests and closes the database.
func (a *Application) Shutdown(ctx context.Context) error {
	if err := a.Fiber.ShutdownWithContext(ctx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	geoip.Close()
	if err := a.DBManager.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}
