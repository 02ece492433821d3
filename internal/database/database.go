// Package database manages the SQLite connection for the application.
package database

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"pagepulse/internal/config"
)

// Manager owns the gorm connection and its lifecycle.
type Manager struct {
	cfg    *config.Config
	logger *slog.Logger
	db     *gorm.DB
}

// NewManager creates a database manager for the given configuration.
func NewManager(cfg *config.Config, logger *slog.Logger) *Manager {
	return &Manager{cfg: cfg, logger: logger}
}

// Connect opens the SQLite database, applies pragmas and sizes the
// connection pool. Safe to call once at startup.
func (m *Manager) Connect() (*gorm.DB, error) {
	if m.db != nil {
		return m.db, nil
	}

	if dir := filepath.Dir(m.cfg.DatabaseName); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create storage directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(m.cfg.DatabaseName), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", m.cfg.DatabaseName, err)
	}

	// WAL keeps readers unblocked during ingestion writes; the busy
	// timeout covers the remaining writer/writer contention.
	db.Exec("PRAGMA journal_mode = WAL")
	db.Exec("PRAGMA busy_timeout = 5000")
	db.Exec("PRAGMA foreign_keys = ON")

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(m.cfg.GetMaxOpenConns())
	sqlDB.SetMaxIdleConns(m.cfg.GetMaxIdleConns())
	sqlDB.SetConnMaxLifetime(time.Hour)

	m.logger.Info("Database connected",
		slog.String("path", m.cfg.DatabaseName),
		slog.Int("max_open_conns", m.cfg.GetMaxOpenConns()))

	m.db = db
	return db, nil
}

// GetConnection returns the active connection, or nil before Connect.
func (m *Manager) GetConnection() *gorm.DB {
	return m.db
}

// Close releases the underlying connection pool.
func (m *Manager) Close() error {
	if m.db == nil {
		return nil
	}
	sqlDB, err := m.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
