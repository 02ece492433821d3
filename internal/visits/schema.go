package visits

import (
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const createVisitsTable = `
CREATE TABLE IF NOT EXISTS visits (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	url TEXT,
	referrer TEXT,
	user_agent TEXT,
	ip TEXT,
	country TEXT,
	domain TEXT,
	session_id TEXT,
	timestamp DATETIME DEFAULT CURRENT_TIMESTAMP
)`

// visitIndexes have no interdependency and are created concurrently.
var visitIndexes = []string{
	"CREATE INDEX IF NOT EXISTS idx_visits_timestamp ON visits(timestamp)",
	"CREATE INDEX IF NOT EXISTS idx_visits_url ON visits(url)",
	"CREATE INDEX IF NOT EXISTS idx_visits_domain ON visits(domain)",
	"CREATE INDEX IF NOT EXISTS idx_visits_session_id ON visits(session_id)",
	"CREATE INDEX IF NOT EXISTS idx_visits_referrer ON visits(referrer)",
	"CREATE INDEX IF NOT EXISTS idx_visits_country ON visits(country)",
	"CREATE INDEX IF NOT EXISTS idx_visits_user_agent ON visits(user_agent)",
	"CREATE INDEX IF NOT EXISTS idx_visits_domain_timestamp ON visits(domain, timestamp)",
}

// Initialize ensures the visits table, its additive migrations and its
// indexes exist. Idempotent; safe to call repeatedly and concurrently
// with ingestion.
func Initialize(db *gorm.DB, logger *slog.Logger) error {
	if err := db.Exec(createVisitsTable).Error; err != nil {
		return fmt.Errorf("failed to create visits table: %w", err)
	}

	// The domain column arrived after the first release. The schema
	// catalog is consulted instead of swallowing duplicate-column
	// errors, so a real ALTER failure still surfaces.
	if !db.Migrator().HasColumn(&Visit{}, "Domain") {
		logger.Info("Adding domain column to visits table")
		if err := db.Migrator().AddColumn(&Visit{}, "Domain"); err != nil {
			return fmt.Errorf("failed to add domain column: %w", err)
		}
	}

	var g errgroup.Group
	for _, stmt := range visitIndexes {
		g.Go(func() error {
			return db.Exec(stmt).Error
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("failed to create visits indexes: %w", err)
	}

	return nil
}
