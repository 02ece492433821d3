package visits

import (
	"fmt"
	"log/slog"
	"strings"

	"gorm.io/gorm"
)

const insertVisit = `INSERT INTO visits (url, referrer, user_agent, ip, country, domain, session_id)
VALUES (?, ?, ?, ?, ?, ?, ?)`

// RecordVisit inserts one visit; the timestamp is defaulted by the
// store. When the table is missing (cold start before any /setup call),
// the schema is initialized and the insert retried exactly once. Every
// other failure propagates to the caller.
func RecordVisit(db *gorm.DB, logger *slog.Logger, v *Visit) error {
	err := db.Exec(insertVisit,
		v.URL, v.Referrer, v.UserAgent, v.IP, v.Country, v.Domain, v.SessionID,
	).Error
	if err == nil {
		return nil
	}

	if !isMissingSchemaErr(err) {
		return fmt.Errorf("failed to record visit: %w", err)
	}

	logger.Warn("Visits table missing, initializing schema and retrying insert",
		slog.Any("error", err))
	if initErr := Initialize(db, logger); initErr != nil {
		return fmt.Errorf("failed to initialize schema during recovery: %w", initErr)
	}

	err = db.Exec(insertVisit,
		v.URL, v.Referrer, v.UserAgent, v.IP, v.Country, v.Domain, v.SessionID,
	).Error
	if err != nil {
		return fmt.Errorf("failed to record visit after schema recovery: %w", err)
	}
	return nil
}

// isMissingSchemaErr matches the store error text for an absent table.
func isMissingSchemaErr(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "no such table") || strings.Contains(msg, "SQLITE_ERROR")
}
