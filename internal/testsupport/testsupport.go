// Package testsupport provides shared helpers for package tests.
package testsupport

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"pagepulse/internal/visits"
)

// testDBCache caches test databases by test name to allow multiple calls
// within the same test to share the same database
var (
	testDBCache   = make(map[string]*gorm.DB)
	testDBCacheMu sync.Mutex
)

// SetupTestDB returns an isolated database for the calling test.
// Uses a named in-memory database with cache=shared to allow multiple
// connections to share the same database within a test. Caches the
// database by root test name so subtests share their parent's database.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	rootName := t.Name()
	if idx := strings.Index(rootName, "/"); idx > 0 {
		rootName = rootName[:idx]
	}

	testDBCacheMu.Lock()
	if db, exists := testDBCache[rootName]; exists {
		testDBCacheMu.Unlock()
		return db
	}
	testDBCacheMu.Unlock()

	dsn := fmt.Sprintf("file:test_%s_%d?mode=memory&cache=shared", rootName, time.Now().UnixNano())

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("testsupport: failed to open test database: %v", err)
	}

	// A single connection keeps the shared in-memory database alive and
	// serializes writes.
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(1)
	}

	db.Exec("PRAGMA foreign_keys = ON")

	if err := visits.Initialize(db, GetLogger()); err != nil {
		t.Fatalf("testsupport: failed to initialize schema: %v", err)
	}

	testDBCacheMu.Lock()
	testDBCache[rootName] = db
	testDBCacheMu.Unlock()

	t.Cleanup(func() {
		testDBCacheMu.Lock()
		delete(testDBCache, rootName)
		testDBCacheMu.Unlock()
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	return db
}

// GetLogger returns a logger that discards output.
func GetLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// RecordVisitAt inserts a visit and backdates its timestamp, which the
// insert path otherwise defaults to the current time.
func RecordVisitAt(t *testing.T, db *gorm.DB, v *visits.Visit, at time.Time) {
	t.Helper()

	if err := visits.RecordVisit(db, GetLogger(), v); err != nil {
		t.Fatalf("testsupport: failed to record visit: %v", err)
	}
	err := db.Exec(
		"UPDATE visits SET timestamp = ? WHERE id = (SELECT MAX(id) FROM visits)",
		at.UTC().Format("2006-01-02 15:04:05"),
	).Error
	if err != nil {
		t.Fatalf("testsupport: failed to backdate visit: %v", err)
	}
}
