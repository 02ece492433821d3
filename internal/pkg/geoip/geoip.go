// Package geoip resolves client IPs to ISO country codes using an
// optional GeoLite2 database. When no database is configured the
// lookups degrade to the unknown-country sentinel.
package geoip

import (
	"log/slog"
	"net"
	"os"
	"sync"

	"github.com/oschwald/geoip2-golang"
)

var (
	mu     sync.RWMutex
	reader *geoip2.Reader
	logger *slog.Logger
)

// Init opens the GeoLite2 database at path. A missing or empty path is
// not an error; GeoIP simply stays disabled.
func Init(path string, l *slog.Logger) {
	mu.Lock()
	defer mu.Unlock()
	logger = l

	if path == "" {
		logger.Debug("GeoIP database path not configured, lookups disabled")
		return
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		logger.Info("GeoLite2 database not found, lookups disabled",
			slog.String("path", path),
			slog.String("hint", "Download from https://www.maxmind.com/en/geolite2/signup"))
		return
	}

	db, err := geoip2.Open(path)
	if err != nil {
		logger.Error("Failed to open GeoLite2 database",
			slog.String("path", path), slog.Any("error", err))
		return
	}

	reader = db
	logger.Info("GeoLite2 database loaded", slog.String("path", path))
}

// CountryCode returns the ISO alpha-2 country for ip, or empty when the
// database is unavailable or the IP cannot be resolved.
func CountryCode(ip string) string {
	mu.RLock()
	db := reader
	mu.RUnlock()
	if db == nil {
		return ""
	}

	parsed := net.ParseIP(ip)
	if parsed == nil {
		return ""
	}

	record, err := db.Country(parsed)
	if err != nil || record == nil {
		return ""
	}
	return record.Country.IsoCode
}

// Close releases the reader; used on shutdown and in tests.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	if reader != nil {
		reader.Close()
		reader = nil
	}
}
