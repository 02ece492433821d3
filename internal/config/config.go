// Package config provides configuration management using Viper
package config

import (
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/viper"
)

// Environment types
const (
	Development = "development"
	Production  = "production"
	Test        = "test"
)

// LogLevel represents the logging level for the application
type LogLevel string

// Available log levels
const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// Config holds all configuration parameters for the application
type Config struct {
	// Application settings
	AppName     string   `mapstructure:"appname"`
	AppPort     string   `mapstructure:"appport"`
	Environment string   `mapstructure:"environment"`
	LogLevel    LogLevel `mapstructure:"loglevel"`

	// API key gating the stats endpoint and /setup. Empty means the
	// stats API is public and /setup always refuses.
	APIKey string `mapstructure:"apikey"`

	// Default timezone offset (hours, signed) applied when a request
	// does not carry its own tz parameter.
	DefaultTzOffset int `mapstructure:"defaulttzoffset"`

	// Ingestion filters, comma-separated
	IgnoreIPs      string `mapstructure:"ignoreips"`
	IgnorePaths    string `mapstructure:"ignorepaths"`
	AllowedOrigins string `mapstructure:"allowedorigins"`

	// File paths
	DatabasePath string `mapstructure:"storagepath"`
	DatabaseName string `mapstructure:"-"` // Derived from other settings
	GeoDBPath    string `mapstructure:"geodbpath"`

	// Logging settings
	LogsDirectory    string `mapstructure:"logsdir"`
	LogsMaxSizeInMb  int    `mapstructure:"logsmaxsizeinmb"`
	LogsMaxBackups   int    `mapstructure:"logsmaxbackups"`
	LogsMaxAgeInDays int    `mapstructure:"logsmaxageindays"`

	// Database settings
	DatabaseMaxOpenConns int `mapstructure:"dbmaxopenconns"`
	DatabaseMaxIdleConns int `mapstructure:"dbmaxidleconns"`
}

var (
	cfg  *Config
	once sync.Once
)

// GetConfig returns the application configuration
func GetConfig() *Config {
	once.Do(func() {
		v := viper.New()

		v.SetDefault("appname", "pagepulse")
		v.SetDefault("appport", "3000")
		v.SetDefault("environment", Development)
		v.SetDefault("loglevel", string(LogLevelDebug))
		v.SetDefault("apikey", "")
		v.SetDefault("defaulttzoffset", 0)
		v.SetDefault("ignoreips", "")
		v.SetDefault("ignorepaths", "")
		v.SetDefault("allowedorigins", "")
		v.SetDefault("storagepath", "storage")
		v.SetDefault("geodbpath", "")
		v.SetDefault("logsdir", "logs")
		v.SetDefault("logsmaxsizeinmb", 20)
		v.SetDefault("logsmaxbackups", 10)
		v.SetDefault("logsmaxageindays", 30)
		v.SetDefault("dbmaxopenconns", 0)
		v.SetDefault("dbmaxidleconns", 0)

		v.BindEnv("appname", "PAGEPULSE_APP_NAME")
		v.BindEnv("appport", "PAGEPULSE_APP_PORT")
		v.BindEnv("environment", "PAGEPULSE_ENV")
		v.BindEnv("loglevel", "PAGEPULSE_LOG_LEVEL")
		v.BindEnv("apikey", "PAGEPULSE_API_KEY")
		v.BindEnv("defaulttzoffset", "PAGEPULSE_TZ_OFFSET")
		v.BindEnv("ignoreips", "PAGEPULSE_IGNORE_IPS")
		v.BindEnv("ignorepaths", "PAGEPULSE_IGNORE_PATHS")
		v.BindEnv("allowedorigins", "PAGEPULSE_ALLOWED_ORIGINS")
		v.BindEnv("storagepath", "PAGEPULSE_STORAGE_PATH")
		v.BindEnv("geodbpath", "PAGEPULSE_GEO_DB_PATH")
		v.BindEnv("logsdir", "PAGEPULSE_LOGS_DIR")
		v.BindEnv("logsmaxsizeinmb", "PAGEPULSE_LOGS_MAX_SIZE_IN_MB")
		v.BindEnv("logsmaxbackups", "PAGEPULSE_LOGS_MAX_BACKUPS")
		v.BindEnv("logsmaxageindays", "PAGEPULSE_LOGS_MAX_AGE_IN_DAYS")
		v.BindEnv("dbmaxopenconns", "PAGEPULSE_DB_MAX_OPEN_CONNS")
		v.BindEnv("dbmaxidleconns", "PAGEPULSE_DB_MAX_IDLE_CONNS")

		cfg = &Config{}
		if err := v.Unmarshal(cfg); err != nil {
			log.Fatalf("config: failed to unmarshal configuration: %v", err)
		}

		if err := cfg.validate(); err != nil {
			log.Fatalf("config: invalid configuration: %v", err)
		}

		cfg.DatabaseName = cfg.GetDatabasePath()
	})
	return cfg
}

// validate checks the configuration for errors
func (c *Config) validate() error {
	validEnvs := map[string]bool{
		Development: true,
		Production:  true,
		Test:        true,
	}
	if !validEnvs[c.Environment] {
		return fmt.Errorf("invalid environment: %s", c.Environment)
	}
	return nil
}

// GetDatabasePath returns the appropriate database path based on environment
func (c *Config) GetDatabasePath() string {
	if c.DatabaseName == "" {
		c.DatabaseName = filepath.Join(c.DatabasePath,
			fmt.Sprintf("%s-%s.db", c.AppName, c.Environment))
	}
	return c.DatabaseName
}

// IsDevelopment returns true if the environment is development
func (c *Config) IsDevelopment() bool {
	return c.Environment == Development
}

// IsProduction returns true if the environment is production
func (c *Config) IsProduction() bool {
	return c.Environment == Production
}

// IsTest returns true if the environment is test
func (c *Config) IsTest() bool {
	return c.Environment == Test
}

// GetIgnoredIPs returns the ignore-list of client IPs
func (c *Config) GetIgnoredIPs() []string {
	return splitCommaList(c.IgnoreIPs)
}

// GetIgnoredPaths returns the ignore-list of URL path prefixes
func (c *Config) GetIgnoredPaths() []string {
	return splitCommaList(c.IgnorePaths)
}

// GetAllowedOrigins returns the allowed origins for collect POSTs.
// An empty list means any origin is accepted.
func (c *Config) GetAllowedOrigins() []string {
	return splitCommaList(c.AllowedOrigins)
}

// GetMaxOpenConns returns the appropriate MaxOpenConns value based on environment.
// If explicitly set via env var, uses that value. Otherwise:
// - Test: 1 (required for in-memory database stability)
// - Development/Production: 10 (allows concurrent reads for parallel dashboard queries)
func (c *Config) GetMaxOpenConns() int {
	if c.DatabaseMaxOpenConns > 0 {
		return c.DatabaseMaxOpenConns
	}

	if c.Environment == Test {
		return 1
	}

	return 10
}

// GetMaxIdleConns returns the appropriate MaxIdleConns value based on environment
func (c *Config) GetMaxIdleConns() int {
	if c.DatabaseMaxIdleConns > 0 {
		return c.DatabaseMaxIdleConns
	}

	if c.Environment == Test {
		return 1
	}

	return 5
}

func splitCommaList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Reset clears the cached configuration; intended for tests.
func Reset() {
	once = sync.Once{}
	cfg = nil
}
