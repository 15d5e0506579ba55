package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"bilancio/internal/log"
)

// Backends accepted by DATA_BACKEND.
const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

var validBackends = []string{BackendMemory, BackendSQLite, BackendPostgres}

type Config struct {
	// Storage
	DataBackend  string
	SQLiteDBPath string
	DatabaseURL  string

	// AMQP ledger publication; empty URL disables it
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets summary export; empty spreadsheet disables it
	GoogleSpreadsheetID      string
	GoogleBudgetSheetName    string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string

	// Templates
	TemplateCatalogFile string
	TemplateCacheSize   int
	TemplateCacheTTL    time.Duration

	DashboardConcurrency int

	LogLevel string
}

func Load() *Config {
	cfg := &Config{
		DataBackend:  getEnv("DATA_BACKEND", BackendSQLite),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", filepath.Join(DataDir(), "bilancio.db")),
		DatabaseURL:  getEnv("DATABASE_URL", ""),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "bilancio"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "ledger_entries"),

		GoogleSpreadsheetID:      getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleBudgetSheetName:    getEnv("GOOGLE_BUDGET_SHEET_NAME", "Budget"),
		GoogleServiceAccountJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),
		GoogleServiceAccountFile: getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")),

		TemplateCatalogFile: getEnv("TEMPLATE_CATALOG_FILE", DefaultCatalogPath()),
		TemplateCacheSize:   getEnvInt("TEMPLATE_CACHE_SIZE", 64),
		TemplateCacheTTL:    getEnvDuration("TEMPLATE_CACHE_TTL", 5*time.Minute),

		DashboardConcurrency: getEnvInt("DASHBOARD_CONCURRENCY", 8),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	return cfg
}

// Validate reports every configuration problem at once.
func (c *Config) Validate() error {
	var errors []string

	if !slices.Contains(validBackends, c.DataBackend) {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	switch c.DataBackend {
	case BackendSQLite:
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else {
			dir := filepath.Dir(c.SQLiteDBPath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					if err := os.MkdirAll(dir, 0755); err != nil {
						errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
					}
				}
			}
		}
	case BackendPostgres:
		if c.DatabaseURL == "" {
			errors = append(errors, "DATABASE_URL is required when using postgres backend")
		} else if u, err := url.Parse(c.DatabaseURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid DATABASE_URL: %v", err))
		} else if u.Scheme != "postgres" && u.Scheme != "postgresql" {
			errors = append(errors, fmt.Sprintf("invalid DATABASE_URL scheme '%s': must be 'postgres' or 'postgresql'", u.Scheme))
		}
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.GoogleSpreadsheetID != "" {
		if c.GoogleBudgetSheetName == "" {
			errors = append(errors, "GOOGLE_BUDGET_SHEET_NAME cannot be empty when a spreadsheet is configured")
		}
		if c.GoogleServiceAccountJSON == "" && c.GoogleServiceAccountFile == "" {
			errors = append(errors, "either GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE must be provided for sheets export")
		}
	}

	if c.TemplateCacheSize < 1 {
		errors = append(errors, fmt.Sprintf("invalid template cache size %d: must be at least 1", c.TemplateCacheSize))
	}
	if c.TemplateCacheTTL < time.Second {
		errors = append(errors, fmt.Sprintf("invalid template cache TTL %v: must be at least 1 second", c.TemplateCacheTTL))
	}

	if c.DashboardConcurrency < 1 {
		errors = append(errors, fmt.Sprintf("invalid dashboard concurrency %d: must be at least 1", c.DashboardConcurrency))
	} else if c.DashboardConcurrency > 64 {
		errors = append(errors, fmt.Sprintf("invalid dashboard concurrency %d: must be at most 64", c.DashboardConcurrency))
	}

	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		errors = append(errors, err.Error())
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// Level returns the parsed LOG_LEVEL, defaulting to info.
func (c *Config) Level() slog.Level {
	lvl, _ := log.ParseLevel(c.LogLevel)
	return lvl
}

// AMQPEnabled reports whether ledger entries should be published.
func (c *Config) AMQPEnabled() bool {
	return c.AMQPURL != ""
}

// SheetsEnabled reports whether summaries can be exported to Google Sheets.
func (c *Config) SheetsEnabled() bool {
	return c.GoogleSpreadsheetID != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
