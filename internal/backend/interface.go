package backend

import (
	"context"
	"time"

	"bilancio/internal/services"
	"bilancio/internal/sheets"
	"bilancio/internal/storage"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult carries every port the services need plus the optional
// outbound adapters. Publisher and Exporter are nil when not configured.
type BackendResult struct {
	Entities  storage.EntityStore
	Lines     storage.LineStore
	Templates storage.TemplateStore
	Rules     storage.RuleStore
	Ledger    storage.LedgerStore

	Publisher services.LedgerPublisher
	Exporter  sheets.SummaryExporter

	Cleanup CleanupFunc
}

// Close runs Cleanup when set.
func (r *BackendResult) Close() error {
	if r == nil || r.Cleanup == nil {
		return nil
	}
	return r.Cleanup()
}

// Factory creates backends based on configuration
type Factory interface {
	// CreateBackend creates a backend instance based on the provided config
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	// Backend type
	Type BackendType

	// SQL stores
	SQLiteDBPath string
	DatabaseURL  string

	// Ledger publication, optional
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Summary export, optional
	GoogleSpreadsheetID      string
	GoogleSheetName          string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string

	TemplateCacheSize int
	TemplateCacheTTL  time.Duration
}

// BackendType represents the type of backend
type BackendType string

const (
	MemoryBackend   BackendType = "memory"
	SQLiteBackend   BackendType = "sqlite"
	PostgresBackend BackendType = "postgres"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case MemoryBackend, SQLiteBackend, PostgresBackend:
		return true
	default:
		return false
	}
}
