package backend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bilancio/internal/adapters"
	"bilancio/internal/amqp"
	"bilancio/internal/cache"
	"bilancio/internal/core"
	"bilancio/internal/log"
	"bilancio/internal/services"
	gsheet "bilancio/internal/sheets/google"
	"bilancio/internal/storage"
	"bilancio/internal/storage/memory"
)

const (
	defaultCacheSize = 64
	defaultCacheTTL  = 5 * time.Minute
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.Discard()
	}
	return &DefaultFactory{
		logger: logger.WithComponent(log.ComponentBackend),
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	store, closeStore, err := f.createStore(ctx, config)
	if err != nil {
		return nil, err
	}

	var closers []func() error
	if closeStore != nil {
		closers = append(closers, closeStore)
	}

	result := &BackendResult{
		Entities:  store,
		Lines:     store,
		Templates: f.cachedTemplates(store, config),
		Rules:     store,
	}

	if config.AMQPURL != "" {
		client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
		if err != nil {
			f.logger.WarnContext(ctx, "Failed to initialize AMQP client, continuing without ledger publication", log.FieldError, err)
		} else {
			f.logger.InfoContext(ctx, "Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
			result.Publisher = client
			closers = append(closers, client.Close)
		}
	}
	result.Ledger = services.NewLedgerService(store, result.Publisher)

	if config.GoogleSpreadsheetID != "" {
		exporter, err := gsheet.New(ctx, gsheet.Options{
			SpreadsheetID:   config.GoogleSpreadsheetID,
			SheetName:       config.GoogleSheetName,
			CredentialsJSON: config.GoogleServiceAccountJSON,
			CredentialsFile: config.GoogleServiceAccountFile,
		})
		if err != nil {
			f.logger.WarnContext(ctx, "Failed to initialize Google Sheets exporter, export disabled", log.FieldError, err)
		} else {
			result.Exporter = exporter
		}
	}

	result.Cleanup = func() error {
		var errs []error
		// Close in reverse order of creation.
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				errs = append(errs, err)
			}
		}
		if len(errs) > 0 {
			return fmt.Errorf("close backend: %w", errors.Join(errs...))
		}
		return nil
	}

	f.logger.InfoContext(ctx, "Initialized backend",
		log.FieldBackend, config.Type.String(),
		"amqp_enabled", result.Publisher != nil,
		"sheets_enabled", result.Exporter != nil)

	return result, nil
}

func (f *DefaultFactory) createStore(ctx context.Context, config Config) (storage.Store, func() error, error) {
	switch config.Type {
	case SQLiteBackend:
		repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
		}
		f.logger.DebugContext(ctx, "Opened SQLite store", "db_path", config.SQLiteDBPath)
		return repo, repo.Close, nil
	case PostgresBackend:
		repo, err := storage.NewPostgresRepository(ctx, config.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize Postgres repository: %w", err)
		}
		f.logger.DebugContext(ctx, "Opened Postgres store")
		return repo, repo.Close, nil
	case MemoryBackend:
		f.logger.DebugContext(ctx, "Using in-memory store, data is lost on exit")
		return memory.New(), nil, nil
	default:
		return nil, nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) cachedTemplates(next storage.TemplateStore, config Config) storage.TemplateStore {
	size := config.TemplateCacheSize
	if size < 1 {
		size = defaultCacheSize
	}
	ttl := config.TemplateCacheTTL
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return adapters.NewCachedTemplateStore(next,
		cache.NewLRUCache[core.BudgetTemplate](size, ttl),
		cache.NewLRUCache[[]core.BudgetTemplate](1, ttl),
	)
}
