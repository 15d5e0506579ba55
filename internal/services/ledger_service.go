package services

import (
	"context"
	"fmt"

	"bilancio/internal/core"
	"bilancio/internal/log"
	"bilancio/internal/storage"
)

// LedgerPublisher announces stored entries to downstream consumers.
type LedgerPublisher interface {
	PublishLedgerEntry(ctx context.Context, e core.LedgerEntry) error
}

// LedgerService stores ledger entries and publishes the ones actually written.
// The store is the source of truth; publishing is best effort.
type LedgerService struct {
	store     storage.LedgerStore
	publisher LedgerPublisher
}

var _ storage.LedgerStore = (*LedgerService)(nil)

// NewLedgerService wraps store. publisher may be nil.
func NewLedgerService(store storage.LedgerStore, publisher LedgerPublisher) *LedgerService {
	return &LedgerService{store: store, publisher: publisher}
}

// AppendEntries saves entries locally first, then publishes the stored ones.
func (s *LedgerService) AppendEntries(ctx context.Context, entries []core.LedgerEntry) ([]core.LedgerEntry, error) {
	stored, err := s.store.AppendEntries(ctx, entries)
	if err != nil {
		return nil, fmt.Errorf("save ledger entries: %w", err)
	}

	logger := log.FromContext(ctx).WithComponent(log.ComponentLedger).With(log.FieldOperation, log.OpPublish)
	if s.publisher == nil {
		if len(stored) > 0 {
			logger.DebugContext(ctx, "No ledger publisher configured, skipping publish", log.FieldCount, len(stored))
		}
		return stored, nil
	}

	for _, e := range stored {
		if err := s.publisher.PublishLedgerEntry(ctx, e); err != nil {
			logger.WithFields(log.NewFields().WithError(err)).ErrorContext(ctx, "Failed to publish ledger entry",
				log.FieldEntryID, e.ID,
				log.FieldRuleID, e.RuleID)
			// Don't fail the write - the entry is stored locally
		}
	}
	return stored, nil
}

func (s *LedgerService) ListEntries(ctx context.Context, f storage.LedgerFilter) ([]core.LedgerEntry, error) {
	entries, err := s.store.ListEntries(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list ledger entries: %w", err)
	}
	return entries, nil
}
