package storage

import (
	"context"
	"errors"

	"bilancio/internal/budget"
	"bilancio/internal/core"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrDefaultTemplate = errors.New("default templates cannot be deleted")
	// ErrStaleOccurrence is returned when a next-occurrence update would not
	// move the marker forward.
	ErrStaleOccurrence = errors.New("next occurrence can only move forward")
)

// Ports implemented by the SQL repository and the in-memory store.
type (
	EntityStore interface {
		SaveEntity(ctx context.Context, e core.Entity) error
		GetEntity(ctx context.Context, id string) (core.Entity, error)
		ListEntities(ctx context.Context, f budget.EntityFilter) ([]core.Entity, error)
	}

	// LineStore persists budget lines. DeleteLines followed by InsertLines is
	// the two-phase replacement every store supports.
	LineStore interface {
		ListLines(ctx context.Context, entityID string) ([]core.BudgetLine, error)
		DeleteLines(ctx context.Context, entityID string) error
		InsertLines(ctx context.Context, lines []core.BudgetLine) error
	}

	// LineReplacer is implemented by stores that can swap an entity's line set
	// in one transaction.
	LineReplacer interface {
		ReplaceLines(ctx context.Context, entityID string, lines []core.BudgetLine) error
	}

	TemplateStore interface {
		ListTemplates(ctx context.Context) ([]core.BudgetTemplate, error)
		GetTemplate(ctx context.Context, id string) (core.BudgetTemplate, error)
		SaveTemplate(ctx context.Context, tpl core.BudgetTemplate) error
		// DeleteTemplate returns ErrDefaultTemplate for protected templates.
		DeleteTemplate(ctx context.Context, id string) error
	}

	RuleStore interface {
		ListRules(ctx context.Context) ([]core.RecurringRule, error)
		GetRule(ctx context.Context, id string) (core.RecurringRule, error)
		SaveRule(ctx context.Context, r core.RecurringRule) error
		SetActive(ctx context.Context, id string, active bool) error
		// UpdateNextOccurrence returns ErrStaleOccurrence unless next is later
		// than the stored date.
		UpdateNextOccurrence(ctx context.Context, id string, next core.Date) error
	}

	// LedgerSink receives generated entries. It returns the entries actually
	// stored: an entry for a (rule, date) pair already present is dropped, so
	// re-running generation after a partial failure never duplicates.
	LedgerSink interface {
		AppendEntries(ctx context.Context, entries []core.LedgerEntry) ([]core.LedgerEntry, error)
	}

	LedgerStore interface {
		LedgerSink
		ListEntries(ctx context.Context, f LedgerFilter) ([]core.LedgerEntry, error)
	}

	// Store bundles every port.
	Store interface {
		EntityStore
		LineStore
		TemplateStore
		RuleStore
		LedgerStore
	}
)

// LedgerFilter narrows ListEntries. Zero values match all.
type LedgerFilter struct {
	RuleID string
	From   core.Date
	To     core.Date
}

// Match reports whether e passes the filter.
func (f LedgerFilter) Match(e core.LedgerEntry) bool {
	if f.RuleID != "" && e.RuleID != f.RuleID {
		return false
	}
	if !f.From.IsZero() && e.Date.Before(f.From.Time) {
		return false
	}
	if !f.To.IsZero() && e.Date.After(f.To.Time) {
		return false
	}
	return true
}
