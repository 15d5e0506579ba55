package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bilancio/internal/budget"
	"bilancio/internal/core"
	"bilancio/internal/log"
	"bilancio/internal/storage"
)

// RecurringProcessor materializes due occurrences of recurring rules into the
// ledger. It runs on demand; there is no background timer.
type RecurringProcessor struct {
	rules storage.RuleStore
	sink  storage.LedgerSink
	newID budget.IDFunc
}

// NewRecurringProcessor creates a new recurring rule processor
func NewRecurringProcessor(rules storage.RuleStore, sink storage.LedgerSink) *RecurringProcessor {
	return &RecurringProcessor{
		rules: rules,
		sink:  sink,
		newID: budget.NewID,
	}
}

// AddRule validates and stores a new rule.
func (p *RecurringProcessor) AddRule(ctx context.Context, r core.RecurringRule) (core.RecurringRule, error) {
	if err := r.Validate(); err != nil {
		return core.RecurringRule{}, fmt.Errorf("invalid rule: %w", err)
	}
	if r.ID == "" {
		r.ID = p.newID()
	}
	if err := p.rules.SaveRule(ctx, r); err != nil {
		return core.RecurringRule{}, fmt.Errorf("save rule: %w", err)
	}
	recurringLogger(ctx).
		WithFields(log.NewFields().WithOperation(log.OpCreate).WithRule(r.ID, r.Category, r.Amount.Cents)).
		InfoContext(ctx, "Recurring rule created",
			log.FieldFrequency, r.Frequency,
			log.FieldNextOccurrence, r.NextOccurrence.String())
	return r, nil
}

func (p *RecurringProcessor) ListRules(ctx context.Context) ([]core.RecurringRule, error) {
	rules, err := p.rules.ListRules(ctx)
	if err != nil {
		return nil, fmt.Errorf("list rules: %w", err)
	}
	return rules, nil
}

// SetActive toggles whether GenerateDue considers the rule.
func (p *RecurringProcessor) SetActive(ctx context.Context, id string, active bool) error {
	if err := p.rules.SetActive(ctx, id, active); err != nil {
		return fmt.Errorf("set active %s: %w", id, err)
	}
	recurringLogger(ctx).InfoContext(ctx, "Recurring rule toggled",
		log.FieldOperation, log.OpUpdate,
		log.FieldRuleID, id,
		"active", active)
	return nil
}

// GenerateDue writes every occurrence due on or before today and returns the
// number of entries stored. Each rule is handled on its own: its entries are
// written first and its marker is advanced only after the write succeeds, so
// a failure leaves that rule to be retried on the next run while the others
// proceed.
func (p *RecurringProcessor) GenerateDue(ctx context.Context, today time.Time) (int, error) {
	if p.rules == nil || p.sink == nil {
		return 0, fmt.Errorf("processor not properly initialized")
	}

	rules, err := p.rules.ListRules(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get recurring rules: %w", err)
	}

	projection := budget.Project(rules, today, p.newID)

	logger := recurringLogger(ctx).With(log.FieldOperation, log.OpGenerate)
	logger.InfoContext(ctx, "Processing recurring rules",
		"total_rules", len(rules),
		"active_valid", len(projection.Rules),
		"skipped", len(projection.Skipped),
		log.FieldDate, core.DateOf(today).String())

	for _, s := range projection.Skipped {
		logger.WarnContext(ctx, "Skipping malformed recurring rule",
			log.FieldRuleID, s.Rule.ID,
			log.FieldLabel, s.Rule.Label,
			log.FieldError, s.Err)
	}

	stored := 0
	for _, rp := range projection.Rules {
		if err := ctx.Err(); err != nil {
			return stored, err
		}
		if !rp.Due() {
			continue
		}
		ruleLogger := logger.WithFields(log.NewFields().WithRule(rp.Rule.ID, rp.Rule.Category, rp.Rule.Amount.Cents))

		written, err := p.sink.AppendEntries(ctx, rp.Entries)
		if err != nil {
			ruleLogger.ErrorContext(ctx, "Failed to write entries for recurring rule",
				log.FieldCount, len(rp.Entries),
				log.FieldError, err)
			continue
		}
		stored += len(written)

		if err := p.rules.UpdateNextOccurrence(ctx, rp.Rule.ID, rp.Next); err != nil {
			if errors.Is(err, storage.ErrStaleOccurrence) {
				ruleLogger.WarnContext(ctx, "Next occurrence already advanced by another run",
					log.FieldNextOccurrence, rp.Next.String())
				continue
			}
			// Entries are stored; the ledger drops them as duplicates next run.
			ruleLogger.ErrorContext(ctx, "Failed to advance next occurrence",
				log.FieldError, err)
			continue
		}

		ruleLogger.InfoContext(ctx, "Generated entries from recurring rule",
			log.FieldLabel, rp.Rule.Label,
			log.FieldFrequency, rp.Rule.Frequency,
			log.FieldCount, len(written),
			log.FieldNextOccurrence, rp.Next.String())
	}

	logger.InfoContext(ctx, "Recurring rule processing complete",
		"stored", stored,
		"emitted", projection.Count())

	return stored, nil
}

func recurringLogger(ctx context.Context) *log.Logger {
	return log.FromContext(ctx).WithComponent(log.ComponentRecurring)
}
