package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"bilancio/internal/core"
)

var ruleColumns = []string{
	"id", "label", "type", "amount_cents", "category",
	"frequency", "day_of_month", "is_active", "next_occurrence",
}

func (r *Repository) ListRules(ctx context.Context) ([]core.RecurringRule, error) {
	rows, err := r.query(ctx, r.db, r.sb.Select(ruleColumns...).From("recurring_rules").OrderBy("next_occurrence", "id"))
	if err != nil {
		return nil, fmt.Errorf("list rules: %w", err)
	}
	defer rows.Close()

	var out []core.RecurringRule
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rule)
	}
	return out, rows.Err()
}

func (r *Repository) GetRule(ctx context.Context, id string) (core.RecurringRule, error) {
	row, err := r.queryRow(ctx, r.db, r.sb.Select(ruleColumns...).From("recurring_rules").Where(sq.Eq{"id": id}))
	if err != nil {
		return core.RecurringRule{}, err
	}
	rule, err := scanRule(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.RecurringRule{}, fmt.Errorf("rule %s: %w", id, ErrNotFound)
	}
	return rule, err
}

func scanRule(s scanner) (core.RecurringRule, error) {
	var (
		rule       core.RecurringRule
		typ, freq  string
		cents      int64
		nextString string
	)
	if err := s.Scan(&rule.ID, &rule.Label, &typ, &cents, &rule.Category, &freq, &rule.DayOfMonth, &rule.IsActive, &nextString); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.RecurringRule{}, err
		}
		return core.RecurringRule{}, fmt.Errorf("scan rule: %w", err)
	}
	rule.Type = core.LineType(typ)
	rule.Frequency = core.Frequency(freq)
	rule.Amount = core.Cents(cents)

	// A malformed stored date is left zero; the projector reports such rules
	// as skipped instead of failing the whole listing.
	if next, err := core.ParseDate(nextString); err == nil {
		rule.NextOccurrence = next
	}
	return rule, nil
}

// SaveRule inserts or updates r, including its next occurrence.
func (r *Repository) SaveRule(ctx context.Context, rule core.RecurringRule) error {
	b := r.sb.Insert("recurring_rules").
		Columns(ruleColumns...).
		Values(rule.ID, rule.Label, string(rule.Type), rule.Amount.Cents, rule.Category,
			string(rule.Frequency), rule.DayOfMonth, rule.IsActive, rule.NextOccurrence.String()).
		Suffix(`ON CONFLICT (id) DO UPDATE SET label = excluded.label, type = excluded.type,
			amount_cents = excluded.amount_cents, category = excluded.category,
			frequency = excluded.frequency, day_of_month = excluded.day_of_month,
			is_active = excluded.is_active, next_occurrence = excluded.next_occurrence`)
	if _, err := r.exec(ctx, r.db, b); err != nil {
		return fmt.Errorf("save rule %s: %w", rule.ID, err)
	}
	return nil
}

func (r *Repository) SetActive(ctx context.Context, id string, active bool) error {
	res, err := r.exec(ctx, r.db, r.sb.Update("recurring_rules").Set("is_active", active).Where(sq.Eq{"id": id}))
	if err != nil {
		return fmt.Errorf("set rule %s active=%t: %w", id, active, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("rule %s: %w", id, ErrNotFound)
	}
	return nil
}

// UpdateNextOccurrence moves the marker forward. Dates are stored as
// YYYY-MM-DD so the comparison in SQL is lexicographic.
func (r *Repository) UpdateNextOccurrence(ctx context.Context, id string, next core.Date) error {
	res, err := r.exec(ctx, r.db, r.sb.Update("recurring_rules").
		Set("next_occurrence", next.String()).
		Where(sq.Eq{"id": id}).
		Where(sq.Lt{"next_occurrence": next.String()}))
	if err != nil {
		return fmt.Errorf("update next occurrence of %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update next occurrence of %s: %w", id, err)
	}
	if n > 0 {
		return nil
	}
	if _, err := r.GetRule(ctx, id); err != nil {
		return err
	}
	return fmt.Errorf("rule %s to %s: %w", id, next, ErrStaleOccurrence)
}
