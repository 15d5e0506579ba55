package storage

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"bilancio/internal/core"
)

var ledgerColumns = []string{"id", "rule_id", "type", "entry_date", "label", "amount_cents", "category", "status"}

// AppendEntries stores entries in one transaction, skipping (rule, date) pairs
// that already exist.
func (r *Repository) AppendEntries(ctx context.Context, entries []core.LedgerEntry) ([]core.LedgerEntry, error) {
	if len(entries) == 0 {
		return nil, nil
	}

	var stored []core.LedgerEntry
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		stored = stored[:0]
		for _, e := range entries {
			b := r.sb.Insert("ledger_entries").
				Columns(ledgerColumns...).
				Values(e.ID, e.RuleID, string(e.Type), e.Date.String(), e.Label, e.Amount.Cents, e.Category, string(e.Status)).
				Suffix("ON CONFLICT (rule_id, entry_date) DO NOTHING")
			res, err := r.exec(ctx, tx, b)
			if err != nil {
				return fmt.Errorf("append entry %s: %w", e.ID, err)
			}
			if n, err := res.RowsAffected(); err == nil && n > 0 {
				stored = append(stored, e)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stored, nil
}

func (r *Repository) ListEntries(ctx context.Context, f LedgerFilter) ([]core.LedgerEntry, error) {
	b := r.sb.Select(ledgerColumns...).From("ledger_entries").OrderBy("entry_date", "rule_id")
	if f.RuleID != "" {
		b = b.Where(sq.Eq{"rule_id": f.RuleID})
	}
	if !f.From.IsZero() {
		b = b.Where(sq.GtOrEq{"entry_date": f.From.String()})
	}
	if !f.To.IsZero() {
		b = b.Where(sq.LtOrEq{"entry_date": f.To.String()})
	}

	rows, err := r.query(ctx, r.db, b)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	var out []core.LedgerEntry
	for rows.Next() {
		var (
			e                 core.LedgerEntry
			typ, date, status string
			cents             int64
		)
		if err := rows.Scan(&e.ID, &e.RuleID, &typ, &date, &e.Label, &cents, &e.Category, &status); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		d, err := core.ParseDate(date)
		if err != nil {
			return nil, fmt.Errorf("entry %s: %w", e.ID, err)
		}
		e.Type = core.LineType(typ)
		e.Date = d
		e.Amount = core.Cents(cents)
		e.Status = core.EntryStatus(status)
		out = append(out, e)
	}
	return out, rows.Err()
}
