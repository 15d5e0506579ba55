package storage

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"bilancio/internal/core"
)

var lineColumns = []string{
	"id", "entity_id", "category", "type", "allocated_cents",
	"allocated_low_cents", "allocated_high_cents", "actual_cents", "notes", "sort_order",
}

// ListLines returns the entity's lines in display order.
func (r *Repository) ListLines(ctx context.Context, entityID string) ([]core.BudgetLine, error) {
	b := r.sb.Select(lineColumns...).From("budget_lines").
		Where(sq.Eq{"entity_id": entityID}).
		OrderBy("sort_order", "id")

	rows, err := r.query(ctx, r.db, b)
	if err != nil {
		return nil, fmt.Errorf("list lines for %s: %w", entityID, err)
	}
	defer rows.Close()

	var out []core.BudgetLine
	for rows.Next() {
		var (
			l                 core.BudgetLine
			typ               string
			allocated         int64
			low, high, actual sql.NullInt64
		)
		if err := rows.Scan(&l.ID, &l.EntityID, &l.Category, &typ, &allocated, &low, &high, &actual, &l.Notes, &l.SortOrder); err != nil {
			return nil, fmt.Errorf("scan line: %w", err)
		}
		l.Type = core.LineType(typ)
		l.Allocated = core.Cents(allocated)
		l.AllocatedLow = centsPtr(low)
		l.AllocatedHigh = centsPtr(high)
		l.Actual = centsPtr(actual)
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *Repository) DeleteLines(ctx context.Context, entityID string) error {
	return r.deleteLines(ctx, r.db, entityID)
}

func (r *Repository) InsertLines(ctx context.Context, lines []core.BudgetLine) error {
	return r.insertLines(ctx, r.db, lines)
}

// ReplaceLines swaps the whole line set of entityID in one transaction.
func (r *Repository) ReplaceLines(ctx context.Context, entityID string, lines []core.BudgetLine) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		if err := r.deleteLines(ctx, tx, entityID); err != nil {
			return err
		}
		return r.insertLines(ctx, tx, lines)
	})
}

func (r *Repository) deleteLines(ctx context.Context, q queryer, entityID string) error {
	if _, err := r.exec(ctx, q, r.sb.Delete("budget_lines").Where(sq.Eq{"entity_id": entityID})); err != nil {
		return fmt.Errorf("delete lines for %s: %w", entityID, err)
	}
	return nil
}

func (r *Repository) insertLines(ctx context.Context, q queryer, lines []core.BudgetLine) error {
	if len(lines) == 0 {
		return nil
	}
	b := r.sb.Insert("budget_lines").Columns(lineColumns...)
	for _, l := range lines {
		b = b.Values(l.ID, l.EntityID, l.Category, string(l.Type), l.Allocated.Cents,
			nullCents(l.AllocatedLow), nullCents(l.AllocatedHigh), nullCents(l.Actual), l.Notes, l.SortOrder)
	}
	if _, err := r.exec(ctx, q, b); err != nil {
		return fmt.Errorf("insert %d lines: %w", len(lines), err)
	}
	return nil
}

func nullCents(m *core.Money) sql.NullInt64 {
	if m == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: m.Cents, Valid: true}
}

func centsPtr(n sql.NullInt64) *core.Money {
	if !n.Valid {
		return nil
	}
	return core.Cents(n.Int64).Ptr()
}
