package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"bilancio/internal/core"
)

func (r *Repository) ListTemplates(ctx context.Context) ([]core.BudgetTemplate, error) {
	rows, err := r.query(ctx, r.db, r.sb.
		Select("id", "name", "icon", "description", "is_default").
		From("budget_templates").
		OrderBy("is_default DESC", "name", "id"))
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}

	var out []core.BudgetTemplate
	index := map[string]int{}
	for rows.Next() {
		var t core.BudgetTemplate
		if err := rows.Scan(&t.ID, &t.Name, &t.Icon, &t.Description, &t.IsDefault); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan template: %w", err)
		}
		index[t.ID] = len(out)
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	lines, err := r.query(ctx, r.db, r.sb.
		Select("template_id", "category", "type", "allocated_cents", "sort_order").
		From("template_lines").
		OrderBy("template_id", "position"))
	if err != nil {
		return nil, fmt.Errorf("list template lines: %w", err)
	}
	defer lines.Close()

	for lines.Next() {
		var templateID string
		l, err := scanTemplateLine(lines, &templateID)
		if err != nil {
			return nil, err
		}
		if i, ok := index[templateID]; ok {
			out[i].Lines = append(out[i].Lines, l)
		}
	}
	return out, lines.Err()
}

func (r *Repository) GetTemplate(ctx context.Context, id string) (core.BudgetTemplate, error) {
	row, err := r.queryRow(ctx, r.db, r.sb.
		Select("id", "name", "icon", "description", "is_default").
		From("budget_templates").
		Where(sq.Eq{"id": id}))
	if err != nil {
		return core.BudgetTemplate{}, err
	}

	var t core.BudgetTemplate
	if err := row.Scan(&t.ID, &t.Name, &t.Icon, &t.Description, &t.IsDefault); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.BudgetTemplate{}, fmt.Errorf("template %s: %w", id, ErrNotFound)
		}
		return core.BudgetTemplate{}, fmt.Errorf("get template %s: %w", id, err)
	}

	rows, err := r.query(ctx, r.db, r.sb.
		Select("template_id", "category", "type", "allocated_cents", "sort_order").
		From("template_lines").
		Where(sq.Eq{"template_id": id}).
		OrderBy("position"))
	if err != nil {
		return core.BudgetTemplate{}, fmt.Errorf("get template lines %s: %w", id, err)
	}
	defer rows.Close()

	for rows.Next() {
		var templateID string
		l, err := scanTemplateLine(rows, &templateID)
		if err != nil {
			return core.BudgetTemplate{}, err
		}
		t.Lines = append(t.Lines, l)
	}
	return t, rows.Err()
}

func scanTemplateLine(s scanner, templateID *string) (core.TemplateLine, error) {
	var (
		l     core.TemplateLine
		typ   string
		cents int64
	)
	if err := s.Scan(templateID, &l.Category, &typ, &cents, &l.SortOrder); err != nil {
		return core.TemplateLine{}, fmt.Errorf("scan template line: %w", err)
	}
	l.Type = core.LineType(typ)
	l.Allocated = core.Cents(cents)
	return l, nil
}

// SaveTemplate upserts tpl and replaces its lines.
func (r *Repository) SaveTemplate(ctx context.Context, tpl core.BudgetTemplate) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		upsert := r.sb.Insert("budget_templates").
			Columns("id", "name", "icon", "description", "is_default").
			Values(tpl.ID, tpl.Name, tpl.Icon, tpl.Description, tpl.IsDefault).
			Suffix("ON CONFLICT (id) DO UPDATE SET name = excluded.name, icon = excluded.icon, description = excluded.description, is_default = excluded.is_default")
		if _, err := r.exec(ctx, tx, upsert); err != nil {
			return fmt.Errorf("save template %s: %w", tpl.ID, err)
		}

		if _, err := r.exec(ctx, tx, r.sb.Delete("template_lines").Where(sq.Eq{"template_id": tpl.ID})); err != nil {
			return fmt.Errorf("clear template lines %s: %w", tpl.ID, err)
		}
		if len(tpl.Lines) == 0 {
			return nil
		}

		ins := r.sb.Insert("template_lines").
			Columns("template_id", "position", "category", "type", "allocated_cents", "sort_order")
		for i, l := range tpl.Lines {
			ins = ins.Values(tpl.ID, i, l.Category, string(l.Type), l.Allocated.Cents, l.SortOrder)
		}
		if _, err := r.exec(ctx, tx, ins); err != nil {
			return fmt.Errorf("insert template lines %s: %w", tpl.ID, err)
		}
		return nil
	})
}

func (r *Repository) DeleteTemplate(ctx context.Context, id string) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		row, err := r.queryRow(ctx, tx, r.sb.Select("is_default").From("budget_templates").Where(sq.Eq{"id": id}))
		if err != nil {
			return err
		}
		var isDefault bool
		if err := row.Scan(&isDefault); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("template %s: %w", id, ErrNotFound)
			}
			return fmt.Errorf("get template %s: %w", id, err)
		}
		if isDefault {
			return fmt.Errorf("template %s: %w", id, ErrDefaultTemplate)
		}

		if _, err := r.exec(ctx, tx, r.sb.Delete("template_lines").Where(sq.Eq{"template_id": id})); err != nil {
			return fmt.Errorf("delete template lines %s: %w", id, err)
		}
		if _, err := r.exec(ctx, tx, r.sb.Delete("budget_templates").Where(sq.Eq{"id": id})); err != nil {
			return fmt.Errorf("delete template %s: %w", id, err)
		}
		return nil
	})
}
