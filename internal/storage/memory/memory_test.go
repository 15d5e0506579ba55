package memory

import (
	"context"
	"errors"
	"testing"

	"bilancio/internal/budget"
	"bilancio/internal/core"
	"bilancio/internal/storage"
)

func TestListLinesReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := New()
	if err := s.InsertLines(ctx, []core.BudgetLine{
		{ID: "b", EntityID: "e", Category: "B", Type: core.Expense, SortOrder: 1, Actual: core.Cents(10).Ptr()},
		{ID: "a", EntityID: "e", Category: "A", Type: core.Income, SortOrder: 0},
	}); err != nil {
		t.Fatal(err)
	}

	lines, _ := s.ListLines(ctx, "e")
	if len(lines) != 2 || lines[0].ID != "a" {
		t.Fatalf("unexpected lines %+v", lines)
	}
	lines[1].Actual.Cents = 999

	again, _ := s.ListLines(ctx, "e")
	if again[1].Actual.Cents != 10 {
		t.Fatalf("store was mutated through a returned pointer")
	}
}

func TestReplaceLines(t *testing.T) {
	ctx := context.Background()
	s := New()
	_ = s.InsertLines(ctx, []core.BudgetLine{{ID: "old", EntityID: "e"}, {ID: "other", EntityID: "f"}})

	if err := s.ReplaceLines(ctx, "e", []core.BudgetLine{{ID: "new", EntityID: "e"}}); err != nil {
		t.Fatal(err)
	}
	lines, _ := s.ListLines(ctx, "e")
	if len(lines) != 1 || lines[0].ID != "new" {
		t.Fatalf("replace failed: %+v", lines)
	}
	if other, _ := s.ListLines(ctx, "f"); len(other) != 1 {
		t.Fatalf("other entity touched")
	}
}

func TestListEntitiesFiltersAndOrders(t *testing.T) {
	ctx := context.Background()
	s := New()
	for _, e := range []core.Entity{
		{ID: "1", Name: "Zeta", Year: 2025, Status: core.StatusDraft},
		{ID: "2", Name: "Alfa", Year: 2025, Status: core.StatusConfirmed},
		{ID: "3", Name: "Beta", Year: 2024, Status: core.StatusDraft},
	} {
		_ = s.SaveEntity(ctx, e)
	}

	all, _ := s.ListEntities(ctx, budget.EntityFilter{})
	if got := []string{all[0].ID, all[1].ID, all[2].ID}; got[0] != "2" || got[1] != "1" || got[2] != "3" {
		t.Fatalf("unexpected order %v", got)
	}
	drafts, _ := s.ListEntities(ctx, budget.EntityFilter{Status: core.StatusDraft, Year: 2025})
	if len(drafts) != 1 || drafts[0].ID != "1" {
		t.Fatalf("unexpected filter result %+v", drafts)
	}
	if _, err := s.GetEntity(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteTemplateProtectsDefaults(t *testing.T) {
	ctx := context.Background()
	s := New()
	for _, tpl := range budget.DefaultCatalog() {
		_ = s.SaveTemplate(ctx, tpl)
	}
	_ = s.SaveTemplate(ctx, core.BudgetTemplate{ID: "custom", Name: "Custom"})

	if err := s.DeleteTemplate(ctx, "default-event"); !errors.Is(err, storage.ErrDefaultTemplate) {
		t.Fatalf("expected ErrDefaultTemplate, got %v", err)
	}
	if err := s.DeleteTemplate(ctx, "custom"); err != nil {
		t.Fatalf("delete custom: %v", err)
	}
	if err := s.DeleteTemplate(ctx, "custom"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	list, _ := s.ListTemplates(ctx)
	if len(list) != 2 || !list[0].IsDefault {
		t.Fatalf("unexpected templates %+v", list)
	}
}

func TestUpdateNextOccurrenceForwardOnly(t *testing.T) {
	ctx := context.Background()
	s := New()
	_ = s.SaveRule(ctx, core.RecurringRule{ID: "r", NextOccurrence: core.NewDate(2025, 3, 1)})

	if err := s.UpdateNextOccurrence(ctx, "r", core.NewDate(2025, 2, 1)); !errors.Is(err, storage.ErrStaleOccurrence) {
		t.Fatalf("expected ErrStaleOccurrence, got %v", err)
	}
	if err := s.UpdateNextOccurrence(ctx, "r", core.NewDate(2025, 3, 1)); !errors.Is(err, storage.ErrStaleOccurrence) {
		t.Fatalf("same date must be rejected, got %v", err)
	}
	if err := s.UpdateNextOccurrence(ctx, "r", core.NewDate(2025, 4, 1)); err != nil {
		t.Fatalf("forward move: %v", err)
	}
	if err := s.UpdateNextOccurrence(ctx, "x", core.NewDate(2025, 4, 1)); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := s.SetActive(ctx, "r", false); err != nil {
		t.Fatal(err)
	}
	r, _ := s.GetRule(ctx, "r")
	if r.IsActive || r.NextOccurrence.String() != "2025-04-01" {
		t.Fatalf("unexpected rule %+v", r)
	}
}

func TestAppendEntriesDeduplicates(t *testing.T) {
	ctx := context.Background()
	s := New()
	e := core.LedgerEntry{ID: "1", RuleID: "r", Date: core.NewDate(2025, 1, 1)}

	stored, _ := s.AppendEntries(ctx, []core.LedgerEntry{e})
	if len(stored) != 1 {
		t.Fatalf("first append stored %d", len(stored))
	}
	e.ID = "2"
	stored, _ = s.AppendEntries(ctx, []core.LedgerEntry{e, {ID: "3", RuleID: "r", Date: core.NewDate(2025, 2, 1)}})
	if len(stored) != 1 || stored[0].ID != "3" {
		t.Fatalf("duplicate was stored: %+v", stored)
	}

	list, _ := s.ListEntries(ctx, storage.LedgerFilter{From: core.NewDate(2025, 1, 15)})
	if len(list) != 1 || list[0].ID != "3" {
		t.Fatalf("unexpected filtered entries %+v", list)
	}
}
