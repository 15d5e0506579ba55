package services

import (
	"context"
	"errors"
	"testing"

	"bilancio/internal/budget"
	"bilancio/internal/core"
	"bilancio/internal/storage"
	"bilancio/internal/storage/memory"
)

// twoPhaseLines hides ReplaceLines so the service falls back to delete+insert.
type twoPhaseLines struct {
	storage.LineStore
	insertErr error
}

func (f *twoPhaseLines) InsertLines(ctx context.Context, lines []core.BudgetLine) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	return f.LineStore.InsertLines(ctx, lines)
}

func newBudgetService(st *memory.Store) *BudgetService {
	s := NewBudgetService(st, st, st)
	s.newID = sequentialIDs("line")
	return s
}

func TestBudgetService_CreateEntity(t *testing.T) {
	st := memory.New()
	s := newBudgetService(st)
	ctx := context.Background()

	e, err := s.CreateEntity(ctx, core.Entity{Kind: core.KindProject, Name: "Biblioteca", Year: 2025})
	if err != nil {
		t.Fatalf("CreateEntity: %v", err)
	}
	if e.ID == "" || e.Status != core.StatusDraft {
		t.Errorf("expected generated id and draft status, got %+v", e)
	}
	if _, err := st.GetEntity(ctx, e.ID); err != nil {
		t.Errorf("entity not stored: %v", err)
	}

	if _, err := s.CreateEntity(ctx, core.Entity{Kind: "party", Name: "x", Year: 2025}); !errors.Is(err, core.ErrInvalidKind) {
		t.Errorf("expected ErrInvalidKind, got %v", err)
	}
}

func TestBudgetService_EntitySummary(t *testing.T) {
	st := memory.New()
	s := newBudgetService(st)
	ctx := context.Background()
	seedEntity(t, st, "e1", 2025, core.StatusConfirmed)

	lines := []core.BudgetLine{
		line("e1", "Biglietteria", core.Income, 100000, cents(90000)),
		line("e1", "Location", core.Expense, 40000, cents(45000)),
	}
	if err := s.ReplaceLines(ctx, "e1", lines); err != nil {
		t.Fatalf("ReplaceLines: %v", err)
	}

	_, sum, err := s.EntitySummary(ctx, "e1")
	if err != nil {
		t.Fatalf("EntitySummary: %v", err)
	}
	if sum.Medium.ResultAllocated.Cents != 60000 || sum.ResultActual.Cents != 45000 {
		t.Errorf("unexpected summary %+v", sum)
	}

	if _, _, err := s.EntitySummary(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestBudgetService_LineReports(t *testing.T) {
	st := memory.New()
	s := newBudgetService(st)
	ctx := context.Background()
	seedEntity(t, st, "e1", 2025, core.StatusDraft)

	low := line("e1", "Sponsor", core.Income, 100000, cents(70000))
	low.AllocatedLow = core.Cents(70000).Ptr()
	if err := s.ReplaceLines(ctx, "e1", []core.BudgetLine{low}); err != nil {
		t.Fatalf("ReplaceLines: %v", err)
	}

	tests := []struct {
		sc   budget.Scenario
		want budget.LineStatus
	}{
		{budget.Low, budget.StatusOK},
		{budget.Medium, budget.StatusUnderTarget},
		{budget.High, budget.StatusUnderTarget},
	}
	for _, tt := range tests {
		t.Run(tt.sc.String(), func(t *testing.T) {
			reports, err := s.LineReports(ctx, "e1", tt.sc)
			if err != nil {
				t.Fatalf("LineReports: %v", err)
			}
			if len(reports) != 1 || reports[0].Status != tt.want {
				t.Errorf("got %+v, want status %s", reports, tt.want)
			}
		})
	}
}

func TestBudgetService_ReplaceLines(t *testing.T) {
	ctx := context.Background()

	t.Run("replaces whole set and assigns ids", func(t *testing.T) {
		st := memory.New()
		s := newBudgetService(st)
		seedEntity(t, st, "e1", 2025, core.StatusDraft)

		_ = s.ReplaceLines(ctx, "e1", []core.BudgetLine{line("e1", "Old", core.Expense, 100, nil)})
		if err := s.ReplaceLines(ctx, "e1", []core.BudgetLine{
			line("", "A", core.Expense, 200, nil),
			line("", "B", core.Income, 300, nil),
		}); err != nil {
			t.Fatalf("ReplaceLines: %v", err)
		}

		got, _ := st.ListLines(ctx, "e1")
		if len(got) != 2 {
			t.Fatalf("expected 2 lines, got %d", len(got))
		}
		for _, l := range got {
			if l.ID == "" || l.EntityID != "e1" || l.Category == "Old" {
				t.Errorf("unexpected line %+v", l)
			}
		}
	})

	t.Run("rejects invalid line before touching store", func(t *testing.T) {
		st := memory.New()
		s := newBudgetService(st)
		seedEntity(t, st, "e1", 2025, core.StatusDraft)
		_ = s.ReplaceLines(ctx, "e1", []core.BudgetLine{line("e1", "Keep", core.Expense, 100, nil)})

		err := s.ReplaceLines(ctx, "e1", []core.BudgetLine{line("e1", "Bad", core.Expense, -1, nil)})
		if !errors.Is(err, core.ErrNegativeAmount) {
			t.Fatalf("expected ErrNegativeAmount, got %v", err)
		}
		got, _ := st.ListLines(ctx, "e1")
		if len(got) != 1 || got[0].Category != "Keep" {
			t.Errorf("existing lines should be untouched, got %+v", got)
		}
	})

	t.Run("unknown entity", func(t *testing.T) {
		s := newBudgetService(memory.New())
		if err := s.ReplaceLines(ctx, "nope", nil); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("two-phase fallback leaves entity empty on insert failure", func(t *testing.T) {
		st := memory.New()
		seedEntity(t, st, "e1", 2025, core.StatusDraft)
		_ = st.InsertLines(ctx, []core.BudgetLine{{ID: "x", EntityID: "e1", Category: "Old", Type: core.Expense}})

		boom := errors.New("disk full")
		s := NewBudgetService(st, &twoPhaseLines{LineStore: st, insertErr: boom}, st)
		err := s.ReplaceLines(ctx, "e1", []core.BudgetLine{line("e1", "New", core.Expense, 100, nil)})
		if !errors.Is(err, boom) {
			t.Fatalf("expected insert error, got %v", err)
		}
		got, _ := st.ListLines(ctx, "e1")
		if len(got) != 0 {
			t.Errorf("expected no lines after failed two-phase replace, got %+v", got)
		}
	})

	t.Run("two-phase fallback succeeds", func(t *testing.T) {
		st := memory.New()
		seedEntity(t, st, "e1", 2025, core.StatusDraft)
		s := NewBudgetService(st, &twoPhaseLines{LineStore: st}, st)
		if err := s.ReplaceLines(ctx, "e1", []core.BudgetLine{line("e1", "New", core.Expense, 100, nil)}); err != nil {
			t.Fatalf("ReplaceLines: %v", err)
		}
		got, _ := st.ListLines(ctx, "e1")
		if len(got) != 1 {
			t.Errorf("expected 1 line, got %d", len(got))
		}
	})
}

func TestBudgetService_ApplyTemplate(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	s := newBudgetService(st)
	seedEntity(t, st, "e1", 2025, core.StatusDraft)
	for _, tpl := range budget.DefaultCatalog() {
		_ = st.SaveTemplate(ctx, tpl)
	}
	_ = s.ReplaceLines(ctx, "e1", []core.BudgetLine{line("e1", "Manual", core.Expense, 5000, cents(5000))})

	lines, err := s.ApplyTemplate(ctx, "e1", "default-event")
	if err != nil {
		t.Fatalf("ApplyTemplate: %v", err)
	}
	tpl, _ := budget.DefaultCatalog().Lookup("default-event")
	if len(lines) != len(tpl.Lines) {
		t.Fatalf("expected %d lines, got %d", len(tpl.Lines), len(lines))
	}

	stored, _ := st.ListLines(ctx, "e1")
	if len(stored) != len(tpl.Lines) {
		t.Fatalf("stored %d lines, want %d", len(stored), len(tpl.Lines))
	}
	for _, l := range stored {
		if l.Category == "Manual" || l.Actual != nil {
			t.Errorf("template lines must replace existing ones without actuals, got %+v", l)
		}
	}

	if _, err := s.ApplyTemplate(ctx, "e1", "missing"); !errors.Is(err, budget.ErrTemplateNotFound) {
		t.Errorf("expected ErrTemplateNotFound, got %v", err)
	}
}

func TestBudgetService_ApplyTemplateFromCatalog(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	s := newBudgetService(st)
	seedEntity(t, st, "e1", 2025, core.StatusDraft)

	stored := core.BudgetTemplate{ID: "festival", Name: "Festival", Lines: []core.TemplateLine{
		{Category: "Stored", Type: core.Expense},
	}}
	if err := st.SaveTemplate(ctx, stored); err != nil {
		t.Fatalf("SaveTemplate: %v", err)
	}
	s.UseCatalog(budget.Catalog{
		{ID: "festival", Name: "Festival", Lines: []core.TemplateLine{
			{Category: "Palco", Type: core.Expense, SortOrder: 1},
			{Category: "Biglietti", Type: core.Income, SortOrder: 0},
		}},
	})

	lines, err := s.ApplyTemplate(ctx, "e1", "festival")
	if err != nil {
		t.Fatalf("ApplyTemplate: %v", err)
	}
	if len(lines) != 2 || lines[0].Category != "Biglietti" || lines[1].Category != "Palco" {
		t.Fatalf("catalog template should win over stored copy, got %+v", lines)
	}

	tests := []struct {
		name       string
		templateID string
		wantErr    error
		wantLines  int
	}{
		{"falls back to store", "default-project", nil, 5},
		{"unknown everywhere", "missing", budget.ErrTemplateNotFound, 0},
	}
	for _, tpl := range budget.DefaultCatalog() {
		_ = st.SaveTemplate(ctx, tpl)
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines, err := s.ApplyTemplate(ctx, "e1", tt.templateID)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ApplyTemplate(%q) error = %v, want %v", tt.templateID, err, tt.wantErr)
			}
			if len(lines) != tt.wantLines {
				t.Errorf("got %d lines, want %d", len(lines), tt.wantLines)
			}
		})
	}
}
