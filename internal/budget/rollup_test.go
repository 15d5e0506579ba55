package budget

import (
	"testing"

	"bilancio/internal/core"
)

func TestRollup_EntitiesWithoutLinesOnlyCount(t *testing.T) {
	withLines := Summarize("a", []core.BudgetLine{
		{Type: core.Income, Allocated: core.Cents(1000), AllocatedLow: core.Cents(600).Ptr(), Actual: core.Cents(900).Ptr()},
		{Type: core.Expense, Allocated: core.Cents(700), Actual: core.Cents(750).Ptr()},
	})
	empty := Summarize("b", nil)

	before := Rollup([]EntityBudgetSummary{withLines})
	after := Rollup([]EntityBudgetSummary{withLines, empty})

	if after.TotalEntities != before.TotalEntities+1 {
		t.Fatalf("TotalEntities = %d, want %d", after.TotalEntities, before.TotalEntities+1)
	}
	if after.EntitiesWithBudget != 1 {
		t.Fatalf("EntitiesWithBudget = %d, want 1", after.EntitiesWithBudget)
	}
	if after.TotalRevenueAllocated != before.TotalRevenueAllocated || after.TotalExpenseAllocated != before.TotalExpenseAllocated {
		t.Fatalf("empty entity must not change allocated totals")
	}
	if after.TotalBudget.Cents != 300 || after.TotalActual.Cents != 150 {
		t.Fatalf("TotalBudget/TotalActual = %d/%d, want 300/150", after.TotalBudget.Cents, after.TotalActual.Cents)
	}
	if after.TotalBudgetLow.Cents != -100 || after.TotalBudgetHigh.Cents != 300 {
		t.Fatalf("scenario budgets = %d/%d, want -100/300", after.TotalBudgetLow.Cents, after.TotalBudgetHigh.Cents)
	}
	if got := after.Coverage(); got != 0.5 {
		t.Fatalf("Coverage = %v, want 0.5", got)
	}
	if got := after.Gap(); got.Cents != -150 {
		t.Fatalf("Gap = %d, want -150", got.Cents)
	}
}

func TestRollup_SumsAcrossEntities(t *testing.T) {
	var summaries []EntityBudgetSummary
	for i, rev := range []int64{1000, 2000, 3000} {
		summaries = append(summaries, Summarize(string(rune('a'+i)), []core.BudgetLine{
			{Type: core.Income, Allocated: core.Cents(rev), Actual: core.Cents(rev).Ptr()},
			{Type: core.Expense, Allocated: core.Cents(500), Actual: core.Cents(400).Ptr()},
		}))
	}
	k := Rollup(summaries)
	if k.TotalRevenueAllocated.Cents != 6000 || k.TotalExpenseAllocated.Cents != 1500 {
		t.Fatalf("allocated totals = %d/%d", k.TotalRevenueAllocated.Cents, k.TotalExpenseAllocated.Cents)
	}
	if k.TotalBudget.Cents != 4500 || k.TotalActual.Cents != 4800 {
		t.Fatalf("budget/actual = %d/%d", k.TotalBudget.Cents, k.TotalActual.Cents)
	}
}

func TestRollup_Empty(t *testing.T) {
	k := Rollup(nil)
	if (k != DashboardKPIs{}) || k.Coverage() != 0 {
		t.Fatalf("empty rollup should be zero, got %+v", k)
	}
}

func TestFilterEntities(t *testing.T) {
	entities := []core.Entity{
		{ID: "1", Year: 2024, Status: core.StatusCompleted},
		{ID: "2", Year: 2025, Status: core.StatusConfirmed},
		{ID: "3", Year: 2025, Status: core.StatusDraft},
	}
	tests := []struct {
		name string
		f    EntityFilter
		want []string
	}{
		{"all", EntityFilter{}, []string{"1", "2", "3"}},
		{"year", EntityFilter{Year: 2025}, []string{"2", "3"}},
		{"status", EntityFilter{Status: core.StatusCompleted}, []string{"1"}},
		{"both", EntityFilter{Year: 2025, Status: core.StatusDraft}, []string{"3"}},
		{"none", EntityFilter{Year: 2030}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterEntities(entities, tt.f)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d entities, want %d", len(got), len(tt.want))
			}
			for i, e := range got {
				if e.ID != tt.want[i] {
					t.Fatalf("entity %d = %s, want %s", i, e.ID, tt.want[i])
				}
			}
		})
	}
}
