package budget

import "bilancio/internal/core"

// ScenarioTotals are the allocated totals of one entity under one scenario.
type ScenarioTotals struct {
	RevenueAllocated core.Money
	ExpenseAllocated core.Money
	ResultAllocated  core.Money // RevenueAllocated - ExpenseAllocated
}

// EntityBudgetSummary is derived from the lines of one entity on every read.
// It is never stored.
type EntityBudgetSummary struct {
	EntityID string
	Low      ScenarioTotals
	Medium   ScenarioTotals
	High     ScenarioTotals

	RevenueActual core.Money
	ExpenseActual core.Money
	ResultActual  core.Money

	Lines []core.BudgetLine
}

// Totals returns the allocated totals for sc.
func (s EntityBudgetSummary) Totals(sc Scenario) ScenarioTotals {
	switch sc {
	case Low:
		return s.Low
	case High:
		return s.High
	default:
		return s.Medium
	}
}

// HasBudget reports whether the entity has at least one line.
func (s EntityBudgetSummary) HasBudget() bool {
	return len(s.Lines) > 0
}

// Summarize totals lines per type for all three scenarios at once. An empty
// line set yields zero totals everywhere.
func Summarize(entityID string, lines []core.BudgetLine) EntityBudgetSummary {
	sum := EntityBudgetSummary{EntityID: entityID, Lines: lines}

	totals := map[Scenario]*ScenarioTotals{Low: &sum.Low, Medium: &sum.Medium, High: &sum.High}
	for _, l := range lines {
		for sc, t := range totals {
			amount := Resolve(l, sc)
			switch l.Type {
			case core.Income:
				t.RevenueAllocated = t.RevenueAllocated.Add(amount)
			case core.Expense:
				t.ExpenseAllocated = t.ExpenseAllocated.Add(amount)
			}
		}

		actual := core.OrZero(l.Actual)
		switch l.Type {
		case core.Income:
			sum.RevenueActual = sum.RevenueActual.Add(actual)
		case core.Expense:
			sum.ExpenseActual = sum.ExpenseActual.Add(actual)
		}
	}

	for _, t := range totals {
		t.ResultAllocated = t.RevenueAllocated.Sub(t.ExpenseAllocated)
	}
	sum.ResultActual = sum.RevenueActual.Sub(sum.ExpenseActual)
	return sum
}
