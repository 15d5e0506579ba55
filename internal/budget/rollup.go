package budget

import "bilancio/internal/core"

// DashboardKPIs are organization-level figures over a set of entities.
//
// Every entity counts toward TotalEntities, but only entities with at least one
// line contribute to the monetary totals, so Coverage reflects how many
// entities have been budgeted at all.
type DashboardKPIs struct {
	TotalEntities      int
	EntitiesWithBudget int

	TotalRevenueAllocated core.Money
	TotalExpenseAllocated core.Money
	TotalBudget           core.Money // baseline result
	TotalBudgetLow        core.Money
	TotalBudgetHigh       core.Money
	TotalActual           core.Money
}

// Coverage is the share of entities that have a budget, between 0 and 1.
func (k DashboardKPIs) Coverage() float64 {
	if k.TotalEntities == 0 {
		return 0
	}
	return float64(k.EntitiesWithBudget) / float64(k.TotalEntities)
}

// Gap is the difference between the realized and the planned baseline result.
func (k DashboardKPIs) Gap() core.Money {
	return k.TotalActual.Sub(k.TotalBudget)
}

// Rollup aggregates already-filtered summaries. It does no filtering itself.
func Rollup(summaries []EntityBudgetSummary) DashboardKPIs {
	var k DashboardKPIs
	for _, s := range summaries {
		k.TotalEntities++
		if !s.HasBudget() {
			continue
		}
		k.EntitiesWithBudget++
		k.TotalRevenueAllocated = k.TotalRevenueAllocated.Add(s.Medium.RevenueAllocated)
		k.TotalExpenseAllocated = k.TotalExpenseAllocated.Add(s.Medium.ExpenseAllocated)
		k.TotalBudget = k.TotalBudget.Add(s.Medium.ResultAllocated)
		k.TotalBudgetLow = k.TotalBudgetLow.Add(s.Low.ResultAllocated)
		k.TotalBudgetHigh = k.TotalBudgetHigh.Add(s.High.ResultAllocated)
		k.TotalActual = k.TotalActual.Add(s.ResultActual)
	}
	return k
}
