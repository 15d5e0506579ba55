package sheets

import (
	"context"

	"bilancio/internal/budget"
	"bilancio/internal/core"
)

// SummaryRow is one entity as it appears in an exported dashboard.
type SummaryRow struct {
	Entity  core.Entity
	Summary budget.EntityBudgetSummary
}

// SummaryExporter publishes a dashboard snapshot to an external sheet.
type SummaryExporter interface {
	// ExportSummaries overwrites the year's sheet and returns a reference to
	// the written range.
	ExportSummaries(ctx context.Context, year int, rows []SummaryRow, kpis budget.DashboardKPIs) (ref string, err error)
}
