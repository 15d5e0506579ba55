package google

import (
	"bilancio/internal/budget"
	ports "bilancio/internal/sheets"
)

var header = []any{"Entità", "Tipo", "Stato", "Risultato basso", "Risultato medio", "Risultato alto", "Risultato effettivo", "Righe"}

// buildRows lays out the export: header, one row per entity, a blank row and
// the KPI footer. Amounts are euros so the sheet can format them.
func buildRows(rows []ports.SummaryRow, kpis budget.DashboardKPIs) [][]any {
	out := make([][]any, 0, len(rows)+7)
	out = append(out, header)
	for _, r := range rows {
		s := r.Summary
		out = append(out, []any{
			r.Entity.Name,
			string(r.Entity.Kind),
			string(r.Entity.Status),
			s.Low.ResultAllocated.Euros(),
			s.Medium.ResultAllocated.Euros(),
			s.High.ResultAllocated.Euros(),
			s.ResultActual.Euros(),
			len(s.Lines),
		})
	}
	out = append(out,
		[]any{},
		[]any{"Entità totali", kpis.TotalEntities},
		[]any{"Entità con budget", kpis.EntitiesWithBudget},
		[]any{"Budget totale", kpis.TotalBudget.Euros(), kpis.TotalBudgetLow.Euros(), kpis.TotalBudgetHigh.Euros()},
		[]any{"Effettivo totale", kpis.TotalActual.Euros()},
		[]any{"Copertura", kpis.Coverage()},
	)
	return out
}
