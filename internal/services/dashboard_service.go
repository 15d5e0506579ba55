package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"bilancio/internal/budget"
	"bilancio/internal/core"
	"bilancio/internal/log"
	"bilancio/internal/sheets"
	"bilancio/internal/storage"
)

var ErrExportDisabled = errors.New("sheets export not configured")

const defaultDashboardConcurrency = 8

// Dashboard is an organization-level view over a filtered set of entities.
type Dashboard struct {
	Filter   budget.EntityFilter
	Scenario budget.Scenario
	Rows     []sheets.SummaryRow
	KPIs     budget.DashboardKPIs
}

// ScenarioBudget is the total planned result under the dashboard scenario.
func (d Dashboard) ScenarioBudget() core.Money {
	switch d.Scenario {
	case budget.Low:
		return d.KPIs.TotalBudgetLow
	case budget.High:
		return d.KPIs.TotalBudgetHigh
	default:
		return d.KPIs.TotalBudget
	}
}

type DashboardService struct {
	entities    storage.EntityStore
	lines       storage.LineStore
	exporter    sheets.SummaryExporter
	concurrency int
	now         func() time.Time
}

// NewDashboardService creates the dashboard loader. exporter may be nil.
func NewDashboardService(entities storage.EntityStore, lines storage.LineStore, exporter sheets.SummaryExporter, concurrency int) *DashboardService {
	if concurrency < 1 {
		concurrency = defaultDashboardConcurrency
	}
	return &DashboardService{
		entities:    entities,
		lines:       lines,
		exporter:    exporter,
		concurrency: concurrency,
		now:         time.Now,
	}
}

// Build loads the filtered entities, fetches their lines concurrently and
// rolls the summaries up. Rows keep the store's entity order.
func (s *DashboardService) Build(ctx context.Context, f budget.EntityFilter, sc budget.Scenario) (Dashboard, error) {
	start := time.Now()

	entities, err := s.entities.ListEntities(ctx, f)
	if err != nil {
		return Dashboard{}, fmt.Errorf("list entities: %w", err)
	}

	summaries := make([]budget.EntityBudgetSummary, len(entities))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, e := range entities {
		g.Go(func() error {
			lines, err := s.lines.ListLines(gctx, e.ID)
			if err != nil {
				return fmt.Errorf("load lines for %s: %w", e.ID, err)
			}
			summaries[i] = budget.Summarize(e.ID, lines)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Dashboard{}, err
	}

	rows := make([]sheets.SummaryRow, len(entities))
	for i, e := range entities {
		rows[i] = sheets.SummaryRow{Entity: e, Summary: summaries[i]}
	}

	d := Dashboard{
		Filter:   f,
		Scenario: sc,
		Rows:     rows,
		KPIs:     budget.Rollup(summaries),
	}

	log.FromContext(ctx).WithComponent(log.ComponentDashboard).DebugContext(ctx, "Dashboard built",
		log.FieldCount, d.KPIs.TotalEntities,
		"with_budget", d.KPIs.EntitiesWithBudget,
		log.FieldScenario, sc.String(),
		log.FieldDuration, time.Since(start).Milliseconds())
	return d, nil
}

// Export writes the dashboard to the configured sheet. A dashboard built
// without a year filter is exported under the current year.
func (s *DashboardService) Export(ctx context.Context, d Dashboard) (string, error) {
	if s.exporter == nil {
		return "", ErrExportDisabled
	}
	year := d.Filter.Year
	if year == 0 {
		year = s.now().Year()
	}
	ref, err := s.exporter.ExportSummaries(ctx, year, d.Rows, d.KPIs)
	if err != nil {
		return "", fmt.Errorf("export dashboard: %w", err)
	}
	log.FromContext(ctx).WithComponent(log.ComponentDashboard).InfoContext(ctx, "Dashboard exported",
		log.FieldOperation, log.OpExport,
		log.FieldYear, year,
		"ref", ref)
	return ref, nil
}
