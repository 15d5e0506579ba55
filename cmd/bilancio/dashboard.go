package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"bilancio/internal/budget"
	"bilancio/internal/cli"
)

var (
	flagDashYear     int
	flagDashStatus   string
	flagDashScenario string
	flagDashExport   bool
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Organization KPIs over the filtered entities",
	Args:  cobra.NoArgs,
	RunE:  runDashboard,
}

func init() {
	dashboardCmd.Flags().IntVar(&flagDashYear, "year", 0, "Only entities of this year")
	dashboardCmd.Flags().StringVar(&flagDashStatus, "status", "", "Only entities with this status")
	dashboardCmd.Flags().StringVarP(&flagDashScenario, "scenario", "s", "medium", "Scenario (low, medium, high)")
	dashboardCmd.Flags().BoolVar(&flagDashExport, "export", false, "Also write the dashboard to Google Sheets")
	rootCmd.AddCommand(dashboardCmd)
}

func runDashboard(cmd *cobra.Command, _ []string) error {
	f, err := entityFilter(flagDashYear, flagDashStatus)
	if err != nil {
		return err
	}
	sc, err := budget.ParseScenario(flagDashScenario)
	if err != nil {
		return err
	}
	ctx := ctxOf(cmd)
	d, err := current.dashboard.Build(ctx, f, sc)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	title := "DASHBOARD  all years"
	if f.Year != 0 {
		title = fmt.Sprintf("DASHBOARD  %d", f.Year)
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, cli.RenderTitle(fmt.Sprintf("%s  [%s]", title, sc)))
	fmt.Fprintln(out)

	if len(d.Rows) > 0 {
		rows := make([][]string, 0, len(d.Rows))
		for _, r := range d.Rows {
			rows = append(rows, []string{
				cli.Truncate(r.Entity.Name, 28),
				cli.RenderEntityStatus(r.Entity.Status),
				strconv.Itoa(len(r.Summary.Lines)),
				cli.RenderResult(r.Summary.Totals(sc).ResultAllocated),
				cli.RenderResult(r.Summary.ResultActual),
			})
		}
		fmt.Fprint(out, cli.RenderTable(cli.Table{
			Headers: []string{"Entity", "Status", "Lines", "Planned", "Actual"},
			Rows:    rows,
		}))
		fmt.Fprintln(out)
	}

	k := d.KPIs
	fmt.Fprint(out, cli.RenderKV([][2]string{
		{"Entities", strconv.Itoa(k.TotalEntities)},
		{"With budget", fmt.Sprintf("%d (%s)", k.EntitiesWithBudget, cli.FormatRatio(k.Coverage()))},
		{"Revenue allocated", cli.FormatMoney(k.TotalRevenueAllocated)},
		{"Expense allocated", cli.FormatMoney(k.TotalExpenseAllocated)},
		{"Planned result (" + sc.String() + ")", cli.RenderResult(d.ScenarioBudget())},
		{"Actual result", cli.RenderResult(k.TotalActual)},
		{"Gap", cli.RenderResult(k.Gap())},
	}))

	if flagDashExport {
		ref, err := current.dashboard.Export(ctx, d)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "\n  Exported to %s\n", ref)
	}
	return nil
}
