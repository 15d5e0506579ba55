package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"bilancio/internal/budget"
	"bilancio/internal/cli"
	"bilancio/internal/config"
)

var (
	flagScenario  string
	flagLinesFile string
)

var budgetCmd = &cobra.Command{
	Use:   "budget",
	Short: "Inspect and replace entity budgets",
}

var budgetShowCmd = &cobra.Command{
	Use:   "show <entity>",
	Short: "Show lines, statuses and scenario totals for an entity",
	Args:  cobra.ExactArgs(1),
	RunE:  runBudgetShow,
}

var budgetReplaceCmd = &cobra.Command{
	Use:   "replace <entity>",
	Short: "Replace every line of an entity with the lines of a TOML file",
	Args:  cobra.ExactArgs(1),
	RunE:  runBudgetReplace,
}

func init() {
	budgetShowCmd.Flags().StringVarP(&flagScenario, "scenario", "s", "medium", "Scenario (low, medium, high)")
	budgetReplaceCmd.Flags().StringVarP(&flagLinesFile, "file", "f", "", "TOML file with [[line]] tables")
	_ = budgetReplaceCmd.MarkFlagRequired("file")

	budgetCmd.AddCommand(budgetShowCmd, budgetReplaceCmd)
	rootCmd.AddCommand(budgetCmd)
}

func runBudgetShow(cmd *cobra.Command, args []string) error {
	sc, err := budget.ParseScenario(flagScenario)
	if err != nil {
		return err
	}
	ctx := ctxOf(cmd)
	e, sum, err := current.budgets.EntitySummary(ctx, args[0])
	if err != nil {
		return err
	}
	reports, err := current.budgets.LineReports(ctx, e.ID, sc)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out)
	fmt.Fprintln(out, cli.RenderTitle(fmt.Sprintf("%s  %d  [%s]", e.Name, e.Year, sc)))
	fmt.Fprintln(out)

	if len(reports) == 0 {
		fmt.Fprintln(out, "  No budget lines. Apply a template or replace the lines from a file.")
		return nil
	}

	rows := make([][]string, 0, len(reports))
	for _, r := range reports {
		rows = append(rows, []string{
			cli.Truncate(r.Line.Category, 24),
			string(r.Line.Type),
			cli.FormatMoney(r.Allocated),
			cli.FormatOptionalMoney(r.Line.Actual),
			cli.FormatPercent(r.Percentage),
			cli.RenderLineStatus(r.Status),
		})
	}
	fmt.Fprint(out, cli.RenderTable(cli.Table{
		Headers: []string{"Category", "Type", "Allocated", "Actual", "%", "Status"},
		Rows:    rows,
	}))
	fmt.Fprintln(out)

	srows := make([][]string, 0, 4)
	for _, s := range budget.Scenarios() {
		t := sum.Totals(s)
		srows = append(srows, []string{
			s.String(),
			cli.FormatMoney(t.RevenueAllocated),
			cli.FormatMoney(t.ExpenseAllocated),
			cli.RenderResult(t.ResultAllocated),
		})
	}
	srows = append(srows, []string{"---"}, []string{
		"actual",
		cli.FormatMoney(sum.RevenueActual),
		cli.FormatMoney(sum.ExpenseActual),
		cli.RenderResult(sum.ResultActual),
	})
	fmt.Fprint(out, cli.RenderTable(cli.Table{
		Title:   "Scenarios",
		Headers: []string{"Scenario", "Revenue", "Expense", "Result"},
		Rows:    srows,
	}))
	return nil
}

func runBudgetReplace(cmd *cobra.Command, args []string) error {
	entityID := args[0]
	lines, err := config.LoadLines(flagLinesFile, entityID, nil)
	if err != nil {
		return err
	}
	if err := current.budgets.ReplaceLines(ctxOf(cmd), entityID, lines); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Replaced budget of %s with %d lines\n", entityID, len(lines))
	return nil
}
