package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"bilancio/internal/budget"
	"bilancio/internal/cli"
	"bilancio/internal/core"
)

var (
	flagEntityKind   string
	flagEntityName   string
	flagEntityYear   int
	flagEntityStatus string
	flagEntityID     string

	flagFilterYear   int
	flagFilterStatus string
)

var entityCmd = &cobra.Command{
	Use:   "entity",
	Short: "Manage events and projects",
}

var entityAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create an event or project",
	Args:  cobra.NoArgs,
	RunE:  runEntityAdd,
}

var entityListCmd = &cobra.Command{
	Use:   "list",
	Short: "List entities with their baseline result",
	Args:  cobra.NoArgs,
	RunE:  runEntityList,
}

func init() {
	entityAddCmd.Flags().StringVar(&flagEntityKind, "kind", string(core.KindEvent), "Entity kind (event, project)")
	entityAddCmd.Flags().StringVar(&flagEntityName, "name", "", "Display name")
	entityAddCmd.Flags().IntVar(&flagEntityYear, "year", 0, "Budget year")
	entityAddCmd.Flags().StringVar(&flagEntityStatus, "status", string(core.StatusDraft), "Status (draft, confirmed, completed, cancelled)")
	entityAddCmd.Flags().StringVar(&flagEntityID, "id", "", "Identifier (generated when empty)")
	_ = entityAddCmd.MarkFlagRequired("name")
	_ = entityAddCmd.MarkFlagRequired("year")

	entityListCmd.Flags().IntVar(&flagFilterYear, "year", 0, "Only entities of this year")
	entityListCmd.Flags().StringVar(&flagFilterStatus, "status", "", "Only entities with this status")

	entityCmd.AddCommand(entityAddCmd, entityListCmd)
	rootCmd.AddCommand(entityCmd)
}

func runEntityAdd(cmd *cobra.Command, _ []string) error {
	e, err := current.budgets.CreateEntity(ctxOf(cmd), core.Entity{
		ID:     flagEntityID,
		Kind:   core.EntityKind(flagEntityKind),
		Name:   flagEntityName,
		Year:   flagEntityYear,
		Status: core.EntityStatus(flagEntityStatus),
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created %s %q (%s)\n", e.Kind, e.Name, e.ID)
	return nil
}

func entityFilter(year int, status string) (budget.EntityFilter, error) {
	f := budget.EntityFilter{Year: year, Status: core.EntityStatus(status)}
	if status != "" {
		if err := f.Status.Validate(); err != nil {
			return f, err
		}
	}
	return f, nil
}

func runEntityList(cmd *cobra.Command, _ []string) error {
	f, err := entityFilter(flagFilterYear, flagFilterStatus)
	if err != nil {
		return err
	}
	ctx := ctxOf(cmd)
	entities, err := current.budgets.ListEntities(ctx, f)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(entities) == 0 {
		fmt.Fprintln(out, "\n  No entities found.")
		return nil
	}

	rows := make([][]string, 0, len(entities))
	for _, e := range entities {
		_, sum, err := current.budgets.EntitySummary(ctx, e.ID)
		if err != nil {
			return err
		}
		rows = append(rows, []string{
			cli.Truncate(e.Name, 28),
			e.ID,
			string(e.Kind),
			strconv.Itoa(e.Year),
			cli.RenderEntityStatus(e.Status),
			strconv.Itoa(len(sum.Lines)),
			cli.RenderResult(sum.Medium.ResultAllocated),
		})
	}

	fmt.Fprintln(out)
	fmt.Fprint(out, cli.RenderTable(cli.Table{
		Headers: []string{"Name", "ID", "Kind", "Year", "Status", "Lines", "Result"},
		Rows:    rows,
	}))
	return nil
}
