package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"bilancio/internal/budget"
	"bilancio/internal/cli"
	"bilancio/internal/core"
	"bilancio/internal/storage"
)

var (
	flagRuleLabel     string
	flagRuleType      string
	flagRuleAmount    string
	flagRuleCategory  string
	flagRuleFrequency string
	flagRuleDay       int
	flagRuleStart     string
	flagRuleInactive  bool

	flagRuleActive bool
	flagGenDate    string
	flagEntryRule  string
)

var recurringCmd = &cobra.Command{
	Use:   "recurring",
	Short: "Manage recurring rules and generate their ledger entries",
}

var recurringAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a recurring rule",
	Args:  cobra.NoArgs,
	RunE:  runRecurringAdd,
}

var recurringListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recurring rules",
	Args:  cobra.NoArgs,
	RunE:  runRecurringList,
}

var recurringToggleCmd = &cobra.Command{
	Use:   "toggle <rule>",
	Short: "Activate or pause a rule",
	Args:  cobra.ExactArgs(1),
	RunE:  runRecurringToggle,
}

var recurringGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Write every occurrence due up to a date (today by default)",
	Args:  cobra.NoArgs,
	RunE:  runRecurringGenerate,
}

var recurringEntriesCmd = &cobra.Command{
	Use:   "entries",
	Short: "List generated ledger entries",
	Args:  cobra.NoArgs,
	RunE:  runRecurringEntries,
}

func init() {
	f := recurringAddCmd.Flags()
	f.StringVar(&flagRuleLabel, "label", "", "Entry label")
	f.StringVar(&flagRuleType, "type", string(core.Expense), "Entry type (income, expense)")
	f.StringVar(&flagRuleAmount, "amount", "", "Amount in euros, e.g. 120.50")
	f.StringVar(&flagRuleCategory, "category", "", "Category")
	f.StringVar(&flagRuleFrequency, "frequency", string(core.Monthly), "Frequency (monthly, quarterly, annual)")
	f.IntVar(&flagRuleDay, "day", 1, "Day of month (1-31, clamped to short months)")
	f.StringVar(&flagRuleStart, "start", "", "First occurrence YYYY-MM-DD (next matching day when empty)")
	f.BoolVar(&flagRuleInactive, "inactive", false, "Create the rule paused")
	_ = recurringAddCmd.MarkFlagRequired("label")
	_ = recurringAddCmd.MarkFlagRequired("amount")
	_ = recurringAddCmd.MarkFlagRequired("category")

	recurringToggleCmd.Flags().BoolVar(&flagRuleActive, "active", true, "Whether the rule generates entries")
	recurringGenerateCmd.Flags().StringVar(&flagGenDate, "date", "", "Generate as of this date YYYY-MM-DD")
	recurringEntriesCmd.Flags().StringVar(&flagEntryRule, "rule", "", "Only entries of this rule")

	recurringCmd.AddCommand(recurringAddCmd, recurringListCmd, recurringToggleCmd, recurringGenerateCmd, recurringEntriesCmd)
	rootCmd.AddCommand(recurringCmd)
}

// localToday is the user's calendar day at now, as a date.
func localToday(now time.Time) core.Date {
	y, m, d := now.Date()
	return core.NewDate(y, int(m), d)
}

// firstOccurrence is the first date on or after today falling on day,
// clamped to the end of short months.
func firstOccurrence(today core.Date, day int) (core.Date, error) {
	if day < 1 || day > 31 {
		return core.Date{}, core.ErrInvalidDayOfMonth
	}
	last := time.Date(today.Year(), today.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
	d := core.NewDate(today.Year(), int(today.Month()), min(day, last))
	if d.Before(today.Time) {
		return budget.Advance(d, core.Monthly, day)
	}
	return d, nil
}

func runRecurringAdd(cmd *cobra.Command, _ []string) error {
	amount, err := core.ParseAmount(flagRuleAmount)
	if err != nil {
		return fmt.Errorf("amount: %w", err)
	}

	var next core.Date
	if flagRuleStart != "" {
		if next, err = core.ParseDate(flagRuleStart); err != nil {
			return err
		}
	} else if next, err = firstOccurrence(localToday(time.Now()), flagRuleDay); err != nil {
		return err
	}

	r, err := current.recurring.AddRule(ctxOf(cmd), core.RecurringRule{
		Label:          flagRuleLabel,
		Type:           core.LineType(flagRuleType),
		Amount:         amount,
		Category:       flagRuleCategory,
		Frequency:      core.Frequency(flagRuleFrequency),
		DayOfMonth:     flagRuleDay,
		IsActive:       !flagRuleInactive,
		NextOccurrence: next,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created rule %s, first occurrence %s\n", r.ID, r.NextOccurrence)
	return nil
}

func runRecurringList(cmd *cobra.Command, _ []string) error {
	rules, err := current.recurring.ListRules(ctxOf(cmd))
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(rules) == 0 {
		fmt.Fprintln(out, "\n  No recurring rules.")
		return nil
	}

	rows := make([][]string, 0, len(rules))
	for _, r := range rules {
		active := "paused"
		if r.IsActive {
			active = "active"
		}
		rows = append(rows, []string{
			cli.Truncate(r.Label, 24),
			r.ID,
			string(r.Type),
			cli.FormatMoney(r.Amount),
			string(r.Frequency),
			strconv.Itoa(r.DayOfMonth),
			r.NextOccurrence.String(),
			active,
		})
	}
	fmt.Fprintln(out)
	fmt.Fprint(out, cli.RenderTable(cli.Table{
		Headers: []string{"Label", "ID", "Type", "Amount", "Every", "Day", "Next", "State"},
		Rows:    rows,
	}))
	return nil
}

func runRecurringToggle(cmd *cobra.Command, args []string) error {
	if err := current.recurring.SetActive(ctxOf(cmd), args[0], flagRuleActive); err != nil {
		return err
	}
	state := "paused"
	if flagRuleActive {
		state = "active"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Rule %s is now %s\n", args[0], state)
	return nil
}

func runRecurringGenerate(cmd *cobra.Command, _ []string) error {
	today := localToday(time.Now())
	if flagGenDate != "" {
		d, err := core.ParseDate(flagGenDate)
		if err != nil {
			return err
		}
		today = d
	}
	n, err := current.recurring.GenerateDue(ctxOf(cmd), today.Time)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Generated %d entries as of %s\n", n, today)
	return nil
}

func runRecurringEntries(cmd *cobra.Command, _ []string) error {
	entries, err := current.backend.Ledger.ListEntries(ctxOf(cmd), storage.LedgerFilter{RuleID: flagEntryRule})
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(entries) == 0 {
		fmt.Fprintln(out, "\n  No ledger entries.")
		return nil
	}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			e.Date.String(),
			cli.Truncate(e.Label, 24),
			string(e.Type),
			e.Category,
			cli.FormatMoney(e.Amount),
			string(e.Status),
		})
	}
	fmt.Fprintln(out)
	fmt.Fprint(out, cli.RenderTable(cli.Table{
		Headers: []string{"Date", "Label", "Type", "Category", "Amount", "Status"},
		Rows:    rows,
	}))
	return nil
}
