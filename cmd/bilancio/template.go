package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"bilancio/internal/budget"
	"bilancio/internal/cli"
	"bilancio/internal/config"
	"bilancio/internal/services"
)

var (
	flagCatalogFile  string
	flagTemplateID   string
	flagTemplateName string
)

var templateCmd = &cobra.Command{
	Use:   "template",
	Short: "Manage budget templates",
}

var templateListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored templates",
	Args:  cobra.NoArgs,
	RunE:  runTemplateList,
}

var templateSeedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Store the built-in templates and the templates of the catalog file",
	Args:  cobra.NoArgs,
	RunE:  runTemplateSeed,
}

var templateApplyCmd = &cobra.Command{
	Use:   "apply <template> <entity>",
	Short: "Replace the lines of an entity with a template",
	Args:  cobra.ExactArgs(2),
	RunE:  runTemplateApply,
}

var templateCaptureCmd = &cobra.Command{
	Use:   "capture <entity>",
	Short: "Save the baseline lines of an entity as a new template",
	Args:  cobra.ExactArgs(1),
	RunE:  runTemplateCapture,
}

var templateDeleteCmd = &cobra.Command{
	Use:   "delete <template>",
	Short: "Delete a template (built-in templates are protected)",
	Args:  cobra.ExactArgs(1),
	RunE:  runTemplateDelete,
}

func init() {
	templateSeedCmd.Flags().StringVar(&flagCatalogFile, "file", "", "Catalog file (defaults to TEMPLATE_CATALOG_FILE)")
	templateApplyCmd.Flags().StringVar(&flagCatalogFile, "file", "", "Catalog file whose templates win over stored ones (defaults to TEMPLATE_CATALOG_FILE)")
	templateCaptureCmd.Flags().StringVar(&flagTemplateID, "id", "", "Template identifier")
	templateCaptureCmd.Flags().StringVar(&flagTemplateName, "name", "", "Template name")
	templateCaptureCmd.Flags().StringVar(&flagCatalogFile, "file", "", "Catalog file to append to (defaults to TEMPLATE_CATALOG_FILE)")
	_ = templateCaptureCmd.MarkFlagRequired("id")
	_ = templateCaptureCmd.MarkFlagRequired("name")

	templateCmd.AddCommand(templateListCmd, templateSeedCmd, templateApplyCmd, templateCaptureCmd, templateDeleteCmd)
	rootCmd.AddCommand(templateCmd)
}

func catalogPath() string {
	if flagCatalogFile != "" {
		return flagCatalogFile
	}
	return current.cfg.TemplateCatalogFile
}

func runTemplateList(cmd *cobra.Command, _ []string) error {
	tpls, err := current.templates.List(ctxOf(cmd))
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(tpls) == 0 {
		fmt.Fprintln(out, "\n  No templates stored. Run `bilancio template seed`.")
		return nil
	}

	rows := make([][]string, 0, len(tpls))
	for _, t := range tpls {
		def := ""
		if t.IsDefault {
			def = "yes"
		}
		rows = append(rows, []string{t.Name, t.ID, strconv.Itoa(len(t.Lines)), def})
	}
	fmt.Fprintln(out)
	fmt.Fprint(out, cli.RenderTable(cli.Table{
		Headers: []string{"Name", "ID", "Lines", "Built-in"},
		Rows:    rows,
	}))
	return nil
}

func runTemplateSeed(cmd *cobra.Command, _ []string) error {
	userCatalog, err := config.LoadCatalog(catalogPath())
	if err != nil {
		return err
	}
	catalog := append(budget.DefaultCatalog(), userCatalog...)
	n, err := current.templates.Seed(ctxOf(cmd), catalog)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d templates (%d from %s)\n", n, len(userCatalog), catalogPath())
	return nil
}

func runTemplateApply(cmd *cobra.Command, args []string) error {
	catalog, err := config.LoadCatalog(catalogPath())
	if err != nil {
		return err
	}
	current.budgets.UseCatalog(catalog)

	lines, err := current.budgets.ApplyTemplate(ctxOf(cmd), args[1], args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Applied template %s to %s: %d lines\n", args[0], args[1], len(lines))
	return nil
}

func runTemplateCapture(cmd *cobra.Command, args []string) error {
	ctx := ctxOf(cmd)
	_, sum, err := current.budgets.EntitySummary(ctx, args[0])
	if err != nil {
		return err
	}
	tpl := services.FromLines(flagTemplateID, flagTemplateName, sum.Lines)
	if err := current.templates.Save(ctx, tpl); err != nil {
		return err
	}

	path := catalogPath()
	catalog, err := config.LoadCatalog(path)
	if err != nil {
		return err
	}
	replaced := false
	for i := range catalog {
		if catalog[i].ID == tpl.ID {
			catalog[i] = tpl
			replaced = true
		}
	}
	if !replaced {
		catalog = append(catalog, tpl)
	}
	if err := config.SaveCatalog(path, catalog); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Saved template %s with %d lines to %s\n", tpl.ID, len(tpl.Lines), path)
	return nil
}

func runTemplateDelete(cmd *cobra.Command, args []string) error {
	if err := current.templates.Delete(ctxOf(cmd), args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted template %s\n", args[0])
	return nil
}
