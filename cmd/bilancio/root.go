package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"bilancio/internal/backend"
	"bilancio/internal/budget"
	"bilancio/internal/cli"
	"bilancio/internal/config"
	"bilancio/internal/log"
	"bilancio/internal/services"
	"bilancio/internal/trace"
)

var flagBackend string

// app holds everything a command needs once the backend is up.
type app struct {
	cfg     *config.Config
	logger  *log.Logger
	backend *backend.BackendResult
	run     *trace.Run
	ctx     context.Context

	budgets   *services.BudgetService
	templates *services.TemplateService
	recurring *services.RecurringProcessor
	dashboard *services.DashboardService
}

var current *app

var rootCmd = &cobra.Command{
	Use:               "bilancio",
	Short:             "Budget scenarios, rollups and recurring entries",
	Long:              "Plan event and project budgets under low, medium and high scenarios, roll them up per year and generate recurring ledger entries.",
	SilenceUsage:      true,
	PersistentPreRunE: setupApp,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagBackend, "backend", "", "Data backend override (memory, sqlite, postgres)")
}

func setupApp(cmd *cobra.Command, _ []string) error {
	cfg, err := cli.LoadAndValidateConfig(func(c *config.Config) {
		if flagBackend != "" {
			c.DataBackend = flagBackend
		}
	})
	if err != nil {
		return err
	}
	logger := cli.SetupLogger(cfg)
	ctx, run := trace.Start(ctxOf(cmd), logger.Logger, cmd.CommandPath())
	logger = logger.With(log.FieldRunID, trace.GetRunID(ctx))
	ctx = log.NewContext(ctx, logger)
	cmd.SetContext(ctx)

	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return err
	}
	res, err := backend.NewFactory(logger).CreateBackend(ctx, bcfg)
	if err != nil {
		return fmt.Errorf("initialize backend: %w", err)
	}

	a := &app{
		cfg:       cfg,
		logger:    logger,
		backend:   res,
		run:       run,
		ctx:       ctx,
		budgets:   services.NewBudgetService(res.Entities, res.Lines, res.Templates),
		templates: services.NewTemplateService(res.Templates),
		recurring: services.NewRecurringProcessor(res.Rules, res.Ledger),
		dashboard: services.NewDashboardService(res.Entities, res.Lines, res.Exporter, cfg.DashboardConcurrency),
	}

	// An in-memory store starts empty; give it the built-in templates.
	if bcfg.Type == backend.MemoryBackend {
		if _, err := a.templates.Seed(ctx, budget.DefaultCatalog()); err != nil {
			_ = res.Close()
			return err
		}
	}

	current = a
	return nil
}

// teardownApp records the command outcome and releases the backend. It runs
// after every command, including failed ones.
func teardownApp(cmdErr error) error {
	if current == nil {
		return nil
	}
	current.run.Finish(current.ctx, cmdErr)
	err := current.backend.Close()
	current = nil
	return err
}

func ctxOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
