// Package commands implements the taxdeskctl administration CLI.
package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/kengo-k/taxdesk-sub002/internal/accounts"
	"github.com/kengo-k/taxdesk-sub002/internal/amqp"
	"github.com/kengo-k/taxdesk-sub002/internal/cache"
	"github.com/kengo-k/taxdesk-sub002/internal/config"
	"github.com/kengo-k/taxdesk-sub002/internal/core"
	"github.com/kengo-k/taxdesk-sub002/internal/log"
	"github.com/kengo-k/taxdesk-sub002/internal/services"
	"github.com/kengo-k/taxdesk-sub002/internal/storage"
)

// rootOptions are the persistent flags shared by every subcommand.
type rootOptions struct {
	dbPath   string
	logLevel string
	amqpURL  string
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	cfg := config.Load()
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "taxdeskctl",
		Short: "Administer the fiscal-year ledger",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.dbPath, "db", cfg.SQLiteDBPath, "SQLite database path")
	flags.StringVar(&opts.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	flags.StringVar(&opts.amqpURL, "amqp-url", cfg.AMQPURL, "publish ledger events to this broker; empty disables")

	rootCmd.AddCommand(
		newMigrateCommand(opts),
		newFiscalYearsCommand(opts),
		newJournalsCommand(opts),
		newStatusCommand(opts),
		newPayrollCommand(opts),
		newReportCommand(opts),
	)

	return rootCmd
}

// app is the engine wired for one command invocation.
type app struct {
	repo      *storage.SQLiteRepository
	chart     *accounts.Chart
	journals  *services.JournalService
	payroll   *services.PayrollGate
	agg       *services.Aggregator
	reports   *services.ReportAssembler
	publisher *amqp.Client
}

func (o *rootOptions) open(ctx context.Context) (*app, error) {
	cfg := log.DefaultConfig()
	if lvl, err := log.ParseLevel(o.logLevel); err == nil {
		cfg.Level = lvl
	}
	cfg.Component = log.ComponentCLI
	cfg.Output = os.Stderr
	logger := log.New(cfg)

	repo, err := storage.NewSQLiteRepository(o.dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	chart, err := accounts.Load(ctx, repo)
	if err != nil {
		repo.Close()
		return nil, fmt.Errorf("loading chart of accounts: %w", err)
	}

	a := &app{repo: repo, chart: chart}
	a.agg = services.NewAggregator(repo, chart, cache.NewLRUCache[[]core.Journal](4, time.Minute), logger)

	notify := []services.Option{services.WithInvalidator(a.agg), services.WithLogger(logger)}
	if o.amqpURL != "" {
		envCfg := config.Load()
		client, err := amqp.NewClient(o.amqpURL, envCfg.AMQPExchange, envCfg.AMQPQueue)
		if err != nil {
			logger.Warn("AMQP unavailable, ledger events disabled", log.FieldError, err)
		} else {
			a.publisher = client
			notify = append(notify, services.WithPublisher(client))
		}
	}

	a.payroll = services.NewPayrollGate(repo, notify...)
	a.journals = services.NewJournalService(repo, chart, a.payroll, notify...)
	a.reports = services.NewReportAssembler(a.agg, a.journals, a.payroll, 4, logger)
	return a, nil
}

func (a *app) Close() error {
	if a.publisher != nil {
		a.publisher.Close()
	}
	return a.repo.Close()
}

// withApp opens the engine for the duration of fn.
func (o *rootOptions) withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := o.open(ctx)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}
