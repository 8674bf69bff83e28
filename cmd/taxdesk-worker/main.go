package main

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/kengo-k/taxdesk-sub002/internal/backend"
	"github.com/kengo-k/taxdesk-sub002/internal/cli"
	"github.com/kengo-k/taxdesk-sub002/internal/log"
	"github.com/kengo-k/taxdesk-sub002/internal/services"
	"github.com/kengo-k/taxdesk-sub002/internal/worker"
)

func main() {
	cli.LoadEnvFile()

	bootLogger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), log.ComponentWorker)
	cfg := cli.LoadAndValidateConfig(bootLogger)
	logger := cli.SetupLogger(cfg.LogLevel, log.ComponentWorker)

	logger.Info("Starting taxdesk-worker", "export_backend", cfg.ExportBackend)

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	chart := cli.LoadChart(context.Background(), logger, repo)

	// The server writes the ledger from another process, so every export reads through.
	agg := services.NewAggregator(repo, chart, nil, logger)
	payroll := services.NewPayrollGate(repo, services.WithLogger(logger))
	journals := services.NewJournalService(repo, chart, payroll, services.WithLogger(logger))
	reports := services.NewReportAssembler(agg, journals, payroll, cfg.ReportConcurrency, logger)

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid export backend", log.FieldError, err)
		os.Exit(1)
	}
	result, err := backend.NewFactory(logger).CreateBackend(context.Background(), backendCfg)
	if err != nil {
		logger.Error("Failed to initialize report writer", log.FieldError, err)
		os.Exit(1)
	}
	if result.Cleanup != nil {
		defer result.Cleanup()
	}

	exporter := services.NewReportExporter(reports, repo, result.Writer, services.ExporterConfig{Interval: cfg.ExportInterval}, logger)
	exportWorker := worker.NewExportWorker(exporter, cfg.ExportMinGap, logger)

	// Connect before the shutdown hook exists so it only reads a settled client.
	client := cli.ConnectAMQP(logger, cfg)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(shutdownCtx context.Context) {
		if err := exporter.Stop(shutdownCtx); err != nil {
			logger.Warn("Exporter stop error", log.FieldError, err)
		}
		exportWorker.Close()
		if client != nil {
			if err := client.Close(); err != nil {
				logger.Warn("AMQP close error", log.FieldError, err)
			}
		}
	})

	if err := exporter.Start(ctx); err != nil {
		logger.Error("Failed to start exporter", log.FieldError, err)
		os.Exit(1)
	}

	if client != nil {
		go func() {
			err := client.Consume(ctx, exportWorker.HandleEvent)
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("Ledger event consumption failed", log.FieldError, err)
			}
		}()
	} else {
		logger.Info("Running periodic exports only", "interval", cfg.ExportInterval)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker stopped")
}
