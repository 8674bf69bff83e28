package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/kengo-k/taxdesk-sub002/internal/cache"
	"github.com/kengo-k/taxdesk-sub002/internal/cli"
	"github.com/kengo-k/taxdesk-sub002/internal/core"
	apphttp "github.com/kengo-k/taxdesk-sub002/internal/http"
	"github.com/kengo-k/taxdesk-sub002/internal/log"
	"github.com/kengo-k/taxdesk-sub002/internal/services"
)

func main() {
	cli.LoadEnvFile()

	bootLogger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), log.ComponentApp)
	cfg := cli.LoadAndValidateConfig(bootLogger)
	logger := cli.SetupLogger(cfg.LogLevel, log.ComponentApp)

	logger.Info("Starting taxdesk server", "port", cfg.Port, "db", cfg.SQLiteDBPath)

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	chart := cli.LoadChart(context.Background(), logger, repo)

	snapshots := cache.NewLRUCache[[]core.Journal](cfg.ReportCacheSize, cfg.ReportCacheTTL)
	cacheManager := cache.NewManager(logger.WithComponent(log.ComponentCache).Logger)
	cacheManager.Register(snapshots)
	cacheManager.StartCleanup(time.Minute)
	defer cacheManager.Stop()

	agg := services.NewAggregator(repo, chart, snapshots, logger)

	notify := []services.Option{services.WithInvalidator(agg), services.WithLogger(logger)}
	if publisher := cli.ConnectAMQP(logger, cfg); publisher != nil {
		defer publisher.Close()
		notify = append(notify, services.WithPublisher(publisher))
	}

	payroll := services.NewPayrollGate(repo, notify...)
	journals := services.NewJournalService(repo, chart, payroll, notify...)
	reports := services.NewReportAssembler(agg, journals, payroll, cfg.ReportConcurrency, logger)

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Repo:       repo,
		Journals:   journals,
		Payroll:    payroll,
		Aggregator: agg,
		Reports:    reports,
	}, logger, apphttp.WithRateLimit(cfg.RateLimitPerMinute))

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(shutdownCtx context.Context) {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
	})

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
