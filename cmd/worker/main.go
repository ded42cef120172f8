package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/daftar-erp/daftar/internal/app"
	"github.com/daftar-erp/daftar/internal/ledgers"
	"github.com/daftar-erp/daftar/internal/masterdata/currencies"
	"github.com/daftar-erp/daftar/internal/masterdata/structures"
	"github.com/daftar-erp/daftar/internal/observability"
	"github.com/daftar-erp/daftar/internal/platform/db"
	"github.com/daftar-erp/daftar/internal/refdata"
	"github.com/daftar-erp/daftar/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	metrics := observability.NewMetrics()
	ledgerRepo := ledgers.NewRepository(pool)
	integrityHandler := jobs.NewLedgerIntegrityHandler(logger, ledgerRepo, metrics)

	currencyRepo := currencies.NewRepository(pool)
	currencyStore := refdata.NewStore("currencies", currencyRepo.All,
		func(c currencies.Currency) string { return c.Code },
		func(c currencies.Currency) string { return c.Title })
	structureRepo := structures.NewRepository(pool)
	structureStore := refdata.NewStore("structures", structureRepo.All,
		func(s structures.Structure) string { return s.Code },
		func(s structures.Structure) string { return s.Title })

	registry := refdata.NewRegistry()
	registry.Register(currencyStore)
	registry.Register(structureStore)
	warmupHandler := jobs.NewRefdataWarmupHandler(logger, registry)

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskLedgerIntegrity, Handler: integrityHandler},
			{Type: jobs.TaskRefdataWarmup, Handler: warmupHandler},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "0 1 * * *", Task: jobs.NewLedgerIntegrityTask(), Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: "30 1 * * *", Task: jobs.NewRefdataWarmupTask(), Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
