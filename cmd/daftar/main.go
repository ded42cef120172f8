package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/daftar-erp/daftar/internal/app"
	"github.com/daftar-erp/daftar/internal/auth"
	"github.com/daftar-erp/daftar/internal/details"
	"github.com/daftar-erp/daftar/internal/ledgers"
	"github.com/daftar-erp/daftar/internal/masterdata/accounts"
	"github.com/daftar-erp/daftar/internal/masterdata/branches"
	"github.com/daftar-erp/daftar/internal/masterdata/currencies"
	"github.com/daftar-erp/daftar/internal/masterdata/doctypes"
	"github.com/daftar-erp/daftar/internal/masterdata/organization"
	"github.com/daftar-erp/daftar/internal/masterdata/structures"
	"github.com/daftar-erp/daftar/internal/observability"
	"github.com/daftar-erp/daftar/internal/parties"
	"github.com/daftar-erp/daftar/internal/platform/cache"
	"github.com/daftar-erp/daftar/internal/platform/db"
	"github.com/daftar-erp/daftar/internal/rbac"
	"github.com/daftar-erp/daftar/internal/refdata"
	"github.com/daftar-erp/daftar/internal/shared"
	"github.com/daftar-erp/daftar/internal/users"
	"github.com/daftar-erp/daftar/internal/vouchers"
	"github.com/daftar-erp/daftar/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
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

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "daftar_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)

	auditLogger := shared.NewAuditLogger(dbpool)
	refCache := refdata.NewCache(redisClient, 10*time.Minute)

	rbacService := rbac.NewService(dbpool)
	rbacMiddleware := rbac.Middleware{Service: rbacService, Logger: logger}

	// Reference stores. Leaf collections register first so dependent
	// modules can validate against warm snapshots.
	currencyRepo := currencies.NewRepository(dbpool)
	currencyStore := refdata.NewStore("currencies", currencyRepo.All,
		func(c currencies.Currency) string { return c.Code },
		func(c currencies.Currency) string { return c.Title })

	structureRepo := structures.NewRepository(dbpool)
	structureStore := refdata.NewStore("structures", structureRepo.All,
		func(s structures.Structure) string { return s.Code },
		func(s structures.Structure) string { return s.Title })

	registry := refdata.NewRegistry()
	registry.Register(currencyStore)
	registry.Register(structureStore)
	if err := registry.WarmUp(ctx); err != nil {
		logger.Warn("refdata warmup", slog.Any("error", err))
	}
	if err := refCache.ListenForInvalidation(ctx, "", func() {
		if err := registry.ReloadAll(ctx); err != nil {
			logger.Warn("refdata reload", slog.Any("error", err))
		}
	}); err != nil {
		logger.Warn("refdata invalidation listener", slog.Any("error", err))
	}

	jobClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("jobs client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("jobs client close", slog.Any("error", err))
		}
	}()

	authRepo := auth.NewRepository(dbpool)
	authService := auth.NewService(authRepo, redisClient, jobClient)
	authHandler := auth.NewHandler(logger, authService, sessionManager, csrfManager)

	currencyService := currencies.NewService(currencyRepo, refCache, auditLogger)
	currencyHandler := currencies.NewHandler(logger, currencyService, rbacMiddleware)

	structureService := structures.NewService(structureRepo, refCache, auditLogger)
	structureHandler := structures.NewHandler(logger, structureService, rbacMiddleware)

	accountRepo := accounts.NewRepository(dbpool)
	accountService := accounts.NewService(accountRepo, structureStore, refCache, auditLogger)
	accountHandler := accounts.NewHandler(logger, accountService, rbacMiddleware)

	docTypeRepo := doctypes.NewRepository(dbpool)
	docTypeService := doctypes.NewService(docTypeRepo, refCache, auditLogger)
	docTypeHandler := doctypes.NewHandler(logger, docTypeService, rbacMiddleware)

	branchRepo := branches.NewRepository(dbpool)
	branchService := branches.NewService(branchRepo, refCache, auditLogger)
	branchHandler := branches.NewHandler(logger, branchService, rbacMiddleware)

	orgRepo := organization.NewRepository(dbpool)
	orgService := organization.NewService(orgRepo, auditLogger)
	orgHandler := organization.NewHandler(logger, orgService, rbacMiddleware)

	partyRepo := parties.NewRepository(dbpool)
	partyService := parties.NewService(partyRepo, refCache, auditLogger)
	partyHandler := parties.NewHandler(logger, partyService, rbacMiddleware)

	userRepo := users.NewRepository(dbpool)
	userService := users.NewService(userRepo, auditLogger)
	userHandler := users.NewHandler(logger, userService, rbacMiddleware)

	ledgerRepo := ledgers.NewRepository(dbpool)
	ledgerService := ledgers.NewService(logger, ledgerRepo, structureStore, currencyStore, refCache, auditLogger)
	ledgerHandler := ledgers.NewHandler(logger, ledgerService, rbacMiddleware)

	detailRepo := details.NewRepository(dbpool)
	detailService := details.NewService(detailRepo, refCache, auditLogger)
	detailHandler := details.NewHandler(logger, detailService, rbacMiddleware)

	metrics := observability.NewMetrics()

	voucherRepo := vouchers.NewRepository(dbpool)
	voucherAssembler := vouchers.NewAssembler(logger, voucherRepo, currencyStore)
	voucherService := vouchers.NewService(voucherRepo, voucherAssembler, metrics)
	voucherHandler := vouchers.NewHandler(logger, voucherService, rbacMiddleware)

	rolesHandler := rbac.NewHandler(logger, rbacService, rbacMiddleware)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:              logger,
		Config:              cfg,
		SessionManager:      sessionManager,
		CSRFManager:         csrfManager,
		AuthHandler:         authHandler,
		LedgersHandler:      ledgerHandler,
		DetailsHandler:      detailHandler,
		VouchersHandler:     voucherHandler,
		CurrenciesHandler:   currencyHandler,
		StructuresHandler:   structureHandler,
		AccountsHandler:     accountHandler,
		DocTypesHandler:     docTypeHandler,
		BranchesHandler:     branchHandler,
		OrganizationHandler: orgHandler,
		PartiesHandler:      partyHandler,
		UsersHandler:        userHandler,
		RolesHandler:        rolesHandler,
		JobHandler:          jobHandler,
		Metrics:             metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
