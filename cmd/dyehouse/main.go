package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/chromatex/dyehouse/internal/app"
	"github.com/chromatex/dyehouse/internal/colorkitchen"
	"github.com/chromatex/dyehouse/internal/costing"
	"github.com/chromatex/dyehouse/internal/importer"
	"github.com/chromatex/dyehouse/internal/ledger"
	"github.com/chromatex/dyehouse/internal/masterdata/designs"
	"github.com/chromatex/dyehouse/internal/masterdata/products"
	"github.com/chromatex/dyehouse/internal/masterdata/suppliers"
	"github.com/chromatex/dyehouse/internal/movement"
	"github.com/chromatex/dyehouse/internal/observability"
	"github.com/chromatex/dyehouse/internal/opname"
	"github.com/chromatex/dyehouse/internal/platform/cache"
	"github.com/chromatex/dyehouse/internal/platform/db"
	"github.com/chromatex/dyehouse/internal/purchasing"
	"github.com/chromatex/dyehouse/internal/shared"
	"github.com/chromatex/dyehouse/jobs"
	"github.com/chromatex/dyehouse/report"
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

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, cost reads fall through to postgres", slog.Any("error", err))
		redisClient = nil
	}
	defer func() {
		if redisClient != nil {
			_ = redisClient.Close()
		}
	}()

	jobsClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("asynq client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() { _ = jobsClient.Close() }()

	productSvc := products.NewService(products.NewRepository(pool))
	supplierSvc := suppliers.NewService(suppliers.NewRepository(pool))
	designSvc := designs.NewService(designs.NewRepository(pool))

	purchasingSvc := purchasing.NewService(logger, purchasing.NewRepository(pool))
	movementSvc := movement.NewService(logger, movement.NewRepository(pool))
	colorKitchenSvc := colorkitchen.NewService(logger, colorkitchen.NewRepository(pool))
	opnameSvc := opname.NewService(logger, opname.NewRepository(pool))

	ledgerStore := ledger.NewStore(pool)
	costReader := costing.NewReader(redisClient, costing.NewEngine(pool), cfg.AvgCostCacheTTL)

	purchasingImp := importer.NewPurchasingImporter(logger, productSvc, supplierSvc, purchasingSvc, jobsClient, costReader)
	movementImp := importer.NewMovementImporter(logger, productSvc, movementSvc)
	colorKitchenImp := importer.NewColorKitchenImporter(logger, productSvc, designSvc, colorKitchenSvc)
	opnameImp := importer.NewOpnameImporter(logger, productSvc, opnameSvc)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() { _ = inspector.Close() }()

	auditor := shared.NewAuditLogger(pool)
	metrics := observability.NewMetrics()
	reports := report.NewHandler(report.NewClient(cfg.GotenbergURL), logger, opnameSvc)

	router := app.NewRouter(app.RouterDeps{
		Logger:       logger,
		Config:       cfg,
		Metrics:      metrics,
		Products:     products.NewHandler(logger, productSvc),
		Suppliers:    suppliers.NewHandler(logger, supplierSvc),
		Designs:      designs.NewHandler(logger, designSvc),
		Purchasing:   purchasing.NewHandler(logger, purchasingSvc, auditor),
		Movements:    movement.NewHandler(logger, movementSvc, auditor),
		ColorKitchen: colorkitchen.NewHandler(logger, colorKitchenSvc, auditor),
		Opname:       opname.NewHandler(logger, opnameSvc, auditor),
		Imports:      importer.NewHandler(logger, purchasingImp, movementImp, colorKitchenImp, opnameImp, auditor),
		Ledger:       ledger.NewHandler(logger, ledgerStore),
		Costing:      costing.NewHandler(logger, costReader),
		Jobs:         jobs.NewHandler(inspector, logger),
		Reports:      reports,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		logger.Error("http server", slog.Any("error", err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", slog.Any("error", err))
	}
	logger.Info("server stopped")
}
