package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"go.uber.org/zap"

	"github.com/mamadbah2/poultryops/internal/archive"
	"github.com/mamadbah2/poultryops/internal/auth"
	"github.com/mamadbah2/poultryops/internal/cache"
	"github.com/mamadbah2/poultryops/internal/config"
	"github.com/mamadbah2/poultryops/internal/repository/memory"
	"github.com/mamadbah2/poultryops/internal/repository/mongodb"
	"github.com/mamadbah2/poultryops/internal/repository/sheets"
	"github.com/mamadbah2/poultryops/internal/scheduler"
	"github.com/mamadbah2/poultryops/internal/server/handlers"
	"github.com/mamadbah2/poultryops/internal/server/router"
	alertsvc "github.com/mamadbah2/poultryops/internal/service/alerts"
	batchsvc "github.com/mamadbah2/poultryops/internal/service/batches"
	commandsvc "github.com/mamadbah2/poultryops/internal/service/commands"
	dashboardsvc "github.com/mamadbah2/poultryops/internal/service/dashboard"
	inventorysvc "github.com/mamadbah2/poultryops/internal/service/inventory"
	masterdatasvc "github.com/mamadbah2/poultryops/internal/service/masterdata"
	"github.com/mamadbah2/poultryops/internal/service/metrics"
	registrysvc "github.com/mamadbah2/poultryops/internal/service/registry"
	reportingsvc "github.com/mamadbah2/poultryops/internal/service/reporting"
	whatsappsvc "github.com/mamadbah2/poultryops/internal/service/whatsapp"
	"github.com/mamadbah2/poultryops/pkg/clients/pincode"
	whatsappclient "github.com/mamadbah2/poultryops/pkg/clients/whatsapp"
	"github.com/mamadbah2/poultryops/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(logger.Options{Level: cfg.Log.Level, Console: cfg.Log.Console}))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	calc := metrics.NewCalculator(cfg.Rules)
	store := memory.NewStore()
	if err := seed(ctx, store, calc, cfg); err != nil {
		baseLogger.Fatal("failed to seed store", zap.Error(err))
	}
	if cfg.Auth.BootstrapAdmin() {
		if _, err := auth.EnsureAdmin(ctx, store, cfg.Auth.AdminUsername, cfg.Auth.AdminPassword, logger.Named(baseLogger, "auth")); err != nil {
			baseLogger.Fatal("failed to create admin account", zap.Error(err))
		}
	}

	masterdataSvc := masterdatasvc.NewService(store, cfg.Rules, logger.Named(baseLogger, "svc.masterdata"))
	batchSvc := batchsvc.NewService(store, store, calc, logger.Named(baseLogger, "svc.batches"),
		batchsvc.WithPriceList(masterdataSvc),
	)
	inventorySvc := inventorysvc.NewService(store, cfg.Rules, logger.Named(baseLogger, "svc.inventory"))
	dashboardSvc := dashboardsvc.NewService(store, inventorySvc, logger.Named(baseLogger, "svc.dashboard"))

	lookupCache, err := cache.Connect(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger.Named(baseLogger, "cache"))
	if err != nil {
		baseLogger.Warn("redis unavailable, pincode lookups are not cached", zap.Error(err))
	}
	defer func() { _ = lookupCache.Close() }()

	registrySvc := registrysvc.NewService(store, store, calc, logger.Named(baseLogger, "svc.registry"),
		registrysvc.WithPincodeLookup(pincode.NewClient(cfg.Pincode.BaseURL), lookupCache),
	)

	tokens := auth.NewJWTManager(cfg.Auth)
	authSvc := auth.NewService(store, tokens, logger.Named(baseLogger, "svc.auth"))

	var (
		snapshotStore reportingsvc.SnapshotStore
		history       handlers.SnapshotHistory
		sheetWriter   reportingsvc.SheetWriter
		reportArchive handlers.ReportArchive
	)

	if cfg.MongoDB.URI != "" {
		mongoRepo, err := mongodb.NewMongoDBRepository(ctx, cfg.MongoDB.URI, cfg.MongoDB.DBName)
		if err != nil {
			baseLogger.Error("mongodb unavailable, snapshots disabled", zap.Error(err))
		} else {
			snapshotStore, history = mongoRepo, mongoRepo
			defer func() {
				if err := mongoRepo.Close(context.Background()); err != nil {
					baseLogger.Error("failed to close mongodb connection", zap.Error(err))
				}
			}()
		}
	}

	if cfg.Sheets.Enabled() {
		sheetsRepo, err := sheets.NewGoogleSheetRepository(ctx, cfg.Sheets, logger.Named(baseLogger, "repo.sheets"))
		if err != nil {
			baseLogger.Error("google sheets unavailable, sheet export disabled", zap.Error(err))
		} else {
			sheetWriter = sheetsRepo
		}
	}

	if cfg.Archive.Enabled() {
		a, err := archive.New(ctx, cfg.Archive, logger.Named(baseLogger, "archive"))
		if err != nil {
			baseLogger.Error("report archive unavailable", zap.Error(err))
		} else {
			reportArchive = a
		}
	}

	reportingSvc := reportingsvc.NewService(batchSvc, calc, snapshotStore, sheetWriter, logger.Named(baseLogger, "svc.reporting"))

	h := router.Handlers{
		Auth:       handlers.NewAuthHandler(authSvc, logger.Named(baseLogger, "handlers.auth")),
		Batches:    handlers.NewBatchHandler(batchSvc, logger.Named(baseLogger, "handlers.batches")),
		Registry:   handlers.NewRegistryHandler(registrySvc, logger.Named(baseLogger, "handlers.registry")),
		MasterData: handlers.NewMasterDataHandler(masterdataSvc, logger.Named(baseLogger, "handlers.masterdata")),
		Inventory:  handlers.NewInventoryHandler(inventorySvc, dashboardSvc, cfg.Rules.ActivityPageSize, logger.Named(baseLogger, "handlers.inventory")),
		Export:     handlers.NewExportHandler(batchSvc, registrySvc, reportArchive, logger.Named(baseLogger, "handlers.export")),
		Snapshots:  handlers.NewSnapshotHandler(history, logger.Named(baseLogger, "handlers.snapshots")),
	}

	sched, err := scheduler.NewScheduler(cfg.Reporting, cfg.WhatsApp.ManagerID, logger.Named(baseLogger, "scheduler"))
	if err != nil {
		baseLogger.Fatal("failed to init scheduler", zap.Error(err))
	}
	if snapshotStore != nil || sheetWriter != nil {
		if err := sched.AddSnapshotJob(reportingSvc); err != nil {
			baseLogger.Fatal("failed to schedule snapshots", zap.Error(err))
		}
	}

	if cfg.WhatsApp.Enabled() {
		whatsClient := whatsappclient.NewClient(cfg.WhatsApp)

		alerts := alertsvc.NewService(whatsClient, cfg.WhatsApp.ManagerID, cfg.Rules.MortalityAlertPercent, batchSvc, logger.Named(baseLogger, "svc.alerts"))
		batchSvc.Subscribe(alerts)

		dispatcher := commandsvc.NewService(batchSvc, store, logger.Named(baseLogger, "svc.commands"))
		messagingSvc := whatsappsvc.NewMetaWhatsAppService(cfg.WhatsApp, whatsClient, dispatcher, logger.Named(baseLogger, "svc.whatsapp"))
		h.Webhook = handlers.NewWebhookHandler(messagingSvc, logger.Named(baseLogger, "handlers.whatsapp"))

		if err := sched.AddSweepJob(alerts); err != nil {
			baseLogger.Fatal("failed to schedule mortality sweep", zap.Error(err))
		}
		if err := sched.AddDigestJob(reportingSvc, messagingSvc); err != nil {
			baseLogger.Fatal("failed to schedule weekly digest", zap.Error(err))
		}
	} else {
		baseLogger.Warn("whatsapp token missing, alerts and supervisor intake disabled")
	}

	engine := router.New(h, tokens, store, logger.Named(baseLogger, "router"))

	sched.Start()
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router.WithCORS(engine, cfg.Server.AllowedOrigins),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port), zap.Int("scheduled_jobs", sched.Jobs()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}

// seed loads the demonstration data. Sample users are only created when a
// demo password is configured.
func seed(ctx context.Context, store *memory.Store, calc *metrics.Calculator, cfg *config.Config) error {
	if !cfg.Server.SeedSampleData {
		return nil
	}

	var hash string
	if cfg.Auth.DemoPassword != "" {
		h, err := auth.HashPassword(cfg.Auth.DemoPassword)
		if err != nil {
			return err
		}
		hash = h
	}
	return memory.SeedSampleData(ctx, store, calc, hash)
}
