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

	"github.com/SscSPs/ledger_core/internal/adapters/database/pgsql"
	"github.com/SscSPs/ledger_core/internal/adapters/memory"
	"github.com/SscSPs/ledger_core/internal/core/services"
	"github.com/SscSPs/ledger_core/internal/handlers"
	"github.com/SscSPs/ledger_core/internal/jobs"
	"github.com/SscSPs/ledger_core/internal/middleware"
	"github.com/SscSPs/ledger_core/internal/platform/config"
	"github.com/SscSPs/ledger_core/pkg/database"
	"github.com/gin-gonic/gin"
)

const (
	verifyInterval  = time.Hour
	shutdownTimeout = 10 * time.Second
)

// @title Ledger Core API
// @version 1.0
// @description Double-entry ledger with journal posting, financial reports and a receivables/payables subledger.

// @host localhost:8080
// @BasePath /api/v1
func main() {
	// Initialize structured logger; the level is applied once config is read
	level := new(slog.LevelVar)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	level.Set(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	options := []services.ServiceOption{services.WithPostingAccounts(cfg.Postings)}
	if cfg.DatabaseURL != "" {
		dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			logger.Error("Failed to initialize database pool", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer database.ClosePgxPool(dbPool, logger)

		logger.Info("Running database migrations...")
		if err := database.RunMigrations(cfg.DatabaseURL, database.DefaultMigrationsPath, logger); err != nil {
			logger.Error("Failed to apply migrations", slog.String("error", err.Error()))
			os.Exit(1)
		}
		options = append(options, services.WithSnapshotRepository(pgsql.NewSnapshotRepository(dbPool), cfg.LedgerID))
	} else {
		logger.Warn("PGSQL_URL not set, ledger state will not survive a restart")
	}

	svc := services.NewServiceContainer(memory.NewStore(), options...)
	if err := bootstrapLedger(ctx, cfg, svc.Snapshot, svc.Account, svc.Tax, logger); err != nil {
		logger.Error("Failed to initialize ledger", slog.String("error", err.Error()))
		os.Exit(1)
	}

	snapshotInterval := cfg.SnapshotInterval
	if cfg.DatabaseURL == "" {
		snapshotInterval = 0
	}
	scheduler, err := jobs.NewScheduler(svc.Snapshot, svc.Balance, jobs.Config{
		SnapshotInterval: snapshotInterval,
		VerifyInterval:   verifyInterval,
	}, logger)
	if err != nil {
		logger.Error("Failed to create job scheduler", slog.String("error", err.Error()))
		os.Exit(1)
	}
	scheduler.Start()

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware (logging, recovery)
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := handlers.RegisterRoutes(r, cfg, svc); err != nil {
		logger.Error("Failed to register routes", slog.String("error", err.Error()))
		os.Exit(1)
	}

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		logger.Info("Server starting", slog.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed to run", slog.String("error", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", slog.String("error", err.Error()))
	}
	if err := scheduler.Stop(); err != nil {
		logger.Error("Job scheduler shutdown failed", slog.String("error", err.Error()))
	}
	if cfg.DatabaseURL != "" {
		if err := svc.Snapshot.Save(shutdownCtx); err != nil {
			logger.Error("Final snapshot failed", slog.String("error", err.Error()))
		}
	}
}
