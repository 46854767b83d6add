// Package main is the entry point for the ReportDesk API server.
// It loads configuration, connects to services, sets up routing, and starts
// the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"reportdesk/internal/cache"
	"reportdesk/internal/config"
	"reportdesk/internal/database"
	"reportdesk/internal/handlers"
	"reportdesk/internal/notify"
	"reportdesk/internal/router"
	"reportdesk/internal/service"
	"reportdesk/internal/session"
	"reportdesk/internal/store"
)

func main() {
	// Structured logger — outputs JSON in production, text in development.
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	// Load configuration from environment variables.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
	)

	// Connect to PostgreSQL.
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Run pending migrations.
	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Seed development data (no-op if data already exists).
	if cfg.IsDev() {
		if err := database.Seed(db); err != nil {
			slog.Error("failed to seed database", "error", err)
			os.Exit(1)
		}
	}

	// Connect to Valkey (Redis-compatible session store + event channel).
	valkeyClient, err := cache.ConnectValkey(cfg.ValkeyAddr(), cfg.ValkeyPassword)
	if err != nil {
		slog.Error("failed to connect to valkey", "error", err)
		os.Exit(1)
	}
	defer valkeyClient.Close()

	// Initialize session store backed by Valkey.
	// In non-development environments, mark session cookies as Secure (HTTPS-only).
	secureCookies := !cfg.IsDev()
	sessionStore := session.NewStore(valkeyClient, secureCookies)

	// Initialize data stores.
	userStore := store.NewUserStore(db)
	categoryStore := store.NewCategoryStore(db)
	reportStore := store.NewReportStore(db)
	tagStore := store.NewTagStore(db)

	// Category change events go out over Valkey pub/sub.
	notifier := notify.NewPublisher(valkeyClient)

	// Domain services.
	categoryService := service.NewCategoryService(categoryStore, notifier)
	reportService := service.NewReportService(reportStore, categoryStore)
	reconciler := service.NewReconciler(categoryStore)

	// Reconcile predefined categories for every owner at startup, then on
	// the configured schedule. A failed sweep only logs; the next run retries.
	sweep := func() {
		ids, err := userStore.ListIDs()
		if err != nil {
			slog.Error("reconcile sweep: list owners failed", "error", err)
			return
		}
		for _, id := range ids {
			reconciler.Reconcile(id)
		}
	}
	sweep()

	var scheduler *cron.Cron
	if cfg.ReconcileSchedule != "" {
		scheduler = cron.New()
		if _, err := scheduler.AddFunc(cfg.ReconcileSchedule, sweep); err != nil {
			slog.Error("invalid reconcile schedule",
				"schedule", cfg.ReconcileSchedule,
				"error", err,
			)
			os.Exit(1)
		}
		scheduler.Start()
		slog.Info("reconcile sweep scheduled", "schedule", cfg.ReconcileSchedule)
	}

	// Create handler groups with their dependencies.
	authHandlers := handlers.NewAuth(sessionStore, userStore)
	categoryHandlers := handlers.NewCategories(categoryService)
	reportHandlers := handlers.NewReports(reportService, tagStore)
	tagHandlers := handlers.NewTags(tagStore)

	// Set up the Chi router with all middleware and routes.
	r := router.New(sessionStore, authHandlers, categoryHandlers, reportHandlers, tagHandlers)

	// Create the HTTP server with sensible timeouts.
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown signals.
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	if scheduler != nil {
		scheduler.Stop()
	}

	// Give active requests up to 30 seconds to complete.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}
