/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the timecard engine server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration from the environment, then apply flags
  2. Initialize SQLite store
  3. Build engine with logger, metrics and project config provider
  4. Configure HTTP router
  5. Start the totals reconciler
  6. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port    HTTP server port (overrides TIMECARD_HTTP_ADDR)
  -db      SQLite database path (overrides TIMECARD_DB_PATH)
           Use ":memory:" for in-memory database

ENVIRONMENT:
  TIMECARD_HTTP_ADDR              listen address (default :8080)
  TIMECARD_DB_PATH                database path (default timecards.db)
  TIMECARD_DEFAULT_BREAK_MINUTES  fallback policy break (default 30)
  TIMECARD_GRACE_MINUTES          fallback break grace (default 5)
  TIMECARD_RECONCILE_MINUTES      totals sweep interval, 0 disables (default 60)
  TIMECARD_LOG_LEVEL              debug, info, warn, error
  TIMECARD_CORS_ORIGINS           comma-separated allowed origins

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop the totals reconciler
  2. Stop accepting new connections
  3. Wait for active requests to complete (30s timeout)
  4. Close database connection
  5. Exit

EXAMPLES:
  # Run with file database
  ./server -db="./data/timecards.db"

  # Run with in-memory database
  ./server -db=":memory:"

  # Run on different port
  ./server -port=3000

SEE ALSO:
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/warp/timecard-engine/api"
	"github.com/warp/timecard-engine/config"
	"github.com/warp/timecard-engine/factory"
	"github.com/warp/timecard-engine/metrics"
	"github.com/warp/timecard-engine/store/sqlite"
	"github.com/warp/timecard-engine/timecard"
)

func main() {
	cfg := config.FromEnv()

	// Flags
	port := flag.Int("port", 0, "HTTP server port (overrides TIMECARD_HTTP_ADDR)")
	dbPath := flag.String("db", cfg.DBPath, "SQLite database path")
	flag.Parse()
	if *port != 0 {
		cfg.HTTPAddr = fmt.Sprintf(":%d", *port)
	}
	cfg.DBPath = *dbPath

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	// Initialize store
	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		logger.Error("failed to initialize database", "path", cfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer store.Close()

	// Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// Engine
	defaults := factory.Defaults{DefaultBreak: cfg.DefaultBreak, GracePeriod: cfg.GracePeriod}
	engine := timecard.NewEngine(store,
		timecard.WithLogger(logger),
		timecard.WithMetrics(m),
		timecard.WithConfigProvider(factory.NewProjectConfigProvider(store, defaults)),
		timecard.WithBreakPolicy(cfg.DefaultBreak, cfg.GracePeriod),
	)

	handler := api.NewHandler(engine, store, defaults, logger)
	router := api.NewRouter(handler, api.RouterOptions{
		AllowedOrigins: cfg.CORSOrigins,
		Gatherer:       reg,
	})

	// Totals reconciler
	reconciler := api.NewTotalsReconciler(store, engine, logger)
	reconciler.CheckInterval = cfg.ReconcileInterval
	reconciler.Enabled = cfg.ReconcileInterval > 0
	reconciler.Start()

	// Create server
	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("server starting", "addr", cfg.HTTPAddr, "db", cfg.DBPath)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	reconciler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		return
	}

	logger.Info("server stopped")
}
