/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the WorkTrack earnings engine server. Handles
  configuration, dependency injection, timer recovery, and graceful
  shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags
  2. Load YAML config (defaults apply when the file is missing)
  3. Initialize SQLite store
  4. Wire reconciler, bulk submitter, and timer controller
  5. Configure HTTP router
  6. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -config  YAML config path (default: worktrack.yaml)
  -addr    Listen address, overrides config when set
  -db      SQLite database path, overrides config when set
           Use ":memory:" for an in-memory database

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

EXAMPLES:
  # Run with defaults
  ./server

  # Run with in-memory database
  ./server -db=":memory:"

  # Run on a different port
  ./server -addr=":3000"

SEE ALSO:
  - config/config.go: Configuration defaults
  - api/server.go: Router configuration
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/worktrack/earnings-engine/api"
	"github.com/worktrack/earnings-engine/config"
	"github.com/worktrack/earnings-engine/reconcile"
	"github.com/worktrack/earnings-engine/store/sqlite"
)

func main() {
	// Flags
	configPath := flag.String("config", "worktrack.yaml", "YAML config path")
	addr := flag.String("addr", "", "listen address, overrides config")
	dbPath := flag.String("db", "", "SQLite database path, overrides config")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(log)

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "path", *configPath, "error", err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.ListenAddr = *addr
	}
	if *dbPath != "" {
		cfg.DatabasePath = *dbPath
	}

	// Initialize store
	db, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		log.Error("failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Wire the domain layer
	rec := reconcile.New(db, cfg.Rate())
	guard := reconcile.NewGuard(cfg.LockCooldown())
	submitter := reconcile.NewSubmitter(rec, guard, cfg.BulkDelay(), log)
	timer := reconcile.NewTimerController(rec, db)

	// A session saved before a restart survives in the store; report it
	// so the operator knows a timer is still running.
	if session, active, err := timer.Status(context.Background()); err != nil {
		log.Warn("failed to restore timer state", "error", err)
	} else if active {
		log.Info("restored running timer", "entry_id", session.EntryID, "started_at", session.StartedAt)
	}

	handler := api.NewHandler(db, rec, submitter, timer, cfg.Targets())
	router := api.NewRouter(handler)

	// Keep dashboard aggregates warm off the entry stream.
	monitor := api.NewStatisticsMonitor(db, rec, cfg.Targets(), log)
	monitor.Start(context.Background())
	defer monitor.Stop()

	server := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info("server starting", "addr", cfg.ListenAddr, "db", cfg.DatabasePath)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	log.Info("server stopped")
}
