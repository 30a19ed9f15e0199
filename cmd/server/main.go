/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the jobs ledger server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (app.env, environment, then flags)
  2. Build the logger
  3. Initialize SQLite store
  4. Create API handler with dependencies
  5. Optionally seed the marketplace scenario
  6. Configure HTTP router
  7. Start server with graceful shutdown

COMMAND-LINE FLAGS (override environment):
  -port    HTTP server port (HTTP_PORT, default: 3001)
  -db      SQLite database path (DB_PATH, default: ledger.db)
           Use ":memory:" for in-memory database
  -seed    Load the marketplace scenario on start (SEED_ON_START)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (SHUTDOWN_TIMEOUT)
  3. Close database connection
  4. Exit

EXAMPLES:
  # Run with in-memory database and demo data
  ./server -db=":memory:" -seed

  # Production-style JSON logs
  APP_ENV=production LOG_LEVEL=warn ./server

SEE ALSO:
  - config/config.go: Environment variables
  - api/server.go: Router configuration
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/warp/jobs-ledger/api"
	"github.com/warp/jobs-ledger/config"
	"github.com/warp/jobs-ledger/logging"
	"github.com/warp/jobs-ledger/store/sqlite"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	// Flags
	port := flag.Int("port", cfg.HTTP.Port, "HTTP server port")
	dbPath := flag.String("db", cfg.DB.Path, "SQLite database path")
	seed := flag.Bool("seed", cfg.SeedOnStart, "load the marketplace scenario on start")
	flag.Parse()

	log := logging.New(cfg.Environment, cfg.Log.Level)

	if err := run(cfg, *port, *dbPath, *seed, log); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func run(cfg *config.Config, port int, dbPath string, seed bool, log zerolog.Logger) error {
	store, err := sqlite.New(dbPath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer store.Close()

	handler := api.NewHandler(store, log)

	if seed {
		if err := handler.Seed(context.Background(), "marketplace"); err != nil {
			return fmt.Errorf("failed to seed database: %w", err)
		}
	}

	router := api.NewRouter(handler, api.RouterOptions{
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
		EnableDemo:     cfg.IsDevelopment(),
	})

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.HTTP.Host, port),
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", server.Addr).Str("db", dbPath).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return err
	case <-quit:
	}

	log.Info().Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info().Msg("server stopped")
	return nil
}
