// Package main provides the simulation service:
// - HTTP API: run simulations, manage saved scenarios, list recent runs
// - WebSocket: stream progress of a running simulation
// - Prometheus metrics and health check
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"montecarlo-lab/internal/api"
	"montecarlo-lab/internal/orchestrator"
	"montecarlo-lab/internal/simulation"
	"montecarlo-lab/internal/storage"
	chstore "montecarlo-lab/internal/storage/clickhouse"
	"montecarlo-lab/internal/storage/memory"
	"montecarlo-lab/internal/storage/migrations"
	pgstore "montecarlo-lab/internal/storage/postgres"
)

// shutdownTimeout bounds graceful shutdown of in-flight requests.
const shutdownTimeout = 30 * time.Second

// allStores holds all storage implementations.
type allStores struct {
	scenarioStore   storage.ScenarioStore
	runSummaryStore storage.RunSummaryStore
}

func main() {
	// Load .env file if exists
	loadEnvFile()

	defaults := simulation.DefaultRunnerOptions()

	// Parse flags (env vars as defaults)
	listenAddr := flag.String("listen-addr", envOr("LISTEN_ADDR", ":8080"), "HTTP listen address")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL and ClickHouse")
	workers := flag.Int("workers", envInt("WORKERS", defaults.Workers), "Parallel simulation workers")
	maxSimulations := flag.Int("max-simulations", envInt("MAX_SIMULATIONS", defaults.MaxSimulations), "Trajectory ceiling per run")
	verbose := flag.Bool("verbose", false, "Log every run")

	flag.Parse()

	// Setup logger
	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lshortfile)

	// Validate required flags
	if !*useMemory && (*postgresDSN == "" || *clickhouseDSN == "") {
		logger.Fatal("--postgres-dsn and --clickhouse-dsn are required (use --use-memory for in-memory storage)")
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Create stores
	stores, cleanup, err := createStores(ctx, *postgresDSN, *clickhouseDSN, *useMemory, logger)
	if err != nil {
		logger.Fatalf("Failed to create stores: %v", err)
	}
	defer cleanup()

	runnerOpts := defaults
	runnerOpts.Workers = *workers
	runnerOpts.MaxSimulations = *maxSimulations

	orch := orchestrator.New(orchestrator.Options{
		Runner:   simulation.NewRunner(runnerOpts),
		RunStore: stores.runSummaryStore,
		Logger:   log.New(os.Stdout, "[orchestrator] ", log.LstdFlags|log.Lshortfile),
		Verbose:  *verbose,
	})

	srv := api.NewServer(api.Options{
		Orchestrator: orch,
		Scenarios:    stores.scenarioStore,
		Runs:         stores.runSummaryStore,
		Logger:       log.New(os.Stdout, "[api] ", log.LstdFlags|log.Lshortfile),
	})

	httpServer := &http.Server{
		Addr:              *listenAddr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, initiating graceful shutdown...", sig)
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Printf("Graceful shutdown failed: %v", err)
			httpServer.Close()
		}
	}()

	logger.Printf("Starting HTTP server on %s (workers=%d, max simulations=%d)",
		*listenAddr, runnerOpts.Workers, runnerOpts.MaxSimulations)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatalf("Server error: %v", err)
	}

	logger.Println("Shutdown complete")
}

// createStores creates all required stores and applies migrations.
func createStores(ctx context.Context, postgresDSN, clickhouseDSN string, useMemory bool, logger *log.Logger) (*allStores, func(), error) {
	if useMemory {
		stores := &allStores{
			scenarioStore:   memory.NewScenarioStore(),
			runSummaryStore: memory.NewRunSummaryStore(),
		}
		return stores, func() {}, nil
	}

	// PostgreSQL
	pool, err := pgstore.NewPool(ctx, postgresDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	applied, err := migrations.RunPostgresMigrations(ctx, pool)
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("postgres migrations: %w", err)
	}
	logger.Printf("Applied %d postgres migrations", applied)

	// ClickHouse
	chConn, err := migrations.RunClickhouseMigrations(ctx, clickhouseDSN)
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("clickhouse migrations: %w", err)
	}

	stores := &allStores{
		// PostgreSQL stores (saved scenarios)
		scenarioStore: pgstore.NewScenarioStore(pool),

		// ClickHouse stores (analytics)
		runSummaryStore: chstore.NewRunSummaryStore(chConn),
	}

	cleanup := func() {
		chConn.Close()
		pool.Close()
	}

	return stores, cleanup, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

// loadEnvFile loads environment variables from .env file if it exists.
func loadEnvFile() {
	data, err := os.ReadFile(".env")
	if err != nil {
		return // File doesn't exist, use system env vars
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"'`)

		// Don't override existing env vars
		if _, set := os.LookupEnv(key); !set {
			os.Setenv(key, value)
		}
	}
}
