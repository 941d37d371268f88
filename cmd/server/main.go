// Package main is the entry point for the dataprobe API server.
package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
	_ "github.com/mattn/go-sqlite3"

	"dataprobe/internal/api"
	"dataprobe/internal/config"
	internaldb "dataprobe/internal/db"
	"dataprobe/internal/declarative"
	"dataprobe/internal/repository"
	"dataprobe/internal/service"
	"dataprobe/internal/validation"
)

func main() {
	// Load .env file (if present)
	if err := config.LoadDotEnv(".env"); err != nil {
		log.Printf("warning: could not load .env: %v", err)
	}

	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)
	for _, w := range cfg.Warnings {
		logger.Warn(w)
	}

	// Open the warehouse under test. Empty path means an in-memory DuckDB.
	warehouse, err := sql.Open("duckdb", cfg.WarehousePath)
	if err != nil {
		log.Fatalf("open warehouse: %v", err)
	}
	defer warehouse.Close()

	// Open SQLite metastore with hardened connection settings.
	// writeDB: single-connection pool for serialized writes (WAL + txlock=immediate).
	// readDB:  4-connection pool for concurrent reads (WAL, no txlock).
	writeDB, readDB, err := internaldb.OpenSQLitePair(cfg.MetaDBPath, 4)
	if err != nil {
		log.Fatalf("open metastore: %v", err)
	}
	defer writeDB.Close()
	defer readDB.Close()

	if err := internaldb.RunMigrations(writeDB); err != nil {
		log.Fatalf("migrations: %v", err)
	}

	suites, err := declarative.LoadDirectory(cfg.SuiteDir)
	if err != nil {
		log.Fatalf("load suites from %s: %v", cfg.SuiteDir, err)
	}
	logger.Info("loaded suite definitions", "dir", cfg.SuiteDir, "suites", len(suites))

	registry := validation.NewRegistry(logger)
	svc := service.NewSuiteService(warehouse, registry, repository.NewResultRepo(writeDB), logger, cfg.Parallelism)
	if cfg.QueryRPS > 0 {
		svc.SetQueryRateLimit(cfg.QueryRPS)
	}

	scheduler := service.NewScheduler(svc, logger)
	if err := scheduler.Start(suites); err != nil {
		log.Fatalf("scheduler: %v", err)
	}
	defer scheduler.Stop()

	handler := api.NewHandler(suites, svc, repository.NewResultRepo(readDB), logger)
	srv := &http.Server{
		Addr: cfg.ListenAddr,
		Handler: handler.Router(api.RouterConfig{
			JWTSecret:          cfg.JWTSecret,
			RateLimitRPS:       cfg.RateLimitRPS,
			RateLimitBurst:     cfg.RateLimitBurst,
			CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("HTTP API listening", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "error", err)
	}
}
