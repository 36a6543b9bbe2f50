// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/univen/housing-portal/cliparse"
	"github.com/univen/housing-portal/db"
	"github.com/univen/housing-portal/janitor"
	"github.com/univen/housing-portal/mailer"
	"github.com/univen/housing-portal/metrics"
	"github.com/univen/housing-portal/middleware"
	"github.com/univen/housing-portal/resetstore"
	"github.com/univen/housing-portal/router"
	"github.com/univen/housing-portal/sessions"
)

func main() {
	var err error

	// Optional .env next to the binary
	if err := cliparse.LoadEnvFile(".env"); err != nil {
		slog.Error("Error loading .env", "error", err)
		os.Exit(1)
	}

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	// Connect to the database
	dbConn, err := db.Open(ctx, cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		slog.Error("database connection failed", "type", cfg.DatabaseType, "error", err)
		os.Exit(1)
	}
	defer dbConn.Close()

	// Create schema (tables) and seed data
	if err := db.CreateSchema(dbConn); err != nil {
		slog.Error("schema creation failed", "error", err)
		os.Exit(1)
	}
	if err := seed(ctx, dbConn, cfg); err != nil {
		slog.Error("seeding failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database schema ready", "type", cfg.DatabaseType)

	codes, closeCodes, err := openResetStore(ctx, dbConn, cfg)
	if err != nil {
		slog.Error("reset store unavailable", "store", cfg.ResetStore, "error", err)
		os.Exit(1)
	}
	defer closeCodes()

	m := metrics.New()
	deps := router.Deps{
		Sessions: sessions.NewStore(dbConn, cfg.SessionTTL),
		Codes:    codes,
		Mail:     mailer.New(cfg.SMTP),
		Metrics:  m,
		Limiter:  middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, cfg.IPHashSalt, m),
	}

	// Background cleanup
	jan := janitor.New(deps.Sessions, codes, deps.Limiter, m)
	if err := jan.Start(janitor.DefaultSchedule); err != nil {
		slog.Error("janitor failed to start", "error", err)
		os.Exit(1)
	}

	// Create server
	server := http.Server{
		Handler:           router.NewRouter(dbConn, cfg, deps),
		Addr:              ":" + strconv.Itoa(cfg.Port),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	go func() {
		// Wait for Ctrl-C signal
		<-ctrlc
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		jan.Stop(shutdownCtx)
		server.Shutdown(shutdownCtx)
	}()

	// Start server
	slog.Info("Listening", "port", cfg.Port)
	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		slog.Error("Server closed", "error", err)
	} else {
		slog.Info("Server closed", "error", err)
	}
}

func seed(ctx context.Context, conn *sql.DB, cfg cliparse.Config) error {
	if err := db.SeedResidences(ctx, conn); err != nil {
		return err
	}
	if err := db.SeedAdmin(ctx, conn, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		return err
	}
	if cfg.SeedDemo {
		return db.SeedDemoStudents(ctx, conn)
	}
	return nil
}

// openResetStore picks the reset code backend. The returned func releases it.
func openResetStore(ctx context.Context, conn *sql.DB, cfg cliparse.Config) (resetstore.Store, func(), error) {
	if cfg.ResetStore != cliparse.ResetStoreRedis {
		return resetstore.NewSQLStore(conn), func() {}, nil
	}

	rs, err := resetstore.NewRedisStore(cfg.RedisURL)
	if err != nil {
		return nil, nil, err
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rs.Ping(pingCtx); err != nil {
		rs.Close()
		return nil, nil, err
	}
	return rs, func() { rs.Close() }, nil
}
