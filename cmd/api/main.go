// Package main is the entry point for the vehicle inventory API server.
// Its sole responsibility is wiring dependencies together and starting
// the server. No business logic belongs here.
package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx" driver for goose
	"github.com/pressly/goose/v3"

	"github.com/dararith/vehicle-inventory/backend/internal/auth"
	"github.com/dararith/vehicle-inventory/backend/internal/cache"
	"github.com/dararith/vehicle-inventory/backend/internal/config"
	"github.com/dararith/vehicle-inventory/backend/internal/handler"
	"github.com/dararith/vehicle-inventory/backend/internal/middleware"
	"github.com/dararith/vehicle-inventory/backend/internal/service"
	"github.com/dararith/vehicle-inventory/backend/internal/sheet"
	"github.com/dararith/vehicle-inventory/backend/migrations"
)

// maxBodyBytes bounds request bodies. Inline base64 images are the only
// legitimately large payloads; 24 MiB leaves headroom over the
// dashboard's compressed-image ceiling.
const maxBodyBytes = 24 << 20

func main() {
	// --- Config -----------------------------------------------------------
	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	// JSON handler writes machine-readable output suitable for log aggregators.
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// --- Cache store ------------------------------------------------------
	// Default is the in-process slot. With CACHE_DATABASE_URL set, the
	// snapshot lives in Postgres instead and survives restarts.
	var store cache.Store = cache.NewMemory(cfg.CacheTTL, nil)
	if cfg.CacheDatabaseURL != "" {
		if err := migrateCacheDB(cfg.CacheDatabaseURL); err != nil {
			slog.Error("cache database migration failed", "error", err)
			os.Exit(1)
		}
		pool, err := pgxpool.New(context.Background(), cfg.CacheDatabaseURL)
		if err != nil {
			slog.Error("failed to create cache database pool", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		if err := pool.Ping(context.Background()); err != nil {
			slog.Error("failed to connect to cache database", "error", err)
			os.Exit(1)
		}
		store = cache.NewPG(pool, cfg.CacheTTL, nil, logger)
		slog.Info("using postgres cache store")
	}

	// --- Upstream ---------------------------------------------------------
	upstream := sheet.NewClient(cfg.UpstreamURL, cfg.UpstreamToken, cfg.Timeouts, logger)

	// Reachability probe only; a cold upstream is worth a warning, not a
	// refusal to start.
	pingCtx, cancelPing := context.WithTimeout(context.Background(), cfg.Timeouts.Health)
	if err := upstream.Ping(pingCtx); err != nil {
		slog.Warn("upstream unreachable at startup", "error", err)
	}
	cancelPing()

	// --- Services ---------------------------------------------------------
	vehicles := service.NewVehicleService(upstream, store, cfg.FolderIDs, logger)
	sessions := auth.NewService(cfg.SessionSecret, 0)

	// --- Router -----------------------------------------------------------
	// Middleware is applied in order: RequestID → RealIP → Logger →
	// Recoverer → CORS → body cap. Auth guards are attached per route
	// group inside Server.Routes.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(maxBodyBytes))

	srv := handler.NewServer(vehicles, cfg.CronSecret)
	r.Mount("/", srv.Routes(
		middleware.RequireSession(sessions),
		middleware.RequireAdmin(),
	))

	// --- HTTP Server ------------------------------------------------------
	// Write timeout must exceed the upstream upload budget or long
	// image uploads get cut off mid-response.
	httpSrv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.Timeouts.Upload + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown: wait for OS signal, then give in-flight requests
	// up to 15 seconds to complete before forcefully closing.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "addr", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	slog.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// migrateCacheDB applies the embedded migrations so the snapshot table
// exists before the first cache write.
func migrateCacheDB(dsn string) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	if err != nil {
		return err
	}
	_, err = provider.Up(context.Background())
	return err
}
