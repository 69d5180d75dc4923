package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vntrieu/mafia/internal/auth"
	"github.com/vntrieu/mafia/internal/config"
	"github.com/vntrieu/mafia/internal/database"
	"github.com/vntrieu/mafia/internal/games"
	"github.com/vntrieu/mafia/internal/httpapi"
	"github.com/vntrieu/mafia/internal/logging"
	"github.com/vntrieu/mafia/internal/ratelimit"
	"github.com/vntrieu/mafia/internal/store"
	"github.com/vntrieu/mafia/internal/websocket"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}
	level, _ := cfg.Level()
	logger := logging.New(os.Stderr, level)
	slog.SetDefault(logger)

	tokenSecret := []byte(cfg.TokenSecret)
	if len(tokenSecret) == 0 {
		tokenSecret, err = auth.RandomSecret(32)
		if err != nil {
			slog.Error("generate token secret", "err", err)
			os.Exit(1)
		}
		slog.Warn("MAFIA_TOKEN_SECRET not set, host tokens will not survive a restart")
	}

	ctx, stopSignals := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	matches := store.NewMemoryStore()
	deps := httpapi.Deps{
		Matches:     matches,
		Live:        matches,
		TokenSecret: tokenSecret,
		CORSOrigins: cfg.CORSOrigins,
		Logger:      logger,
	}

	// The archive is optional; without DATABASE_URL finished matches are only logged.
	var archiver games.Archiver
	if cfg.ArchiveEnabled() {
		pool, err := database.Connect(ctx, cfg.DatabaseURL, cfg.DBMaxConns)
		if err != nil {
			slog.Error("database connect", "tag", "database", "err", err)
			os.Exit(1)
		}
		defer pool.Close()

		if err := database.Migrate(ctx, pool, cfg.MigrationsDir); err != nil {
			slog.Error("database migrate", "tag", "database", "err", err)
			os.Exit(1)
		}
		archive := store.NewArchiveStore(pool, logger)
		archiver = archive
		deps.Archive = archive
		deps.ArchivePing = pool
	} else {
		slog.Info("DATABASE_URL not set, match archive disabled", "tag", "archive")
	}

	engine := games.NewEngine(matches, archiver, logger)
	deps.Engine = engine

	limiter := ratelimit.New(cfg.RateLimit, cfg.RateWindow)
	if mem, ok := limiter.(*ratelimit.InMemory); ok {
		go mem.Run(cfg.RateWindow, ctx.Done())
	}
	deps.Limiter = limiter

	// The hub outlives the signal context so handlers draining during
	// Shutdown can still publish.
	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	hub := websocket.NewHub(logger)
	go hub.Run(hubCtx)
	deps.Feed = websocket.NewEventHandler(hub, engine, logger)
	deps.Spectators = websocket.NewWSHandler(hub, engine, limiter, logger)

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      httpapi.NewRouter(deps),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("mafia host listening", "tag", "http", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("http server error", "tag", "http", "err", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down", "tag", "http")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Warn("graceful shutdown failed", "tag", "http", "err", err)
	}
	stopHub()
}
