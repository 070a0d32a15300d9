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

	"github.com/joho/godotenv"

	"github.com/antoniostano/memora/internal/app"
	"github.com/antoniostano/memora/internal/config"
	"github.com/antoniostano/memora/internal/reliability"
)

func main() {
	// A present .env overrides nothing already in the environment; a missing
	// one is not an error.
	_ = godotenv.Load()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config error", "err", err)
		os.Exit(1)
	}

	runCtx, runCancel := context.WithCancel(context.Background())
	defer runCancel()

	result, err := app.Build(runCtx, cfg)
	if err != nil {
		slog.Error("build failed", "err", err)
		os.Exit(1)
	}
	defer func() {
		if err := result.Cleanup(); err != nil {
			slog.Error("cleanup failed", "err", err)
		}
	}()

	httpServer := &http.Server{
		Addr:    cfg.BindAddr,
		Handler: result.API.Router(),
	}
	go func() {
		slog.Info("http server listening", "addr", cfg.BindAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("listen error", "err", err)
			os.Exit(1)
		}
	}()

	if result.Bot != nil {
		go runBot(runCtx, result)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	slog.Info("shutdown signal received")

	runCancel()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("graceful shutdown failed", "err", err)
		_ = httpServer.Close()
	}

	slog.Info("shutdown complete")
}

// runBot keeps the room connection alive, reconnecting with capped backoff.
// A connection that held for a while resets the backoff schedule.
func runBot(ctx context.Context, result *app.BuildResult) {
	const (
		backoffBase = time.Second
		backoffCap  = 30 * time.Second
		stableAfter = time.Minute
	)

	attempt := 0
	for {
		started := time.Now()
		err := result.Bot.Run(ctx)
		if ctx.Err() != nil {
			return
		}
		if time.Since(started) > stableAfter {
			attempt = 0
		}

		delay := reliability.ExponentialBackoff(attempt, backoffBase, backoffCap)
		slog.Error("room connection lost", "err", err, "retry_in", delay)
		attempt++

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return
		}
	}
}
