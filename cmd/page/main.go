package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/volunteer-map-page/internal/adapter/http"
	"github.com/couchcryptid/volunteer-map-page/internal/adapter/backend"
	"github.com/couchcryptid/volunteer-map-page/internal/config"
	"github.com/couchcryptid/volunteer-map-page/internal/mapview"
	"github.com/couchcryptid/volunteer-map-page/internal/observability"
	"github.com/couchcryptid/volunteer-map-page/internal/page"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	client := backend.NewClient(cfg.BackendURL, cfg.BackendTimeout, metrics, logger)
	logger.Info("volunteer backend configured", "url", cfg.BackendURL, "timeout", cfg.BackendTimeout)

	newPage := func(id string) *page.Shell {
		return page.NewShell(id, page.Deps{
			Time:       client,
			Locations:  client,
			MapOptions: mapview.Options{SettleDelay: cfg.MapSettleDelay},
			Logger:     logger,
			Metrics:    metrics,
		})
	}
	pages := page.NewRegistry(cfg.PageCacheSize, metrics)

	srv := httpadapter.NewServer(cfg.HTTPAddr, newPage, pages, client, cfg.RenderTimeout, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	pages.CloseAll()

	logger.Info("shutdown complete")
}
