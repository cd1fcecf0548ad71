package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/YoavSilman/Suicides-Dashboard/internal/api"
	"github.com/YoavSilman/Suicides-Dashboard/internal/config"
	"github.com/YoavSilman/Suicides-Dashboard/internal/dashboard"
	"github.com/YoavSilman/Suicides-Dashboard/internal/engine"
	"github.com/YoavSilman/Suicides-Dashboard/internal/logging"
)

func main() {
	// 1. Config + logger
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger := logging.New(cfg.Logging)

	sources, err := cfg.Sources(dashboard.DefaultSources())
	if err != nil {
		logger.Error("manifest", slog.Any("error", err))
		os.Exit(1)
	}

	// 2. Handler starts with no views: /api answers 503 until the tables are in
	metrics := api.NewMetrics()
	h := api.NewHandler(nil)
	e := api.NewServer(cfg.Server, h, metrics, logger)
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Load every raw table in the background, once
	registry := engine.NewRegistry(os.DirFS(cfg.Data.Dir), sources, engine.WithLogger(logger))
	go func() {
		logger.Info("loading tables", slog.String("dir", cfg.Data.Dir), slog.Any("tables", registry.Names()))
		t0 := time.Now()

		if err := registry.LoadAll(ctx); err != nil {
			// No partial registry is ever served.
			logger.Error("table load failed", slog.Any("error", err))
			os.Exit(1)
		}
		metrics.ObserveLoad(time.Since(t0))
		h.SetViews(dashboard.NewAggregator(registry, logger))

		logger.Info("tables ready", slog.Duration("took", time.Since(t0)))
	}()

	// 4. Serve
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	go func() {
		logger.Info("server listening", slog.String("addr", addr))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", slog.Any("error", err))
	}
}
