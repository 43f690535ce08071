// Package main is the headless day/night host. It drives the sky simulation
// from a fixed-rate frame loop, reads sdn.* commands from stdin and exposes
// Prometheus metrics.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-daynight/internal/config"
	"github.com/Faultbox/midgard-daynight/internal/console"
	"github.com/Faultbox/midgard-daynight/internal/daynight"
	"github.com/Faultbox/midgard-daynight/internal/engine/scene"
	"github.com/Faultbox/midgard-daynight/internal/engine/timer"
	"github.com/Faultbox/midgard-daynight/internal/game"
	"github.com/Faultbox/midgard-daynight/internal/logger"
	"github.com/Faultbox/midgard-daynight/internal/metrics"
	"github.com/Faultbox/midgard-daynight/internal/params"
	"github.com/Faultbox/midgard-daynight/internal/tracing"
)

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	// Load configuration
	cfg, cfgPath, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== Midgard Day/Night ===", zap.String("config", cfgPath))
	logger.Sugar.Debugf("Config: %+v", cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, cfgPath); err != nil {
		logger.Error("host error", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("host stopped normally")
}

func run(ctx context.Context, cfg *config.Config, cfgPath string) error {
	shutdownTracing, err := tracing.Init(ctx, tracing.Config{
		Enabled: cfg.Tracing.Enabled,
		File:    cfg.Tracing.File,
	}, logger.Named("tracing"))
	if err != nil {
		return fmt.Errorf("initializing tracing: %w", err)
	}
	defer tracing.ShutdownWithTimeout(shutdownTracing, logger.Log)

	col, err := metrics.New(prometheus.DefaultRegisterer)
	if err != nil {
		return fmt.Errorf("registering metrics: %w", err)
	}
	if cfg.Metrics.Addr != "" {
		srv := serveMetrics(cfg.Metrics.Addr, col)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	store := params.NewStore(params.FromConfig(cfg.DayNight))
	if cfg.DayNight.PersistChanges {
		path := cfgPath
		if path == "" {
			path = filepath.Join(config.ConfigDir(), config.FileName)
		}
		defer params.Persist(store, cfg, path, logger.Named("persist"))()
		logger.Info("persisting parameter changes", zap.String("path", path))
	}

	sky := scene.New(logger.Named("scene"))
	timers := timer.NewFrameTimers()

	ctrl, err := daynight.New(daynight.Options{
		Params:    store,
		Timers:    timers,
		Sink:      sky,
		TimeOfDay: cfg.DayNight.TimeOfDay,
		Logger:    logger.Named("daynight"),
		Metrics:   col,
	})
	if err != nil {
		return fmt.Errorf("creating controller: %w", err)
	}
	ctrl.Start()
	defer ctrl.Stop()

	con := console.New(store, ctrl, os.Stdout, logger.Named("console"))
	go func() {
		if err := con.Run(ctx, os.Stdin); err != nil {
			logger.Warn("console stopped", zap.Error(err))
		}
	}()

	g, err := game.New(game.Options{
		Config: game.Config{
			FPS:            cfg.Loop.FPS,
			MaxFrames:      cfg.Loop.MaxFrames,
			StatusInterval: cfg.Loop.StatusInterval,
		},
		Simulation: ctrl,
		Timers:     timers,
		Light:      sky,
		Metrics:    col,
		Logger:     logger.Named("loop"),
	})
	if err != nil {
		return fmt.Errorf("creating frame loop: %w", err)
	}
	return g.Run(ctx)
}

func serveMetrics(addr string, col *metrics.Collector) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", col.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("serving metrics", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", zap.Error(err))
		}
	}()
	return srv
}
