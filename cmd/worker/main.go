package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"cloudlead/internal/app"
	"cloudlead/internal/config"
	"cloudlead/internal/logging"
	"cloudlead/internal/telemetry"
)

func main() {
	cfg := config.Load()

	logger, err := logging.New("cloudlead-worker", cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	w, err := app.NewWorker(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("init worker", zap.Error(err))
	}
	defer w.Close()

	go func() {
		if err := http.ListenAndServe(cfg.MetricsAddr, telemetry.Handler()); err != nil {
			logger.Warn("metrics server stopped", zap.Error(err))
		}
	}()

	logger.Info("worker started", zap.Duration("poll_interval", cfg.PollInterval), zap.Bool("ai_enabled", cfg.AIEnabled()))
	if err := w.Poller.Run(ctx); err != nil {
		logger.Error("worker stopped", zap.Error(err))
	}
}
