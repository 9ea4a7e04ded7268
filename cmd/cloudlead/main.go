package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"cloudlead/internal/app"
	"cloudlead/internal/config"
	"cloudlead/internal/logging"
)

// Runs the webhook server and the poll loop in one process.
func main() {
	cfg := config.Load()

	logger, err := logging.New("cloudlead", cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	w, err := app.NewWorker(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("init worker", zap.Error(err))
	}
	defer w.Close()

	srv := app.NewAPIServer(cfg, logger)
	defer srv.Close()

	httpServer := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           srv.Server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	var g errgroup.Group
	g.Go(func() error {
		logger.Info("api listening", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			cancel()
			return err
		}
		return nil
	})
	g.Go(func() error {
		err := w.Poller.Run(ctx)
		logger.Info("automation stopped")
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancelShutdown()
		_ = httpServer.Shutdown(shutdownCtx)
		return err
	})

	if err := g.Wait(); err != nil {
		logger.Error("cloudlead exited", zap.Error(err))
	}
}
