package app

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"cloudlead/internal/airtable"
	"cloudlead/internal/api"
	"cloudlead/internal/archive"
	"cloudlead/internal/completion"
	"cloudlead/internal/config"
	"cloudlead/internal/ratelimit"
	"cloudlead/internal/store"
	"cloudlead/internal/synth"
	"cloudlead/internal/worker"
)

// Worker bundles the poll loop with whatever needs closing on shutdown.
type Worker struct {
	Poller  *worker.Poller
	closers []func()
}

// Close releases the worker's resources.
func (w *Worker) Close() {
	for i := len(w.closers) - 1; i >= 0; i-- {
		w.closers[i]()
	}
}

// NewWorker wires the record store client, synthesizer, optional ledger and
// archive into a poll loop.
func NewWorker(ctx context.Context, cfg config.Config, logger *zap.Logger) (*Worker, error) {
	w := &Worker{}
	records := airtable.New(cfg, logger)

	var analyzer synth.Analyzer
	if cfg.AIEnabled() {
		analyzer = completion.New(cfg)
	} else {
		logger.Warn("OpenAI not configured, lead notes will use a placeholder")
	}
	synthesizer := synth.New(analyzer, logger)

	var opts []worker.Option
	if cfg.PostgresDSN != "" {
		st, err := store.New(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		w.closers = append(w.closers, st.Close)
		if err := st.RunMigrations(ctx); err != nil {
			w.Close()
			return nil, err
		}
		opts = append(opts, worker.WithRecorder(st))
	}
	if cfg.ArchiveEnabled() {
		arc, err := archive.New(ctx, cfg)
		if err != nil {
			w.Close()
			return nil, err
		}
		opts = append(opts, worker.WithArchiver(arc))
	}

	processor := worker.NewProcessor(records, synthesizer, logger, opts...)
	w.Poller = worker.NewPoller(records, processor, cfg.PollInterval, logger)
	return w, nil
}

// APIServer bundles the webhook server with its Redis client, if any.
type APIServer struct {
	Server  *api.Server
	closers []func()
}

// Close releases the server's resources.
func (s *APIServer) Close() {
	for _, c := range s.closers {
		c()
	}
}

// NewAPIServer wires the webhook endpoint. Rate limiting is enabled when
// REDIS_ADDR is set.
func NewAPIServer(cfg config.Config, logger *zap.Logger) *APIServer {
	out := &APIServer{}
	var limiter api.Limiter
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		out.closers = append(out.closers, func() { _ = client.Close() })
		limiter = ratelimit.NewTokenBucket(client, cfg.RateLimitCapacity, cfg.RateLimitRefill, time.Hour)
	}
	out.Server = api.New(cfg, airtable.New(cfg, logger), limiter, logger)
	return out
}
