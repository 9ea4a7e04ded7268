package worker

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"cloudlead/internal/models"
	"cloudlead/internal/telemetry"
)

// ProjectHandler processes a single project.
type ProjectHandler interface {
	ProcessProject(ctx context.Context, project models.Project) string
}

// Poller repeatedly lists New projects and hands them to the processor, one
// at a time.
type Poller struct {
	store     ProjectStore
	processor ProjectHandler
	interval  time.Duration
	logger    *zap.Logger
}

// NewPoller builds the loop. A non-positive interval defaults to 60s.
func NewPoller(store ProjectStore, processor ProjectHandler, interval time.Duration, logger *zap.Logger) *Poller {
	if interval <= 0 {
		interval = 60 * time.Second
	}
	return &Poller{
		store:     store,
		processor: processor,
		interval:  interval,
		logger:    logger.With(zap.String("component", "poller")),
	}
}

// Run loops until ctx is cancelled, then returns nil.
func (p *Poller) Run(ctx context.Context) error {
	p.logger.Info("starting poll loop", zap.Duration("interval", p.interval))
	for {
		if err := p.PollOnce(ctx); err != nil {
			p.logger.Error("error in poll loop", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			p.logger.Info("poll loop stopped")
			return nil
		case <-time.After(p.interval):
		}
	}
}

// PollOnce fetches New projects and processes them in order. A panic inside
// the iteration is recovered and returned as an error.
func (p *Poller) PollOnce(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			telemetry.PollPanics.Inc()
			err = fmt.Errorf("poll iteration panicked: %v", r)
		}
	}()
	telemetry.PollCycles.Inc()

	projects := p.store.FetchNewProjects(ctx)
	if len(projects) == 0 {
		p.logger.Info("no new projects found", zap.Duration("next_check", p.interval))
		return nil
	}

	p.logger.Info("processing new projects", zap.Int("count", len(projects)))
	for _, project := range projects {
		if ctx.Err() != nil {
			return nil
		}
		// A started project runs to a terminal status even if shutdown begins.
		p.processor.ProcessProject(context.WithoutCancel(ctx), project)
	}
	return nil
}
