package worker

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"cloudlead/internal/models"
	"cloudlead/internal/telemetry"
)

// ProjectStore is the slice of the record store the processor needs.
type ProjectStore interface {
	FetchNewProjects(ctx context.Context) []models.Project
	SetProjectStatus(ctx context.Context, projectID, status string, leadCount int) bool
	InsertLeads(ctx context.Context, projectID string, leads []models.Lead) bool
}

// LeadSynthesizer produces leads for a project.
type LeadSynthesizer interface {
	Synthesize(ctx context.Context, industry string, count int) []models.Lead
}

// RunRecorder persists one row per processing attempt.
type RunRecorder interface {
	RecordRun(ctx context.Context, run models.ProjectRun) error
}

// LeadArchiver stores a snapshot of a completed project's leads.
type LeadArchiver interface {
	Store(ctx context.Context, project models.Project, leads []models.Lead) (string, error)
}

// Option configures optional collaborators.
type Option func(*Processor)

// WithRecorder attaches a run ledger.
func WithRecorder(r RunRecorder) Option {
	return func(p *Processor) { p.recorder = r }
}

// WithArchiver attaches a lead archive.
func WithArchiver(a LeadArchiver) Option {
	return func(p *Processor) { p.archiver = a }
}

// Processor moves projects from New to Completed or Failed.
type Processor struct {
	store    ProjectStore
	synth    LeadSynthesizer
	recorder RunRecorder
	archiver LeadArchiver
	logger   *zap.Logger
	now      func() time.Time
}

// NewProcessor wires the processor. Recorder and archiver are optional.
func NewProcessor(store ProjectStore, synth LeadSynthesizer, logger *zap.Logger, opts ...Option) *Processor {
	p := &Processor{
		store:  store,
		synth:  synth,
		logger: logger.With(zap.String("component", "processor")),
		now:    time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

// ProcessProject runs one project through In Progress to a terminal status
// and returns that status. When the In Progress update fails nothing else
// runs and the project's status is returned unchanged.
func (p *Processor) ProcessProject(ctx context.Context, project models.Project) string {
	started := p.now()
	log := p.logger.With(zap.String("project_id", project.ID), zap.String("project_name", project.DisplayName()))
	log.Info("processing project")
	telemetry.ProjectsSeen.Inc()

	if !p.store.SetProjectStatus(ctx, project.ID, models.StatusInProgress, 0) {
		log.Error("failed to move project to In Progress, skipping")
		telemetry.ProjectsAborted.Inc()
		return project.Status
	}

	industry := project.ResolvedIndustry()
	leads := p.synth.Synthesize(ctx, industry, project.ResolvedLeadCount())
	log.Info("generated leads", zap.String("industry", industry), zap.Int("count", len(leads)))

	run := models.ProjectRun{
		ID:          uuid.New().String(),
		ProjectID:   project.ID,
		ProjectName: project.Name,
		Industry:    industry,
		StartedAt:   started.UTC(),
	}

	if p.store.InsertLeads(ctx, project.ID, leads) {
		run.Status = models.StatusCompleted
		run.LeadCount = len(leads)
		if p.store.SetProjectStatus(ctx, project.ID, models.StatusCompleted, len(leads)) {
			run.Detail = "leads written"
		} else {
			run.Detail = "leads written, Completed update rejected"
			log.Error("failed to record Completed status")
		}
		telemetry.ProjectsCompleted.Inc()
		telemetry.LeadsWritten.Add(float64(len(leads)))
		log.Info("completed project", zap.Int("leads", len(leads)))
		p.archive(ctx, log, project, leads)
	} else {
		run.Status = models.StatusFailed
		run.Detail = "lead insertion failed"
		if !p.store.SetProjectStatus(ctx, project.ID, models.StatusFailed, 0) {
			log.Error("failed to record Failed status")
		}
		telemetry.ProjectsFailed.Inc()
		log.Error("failed to process project")
	}

	run.FinishedAt = p.now().UTC()
	p.record(ctx, log, run)
	return run.Status
}

func (p *Processor) archive(ctx context.Context, log *zap.Logger, project models.Project, leads []models.Lead) {
	if p.archiver == nil {
		return
	}
	loc, err := p.archiver.Store(ctx, project, leads)
	if err != nil {
		log.Warn("archive leads failed", zap.Error(err))
		return
	}
	log.Info("archived leads", zap.String("location", loc))
}

func (p *Processor) record(ctx context.Context, log *zap.Logger, run models.ProjectRun) {
	if p.recorder == nil {
		return
	}
	if err := p.recorder.RecordRun(ctx, run); err != nil {
		log.Warn("record run failed", zap.Error(err))
	}
}
