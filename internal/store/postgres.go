package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"cloudlead/internal/models"
)

// Store keeps the project run ledger in Postgres.
type Store struct {
	pool *pgxpool.Pool
}

// New creates a pooled connection to Postgres.
func New(ctx context.Context, dsn string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, eris.Wrap(err, "parse postgres dsn")
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, eris.Wrap(err, "connect postgres")
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// RecordRun appends a ledger row. An empty run ID is filled in.
func (s *Store) RecordRun(ctx context.Context, run models.ProjectRun) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.FinishedAt.IsZero() {
		run.FinishedAt = time.Now().UTC()
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO project_runs (id, project_id, project_name, industry, status, lead_count, detail, started_at, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, run.ID, run.ProjectID, run.ProjectName, run.Industry, run.Status, run.LeadCount, run.Detail, run.StartedAt, run.FinishedAt)
	if err != nil {
		return eris.Wrap(err, "insert project run")
	}
	return nil
}

// RecentRuns returns the latest ledger rows, newest first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]models.ProjectRun, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, project_id, project_name, industry, status, lead_count, detail, started_at, finished_at
		FROM project_runs ORDER BY finished_at DESC LIMIT $1
	`, limit)
	if err != nil {
		return nil, eris.Wrap(err, "query project runs")
	}
	defer rows.Close()

	var runs []models.ProjectRun
	for rows.Next() {
		var r models.ProjectRun
		var id uuid.UUID
		if err := rows.Scan(&id, &r.ProjectID, &r.ProjectName, &r.Industry, &r.Status, &r.LeadCount, &r.Detail, &r.StartedAt, &r.FinishedAt); err != nil {
			return nil, eris.Wrap(err, "scan project run")
		}
		r.ID = id.String()
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "iterate project runs")
	}
	return runs, nil
}
