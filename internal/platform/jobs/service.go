package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"timekeeper/internal/platform/querier"
)

const (
	JobCorrection          = "attendance_correction"
	JobScheduledCorrection = "attendance_correction_scheduled"

	StatusQueued    = "queued"
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

var (
	ErrQueueFull   = errors.New("job queue full")
	ErrJobNotFound = errors.New("job not found")
)

type RunFunc func(context.Context) (any, error)

// Service runs jobs on a single background worker and books every run in
// job_runs so callers can poll for the outcome.
type Service struct {
	DB    querier.Querier
	queue chan job
}

type job struct {
	ID       string
	Type     string
	TenantID string
	Run      RunFunc
}

type Run struct {
	ID          string          `json:"id"`
	TenantID    string          `json:"tenantId"`
	JobType     string          `json:"jobType"`
	Status      string          `json:"status"`
	Details     json.RawMessage `json:"details,omitempty"`
	StartedAt   time.Time       `json:"startedAt"`
	CompletedAt *time.Time      `json:"completedAt,omitempty"`
}

func New(db querier.Querier) *Service {
	return newWithQueue(db, 128)
}

func newWithQueue(db querier.Querier, size int) *Service {
	return &Service{
		DB:    db,
		queue: make(chan job, size),
	}
}

func (s *Service) Start(ctx context.Context) {
	go s.worker(ctx)
}

// Enqueue books a queued run and hands it to the worker. The run id is
// returned even when the queue is full; that run is marked failed.
func (s *Service) Enqueue(ctx context.Context, jobType, tenantID string, run RunFunc) (string, error) {
	id, err := s.insertRun(ctx, jobType, tenantID, StatusQueued)
	if err != nil {
		return "", err
	}
	select {
	case s.queue <- job{ID: id, Type: jobType, TenantID: tenantID, Run: run}:
		return id, nil
	default:
		slog.Warn("job queue full", "jobType", jobType, "tenantId", tenantID)
		s.finishRun(ctx, id, StatusFailed, map[string]any{"error": ErrQueueFull.Error()})
		return id, ErrQueueFull
	}
}

func (s *Service) RunNow(ctx context.Context, jobType, tenantID string, run RunFunc) (any, error) {
	id, err := s.insertRun(ctx, jobType, tenantID, StatusRunning)
	if err != nil {
		slog.Warn("job run insert failed", "jobType", jobType, "err", err)
	}
	return s.runJob(ctx, job{ID: id, Type: jobType, TenantID: tenantID, Run: run})
}

func (s *Service) Get(ctx context.Context, tenantID, id string) (Run, error) {
	var out Run
	var details []byte
	err := s.DB.QueryRow(ctx, `
    SELECT id::text, tenant_id, job_type, status, details_json, started_at, completed_at
    FROM job_runs
    WHERE tenant_id = $1 AND id::text = $2
  `, tenantID, id).Scan(&out.ID, &out.TenantID, &out.JobType, &out.Status, &details, &out.StartedAt, &out.CompletedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Run{}, ErrJobNotFound
	}
	if err != nil {
		return Run{}, err
	}
	if len(details) > 0 {
		out.Details = details
	}
	return out, nil
}

// Schedule enqueues run for every tenant returned by tenants on each tick,
// until ctx is done.
func (s *Service) Schedule(ctx context.Context, jobType string, interval time.Duration, tenants func(context.Context) ([]string, error), run func(tenantID string) RunFunc) {
	if interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				ids, err := tenants(ctx)
				if err != nil {
					slog.Warn("scheduler tenant lookup failed", "jobType", jobType, "err", err)
					continue
				}
				for _, tenantID := range ids {
					if _, err := s.Enqueue(ctx, jobType, tenantID, run(tenantID)); err != nil {
						slog.Warn("scheduled job not queued", "jobType", jobType, "tenantId", tenantID, "err", err)
					}
				}
			}
		}
	}()
}

func (s *Service) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-s.queue:
			if j.ID != "" {
				if _, err := s.DB.Exec(ctx, `UPDATE job_runs SET status = $1, started_at = now() WHERE id::text = $2`, StatusRunning, j.ID); err != nil {
					slog.Warn("job run update failed", "err", err)
				}
			}
			if _, err := s.runJob(ctx, j); err != nil {
				slog.Warn("job run failed", "jobType", j.Type, "tenantId", j.TenantID, "err", err)
			}
		}
	}
}

func (s *Service) runJob(ctx context.Context, j job) (any, error) {
	details, err := j.Run(ctx)
	status := StatusCompleted
	recorded := details
	if err != nil {
		status = StatusFailed
		recorded = map[string]any{"error": err.Error()}
	}
	if j.ID != "" {
		s.finishRun(ctx, j.ID, status, recorded)
	}
	return details, err
}

func (s *Service) insertRun(ctx context.Context, jobType, tenantID, status string) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO job_runs (tenant_id, job_type, status)
    VALUES ($1,$2,$3)
    RETURNING id::text
  `, tenantID, jobType, status).Scan(&id)
	return id, err
}

func (s *Service) finishRun(ctx context.Context, id, status string, details any) {
	detailsJSON, err := json.Marshal(details)
	if err != nil {
		slog.Warn("job details marshal failed", "err", err)
		detailsJSON = []byte("{}")
	}
	if _, err := s.DB.Exec(ctx, `
    UPDATE job_runs
    SET status = $1, details_json = $2, completed_at = now()
    WHERE id::text = $3
  `, status, detailsJSON, id); err != nil {
		slog.Warn("job run update failed", "err", err)
	}
}
