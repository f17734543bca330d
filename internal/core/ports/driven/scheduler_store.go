package driven

import (
	"context"

	"github.com/routy-labs/routy/internal/core/domain"
)

// SchedulerStore keeps job state and a run log so schedules survive restarts.
type SchedulerStore interface {
	// Job returns nil and no error when the job is unknown.
	Job(ctx context.Context, id string) (*domain.Job, error)

	// Jobs returns every job ordered by ID.
	Jobs(ctx context.Context) ([]domain.Job, error)

	// PutJob creates or replaces a job.
	PutJob(ctx context.Context, job domain.Job) error

	// AppendRun adds an entry to the run log.
	AppendRun(ctx context.Context, run domain.JobRun) error

	// Runs returns a job's runs, newest first. limit <= 0 returns all.
	Runs(ctx context.Context, jobID string, limit int) ([]domain.JobRun, error)

	// TrimRuns keeps only the newest keep runs of each job.
	TrimRuns(ctx context.Context, keep int) error
}
