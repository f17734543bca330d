package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/routy-labs/routy/internal/core/domain"
	"github.com/routy-labs/routy/internal/core/ports/driven"
)

// stampLayout is fixed-width UTC so stored timestamps sort as text.
const stampLayout = "2006-01-02T15:04:05.000000000Z07:00"

type schedulerStore struct {
	store *Store
}

var _ driven.SchedulerStore = (*schedulerStore)(nil)

const jobColumns = `id, every_seconds, enabled, last_run, next_run, last_success, last_error`

func (s *schedulerStore) Job(ctx context.Context, id string) (*domain.Job, error) {
	row := s.store.db.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = ?`, id)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func (s *schedulerStore) Jobs(ctx context.Context) ([]domain.Job, error) {
	rows, err := s.store.db.QueryContext(ctx, `SELECT `+jobColumns+` FROM jobs ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("%w: listing jobs: %v", domain.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var jobs []domain.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

func (s *schedulerStore) PutJob(ctx context.Context, job domain.Job) error {
	if job.ID == "" {
		return fmt.Errorf("%w: job id is required", domain.ErrInvalidInput)
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO jobs (`+jobColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, job.ID, int64(job.Every/time.Second), job.Enabled,
		stamp(job.LastRun), stamp(job.NextRun), stamp(job.LastSuccess),
		sql.NullString{String: job.LastError, Valid: job.LastError != ""})
	if err != nil {
		return fmt.Errorf("%w: saving job %s: %v", domain.ErrStoreUnavailable, job.ID, err)
	}
	return nil
}

func (s *schedulerStore) AppendRun(ctx context.Context, run domain.JobRun) error {
	if run.JobID == "" {
		return fmt.Errorf("%w: run needs a job id", domain.ErrInvalidInput)
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO job_runs (job_id, started_at, ended_at, processed, error)
		VALUES (?, ?, ?, ?, ?)
	`, run.JobID, stamp(run.StartedAt), stamp(run.EndedAt), run.Processed,
		sql.NullString{String: run.Err, Valid: run.Err != ""})
	if err != nil {
		return fmt.Errorf("%w: logging run of %s: %v", domain.ErrStoreUnavailable, run.JobID, err)
	}
	return nil
}

// Runs orders by insertion, so runs logged within the same clock tick
// still come back newest first.
func (s *schedulerStore) Runs(ctx context.Context, jobID string, limit int) ([]domain.JobRun, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.store.db.QueryContext(ctx, `
		SELECT job_id, started_at, ended_at, processed, error
		FROM job_runs WHERE job_id = ?
		ORDER BY seq DESC LIMIT ?
	`, jobID, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: reading runs of %s: %v", domain.ErrStoreUnavailable, jobID, err)
	}
	defer rows.Close()

	var runs []domain.JobRun
	for rows.Next() {
		var run domain.JobRun
		var started, ended, failure sql.NullString
		if err := rows.Scan(&run.JobID, &started, &ended, &run.Processed, &failure); err != nil {
			return nil, fmt.Errorf("scanning job run: %w", err)
		}
		run.StartedAt = unstamp(started)
		run.EndedAt = unstamp(ended)
		run.Err = failure.String
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func (s *schedulerStore) TrimRuns(ctx context.Context, keep int) error {
	if keep < 0 {
		return fmt.Errorf("%w: keep must not be negative", domain.ErrInvalidInput)
	}

	_, err := s.store.db.ExecContext(ctx, `
		DELETE FROM job_runs
		WHERE seq IN (
			SELECT seq FROM (
				SELECT seq, ROW_NUMBER() OVER (PARTITION BY job_id ORDER BY seq DESC) AS pos
				FROM job_runs
			) WHERE pos > ?
		)
	`, keep)
	if err != nil {
		return fmt.Errorf("%w: trimming run log: %v", domain.ErrStoreUnavailable, err)
	}
	return nil
}

func scanJob(row rowScanner) (domain.Job, error) {
	var job domain.Job
	var every int64
	var lastRun, nextRun, lastOK, lastErr sql.NullString
	if err := row.Scan(&job.ID, &every, &job.Enabled, &lastRun, &nextRun, &lastOK, &lastErr); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return job, err
		}
		return job, fmt.Errorf("scanning job: %w", err)
	}

	job.Every = time.Duration(every) * time.Second
	job.LastRun = unstamp(lastRun)
	job.NextRun = unstamp(nextRun)
	job.LastSuccess = unstamp(lastOK)
	job.LastError = lastErr.String
	return job, nil
}

// stamp stores the zero time as NULL.
func stamp(t time.Time) sql.NullString {
	if t.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: t.UTC().Format(stampLayout), Valid: true}
}

// unstamp maps NULL and malformed values to the zero time.
func unstamp(v sql.NullString) time.Time {
	if !v.Valid {
		return time.Time{}
	}
	t, err := time.Parse(stampLayout, v.String)
	if err != nil {
		return time.Time{}
	}
	return t
}
