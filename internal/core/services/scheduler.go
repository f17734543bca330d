package services

import (
	"context"
	"sync"
	"time"

	"github.com/routy-labs/routy/internal/core/domain"
	"github.com/routy-labs/routy/internal/core/ports/driven"
	"github.com/routy-labs/routy/internal/core/ports/driving"
	"github.com/routy-labs/routy/internal/logger"
)

var _ driving.Scheduler = (*Scheduler)(nil)

// runLogSize is how many runs per job are kept.
const runLogSize = 100

// jobFunc does one unit of background work and reports how many items it handled.
type jobFunc func(ctx context.Context) (int, error)

// Scheduler runs the session sweep and route precalculation jobs on their
// configured intervals. Job state lives in a SchedulerStore so a restart
// does not reset the schedule.
type Scheduler struct {
	config domain.SchedulerConfig
	store  driven.SchedulerStore
	jobs   map[string]jobFunc
	now    func() time.Time

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
	busy    map[string]bool
}

// NewScheduler creates a scheduler. sessions and precalc may be nil, in
// which case their jobs do nothing.
func NewScheduler(
	config domain.SchedulerConfig,
	store driven.SchedulerStore,
	sessions driven.SessionStore,
	precalc driving.Precalculator,
) *Scheduler {
	s := &Scheduler{
		config: config,
		store:  store,
		now:    time.Now,
		busy:   make(map[string]bool),
	}
	s.jobs = map[string]jobFunc{
		domain.JobSessionSweep: func(ctx context.Context) (int, error) {
			if sessions == nil {
				return 0, nil
			}
			return sessions.Sweep(ctx, s.now())
		},
		domain.JobRoutePrecalc: func(ctx context.Context) (int, error) {
			if precalc == nil {
				return 0, nil
			}
			result, err := precalc.Run(ctx)
			if err != nil {
				return 0, err
			}
			return result.Routes, nil
		},
	}
	return s
}

// Start runs due jobs until ctx is done or Stop is called. Either way
// in-flight jobs have finished when it returns, and Start may be called
// again. Calling Start on a running scheduler returns immediately.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	stop := make(chan struct{})
	s.stopCh = stop
	s.mu.Unlock()

	if s.config.Enabled {
		if err := s.register(ctx); err != nil {
			logger.Error("scheduler: registering jobs: %v", err)
		}
		s.dispatchDue(ctx)
	} else {
		logger.Info("scheduler disabled")
	}

	var tick <-chan time.Time
	if s.config.Enabled {
		interval := s.config.Tick
		if interval <= 0 {
			interval = time.Minute
		}
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			s.mu.Lock()
			if s.running && s.stopCh == stop {
				s.running = false
			}
			s.mu.Unlock()
			s.wg.Wait()
			return ctx.Err()
		case <-stop:
			return nil
		case <-tick:
			s.dispatchDue(ctx)
		}
	}
}

// Stop ends Start and waits for in-flight jobs.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	close(s.stopCh)
	s.mu.Unlock()

	s.wg.Wait()
	return nil
}

// register brings stored jobs in line with the configuration. A changed
// interval reschedules the job from now.
func (s *Scheduler) register(ctx context.Context) error {
	for _, id := range []string{domain.JobSessionSweep, domain.JobRoutePrecalc} {
		cfg := s.config.Job(id)

		job, err := s.store.Job(ctx, id)
		if err != nil {
			return err
		}
		if job == nil {
			job = &domain.Job{ID: id, Every: cfg.Every, NextRun: s.now().Add(cfg.Every)}
		} else if job.Every != cfg.Every {
			job.Every = cfg.Every
			job.NextRun = s.now().Add(cfg.Every)
		}
		job.Enabled = cfg.Enabled

		if err := s.store.PutJob(ctx, *job); err != nil {
			return err
		}
	}
	return nil
}

func (s *Scheduler) dispatchDue(ctx context.Context) {
	jobs, err := s.store.Jobs(ctx)
	if err != nil {
		logger.Error("scheduler: listing jobs: %v", err)
		return
	}

	now := s.now()
	for _, job := range jobs {
		if job.Due(now) {
			s.dispatch(ctx, job)
		}
	}
}

// dispatch runs job in the background unless its previous run is still going.
func (s *Scheduler) dispatch(ctx context.Context, job domain.Job) {
	fn, ok := s.jobs[job.ID]
	if !ok {
		logger.Warn("scheduler: no handler for job %s", job.ID)
		return
	}

	s.mu.Lock()
	if s.busy[job.ID] {
		s.mu.Unlock()
		logger.Debug("scheduler: %s still running, skipping", job.ID)
		return
	}
	s.busy[job.ID] = true
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		defer func() {
			s.mu.Lock()
			delete(s.busy, job.ID)
			s.mu.Unlock()
		}()

		run := domain.JobRun{JobID: job.ID, StartedAt: s.now()}
		n, err := fn(ctx)
		run.EndedAt = s.now()
		run.Processed = n

		job.LastRun = run.StartedAt
		job.NextRun = run.EndedAt.Add(job.Every)
		if err != nil {
			run.Err = err.Error()
			job.LastError = run.Err
			logger.Error("scheduler: %s failed: %v", job.ID, err)
		} else {
			job.LastError = ""
			job.LastSuccess = run.EndedAt
			logger.Debug("scheduler: %s processed %d", job.ID, n)
		}

		s.record(ctx, job, run)
	}()
}

func (s *Scheduler) record(ctx context.Context, job domain.Job, run domain.JobRun) {
	if err := s.store.PutJob(ctx, job); err != nil {
		logger.Error("scheduler: saving job %s: %v", job.ID, err)
	}
	if err := s.store.AppendRun(ctx, run); err != nil {
		logger.Error("scheduler: logging run of %s: %v", job.ID, err)
	}
	if err := s.store.TrimRuns(ctx, runLogSize); err != nil {
		logger.Error("scheduler: trimming run log: %v", err)
	}
}
