package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/routy-labs/routy/internal/core/domain"
	"github.com/routy-labs/routy/internal/core/ports/driven"
	"github.com/routy-labs/routy/internal/core/ports/driving"
)

// jobTable is an in-memory driven.SchedulerStore.
type jobTable struct {
	mu     sync.Mutex
	jobs   map[string]domain.Job
	runs   []domain.JobRun
	getErr error
	putErr error
}

func newJobTable() *jobTable {
	return &jobTable{jobs: make(map[string]domain.Job)}
}

func (j *jobTable) Job(_ context.Context, id string) (*domain.Job, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.getErr != nil {
		return nil, j.getErr
	}
	job, ok := j.jobs[id]
	if !ok {
		return nil, nil
	}
	return &job, nil
}

func (j *jobTable) Jobs(_ context.Context) ([]domain.Job, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([]domain.Job, 0, len(j.jobs))
	for _, job := range j.jobs {
		out = append(out, job)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].ID < out[b].ID })
	return out, nil
}

func (j *jobTable) PutJob(_ context.Context, job domain.Job) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.putErr != nil {
		return j.putErr
	}
	j.jobs[job.ID] = job
	return nil
}

func (j *jobTable) AppendRun(_ context.Context, run domain.JobRun) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.runs = append(j.runs, run)
	return nil
}

func (j *jobTable) Runs(_ context.Context, jobID string, limit int) ([]domain.JobRun, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	var out []domain.JobRun
	for i := len(j.runs) - 1; i >= 0; i-- {
		if j.runs[i].JobID == jobID {
			out = append(out, j.runs[i])
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (j *jobTable) TrimRuns(context.Context, int) error { return nil }

// mockPrecalculator implements driving.Precalculator for testing.
type mockPrecalculator struct {
	mu     sync.Mutex
	calls  int
	result *domain.PrecalcResult
	err    error
}

func (m *mockPrecalculator) Run(_ context.Context) (*domain.PrecalcResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	if m.result == nil {
		return &domain.PrecalcResult{}, nil
	}
	return m.result, nil
}

func (m *mockPrecalculator) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// mockSessionSweeper implements driven.SessionStore, recording sweeps only.
type mockSessionSweeper struct {
	mu      sync.Mutex
	sweeps  int
	removed int
}

func (m *mockSessionSweeper) Create(context.Context, *domain.Session) error { return nil }

func (m *mockSessionSweeper) Update(context.Context, string, func(*domain.Session) error) error {
	return domain.ErrSessionExpired
}

func (m *mockSessionSweeper) Sweep(context.Context, time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sweeps++
	return m.removed, nil
}

func (m *mockSessionSweeper) Sweeps() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sweeps
}

// countingUsageStore wraps a usage store, counting history lookups and
// optionally failing acceptance.
type countingUsageStore struct {
	driven.UsageStore
	mu          sync.Mutex
	sumCalls    int
	dayCalls    int
	acceptErr   error
	acceptCalls int
}

func (c *countingUsageStore) UsageSums(ctx context.Context, ids []int64) (map[int64]int, error) {
	c.mu.Lock()
	c.sumCalls++
	c.mu.Unlock()
	return c.UsageStore.UsageSums(ctx, ids)
}

func (c *countingUsageStore) CountOnDay(ctx context.Context, ids []int64, day time.Time) (map[int64]int, error) {
	c.mu.Lock()
	c.dayCalls++
	c.mu.Unlock()
	return c.UsageStore.CountOnDay(ctx, ids, day)
}

func (c *countingUsageStore) RecordAcceptance(ctx context.Context, ids []int64, at time.Time) error {
	c.mu.Lock()
	c.acceptCalls++
	err := c.acceptErr
	c.mu.Unlock()
	if err != nil {
		return err
	}
	return c.UsageStore.RecordAcceptance(ctx, ids, at)
}

// failingRouteStore fails every operation with err.
type failingRouteStore struct {
	err      error
	replaced bool
}

func (f *failingRouteStore) Clear(context.Context) error { return f.err }

func (f *failingRouteStore) Put(context.Context, domain.Route) error { return f.err }

func (f *failingRouteStore) Count(context.Context) (int, error) { return 0, f.err }

func (f *failingRouteStore) Replace(context.Context, []domain.Route) error {
	f.replaced = true
	return f.err
}

func (f *failingRouteStore) Query(context.Context, domain.RouteQuery) ([]domain.Route, error) {
	return nil, f.err
}

// clock is a manually advanced time source.
type clock struct {
	mu sync.Mutex
	t  time.Time
}

func newClock() *clock {
	return &clock{t: time.Date(2024, 5, 1, 9, 0, 0, 0, time.Local)}
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// Ensure mocks implement interfaces
var (
	_ driven.SchedulerStore = (*jobTable)(nil)
	_ driving.Precalculator = (*mockPrecalculator)(nil)
	_ driven.SessionStore   = (*mockSessionSweeper)(nil)
	_ driven.UsageStore     = (*countingUsageStore)(nil)
	_ driven.RouteStore     = (*failingRouteStore)(nil)
)
