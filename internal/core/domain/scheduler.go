package domain

import "time"

// Background job identifiers.
const (
	JobSessionSweep = "session-sweep"
	JobRoutePrecalc = "route-precalc"
)

// Job is the persisted state of a recurring background job.
type Job struct {
	ID    string
	Every time.Duration

	// Enabled mirrors the job's configuration at the last start.
	Enabled bool

	LastRun     time.Time
	NextRun     time.Time
	LastSuccess time.Time

	// LastError is empty after a successful run.
	LastError string
}

// Due reports whether the job should run at now.
func (j Job) Due(now time.Time) bool {
	return j.Enabled && !j.NextRun.After(now)
}

// JobRun records one execution of a job.
type JobRun struct {
	JobID     string
	StartedAt time.Time
	EndedAt   time.Time

	// Processed counts sessions swept or routes stored.
	Processed int

	// Err is the failure message, empty on success.
	Err string
}

// OK reports whether the run succeeded.
func (r JobRun) OK() bool {
	return r.Err == ""
}

// JobConfig configures one job.
type JobConfig struct {
	Enabled bool
	Every   time.Duration
}

// SchedulerConfig configures background jobs.
type SchedulerConfig struct {
	// Enabled is the master switch.
	Enabled bool

	// Tick is how often due jobs are checked.
	Tick time.Duration

	SessionSweep JobConfig

	// RoutePrecalc is opt-in because it rewrites the route table.
	RoutePrecalc JobConfig
}

// Job returns the configuration of a built-in job; unknown IDs are disabled.
func (c SchedulerConfig) Job(id string) JobConfig {
	switch id {
	case JobSessionSweep:
		return c.SessionSweep
	case JobRoutePrecalc:
		return c.RoutePrecalc
	}
	return JobConfig{}
}

// DefaultSchedulerConfig sweeps idle sessions every minute and leaves
// daily precalculation off.
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		Enabled:      true,
		Tick:         time.Minute,
		SessionSweep: JobConfig{Enabled: true, Every: time.Minute},
		RoutePrecalc: JobConfig{Enabled: false, Every: 24 * time.Hour},
	}
}
