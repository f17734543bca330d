// Package sqlite provides a unified SQLite-based implementation of driven port interfaces.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO. It implements every store through a single database connection:
//
//   - GraphStore: nodes and segments
//   - RouteStore: precalculated routes and tolerance-band queries
//   - UsageStore: segment usage counters and the acceptance log
//   - SessionStore: recommendation sessions shared across CLI invocations
//   - SchedulerStore: background task state and history
//
// # Schema
//
// The schema is managed through versioned migrations in the migrations/
// directory. Applied versions are recorded in schema_migrations.
//
// # Data Location
//
// By default, the database is stored at ~/.routy/data/routy.db
// ($ROUTY_HOME/data/routy.db when set).
//
// # Thread Safety
//
// All operations are safe for concurrent use. Multi-row writes run in a
// transaction; SQLite runs in WAL mode with a busy timeout.
package sqlite
