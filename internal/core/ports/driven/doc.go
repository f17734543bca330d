// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - GraphSource: Read access to nodes and segments
//   - RouteStore: Precalculated route persistence and tolerance-band queries
//   - UsageStore: Segment usage counters and acceptance history
//   - SessionStore: Recommendation session state with per-token serialisation
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - GraphStore: Write access to the graph. Only needed for graph import.
//   - SchedulerStore: Scheduler task history. Without it, history is not kept.
//   - SettingsValidator: Struct-level settings checks. Without it, only defaults are enforced.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
