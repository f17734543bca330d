// Package domain defines the core business entities for Routy.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Node: An immutable location in the segment network
//   - Segment: A directed, traversable edge between two nodes
//   - Route: A closed walk from the home node back to itself
//   - Session: The ephemeral state of one recommendation conversation
//   - RouteProposal: What a presentation layer shows to the user
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
