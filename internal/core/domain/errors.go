package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrConfiguration indicates the configured environment cannot support
	// the requested operation. Fatal for a precalculation run.
	ErrConfiguration = errors.New("configuration error")

	// ErrHomeNodeNotFound indicates no node carries the configured home name.
	ErrHomeNodeNotFound = fmt.Errorf("%w: home node not found", ErrConfiguration)

	// ErrInvalidTarget indicates a target such as "5km" or "30min" could not be parsed.
	ErrInvalidTarget = errors.New("invalid target")

	// Recommendation Errors.

	// ErrNoCandidate indicates no stored route lies within the current tolerance.
	ErrNoCandidate = errors.New("no route within tolerance")

	// ErrNoDiverseAlternative indicates every in-tolerance candidate was already shown.
	ErrNoDiverseAlternative = errors.New("no diverse alternative")

	// ErrSessionExpired indicates the session token is unknown or has timed out.
	ErrSessionExpired = errors.New("session expired")

	// Infrastructure Errors.

	// ErrStoreUnavailable indicates the persistence layer could not be reached.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrGraphIntegrity indicates a segment references a node that does not exist.
	// It is logged and the segment skipped; it never aborts a graph build.
	ErrGraphIntegrity = errors.New("graph integrity")
)
