package driven

import (
	"context"
	"time"

	"github.com/routy-labs/routy/internal/core/domain"
)

// SessionStore keeps recommendation sessions between actions.
//
// Implementations serialise Update calls per token; calls for different
// tokens may run concurrently. An expired or ended session is never handed
// to an update function.
type SessionStore interface {
	// Create stores a new active session.
	Create(ctx context.Context, session *domain.Session) error

	// Update runs fn on the active session under the token's lock.
	// Returns domain.ErrSessionExpired if the token is unknown, ended or idle
	// past the store's timeout. Changes made by fn are kept even when fn
	// returns an error. A session fn ends is removed.
	Update(ctx context.Context, token string, fn func(*domain.Session) error) error

	// Sweep removes sessions idle past the timeout at now and returns how many were removed.
	Sweep(ctx context.Context, now time.Time) (int, error)
}
