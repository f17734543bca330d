package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/routy-labs/routy/internal/core/domain"
	"github.com/routy-labs/routy/internal/core/ports/driven"
)

// Ensure sessionStore implements the interface.
var _ driven.SessionStore = (*sessionStore)(nil)

// sessionStore implements driven.SessionStore using SQLite so that a session
// started by one CLI invocation can be continued by the next.
//
// Update claims the session row before running its function and releases
// it when it writes the result back, so actions on one token are serialised
// across goroutines and processes alike. No transaction is held while the
// function runs because it may write usage to the same database.
type sessionStore struct {
	store   *Store
	timeout time.Duration
	now     func() time.Time
}

const (
	// claimLease bounds how long a claim survives a holder that never
	// releases it.
	claimLease = 30 * time.Second
	claimRetry = 10 * time.Millisecond
)

// errClaimLost means the claim lapsed and another holder took the session.
var errClaimLost = errors.New("session claim lost")

func (s *sessionStore) Create(ctx context.Context, session *domain.Session) error {
	if session == nil || session.Token == "" {
		return fmt.Errorf("%w: session token is required", domain.ErrInvalidInput)
	}

	state, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshaling session: %w", err)
	}

	res, err := s.store.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO sessions (token, state, last_active) VALUES (?, ?, ?)",
		session.Token, string(state), unixMilli(session.LastActive))
	if err != nil {
		return fmt.Errorf("%w: creating session: %v", domain.ErrStoreUnavailable, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: session %s already exists", domain.ErrInvalidInput, session.Token)
	}
	return nil
}

func (s *sessionStore) Update(ctx context.Context, token string, fn func(*domain.Session) error) error {
	claim, err := s.claim(ctx, token)
	if err != nil {
		return err
	}
	released := false
	defer func() {
		if !released {
			s.release(token, claim)
		}
	}()

	session, err := s.load(ctx, token)
	if err != nil {
		return err
	}

	if !session.IsActive() || session.IsExpired(s.now(), s.timeout) {
		if err := s.delete(ctx, token, claim); err != nil {
			return err
		}
		released = true
		return domain.ErrSessionExpired
	}

	fnErr := fn(session)

	var saveErr error
	if session.IsActive() {
		saveErr = s.save(ctx, session, claim)
	} else {
		saveErr = s.delete(ctx, token, claim)
	}
	released = saveErr == nil
	if fnErr != nil {
		return fnErr
	}
	return saveErr
}

// Sweep deletes sessions whose last activity is older than the timeout.
// Sessions held by a live claim are left alone.
func (s *sessionStore) Sweep(ctx context.Context, now time.Time) (int, error) {
	if s.timeout <= 0 {
		return 0, nil
	}

	cutoff := unixMilli(now.Add(-s.timeout))
	res, err := s.store.db.ExecContext(ctx,
		"DELETE FROM sessions WHERE last_active < ? AND (claim IS NULL OR claimed_until < ?)",
		cutoff, unixMilli(now))
	if err != nil {
		return 0, fmt.Errorf("%w: sweeping sessions: %v", domain.ErrStoreUnavailable, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("reading swept session count: %w", err)
	}
	return int(n), nil
}

// claim waits until the session row is free and marks it as held. A token
// with no row, including one removed while waiting, is ErrSessionExpired.
func (s *sessionStore) claim(ctx context.Context, token string) (string, error) {
	claim := uuid.NewString()
	for {
		now := s.now()
		res, err := s.store.db.ExecContext(ctx, `
			UPDATE sessions SET claim = ?, claimed_until = ?
			WHERE token = ? AND (claim IS NULL OR claimed_until < ?)
		`, claim, unixMilli(now.Add(claimLease)), token, unixMilli(now))
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			return "", fmt.Errorf("%w: claiming session: %v", domain.ErrStoreUnavailable, err)
		}
		if n, _ := res.RowsAffected(); n == 1 {
			return claim, nil
		}

		var exists int
		err = s.store.db.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM sessions WHERE token = ?", token).Scan(&exists)
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			return "", fmt.Errorf("%w: checking session: %v", domain.ErrStoreUnavailable, err)
		}
		if exists == 0 {
			return "", domain.ErrSessionExpired
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(claimRetry):
		}
	}
}

// release frees a claim without touching the state. It runs on paths that
// return before the state is written back, including cancelled contexts.
func (s *sessionStore) release(token, claim string) {
	_, _ = s.store.db.ExecContext(context.Background(),
		"UPDATE sessions SET claim = NULL, claimed_until = 0 WHERE token = ? AND claim = ?",
		token, claim)
}

func (s *sessionStore) load(ctx context.Context, token string) (*domain.Session, error) {
	var state string
	err := s.store.db.QueryRowContext(ctx,
		"SELECT state FROM sessions WHERE token = ?", token).Scan(&state)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrSessionExpired
	}
	if err != nil {
		return nil, fmt.Errorf("%w: loading session: %v", domain.ErrStoreUnavailable, err)
	}

	var session domain.Session
	if err := json.Unmarshal([]byte(state), &session); err != nil {
		return nil, fmt.Errorf("unmarshaling session %s: %w", token, err)
	}
	return &session, nil
}

func (s *sessionStore) save(ctx context.Context, session *domain.Session, claim string) error {
	state, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshaling session: %w", err)
	}
	res, err := s.store.db.ExecContext(ctx, `
		UPDATE sessions SET state = ?, last_active = ?, claim = NULL, claimed_until = 0
		WHERE token = ? AND claim = ?
	`, string(state), unixMilli(session.LastActive), session.Token, claim)
	if err != nil {
		return fmt.Errorf("%w: saving session: %v", domain.ErrStoreUnavailable, err)
	}
	return claimHeld(res, session.Token)
}

func (s *sessionStore) delete(ctx context.Context, token, claim string) error {
	res, err := s.store.db.ExecContext(ctx,
		"DELETE FROM sessions WHERE token = ? AND claim = ?", token, claim)
	if err != nil {
		return fmt.Errorf("%w: deleting session: %v", domain.ErrStoreUnavailable, err)
	}
	return claimHeld(res, token)
}

func claimHeld(res sql.Result, token string) error {
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", errClaimLost, token)
	}
	return nil
}
