package domain

import "time"

// SessionState is the lifecycle state of a recommendation session.
type SessionState string

// Session states. Ended is terminal.
const (
	SessionActive SessionState = "active"
	SessionEnded  SessionState = "ended"
)

// Session is the ephemeral state of one recommendation conversation.
// It is mutated only by its own subsequent actions.
type Session struct {
	// Token identifies the session to the presentation layer.
	Token string

	// Target is what the user asked for.
	Target Target

	// Candidates is the snapshot from the most recent candidate query.
	Candidates []Route

	// Index points at the currently presented candidate.
	Index int

	// ShownSets holds SegmentSet keys of every route presented so far.
	ShownSets map[string]struct{}

	// ShownUnion is the union of all segment IDs presented so far.
	ShownUnion SegmentSet

	// WidenSteps counts alternative requests; each widens the tolerance band.
	WidenSteps int

	// State is Active until accepted, cancelled or expired.
	State SessionState

	// CreatedAt is when the session started.
	CreatedAt time.Time

	// LastActive is when the session was last acted upon.
	LastActive time.Time
}

// NewSession creates an active session presenting candidates[index].
func NewSession(token string, target Target, candidates []Route, index int, now time.Time) *Session {
	s := &Session{
		Token:      token,
		Target:     target,
		Candidates: candidates,
		Index:      index,
		ShownSets:  make(map[string]struct{}),
		ShownUnion: make(SegmentSet),
		State:      SessionActive,
		CreatedAt:  now,
		LastActive: now,
	}
	if current, ok := s.Current(); ok {
		s.MarkShown(current.SegmentSet())
	}
	return s
}

// Current returns the presented candidate.
func (s *Session) Current() (Route, bool) {
	if s.Index < 0 || s.Index >= len(s.Candidates) {
		return Route{}, false
	}
	return s.Candidates[s.Index], true
}

// HasShown reports whether exactly this segment set was presented before.
func (s *Session) HasShown(set SegmentSet) bool {
	_, ok := s.ShownSets[set.Key()]
	return ok
}

// MarkShown records set as presented and merges it into the shown union.
func (s *Session) MarkShown(set SegmentSet) {
	if s.ShownSets == nil {
		s.ShownSets = make(map[string]struct{})
	}
	if s.ShownUnion == nil {
		s.ShownUnion = make(SegmentSet)
	}
	s.ShownSets[set.Key()] = struct{}{}
	s.ShownUnion.Merge(set)
}

// IsActive reports whether the session still accepts actions.
func (s *Session) IsActive() bool {
	return s.State == SessionActive
}

// IsExpired reports whether the session has been idle longer than timeout at now.
func (s *Session) IsExpired(now time.Time, timeout time.Duration) bool {
	if timeout <= 0 {
		return false
	}
	return now.Sub(s.LastActive) > timeout
}

// Touch records activity at now.
func (s *Session) Touch(now time.Time) {
	s.LastActive = now
}

// End moves the session to its terminal state.
func (s *Session) End() {
	s.State = SessionEnded
}
