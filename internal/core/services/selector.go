package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/routy-labs/routy/internal/core/domain"
	"github.com/routy-labs/routy/internal/core/ports/driven"
	"github.com/routy-labs/routy/internal/core/ports/driving"
	"github.com/routy-labs/routy/internal/logger"
)

// Ensure DiversitySelector implements the interface.
var _ driving.RouteRecommender = (*DiversitySelector)(nil)

// DiversitySelector proposes precalculated routes one at a time, preferring
// fresh segments and steering each alternative away from what was already shown.
type DiversitySelector struct {
	settings domain.RoutingSettings
	routes   driven.RouteStore
	usage    driven.UsageStore
	sessions driven.SessionStore
	graph    driven.GraphSource
	penalty  *UsagePenaltyModel
	now      func() time.Time
	newToken func() string
}

// SelectorOption configures a DiversitySelector.
type SelectorOption func(*DiversitySelector)

// WithClock sets the time source used for session activity and acceptance timestamps.
func WithClock(now func() time.Time) SelectorOption {
	return func(s *DiversitySelector) {
		if now != nil {
			s.now = now
		}
	}
}

// WithTokenGenerator sets how session tokens are created.
func WithTokenGenerator(gen func() string) SelectorOption {
	return func(s *DiversitySelector) {
		if gen != nil {
			s.newToken = gen
		}
	}
}

// WithNodeNames enables display-name resolution for proposals.
// Without it, nodes are shown as "N<id>".
func WithNodeNames(graph driven.GraphSource) SelectorOption {
	return func(s *DiversitySelector) {
		s.graph = graph
	}
}

// NewDiversitySelector creates a selector.
func NewDiversitySelector(
	settings domain.RoutingSettings,
	routes driven.RouteStore,
	usage driven.UsageStore,
	sessions driven.SessionStore,
	opts ...SelectorOption,
) *DiversitySelector {
	s := &DiversitySelector{
		settings: settings,
		routes:   routes,
		usage:    usage,
		sessions: sessions,
		now:      time.Now,
		newToken: randomToken,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.penalty = NewUsagePenaltyModel(usage, settings.DailyDiversityWeight, s.now)
	return s
}

// Start opens a session and proposes the in-tolerance route with the lowest
// freshness score, shorter routes winning ties.
func (s *DiversitySelector) Start(ctx context.Context, target domain.Target) (*domain.RouteProposal, error) {
	if !target.Mode.IsValid() || target.Value <= 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidTarget, target)
	}

	logger.Section("Route Start")
	tolerance := s.settings.EffectiveTolerance(0)
	candidates, err := s.candidates(ctx, target, tolerance)
	if err != nil {
		return nil, err
	}

	scores, err := s.penalty.FreshnessScores(ctx, candidates)
	if err != nil {
		return nil, fmt.Errorf("score candidates: %w", err)
	}

	best := 0
	for i := 1; i < len(candidates); i++ {
		if scores[i] < scores[best] ||
			(scores[i] == scores[best] && candidates[i].LengthM < candidates[best].LengthM) {
			best = i
		}
	}

	session := domain.NewSession(s.newToken(), target, candidates, best, s.now())
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	logger.Debug("session %s: start %s, %d candidates, picked %s (freshness %.1f)",
		session.Token, target, len(candidates), candidates[best].Signature, scores[best])

	return s.proposal(ctx, session, tolerance, domain.ProposalOpen), nil
}

// Alternative widens the session's tolerance by one step and proposes the
// best route whose exact segment set was not shown yet. Candidates are ranked
// by freshness, then by overlap with everything shown so far, then by
// closeness to the target.
//
// The widen step is kept even when no alternative is found, so the next
// request searches a wider band.
func (s *DiversitySelector) Alternative(ctx context.Context, token string) (*domain.RouteProposal, error) {
	var result *domain.RouteProposal
	err := s.sessions.Update(ctx, token, func(session *domain.Session) error {
		session.Touch(s.now())
		session.WidenSteps++
		tolerance := s.settings.EffectiveTolerance(session.WidenSteps)

		candidates, err := s.candidates(ctx, session.Target, tolerance)
		if err != nil {
			return err
		}

		winner, err := s.pickDiverse(ctx, session, candidates)
		if err != nil {
			return err
		}

		session.Candidates = candidates
		session.Index = winner
		session.MarkShown(candidates[winner].SegmentSet())
		logger.Debug("session %s: alternative %s at ±%.1f%%", token, candidates[winner].Signature, tolerance)

		result = s.proposal(ctx, session, tolerance, domain.ProposalOpen)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Accept credits every segment of the current route once and ends the session.
// If crediting fails, nothing is credited and the session stays active.
func (s *DiversitySelector) Accept(ctx context.Context, token string) (*domain.RouteProposal, error) {
	var result *domain.RouteProposal
	err := s.sessions.Update(ctx, token, func(session *domain.Session) error {
		route, ok := session.Current()
		if !ok {
			return fmt.Errorf("%w: session %s has no current route", domain.ErrInvalidInput, token)
		}

		now := s.now()
		session.Touch(now)
		if err := s.usage.RecordAcceptance(ctx, route.SegmentIDs, now); err != nil {
			return fmt.Errorf("record acceptance: %w", err)
		}
		session.End()
		logger.Debug("session %s: accepted %s", token, route.Signature)

		result = s.proposal(ctx, session, s.settings.EffectiveTolerance(session.WidenSteps), domain.ProposalAccepted)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Cancel ends the session without touching usage data and returns the last proposal.
func (s *DiversitySelector) Cancel(ctx context.Context, token string) (*domain.RouteProposal, error) {
	var result *domain.RouteProposal
	err := s.sessions.Update(ctx, token, func(session *domain.Session) error {
		session.Touch(s.now())
		session.End()
		logger.Debug("session %s: cancelled", token)

		result = s.proposal(ctx, session, s.settings.EffectiveTolerance(session.WidenSteps), domain.ProposalCancelled)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// candidates queries the route store at the given tolerance.
func (s *DiversitySelector) candidates(ctx context.Context, target domain.Target, tolerance float64) ([]domain.Route, error) {
	query := domain.RouteQuery{
		Mode:             target.Mode,
		Target:           target.Normalised(),
		TolerancePercent: tolerance,
		Limit:            s.settings.CandidateLimit,
	}
	routes, err := s.routes.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query candidates: %w", err)
	}
	if len(routes) == 0 {
		lo, hi := query.Window()
		return nil, fmt.Errorf("%w: %s (window %d-%d)", domain.ErrNoCandidate, target, lo, hi)
	}
	logger.Debug("candidates for %s at ±%.1f%%: %d", target, tolerance, len(routes))
	return routes, nil
}

// rankedCandidate is the scoring tuple of one unseen candidate.
type rankedCandidate struct {
	index     int
	freshness float64
	overlap   float64
	delta     int
}

func (a rankedCandidate) less(b rankedCandidate) bool {
	if a.freshness != b.freshness {
		return a.freshness < b.freshness
	}
	if a.overlap != b.overlap {
		return a.overlap < b.overlap
	}
	if a.delta != b.delta {
		return a.delta < b.delta
	}
	return a.index < b.index
}

// pickDiverse returns the index of the best candidate not shown in session.
func (s *DiversitySelector) pickDiverse(ctx context.Context, session *domain.Session, candidates []domain.Route) (int, error) {
	query := domain.RouteQuery{Mode: session.Target.Mode, Target: session.Target.Normalised()}

	unseen := make([]int, 0, len(candidates))
	unseenRoutes := make([]domain.Route, 0, len(candidates))
	for i, r := range candidates {
		if session.HasShown(r.SegmentSet()) {
			continue
		}
		unseen = append(unseen, i)
		unseenRoutes = append(unseenRoutes, r)
	}
	if len(unseen) == 0 {
		return 0, fmt.Errorf("%w: all %d candidates already shown", domain.ErrNoDiverseAlternative, len(candidates))
	}

	scores, err := s.penalty.FreshnessScores(ctx, unseenRoutes)
	if err != nil {
		return 0, fmt.Errorf("score candidates: %w", err)
	}

	var best rankedCandidate
	for j, idx := range unseen {
		r := candidates[idx]
		rc := rankedCandidate{
			index:     idx,
			freshness: scores[j],
			overlap:   domain.Jaccard(r.SegmentSet(), session.ShownUnion),
			delta:     query.Delta(r),
		}
		if j == 0 || rc.less(best) {
			best = rc
		}
	}
	return best.index, nil
}

// proposal renders the session's current route for the presentation layer.
func (s *DiversitySelector) proposal(
	ctx context.Context,
	session *domain.Session,
	tolerance float64,
	status domain.ProposalStatus,
) *domain.RouteProposal {
	route, _ := session.Current()
	return &domain.RouteProposal{
		Token:            session.Token,
		Signature:        route.Signature,
		NodeIDs:          route.NodeIDs,
		NodeNames:        s.nodeNames(ctx, route.NodeIDs),
		SegmentIDs:       route.SegmentIDs,
		LengthM:          route.LengthM,
		DurationMin:      route.DurationMin,
		Target:           session.Target,
		TolerancePercent: tolerance,
		Shown:            len(session.ShownSets),
		Status:           status,
	}
}

// nodeNames resolves display names; lookup failures fall back to "N<id>".
func (s *DiversitySelector) nodeNames(ctx context.Context, ids []int64) []string {
	var lookup map[int64]string
	if s.graph != nil && len(ids) > 0 {
		var err error
		lookup, err = s.graph.NodeNames(ctx, ids)
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn("resolving node names: %v", err)
		}
	}

	names := make([]string, len(ids))
	for i, id := range ids {
		if name := lookup[id]; name != "" {
			names[i] = name
		} else {
			names[i] = domain.FallbackNodeName(id)
		}
	}
	return names
}

// randomToken returns a random UUID as 32 hex characters.
func randomToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
