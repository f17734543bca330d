package mcp

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/routy-labs/routy/internal/core/domain"
)

func TestServer_handleRecommend(t *testing.T) {
	ctx := context.Background()

	t.Run("parses target and returns proposal", func(t *testing.T) {
		rec := &mockRecommender{proposal: testProposal()}
		server, err := NewServer(&Ports{Recommender: rec})
		require.NoError(t, err)

		_, output, err := server.handleRecommend(ctx, nil, RecommendInput{Target: "4,5 km"})
		require.NoError(t, err)

		assert.Equal(t, domain.Target{Mode: domain.QueryModeDistance, Value: 4.5}, rec.lastTarget)
		assert.Equal(t, "tok-1", output.Token)
		assert.Equal(t, "open", output.Status)
		assert.Equal(t, "Home › Mill › Ford › Home", output.Chain)
		assert.Equal(t, 4.5, output.LengthKm)
		assert.Equal(t, 60, output.DurationMin)
		assert.Equal(t, "4.5km", output.Target)
		assert.Equal(t, []int64{100, 101, 102}, output.SegmentIDs)
	})

	t.Run("invalid target never reaches the recommender", func(t *testing.T) {
		rec := &mockRecommender{}
		server, err := NewServer(&Ports{Recommender: rec})
		require.NoError(t, err)

		_, _, err = server.handleRecommend(ctx, nil, RecommendInput{Target: "far"})
		assert.ErrorIs(t, err, domain.ErrInvalidTarget)
		assert.Empty(t, rec.lastCall)
	})

	t.Run("no candidate is passed through", func(t *testing.T) {
		rec := &mockRecommender{err: fmt.Errorf("%w: 5km", domain.ErrNoCandidate)}
		server, err := NewServer(&Ports{Recommender: rec})
		require.NoError(t, err)

		_, _, err = server.handleRecommend(ctx, nil, RecommendInput{Target: "5km"})
		assert.ErrorIs(t, err, domain.ErrNoCandidate)
	})
}

func TestServer_sessionTools(t *testing.T) {
	ctx := context.Background()
	rec := &mockRecommender{proposal: testProposal()}
	server, err := NewServer(&Ports{Recommender: rec})
	require.NoError(t, err)

	tests := []struct {
		name     string
		call     func(SessionInput) (ProposalOutput, error)
		wantCall string
	}{
		{"alternative", func(in SessionInput) (ProposalOutput, error) {
			_, out, err := server.handleAlternative(ctx, nil, in)
			return out, err
		}, "alternative"},
		{"accept", func(in SessionInput) (ProposalOutput, error) {
			_, out, err := server.handleAccept(ctx, nil, in)
			return out, err
		}, "accept"},
		{"cancel", func(in SessionInput) (ProposalOutput, error) {
			_, out, err := server.handleCancel(ctx, nil, in)
			return out, err
		}, "cancel"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec.lastCall = ""
			out, err := tt.call(SessionInput{Token: "tok-1"})
			require.NoError(t, err)
			assert.Equal(t, tt.wantCall, rec.lastCall)
			assert.Equal(t, "tok-1", rec.lastToken)
			assert.Equal(t, "1-2-3-1", out.Signature)
		})

		t.Run(tt.name+" requires token", func(t *testing.T) {
			rec.lastCall = ""
			_, err := tt.call(SessionInput{})
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
			assert.Empty(t, rec.lastCall)
		})
	}
}

func TestServer_handlePrecalc(t *testing.T) {
	ctx := context.Background()

	t.Run("returns counts", func(t *testing.T) {
		server, err := NewServer(&Ports{
			Recommender: &mockRecommender{},
			Precalc: &mockPrecalculator{result: &domain.PrecalcResult{
				HomeNodeID: 1, Nodes: 3, Segments: 6, SkippedSegments: 1, Routes: 2,
				Duration: 1500 * time.Millisecond,
			}},
		})
		require.NoError(t, err)

		_, out, err := server.handlePrecalc(ctx, nil, PrecalcInput{})
		require.NoError(t, err)
		assert.Equal(t, PrecalcOutput{
			HomeNodeID: 1, Nodes: 3, Segments: 6, SkippedSegments: 1, Routes: 2, DurationMs: 1500,
		}, out)
	})

	t.Run("wraps failures", func(t *testing.T) {
		server, err := NewServer(&Ports{
			Recommender: &mockRecommender{},
			Precalc:     &mockPrecalculator{err: domain.ErrHomeNodeNotFound},
		})
		require.NoError(t, err)

		_, _, err = server.handlePrecalc(ctx, nil, PrecalcInput{})
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrConfiguration)
		assert.Contains(t, err.Error(), "precalculating routes")
	})
}

func TestInstrument_RateLimitAndOutcomes(t *testing.T) {
	ctx := context.Background()
	rec := &mockRecommender{proposal: testProposal()}
	server, err := NewServer(&Ports{Recommender: rec}, WithRateLimit(0.001, 2))
	require.NoError(t, err)

	handler := instrument(server, "recommend_route", server.handleRecommend)

	_, _, err = handler(ctx, nil, RecommendInput{Target: "5km"})
	require.NoError(t, err)

	_, _, err = handler(ctx, nil, RecommendInput{Target: "nowhere"})
	assert.ErrorIs(t, err, domain.ErrInvalidTarget)

	_, _, err = handler(ctx, nil, RecommendInput{Target: "5km"})
	assert.ErrorIs(t, err, ErrRateLimited)

	calls := server.metrics.calls
	assert.Equal(t, 1.0, testutil.ToFloat64(calls.WithLabelValues("recommend_route", outcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(calls.WithLabelValues("recommend_route", outcomeRejected)))
	assert.Equal(t, 1.0, testutil.ToFloat64(calls.WithLabelValues("recommend_route", outcomeRateLimited)))
}

func TestOutcome(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, outcomeOK},
		{"rate limited", ErrRateLimited, outcomeRateLimited},
		{"expired session", fmt.Errorf("wrap: %w", domain.ErrSessionExpired), outcomeRejected},
		{"exhausted", domain.ErrNoDiverseAlternative, outcomeRejected},
		{"store down", domain.ErrStoreUnavailable, outcomeError},
		{"unknown", errors.New("boom"), outcomeError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, outcome(tt.err))
		})
	}
}
