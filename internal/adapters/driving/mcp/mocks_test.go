package mcp

import (
	"context"

	"github.com/routy-labs/routy/internal/core/domain"
)

// mockRecommender is a mock implementation of driving.RouteRecommender.
// It records the last method called and the token it was called with.
type mockRecommender struct {
	proposal *domain.RouteProposal
	err      error

	lastCall   string
	lastToken  string
	lastTarget domain.Target
}

func (m *mockRecommender) Start(_ context.Context, target domain.Target) (*domain.RouteProposal, error) {
	m.lastCall, m.lastTarget = "start", target
	return m.proposal, m.err
}

func (m *mockRecommender) Alternative(_ context.Context, token string) (*domain.RouteProposal, error) {
	m.lastCall, m.lastToken = "alternative", token
	return m.proposal, m.err
}

func (m *mockRecommender) Accept(_ context.Context, token string) (*domain.RouteProposal, error) {
	m.lastCall, m.lastToken = "accept", token
	return m.proposal, m.err
}

func (m *mockRecommender) Cancel(_ context.Context, token string) (*domain.RouteProposal, error) {
	m.lastCall, m.lastToken = "cancel", token
	return m.proposal, m.err
}

// mockPrecalculator is a mock implementation of driving.Precalculator.
type mockPrecalculator struct {
	result *domain.PrecalcResult
	err    error
}

func (m *mockPrecalculator) Run(_ context.Context) (*domain.PrecalcResult, error) {
	return m.result, m.err
}

// mockGraphService is a mock implementation of driving.GraphService.
type mockGraphService struct {
	stats domain.GraphStats
	err   error
}

func (m *mockGraphService) Import(_ context.Context, _ []domain.Node, _ []domain.Segment) error {
	return m.err
}

func (m *mockGraphService) Stats(_ context.Context) (domain.GraphStats, error) {
	return m.stats, m.err
}

// mockUsageService is a mock implementation of driving.UsageService.
type mockUsageService struct {
	top       []domain.SegmentUsage
	err       error
	lastLimit int
}

func (m *mockUsageService) Top(_ context.Context, limit int) ([]domain.SegmentUsage, error) {
	m.lastLimit = limit
	return m.top, m.err
}

func testProposal() *domain.RouteProposal {
	return &domain.RouteProposal{
		Token:            "tok-1",
		Signature:        "1-2-3-1",
		NodeIDs:          []int64{1, 2, 3, 1},
		NodeNames:        []string{"Home", "Mill", "Ford", "Home"},
		SegmentIDs:       []int64{100, 101, 102},
		LengthM:          4500,
		DurationMin:      60,
		Target:           domain.Target{Mode: domain.QueryModeDistance, Value: 4.5},
		TolerancePercent: 10,
		Shown:            1,
		Status:           domain.ProposalOpen,
	}
}
