package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/routy-labs/routy/internal/core/domain"
)

// RecommendInput is the input schema for the recommend_route tool.
type RecommendInput struct {
	Target string `json:"target" jsonschema:"desired distance or duration, e.g. 5km or 45min"`
}

// SessionInput is the input schema for tools acting on an open session.
type SessionInput struct {
	Token string `json:"token" jsonschema:"session token returned by recommend_route"`
}

// PrecalcInput is the input schema for the precalculate_routes tool.
type PrecalcInput struct{}

// ProposalOutput is the output schema of the session tools.
type ProposalOutput struct {
	Token            string   `json:"token"`
	Status           string   `json:"status"`
	Signature        string   `json:"signature"`
	Chain            string   `json:"chain"`
	Nodes            []string `json:"nodes"`
	SegmentIDs       []int64  `json:"segment_ids"`
	LengthKm         float64  `json:"length_km"`
	DurationMin      int      `json:"duration_min"`
	Target           string   `json:"target"`
	TolerancePercent float64  `json:"tolerance_percent"`
	Shown            int      `json:"shown"`
}

// PrecalcOutput is the output schema of the precalculate_routes tool.
type PrecalcOutput struct {
	HomeNodeID      int64 `json:"home_node_id"`
	Nodes           int   `json:"nodes"`
	Segments        int   `json:"segments"`
	SkippedSegments int   `json:"skipped_segments"`
	Routes          int   `json:"routes"`
	DurationMs      int64 `json:"duration_ms"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name: "recommend_route",
		Description: "Start a recommendation session and propose a closed route from home " +
			"close to the target distance or duration",
	}, instrument(s, "recommend_route", s.handleRecommend))

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "alternative_route",
		Description: "Propose a different route in the session, widening the tolerance",
	}, instrument(s, "alternative_route", s.handleAlternative))

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "accept_route",
		Description: "Accept the current proposal and record its segments as walked",
	}, instrument(s, "accept_route", s.handleAccept))

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "cancel_route",
		Description: "End the session without recording anything",
	}, instrument(s, "cancel_route", s.handleCancel))

	if s.ports.Precalc != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "precalculate_routes",
			Description: "Recompute every closed route from home and replace the stored set",
		}, instrument(s, "precalculate_routes", s.handlePrecalc))
	}
}

func (s *Server) handleRecommend(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RecommendInput,
) (*mcp.CallToolResult, ProposalOutput, error) {
	target, err := domain.ParseTarget(input.Target)
	if err != nil {
		return nil, ProposalOutput{}, err
	}

	proposal, err := s.ports.Recommender.Start(ctx, target)
	if err != nil {
		return nil, ProposalOutput{}, err
	}
	return nil, newProposalOutput(proposal), nil
}

func (s *Server) handleAlternative(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SessionInput,
) (*mcp.CallToolResult, ProposalOutput, error) {
	return s.sessionAction(ctx, input, s.ports.Recommender.Alternative)
}

func (s *Server) handleAccept(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SessionInput,
) (*mcp.CallToolResult, ProposalOutput, error) {
	return s.sessionAction(ctx, input, s.ports.Recommender.Accept)
}

func (s *Server) handleCancel(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SessionInput,
) (*mcp.CallToolResult, ProposalOutput, error) {
	return s.sessionAction(ctx, input, s.ports.Recommender.Cancel)
}

func (s *Server) sessionAction(
	ctx context.Context,
	input SessionInput,
	action func(context.Context, string) (*domain.RouteProposal, error),
) (*mcp.CallToolResult, ProposalOutput, error) {
	if input.Token == "" {
		return nil, ProposalOutput{}, fmt.Errorf("%w: token is required", domain.ErrInvalidInput)
	}

	proposal, err := action(ctx, input.Token)
	if err != nil {
		return nil, ProposalOutput{}, err
	}
	return nil, newProposalOutput(proposal), nil
}

func (s *Server) handlePrecalc(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ PrecalcInput,
) (*mcp.CallToolResult, PrecalcOutput, error) {
	result, err := s.ports.Precalc.Run(ctx)
	if err != nil {
		return nil, PrecalcOutput{}, fmt.Errorf("precalculating routes: %w", err)
	}

	return nil, PrecalcOutput{
		HomeNodeID:      result.HomeNodeID,
		Nodes:           result.Nodes,
		Segments:        result.Segments,
		SkippedSegments: result.SkippedSegments,
		Routes:          result.Routes,
		DurationMs:      result.Duration.Milliseconds(),
	}, nil
}

func newProposalOutput(p *domain.RouteProposal) ProposalOutput {
	return ProposalOutput{
		Token:            p.Token,
		Status:           string(p.Status),
		Signature:        p.Signature,
		Chain:            p.ChainLabel(),
		Nodes:            p.NodeNames,
		SegmentIDs:       p.SegmentIDs,
		LengthKm:         p.LengthKm(),
		DurationMin:      p.DurationMin,
		Target:           p.Target.String(),
		TolerancePercent: p.TolerancePercent,
		Shown:            p.Shown,
	}
}
