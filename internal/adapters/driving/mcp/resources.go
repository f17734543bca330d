package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// uriScheme is the custom URI scheme for Routy resources.
	uriScheme = "routy://"

	defaultUsageLimit = 20
)

// registerResources registers the read-only resources backed by the configured ports.
func (s *Server) registerResources() {
	if s.ports.Graph != nil {
		s.server.AddResource(&mcp.Resource{
			URI:         uriScheme + "graph/stats",
			Name:        "graph-stats",
			Description: "Node, segment and precalculated route counts",
			MIMEType:    "application/json",
		}, s.handleGraphStatsResource)
	}

	if s.ports.Usage != nil {
		s.server.AddResource(&mcp.Resource{
			URI:         uriScheme + "usage/top",
			Name:        "segment-usage",
			Description: "Most walked segments with today's acceptance counts",
			MIMEType:    "application/json",
		}, s.handleUsageResource)

		s.server.AddResourceTemplate(&mcp.ResourceTemplate{
			URITemplate: uriScheme + "usage/top/{limit}",
			Name:        "segment-usage-limited",
			Description: "The given number of most walked segments",
			MIMEType:    "application/json",
		}, s.handleUsageResource)
	}
}

func (s *Server) handleGraphStatsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	stats, err := s.ports.Graph.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading graph stats: %w", err)
	}

	return jsonResource(req.Params.URI, struct {
		Nodes    int `json:"nodes"`
		Segments int `json:"segments"`
		Routes   int `json:"routes"`
	}{stats.Nodes, stats.Segments, stats.Routes})
}

func (s *Server) handleUsageResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	limit, ok := extractUsageLimit(req.Params.URI)
	if !ok {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	top, err := s.ports.Usage.Top(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("listing segment usage: %w", err)
	}

	type usageInfo struct {
		SegmentID     int64 `json:"segment_id"`
		UsageCount    int   `json:"usage_count"`
		AcceptedToday int   `json:"accepted_today"`
	}
	infos := make([]usageInfo, len(top))
	for i, u := range top {
		infos[i] = usageInfo{SegmentID: u.SegmentID, UsageCount: u.UsageCount, AcceptedToday: u.AcceptedToday}
	}
	return jsonResource(req.Params.URI, infos)
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling %s: %w", uri, err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractUsageLimit parses routy://usage/top or routy://usage/top/{limit}.
// A bare URI uses the default limit; the limit must be a positive integer.
func extractUsageLimit(uri string) (int, bool) {
	const prefix = uriScheme + "usage/top"

	if !strings.HasPrefix(uri, prefix) {
		return 0, false
	}

	rest := strings.TrimPrefix(uri, prefix)
	if rest == "" {
		return defaultUsageLimit, true
	}
	if !strings.HasPrefix(rest, "/") {
		return 0, false
	}

	limit, err := strconv.Atoi(strings.TrimPrefix(rest, "/"))
	if err != nil || limit <= 0 {
		return 0, false
	}
	return limit, true
}
