package mcp

import (
	"github.com/routy-labs/routy/internal/core/ports/driving"
)

// Ports aggregates the driving ports used by the MCP server.
type Ports struct {
	// Recommender runs recommendation sessions. Required.
	Recommender driving.RouteRecommender

	// Precalc enables the precalculate_routes tool.
	Precalc driving.Precalculator

	// Graph backs the graph statistics resource.
	Graph driving.GraphService

	// Usage backs the segment usage resources.
	Usage driving.UsageService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil || p.Recommender == nil {
		return ErrMissingRecommender
	}
	return nil
}
