// Package tui provides an interactive terminal user interface for routy.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/routy-labs/routy/internal/core/ports/driving"
)

// Ports aggregates the driving ports used by the TUI.
type Ports struct {
	// Recommender runs recommendation sessions. Required.
	Recommender driving.RouteRecommender

	// Precalc rebuilds the stored route set.
	Precalc driving.Precalculator

	// Graph reports network counts.
	Graph driving.GraphService

	// Usage lists segment usage.
	Usage driving.UsageService

	// Settings manages application settings.
	Settings driving.SettingsService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil || p.Recommender == nil {
		return ErrMissingRecommender
	}
	return nil
}
