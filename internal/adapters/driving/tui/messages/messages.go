// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/routy-labs/routy/internal/core/domain"
)

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewMenu is the main navigation menu.
	ViewMenu ViewType = iota
	// ViewRoute runs a recommendation session.
	ViewRoute
	// ViewPrecalc recomputes the stored routes.
	ViewPrecalc
	// ViewUsage lists the most walked segments.
	ViewUsage
	// ViewSettings edits the settings.
	ViewSettings
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewMenu:
		return "menu"
	case ViewRoute:
		return "route"
	case ViewPrecalc:
		return "precalc"
	case ViewUsage:
		return "usage"
	case ViewSettings:
		return "settings"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ProposalAction names the session operation that produced a proposal.
type ProposalAction string

// Session operations.
const (
	ActionStart       ProposalAction = "start"
	ActionAlternative ProposalAction = "alternative"
	ActionAccept      ProposalAction = "accept"
	ActionCancel      ProposalAction = "cancel"
)

// ProposalReceived carries the outcome of a session operation.
type ProposalReceived struct {
	Action   ProposalAction
	Proposal *domain.RouteProposal
	Err      error
}

// PrecalcCompleted carries the outcome of a precalculation run.
type PrecalcCompleted struct {
	Result *domain.PrecalcResult
	Err    error
}

// UsageLoaded carries segment usage and graph counts.
type UsageLoaded struct {
	Usage []domain.SegmentUsage
	Stats *domain.GraphStats // nil when no graph service is wired
	Err   error
}

// SettingEntry is one key and its current value.
type SettingEntry struct {
	Key   string
	Value string
}

// SettingsLoaded carries every setting in display order.
type SettingsLoaded struct {
	Entries []SettingEntry
	Err     error
}

// SettingSaved is sent after a setting was written.
type SettingSaved struct {
	Key string
	Err error
}

// ErrorOccurred is sent when an error needs to be displayed.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}
