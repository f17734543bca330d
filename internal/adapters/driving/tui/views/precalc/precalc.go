// Package precalc provides the route precalculation view for the TUI.
package precalc

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/routy-labs/routy/internal/adapters/driving/tui/components/status"
	"github.com/routy-labs/routy/internal/adapters/driving/tui/keymap"
	"github.com/routy-labs/routy/internal/adapters/driving/tui/messages"
	"github.com/routy-labs/routy/internal/adapters/driving/tui/styles"
	"github.com/routy-labs/routy/internal/core/domain"
	"github.com/routy-labs/routy/internal/core/ports/driving"
)

// View runs precalculation and shows its result.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	statusbar *status.Bar
	precalc   driving.Precalculator
	ctx       context.Context

	running bool
	result  *domain.PrecalcResult
	err     error
}

// NewView creates a precalculation view.
func NewView(s *styles.Styles, km *keymap.KeyMap, precalc driving.Precalculator) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &View{
		styles:    s,
		keymap:    km,
		statusbar: status.NewBar(s, km),
		precalc:   precalc,
		ctx:       context.Background(),
	}
}

// WithContext sets the context passed to the precalculator.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init starts a run.
func (v *View) Init() tea.Cmd {
	return v.run()
}

func (v *View) run() tea.Cmd {
	if v.running {
		return nil
	}
	if v.precalc == nil {
		v.err = fmt.Errorf("precalculation not configured")
		v.statusbar.Set(status.StateError, v.err.Error())
		return nil
	}

	v.running = true
	v.err = nil
	v.statusbar.Set(status.StateLoading, "Precalculating routes...")

	ctx, p := v.ctx, v.precalc
	return func() tea.Msg {
		result, err := p.Run(ctx)
		return messages.PrecalcCompleted{Result: result, Err: err}
	}
}

// Update handles messages for the precalculation view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)

	case tea.KeyMsg:
		switch {
		case msg.Type == tea.KeyEsc:
			return v, func() tea.Msg { return messages.ViewChanged{View: messages.ViewMenu} }
		case keymap.Matches(msg.String(), v.keymap.Refresh):
			return v, v.run()
		}

	case messages.PrecalcCompleted:
		v.running = false
		v.result, v.err = msg.Result, msg.Err
		if msg.Err != nil {
			v.statusbar.Set(status.StateError, msg.Err.Error())
		} else {
			v.statusbar.Set(status.StateReady, "Done. [r] run again")
		}
	}
	return v, nil
}

// View renders the precalculation view.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("Precalculate Routes"))
	b.WriteString("\n\n")

	switch {
	case v.running:
		b.WriteString(v.styles.Muted.Render("Enumerating closed routes from home..."))
	case v.result != nil && v.err == nil:
		r := v.result
		rows := [][2]string{
			{"Home", fmt.Sprintf("node %d", r.HomeNodeID)},
			{"Nodes", fmt.Sprintf("%d", r.Nodes)},
			{"Segments", fmt.Sprintf("%d (%d skipped)", r.Segments, r.SkippedSegments)},
			{"Routes", fmt.Sprintf("%d", r.Routes)},
			{"Took", r.Duration.Round(time.Millisecond).String()},
		}
		for _, row := range rows {
			b.WriteString(v.styles.Label.Render(row[0]) + v.styles.Normal.Render(row[1]) + "\n")
		}
	case v.err != nil:
		b.WriteString(v.styles.Error.Render("Precalculation failed; stored routes are unchanged."))
	}

	b.WriteString("\n\n")
	b.WriteString(v.statusbar.View())
	return b.String()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, _ int) {
	v.statusbar.SetWidth(width)
}

// Running reports whether a run is in flight.
func (v *View) Running() bool {
	return v.running
}

// Result returns the last successful result, or nil.
func (v *View) Result() *domain.PrecalcResult {
	return v.result
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
