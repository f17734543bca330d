// Package usage provides the segment usage view for the TUI.
package usage

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/routy-labs/routy/internal/adapters/driving/tui/components/list"
	"github.com/routy-labs/routy/internal/adapters/driving/tui/components/status"
	"github.com/routy-labs/routy/internal/adapters/driving/tui/keymap"
	"github.com/routy-labs/routy/internal/adapters/driving/tui/messages"
	"github.com/routy-labs/routy/internal/adapters/driving/tui/styles"
	"github.com/routy-labs/routy/internal/core/domain"
	"github.com/routy-labs/routy/internal/core/ports/driving"
)

// Limit is the number of segments loaded.
const Limit = 50

// View lists the most used segments.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	list      *list.UsageList
	statusbar *status.Bar
	usage     driving.UsageService
	graph     driving.GraphService
	ctx       context.Context

	stats   *domain.GraphStats
	loading bool
	err     error
}

// NewView creates a usage view. graph may be nil.
func NewView(s *styles.Styles, km *keymap.KeyMap, usage driving.UsageService, graph driving.GraphService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &View{
		styles:    s,
		keymap:    km,
		list:      list.NewUsageList(s),
		statusbar: status.NewBar(s, km),
		usage:     usage,
		graph:     graph,
		ctx:       context.Background(),
	}
}

// WithContext sets the context used for loading.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init loads usage data.
func (v *View) Init() tea.Cmd {
	return v.load()
}

func (v *View) load() tea.Cmd {
	if v.usage == nil {
		v.err = fmt.Errorf("usage service not configured")
		v.statusbar.Set(status.StateError, v.err.Error())
		return nil
	}

	v.loading = true
	v.statusbar.Set(status.StateLoading, "Loading usage...")

	ctx, usage, graph := v.ctx, v.usage, v.graph
	return func() tea.Msg {
		rows, err := usage.Top(ctx, Limit)
		if err != nil {
			return messages.UsageLoaded{Err: err}
		}
		var stats *domain.GraphStats
		if graph != nil {
			s, err := graph.Stats(ctx)
			if err != nil {
				return messages.UsageLoaded{Err: err}
			}
			stats = &s
		}
		return messages.UsageLoaded{Usage: rows, Stats: stats}
	}
}

// Update handles messages for the usage view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)

	case tea.KeyMsg:
		switch {
		case msg.Type == tea.KeyEsc:
			return v, func() tea.Msg { return messages.ViewChanged{View: messages.ViewMenu} }
		case keymap.Matches(msg.String(), v.keymap.Refresh):
			return v, v.load()
		default:
			v.list.Update(msg)
		}

	case messages.UsageLoaded:
		v.loading = false
		v.err = msg.Err
		if msg.Err != nil {
			v.statusbar.Set(status.StateError, msg.Err.Error())
			return v, nil
		}
		v.list.SetRows(msg.Usage)
		v.stats = msg.Stats
		v.statusbar.Set(status.StateReady, fmt.Sprintf("%d segments", len(msg.Usage)))
	}
	return v, nil
}

// View renders the usage view.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("Segment Usage"))
	b.WriteString("\n")
	if v.stats != nil {
		b.WriteString(v.styles.Subtitle.Render(fmt.Sprintf(
			"%d nodes, %d segments, %d routes stored",
			v.stats.Nodes, v.stats.Segments, v.stats.Routes,
		)))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if v.loading {
		b.WriteString(v.styles.Muted.Render("Loading..."))
	} else {
		b.WriteString(v.list.View())
	}

	b.WriteString("\n\n")
	b.WriteString(v.statusbar.View())
	return b.String()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.statusbar.SetWidth(width)
	v.list.SetDimensions(width, height-6)
}

// Count returns the number of loaded rows.
func (v *View) Count() int {
	return v.list.Count()
}

// Selected returns the highlighted row, or nil.
func (v *View) Selected() *domain.SegmentUsage {
	return v.list.SelectedRow()
}

// Err returns the last load error.
func (v *View) Err() error {
	return v.err
}
