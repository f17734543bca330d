package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/routy-labs/routy/internal/adapters/driving/tui/keymap"
	"github.com/routy-labs/routy/internal/adapters/driving/tui/messages"
	"github.com/routy-labs/routy/internal/adapters/driving/tui/styles"
	"github.com/routy-labs/routy/internal/adapters/driving/tui/views/menu"
	"github.com/routy-labs/routy/internal/adapters/driving/tui/views/precalc"
	"github.com/routy-labs/routy/internal/adapters/driving/tui/views/route"
	"github.com/routy-labs/routy/internal/adapters/driving/tui/views/settings"
	"github.com/routy-labs/routy/internal/adapters/driving/tui/views/usage"
	"github.com/routy-labs/routy/internal/core/domain"
)

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	ports  *Ports
	ctx    context.Context
	styles *styles.Styles

	menuView     *menu.View
	routeView    *route.View
	precalcView  *precalc.View
	usageView    *usage.View
	settingsView *settings.View

	// currentView tracks which view is active.
	currentView messages.ViewType

	// err holds the last error that occurred.
	err error

	width  int
	height int
	ready  bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	return &App{
		ports:        ports,
		ctx:          context.Background(),
		styles:       s,
		menuView:     menu.NewView(s),
		routeView:    route.NewView(s, km, ports.Recommender),
		precalcView:  precalc.NewView(s, km, ports.Precalc),
		usageView:    usage.NewView(s, km, ports.Usage, ports.Graph),
		settingsView: settings.NewView(s, km, ports.Settings),
		currentView:  messages.ViewMenu,
	}, nil
}

// WithContext sets the context passed to every service call.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.routeView.WithContext(ctx)
	a.precalcView.WithContext(ctx)
	a.usageView.WithContext(ctx)
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		tea.SetWindowTitle("routy"),
	)
}

// Update implements tea.Model.
//
//nolint:gocyclo // central message handler
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if a.currentView == messages.ViewHelp {
			if msg.Type == tea.KeyEsc {
				a.currentView = messages.ViewMenu
			}
			return a, nil
		}
		return a, a.forward(msg)

	case messages.ViewChanged:
		a.currentView = msg.View
		switch msg.View {
		case messages.ViewRoute:
			a.routeView.Reset()
			return a, a.routeView.Init()
		case messages.ViewPrecalc:
			return a, a.precalcView.Init()
		case messages.ViewUsage:
			return a, a.usageView.Init()
		case messages.ViewSettings:
			return a, a.settingsView.Init()
		case messages.ViewMenu, messages.ViewHelp:
		}
		return a, nil

	case messages.ProposalReceived:
		a.err = msg.Err
		a.routeView, cmd = a.routeView.Update(msg)
		return a, cmd

	case messages.PrecalcCompleted:
		a.err = msg.Err
		a.precalcView, cmd = a.precalcView.Update(msg)
		return a, cmd

	case messages.UsageLoaded:
		a.err = msg.Err
		a.usageView, cmd = a.usageView.Update(msg)
		return a, cmd

	case messages.SettingsLoaded, messages.SettingSaved:
		a.settingsView, cmd = a.settingsView.Update(msg)
		a.err = a.settingsView.Err()
		return a, cmd

	case messages.ErrorOccurred:
		a.err = msg.Err
		if a.currentView == messages.ViewRoute {
			a.routeView, cmd = a.routeView.Update(msg)
		}
		return a, cmd

	case messages.Quit:
		return a, tea.Quit
	}

	return a, a.forward(msg)
}

// forward passes a message to the active view.
func (a *App) forward(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch a.currentView {
	case messages.ViewMenu:
		a.menuView, cmd = a.menuView.Update(msg)
	case messages.ViewRoute:
		a.routeView, cmd = a.routeView.Update(msg)
	case messages.ViewPrecalc:
		a.precalcView, cmd = a.precalcView.Update(msg)
	case messages.ViewUsage:
		a.usageView, cmd = a.usageView.Update(msg)
	case messages.ViewSettings:
		a.settingsView, cmd = a.settingsView.Update(msg)
	case messages.ViewHelp:
	}
	return cmd
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	switch a.currentView {
	case messages.ViewRoute:
		return a.routeView.View()
	case messages.ViewPrecalc:
		return a.precalcView.View()
	case messages.ViewUsage:
		return a.usageView.View()
	case messages.ViewSettings:
		return a.settingsView.View()
	case messages.ViewHelp:
		return a.viewHelp()
	default:
		return a.menuView.View()
	}
}

func (a *App) viewHelp() string {
	return a.styles.Title.Render("Help") + `

Navigation:
  esc         Back to Menu
  ctrl+c      Quit

Recommend Route:
  (type)      Target, e.g. 5km, 4.5 km or 45min
  enter       Find a route
  n           Show another route (widens tolerance)
  a, enter    Accept and record the walk
  c, esc      Cancel the session

Precalculate:
  r           Run again

Segment Usage:
  j/k, ↑/↓    Navigate rows
  r           Refresh

Settings:
  enter       Edit / save value
  esc         Cancel edit

[esc] back to menu`
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	return err
}

// Proposal returns the route view's current proposal.
func (a *App) Proposal() *domain.RouteProposal {
	return a.routeView.Proposal()
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has been initialised.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions on every view.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.menuView.SetDimensions(width, height)
	a.routeView.SetDimensions(width, height)
	a.precalcView.SetDimensions(width, height)
	a.usageView.SetDimensions(width, height)
	a.settingsView.SetDimensions(width, height)
}
