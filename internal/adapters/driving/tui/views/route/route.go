// Package route provides the interactive recommendation view for the TUI.
package route

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/routy-labs/routy/internal/adapters/driving/tui/components/input"
	"github.com/routy-labs/routy/internal/adapters/driving/tui/components/status"
	"github.com/routy-labs/routy/internal/adapters/driving/tui/keymap"
	"github.com/routy-labs/routy/internal/adapters/driving/tui/messages"
	"github.com/routy-labs/routy/internal/adapters/driving/tui/styles"
	"github.com/routy-labs/routy/internal/core/domain"
	"github.com/routy-labs/routy/internal/core/ports/driving"
)

// mode is the interaction state of the view.
type mode int

const (
	// modeInput reads a target.
	modeInput mode = iota
	// modeWaiting waits for the recommender.
	modeWaiting
	// modeProposal shows an open proposal.
	modeProposal
	// modeDone shows an accepted or cancelled route.
	modeDone
)

// View runs one recommendation session at a time.
type View struct {
	styles      *styles.Styles
	keymap      *keymap.KeyMap
	input       *input.Field
	statusbar   *status.Bar
	recommender driving.RouteRecommender
	ctx         context.Context

	mode     mode
	proposal *domain.RouteProposal
	err      error
	width    int
	height   int
}

// NewView creates a route view.
func NewView(s *styles.Styles, km *keymap.KeyMap, recommender driving.RouteRecommender) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &View{
		styles:      s,
		keymap:      km,
		input:       input.NewTargetInput(s),
		statusbar:   status.NewBar(s, km),
		recommender: recommender,
		ctx:         context.Background(),
		width:       80,
		height:      24,
	}
}

// WithContext sets the context passed to the recommender.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init focuses the target input.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Reset returns to target entry. An open session is left to expire.
func (v *View) Reset() {
	v.mode = modeInput
	v.proposal = nil
	v.err = nil
	v.input.Reset()
	v.input.Focus()
	v.statusbar.Clear()
}

// Update handles messages for the route view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKey(msg)

	case messages.ProposalReceived:
		v.handleProposal(msg)
		return v, nil

	case messages.ErrorOccurred:
		v.err = msg.Err
		v.statusbar.Set(status.StateError, msg.Err.Error())
		return v, nil
	}

	if v.mode == modeInput {
		var cmd tea.Cmd
		v.input, cmd = v.input.Update(msg)
		return v, cmd
	}
	return v, nil
}

func (v *View) handleKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch v.mode {
	case modeInput:
		if msg.Type == tea.KeyEsc {
			return v, backToMenu
		}
		if msg.Type == tea.KeyEnter {
			return v, v.start()
		}
		var cmd tea.Cmd
		v.input, cmd = v.input.Update(msg)
		return v, cmd

	case modeWaiting:
		return v, nil

	case modeProposal:
		key := msg.String()
		switch {
		case keymap.Matches(key, v.keymap.Next):
			return v, v.act(messages.ActionAlternative, v.recommender.Alternative)
		case keymap.Matches(key, v.keymap.Accept):
			return v, v.act(messages.ActionAccept, v.recommender.Accept)
		case keymap.Matches(key, v.keymap.Cancel):
			return v, v.act(messages.ActionCancel, v.recommender.Cancel)
		}
		return v, nil

	case modeDone:
		switch msg.Type {
		case tea.KeyEsc:
			return v, backToMenu
		case tea.KeyEnter:
			v.Reset()
			return v, v.input.Init()
		}
	}
	return v, nil
}

func (v *View) start() tea.Cmd {
	target, err := domain.ParseTarget(v.input.Value())
	if err != nil {
		v.err = err
		v.statusbar.Set(status.StateError, "use e.g. 5km or 45min")
		return nil
	}
	if v.recommender == nil {
		v.statusbar.Set(status.StateError, "route recommender not configured")
		return nil
	}

	v.err = nil
	v.mode = modeWaiting
	v.input.Blur()
	v.statusbar.Set(status.StateLoading, "Finding a route...")

	ctx, rec := v.ctx, v.recommender
	return func() tea.Msg {
		p, err := rec.Start(ctx, target)
		return messages.ProposalReceived{Action: messages.ActionStart, Proposal: p, Err: err}
	}
}

func (v *View) act(
	action messages.ProposalAction,
	call func(context.Context, string) (*domain.RouteProposal, error),
) tea.Cmd {
	if v.proposal == nil {
		return nil
	}
	v.mode = modeWaiting
	v.statusbar.Set(status.StateLoading, "Working...")

	ctx, token := v.ctx, v.proposal.Token
	return func() tea.Msg {
		p, err := call(ctx, token)
		return messages.ProposalReceived{Action: action, Proposal: p, Err: err}
	}
}

func (v *View) handleProposal(msg messages.ProposalReceived) {
	if msg.Err != nil {
		v.handleError(msg)
		return
	}

	v.err = nil
	v.proposal = msg.Proposal
	switch msg.Proposal.Status {
	case domain.ProposalAccepted:
		v.mode = modeDone
		v.statusbar.Set(status.StateReady, "Accepted. Enjoy the walk! [enter] new route")
	case domain.ProposalCancelled:
		v.mode = modeDone
		v.statusbar.Set(status.StateReady, "Cancelled. [enter] new route")
	default:
		v.mode = modeProposal
		v.statusbar.Set(status.StateProposal, fmt.Sprintf("Route #%d", msg.Proposal.Shown))
	}
}

func (v *View) handleError(msg messages.ProposalReceived) {
	v.err = msg.Err

	switch {
	case msg.Action == messages.ActionStart:
		// No session was opened.
		v.mode = modeInput
		v.input.Focus()
		v.statusbar.Set(status.StateError, msg.Err.Error())
	case errors.Is(msg.Err, domain.ErrNoCandidate), errors.Is(msg.Err, domain.ErrNoDiverseAlternative):
		// The session is still open on the previous proposal.
		v.mode = modeProposal
		v.statusbar.Set(status.StateNotice, "No other route in range yet")
	case errors.Is(msg.Err, domain.ErrSessionExpired):
		v.mode = modeDone
		v.proposal = nil
		v.statusbar.Set(status.StateError, "Session expired. [enter] new route")
	default:
		v.mode = modeProposal
		v.statusbar.Set(status.StateError, msg.Err.Error())
	}
}

// View renders the route view.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("Recommend a Route"))
	b.WriteString("\n\n")
	b.WriteString(v.input.View())
	b.WriteString("\n\n")

	if v.proposal != nil {
		b.WriteString(v.renderProposal(v.proposal))
		b.WriteString("\n")
	} else if v.mode == modeInput {
		b.WriteString(v.styles.Help.Render("[enter] find route  [esc] back"))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(v.statusbar.View())
	return b.String()
}

func (v *View) renderProposal(p *domain.RouteProposal) string {
	maxNodes := domain.DefaultChainMaxNodes
	maxChars := v.width * 3
	if maxChars < 40 {
		maxChars = 40
	}

	lines := []string{
		v.styles.Subtitle.Render(fmt.Sprintf("Route #%d for %s (±%.0f%%)", p.Shown, p.Target, p.TolerancePercent)),
		v.styles.Chain.Render(domain.ShortenChain(p.NodeNames, maxNodes, maxChars)),
		v.styles.Label.Render("Length") + v.styles.Normal.Render(p.LengthLabel()),
		v.styles.Label.Render("Duration") + v.styles.Normal.Render(p.DurationLabel()),
		v.styles.Label.Render("Segments") + v.styles.Normal.Render(fmt.Sprintf("%d", len(p.SegmentIDs))),
	}
	return v.styles.Card.Render(strings.Join(lines, "\n"))
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.input.SetWidth(width / 2)
	v.statusbar.SetWidth(width)
}

// Proposal returns the last proposal, or nil.
func (v *View) Proposal() *domain.RouteProposal {
	return v.proposal
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}

// Waiting reports whether a request is in flight.
func (v *View) Waiting() bool {
	return v.mode == modeWaiting
}

// InSession reports whether a proposal is open for next, accept or cancel.
func (v *View) InSession() bool {
	return v.mode == modeProposal
}

func backToMenu() tea.Msg {
	return messages.ViewChanged{View: messages.ViewMenu}
}
