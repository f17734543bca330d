// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/routy-labs/routy/internal/adapters/driving/tui/styles"
	"github.com/routy-labs/routy/internal/core/domain"
)

// UsageList displays segment usage rows in a navigable list.
type UsageList struct {
	rows     []domain.SegmentUsage
	selected int
	styles   *styles.Styles
	width    int
	height   int
}

// NewUsageList creates an empty usage list.
func NewUsageList(s *styles.Styles) *UsageList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &UsageList{
		styles: s,
		width:  80,
		height: 10,
	}
}

// Update handles list navigation keys.
func (u *UsageList) Update(msg tea.Msg) (*UsageList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			u.MoveUp()
		case "down", "j":
			u.MoveDown()
		}
	}
	return u, nil
}

// View renders the visible rows with a header.
func (u *UsageList) View() string {
	if len(u.rows) == 0 {
		return u.styles.Muted.Render("No segment usage recorded yet")
	}

	visible := u.height - 2
	if visible < 1 {
		visible = 1
	}
	start := 0
	if u.selected >= visible {
		start = u.selected - visible + 1
	}
	end := min(start+visible, len(u.rows))

	lines := make([]string, 0, end-start+1)
	lines = append(lines, u.styles.Subtitle.Render(fmt.Sprintf("  %-10s %6s %6s", "SEGMENT", "USED", "TODAY")))
	for i := start; i < end; i++ {
		r := u.rows[i]
		line := fmt.Sprintf("%-10d %6d %6d", r.SegmentID, r.UsageCount, r.AcceptedToday)
		if i == u.selected {
			lines = append(lines, u.styles.Selected.Render("> "+line))
		} else {
			lines = append(lines, u.styles.Normal.Render("  "+line))
		}
	}
	return strings.Join(lines, "\n")
}

// SetRows replaces the rows and resets the selection.
func (u *UsageList) SetRows(rows []domain.SegmentUsage) {
	u.rows = rows
	u.selected = 0
}

// Selected returns the index of the selected row.
func (u *UsageList) Selected() int {
	return u.selected
}

// SelectedRow returns the selected row, or nil if the list is empty.
func (u *UsageList) SelectedRow() *domain.SegmentUsage {
	if u.selected < 0 || u.selected >= len(u.rows) {
		return nil
	}
	return &u.rows[u.selected]
}

// MoveUp moves selection up.
func (u *UsageList) MoveUp() {
	if u.selected > 0 {
		u.selected--
	}
}

// MoveDown moves selection down.
func (u *UsageList) MoveDown() {
	if u.selected < len(u.rows)-1 {
		u.selected++
	}
}

// SetDimensions sets the component dimensions.
func (u *UsageList) SetDimensions(width, height int) {
	u.width = width
	u.height = height
}

// Count returns the number of rows.
func (u *UsageList) Count() int {
	return len(u.rows)
}
