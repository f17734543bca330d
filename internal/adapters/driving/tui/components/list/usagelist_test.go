package list

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/routy-labs/routy/internal/core/domain"
)

func usageRows() []domain.SegmentUsage {
	return []domain.SegmentUsage{
		{SegmentID: 102, UsageCount: 4, AcceptedToday: 1},
		{SegmentID: 101, UsageCount: 2},
		{SegmentID: 100, UsageCount: 1},
	}
}

func TestUsageList_Empty(t *testing.T) {
	l := NewUsageList(nil)

	assert.Equal(t, 0, l.Count())
	assert.Nil(t, l.SelectedRow())
	assert.Contains(t, l.View(), "No segment usage")
}

func TestUsageList_Navigation(t *testing.T) {
	l := NewUsageList(nil)
	l.SetRows(usageRows())

	l, _ = l.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 1, l.Selected())

	l, _ = l.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	l, _ = l.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	assert.Equal(t, 2, l.Selected())

	l, _ = l.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'k'}})
	row := l.SelectedRow()
	require.NotNil(t, row)
	assert.Equal(t, int64(101), row.SegmentID)

	l.MoveUp()
	l.MoveUp()
	assert.Equal(t, 0, l.Selected())
}

func TestUsageList_ViewShowsRows(t *testing.T) {
	l := NewUsageList(nil)
	l.SetRows(usageRows())

	view := l.View()
	assert.Contains(t, view, "SEGMENT")
	assert.Contains(t, view, "102")
	assert.Contains(t, view, "> 102")
}

func TestUsageList_ScrollsToSelection(t *testing.T) {
	l := NewUsageList(nil)
	l.SetDimensions(80, 3)
	l.SetRows(usageRows())

	l.MoveDown()
	l.MoveDown()
	view := l.View()
	assert.Contains(t, view, "100")
	assert.NotContains(t, view, "102")
}
