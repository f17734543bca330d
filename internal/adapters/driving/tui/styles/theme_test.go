package styles

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStyles_NilThemeUsesDefault(t *testing.T) {
	s := NewStyles(nil)
	require.NotNil(t, s.Theme())
	assert.Equal(t, DefaultTheme().Primary, s.Theme().Primary)
}

func TestNewStyles_UsesThemeColours(t *testing.T) {
	theme := DefaultTheme()
	theme.Primary = lipgloss.Color("#000000")

	s := NewStyles(theme)
	assert.Equal(t, theme, s.Theme())
	assert.Equal(t, lipgloss.Color("#000000"), s.Title.GetForeground())
	assert.Equal(t, lipgloss.Color("#000000"), s.Selected.GetBackground())
}

func TestStyles_RenderKeepsText(t *testing.T) {
	s := DefaultStyles()

	for name, style := range map[string]lipgloss.Style{
		"title": s.Title,
		"chain": s.Chain,
		"error": s.Error,
		"card":  s.Card,
	} {
		t.Run(name, func(t *testing.T) {
			assert.Contains(t, style.Render("Home › Mill"), "Home › Mill")
		})
	}
}
