// Package settings provides the settings configuration view for the TUI.
package settings

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/routy-labs/routy/internal/adapters/driving/tui/components/input"
	"github.com/routy-labs/routy/internal/adapters/driving/tui/components/status"
	"github.com/routy-labs/routy/internal/adapters/driving/tui/keymap"
	"github.com/routy-labs/routy/internal/adapters/driving/tui/messages"
	"github.com/routy-labs/routy/internal/adapters/driving/tui/styles"
	"github.com/routy-labs/routy/internal/core/ports/driving"
)

const secretKey = "storage.mysql_dsn"

// View lists settings and edits one at a time.
type View struct {
	styles          *styles.Styles
	keymap          *keymap.KeyMap
	statusbar       *status.Bar
	settingsService driving.SettingsService

	entries  []messages.SettingEntry
	selected int
	editor   *input.Field
	err      error

	width  int
	height int
}

// NewView creates a new settings view.
func NewView(s *styles.Styles, km *keymap.KeyMap, settingsService driving.SettingsService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &View{
		styles:          s,
		keymap:          km,
		statusbar:       status.NewBar(s, km),
		settingsService: settingsService,
		width:           80,
		height:          24,
	}
}

// Init loads the current settings.
func (v *View) Init() tea.Cmd {
	return v.load()
}

func (v *View) load() tea.Cmd {
	svc := v.settingsService
	if svc == nil {
		v.err = fmt.Errorf("settings service not configured")
		v.statusbar.Set(status.StateError, v.err.Error())
		return nil
	}

	return func() tea.Msg {
		keys := svc.Keys()
		entries := make([]messages.SettingEntry, 0, len(keys))
		for _, key := range keys {
			value, err := svc.Value(key)
			if err != nil {
				return messages.SettingsLoaded{Err: err}
			}
			entries = append(entries, messages.SettingEntry{Key: key, Value: value})
		}
		return messages.SettingsLoaded{Entries: entries}
	}
}

func (v *View) save(key, value string) tea.Cmd {
	svc := v.settingsService
	return func() tea.Msg {
		return messages.SettingSaved{Key: key, Err: svc.Set(key, value)}
	}
}

// Update handles messages for the settings view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)

	case messages.SettingsLoaded:
		v.err = msg.Err
		if msg.Err != nil {
			v.statusbar.Set(status.StateError, msg.Err.Error())
			return v, nil
		}
		v.entries = msg.Entries
		if v.selected >= len(v.entries) {
			v.selected = 0
		}

	case messages.SettingSaved:
		if msg.Err != nil {
			v.err = msg.Err
			v.statusbar.Set(status.StateError, msg.Err.Error())
			return v, nil
		}
		v.err = nil
		v.statusbar.Set(status.StateReady, msg.Key+" updated")
		return v, v.load()

	case tea.KeyMsg:
		if v.editor != nil {
			return v.updateEditor(msg)
		}
		return v.updateList(msg)
	}
	return v, nil
}

func (v *View) updateList(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch {
	case msg.Type == tea.KeyEsc:
		return v, func() tea.Msg { return messages.ViewChanged{View: messages.ViewMenu} }
	case keymap.Matches(msg.String(), v.keymap.Up):
		if v.selected > 0 {
			v.selected--
		}
	case keymap.Matches(msg.String(), v.keymap.Down):
		if v.selected < len(v.entries)-1 {
			v.selected++
		}
	case msg.Type == tea.KeyEnter:
		if len(v.entries) == 0 {
			return v, nil
		}
		entry := v.entries[v.selected]
		v.editor = input.NewField(v.styles, entry.Key+": ", "")
		v.editor.SetValue(entry.Value)
		v.editor.SetWidth(v.width - len(entry.Key) - 6)
		v.statusbar.Set(status.StateNotice, "[enter] save  [esc] cancel")
		return v, v.editor.Focus()
	}
	return v, nil
}

func (v *View) updateEditor(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		v.editor = nil
		v.statusbar.Clear()
		return v, nil
	case tea.KeyEnter:
		key := v.entries[v.selected].Key
		value := strings.TrimSpace(v.editor.Value())
		v.editor = nil
		v.statusbar.Set(status.StateLoading, "Saving...")
		return v, v.save(key, value)
	}

	var cmd tea.Cmd
	v.editor, cmd = v.editor.Update(msg)
	return v, cmd
}

// View renders the settings view.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("Settings"))
	b.WriteString("\n\n")

	for i, entry := range v.entries {
		cursor := "  "
		style := v.styles.Normal
		if i == v.selected {
			cursor = "> "
			style = v.styles.Selected
		}

		value := displayValue(entry)
		if i == v.selected && v.editor != nil {
			b.WriteString(cursor + v.editor.View() + "\n")
			continue
		}
		b.WriteString(cursor + style.Render(fmt.Sprintf("%-28s", entry.Key)) + " " + v.styles.Muted.Render(value) + "\n")
	}

	b.WriteString("\n")
	if v.editor == nil && v.err == nil && v.statusbar.State() == status.StateReady && v.statusbar.Message() == "" {
		b.WriteString(v.styles.Help.Render("[j/k] navigate  [enter] edit  [esc] back"))
		b.WriteString("\n")
	}
	b.WriteString(v.statusbar.View())
	return b.String()
}

func displayValue(entry messages.SettingEntry) string {
	if entry.Value == "" {
		return "(not set)"
	}
	if entry.Key == secretKey {
		return "********"
	}
	return entry.Value
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.statusbar.SetWidth(width)
}

// Editing reports whether a value is being edited.
func (v *View) Editing() bool {
	return v.editor != nil
}

// Entries returns the loaded settings.
func (v *View) Entries() []messages.SettingEntry {
	return v.entries
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
