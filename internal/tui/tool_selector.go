package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	tuiconfig "github.com/HaiFongPan/tfbv-cli/internal/tui/config"
	"github.com/HaiFongPan/tfbv-cli/internal/tui/theme"
	"github.com/HaiFongPan/tfbv-cli/internal/validator"
)

// ToolSelectorModel is the dialog used to choose a validation tool
type ToolSelectorModel struct {
	tools         []validator.ToolInfo
	selectedIndex int
	current       validator.Tool
	keyMap        ToolSelectorKeyMap
	help          help.Model
}

// ToolSelectorKeyMap defines keybindings for the tool selector
type ToolSelectorKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	Clear  key.Binding
	Cancel key.Binding
}

// DefaultToolSelectorKeyMap returns default keybindings
func DefaultToolSelectorKeyMap() ToolSelectorKeyMap {
	return ToolSelectorKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "move down"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter", " "),
			key.WithHelp("enter", "select tool"),
		),
		Clear: key.NewBinding(
			key.WithKeys("backspace", "0"),
			key.WithHelp("0", "no tool"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc", "q"),
			key.WithHelp("esc", "cancel"),
		),
	}
}

// ShortHelp returns the short help view
func (k ToolSelectorKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Select, k.Clear, k.Cancel}
}

// FullHelp returns the full help view
func (k ToolSelectorKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Select},
		{k.Clear, k.Cancel},
	}
}

// NewToolSelectorModel creates a selector with the cursor on the current
// tool, or on the remembered one when nothing is selected yet
func NewToolSelectorModel(current, remembered validator.Tool) *ToolSelectorModel {
	m := &ToolSelectorModel{
		tools:   validator.Tools(),
		current: current,
		keyMap:  DefaultToolSelectorKeyMap(),
		help:    help.New(),
	}

	start := current
	if start == validator.ToolNone {
		start = remembered
	}
	for i, info := range m.tools {
		if info.ID == start {
			m.selectedIndex = i
		}
	}

	return m
}

// Messages for tool selector
type (
	toolSelectedMsg struct {
		tool validator.Tool
	}
	selectorClosedMsg struct{}
)

// Init implements tea.Model
func (m *ToolSelectorModel) Init() tea.Cmd {
	return nil
}

// Update handles messages in the tool selector
func (m *ToolSelectorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keyMap.Up):
		if m.selectedIndex > 0 {
			m.selectedIndex--
		}

	case key.Matches(keyMsg, m.keyMap.Down):
		if m.selectedIndex < len(m.tools)-1 {
			m.selectedIndex++
		}

	case key.Matches(keyMsg, m.keyMap.Select):
		tool := m.tools[m.selectedIndex].ID
		return m, func() tea.Msg { return toolSelectedMsg{tool: tool} }

	case key.Matches(keyMsg, m.keyMap.Clear):
		return m, func() tea.Msg { return toolSelectedMsg{tool: validator.ToolNone} }

	case key.Matches(keyMsg, m.keyMap.Cancel):
		return m, func() tea.Msg { return selectorClosedMsg{} }
	}

	return m, nil
}

// Highlighted returns the tool under the cursor
func (m *ToolSelectorModel) Highlighted() validator.Tool {
	return m.tools[m.selectedIndex].ID
}

// View renders the selector dialog content
func (m *ToolSelectorModel) View() string {
	title := theme.CreateDialogTitleStyle(theme.ColorBrightYellow).Render("🧪 Validation Type")

	var items []string
	for i, info := range m.tools {
		prefix := "  "
		style := lipgloss.NewStyle().
			Foreground(lipgloss.Color(theme.ColorWhite)).
			Padding(0, 1)

		if i == m.selectedIndex {
			prefix = "▶ "
			style = style.
				Background(lipgloss.Color(theme.ColorBrightBlue)).
				Bold(true)
		}

		line := prefix + info.Label
		if info.ID == m.current {
			line += " (current)"
		}
		items = append(items, style.Render(line))
	}

	info := m.tools[m.selectedIndex]
	// One slot per line so a label never wraps inside the dialog
	lines := []string{"Requires:"}
	for _, slot := range info.Slots {
		lines = append(lines, fmt.Sprintf("  • %s", slot.Label()))
	}
	requires := theme.CreateSecondaryTextStyle().Render(strings.Join(lines, "\n"))

	content := lipgloss.JoinVertical(lipgloss.Left,
		title,
		strings.Join(items, "\n"),
		"",
		requires,
		"",
		m.help.ShortHelpView(m.keyMap.ShortHelp()),
	)

	return theme.CreateDialogStyle(tuiconfig.DialogDefaultWidth, theme.ColorBrightYellow).Render(content)
}
