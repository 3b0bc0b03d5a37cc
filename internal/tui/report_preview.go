package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/HaiFongPan/tfbv-cli/internal/form"
	tuiconfig "github.com/HaiFongPan/tfbv-cli/internal/tui/config"
	"github.com/HaiFongPan/tfbv-cli/internal/tui/theme"
)

// ReportPreviewModel is a fullscreen modal showing the text of a report
type ReportPreviewModel struct {
	width  int
	height int

	filename   string
	savedPath  string
	archiveURL string
	content    string
	dropped    int

	viewport viewport.Model
	keyMap   PreviewKeyMap
	help     help.Model
	message  string
	copyText func(string) error
}

// PreviewKeyMap defines keybindings for the report preview
type PreviewKeyMap struct {
	Up    key.Binding
	Down  key.Binding
	Copy  key.Binding
	Close key.Binding
}

// DefaultPreviewKeyMap returns default keybindings
func DefaultPreviewKeyMap() PreviewKeyMap {
	return PreviewKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k", "pgup"),
			key.WithHelp("↑/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j", "pgdown"),
			key.WithHelp("↓/j", "scroll down"),
		),
		Copy: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "copy report"),
		),
		Close: key.NewBinding(
			key.WithKeys("q", "esc", "p"),
			key.WithHelp("q/esc", "close"),
		),
	}
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k PreviewKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Copy, k.Close}
}

// FullHelp returns keybindings for the expanded help view
func (k PreviewKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

// modalClosedMsg is sent to the form when the preview is closed
type modalClosedMsg struct{}

// NewReportPreviewModel creates a preview of a successful outcome. Only the
// first maxLines lines are shown, 0 shows everything.
func NewReportPreviewModel(outcome *form.Outcome, maxLines, width, height int, copyText func(string) error) *ReportPreviewModel {
	m := &ReportPreviewModel{
		width:      width,
		height:     height,
		filename:   outcome.Result.Filename,
		savedPath:  outcome.SavedPath,
		archiveURL: outcome.ArchiveURL,
		content:    outcome.Preview,
		keyMap:     DefaultPreviewKeyMap(),
		help:       help.New(),
		copyText:   copyText,
	}

	shown, dropped := truncateLines(outcome.Preview, maxLines)
	m.dropped = dropped
	if dropped > 0 {
		shown += "\n" + theme.CreateSecondaryTextStyle().
			Render(fmt.Sprintf("… %d more lines, open the saved report to see everything", dropped))
	}

	m.viewport = viewport.New(width, m.viewportHeight())
	m.viewport.SetContent(shown)
	return m
}

// Init implements tea.Model
func (m *ReportPreviewModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m *ReportPreviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = msg.Width
		m.viewport.Height = m.viewportHeight()
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keyMap.Close):
			return m, func() tea.Msg { return modalClosedMsg{} }

		case key.Matches(msg, m.keyMap.Copy):
			if err := m.copyText(m.content); err != nil {
				m.message = theme.CreateErrorStyle().Render(theme.FormatErrorMessage("Copy", err))
			} else {
				m.message = theme.CreateStatusIndicatorStyle(true).Render("Report copied to clipboard")
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View implements tea.Model
func (m *ReportPreviewModel) View() string {
	nameLine := lipgloss.NewStyle().
		Width(m.width).
		Align(lipgloss.Center).
		Bold(true).
		Foreground(lipgloss.Color(theme.ColorBrightCyan)).
		Render("📄 " + m.filename)

	info := fmt.Sprintf("%d lines  •  %3.0f%%", strings.Count(m.content, "\n")+1, m.viewport.ScrollPercent()*100)
	if m.savedPath != "" {
		info = fmt.Sprintf("Saved to %s  •  %s", filepath.Clean(m.savedPath), info)
	}
	infoLine := theme.CreateHintStyle().Width(m.width).Align(lipgloss.Center).Render(info)

	bottom := m.help.ShortHelpView(m.keyMap.ShortHelp())
	if m.message != "" {
		bottom = m.message + "  " + bottom
	}
	if m.archiveURL != "" {
		bottom = theme.FormatClickableURL("archived copy", m.archiveURL) + "  " + bottom
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		nameLine,
		infoLine,
		m.viewport.View(),
		lipgloss.NewStyle().Width(m.width).Align(lipgloss.Center).Render(bottom),
	)
}

func (m *ReportPreviewModel) viewportHeight() int {
	return max(tuiconfig.PreviewMinHeight, m.height-tuiconfig.PreviewChromeLines)
}

// truncateLines keeps the first limit lines of text and reports how many
// were dropped. A limit of 0 keeps everything.
func truncateLines(text string, limit int) (string, int) {
	if limit <= 0 {
		return text, 0
	}

	lines := strings.Split(text, "\n")
	if len(lines) <= limit {
		return text, 0
	}
	return strings.Join(lines[:limit], "\n"), len(lines) - limit
}
