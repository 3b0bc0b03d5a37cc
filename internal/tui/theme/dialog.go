package theme

import (
	"github.com/charmbracelet/lipgloss"
)

// CreateDialogStyle creates a floating dialog box. An empty borderColor uses
// the primary accent.
func CreateDialogStyle(width int, borderColor string) lipgloss.Style {
	if borderColor == "" {
		borderColor = ColorBrightBlue
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(borderColor)).
		Background(lipgloss.Color("#1a1a1a")).
		Foreground(lipgloss.Color(ColorWhite)).
		Padding(1, 2).
		Width(width)
}

// CreateDialogTitleStyle creates the title line of a dialog
func CreateDialogTitleStyle(color string) lipgloss.Style {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(color)).
		MarginBottom(1)
}

// CreatePromptStyle creates a style for prompt text in dialogs
func CreatePromptStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorBrightYellow)).
		Bold(true)
}

// CreateButtonStyle styles the send button. A disabled button is dimmed and
// a focused one is highlighted.
func CreateButtonStyle(focused, enabled bool) lipgloss.Style {
	style := lipgloss.NewStyle().
		Padding(0, 2).
		Border(lipgloss.RoundedBorder())

	switch {
	case !enabled:
		return style.
			Foreground(lipgloss.Color(ColorDimmed)).
			BorderForeground(lipgloss.Color(ColorDimmed))
	case focused:
		return style.
			Foreground(lipgloss.Color("#000000")).
			Background(lipgloss.Color(ColorBrightGreen)).
			BorderForeground(lipgloss.Color(ColorBrightGreen)).
			Bold(true)
	default:
		return style.
			Foreground(lipgloss.Color(ColorBrightGreen)).
			BorderForeground(lipgloss.Color(ColorBrightGreen))
	}
}
