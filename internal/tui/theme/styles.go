package theme

import (
	"github.com/charmbracelet/lipgloss"
)

// CreateUnifiedPanelStyle creates the bordered form panel
func CreateUnifiedPanelStyle(width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Width(width).
		Border(BorderStyleUnified).
		BorderForeground(lipgloss.Color(ColorBrightBlue)).
		Padding(0, 1).
		Foreground(lipgloss.Color(ColorWhite))
}

// CreateHeaderStyle creates a consistent header style
func CreateHeaderStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(ColorBrightCyan)).
		MarginBottom(1).
		MarginLeft(1)
}

// CreateFooterStyle creates a consistent footer style
func CreateFooterStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorBrightBlack)).
		MarginTop(1).
		MarginLeft(1)
}

// CreateLabelStyle styles a form row label, highlighted when the row has focus
func CreateLabelStyle(width int, focused bool) lipgloss.Style {
	style := lipgloss.NewStyle().Width(width)
	if focused {
		return style.Foreground(lipgloss.Color(ColorBrightYellow)).Bold(true)
	}
	return style.Foreground(lipgloss.Color(ColorWhite))
}

// CreateFileStyle colors an attachment value by its state
func CreateFileStyle(attached bool) lipgloss.Style {
	if attached {
		return lipgloss.NewStyle().Foreground(lipgloss.Color(ColorFileSpreadsheet))
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(ColorFileMissing)).Italic(true)
}

// CreateSecondaryTextStyle creates a consistent secondary text style
func CreateSecondaryTextStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorBrightBlack)).
		Italic(true)
}

// CreateLoadingStyle creates a consistent loading state style
func CreateLoadingStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(ColorBrightYellow))
}

// CreateErrorStyle creates a consistent error style
func CreateErrorStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(ColorBrightRed))
}
