package theme

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// CreateProgressTextStyle creates a style for progress text
func CreateProgressTextStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorBrightCyan)).
		Bold(true)
}

// CreateStatusIndicatorStyle creates a style for the result line
func CreateStatusIndicatorStyle(success bool) lipgloss.Style {
	color := ColorBrightRed
	if success {
		color = ColorBrightGreen
	}

	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(color)).
		Bold(true)
}

// FormatProgressMessage formats a progress message. A negative percentage
// means progress is unknown.
func FormatProgressMessage(operation, subject string, percentage float64) string {
	if percentage >= 0 {
		return fmt.Sprintf("%s %s... %.1f%%", operation, subject, percentage)
	}
	return fmt.Sprintf("%s %s...", operation, subject)
}

// FormatErrorMessage formats an error message
func FormatErrorMessage(operation string, err error) string {
	return fmt.Sprintf("%s failed: %v", operation, err)
}
