package theme

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// URLColorCode is the 256-color code used for links
const URLColorCode = "75"

// CreateURLSectionStyle creates a style for link section headers
func CreateURLSectionStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorBrightGreen)).
		Bold(true)
}

// FormatClickableURL formats url as an OSC 8 hyperlink showing displayText.
// Terminals without OSC 8 support print displayText only.
func FormatClickableURL(displayText, url string) string {
	hyperlink := fmt.Sprintf("\033]8;;%s\033\\%s\033]8;;\033\\", url, displayText)
	return fmt.Sprintf("\033[38;5;%sm\033[4m%s\033[0m", URLColorCode, hyperlink)
}

// CreateHintStyle creates a style for hints under a link or path
func CreateHintStyle() lipgloss.Style {
	return CreateSecondaryTextStyle()
}
