package theme

import "github.com/charmbracelet/lipgloss"

// BorderStyleUnified is the box drawing border shared by every panel
var BorderStyleUnified = lipgloss.Border{
	Top:         "─",
	Bottom:      "─",
	Left:        "│",
	Right:       "│",
	TopLeft:     "┌",
	TopRight:    "┐",
	BottomLeft:  "└",
	BottomRight: "┘",
}
