package theme

// Terminal-compatible color constants using ANSI standard colors
const (
	ColorWhite        = "#FFFFFF" // ANSI 15 - primary text
	ColorBrightBlack  = "#808080" // ANSI 8 - secondary text
	ColorBrightBlue   = "#5C7CFA" // ANSI 12 - primary accent
	ColorBrightCyan   = "#66D9E8" // ANSI 14 - secondary accent
	ColorBrightGreen  = "#51CF66" // ANSI 10 - success/links
	ColorBrightYellow = "#FFD43B" // ANSI 11 - warning
	ColorBrightRed    = "#FF6B6B" // ANSI 9 - error
	ColorDimmed       = "#555555"

	// Attachment colors
	ColorFileSpreadsheet = "#69DB7C"
	ColorFileRejected    = "#FF8787"
	ColorFileMissing     = "#808080"
)

// Message levels, in the same order as messaging.MessageType
const (
	levelInfo = iota
	levelSuccess
	levelWarning
	levelError
)

// GetMessageColor returns the color for a given message type
func GetMessageColor(messageType int) string {
	switch messageType {
	case levelError:
		return ColorBrightRed
	case levelSuccess:
		return ColorBrightGreen
	case levelWarning:
		return ColorBrightYellow
	default:
		return ColorBrightCyan
	}
}

// GetMessageIcon returns the icon for a given message type
func GetMessageIcon(messageType int) string {
	switch messageType {
	case levelError:
		return "❌"
	case levelSuccess:
		return "✅"
	case levelWarning:
		return "⚠️"
	default:
		return "ℹ️"
	}
}
