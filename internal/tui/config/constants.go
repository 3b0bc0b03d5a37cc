package config

// Layout constants
const (
	// Form panel
	FormMaxWidth     = 90
	FormMinWidth     = 40
	LabelColumnWidth = 22
	PathTruncateLen  = 60

	// Dialog dimensions
	DialogDefaultWidth    = 50
	DialogLargeWidth      = 70
	FilePickerDialogWidth = 80
	FilePickerHeight      = 14

	// Report preview
	PreviewChromeLines  = 4
	PreviewMinHeight    = 5
	DefaultPreviewLines = 2000

	// Help dialog
	HelpDialogWidth  = 60
	HelpDialogHeight = 15
)
