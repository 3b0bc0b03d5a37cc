package validator

import (
	"fmt"
	"strings"
)

// Tool identifies one of the validation services
type Tool string

// Supported tools. ToolNone means nothing is selected.
const (
	ToolNone Tool = ""
	ToolTPA  Tool = "tpavalidation"
	ToolNPI  Tool = "npivalidation"
	ToolNDC  Tool = "ndcandselfadminvalidation"
)

// FallbackFilename is used when neither the server nor the tool suggests a name
const FallbackFilename = "Results.txt"

// Slot is a file attachment position. Its value doubles as the multipart
// form field name.
type Slot string

const (
	SlotTest          Slot = "testFile"
	SlotDB            Slot = "dbFile"
	SlotCoveredEntity Slot = "coveredEntityFile"
)

// AllSlots lists every slot in display order
var AllSlots = []Slot{SlotTest, SlotDB, SlotCoveredEntity}

// Label returns the user-facing name of a slot
func (s Slot) Label() string {
	switch s {
	case SlotTest:
		return "Test File"
	case SlotDB:
		return "DB File"
	case SlotCoveredEntity:
		return "Covered Entity File"
	default:
		return string(s)
	}
}

// ToolInfo describes a tool's endpoint and file requirements
type ToolInfo struct {
	ID              Tool
	Label           string
	Path            string
	DefaultFilename string
	Slots           []Slot
}

var toolInfos = []ToolInfo{
	{
		ID:              ToolTPA,
		Label:           "TPA Validation",
		Path:            "/api/tpa/TPAvalidation",
		DefaultFilename: "TPAResults.txt",
		Slots:           []Slot{SlotTest, SlotDB},
	},
	{
		ID:              ToolNPI,
		Label:           "NPI Validation",
		Path:            "/api/npi/NPIvalidation",
		DefaultFilename: "NPIResults.txt",
		Slots:           []Slot{SlotTest, SlotDB, SlotCoveredEntity},
	},
	{
		ID:              ToolNDC,
		Label:           "NDC / SA Validation",
		Path:            "/api/ndc/NDCvalidation",
		DefaultFilename: "NDCResults.txt",
		Slots:           []Slot{SlotTest, SlotDB},
	},
}

// Tools returns every supported tool in display order
func Tools() []ToolInfo {
	out := make([]ToolInfo, len(toolInfos))
	copy(out, toolInfos)
	return out
}

// Lookup returns the description of a tool
func Lookup(t Tool) (ToolInfo, bool) {
	for _, info := range toolInfos {
		if info.ID == t {
			return info, true
		}
	}
	return ToolInfo{}, false
}

// ParseTool converts a user supplied identifier into a Tool
func ParseTool(s string) (Tool, error) {
	t := Tool(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := Lookup(t); !ok {
		return ToolNone, fmt.Errorf("unknown tool %q (valid: %s)", s, strings.Join(toolIDs(), ", "))
	}
	return t, nil
}

// Valid reports whether t is one of the supported tools
func (t Tool) Valid() bool {
	_, ok := Lookup(t)
	return ok
}

// RequiredSlots returns the slots that must be filled before submitting
func (t Tool) RequiredSlots() []Slot {
	info, ok := Lookup(t)
	if !ok {
		return nil
	}
	return info.Slots
}

// HasSlot reports whether the tool accepts a file in the given slot
func (t Tool) HasSlot(s Slot) bool {
	for _, slot := range t.RequiredSlots() {
		if slot == s {
			return true
		}
	}
	return false
}

// DefaultFilename returns the tool's result filename used when the server
// suggests none
func (t Tool) DefaultFilename() string {
	if info, ok := Lookup(t); ok {
		return info.DefaultFilename
	}
	return FallbackFilename
}

// Label returns the display name of the tool
func (t Tool) Label() string {
	if info, ok := Lookup(t); ok {
		return info.Label
	}
	return "-- Select --"
}

func toolIDs() []string {
	ids := make([]string, 0, len(toolInfos))
	for _, info := range toolInfos {
		ids = append(ids, string(info.ID))
	}
	return ids
}

// FileSet maps slots to local file paths
type FileSet map[Slot]string

// Clone returns a copy of the set
func (fs FileSet) Clone() FileSet {
	out := make(FileSet, len(fs))
	for k, v := range fs {
		out[k] = v
	}
	return out
}

// SpreadsheetExt is the only accepted attachment extension
const SpreadsheetExt = ".xlsx"

// CheckFileType accepts names ending in .xlsx. The check is on the name
// only, the content is never inspected.
func CheckFileType(path string) error {
	if path == "" || !strings.HasSuffix(path, SpreadsheetExt) {
		return &InvalidFileTypeError{Path: path}
	}
	return nil
}
