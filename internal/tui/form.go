package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"

	"github.com/HaiFongPan/tfbv-cli/internal/config"
	"github.com/HaiFongPan/tfbv-cli/internal/form"
	tuiconfig "github.com/HaiFongPan/tfbv-cli/internal/tui/config"
	"github.com/HaiFongPan/tfbv-cli/internal/tui/messaging"
	"github.com/HaiFongPan/tfbv-cli/internal/tui/theme"
	"github.com/HaiFongPan/tfbv-cli/internal/utils"
	"github.com/HaiFongPan/tfbv-cli/internal/validator"
)

// InputMode is what the form is currently asking the user for
type InputMode int

const (
	InputModeNone InputMode = iota
	InputModeTool
	InputModePath
	InputModePicker
	InputModePreview
)

// KeyMap defines keybindings for the validation form
type KeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Select  key.Binding
	Browse  key.Binding
	Clear   key.Binding
	Send    key.Binding
	Preview key.Binding
	Copy    key.Binding
	Help    key.Binding
	Cancel  key.Binding
	Quit    key.Binding
}

// DefaultKeyMap returns default keybindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k", "shift+tab"),
			key.WithHelp("↑/k", "move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j", "tab"),
			key.WithHelp("↓/j", "move down"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "edit / send"),
		),
		Browse: key.NewBinding(
			key.WithKeys("b", "ctrl+o"),
			key.WithHelp("b", "browse files"),
		),
		Clear: key.NewBinding(
			key.WithKeys("x", "delete"),
			key.WithHelp("x", "clear file"),
		),
		Send: key.NewBinding(
			key.WithKeys("s", "ctrl+s"),
			key.WithHelp("s", "send"),
		),
		Preview: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "view report"),
		),
		Copy: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "copy report"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel upload"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Select, k.Browse, k.Send, k.Preview, k.Help, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Select},
		{k.Browse, k.Clear, k.Send},
		{k.Preview, k.Copy, k.Cancel},
		{k.Help, k.Quit},
	}
}

// rowKind identifies a focusable line of the form
type rowKind int

const (
	rowTool rowKind = iota
	rowSlot
	rowSend
)

type formRow struct {
	kind rowKind
	slot validator.Slot
}

// workbookNote is the summary of the file a slot held when it was attached
type workbookNote struct {
	path    string
	summary string
}

// Message types for tea.Cmd communication
type (
	uploadProgressMsg struct {
		uploaded int64
		total    int64
		percent  float64
	}
	attemptCompletedMsg struct {
		outcome *form.Outcome
	}
)

// FormModel is the interactive validation form
type FormModel struct {
	controller *form.Controller
	runner     *form.Runner
	cfg        *config.Config
	userData   *config.UserData

	cursor    int
	inputMode InputMode
	inputSlot validator.Slot
	showHelp  bool

	selector   *ToolSelectorModel
	preview    *ReportPreviewModel
	textInput  textinput.Model
	filePicker filepicker.Model

	notes         map[validator.Slot]workbookNote
	status        messaging.StatusManager
	keyMap        KeyMap
	help          help.Model
	spinner       spinner.Model
	progress      progress.Model
	uploadPercent float64
	helpViewport  viewport.Model

	cancel       context.CancelFunc
	copyText     func(string) error
	program      *tea.Program
	windowWidth  int
	windowHeight int
}

// NewFormModel creates the form. The runner's progress callback is replaced
// so that upload progress reaches the program.
func NewFormModel(cfg *config.Config, runner *form.Runner, userData *config.UserData) *FormModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = theme.CreateLoadingStyle()

	ti := textinput.New()
	ti.Placeholder = "/path/to/workbook.xlsx"
	ti.CharLimit = 4096
	ti.Width = tuiconfig.DialogLargeWidth - 8

	h := help.New()
	h.ShowAll = false

	vp := viewport.New(tuiconfig.HelpDialogWidth, tuiconfig.HelpDialogHeight)

	m := &FormModel{
		controller:   form.New(),
		runner:       runner,
		cfg:          cfg,
		userData:     userData,
		textInput:    ti,
		notes:        make(map[validator.Slot]workbookNote),
		status:       messaging.NewStatusManager(),
		keyMap:       DefaultKeyMap(),
		help:         h,
		spinner:      s,
		progress:     progress.New(progress.WithDefaultGradient()),
		helpViewport: vp,
		copyText:     utils.CopyToClipboard,
		windowWidth:  80,
		windowHeight: 24,
	}
	runner.Progress = m.sendProgress

	return m
}

// SetProgram sets the tea.Program reference for direct message sending
func (m *FormModel) SetProgram(p *tea.Program) {
	m.program = p
}

// Init implements the bubbletea.Model interface
func (m *FormModel) Init() tea.Cmd {
	m.status.SetMessage("Choose a validation type to begin", messaging.MessageInfo)
	return nil
}

// Update implements the bubbletea.Model interface
func (m *FormModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.windowWidth = msg.Width
		m.windowHeight = msg.Height
		m.help.Width = msg.Width
		m.progress.Width = min(tuiconfig.DialogDefaultWidth, msg.Width-8)
		m.helpViewport.Width = min(tuiconfig.HelpDialogWidth, msg.Width-10)
		m.helpViewport.Height = min(tuiconfig.HelpDialogHeight, msg.Height-10)
		if m.preview != nil {
			m.preview.Update(msg)
		}
		if m.inputMode == InputModePicker {
			var cmd tea.Cmd
			m.filePicker, cmd = m.filePicker.Update(msg)
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case toolSelectedMsg:
		m.inputMode = InputModeNone
		m.selector = nil
		m.selectTool(msg.tool)
		return m, nil

	case selectorClosedMsg:
		m.inputMode = InputModeNone
		m.selector = nil
		return m, nil

	case modalClosedMsg:
		m.inputMode = InputModeNone
		m.preview = nil
		return m, nil

	case uploadProgressMsg:
		m.uploadPercent = msg.percent
		return m, m.progress.SetPercent(msg.percent / 100)

	case attemptCompletedMsg:
		m.finishAttempt(msg.outcome)
		return m, nil

	case spinner.TickMsg:
		if !m.controller.Submitting() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		if pm, ok := progressModel.(progress.Model); ok {
			m.progress = pm
		}
		return m, cmd

	default:
		// Directory listings and cursor blinks of the active input
		var cmd tea.Cmd
		switch m.inputMode {
		case InputModePicker:
			m.filePicker, cmd = m.filePicker.Update(msg)
		case InputModePath:
			m.textInput, cmd = m.textInput.Update(msg)
		}
		return m, cmd
	}
}

// handleKey routes keys to the active dialog or to the form itself
func (m *FormModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		if m.cancel != nil {
			m.cancel()
		}
		return m, tea.Quit
	}

	switch m.inputMode {
	case InputModeTool:
		_, cmd := m.selector.Update(msg)
		return m, cmd
	case InputModePreview:
		_, cmd := m.preview.Update(msg)
		return m, cmd
	case InputModePath:
		return m.handlePathInput(msg)
	case InputModePicker:
		return m.handlePicker(msg)
	}

	if m.showHelp {
		switch {
		case key.Matches(msg, m.keyMap.Help), key.Matches(msg, m.keyMap.Cancel), key.Matches(msg, m.keyMap.Quit):
			m.showHelp = false
			return m, nil
		}
		var cmd tea.Cmd
		m.helpViewport, cmd = m.helpViewport.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keyMap.Quit):
		if m.controller.Submitting() {
			m.status.SetMessage("Upload in progress, press esc to cancel it first", messaging.MessageWarning)
			return m, nil
		}
		return m, tea.Quit

	case key.Matches(msg, m.keyMap.Cancel):
		if m.controller.Submitting() && m.cancel != nil {
			m.cancel()
			m.status.SetMessage("Cancelling upload...", messaging.MessageWarning)
		}
		return m, nil

	case key.Matches(msg, m.keyMap.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case key.Matches(msg, m.keyMap.Down):
		if m.cursor < len(m.rows())-1 {
			m.cursor++
		}
		return m, nil

	case key.Matches(msg, m.keyMap.Select):
		return m, m.activateRow()

	case key.Matches(msg, m.keyMap.Browse):
		row := m.currentRow()
		if row.kind != rowSlot || m.blockedBySubmit() {
			return m, nil
		}
		return m, m.openPicker(row.slot, m.startDir(""))

	case key.Matches(msg, m.keyMap.Clear):
		row := m.currentRow()
		if row.kind != rowSlot || m.blockedBySubmit() {
			return m, nil
		}
		m.controller.DetachFile(row.slot)
		m.status.SetMessage(fmt.Sprintf("%s cleared", row.slot.Label()), messaging.MessageInfo)
		return m, nil

	case key.Matches(msg, m.keyMap.Send):
		return m, m.submit()

	case key.Matches(msg, m.keyMap.Preview):
		m.openPreview()
		return m, nil

	case key.Matches(msg, m.keyMap.Copy):
		m.copyReport()
		return m, nil

	case key.Matches(msg, m.keyMap.Help):
		m.showHelp = true
		m.helpViewport.SetContent(m.help.FullHelpView(m.keyMap.FullHelp()))
		return m, nil
	}

	return m, nil
}

// rows lists the focusable lines: the tool, the tool's slots, the send button
func (m *FormModel) rows() []formRow {
	rows := []formRow{{kind: rowTool}}
	for _, slot := range m.controller.Tool().RequiredSlots() {
		rows = append(rows, formRow{kind: rowSlot, slot: slot})
	}
	return append(rows, formRow{kind: rowSend})
}

func (m *FormModel) currentRow() formRow {
	rows := m.rows()
	if m.cursor >= len(rows) {
		m.cursor = len(rows) - 1
	}
	return rows[m.cursor]
}

// activateRow performs the enter action of the focused row
func (m *FormModel) activateRow() tea.Cmd {
	row := m.currentRow()
	if row.kind != rowSend && m.blockedBySubmit() {
		return nil
	}

	switch row.kind {
	case rowTool:
		remembered := validator.ToolNone
		if m.userData != nil {
			remembered = validator.Tool(m.userData.LastTool)
		}
		m.selector = NewToolSelectorModel(m.controller.Tool(), remembered)
		m.inputMode = InputModeTool
		return nil
	case rowSlot:
		return m.openPathInput(row.slot)
	default:
		return m.submit()
	}
}

func (m *FormModel) blockedBySubmit() bool {
	if m.controller.Submitting() {
		m.status.SetMessage("Upload in progress", messaging.MessageWarning)
		return true
	}
	return false
}

// selectTool applies a tool choice. Every attached file is dropped.
func (m *FormModel) selectTool(tool validator.Tool) {
	if err := m.controller.SelectTool(tool); err != nil {
		m.status.SetError(err)
		return
	}

	m.cursor = 0
	if tool == validator.ToolNone {
		m.status.SetMessage("Choose a validation type to begin", messaging.MessageInfo)
		return
	}
	m.cursor = 1
	m.status.SetMessage(fmt.Sprintf("%s selected, attach %d files", tool.Label(), len(tool.RequiredSlots())), messaging.MessageInfo)
}

// openPathInput shows the path dialog for slot, prefilled with its file or
// the last used directory
func (m *FormModel) openPathInput(slot validator.Slot) tea.Cmd {
	value := m.controller.File(slot)
	if value == "" {
		if dir := m.startDir(""); dir != "" {
			value = dir + string(filepath.Separator)
		}
	}

	m.inputMode = InputModePath
	m.inputSlot = slot
	m.textInput.SetValue(value)
	m.textInput.CursorEnd()
	return m.textInput.Focus()
}

// handlePathInput handles keys while the path dialog is open
func (m *FormModel) handlePathInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		path := expandPath(strings.TrimSpace(m.textInput.Value()))
		slot := m.inputSlot
		m.closeInput()
		m.attach(slot, path)
		return m, nil

	case tea.KeyEsc:
		m.closeInput()
		return m, nil

	case tea.KeyCtrlO:
		slot := m.inputSlot
		dir := m.startDir(expandPath(strings.TrimSpace(m.textInput.Value())))
		m.closeInput()
		return m, m.openPicker(slot, dir)
	}

	var cmd tea.Cmd
	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

// openPicker shows the file picker for slot starting in dir
func (m *FormModel) openPicker(slot validator.Slot, dir string) tea.Cmd {
	fp := filepicker.New()
	fp.AllowedTypes = []string{validator.SpreadsheetExt}
	fp.CurrentDirectory = dir
	fp.ShowHidden = false
	fp.AutoHeight = false
	fp.Height = tuiconfig.FilePickerHeight
	fp.Styles.DisabledFile = lipgloss.NewStyle().Foreground(lipgloss.Color(theme.ColorFileRejected))
	fp.Styles.File = lipgloss.NewStyle().Foreground(lipgloss.Color(theme.ColorFileSpreadsheet))
	m.filePicker = fp

	m.inputMode = InputModePicker
	m.inputSlot = slot
	return m.filePicker.Init()
}

// handlePicker handles keys while the file picker is open. The picker uses
// esc to leave a directory, so q closes it.
func (m *FormModel) handlePicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "q" {
		m.closeInput()
		return m, nil
	}

	var cmd tea.Cmd
	m.filePicker, cmd = m.filePicker.Update(msg)

	if ok, path := m.filePicker.DidSelectFile(msg); ok {
		slot := m.inputSlot
		m.closeInput()
		m.attach(slot, path)
		return m, nil
	}

	// Files without the .xlsx suffix are shown disabled; picking one is
	// reported the same way as a typed path
	if ok, path := m.filePicker.DidSelectDisabledFile(msg); ok {
		slot := m.inputSlot
		m.closeInput()
		m.attach(slot, path)
		return m, nil
	}

	return m, cmd
}

func (m *FormModel) closeInput() {
	m.inputMode = InputModeNone
	m.textInput.Blur()
	m.textInput.Reset()
}

// attach stores path in slot after checking it names a readable .xlsx file.
// A name with the wrong suffix empties the slot.
func (m *FormModel) attach(slot validator.Slot, path string) {
	if path == "" {
		m.status.SetMessage("No file path entered", messaging.MessageWarning)
		return
	}

	if err := validator.CheckFileType(path); err != nil {
		m.controller.DetachFile(slot)
		delete(m.notes, slot)
		m.status.SetError(err)
		return
	}

	info, err := os.Stat(path)
	if err != nil {
		m.status.SetMessage(fmt.Sprintf("File not found: %s", path), messaging.MessageError)
		return
	}
	if info.IsDir() {
		m.status.SetMessage(fmt.Sprintf("%s is a directory", path), messaging.MessageError)
		return
	}

	if err := m.controller.AttachFile(slot, path); err != nil {
		m.status.SetError(err)
		return
	}

	details := utils.FormatBytes(info.Size())
	if summary, err := utils.InspectWorkbook(path); err != nil {
		logrus.Debugf("Form: cannot summarise %s: %v", path, err)
		delete(m.notes, slot)
	} else {
		m.notes[slot] = workbookNote{path: path, summary: summary.String()}
		details += ", " + summary.String()
	}

	m.status.SetMessage(fmt.Sprintf("%s: %s (%s)", slot.Label(), filepath.Base(path), details), messaging.MessageInfo)
	m.rememberDir(filepath.Dir(path))

	if m.cursor < len(m.rows())-1 {
		m.cursor++
	}
}

// submit starts an attempt in the background
func (m *FormModel) submit() tea.Cmd {
	if m.controller.Submitting() {
		m.status.SetMessage("Upload already in progress", messaging.MessageWarning)
		return nil
	}

	attempt, ok := m.controller.Begin()
	if !ok {
		m.status.SetMessage("Select a validation type and attach every required file", messaging.MessageWarning)
		return nil
	}

	timeout := time.Duration(m.cfg.General.DefaultTimeout) * time.Second
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	m.cancel = cancel
	m.uploadPercent = 0
	m.progress = progress.New(progress.WithDefaultGradient(), progress.WithWidth(m.progress.Width))
	m.status.SetMessage(theme.FormatProgressMessage("Sending", attempt.Tool.Label(), -1), messaging.MessageInfo)

	logrus.Infof("Form: submitting %s with %d files", attempt.Tool, len(attempt.Files))

	runner := m.runner
	run := func() tea.Msg {
		defer cancel()
		return attemptCompletedMsg{outcome: runner.Run(ctx, attempt)}
	}

	return tea.Batch(m.spinner.Tick, run)
}

// sendProgress forwards upload progress from the runner goroutine
func (m *FormModel) sendProgress(uploaded, total int64, percentage float64) {
	if m.program != nil {
		m.program.Send(uploadProgressMsg{uploaded: uploaded, total: total, percent: percentage})
	}
}

// finishAttempt applies a completed attempt and reports it on the status line
func (m *FormModel) finishAttempt(outcome *form.Outcome) {
	m.controller.Finish(outcome)
	m.cancel = nil

	result := outcome.Result
	if !outcome.Succeeded() {
		err := result.AsError()
		switch {
		case errors.Is(err, context.Canceled):
			m.status.SetMessage("Upload cancelled", messaging.MessageWarning)
		case errors.Is(err, context.DeadlineExceeded):
			m.status.SetMessage(fmt.Sprintf("Upload timed out after %ds", m.cfg.General.DefaultTimeout), messaging.MessageError)
		default:
			m.status.SetMessage(result.Message(), messaging.MessageError)
		}
		return
	}

	if outcome.SaveErr != nil {
		m.status.SetMessage(fmt.Sprintf("%s Could not save %s: %v", result.Message(), result.Filename, outcome.SaveErr), messaging.MessageWarning)
	} else {
		m.status.SetMessage(fmt.Sprintf("%s Saved to %s", result.Message(), outcome.SavedPath), messaging.MessageSuccess)
	}

	if m.userData != nil {
		if err := m.userData.SetLastTool(string(outcome.Attempt.Tool)); err != nil {
			logrus.Warnf("Form: failed to save user data: %v", err)
		}
	}

	m.cursor = len(m.rows()) - 1
}

// openPreview shows the last report fullscreen
func (m *FormModel) openPreview() {
	outcome := m.controller.Outcome()
	if !outcome.Succeeded() || outcome.Preview == "" {
		m.status.SetMessage("No report to preview", messaging.MessageWarning)
		return
	}

	maxLines := tuiconfig.DefaultPreviewLines
	if m.cfg != nil {
		maxLines = m.cfg.UI.PreviewMaxLines
	}
	m.preview = NewReportPreviewModel(outcome, maxLines, m.windowWidth, m.windowHeight, m.copyText)
	m.inputMode = InputModePreview
}

// copyReport copies the last report text to the clipboard
func (m *FormModel) copyReport() {
	preview := m.controller.Preview()
	if preview == "" {
		m.status.SetMessage("No report to copy", messaging.MessageWarning)
		return
	}

	if err := m.copyText(preview); err != nil {
		m.status.SetMessage(theme.FormatErrorMessage("Copy", err), messaging.MessageError)
		return
	}
	m.status.SetMessage("Report copied to clipboard", messaging.MessageSuccess)
}

// startDir picks the directory a file dialog opens in: the given path's
// directory if it exists, then the last used directory, then home
func (m *FormModel) startDir(fromPath string) string {
	if fromPath != "" {
		if info, err := os.Stat(fromPath); err == nil && info.IsDir() {
			return fromPath
		}
		if dir := filepath.Dir(fromPath); dirExists(dir) {
			return dir
		}
	}

	if m.userData != nil && dirExists(m.userData.LastDir) {
		return m.userData.LastDir
	}

	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return "."
}

func (m *FormModel) rememberDir(dir string) {
	if m.userData == nil || m.userData.LastDir == dir {
		return
	}
	if err := m.userData.SetLastDir(dir); err != nil {
		logrus.Warnf("Form: failed to save user data: %v", err)
	}
}

// View implements the bubbletea.Model interface
func (m *FormModel) View() string {
	if m.inputMode == InputModePreview && m.preview != nil {
		return m.preview.View()
	}

	header := theme.CreateHeaderStyle().Render(fmt.Sprintf("📋 TFB Validator - %s", m.cfg.Server.BaseURL))

	sections := []string{header, m.renderForm()}
	if m.controller.Submitting() {
		sections = append(sections, m.renderProgress())
	} else if outcome := m.controller.Outcome(); outcome != nil {
		sections = append(sections, m.renderOutcome(outcome))
	}
	if m.status.HasMessage() {
		sections = append(sections, " "+m.status.RenderMessage())
	}
	sections = append(sections, theme.CreateFooterStyle().Render(m.help.ShortHelpView(m.keyMap.ShortHelp())))

	baseView := lipgloss.JoinVertical(lipgloss.Left, sections...)

	switch {
	case m.inputMode == InputModeTool && m.selector != nil:
		return m.renderFloatingDialog(m.selector.View())
	case m.inputMode == InputModePath:
		return m.renderFloatingDialog(m.renderPathDialog())
	case m.inputMode == InputModePicker:
		return m.renderFloatingDialog(m.renderPickerDialog())
	case m.showHelp:
		return m.renderFloatingDialog(m.renderHelpDialog())
	}

	return baseView
}

// renderForm renders the tool, slot and send rows
func (m *FormModel) renderForm() string {
	width := max(tuiconfig.FormMinWidth, min(tuiconfig.FormMaxWidth, m.windowWidth-4))

	var b strings.Builder
	for i, row := range m.rows() {
		focused := i == m.cursor
		marker := "  "
		if focused {
			marker = "▶ "
		}

		switch row.kind {
		case rowTool:
			label := theme.CreateLabelStyle(tuiconfig.LabelColumnWidth, focused).Render("Validation Type")
			b.WriteString(marker + label + m.controller.Tool().Label())

		case rowSlot:
			label := theme.CreateLabelStyle(tuiconfig.LabelColumnWidth, focused).Render(row.slot.Label())
			value := "(no file chosen)"
			path := m.controller.File(row.slot)
			if path != "" {
				value = truncatePath(path, tuiconfig.PathTruncateLen)
			}
			b.WriteString(marker + label + theme.CreateFileStyle(path != "").Render(value))
			if note, ok := m.notes[row.slot]; ok && path != "" && note.path == path {
				b.WriteString(theme.CreateHintStyle().Render("  " + note.summary))
			}

		case rowSend:
			text := "Send"
			if m.controller.Submitting() {
				text = "Sending..."
			}
			button := theme.CreateButtonStyle(focused, m.controller.CanSubmit()).Render(text)
			b.WriteString("\n" + lipgloss.NewStyle().MarginLeft(2).Render(button))
		}
		b.WriteString("\n")
	}

	return theme.CreateUnifiedPanelStyle(width).Render(strings.TrimRight(b.String(), "\n"))
}

// renderProgress renders the in-flight indicator
func (m *FormModel) renderProgress() string {
	percent := m.uploadPercent
	if percent >= 100 {
		percent = -1 // waiting for the server
	}

	line := fmt.Sprintf("%s %s", m.spinner.View(),
		theme.CreateProgressTextStyle().Render(theme.FormatProgressMessage("Uploading", m.controller.Tool().Label(), percent)))
	return lipgloss.JoinVertical(lipgloss.Left, " "+line, " "+m.progress.View())
}

// renderOutcome renders the result of the last attempt with a short preview
func (m *FormModel) renderOutcome(outcome *form.Outcome) string {
	var b strings.Builder

	if !outcome.Succeeded() {
		b.WriteString(theme.CreateStatusIndicatorStyle(false).Render("✗ " + outcome.Result.Message()))
		return lipgloss.NewStyle().MarginLeft(1).Render(b.String())
	}

	b.WriteString(theme.CreateStatusIndicatorStyle(true).Render("✓ " + outcome.Result.Filename))
	b.WriteString(theme.CreateHintStyle().Render(fmt.Sprintf("  %s in %s", utils.FormatBytes(int64(len(outcome.Result.Data))), outcome.Duration.Round(time.Millisecond))))
	b.WriteString("\n")

	if outcome.ArchiveURL != "" {
		b.WriteString(theme.CreateURLSectionStyle().Render("🔗 Archived: "))
		b.WriteString(theme.FormatClickableURL(outcome.ArchiveKey, outcome.ArchiveURL))
		b.WriteString("\n")
	} else if outcome.ArchiveErr != nil {
		b.WriteString(theme.CreateErrorStyle().Render(theme.FormatErrorMessage("Archive", outcome.ArchiveErr)))
		b.WriteString("\n")
	}

	if outcome.PreviewErr != nil {
		b.WriteString(theme.CreateErrorStyle().Render(fmt.Sprintf("Report preview unavailable: %v", outcome.PreviewErr)))
		return lipgloss.NewStyle().MarginLeft(1).Render(b.String())
	}

	// Room left under the form for the inline preview
	lines := max(3, m.windowHeight-len(m.rows())-14)
	snippet, dropped := truncateLines(outcome.Preview, lines)
	b.WriteString(theme.CreateSecondaryTextStyle().Render(snippet))
	if dropped > 0 {
		b.WriteString("\n")
		b.WriteString(theme.CreateHintStyle().Render(fmt.Sprintf("… %d more lines, press p to view the full report", dropped)))
	}

	return lipgloss.NewStyle().MarginLeft(1).Render(b.String())
}

// renderPathDialog renders the path entry dialog
func (m *FormModel) renderPathDialog() string {
	title := theme.CreateDialogTitleStyle(theme.ColorBrightCyan).Render(fmt.Sprintf("📎 %s", m.inputSlot.Label()))
	hint := theme.CreateHintStyle().Render("enter to attach • ctrl+o to browse • esc to cancel")

	content := lipgloss.JoinVertical(lipgloss.Left,
		title,
		theme.CreatePromptStyle().Render("Path to an .xlsx workbook:"),
		m.textInput.View(),
		"",
		hint,
	)
	return theme.CreateDialogStyle(tuiconfig.DialogLargeWidth, theme.ColorBrightCyan).Render(content)
}

// renderPickerDialog renders the file picker dialog
func (m *FormModel) renderPickerDialog() string {
	title := theme.CreateDialogTitleStyle(theme.ColorBrightCyan).Render(fmt.Sprintf("📂 %s", m.inputSlot.Label()))
	dir := theme.CreateHintStyle().Render(m.filePicker.CurrentDirectory)
	hint := theme.CreateHintStyle().Render("enter to choose • esc/← to go up • q to cancel")

	content := lipgloss.JoinVertical(lipgloss.Left, title, dir, "", m.filePicker.View(), "", hint)
	return theme.CreateDialogStyle(tuiconfig.FilePickerDialogWidth, theme.ColorBrightCyan).Render(content)
}

// renderHelpDialog renders the help dialog using bubbles components
func (m *FormModel) renderHelpDialog() string {
	title := theme.CreateDialogTitleStyle(theme.ColorBrightYellow).Render("🚀 TFB Validator - Help")
	instructions := theme.CreateHintStyle().Render("Press ? or esc to close help")

	content := lipgloss.JoinVertical(lipgloss.Left, title, m.helpViewport.View(), instructions)
	return theme.CreateDialogStyle(min(tuiconfig.DialogLargeWidth, m.windowWidth-10), theme.ColorBrightYellow).Render(content)
}

// renderFloatingDialog centers a dialog on the screen
func (m *FormModel) renderFloatingDialog(dialog string) string {
	return lipgloss.Place(
		m.windowWidth,
		m.windowHeight,
		lipgloss.Center,
		lipgloss.Center,
		dialog,
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color("#222222")),
	)
}

// expandPath resolves a leading ~ to the home directory
func expandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}

func dirExists(dir string) bool {
	if dir == "" {
		return false
	}
	info, err := os.Stat(dir)
	return err == nil && info.IsDir()
}

// truncatePath shortens a path from the left so its file name stays visible
func truncatePath(path string, limit int) string {
	runes := []rune(path)
	if len(runes) <= limit {
		return path
	}
	return "…" + string(runes[len(runes)-limit+1:])
}
