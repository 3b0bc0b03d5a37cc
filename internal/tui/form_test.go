package tui

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/HaiFongPan/tfbv-cli/internal/config"
	"github.com/HaiFongPan/tfbv-cli/internal/form"
	"github.com/HaiFongPan/tfbv-cli/internal/tui/messaging"
	"github.com/HaiFongPan/tfbv-cli/internal/utils"
	"github.com/HaiFongPan/tfbv-cli/internal/validator"
)

// MockUploader stands in for the validation service
type MockUploader struct {
	mock.Mock
}

func (m *MockUploader) Upload(ctx context.Context, tool validator.Tool, files validator.FileSet, callback utils.ProgressCallback) *validator.Result {
	args := m.Called(ctx, tool, files, callback)
	return args.Get(0).(*validator.Result)
}

// uploaderFunc adapts a function to form.Uploader
type uploaderFunc func(ctx context.Context, tool validator.Tool, files validator.FileSet) *validator.Result

func (f uploaderFunc) Upload(ctx context.Context, tool validator.Tool, files validator.FileSet, _ utils.ProgressCallback) *validator.Result {
	return f(ctx, tool, files)
}

type testForm struct {
	*FormModel
	downloadDir string
	userData    *config.UserData
	copied      []string
}

func newTestForm(t *testing.T, uploader form.Uploader) *testForm {
	t.Helper()

	downloadDir := t.TempDir()
	userData, err := config.LoadUserDataFrom(filepath.Join(t.TempDir(), "user.data"))
	require.NoError(t, err)

	cfg := &config.Config{
		Server:  config.ServerConfig{BaseURL: "http://localhost:8080"},
		General: config.GeneralConfig{DefaultTimeout: 5},
		UI:      config.UIConfig{PreviewMaxLines: 100},
	}
	runner := &form.Runner{
		Uploader: uploader,
		Saver:    utils.NewFileSaver(downloadDir, false),
	}

	tf := &testForm{downloadDir: downloadDir, userData: userData}
	tf.FormModel = NewFormModel(cfg, runner, userData)
	tf.copyText = func(s string) error {
		tf.copied = append(tf.copied, s)
		return nil
	}
	tf.Init()
	tf.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return tf
}

func writeWorkbook(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("PK\x03\x04 workbook"), 0644))
	return path
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func (tf *testForm) press(msg tea.KeyMsg) tea.Cmd {
	_, cmd := tf.Update(msg)
	return cmd
}

// collect runs cmd and every command batched inside it, returning the messages
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var msgs []tea.Msg
		for _, c := range batch {
			msgs = append(msgs, collect(c)...)
		}
		return msgs
	}
	return []tea.Msg{msg}
}

func findCompleted(t *testing.T, cmd tea.Cmd) attemptCompletedMsg {
	t.Helper()
	for _, msg := range collect(cmd) {
		if done, ok := msg.(attemptCompletedMsg); ok {
			return done
		}
	}
	require.FailNow(t, "expected attemptCompletedMsg")
	return attemptCompletedMsg{}
}

func (tf *testForm) statusMessage() (string, messaging.MessageType) {
	msg, typ, _ := tf.status.GetMessage()
	return msg, typ
}

// attachAll selects tool and attaches a workbook to each of its slots
func (tf *testForm) attachAll(t *testing.T, tool validator.Tool) validator.FileSet {
	t.Helper()
	tf.Update(toolSelectedMsg{tool: tool})

	dir := t.TempDir()
	files := validator.FileSet{}
	for _, slot := range tool.RequiredSlots() {
		path := writeWorkbook(t, dir, string(slot)+".xlsx")
		tf.attach(slot, path)
		files[slot] = path
	}
	require.True(t, tf.controller.CanSubmit())
	return files
}

func successResult(tool validator.Tool, body, filename string) *validator.Result {
	return &validator.Result{
		Success:    true,
		Tool:       tool,
		Data:       []byte(body),
		Filename:   filename,
		StatusCode: 200,
	}
}

func TestForm_SelectToolThroughSelector(t *testing.T) {
	tf := newTestForm(t, &MockUploader{})

	require.Equal(t, 0, tf.cursor)
	tf.press(tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, InputModeTool, tf.inputMode)
	require.NotNil(t, tf.selector)

	tf.press(tea.KeyMsg{Type: tea.KeyDown})
	cmd := tf.press(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	tf.Update(cmd())

	assert.Equal(t, InputModeNone, tf.inputMode)
	assert.Nil(t, tf.selector)
	assert.Equal(t, validator.ToolNPI, tf.controller.Tool())
	// tool row, three slots, send
	assert.Len(t, tf.rows(), 5)
	assert.Equal(t, 1, tf.cursor)
}

func TestForm_SelectorCancelKeepsTool(t *testing.T) {
	tf := newTestForm(t, &MockUploader{})
	tf.Update(toolSelectedMsg{tool: validator.ToolTPA})
	tf.cursor = 0

	tf.press(tea.KeyMsg{Type: tea.KeyEnter})
	cmd := tf.press(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	tf.Update(cmd())

	assert.Equal(t, InputModeNone, tf.inputMode)
	assert.Equal(t, validator.ToolTPA, tf.controller.Tool())
}

func TestForm_SelectorStartsOnLastTool(t *testing.T) {
	tf := newTestForm(t, &MockUploader{})
	tf.userData.LastTool = string(validator.ToolNDC)

	tf.press(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, tf.selector)

	assert.Equal(t, validator.ToolNDC, tf.selector.Highlighted())
	// remembering a tool never selects it
	assert.Equal(t, validator.ToolNone, tf.controller.Tool())
}

func TestForm_SwitchingToolClearsFiles(t *testing.T) {
	tf := newTestForm(t, &MockUploader{})
	tf.attachAll(t, validator.ToolNPI)

	tf.Update(toolSelectedMsg{tool: validator.ToolTPA})

	assert.Empty(t, tf.controller.Files())
	assert.False(t, tf.controller.CanSubmit())
}

func TestForm_AttachThroughPathInput(t *testing.T) {
	tf := newTestForm(t, &MockUploader{})
	tf.Update(toolSelectedMsg{tool: validator.ToolTPA})
	path := writeWorkbook(t, t.TempDir(), "test.xlsx")

	require.Equal(t, 1, tf.cursor)
	tf.press(tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, InputModePath, tf.inputMode)
	assert.Equal(t, validator.SlotTest, tf.inputSlot)

	tf.textInput.SetValue(path)
	tf.press(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, InputModeNone, tf.inputMode)
	assert.Equal(t, path, tf.controller.File(validator.SlotTest))
	assert.Equal(t, 2, tf.cursor, "cursor should move to the next slot")
	assert.Equal(t, filepath.Dir(path), tf.userData.LastDir)

	msg, typ := tf.statusMessage()
	assert.Contains(t, msg, "test.xlsx")
	assert.Equal(t, messaging.MessageInfo, typ)
}

func TestForm_AttachShowsWorkbookSummary(t *testing.T) {
	tf := newTestForm(t, &MockUploader{})
	tf.Update(toolSelectedMsg{tool: validator.ToolTPA})

	path := filepath.Join(t.TempDir(), "db.xlsx")
	f := excelize.NewFile()
	require.NoError(t, f.SetCellValue("Sheet1", "A1", "id"))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	tf.attach(validator.SlotDB, path)

	msg, _ := tf.statusMessage()
	assert.Contains(t, msg, "1 sheet, 1 row")
	assert.Contains(t, tf.View(), "1 sheet, 1 row")

	// a note for a replaced file is not shown
	other := writeWorkbook(t, t.TempDir(), "other.xlsx")
	tf.attach(validator.SlotDB, other)
	assert.NotContains(t, tf.View(), "1 sheet, 1 row")
}

func TestForm_PathInputEscapeCancels(t *testing.T) {
	tf := newTestForm(t, &MockUploader{})
	tf.Update(toolSelectedMsg{tool: validator.ToolTPA})

	tf.press(tea.KeyMsg{Type: tea.KeyEnter})
	tf.textInput.SetValue("/somewhere/file.xlsx")
	tf.press(tea.KeyMsg{Type: tea.KeyEsc})

	assert.Equal(t, InputModeNone, tf.inputMode)
	assert.Empty(t, tf.controller.File(validator.SlotTest))
}

func TestForm_AttachRejectsInvalidFiles(t *testing.T) {
	dir := t.TempDir()
	valid := writeWorkbook(t, dir, "good.xlsx")
	csv := writeWorkbook(t, dir, "data.csv")
	upper := writeWorkbook(t, dir, "REPORT.XLSX")
	folder := filepath.Join(dir, "folder.xlsx")
	require.NoError(t, os.Mkdir(folder, 0755))

	tests := []struct {
		name     string
		path     string
		wantType messaging.MessageType
		wantText string
	}{
		{"csv file", csv, messaging.MessageWarning, validator.ErrInvalidFileType.Error()},
		{"uppercase suffix", upper, messaging.MessageWarning, validator.ErrInvalidFileType.Error()},
		{"missing file", filepath.Join(dir, "nope.xlsx"), messaging.MessageError, "File not found"},
		{"missing csv is a type error", filepath.Join(dir, "notes.csv"), messaging.MessageWarning, validator.ErrInvalidFileType.Error()},
		{"directory", folder, messaging.MessageError, "is a directory"},
		{"empty path", "", messaging.MessageWarning, "No file path entered"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tf := newTestForm(t, &MockUploader{})
			tf.Update(toolSelectedMsg{tool: validator.ToolTPA})
			tf.attach(validator.SlotTest, valid)
			require.Equal(t, valid, tf.controller.File(validator.SlotTest))

			tf.attach(validator.SlotTest, tt.path)

			msg, typ := tf.statusMessage()
			assert.Contains(t, msg, tt.wantText)
			assert.Equal(t, tt.wantType, typ)
			if tt.wantType == messaging.MessageWarning && tt.path != "" {
				// a rejected pick empties the slot
				assert.Empty(t, tf.controller.File(validator.SlotTest))
			} else {
				assert.Equal(t, valid, tf.controller.File(validator.SlotTest))
			}
		})
	}
}

func TestForm_ClearFile(t *testing.T) {
	tf := newTestForm(t, &MockUploader{})
	tf.attachAll(t, validator.ToolTPA)

	tf.cursor = 1
	tf.press(keyRunes("x"))

	assert.Empty(t, tf.controller.File(validator.SlotTest))
	assert.False(t, tf.controller.CanSubmit())
}

func TestForm_SendDisabledUntilComplete(t *testing.T) {
	uploader := &MockUploader{}
	tf := newTestForm(t, uploader)
	tf.Update(toolSelectedMsg{tool: validator.ToolNPI})
	dir := t.TempDir()
	tf.attach(validator.SlotTest, writeWorkbook(t, dir, "a.xlsx"))
	tf.attach(validator.SlotDB, writeWorkbook(t, dir, "b.xlsx"))

	cmd := tf.press(keyRunes("s"))

	assert.Nil(t, cmd)
	assert.False(t, tf.controller.Submitting())
	msg, typ := tf.statusMessage()
	assert.Equal(t, "Select a validation type and attach every required file", msg)
	assert.Equal(t, messaging.MessageWarning, typ)
	uploader.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestForm_SubmitSuccess(t *testing.T) {
	uploader := &MockUploader{}
	tf := newTestForm(t, uploader)
	files := tf.attachAll(t, validator.ToolTPA)

	uploader.On("Upload", mock.Anything, validator.ToolTPA, files, mock.Anything).
		Return(successResult(validator.ToolTPA, "row 1 ok\nrow 2 ok", "TPAResults.txt")).Once()

	cmd := tf.press(keyRunes("s"))
	require.NotNil(t, cmd)
	assert.True(t, tf.controller.Submitting())
	assert.Contains(t, tf.View(), "Sending...")

	tf.Update(findCompleted(t, cmd))

	assert.False(t, tf.controller.Submitting())
	assert.Equal(t, form.StatusSucceeded, tf.controller.Status())
	assert.Empty(t, tf.controller.Files(), "success clears the attachments")

	saved := filepath.Join(tf.downloadDir, "TPAResults.txt")
	data, err := os.ReadFile(saved)
	require.NoError(t, err)
	assert.Equal(t, "row 1 ok\nrow 2 ok", string(data))

	msg, typ := tf.statusMessage()
	assert.Contains(t, msg, "File sent successfully!")
	assert.Contains(t, msg, saved)
	assert.Equal(t, messaging.MessageSuccess, typ)
	assert.Equal(t, string(validator.ToolTPA), tf.userData.LastTool)

	view := tf.View()
	assert.Contains(t, view, "TPAResults.txt")
	assert.Contains(t, view, "row 2 ok")
	uploader.AssertExpectations(t)
}

func TestForm_SubmitFailureRetainsFiles(t *testing.T) {
	uploader := &MockUploader{}
	tf := newTestForm(t, uploader)
	files := tf.attachAll(t, validator.ToolNDC)

	failed := &validator.Result{
		Tool:       validator.ToolNDC,
		StatusCode: 500,
		Err: &validator.UploadError{
			Operation:  "validate",
			Tool:       validator.ToolNDC,
			StatusCode: 500,
			Err:        errors.New("server returned 500 Internal Server Error"),
		},
	}
	uploader.On("Upload", mock.Anything, validator.ToolNDC, files, mock.Anything).Return(failed).Once()

	cmd := tf.press(keyRunes("s"))
	tf.Update(findCompleted(t, cmd))

	assert.False(t, tf.controller.Submitting())
	assert.Equal(t, form.StatusFailed, tf.controller.Status())
	assert.Equal(t, files, tf.controller.Files())
	assert.True(t, tf.controller.CanSubmit())

	msg, typ := tf.statusMessage()
	assert.Contains(t, msg, "500 Internal Server Error")
	assert.Equal(t, messaging.MessageError, typ)
	assert.Empty(t, tf.userData.LastTool)

	entries, err := os.ReadDir(tf.downloadDir)
	require.NoError(t, err)
	assert.Empty(t, entries, "nothing is saved for a failed upload")
}

func TestForm_DoubleSubmitIsIgnored(t *testing.T) {
	uploader := &MockUploader{}
	tf := newTestForm(t, uploader)
	files := tf.attachAll(t, validator.ToolTPA)
	uploader.On("Upload", mock.Anything, validator.ToolTPA, files, mock.Anything).
		Return(successResult(validator.ToolTPA, "ok", "TPAResults.txt")).Once()

	first := tf.press(keyRunes("s"))
	require.NotNil(t, first)

	second := tf.press(keyRunes("s"))
	assert.Nil(t, second)
	msg, _ := tf.statusMessage()
	assert.Equal(t, "Upload already in progress", msg)

	tf.Update(findCompleted(t, first))
	uploader.AssertNumberOfCalls(t, "Upload", 1)
}

func TestForm_EditingBlockedWhileSubmitting(t *testing.T) {
	uploader := &MockUploader{}
	tf := newTestForm(t, uploader)
	files := tf.attachAll(t, validator.ToolTPA)
	uploader.On("Upload", mock.Anything, validator.ToolTPA, files, mock.Anything).
		Return(successResult(validator.ToolTPA, "ok", "TPAResults.txt"))

	cmd := tf.press(keyRunes("s"))
	require.NotNil(t, cmd)

	tf.cursor = 1
	tf.press(keyRunes("x"))
	assert.Equal(t, files[validator.SlotTest], tf.controller.File(validator.SlotTest))

	tf.press(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, InputModeNone, tf.inputMode)

	tf.Update(findCompleted(t, cmd))
}

func TestForm_CancelInFlight(t *testing.T) {
	started := make(chan struct{})
	uploader := uploaderFunc(func(ctx context.Context, tool validator.Tool, _ validator.FileSet) *validator.Result {
		close(started)
		<-ctx.Done()
		return &validator.Result{
			Tool: tool,
			Err:  &validator.UploadError{Operation: "send request", Tool: tool, Err: ctx.Err()},
		}
	})
	tf := newTestForm(t, uploader)
	files := tf.attachAll(t, validator.ToolTPA)

	cmd := tf.press(keyRunes("s"))
	require.NotNil(t, cmd)

	done := make(chan attemptCompletedMsg)
	go func() { done <- findCompleted(t, cmd) }()
	<-started

	tf.press(tea.KeyMsg{Type: tea.KeyEsc})
	tf.Update(<-done)

	assert.False(t, tf.controller.Submitting())
	assert.Equal(t, files, tf.controller.Files())
	msg, typ := tf.statusMessage()
	assert.Equal(t, "Upload cancelled", msg)
	assert.Equal(t, messaging.MessageWarning, typ)
}

func TestForm_QuitBlockedWhileSubmitting(t *testing.T) {
	uploader := &MockUploader{}
	tf := newTestForm(t, uploader)
	files := tf.attachAll(t, validator.ToolTPA)
	uploader.On("Upload", mock.Anything, validator.ToolTPA, files, mock.Anything).
		Return(successResult(validator.ToolTPA, "ok", "TPAResults.txt"))

	submit := tf.press(keyRunes("s"))
	cmd := tf.press(keyRunes("q"))
	assert.Nil(t, cmd)
	msg, _ := tf.statusMessage()
	assert.Contains(t, msg, "Upload in progress")

	tf.Update(findCompleted(t, submit))
	cmd = tf.press(keyRunes("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestForm_ProgressUpdates(t *testing.T) {
	tf := newTestForm(t, &MockUploader{})

	tf.Update(uploadProgressMsg{uploaded: 50, total: 100, percent: 50})

	assert.Equal(t, 50.0, tf.uploadPercent)
}

func TestForm_PreviewAndCopy(t *testing.T) {
	uploader := &MockUploader{}
	tf := newTestForm(t, uploader)

	tf.press(keyRunes("p"))
	assert.Equal(t, InputModeNone, tf.inputMode)
	msg, _ := tf.statusMessage()
	assert.Equal(t, "No report to preview", msg)

	files := tf.attachAll(t, validator.ToolTPA)
	uploader.On("Upload", mock.Anything, validator.ToolTPA, files, mock.Anything).
		Return(successResult(validator.ToolTPA, "line one\nline two", "TPAResults.txt")).Once()
	tf.Update(findCompleted(t, tf.press(keyRunes("s"))))

	tf.press(keyRunes("c"))
	assert.Equal(t, []string{"line one\nline two"}, tf.copied)

	tf.press(keyRunes("p"))
	require.Equal(t, InputModePreview, tf.inputMode)
	view := tf.View()
	assert.Contains(t, view, "TPAResults.txt")
	assert.Contains(t, view, "line two")

	// copy from inside the preview uses the same clipboard hook
	tf.press(keyRunes("c"))
	assert.Len(t, tf.copied, 2)

	cmd := tf.press(keyRunes("q"))
	require.NotNil(t, cmd)
	tf.Update(cmd())
	assert.Equal(t, InputModeNone, tf.inputMode)
	assert.Nil(t, tf.preview)
}

func TestForm_CopyFailure(t *testing.T) {
	tf := newTestForm(t, &MockUploader{})
	tf.controller.Finish(&form.Outcome{
		Result:  successResult(validator.ToolTPA, "report", "TPAResults.txt"),
		Preview: "report",
	})
	tf.copyText = func(string) error { return errors.New("no clipboard") }

	tf.press(keyRunes("c"))

	msg, typ := tf.statusMessage()
	assert.Contains(t, msg, "no clipboard")
	assert.Equal(t, messaging.MessageError, typ)
}

func TestForm_HelpToggle(t *testing.T) {
	tf := newTestForm(t, &MockUploader{})

	tf.press(keyRunes("?"))
	assert.True(t, tf.showHelp)
	assert.Contains(t, tf.View(), "Help")

	// q closes help instead of quitting
	cmd := tf.press(keyRunes("q"))
	assert.Nil(t, cmd)
	assert.False(t, tf.showHelp)
}

func TestForm_ViewShowsSlots(t *testing.T) {
	tf := newTestForm(t, &MockUploader{})
	tf.Update(toolSelectedMsg{tool: validator.ToolNPI})

	view := tf.View()
	assert.Contains(t, view, "http://localhost:8080")
	assert.Contains(t, view, "NPI Validation")
	assert.Contains(t, view, "Covered Entity File")
	assert.Contains(t, view, "(no file chosen)")
}

func TestTruncatePath(t *testing.T) {
	assert.Equal(t, "/a/b.xlsx", truncatePath("/a/b.xlsx", 20))

	long := "/very/long/directory/name/report.xlsx"
	short := truncatePath(long, 15)
	assert.Len(t, []rune(short), 15)
	assert.True(t, len(short) > 0 && short[len(short)-5:] == ".xlsx")
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "x.xlsx"), expandPath("~/x.xlsx"))
	assert.Equal(t, "/abs/x.xlsx", expandPath("/abs/x.xlsx"))
}
