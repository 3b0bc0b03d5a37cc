package form

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/HaiFongPan/tfbv-cli/internal/utils"
	"github.com/HaiFongPan/tfbv-cli/internal/validator"
)

type mockUploader struct {
	mock.Mock
}

func (m *mockUploader) Upload(ctx context.Context, tool validator.Tool, files validator.FileSet, callback utils.ProgressCallback) *validator.Result {
	args := m.Called(ctx, tool, files, callback)
	return args.Get(0).(*validator.Result)
}

type mockSaver struct {
	mock.Mock
}

func (m *mockSaver) Save(data []byte, filename string) (string, error) {
	args := m.Called(data, filename)
	return args.String(0), args.Error(1)
}

func fill(t *testing.T, c *Controller, tool validator.Tool) {
	t.Helper()
	require.NoError(t, c.SelectTool(tool))
	for _, slot := range tool.RequiredSlots() {
		require.NoError(t, c.AttachFile(slot, "/data/"+string(slot)+".xlsx"))
	}
}

func TestCanSubmitRequiresEverySlot(t *testing.T) {
	for _, info := range validator.Tools() {
		t.Run(string(info.ID), func(t *testing.T) {
			c := New()
			assert.False(t, c.CanSubmit(), "no tool selected")

			require.NoError(t, c.SelectTool(info.ID))
			for i, slot := range info.Slots {
				assert.False(t, c.CanSubmit(), "after %d of %d files", i, len(info.Slots))
				require.NoError(t, c.AttachFile(slot, "/data/file.xlsx"))
			}
			assert.True(t, c.CanSubmit())
		})
	}
}

func TestNPIWithoutCoveredEntityCannotSubmit(t *testing.T) {
	c := New()
	require.NoError(t, c.SelectTool(validator.ToolNPI))
	require.NoError(t, c.AttachFile(validator.SlotTest, "test.xlsx"))
	require.NoError(t, c.AttachFile(validator.SlotDB, "db.xlsx"))

	assert.False(t, c.CanSubmit())
}

func TestSelectToolClearsFiles(t *testing.T) {
	c := New()
	fill(t, c, validator.ToolNPI)
	require.Len(t, c.Files(), 3)

	require.NoError(t, c.SelectTool(validator.ToolTPA))
	assert.Empty(t, c.Files())
	assert.False(t, c.CanSubmit())

	fill(t, c, validator.ToolTPA)
	require.NoError(t, c.SelectTool(validator.ToolTPA))
	assert.Empty(t, c.Files(), "reselecting the same tool also clears")
}

func TestSelectUnknownTool(t *testing.T) {
	c := New()
	fill(t, c, validator.ToolTPA)

	err := c.SelectTool("bogus")
	require.Error(t, err)
	assert.Equal(t, validator.ToolTPA, c.Tool())
	assert.Len(t, c.Files(), 2)

	require.NoError(t, c.SelectTool(validator.ToolNone))
	assert.Equal(t, validator.ToolNone, c.Tool())
	assert.False(t, c.CanSubmit())
}

func TestAttachFileRejectsNonSpreadsheets(t *testing.T) {
	tests := []struct {
		name string
		path string
		ok   bool
	}{
		{"xlsx", "/tmp/report.xlsx", true},
		{"upper case extension", "/tmp/report.XLSX", false},
		{"legacy excel", "/tmp/report.xls", false},
		{"csv", "/tmp/report.csv", false},
		{"suffix only in directory", "/tmp/a.xlsx/report.txt", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New()
			require.NoError(t, c.SelectTool(validator.ToolTPA))

			err := c.AttachFile(validator.SlotTest, tt.path)
			if tt.ok {
				require.NoError(t, err)
				assert.Equal(t, tt.path, c.File(validator.SlotTest))
				return
			}

			require.Error(t, err)
			assert.True(t, errors.Is(err, validator.ErrInvalidFileType))
			var typeErr *validator.InvalidFileTypeError
			require.ErrorAs(t, err, &typeErr)
			assert.Equal(t, tt.path, typeErr.Path)
			assert.Empty(t, c.File(validator.SlotTest))
		})
	}
}

func TestAttachInvalidFileClearsSlot(t *testing.T) {
	c := New()
	require.NoError(t, c.SelectTool(validator.ToolTPA))
	require.NoError(t, c.AttachFile(validator.SlotTest, "good.xlsx"))

	err := c.AttachFile(validator.SlotTest, "bad.pdf")
	require.ErrorIs(t, err, validator.ErrInvalidFileType)
	assert.Empty(t, c.File(validator.SlotTest))
}

func TestAttachFileNeedsToolAndSlot(t *testing.T) {
	c := New()
	assert.ErrorIs(t, c.AttachFile(validator.SlotTest, "a.xlsx"), ErrNoTool)

	require.NoError(t, c.SelectTool(validator.ToolTPA))
	assert.ErrorIs(t, c.AttachFile(validator.SlotCoveredEntity, "c.xlsx"), ErrSlotNotApplicable)
	assert.Empty(t, c.Files())
}

func TestDetachFile(t *testing.T) {
	c := New()
	fill(t, c, validator.ToolTPA)
	require.True(t, c.CanSubmit())

	c.DetachFile(validator.SlotDB)
	assert.False(t, c.CanSubmit())
	assert.Empty(t, c.File(validator.SlotDB))
}

func TestBeginIsExclusive(t *testing.T) {
	c := New()
	fill(t, c, validator.ToolTPA)

	attempt, ok := c.Begin()
	require.True(t, ok)
	assert.Equal(t, validator.ToolTPA, attempt.Tool)
	assert.Len(t, attempt.Files, 2)
	assert.True(t, c.Submitting())
	assert.Equal(t, StatusSubmitting, c.Status())
	assert.False(t, c.CanSubmit())

	_, ok = c.Begin()
	assert.False(t, ok, "second begin while in flight")

	runner := &Runner{Uploader: &mockUploader{}}
	outcome, ok := c.Submit(context.Background(), runner)
	assert.False(t, ok)
	assert.Nil(t, outcome)
}

func TestAttemptIsSnapshot(t *testing.T) {
	c := New()
	fill(t, c, validator.ToolTPA)

	attempt, ok := c.Begin()
	require.True(t, ok)
	c.DetachFile(validator.SlotTest)
	assert.Equal(t, "/data/testFile.xlsx", attempt.Files[validator.SlotTest])
}

func TestAttemptIDsAreUnique(t *testing.T) {
	c := New()
	fill(t, c, validator.ToolTPA)

	first, ok := c.Begin()
	require.True(t, ok)
	c.Finish(&Outcome{Attempt: first, Result: &validator.Result{Tool: validator.ToolTPA}})

	second, ok := c.Begin()
	require.True(t, ok)

	assert.NotEmpty(t, first.ID)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestSubmitSuccess(t *testing.T) {
	c := New()
	fill(t, c, validator.ToolTPA)

	uploader := &mockUploader{}
	uploader.On("Upload", mock.Anything, validator.ToolTPA, mock.AnythingOfType("validator.FileSet"), mock.Anything).
		Return(&validator.Result{Success: true, Tool: validator.ToolTPA, Data: []byte("all rows valid\n"), Filename: "TPAResults.txt", StatusCode: 200})
	saver := &mockSaver{}
	saver.On("Save", []byte("all rows valid\n"), "TPAResults.txt").Return("/downloads/TPAResults.txt", nil)

	outcome, ok := c.Submit(context.Background(), &Runner{Uploader: uploader, Saver: saver})
	require.True(t, ok)

	assert.True(t, outcome.Succeeded())
	assert.Equal(t, "/downloads/TPAResults.txt", outcome.SavedPath)
	assert.Equal(t, "all rows valid\n", c.Preview())
	assert.Equal(t, "File sent successfully!", c.Result().Message())
	assert.Equal(t, StatusSucceeded, c.Status())
	assert.False(t, c.Submitting())
	assert.Empty(t, c.Files(), "success clears attachments")
	assert.Equal(t, validator.ToolTPA, c.Tool())

	uploader.AssertExpectations(t)
	saver.AssertExpectations(t)
}

func TestSubmitFailureRetainsFiles(t *testing.T) {
	c := New()
	fill(t, c, validator.ToolNPI)

	uploader := &mockUploader{}
	uploader.On("Upload", mock.Anything, validator.ToolNPI, mock.Anything, mock.Anything).
		Return(&validator.Result{
			Tool:       validator.ToolNPI,
			StatusCode: 500,
			Err:        &validator.UploadError{Operation: "upload", Tool: validator.ToolNPI, StatusCode: 500, Err: errors.New("server returned 500 Internal Server Error")},
		})
	saver := &mockSaver{}

	outcome, ok := c.Submit(context.Background(), &Runner{Uploader: uploader, Saver: saver})
	require.True(t, ok)

	assert.False(t, outcome.Succeeded())
	assert.Equal(t, StatusFailed, c.Status())
	assert.False(t, c.Submitting())
	assert.Len(t, c.Files(), 3)
	assert.True(t, c.CanSubmit(), "form is submittable again")
	assert.ErrorIs(t, c.Result().AsError(), validator.ErrUploadFailed)
	assert.Contains(t, c.Result().Message(), "500")
	assert.Empty(t, c.Preview())
	saver.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestSubmitRejectedWhenIncomplete(t *testing.T) {
	c := New()
	require.NoError(t, c.SelectTool(validator.ToolTPA))
	require.NoError(t, c.AttachFile(validator.SlotTest, "a.xlsx"))

	uploader := &mockUploader{}
	_, ok := c.Submit(context.Background(), &Runner{Uploader: uploader})
	assert.False(t, ok)
	assert.Equal(t, StatusIdle, c.Status())
	uploader.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestBeginClearsPreviousOutcome(t *testing.T) {
	c := New()
	fill(t, c, validator.ToolTPA)

	attempt, ok := c.Begin()
	require.True(t, ok)
	c.Finish(&Outcome{Attempt: attempt, Result: &validator.Result{Err: &validator.UploadError{Operation: "upload"}}})
	require.NotNil(t, c.Result())

	_, ok = c.Begin()
	require.True(t, ok)
	assert.Nil(t, c.Result())
	assert.Nil(t, c.Outcome())
}

func TestFinishNilOutcome(t *testing.T) {
	c := New()
	fill(t, c, validator.ToolTPA)

	_, ok := c.Begin()
	require.True(t, ok)
	c.Finish(nil)

	assert.False(t, c.Submitting())
	assert.Len(t, c.Files(), 2)
}
