package form

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/HaiFongPan/tfbv-cli/internal/utils"
	"github.com/HaiFongPan/tfbv-cli/internal/validator"
)

// Uploader sends an attempt's files to the validation service
type Uploader interface {
	Upload(ctx context.Context, tool validator.Tool, files validator.FileSet, callback utils.ProgressCallback) *validator.Result
}

// Saver stores a successful result on disk
type Saver interface {
	Save(data []byte, filename string) (string, error)
}

// Archiver copies a successful result somewhere durable
type Archiver interface {
	Archive(ctx context.Context, tool, filename string, data []byte) (string, error)
}

// Presigner is implemented by archivers that can hand out download links
type Presigner interface {
	PresignURL(ctx context.Context, key string, expires time.Duration) (string, error)
}

// Attempt is the snapshot of the form taken when a submit begins
type Attempt struct {
	// ID correlates the log lines of one attempt
	ID      string
	Tool    validator.Tool
	Files   validator.FileSet
	Started time.Time
}

// Outcome is a completed attempt: the upload result plus what happened to
// the report afterwards. Save, preview and archive errors never turn a
// successful upload into a failed one.
type Outcome struct {
	Attempt    Attempt
	Result     *validator.Result
	SavedPath  string
	SaveErr    error
	Preview    string
	PreviewErr error
	ArchiveKey string
	ArchiveURL string
	ArchiveErr error
	Duration   time.Duration
}

// Succeeded reports whether the upload itself succeeded
func (o *Outcome) Succeeded() bool {
	return o != nil && o.Result != nil && o.Result.Success
}

// Runner performs the I/O of an attempt. It holds no form state and may run
// off the goroutine that owns the Controller.
type Runner struct {
	Uploader Uploader
	Saver    Saver
	Archiver Archiver
	Progress utils.ProgressCallback
	Decode   func(ctx context.Context, data []byte) (string, error)

	// LinkExpiry enables presigned links for archived reports when the
	// archiver supports them
	LinkExpiry time.Duration
}

// Run uploads the attempt and, on success, saves, decodes and optionally
// archives the report
func (r *Runner) Run(ctx context.Context, attempt Attempt) *Outcome {
	log := logrus.WithFields(logrus.Fields{"attempt": attempt.ID, "tool": attempt.Tool})

	outcome := &Outcome{Attempt: attempt}
	defer func() {
		outcome.Duration = time.Since(attempt.Started)
	}()

	outcome.Result = r.Uploader.Upload(ctx, attempt.Tool, attempt.Files, r.Progress)
	if outcome.Result == nil {
		outcome.Result = &validator.Result{
			Tool: attempt.Tool,
			Err:  &validator.UploadError{Operation: "upload", Tool: attempt.Tool},
		}
	}
	if !outcome.Result.Success {
		log.Warnf("Attempt failed: %s", outcome.Result.Message())
		return outcome
	}

	data := outcome.Result.Data
	filename := outcome.Result.Filename

	if r.Saver != nil {
		outcome.SavedPath, outcome.SaveErr = r.Saver.Save(data, filename)
		if outcome.SaveErr != nil {
			log.Errorf("Save %s: %v", filename, outcome.SaveErr)
		}
	}

	decode := r.Decode
	if decode == nil {
		decode = utils.DecodeAsText
	}
	outcome.Preview, outcome.PreviewErr = decode(ctx, data)
	if outcome.PreviewErr != nil {
		log.Warnf("Decode %s: %v", filename, outcome.PreviewErr)
	}

	if r.Archiver != nil {
		outcome.ArchiveKey, outcome.ArchiveErr = r.Archiver.Archive(ctx, string(attempt.Tool), filename, data)
		if outcome.ArchiveErr != nil {
			log.Errorf("Archive %s: %v", filename, outcome.ArchiveErr)
		} else {
			outcome.ArchiveURL = r.presign(ctx, outcome.ArchiveKey)
		}
	}

	return outcome
}

func (r *Runner) presign(ctx context.Context, key string) string {
	presigner, ok := r.Archiver.(Presigner)
	if !ok || r.LinkExpiry <= 0 || key == "" {
		return ""
	}

	url, err := presigner.PresignURL(ctx, key, r.LinkExpiry)
	if err != nil {
		logrus.Warnf("Presign %s: %v", key, err)
		return ""
	}
	return url
}
