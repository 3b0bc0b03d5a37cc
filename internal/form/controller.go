// Package form holds the state of the validation form and the rules that
// decide when it can be submitted.
package form

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/HaiFongPan/tfbv-cli/internal/validator"
)

var (
	// ErrNoTool is returned when a file is attached before a tool is chosen
	ErrNoTool = errors.New("choose a tool first")
	// ErrSlotNotApplicable is returned for a slot the selected tool does not use
	ErrSlotNotApplicable = errors.New("file is not used by the selected tool")
)

// Status is the state of the current attempt
type Status int

const (
	StatusIdle Status = iota
	StatusSubmitting
	StatusSucceeded
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusSubmitting:
		return "submitting"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	default:
		return "idle"
	}
}

// Controller owns the form state. It is not safe for concurrent use; the
// owner applies every event on one goroutine.
type Controller struct {
	tool       validator.Tool
	files      validator.FileSet
	submitting bool
	outcome    *Outcome
}

// New creates an empty form with no tool selected
func New() *Controller {
	return &Controller{files: make(validator.FileSet)}
}

// SelectTool changes the selected tool and clears every attached file
func (c *Controller) SelectTool(tool validator.Tool) error {
	if tool != validator.ToolNone && !tool.Valid() {
		return fmt.Errorf("invalid validation type: %q", tool)
	}

	c.tool = tool
	c.clearFiles()
	logrus.Debugf("Form: selected tool %q", tool)
	return nil
}

// AttachFile stores path in slot if it names an .xlsx file. A rejected file
// also clears whatever the slot held before.
func (c *Controller) AttachFile(slot validator.Slot, path string) error {
	if c.tool == validator.ToolNone {
		return ErrNoTool
	}
	if !c.tool.HasSlot(slot) {
		return fmt.Errorf("%s: %w", slot.Label(), ErrSlotNotApplicable)
	}

	if err := validator.CheckFileType(path); err != nil {
		delete(c.files, slot)
		logrus.Warnf("Form: rejected %s for %s", path, slot)
		return err
	}

	c.files[slot] = path
	logrus.Debugf("Form: attached %s as %s", path, slot)
	return nil
}

// DetachFile clears one slot
func (c *Controller) DetachFile(slot validator.Slot) {
	delete(c.files, slot)
}

// CanSubmit reports whether a submit would start an attempt: a tool is
// selected, nothing is in flight and every required file is attached
func (c *Controller) CanSubmit() bool {
	if c.submitting || !c.tool.Valid() {
		return false
	}
	for _, slot := range c.tool.RequiredSlots() {
		if c.files[slot] == "" {
			return false
		}
	}
	return true
}

// Begin starts an attempt. It returns false and changes nothing when the
// form cannot be submitted.
func (c *Controller) Begin() (Attempt, bool) {
	if !c.CanSubmit() {
		return Attempt{}, false
	}

	c.submitting = true
	c.outcome = nil

	return Attempt{
		ID:      uuid.New().String(),
		Tool:    c.tool,
		Files:   c.files.Clone(),
		Started: time.Now(),
	}, true
}

// Finish applies a completed attempt. Files are cleared only when the upload
// succeeded. The in-flight flag is cleared last.
func (c *Controller) Finish(outcome *Outcome) {
	defer func() {
		c.submitting = false
	}()

	c.outcome = outcome
	if outcome.Succeeded() {
		c.clearFiles()
	}
}

// Submit runs a whole attempt synchronously. It returns false without doing
// anything when the form cannot be submitted.
func (c *Controller) Submit(ctx context.Context, runner *Runner) (*Outcome, bool) {
	attempt, ok := c.Begin()
	if !ok {
		return nil, false
	}

	outcome := runner.Run(ctx, attempt)
	c.Finish(outcome)
	return outcome, true
}

// Tool returns the selected tool
func (c *Controller) Tool() validator.Tool {
	return c.tool
}

// File returns the path attached to slot, or ""
func (c *Controller) File(slot validator.Slot) string {
	return c.files[slot]
}

// Files returns a copy of the attached files
func (c *Controller) Files() validator.FileSet {
	return c.files.Clone()
}

// Submitting reports whether an attempt is in flight
func (c *Controller) Submitting() bool {
	return c.submitting
}

// Outcome returns the last completed attempt, nil while one is in flight
func (c *Controller) Outcome() *Outcome {
	return c.outcome
}

// Result returns the last upload result
func (c *Controller) Result() *validator.Result {
	if c.outcome == nil {
		return nil
	}
	return c.outcome.Result
}

// Preview returns the decoded text of the last successful result
func (c *Controller) Preview() string {
	if c.outcome == nil {
		return ""
	}
	return c.outcome.Preview
}

// Status returns the state of the current or last attempt
func (c *Controller) Status() Status {
	switch {
	case c.submitting:
		return StatusSubmitting
	case c.outcome == nil:
		return StatusIdle
	case c.outcome.Succeeded():
		return StatusSucceeded
	default:
		return StatusFailed
	}
}

func (c *Controller) clearFiles() {
	c.files = make(validator.FileSet)
}
