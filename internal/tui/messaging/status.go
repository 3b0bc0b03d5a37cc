package messaging

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"

	"github.com/HaiFongPan/tfbv-cli/internal/tui/theme"
	"github.com/HaiFongPan/tfbv-cli/internal/validator"
)

// MessageType represents different message types for status display
type MessageType int

// Message type constants
const (
	MessageInfo MessageType = iota
	MessageSuccess
	MessageWarning
	MessageError
)

// StatusManager holds the single status line shown under the form
type StatusManager interface {
	SetMessage(message string, msgType MessageType)
	SetError(err error)
	ClearMessage()
	GetMessage() (string, MessageType, bool)
	RenderMessage() string
	HasMessage() bool
	Age() time.Duration
}

// StatusManagerImpl implements the StatusManager interface
type StatusManagerImpl struct {
	statusMessage string
	messageType   MessageType
	messageTimer  time.Time
}

// NewStatusManager creates a new status manager instance
func NewStatusManager() StatusManager {
	return &StatusManagerImpl{
		messageType: MessageInfo,
	}
}

// SetMessage sets a status message with type
func (sm *StatusManagerImpl) SetMessage(message string, msgType MessageType) {
	sm.statusMessage = message
	sm.messageType = msgType
	sm.messageTimer = time.Now()

	logrus.Debugf("StatusManager: message='%s', type=%d", message, msgType)
}

// SetError shows err. A rejected attachment is a warning the user can fix
// by picking another file, anything else is an error.
func (sm *StatusManagerImpl) SetError(err error) {
	if err == nil {
		sm.ClearMessage()
		return
	}

	if errors.Is(err, validator.ErrInvalidFileType) {
		sm.SetMessage(validator.ErrInvalidFileType.Error(), MessageWarning)
		return
	}
	sm.SetMessage(err.Error(), MessageError)
}

// ClearMessage clears the status message
func (sm *StatusManagerImpl) ClearMessage() {
	sm.statusMessage = ""
	sm.messageTimer = time.Time{}
}

// GetMessage returns the current message, type, and whether a message exists
func (sm *StatusManagerImpl) GetMessage() (string, MessageType, bool) {
	return sm.statusMessage, sm.messageType, sm.statusMessage != ""
}

// HasMessage returns whether there is currently a status message
func (sm *StatusManagerImpl) HasMessage() bool {
	return sm.statusMessage != ""
}

// Age returns how long the current message has been shown
func (sm *StatusManagerImpl) Age() time.Duration {
	if sm.messageTimer.IsZero() {
		return 0
	}
	return time.Since(sm.messageTimer)
}

// RenderMessage renders the current status message with appropriate styling
func (sm *StatusManagerImpl) RenderMessage() string {
	if !sm.HasMessage() {
		return ""
	}

	messageStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(theme.GetMessageColor(int(sm.messageType)))).
		Bold(true)

	return messageStyle.Render(fmt.Sprintf("%s %s", theme.GetMessageIcon(int(sm.messageType)), sm.statusMessage))
}
