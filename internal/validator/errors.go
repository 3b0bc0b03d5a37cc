package validator

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidFileType is matched by errors for attachments that are not .xlsx files
	ErrInvalidFileType = errors.New("please upload a valid .xlsx file")
	// ErrUploadFailed is matched by every upload failure
	ErrUploadFailed = errors.New("file upload failed")
)

// InvalidFileTypeError reports an attachment whose name does not end in .xlsx
type InvalidFileTypeError struct {
	Path string
}

func (e *InvalidFileTypeError) Error() string {
	return fmt.Sprintf("%s: %s", ErrInvalidFileType.Error(), e.Path)
}

func (e *InvalidFileTypeError) Is(target error) bool {
	return target == ErrInvalidFileType
}

// UploadError wraps upload related errors
type UploadError struct {
	Operation  string
	Tool       Tool
	StatusCode int
	Err        error
}

func (e *UploadError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", ErrUploadFailed.Error(), e.Operation)
	}
	return fmt.Sprintf("%s: %s: %v", ErrUploadFailed.Error(), e.Operation, e.Err)
}

func (e *UploadError) Unwrap() error {
	return e.Err
}

func (e *UploadError) Is(target error) bool {
	return target == ErrUploadFailed
}
