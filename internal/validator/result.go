package validator

import (
	"errors"
	"net/http"
)

// Result is the outcome of one upload. Exactly one of Data or Err is
// meaningful, selected by Success.
type Result struct {
	Success    bool
	Tool       Tool
	Data       []byte
	Filename   string
	StatusCode int
	Header     http.Header
	Err        *UploadError
}

// Message returns the user-facing status line for the result
func (r *Result) Message() string {
	if r == nil {
		return ""
	}
	if r.Success {
		return "File sent successfully!"
	}
	if r.Err != nil {
		return r.Err.Error()
	}
	return ErrUploadFailed.Error()
}

// AsError returns the failure as an error, nil on success
func (r *Result) AsError() error {
	if r == nil || r.Success {
		return nil
	}
	if r.Err == nil {
		return ErrUploadFailed
	}
	return r.Err
}

func failure(tool Tool, operation string, status int, err error) *Result {
	var ue *UploadError
	if errors.As(err, &ue) {
		return &Result{Tool: tool, StatusCode: ue.StatusCode, Err: ue}
	}
	return &Result{
		Tool:       tool,
		StatusCode: status,
		Err: &UploadError{
			Operation:  operation,
			Tool:       tool,
			StatusCode: status,
			Err:        err,
		},
	}
}
