package utils

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

// ProgressCallback receives upload progress
type ProgressCallback func(uploaded, total int64, percentage float64)

// FilePart is one file field of a multipart form
type FilePart struct {
	Field string
	Path  string
}

// uploadError wraps local file errors hit while building an upload body
type uploadError struct {
	operation string
	path      string
	err       error
}

func (e *uploadError) Error() string {
	return fmt.Sprintf("%s failed for %s: %v", e.operation, e.path, e.err)
}

func (e *uploadError) Unwrap() error {
	return e.err
}

// BuildMultipartBody encodes the given files as a multipart/form-data body.
// It returns the body and the Content-Type header value carrying the boundary.
func BuildMultipartBody(parts []FilePart) (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	for _, part := range parts {
		if err := writeFilePart(writer, part); err != nil {
			return nil, "", err
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", &uploadError{operation: "finish form", path: "", err: err}
	}

	return body, writer.FormDataContentType(), nil
}

// writeFilePart copies one local file into the multipart writer
func writeFilePart(writer *multipart.Writer, part FilePart) error {
	file, fileInfo, err := openAndValidateFile(part.Path)
	if err != nil {
		return err
	}
	defer file.Close()

	contentType := determineContentType(part.Path, file)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		escapeQuotes(part.Field), escapeQuotes(filepath.Base(part.Path))))
	header.Set("Content-Type", contentType)

	w, err := writer.CreatePart(header)
	if err != nil {
		return &uploadError{operation: "create form part", path: part.Path, err: err}
	}

	n, err := io.Copy(w, file)
	if err != nil {
		return &uploadError{operation: "read file", path: part.Path, err: err}
	}

	logrus.Debugf("Added form field %s: %s (%d of %d bytes, %s)", part.Field, part.Path, n, fileInfo.Size(), contentType)
	return nil
}

// openAndValidateFile opens a regular file and returns its info
func openAndValidateFile(localPath string) (*os.File, os.FileInfo, error) {
	file, err := os.Open(localPath)
	if err != nil {
		return nil, nil, &uploadError{
			operation: "open file",
			path:      localPath,
			err:       err,
		}
	}

	fileInfo, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, nil, &uploadError{
			operation: "get file info",
			path:      localPath,
			err:       err,
		}
	}

	if fileInfo.IsDir() {
		file.Close()
		return nil, nil, &uploadError{
			operation: "open file",
			path:      localPath,
			err:       fmt.Errorf("is a directory"),
		}
	}

	return file, fileInfo, nil
}

// determineContentType detects the part content type and rewinds the file
func determineContentType(localPath string, file *os.File) string {
	contentType, err := DetectContentType(localPath, file)
	if err != nil {
		contentType = "application/octet-stream"
	}

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		logrus.Warnf("Failed to rewind %s: %v", localPath, err)
	}

	return contentType
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

// NewProgressBody wraps r so that callback is told how much of total has been read
func NewProgressBody(r io.Reader, total int64, callback ProgressCallback) io.Reader {
	if callback == nil {
		return r
	}
	return &progressReader{
		reader:   r,
		total:    total,
		callback: callback,
	}
}

// progressReader wraps an io.Reader and reports progress through a callback
type progressReader struct {
	reader   io.Reader
	total    int64
	read     int64
	callback ProgressCallback
}

// Read implements io.Reader and triggers the progress callback
func (pr *progressReader) Read(p []byte) (n int, err error) {
	n, err = pr.reader.Read(p)

	if n > 0 {
		pr.read += int64(n)
		if pr.callback != nil && pr.total > 0 {
			percentage := float64(pr.read) / float64(pr.total) * 100
			if percentage > 100 {
				percentage = 100
			}
			pr.callback(pr.read, pr.total, percentage)
		}
	}

	return n, err
}
