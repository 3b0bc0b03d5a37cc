package validator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/HaiFongPan/tfbv-cli/internal/config"
	"github.com/HaiFongPan/tfbv-cli/internal/utils"
)

// HTTPDoer is the subset of *http.Client the validator needs, for testing
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client submits spreadsheets to the validation services
type Client struct {
	httpClient HTTPDoer
	baseURL    string
	endpoints  map[string]string
}

// NewClient creates a validator client from configuration
func NewClient(cfg *config.Config) *Client {
	timeout := time.Duration(cfg.General.DefaultTimeout) * time.Second
	return NewClientWithHTTP(cfg.Server.BaseURL, cfg.Server.Endpoints, &http.Client{Timeout: timeout})
}

// NewClientWithHTTP creates a client around an explicit HTTP implementation
func NewClientWithHTTP(baseURL string, endpoints map[string]string, doer HTTPDoer) *Client {
	if doer == nil {
		doer = http.DefaultClient
	}
	return &Client{
		httpClient: doer,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		endpoints:  endpoints,
	}
}

// Endpoint resolves a tool to the URL its files are posted to
func (c *Client) Endpoint(tool Tool) (string, error) {
	info, ok := Lookup(tool)
	if !ok {
		return "", fmt.Errorf("invalid validation type: %q", tool)
	}

	if override := c.endpoints[string(tool)]; override != "" {
		return override, nil
	}

	u, err := url.Parse(c.baseURL + info.Path)
	if err != nil {
		return "", fmt.Errorf("invalid endpoint for %s: %w", tool, err)
	}
	return u.String(), nil
}

// Upload posts the files for tool and returns the result. It never returns
// an error: every failure is reported through Result.Err.
func (c *Client) Upload(ctx context.Context, tool Tool, files FileSet, callback utils.ProgressCallback) *Result {
	log := logrus.WithFields(logrus.Fields{"tool": tool})

	endpoint, err := c.Endpoint(tool)
	if err != nil {
		log.Errorf("Resolve endpoint: %v", err)
		return failure(tool, "resolve endpoint", 0, err)
	}

	parts, err := formParts(tool, files)
	if err != nil {
		log.Errorf("Prepare form: %v", err)
		return failure(tool, "prepare form", 0, err)
	}

	body, contentType, err := utils.BuildMultipartBody(parts)
	if err != nil {
		log.Errorf("Build form body: %v", err)
		return failure(tool, "build form", 0, err)
	}

	payload := body.Bytes()
	size := int64(len(payload))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, utils.NewProgressBody(bytes.NewReader(payload), size, callback))
	if err != nil {
		return failure(tool, "create request", 0, err)
	}
	req.ContentLength = size
	// The progress wrapper hides the body type from net/http, so 307/308
	// redirects need an explicit way to resend it
	req.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(utils.NewProgressBody(bytes.NewReader(payload), size, callback)), nil
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/octet-stream, text/plain, */*")

	log.Infof("Uploading %d bytes to %s", size, endpoint)
	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Errorf("Request failed: %v", err)
		return failure(tool, "send request", 0, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Errorf("Read response: %v", err)
		return failure(tool, "read response", resp.StatusCode, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Warnf("Server returned %s", resp.Status)
		return failure(tool, "validate", resp.StatusCode, statusError(resp, data))
	}

	filename := FilenameFromDisposition(resp.Header.Get("Content-Disposition"), tool.DefaultFilename())
	log.Infof("Received %d bytes as %s in %s", len(data), filename, time.Since(start).Round(time.Millisecond))

	return &Result{
		Success:    true,
		Tool:       tool,
		Data:       data,
		Filename:   filename,
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
	}
}

// formParts lists the multipart fields for tool in field order. The covered
// entity file is sent only when present.
func formParts(tool Tool, files FileSet) ([]utils.FilePart, error) {
	var parts []utils.FilePart
	for _, slot := range AllSlots {
		path := files[slot]
		if path == "" {
			if slot == SlotCoveredEntity || !tool.HasSlot(slot) {
				continue
			}
			return nil, fmt.Errorf("missing %s", slot.Label())
		}
		parts = append(parts, utils.FilePart{Field: string(slot), Path: path})
	}
	return parts, nil
}

// statusError describes a non-2xx response, including a short excerpt of a
// textual body when the server sent one
func statusError(resp *http.Response, data []byte) error {
	msg := fmt.Sprintf("server returned %s", resp.Status)
	if utils.IsTextType(resp.Header.Get("Content-Type")) {
		excerpt := strings.TrimSpace(string(data))
		if len(excerpt) > 200 {
			excerpt = excerpt[:200] + "..."
		}
		if excerpt != "" {
			msg += ": " + excerpt
		}
	}
	return errors.New(msg)
}
