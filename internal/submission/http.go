package submission

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Submitter delivers a payload to the collection endpoint.
type Submitter interface {
	Submit(ctx context.Context, p Payload) error
}

// HTTPSubmitter posts payloads as JSON.
type HTTPSubmitter struct {
	Endpoint string
	Client   *http.Client
}

// NewHTTPSubmitter creates a submitter for endpoint with a per-request timeout.
func NewHTTPSubmitter(endpoint string, timeout time.Duration) *HTTPSubmitter {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPSubmitter{
		Endpoint: endpoint,
		Client:   &http.Client{Timeout: timeout},
	}
}

// Submit posts p. Any non-2xx status is a failure.
func (h *HTTPSubmitter) Submit(ctx context.Context, p Payload) error {
	body, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("submission: marshal payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.Endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("submission: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := h.Client.Do(req)
	if err != nil {
		return fmt.Errorf("submission: post failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return &StatusError{Code: res.StatusCode, Body: strings.TrimSpace(string(msg))}
	}
	io.Copy(io.Discard, res.Body) //nolint:errcheck // drain for connection reuse
	return nil
}

// StatusError reports a non-2xx response from the endpoint.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("submission: endpoint returned status %d", e.Code)
	}
	return fmt.Sprintf("submission: endpoint returned status %d: %s", e.Code, e.Body)
}
