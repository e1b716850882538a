package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/harrison/verdict/internal/models"
)

const (
	defaultTimeout    = 10 * time.Second
	defaultMaxRetries = 3
	defaultBackoff    = time.Second
)

// StatusError is returned when the endpoint answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("ingestion endpoint returned HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("ingestion endpoint returned HTTP %d: %s", e.StatusCode, e.Body)
}

// Retryable reports whether the request may succeed if repeated.
func (e *StatusError) Retryable() bool {
	return e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests
}

// HTTPOption configures an HTTPSink.
type HTTPOption func(*HTTPSink)

// WithHeaders sets headers sent with every request.
func WithHeaders(h map[string]string) HTTPOption {
	return func(s *HTTPSink) { s.headers = h }
}

// WithTimeout sets the per-request timeout. Default: 10s.
func WithTimeout(d time.Duration) HTTPOption {
	return func(s *HTTPSink) { s.client.Timeout = d }
}

// WithMaxRetries sets how many times a transport error, 5xx or 429 is retried. Default: 3.
func WithMaxRetries(n int) HTTPOption {
	return func(s *HTTPSink) { s.maxRetries = n }
}

// WithBackoff sets the delay before the first retry; it doubles per attempt. Default: 1s.
func WithBackoff(d time.Duration) HTTPOption {
	return func(s *HTTPSink) { s.backoff = d }
}

// WithHTTPClient replaces the underlying client.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(s *HTTPSink) { s.client = c }
}

// HTTPSink POSTs each report as a JSON object to the ingestion endpoint.
type HTTPSink struct {
	client     *http.Client
	url        string
	headers    map[string]string
	maxRetries int
	backoff    time.Duration
}

// NewHTTPSink creates a sink targeting url.
func NewHTTPSink(url string, opts ...HTTPOption) *HTTPSink {
	s := &HTTPSink{
		client:     &http.Client{Timeout: defaultTimeout},
		url:        url,
		maxRetries: defaultMaxRetries,
		backoff:    defaultBackoff,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Publish sends the report, retrying retryable failures with exponential
// backoff. Transport errors are retried unless ctx is done.
func (s *HTTPSink) Publish(ctx context.Context, report models.Report) error {
	body, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		if attempt > 0 {
			delay := s.backoff * time.Duration(1<<(attempt-1))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		var retry bool
		retry, lastErr = s.post(ctx, body)
		if lastErr == nil {
			return nil
		}
		if !retry || ctx.Err() != nil {
			return lastErr
		}
	}
	return lastErr
}

// post performs one attempt and reports whether a failure may be retried.
func (s *HTTPSink) post(ctx context.Context, body []byte) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return false, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range s.headers {
		req.Header.Set(k, v)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return true, fmt.Errorf("post report: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		io.Copy(io.Discard, resp.Body)
		return false, nil
	}

	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	statusErr := &StatusError{StatusCode: resp.StatusCode, Body: string(bytes.TrimSpace(snippet))}
	return statusErr.Retryable(), statusErr
}

// Close releases idle connections.
func (s *HTTPSink) Close() error {
	s.client.CloseIdleConnections()
	return nil
}
