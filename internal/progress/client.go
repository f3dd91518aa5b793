package progress

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	DefaultTimeout     = 10 * time.Second
	DefaultMaxAttempts = 3
	DefaultBackoff     = time.Second
)

// ErrRejected is returned when the endpoint refuses a record with a 4xx
// status. Retrying the same record cannot succeed.
var ErrRejected = errors.New("progress record rejected")

// Reporter delivers a record.
type Reporter interface {
	Report(ctx context.Context, rec Record) (*Response, error)
}

// Client posts records to <endpoint>/track-exercise.
type Client struct {
	endpoint    string
	httpClient  *http.Client
	maxAttempts int
	backoff     time.Duration
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

// WithRetry sets the attempt count and the first backoff delay, which
// doubles after every failed attempt.
func WithRetry(attempts int, backoff time.Duration) ClientOption {
	return func(c *Client) {
		if attempts > 0 {
			c.maxAttempts = attempts
		}
		if backoff >= 0 {
			c.backoff = backoff
		}
	}
}

// NewClient creates a client for endpoint.
func NewClient(endpoint string, timeout time.Duration, opts ...ClientOption) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	c := &Client{
		endpoint:    strings.TrimRight(endpoint, "/"),
		httpClient:  &http.Client{Timeout: timeout},
		maxAttempts: DefaultMaxAttempts,
		backoff:     DefaultBackoff,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Report posts rec, retrying network errors and 5xx responses with
// exponential backoff.
func (c *Client) Report(ctx context.Context, rec Record) (*Response, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("marshaling record: %w", err)
	}

	var lastErr error
	for attempt := range c.maxAttempts {
		if attempt > 0 {
			if err := sleep(ctx, c.backoff<<uint(attempt-1)); err != nil {
				return nil, err
			}
		}

		resp, err := c.post(ctx, data)
		if err == nil {
			return resp, nil
		}
		if errors.Is(err, ErrRejected) || ctx.Err() != nil {
			return nil, err
		}
		lastErr = err
	}
	return nil, fmt.Errorf("after %d attempts: %w", c.maxAttempts, lastErr)
}

func (c *Client) post(ctx context.Context, data []byte) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/track-exercise", bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return nil, fmt.Errorf("%w (status %d): %s", ErrRejected, resp.StatusCode, bytes.TrimSpace(body))
	default:
		return nil, fmt.Errorf("track-exercise failed (status %d): %s", resp.StatusCode, bytes.TrimSpace(body))
	}

	out := &Response{}
	if len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, out); err != nil {
			return nil, fmt.Errorf("decoding response: %w", err)
		}
	}
	return out, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
