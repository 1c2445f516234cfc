// Package apiclient wraps outbound calls to third-party detection vendors
// with timeouts, bounded retries, and a classified error taxonomy. Network
// failures are retried with exponential backoff; completed HTTP responses
// are returned to the caller for classification.
package apiclient

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"
)

// Defaults for vendor calls. The timeout is generous because media uploads
// ride the same client.
const (
	DefaultTimeout    = 45 * time.Second
	DefaultMaxRetries = 2
	DefaultRetryDelay = time.Second
)

// Config controls retry and timeout behavior.
type Config struct {
	MaxRetries int
	RetryDelay time.Duration
	Timeout    time.Duration
}

// DefaultConfig returns the standard vendor-call configuration.
func DefaultConfig() Config {
	return Config{
		MaxRetries: DefaultMaxRetries,
		RetryDelay: DefaultRetryDelay,
		Timeout:    DefaultTimeout,
	}
}

// Client is a retrying HTTP client for vendor detection APIs.
type Client struct {
	cfg    Config
	http   *http.Client
	logger *slog.Logger
	sleep  func(context.Context, time.Duration) error
}

// New creates a client. Zero config fields fall back to defaults.
func New(cfg Config, logger *slog.Logger) *Client {
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = DefaultRetryDelay
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:    cfg,
		http:   &http.Client{},
		logger: logger,
		sleep:  sleepCtx,
	}
}

// Do executes the request with the configured timeout. On a network-class
// failure it retries up to MaxRetries times with exponential backoff
// (RetryDelay * 2^attempt). Responses that completed at the transport layer
// are returned regardless of status code; callers classify those.
//
// The request body, if any, must be rebuildable: callers pass a factory so
// each attempt gets a fresh body.
func (c *Client) Do(ctx context.Context, build func(ctx context.Context) (*http.Request, error)) (*http.Response, error) {
	var lastErr error

	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := c.cfg.RetryDelay * (1 << (attempt - 1))
			c.logger.Warn("vendor request failed, retrying",
				"attempt", attempt,
				"max_retries", c.cfg.MaxRetries,
				"delay", delay.String(),
				"error", lastErr,
			)
			if err := c.sleep(ctx, delay); err != nil {
				return nil, Classify(err)
			}
		}

		reqCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
		req, err := build(reqCtx)
		if err != nil {
			cancel()
			return nil, err
		}

		resp, err := c.http.Do(req)
		if err == nil {
			// Cancel fires when the caller is done with the body.
			resp.Body = &cancelReadCloser{rc: resp.Body, cancel: cancel}
			return resp, nil
		}
		cancel()

		if reqCtx.Err() == context.DeadlineExceeded {
			lastErr = &APIError{
				Message:    "Request timed out. Please try again.",
				Code:       CodeTimeout,
				StatusCode: 408,
				Retryable:  true,
			}
		} else {
			lastErr = err
		}

		if !isRetriable(lastErr) {
			return nil, Classify(lastErr)
		}
	}

	return nil, Classify(lastErr)
}

// retriableMessages are substrings of transport errors worth retrying.
var retriableMessages = []string{
	"fetch failed",
	"network error",
	"connection reset",
	"connection refused",
	"timeout",
}

// isRetriable reports whether err is a network-class failure.
func isRetriable(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Retryable
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, m := range retriableMessages {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// cancelReadCloser ties a request's context cancel to body close so the
// timeout context outlives Do without leaking.
type cancelReadCloser struct {
	rc     io.ReadCloser
	cancel context.CancelFunc
}

func (c *cancelReadCloser) Read(p []byte) (int, error) { return c.rc.Read(p) }

func (c *cancelReadCloser) Close() error {
	c.cancel()
	return c.rc.Close()
}
