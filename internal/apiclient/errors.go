package apiclient

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

// Error codes for classified vendor API failures.
const (
	CodeTimeout      = "TIMEOUT"
	CodeNetworkError = "NETWORK_ERROR"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeRateLimit    = "RATE_LIMIT"
	CodeServerError  = "SERVER_ERROR"
	CodeUnknown      = "UNKNOWN_ERROR"
)

// APIError is a classified vendor API failure. Retryable errors may be
// retried or degraded to the local heuristic; non-retryable errors must be
// surfaced to the caller.
type APIError struct {
	Message    string `json:"message"`
	Code       string `json:"code"`
	StatusCode int    `json:"status_code,omitempty"`
	Retryable  bool   `json:"retryable"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (%s)", e.Message, e.Code)
}

// Classify maps a raw error onto the APIError taxonomy. Unknown errors are
// conservatively marked retryable.
func Classify(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	if err == nil {
		return nil
	}

	msg := strings.ToLower(err.Error())

	if errors.Is(err, context.DeadlineExceeded) || strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline exceeded") {
		return &APIError{
			Message:    "Request timed out. Please try again.",
			Code:       CodeTimeout,
			StatusCode: 408,
			Retryable:  true,
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) || strings.Contains(msg, "network") || strings.Contains(msg, "fetch failed") || strings.Contains(msg, "connection reset") || strings.Contains(msg, "connection refused") {
		return &APIError{
			Message:   "Network error. Please check your connection and try again.",
			Code:      CodeNetworkError,
			Retryable: true,
		}
	}

	if strings.Contains(msg, "401") || strings.Contains(msg, "unauthorized") {
		return &APIError{
			Message:    "API key is invalid or expired.",
			Code:       CodeUnauthorized,
			StatusCode: 401,
			Retryable:  false,
		}
	}

	if strings.Contains(msg, "429") || strings.Contains(msg, "rate limit") {
		return &APIError{
			Message:    "Rate limit exceeded. Please try again later.",
			Code:       CodeRateLimit,
			StatusCode: 429,
			Retryable:  true,
		}
	}

	if strings.Contains(msg, "500") || strings.Contains(msg, "internal server error") {
		return &APIError{
			Message:    "Service temporarily unavailable. Please try again.",
			Code:       CodeServerError,
			StatusCode: 500,
			Retryable:  true,
		}
	}

	return &APIError{
		Message:   "An unexpected error occurred. Please try again.",
		Code:      CodeUnknown,
		Retryable: true,
	}
}

// FromStatus builds an APIError for a completed HTTP response that carried
// an error status.
func FromStatus(vendor string, status int, body string) *APIError {
	msg := fmt.Sprintf("%s API error (%d): %s", vendor, status, truncate(body, 200))
	switch {
	case status == 401 || status == 403:
		return &APIError{Message: msg, Code: CodeUnauthorized, StatusCode: status, Retryable: false}
	case status == 429:
		return &APIError{Message: msg, Code: CodeRateLimit, StatusCode: status, Retryable: true}
	case status >= 500:
		return &APIError{Message: msg, Code: CodeServerError, StatusCode: status, Retryable: true}
	default:
		return &APIError{Message: msg, Code: CodeUnknown, StatusCode: status, Retryable: false}
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
