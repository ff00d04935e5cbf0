package mediaserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"

	"github.com/amaumene/segmentarr/internal/utils"
)

// ErrorCause classifies a failed API call into a small fixed set of causes
type ErrorCause string

const (
	CauseAuth        ErrorCause = "auth"
	CauseNotFound    ErrorCause = "not_found"
	CauseRateLimited ErrorCause = "rate_limited"
	CauseValidation  ErrorCause = "validation"
	CauseServer      ErrorCause = "server"
)

// APIError represents a non-2xx response from the media server
type APIError struct {
	StatusCode int
	Cause      ErrorCause
	Message    string
}

// Error implements the error interface
func (e *APIError) Error() string {
	return fmt.Sprintf("media server returned status %d (%s): %s", e.StatusCode, e.Cause, e.Message)
}

// newAPIError maps an HTTP status code to an error cause.
// The response body is sanitized before it is kept as the message.
func newAPIError(statusCode int, body string) *APIError {
	var cause ErrorCause
	switch {
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		cause = CauseAuth
	case statusCode == http.StatusNotFound:
		cause = CauseNotFound
	case statusCode == http.StatusTooManyRequests:
		cause = CauseRateLimited
	case statusCode >= 400 && statusCode < 500:
		cause = CauseValidation
	default:
		cause = CauseServer
	}

	return &APIError{
		StatusCode: statusCode,
		Cause:      cause,
		Message:    utils.SanitizeMessage(body),
	}
}

// IsRetryable checks if an error is worth a bounded retry.
// Network failures, timeouts, 429 and 5xx are recoverable; cancellation
// is never retried; other 4xx are surfaced immediately.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	// A cancelled or expired context makes further attempts pointless
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Cause == CauseRateLimited || apiErr.Cause == CauseServer
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	// Remaining transport-level failures (connection refused, reset, DNS)
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}

// IsCancellation checks if an error stems from a cancelled request
func IsCancellation(err error) bool {
	return errors.Is(err, context.Canceled)
}

// IsNotFound checks if an error is a not-found response
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Cause == CauseNotFound
}
