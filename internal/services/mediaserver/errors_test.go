package mediaserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"testing"
)

func TestErrorCauseMapping(t *testing.T) {
	cases := []struct {
		status int
		cause  ErrorCause
	}{
		{http.StatusUnauthorized, CauseAuth},
		{http.StatusForbidden, CauseAuth},
		{http.StatusNotFound, CauseNotFound},
		{http.StatusTooManyRequests, CauseRateLimited},
		{http.StatusBadRequest, CauseValidation},
		{http.StatusUnprocessableEntity, CauseValidation},
		{http.StatusInternalServerError, CauseServer},
		{http.StatusBadGateway, CauseServer},
		{http.StatusServiceUnavailable, CauseServer},
	}

	for _, c := range cases {
		err := newAPIError(c.status, "boom")
		if err.Cause != c.cause {
			t.Errorf("status %d mapped to %s, want %s", c.status, err.Cause, c.cause)
		}
	}
}

func TestAPIErrorSanitizesBody(t *testing.T) {
	err := newAPIError(http.StatusUnauthorized, `rejected: api_key=supersecret123`)
	if strings.Contains(err.Error(), "supersecret123") {
		t.Errorf("credential leaked into error message: %s", err.Error())
	}
}

func TestIsRetryable(t *testing.T) {
	cases := []struct {
		name      string
		err       error
		retryable bool
	}{
		{"nil", nil, false},
		{"cancellation", context.Canceled, false},
		{"wrapped cancellation", fmt.Errorf("request failed: %w", context.Canceled), false},
		{"deadline", context.DeadlineExceeded, false},
		{"rate limited", newAPIError(http.StatusTooManyRequests, ""), true},
		{"server error", newAPIError(http.StatusInternalServerError, ""), true},
		{"auth", newAPIError(http.StatusUnauthorized, ""), false},
		{"not found", newAPIError(http.StatusNotFound, ""), false},
		{"validation", newAPIError(http.StatusBadRequest, ""), false},
		{"network", &url.Error{Op: "Post", URL: "http://example", Err: errors.New("connection refused")}, true},
		{"wrapped network", fmt.Errorf("request failed: %w", &url.Error{Op: "Get", URL: "http://example", Err: errors.New("reset")}), true},
	}

	for _, c := range cases {
		if got := IsRetryable(c.err); got != c.retryable {
			t.Errorf("%s: IsRetryable = %v, want %v", c.name, got, c.retryable)
		}
	}
}

func TestIsNotFound(t *testing.T) {
	if !IsNotFound(fmt.Errorf("outer: %w", newAPIError(http.StatusNotFound, ""))) {
		t.Error("wrapped 404 should be not-found")
	}
	if IsNotFound(newAPIError(http.StatusInternalServerError, "")) {
		t.Error("500 should not be not-found")
	}
}
