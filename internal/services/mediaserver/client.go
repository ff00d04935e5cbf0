package mediaserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/amaumene/segmentarr/internal/config"
	"github.com/amaumene/segmentarr/internal/utils"
	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"
)

// Client handles communication with the host media server API
type Client struct {
	baseURL    string
	token      string
	retryMax   int
	httpClient *http.Client
	logger     *logrus.Logger
}

// NewClient creates a new media server API client
func NewClient(cfg *config.Config, logger *logrus.Logger) (*Client, error) {
	if cfg.ServerURL == "" {
		return nil, fmt.Errorf("media server URL is required")
	}
	if cfg.ServerToken == "" {
		return nil, fmt.Errorf("media server token is required")
	}

	return &Client{
		baseURL:  cfg.ServerURL,
		token:    cfg.ServerToken,
		retryMax: cfg.RetryMaxAttempts,
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		logger: logger,
	}, nil
}

// doRequest performs an authenticated HTTP request against the media server
func (c *Client) doRequest(ctx context.Context, method, path string, query url.Values, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	fullURL := c.baseURL + path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	c.logger.WithFields(logrus.Fields{
		"method": method,
		"url":    utils.SanitizeURL(fullURL),
	}).Debug("Making media server request")

	req, err := http.NewRequestWithContext(ctx, method, fullURL, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return newAPIError(resp.StatusCode, string(bodyBytes))
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// withRetry runs fn with bounded exponential backoff. Non-recoverable
// errors and cancellation abort immediately.
func (c *Client) withRetry(ctx context.Context, operation string, fn func() error) error {
	attempt := 0

	wrapped := func() error {
		attempt++
		err := fn()
		if err == nil {
			return nil
		}
		if !IsRetryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 500 * time.Millisecond
	bo.MaxInterval = 10 * time.Second

	policy := backoff.WithContext(backoff.WithMaxRetries(bo, uint64(c.retryMax-1)), ctx)

	notify := func(err error, wait time.Duration) {
		c.logger.WithFields(logrus.Fields{
			"operation": operation,
			"attempt":   attempt,
			"wait":      wait.String(),
			"error":     utils.SanitizeError(err),
		}).Warn("Media server request failed, retrying")
	}

	return backoff.RetryNotify(wrapped, policy, notify)
}
