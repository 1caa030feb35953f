package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rickgao/energy-data/internal/version"
)

// APIError represents a non-success HTTP response.
type APIError struct {
	StatusCode int
	Message    string
	Body       []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// doRequest performs a single GET against baseURL+path.
func (c *Client) doRequest(ctx context.Context, path string, query url.Values, accept string) ([]byte, error) {
	fullURL := c.baseURL + path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", accept)
	req.Header.Set("User-Agent", version.UserAgent())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// The URL may carry the security token; report the cause only.
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		// ENTSO-E reports "no data" as an acknowledgement document with a 4xx status.
		if ack, ok := parseAcknowledgement(body); ok {
			return nil, ack
		}
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    http.StatusText(resp.StatusCode),
			Body:       body,
		}
	}

	return body, nil
}

// doWithRetry performs a paced request, retrying any failure after a fixed delay.
// Acknowledgement documents and context cancellation are final.
func (c *Client) doWithRetry(ctx context.Context, path string, query url.Values, accept string) ([]byte, error) {
	var lastErr error

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if attempt > 1 {
			c.logger.Debug("retrying request",
				"attempt", attempt,
				"max_attempts", c.maxAttempts,
				"delay", c.retryDelay,
				"path", path,
			)

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.retryDelay):
			}
		}

		if err := c.pacer.Wait(ctx); err != nil {
			return nil, fmt.Errorf("wait for pacer: %w", err)
		}

		body, err := c.doRequest(ctx, path, query, accept)
		if err == nil {
			return body, nil
		}

		var ack *AcknowledgementError
		if errors.As(err, &ack) {
			return nil, err
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		lastErr = err
		c.logger.Warn("request attempt failed",
			"attempt", attempt,
			"max_attempts", c.maxAttempts,
			"path", path,
			"error", err,
		)
	}

	return nil, fmt.Errorf("max attempts exceeded: %w", lastErr)
}
