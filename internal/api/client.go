package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/rickgao/energy-data/internal/pacer"
)

// Client performs paced, retried GET requests against one upstream base URL.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *slog.Logger
	pacer      pacer.Pacer

	maxAttempts int
	retryDelay  time.Duration
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// NewClient creates a new API client. token is sent as the ENTSO-E
// securityToken and may be empty for the price API.
func NewClient(baseURL, token string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger:      slog.Default(),
		pacer:       pacer.Unlimited(),
		maxAttempts: 3,
		retryDelay:  5 * time.Second,
	}

	for _, opt := range opts {
		opt(c)
	}
	if c.maxAttempts < 1 {
		c.maxAttempts = 1
	}

	return c
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithRetries sets the number of attempts per request and the fixed delay between them.
func WithRetries(maxAttempts int, delay time.Duration) ClientOption {
	return func(c *Client) {
		c.maxAttempts = maxAttempts
		c.retryDelay = delay
	}
}

// WithPacer sets the pacer consulted before every attempt.
func WithPacer(p pacer.Pacer) ClientOption {
	return func(c *Client) {
		c.pacer = p
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}
