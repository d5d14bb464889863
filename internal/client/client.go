// Package client is the JSON-over-HTTP client for the external survey API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
)

const (
	bearerPrefix = "Bearer "

	// maxErrorBody bounds how much of an error response is read for its message
	maxErrorBody = 64 << 10
)

// Client represents an HTTP client for the survey API
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger

	mu             sync.RWMutex
	credential     func() string
	onUnauthorized func(token string)
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithLogger sets the logger used for request tracing
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = log
	}
}

// New creates a new API client
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// SetCredentialProvider installs the hook consulted on every request for the
// bearer token. An empty return value means no credential is attached.
func (c *Client) SetCredentialProvider(fn func() string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.credential = fn
}

// SetUnauthorizedHandler installs the hook invoked when a protected call that
// carried a credential is rejected with 401. It receives the rejected token.
func (c *Client) SetUnauthorizedHandler(fn func(token string)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onUnauthorized = fn
}

func (c *Client) hooks() (func() string, func(string)) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.credential, c.onUnauthorized
}

// do sends one request and decodes a 2xx JSON response into out (if non-nil).
// protected marks endpoints that require the session credential.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}, protected bool) error {
	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	requestID := ulid.Make().String()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	credential, onUnauthorized := c.hooks()
	var token string
	if credential != nil {
		token = credential()
	}
	if token != "" {
		req.Header.Set("Authorization", bearerPrefix+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug().Err(err).
			Str("method", method).
			Str("path", path).
			Str("request_id", requestID).
			Msg("API request failed")
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	c.logger.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Str("request_id", requestID).
		Msg("API request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := newAPIError(resp)
		if resp.StatusCode == http.StatusUnauthorized && protected && token != "" && onUnauthorized != nil {
			onUnauthorized(token)
		}
		return apiErr
	}

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}
