// Package api is the single chokepoint for talking to the XTeam backend.
// It resolves request URLs against the configured base URL, attaches default
// headers and turns every non-2xx response into an *HTTPError.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultBaseURL is used when no base URL is configured
const DefaultBaseURL = "http://localhost:8000"

// maxErrorBody caps how much of a failed response body is kept
const maxErrorBody = 1 << 20

var (
	// ErrUnexpectedResponse is returned when a 2xx body does not have the expected shape
	ErrUnexpectedResponse = errors.New("unexpected response format")

	// ErrNotReady is returned when the backend answers 202 for a result that is still processing
	ErrNotReady = errors.New("result not ready")
)

// Config holds API client configuration
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
}

// RequestOptions is the options bag accepted by Client.Do
type RequestOptions struct {
	Method  string
	Headers map[string]string
	Query   url.Values
	Body    io.Reader
}

// HTTPError describes a non-2xx response
type HTTPError struct {
	StatusCode int
	StatusText string
	Body       []byte
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("API call failed: %d %s", e.StatusCode, e.StatusText)
}

// NetworkError wraps transport-level failures (DNS, refused connection, timeouts)
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Client issues requests against the backend API
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	logger     *zap.Logger

	mu       sync.RWMutex
	language string
}

// NewClient creates a new API client
func NewClient(cfg Config, logger *zap.Logger) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		baseURL:   baseURL,
		userAgent: cfg.UserAgent,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// BaseURL returns the resolved base URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// SetLanguage sets the Accept-Language sent with every request
func (c *Client) SetLanguage(lang string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.language = lang
}

// ResolveURL joins path onto the base URL. Absolute URLs are returned unchanged.
func (c *Client) ResolveURL(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.baseURL + path
}

// Do performs a request. Caller headers override the default JSON content
// type. The caller owns the returned body and must close it.
func (c *Client) Do(ctx context.Context, path string, opts RequestOptions) (*http.Response, error) {
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	target := c.ResolveURL(path)
	if len(opts.Query) > 0 {
		sep := "?"
		if strings.Contains(target, "?") {
			sep = "&"
		}
		target += sep + opts.Query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, opts.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	c.mu.RLock()
	if c.language != "" {
		req.Header.Set("Accept-Language", c.language)
	}
	c.mu.RUnlock()
	for k, v := range opts.Headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("API request failed",
			zap.String("request_id", requestID),
			zap.String("method", method),
			zap.String("url", target),
			zap.Error(err))
		return nil, &NetworkError{Err: err}
	}

	c.logger.Debug("API request",
		zap.String("request_id", requestID),
		zap.String("method", method),
		zap.String("url", target),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &HTTPError{
			StatusCode: resp.StatusCode,
			StatusText: http.StatusText(resp.StatusCode),
			Body:       body,
		}
	}

	return resp, nil
}

// doJSON encodes in (if non-nil), performs the request and reads the whole
// body. The HTTP status is returned so callers can tell 200 from 202.
func (c *Client) doJSON(ctx context.Context, method, path string, in interface{}, headers map[string]string, query url.Values) (int, []byte, error) {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	resp, err := c.Do(ctx, path, RequestOptions{
		Method:  method,
		Headers: headers,
		Query:   query,
		Body:    body,
	})
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, &NetworkError{Err: err}
	}
	return resp.StatusCode, data, nil
}

// decode unmarshals a 2xx body, reporting malformed JSON as an unexpected response
func decode(data []byte, out interface{}) error {
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %v", ErrUnexpectedResponse, err)
	}
	return nil
}

// IsStatus reports whether err is an *HTTPError with the given status code
func IsStatus(err error, code int) bool {
	var httpErr *HTTPError
	return errors.As(err, &httpErr) && httpErr.StatusCode == code
}
