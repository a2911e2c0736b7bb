package gemini

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

const (
	defaultBaseURL        = "https://generativelanguage.googleapis.com"
	defaultModel          = "gemini-2.0-flash"
	defaultHTTPTimeout    = 10 * time.Minute
	defaultRetryBaseDelay = 2 * time.Second
	defaultRetryMaxDelay  = 30 * time.Second
	defaultRetryAttempts  = 4
	apiVersion            = "v1beta"
)

// Config captures the runtime settings required to talk to Gemini.
type Config struct {
	APIKey         string
	BaseURL        string
	Model          string
	TimeoutSeconds int
}

// Client wraps the Gemini REST API.
type Client struct {
	cfg        Config
	httpClient *http.Client
	retry      retryPolicy
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithRetry sets how many times a call is attempted and the backoff bounds.
func WithRetry(attempts int, base, limit time.Duration) Option {
	return func(c *Client) {
		c.retry.attempts = attempts
		c.retry.base = base
		c.retry.limit = limit
	}
}

// WithSleeper replaces the wait between attempts.
func WithSleeper(sleeper func(time.Duration)) Option {
	return func(c *Client) {
		c.retry.sleeper = sleeper
	}
}

// New constructs a Gemini client.
func New(cfg Config, opts ...Option) (*Client, error) {
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	if cfg.APIKey == "" {
		return nil, errors.New("gemini: api key is required")
	}
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("gemini: parse base url: %w", err)
	}
	cfg.Model = strings.TrimPrefix(strings.TrimSpace(cfg.Model), "models/")
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	client := &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
		retry: retryPolicy{
			attempts: defaultRetryAttempts,
			base:     defaultRetryBaseDelay,
			limit:    defaultRetryMaxDelay,
		},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Model returns the model used by Generate.
func (c *Client) Model() string {
	return c.cfg.Model
}

// StatusError is returned for non-2xx API responses.
type StatusError struct {
	Op         string
	StatusCode int
	Message    string
	RetryAfter time.Duration
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("gemini %s: http %d: %s", e.Op, e.StatusCode, e.Message)
}

func (c *Client) endpoint(parts ...string) string {
	return c.cfg.BaseURL + "/" + strings.Join(parts, "/")
}

func (c *Client) do(req *http.Request, op string) ([]byte, http.Header, error) {
	req.Header.Set("x-goog-api-key", c.cfg.APIKey)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("gemini %s: http error (timeout=%s): %w", op, c.httpClient.Timeout, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("gemini %s: read body: %w", op, err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		retryAfter, _ := parseRetryAfter(resp.Header.Get("Retry-After"))
		message := gjson.GetBytes(body, "error.message").String()
		if message == "" {
			message = summarizePayloadSnippet(string(body))
		}
		return nil, nil, &StatusError{Op: op, StatusCode: resp.StatusCode, Message: message, RetryAfter: retryAfter}
	}
	return body, resp.Header, nil
}

// retryPolicy decides whether and how long to wait after a failed call.
// Throttling, request timeouts, server errors and network timeouts are
// retried; a Retry-After hint wins over exponential backoff.
type retryPolicy struct {
	attempts int
	base     time.Duration
	limit    time.Duration
	sleeper  func(time.Duration)
}

func (p retryPolicy) maxAttempts() int {
	return max(p.attempts, 1)
}

func (p retryPolicy) next(err error, attempt int) (time.Duration, bool) {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return 0, false
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		code := statusErr.StatusCode
		if code != http.StatusRequestTimeout && code != http.StatusTooManyRequests && code < http.StatusInternalServerError {
			return 0, false
		}
		if statusErr.RetryAfter > 0 {
			return p.clamp(statusErr.RetryAfter), true
		}
		return p.backoff(attempt), true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return p.backoff(attempt), true
	}
	return 0, false
}

func (p retryPolicy) backoff(attempt int) time.Duration {
	if p.base <= 0 {
		return 0
	}
	shift := min(max(attempt-1, 0), 16)
	return p.clamp(p.base << shift)
}

func (p retryPolicy) clamp(d time.Duration) time.Duration {
	if p.limit > 0 && d > p.limit {
		return p.limit
	}
	return max(d, 0)
}

func (p retryPolicy) wait(ctx context.Context, d time.Duration) error {
	switch {
	case d <= 0:
		return ctx.Err()
	case p.sleeper != nil:
		p.sleeper(d)
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// withRetry runs call until it succeeds or fails permanently. The last error
// is returned unwrapped once the policy's attempts are spent.
func (c *Client) withRetry(ctx context.Context, op string, call func() error) error {
	attempts := c.retry.maxAttempts()
	for attempt := 1; ; attempt++ {
		err := call()
		if err == nil {
			return nil
		}
		if attempt >= attempts || ctx.Err() != nil {
			return err
		}
		delay, ok := c.retry.next(err, attempt)
		if !ok {
			return err
		}
		if waitErr := c.retry.wait(ctx, delay); waitErr != nil {
			return fmt.Errorf("gemini %s: %w", op, waitErr)
		}
	}
}

func parseRetryAfter(value string) (time.Duration, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		if seconds < 0 {
			return 0, false
		}
		return time.Duration(seconds) * time.Second, true
	}
	if when, err := http.ParseTime(value); err == nil {
		if delay := time.Until(when); delay > 0 {
			return delay, true
		}
	}
	return 0, false
}

func summarizePayloadSnippet(content string) string {
	clean := strings.Join(strings.Fields(content), " ")
	if clean == "" {
		return "<empty>"
	}
	const limit = 160
	if runes := []rune(clean); len(runes) > limit {
		clean = string(runes[:limit]) + "..."
	}
	return clean
}

// HealthCheck fetches the configured model's metadata, which verifies both
// reachability and the API key. It honours the retry settings.
func (c *Client) HealthCheck(ctx context.Context) error {
	return c.withRetry(ctx, "health check", func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(apiVersion, "models", c.cfg.Model), nil)
		if err != nil {
			return fmt.Errorf("gemini health check: new request: %w", err)
		}
		body, _, err := c.do(req, "health check")
		if err != nil {
			return err
		}
		if name := gjson.GetBytes(body, "name").String(); name == "" {
			return fmt.Errorf("gemini health check: response has no model name")
		}
		return nil
	})
}
