package opensubtitles

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"
)

// Pacing for API calls. The public API allows roughly one request per second
// per key and answers 429 when that is exceeded.
const (
	MinInterval    = time.Second
	MaxRateRetries = 6
	InitialBackoff = 2 * time.Second
	MaxBackoff     = 60 * time.Second
)

// SleepWithContext waits for d or until ctx is done.
func SleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// Backoff returns the wait before the given 1-based retry.
func Backoff(attempt int) time.Duration {
	shift := max(attempt-1, 0)
	if shift > 8 {
		return MaxBackoff
	}
	return min(InitialBackoff<<shift, MaxBackoff)
}

// Transient reports whether the status is worth retrying: throttling,
// request timeouts, and gateway errors.
func (e *StatusError) Transient() bool {
	switch e.StatusCode {
	case http.StatusTooManyRequests, http.StatusRequestTimeout,
		http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

var transientMessages = []string{
	"timeout",
	"connection reset",
	"connection refused",
	"temporary failure",
	"awaiting headers",
}

// IsRetriable reports whether a failed call may succeed if repeated.
// Cancellation is never retried; deadline and network timeouts are.
func IsRetriable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Transient()
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, token := range transientMessages {
		if strings.Contains(msg, token) {
			return true
		}
	}
	return false
}
