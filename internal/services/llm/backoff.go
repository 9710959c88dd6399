package llm

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	defaultRetryMaxDelay  = 10 * time.Second
	defaultRetryBaseDelay = 1 * time.Second
)

// Backoff computes exponential retry delays.
type Backoff struct {
	Base time.Duration
	Max  time.Duration
}

// DefaultBackoff returns the 1s base, 10s cap schedule.
func DefaultBackoff() Backoff {
	return Backoff{Base: defaultRetryBaseDelay, Max: defaultRetryMaxDelay}
}

// Delay returns the wait before the attempt following the 1-based attempt.
// attempt 1 -> base, attempt 2 -> base*2, attempt 3 -> base*4, ...
func (b Backoff) Delay(attempt int) time.Duration {
	if b.Base <= 0 {
		return 0
	}
	if attempt <= 0 {
		attempt = 1
	}
	maxDelay := b.maxDelay()
	delay := b.Base
	for i := 1; i < attempt; i++ {
		if delay > maxDelay/2 {
			delay = maxDelay
			break
		}
		delay *= 2
	}
	return b.Cap(delay)
}

// Cap limits delay to the configured maximum.
func (b Backoff) Cap(delay time.Duration) time.Duration {
	if delay < 0 {
		return 0
	}
	if maxDelay := b.maxDelay(); delay > maxDelay {
		return maxDelay
	}
	return delay
}

func (b Backoff) maxDelay() time.Duration {
	if b.Max > 0 {
		return b.Max
	}
	return defaultRetryMaxDelay
}

// Sleep waits for delay or until ctx is done. A non-nil sleeper replaces the
// timer, which keeps retry tests instant.
func Sleep(ctx context.Context, delay time.Duration, sleeper func(time.Duration)) error {
	if delay <= 0 {
		return nil
	}
	if ctx == nil {
		return errors.New("llm retry: nil context")
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if sleeper != nil {
		sleeper(delay)
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// RetryableStatus reports whether an HTTP status warrants another attempt.
func RetryableStatus(code int) bool {
	return code == http.StatusRequestTimeout ||
		code == http.StatusTooManyRequests ||
		code >= http.StatusInternalServerError
}

// ParseRetryAfter reads a Retry-After header in seconds or HTTP-date form.
func ParseRetryAfter(value string) (time.Duration, bool) {
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
		delay := time.Until(when)
		if delay < 0 {
			return 0, false
		}
		return delay, true
	}
	return 0, false
}
