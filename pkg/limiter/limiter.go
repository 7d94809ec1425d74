// Package limiter throttles repeated actions with fixed-window counters in Redis.
package limiter

import (
	"context"
	"time"

	redispkg "github.com/listen-stream/music-svc/pkg/redis"
)

// Counter is the Redis surface the limiters need.
type Counter interface {
	IncrWindow(ctx context.Context, key string, window time.Duration) (int64, error)
	Count(ctx context.Context, key string) (int64, error)
	TTL(ctx context.Context, key string) (time.Duration, error)
	Delete(ctx context.Context, keys ...string) error
}

// Window allows limit hits per key within window.
type Window struct {
	counter Counter
	limit   int64
	window  time.Duration
}

// NewWindow creates a fixed-window limiter.
func NewWindow(counter Counter, limit int64, window time.Duration) *Window {
	return &Window{counter: counter, limit: limit, window: window}
}

// Hit records one hit for key and reports whether it is still within the limit.
func (w *Window) Hit(ctx context.Context, key string) (bool, error) {
	n, err := w.counter.IncrWindow(ctx, key, w.window)
	if err != nil {
		return false, err
	}
	return n <= w.limit, nil
}

// Remaining is how many hits key has left before the window closes.
func (w *Window) Remaining(ctx context.Context, key string) (int64, error) {
	n, err := w.counter.Count(ctx, key)
	if err != nil {
		return 0, err
	}
	return max(w.limit-n, 0), nil
}

// RetryAfter is how long until key's window resets; zero when no window is open.
func (w *Window) RetryAfter(ctx context.Context, key string) (time.Duration, error) {
	ttl, err := w.counter.TTL(ctx, key)
	if err != nil || ttl < 0 {
		return 0, err
	}
	return ttl, nil
}

// Reset closes key's window early.
func (w *Window) Reset(ctx context.Context, key string) error {
	return w.counter.Delete(ctx, key)
}

// LoginLimiter blocks an email after too many failed sign-ins in one window.
type LoginLimiter struct {
	window *Window
}

// NewLoginLimiter allows maxAttempts failures per email per window.
func NewLoginLimiter(counter Counter, maxAttempts int64, window time.Duration) *LoginLimiter {
	return &LoginLimiter{window: NewWindow(counter, maxAttempts, window)}
}

func (l *LoginLimiter) Blocked(ctx context.Context, email string) (bool, error) {
	left, err := l.window.Remaining(ctx, redispkg.LoginAttemptsKey(email))
	if err != nil {
		return false, err
	}
	return left == 0, nil
}

func (l *LoginLimiter) RecordFailure(ctx context.Context, email string) error {
	_, err := l.window.Hit(ctx, redispkg.LoginAttemptsKey(email))
	return err
}

// RetryAfter is how long until email's failure window closes.
func (l *LoginLimiter) RetryAfter(ctx context.Context, email string) (time.Duration, error) {
	return l.window.RetryAfter(ctx, redispkg.LoginAttemptsKey(email))
}

func (l *LoginLimiter) Reset(ctx context.Context, email string) error {
	return l.window.Reset(ctx, redispkg.LoginAttemptsKey(email))
}
