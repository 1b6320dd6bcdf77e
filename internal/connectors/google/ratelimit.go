package google

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate.
	RequestsPerSecond float64
	// BurstSize is the maximum burst.
	BurstSize int
}

// DefaultCalendarRateLimit is well below Google's per-user Calendar quota.
var DefaultCalendarRateLimit = RateLimitConfig{RequestsPerSecond: 5.0, BurstSize: 10}

// defaultBackoff is used when a 429 carries no Retry-After.
const defaultBackoff = 60 * time.Second

// RateLimiter spaces out Calendar API calls with a token bucket and pauses
// all of them after a 429 until the requested backoff has passed.
type RateLimiter struct {
	limiter *rate.Limiter
	now     func() time.Time

	mu      sync.Mutex
	retryAt time.Time
}

// NewRateLimiter creates a rate limiter with the given configuration.
// A non-positive rate falls back to DefaultCalendarRateLimit.
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	if cfg.RequestsPerSecond <= 0 {
		cfg = DefaultCalendarRateLimit
	}
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), max(cfg.BurstSize, 1)),
		now:     time.Now,
	}
}

// Wait blocks until the backoff, if any, is over and a token is available.
func (r *RateLimiter) Wait(ctx context.Context) error {
	if wait := r.backoff(); wait > 0 {
		timer := time.NewTimer(wait)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}
	return r.limiter.Wait(ctx)
}

// Allow reports whether a call may be made now, consuming a token if so.
func (r *RateLimiter) Allow() bool {
	return r.backoff() <= 0 && r.limiter.Allow()
}

// Observe starts a backoff when err is a rate limit response. It reports
// whether it did.
func (r *RateLimiter) Observe(err error) bool {
	if !IsRateLimited(err) {
		return false
	}
	r.RecordRateLimitError(RetryAfter(err))
	return true
}

// RecordRateLimitError pauses calls for retryAfter, or defaultBackoff when
// it is not positive. An earlier, longer backoff is kept.
func (r *RateLimiter) RecordRateLimitError(retryAfter time.Duration) {
	if retryAfter <= 0 {
		retryAfter = defaultBackoff
	}
	until := r.now().Add(retryAfter)

	r.mu.Lock()
	defer r.mu.Unlock()
	if until.After(r.retryAt) {
		r.retryAt = until
	}
}

func (r *RateLimiter) backoff() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.retryAt.Sub(r.now())
}
