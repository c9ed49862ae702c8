// Package resilience provides rate limiting for outbound calls.
package resilience

import (
	"context"
	"errors"
	"time"

	"golang.org/x/time/rate"
)

var ErrRateLimited = errors.New("rate limited")

// Limiter wraps a token bucket limiter for polite outbound fetching.
type Limiter struct {
	l *rate.Limiter
}

// NewLimiter creates a limiter that refills perSecond tokens per second
// with the given burst capacity. perSecond <= 0 disables limiting.
func NewLimiter(perSecond float64, burst int) *Limiter {
	if perSecond <= 0 {
		return &Limiter{l: rate.NewLimiter(rate.Inf, 1)}
	}
	if burst <= 0 {
		burst = 1
	}
	return &Limiter{l: rate.NewLimiter(rate.Limit(perSecond), burst)}
}

// Wait blocks until a token is available or ctx is cancelled.
func (l *Limiter) Wait(ctx context.Context) error {
	return l.l.Wait(ctx)
}

// Allow reports whether a token is available without blocking.
func (l *Limiter) Allow() bool {
	return l.l.Allow()
}

// Call executes f if a token is immediately available, otherwise
// returns ErrRateLimited.
func (l *Limiter) Call(ctx context.Context, f func(context.Context) error) error {
	if !l.Allow() {
		return ErrRateLimited
	}
	return f(ctx)
}

// Reserve returns the delay before the next token becomes available.
func (l *Limiter) Reserve() time.Duration {
	r := l.l.Reserve()
	if !r.OK() {
		return 0
	}
	return r.Delay()
}
