package notifier

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitConfig holds outbound throttle configuration.
type RateLimitConfig struct {
	MaxPerWindow int           // Maximum emails per window (default: 10)
	Window       time.Duration // Time window (default: 1 minute)
	Enabled      bool          // Whether throttling is enabled (default: true)
}

// DefaultRateLimitConfig returns default rate limit settings.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		MaxPerWindow: 10,
		Window:       time.Minute,
		Enabled:      true,
	}
}

// ThrottledSender waits for a token before each send so a burst of
// submissions cannot exhaust the provider quota.
type ThrottledSender struct {
	next    Sender
	limiter *rate.Limiter
	waited  atomic.Int64
}

// NewThrottledSender wraps next. A disabled config returns next unchanged.
func NewThrottledSender(next Sender, config RateLimitConfig) Sender {
	if !config.Enabled {
		return next
	}
	if config.MaxPerWindow <= 0 {
		config.MaxPerWindow = 10
	}
	if config.Window <= 0 {
		config.Window = time.Minute
	}

	every := rate.Every(config.Window / time.Duration(config.MaxPerWindow))
	return &ThrottledSender{
		next:    next,
		limiter: rate.NewLimiter(every, config.MaxPerWindow),
	}
}

// Name returns the wrapped provider name.
func (t *ThrottledSender) Name() string {
	return t.next.Name()
}

// Send blocks until a token is free or ctx ends.
func (t *ThrottledSender) Send(ctx context.Context, msg *Message) error {
	if !t.limiter.Allow() {
		t.waited.Add(1)
		if err := t.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("throttle %s: %w", t.next.Name(), err)
		}
	}
	return t.next.Send(ctx, msg)
}

// Waited returns how many sends had to wait for a token.
func (t *ThrottledSender) Waited() int64 {
	return t.waited.Load()
}

// Close closes the wrapped sender.
func (t *ThrottledSender) Close() error {
	return t.next.Close()
}
