package client

import (
	"math"
	"time"
)

// BackoffConfig configures the reconnection policy applied after an
// unexpected socket closure.
type BackoffConfig struct {
	// BaseDelay is the delay before the first reconnect attempt.
	BaseDelay time.Duration
	// MaxDelay caps the exponentially growing delay.
	MaxDelay time.Duration
	// MaxAttempts is the number of consecutive failed attempts tolerated
	// before reconnection halts with a terminal error event.
	MaxAttempts int
}

// DefaultBackoffConfig returns the default reconnection policy.
func DefaultBackoffConfig() BackoffConfig {
	return BackoffConfig{
		BaseDelay:   time.Second,
		MaxDelay:    30 * time.Second,
		MaxAttempts: 5,
	}
}

// delayFor returns the delay before attempt n (starting at 0):
// BaseDelay * 2^n, capped at MaxDelay.
func (b BackoffConfig) delayFor(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	delay := float64(b.BaseDelay) * math.Pow(2, float64(attempt))
	if delay > float64(b.MaxDelay) {
		return b.MaxDelay
	}
	return time.Duration(delay)
}
