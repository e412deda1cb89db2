package admission

import (
	"math"
	"time"
)

// RetryConfig configures the retry behavior for ledger operations.
type RetryConfig struct {
	MaxAttempts       int
	BaseDelay         time.Duration
	MaxDelay          time.Duration
	BackoffMultiplier float64
}

// DefaultRetryConfig returns the production retry configuration.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:       3,
		BaseDelay:         200 * time.Millisecond,
		MaxDelay:          5 * time.Second,
		BackoffMultiplier: 2.0,
	}
}

// Retrier re-runs an operation while it reports a transient failure.
// The retry decision is driven by the outcome's status, not by whether
// anything was thrown: an operation that returns TransientFailure as a
// value is retried exactly like one that hit a broken connection.
type Retrier struct {
	config RetryConfig
}

func NewRetrier(config RetryConfig) *Retrier {
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 3
	}
	if config.BaseDelay <= 0 {
		config.BaseDelay = 200 * time.Millisecond
	}
	if config.MaxDelay <= 0 {
		config.MaxDelay = 5 * time.Second
	}
	if config.BackoffMultiplier <= 1.0 {
		config.BackoffMultiplier = 2.0
	}
	return &Retrier{config: config}
}

// Do runs op up to MaxAttempts times. Business outcomes and permanent
// failures return immediately; only transient failures consume attempts.
// After the last attempt the last transient outcome is returned as-is,
// original cause included.
func (r *Retrier) Do(op func() Outcome) Outcome {
	var out Outcome
	for attempt := 1; ; attempt++ {
		out = op()
		if out.Status != StatusTransientFailure {
			return out
		}
		if attempt >= r.config.MaxAttempts {
			return out
		}
		time.Sleep(r.delay(attempt))
	}
}

// delay = BaseDelay * multiplier^(attempt-1), capped at MaxDelay.
func (r *Retrier) delay(attempt int) time.Duration {
	d := float64(r.config.BaseDelay) * math.Pow(r.config.BackoffMultiplier, float64(attempt-1))
	if d > float64(r.config.MaxDelay) {
		return r.config.MaxDelay
	}
	return time.Duration(d)
}
