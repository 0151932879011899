package superposition

import (
	"fmt"
	"time"
)

const (
	defaultDrainSpins     = 64
	defaultBackoffInitial = time.Microsecond
	defaultBackoffMax     = time.Millisecond
)

// Option configures a [Register] built by [New].
type Option func(*options)

type options struct {
	drainSpins     int
	backoffInitial time.Duration
	backoffMax     time.Duration
	drainTimeout   time.Duration
}

func defaultOptions() options {
	return options{
		drainSpins:     defaultDrainSpins,
		backoffInitial: defaultBackoffInitial,
		backoffMax:     defaultBackoffMax,
	}
}

// WithDrainSpins sets how many times the drain wait yields the processor
// before it starts sleeping. Zero skips straight to backoff.
func WithDrainSpins(n int) Option {
	return func(o *options) { o.drainSpins = n }
}

// WithDrainBackoff sets the first and the largest sleep of the drain wait.
// The delay doubles after every sleep until it reaches maxDelay.
func WithDrainBackoff(initial, maxDelay time.Duration) Option {
	return func(o *options) {
		o.backoffInitial = initial
		o.backoffMax = maxDelay
	}
}

// WithDrainTimeout caps the drain wait. When a back slot still has readers
// after d, Publish fails with [ErrCorrupted] and the register is poisoned.
// Zero (the default) waits forever.
func WithDrainTimeout(d time.Duration) Option {
	return func(o *options) { o.drainTimeout = d }
}

func (o options) validate() error {
	if o.drainSpins < 0 {
		return fmt.Errorf("%w: drain spins must be >= 0, got %d", ErrConfiguration, o.drainSpins)
	}

	if o.backoffInitial <= 0 {
		return fmt.Errorf("%w: initial drain backoff must be > 0, got %s", ErrConfiguration, o.backoffInitial)
	}

	if o.backoffMax < o.backoffInitial {
		return fmt.Errorf("%w: max drain backoff %s is below initial %s", ErrConfiguration, o.backoffMax, o.backoffInitial)
	}

	if o.drainTimeout < 0 {
		return fmt.Errorf("%w: drain timeout must be >= 0, got %s", ErrConfiguration, o.drainTimeout)
	}

	return nil
}

// nextBackoff doubles delay, capped at maxDelay.
func nextBackoff(delay, maxDelay time.Duration) time.Duration {
	delay *= 2
	if delay > maxDelay {
		return maxDelay
	}

	return delay
}
