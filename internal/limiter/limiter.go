// Package limiter throttles repeated failed sign-ins for one account from one client.
package limiter

import (
	"context"
	"time"
)

// Limiter controls sign-in attempts and temporary lockouts.
type Limiter interface {
	// Allow reports whether sign-in is currently allowed and optional retry-after.
	Allow(ctx context.Context, email string, client []byte) (bool, time.Duration, error)
	// Success resets counters after a successful sign-in.
	Success(ctx context.Context, email string, client []byte) error
	// Failure records a failed attempt; may place a temporary block.
	Failure(ctx context.Context, email string, client []byte) (bool, time.Duration, error)
}

// Noop never blocks. Used when throttling is disabled.
type Noop struct{}

// Allow always allows.
func (Noop) Allow(context.Context, string, []byte) (bool, time.Duration, error) { return true, 0, nil }

// Success does nothing.
func (Noop) Success(context.Context, string, []byte) error { return nil }

// Failure never blocks.
func (Noop) Failure(context.Context, string, []byte) (bool, time.Duration, error) {
	return false, 0, nil
}
