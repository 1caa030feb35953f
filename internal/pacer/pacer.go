// Package pacer spaces outbound requests at a fixed minimum interval.
//
// Pacing lives outside the fetch loop so every caller sharing a Pacer shares
// the same budget, whether it issues requests sequentially or from a pool.
package pacer

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Pacer blocks until the next request may be sent.
type Pacer interface {
	Wait(ctx context.Context) error
}

// New returns a token bucket with burst 1 refilled once per interval.
// The first Wait returns immediately; later ones are spaced by interval.
// A non-positive interval disables pacing.
func New(interval time.Duration) Pacer {
	if interval <= 0 {
		return Unlimited()
	}
	return rate.NewLimiter(rate.Every(interval), 1)
}

// Unlimited returns a Pacer that never blocks.
func Unlimited() Pacer {
	return rate.NewLimiter(rate.Inf, 1)
}
