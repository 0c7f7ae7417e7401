// Package resilience provides the backoff policy shared by the research and
// assembly loops. The loops own their retry budgets; this package only
// answers "how long to pause before the next attempt" and sleeps in a
// context-aware way.
package resilience

import (
	"context"
	"math"
	"math/rand/v2"
	"time"
)

// Backoff computes the delay before a retry. attempt is zero-based: the
// delay returned for attempt 0 precedes the second try.
type Backoff interface {
	Delay(attempt int) time.Duration
}

// Fixed returns the same delay for every attempt.
type Fixed time.Duration

func (f Fixed) Delay(int) time.Duration { return time.Duration(f) }

// Exponential grows the delay geometrically with optional jitter.
type Exponential struct {
	// Initial is the base delay before the first retry. Default: 500ms.
	Initial time.Duration

	// Max caps the backoff duration. Default: 30s.
	Max time.Duration

	// Multiplier scales the delay after each attempt. Default: 2.0.
	Multiplier float64

	// JitterFraction adds random jitter as a fraction of the computed delay
	// (0.0 = no jitter, 0.5 = ±50%).
	JitterFraction float64
}

// DefaultExponential returns a sensible exponential policy for API calls.
func DefaultExponential() Exponential {
	return Exponential{
		Initial:        500 * time.Millisecond,
		Max:            30 * time.Second,
		Multiplier:     2.0,
		JitterFraction: 0.25,
	}
}

func (e Exponential) Delay(attempt int) time.Duration {
	initial := e.Initial
	if initial <= 0 {
		initial = 500 * time.Millisecond
	}
	max := e.Max
	if max <= 0 {
		max = 30 * time.Second
	}
	mult := e.Multiplier
	if mult <= 0 {
		mult = 2.0
	}

	delay := float64(initial) * math.Pow(mult, float64(attempt))
	if delay > float64(max) {
		delay = float64(max)
	}

	if e.JitterFraction > 0 {
		jitterRange := delay * e.JitterFraction
		delay += (rand.Float64()*2 - 1) * jitterRange
	}

	if delay < 0 {
		delay = 0
	}
	return time.Duration(delay)
}

// Wait sleeps for d or until ctx is done, whichever comes first. Returns the
// context error when interrupted.
func Wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
