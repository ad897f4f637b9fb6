package retry

import (
	"context"
	"math"
	"math/rand"
	"time"
)

// BackoffStrategy computes the delay before retry number attempt (1-based).
type BackoffStrategy interface {
	NextDelay(attempt int) time.Duration
}

// ExponentialBackoff grows the delay by Multiplier per attempt, capped at
// MaxDelay, then spreads it by up to JitterFactor in either direction.
type ExponentialBackoff struct {
	BaseDelay    time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
	JitterFactor float64
}

// DefaultExponentialBackoff is used for transient network and server errors.
func DefaultExponentialBackoff() *ExponentialBackoff {
	return &ExponentialBackoff{BaseDelay: time.Second, MaxDelay: 30 * time.Second, Multiplier: 2, JitterFactor: 0.1}
}

// DefaultRateLimitBackoff is used after a 429; Flickr quotas reset slowly.
func DefaultRateLimitBackoff() *ExponentialBackoff {
	return &ExponentialBackoff{BaseDelay: 10 * time.Second, MaxDelay: 2 * time.Minute, Multiplier: 1.5, JitterFactor: 0.3}
}

func (eb *ExponentialBackoff) NextDelay(attempt int) time.Duration {
	if attempt < 1 {
		return 0
	}

	d := float64(eb.BaseDelay) * math.Pow(eb.Multiplier, float64(attempt-1))
	if limit := float64(eb.MaxDelay); limit > 0 {
		d = math.Min(d, limit)
	}
	return jitter(d, eb.JitterFactor)
}

// jitter returns d moved by a random amount within ±factor*d, never negative.
func jitter(d, factor float64) time.Duration {
	if factor > 0 {
		spread := d * factor
		d += (rand.Float64()*2 - 1) * spread
	}
	return time.Duration(math.Max(d, 0))
}

// ConstantBackoff waits the same Delay before every retry.
type ConstantBackoff struct {
	Delay time.Duration
}

func (cb *ConstantBackoff) NextDelay(attempt int) time.Duration {
	if attempt < 1 {
		return 0
	}
	return cb.Delay
}

// Wait sleeps for delay unless ctx ends first. A non-positive delay only
// reports ctx's state.
func Wait(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return ctx.Err()
	}

	t := time.NewTimer(delay)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
