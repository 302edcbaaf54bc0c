package runner

import (
	"context"
	"math"
	"math/rand"
	"time"
)

// Backoff shapes the delay between SSH connect attempts.
type Backoff struct {
	InitialDelay time.Duration
	Multiplier   float64
	MaxDelay     time.Duration
	Jitter       bool
}

func DefaultBackoff() Backoff {
	return Backoff{
		InitialDelay: 250 * time.Millisecond,
		Multiplier:   2.0,
		MaxDelay:     5 * time.Second,
		Jitter:       true,
	}
}

// Delay returns the wait before attempt N (1-based).
func (b Backoff) Delay(attempt int, rng *rand.Rand) time.Duration {
	if attempt <= 1 || b.InitialDelay <= 0 {
		return 0
	}
	mult := b.Multiplier
	if mult < 1.0 {
		mult = 1.0
	}
	delay := float64(b.InitialDelay) * math.Pow(mult, float64(attempt-2))
	if b.MaxDelay > 0 && delay > float64(b.MaxDelay) {
		delay = float64(b.MaxDelay)
	}
	if b.Jitter {
		f := 0.5
		if rng != nil {
			f = 0.5 + rng.Float64()
		}
		delay *= f
	}
	return time.Duration(delay)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
