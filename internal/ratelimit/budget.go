package ratelimit

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Budget is a process-wide token bucket shared by every caller. It caps how
// often the server calls a paid upstream, independent of per-client limits.
// A nil Budget admits everything.
type Budget struct {
	limiter *rate.Limiter
	clock   func() time.Time
}

// NewBudget returns a Budget refilling rps tokens per second up to burst.
// It returns nil (unlimited) when rps <= 0.
func NewBudget(rps float64, burst int) *Budget {
	if rps <= 0 {
		return nil
	}
	if burst < 1 {
		burst = 1
	}
	return &Budget{limiter: rate.NewLimiter(rate.Limit(rps), burst)}
}

// Allow takes one token if available. The key is ignored.
func (b *Budget) Allow(_ context.Context, _ string) (Decision, error) {
	if b == nil || b.limiter == nil {
		return Decision{Allowed: true, Remaining: -1}, nil
	}

	now := nowFrom(b.clock)
	reservation := b.limiter.ReserveN(now, 1)
	if !reservation.OK() {
		return Decision{Allowed: false, RetryAfter: time.Second}, nil
	}
	if delay := reservation.DelayFrom(now); delay > 0 {
		reservation.CancelAt(now)
		return Decision{Allowed: false, RetryAfter: delay}, nil
	}
	return Decision{Allowed: true, Remaining: int(b.limiter.TokensAt(now))}, nil
}
