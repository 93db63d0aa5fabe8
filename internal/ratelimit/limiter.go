// Package ratelimit admits or rejects requests per client key.
//
// Two in-memory algorithms back the public endpoints: a sliding window of
// request timestamps (chat) and a fixed window with a counter (contact). Both
// have Redis twins with the same semantics for deployments that run more than
// one process. Budget is a process-wide token bucket for upstream calls.
package ratelimit

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"
)

// UnknownClient is the shared bucket for requests without a usable address.
const UnknownClient = "unknown"

// Decision is the outcome of a single Allow call.
type Decision struct {
	Allowed bool
	// Remaining is how many more requests the key may make in the current window.
	Remaining int
	// RetryAfter is set on rejection: how long until a request would be admitted.
	RetryAfter time.Duration
}

// Limiter admits or rejects a request for key. An error means the limiter
// could not decide (e.g. its store is unreachable).
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}

// LimiterFunc adapts a function to Limiter.
type LimiterFunc func(ctx context.Context, key string) (Decision, error)

func (f LimiterFunc) Allow(ctx context.Context, key string) (Decision, error) {
	return f(ctx, key)
}

// ClientKey identifies the caller of r. It expects chi's RealIP middleware to
// have replaced RemoteAddr with the forwarded address.
func ClientKey(r *http.Request) string {
	if r == nil {
		return UnknownClient
	}
	addr := strings.TrimSpace(r.RemoteAddr)
	if host, _, err := net.SplitHostPort(addr); err == nil {
		addr = host
	}
	addr = strings.Trim(addr, "[]")
	if addr == "" {
		return UnknownClient
	}
	return addr
}

func normalizeKey(key string) string {
	if strings.TrimSpace(key) == "" {
		return UnknownClient
	}
	return key
}

func nowFrom(clock func() time.Time) time.Time {
	if clock != nil {
		return clock()
	}
	return time.Now()
}
