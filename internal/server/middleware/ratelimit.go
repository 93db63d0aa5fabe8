package middleware

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/lightspeedtech/lightspeed/internal/metrics"
	"github.com/lightspeedtech/lightspeed/internal/observability"
	"github.com/lightspeedtech/lightspeed/internal/ratelimit"
)

// RejectFunc writes the response for a rejected request.
type RejectFunc func(w http.ResponseWriter, r *http.Request, decision ratelimit.Decision)

// RateLimit admits requests through limiter, keyed by client address. It runs
// before the handler reads the body. Rejections get a Retry-After header and
// are answered by reject. When the limiter itself fails the request is let
// through and the failure is logged.
func RateLimit(name string, limiter ratelimit.Limiter, reject RejectFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limiter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := ratelimit.ClientKey(r)
			decision, err := limiter.Allow(r.Context(), key)
			if err != nil {
				if observability.ServerLogger != nil {
					observability.ServerLogger.Error("Rate limiter unavailable, allowing request",
						zap.String("limiter", name),
						zap.String("client", key),
						zap.String("requestID", GetRequestID(r.Context())),
						zap.Error(err),
					)
				}
				next.ServeHTTP(w, r)
				return
			}

			metrics.RecordRateLimit(name, decision.Allowed)
			if decision.Allowed {
				next.ServeHTTP(w, r)
				return
			}

			if secs := RetryAfterSeconds(decision.RetryAfter); secs > 0 {
				w.Header().Set("Retry-After", strconv.Itoa(secs))
			}
			if observability.ServerLogger != nil {
				observability.ServerLogger.Info("Request rate limited",
					zap.String("limiter", name),
					zap.String("client", key),
					zap.Duration("retry_after", decision.RetryAfter),
					zap.String("requestID", GetRequestID(r.Context())),
				)
			}
			reject(w, r, decision)
		})
	}
}

// RetryAfterSeconds rounds d up to whole seconds.
func RetryAfterSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d.Seconds()))
}
