// Package ailink talks to upstream language-model providers: it builds
// drivers, runs the ordered model fallback, cleans completions and reduces
// every provider failure to a single ErrorKind.
package ailink

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"syscall"

	"github.com/lightspeedtech/lightspeed/internal/ailink/driver"
)

// ErrorKind is the normalized category of an upstream failure.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindRateLimited
	KindModelLoading
	KindAuth
	KindModelNotFound
	KindNetwork
	KindTimeout
	KindEmptyResponse
)

func (k ErrorKind) String() string {
	switch k {
	case KindRateLimited:
		return "rate_limited"
	case KindModelLoading:
		return "model_loading"
	case KindAuth:
		return "auth"
	case KindModelNotFound:
		return "model_not_found"
	case KindNetwork:
		return "network"
	case KindTimeout:
		return "timeout"
	case KindEmptyResponse:
		return "empty_response"
	default:
		return "unknown"
	}
}

var (
	// ErrEmptyCompletion marks a successful call that generated no text.
	ErrEmptyCompletion = errors.New("empty completion")
	// ErrBudgetExhausted is returned when the process-wide upstream budget is spent.
	ErrBudgetExhausted = errors.New("upstream call budget exhausted")
)

// Classify maps an upstream error to an ErrorKind. Checks run in a fixed
// priority order (rate limit, loading, auth, not found, network, timeout) so
// an error carrying several signals lands in the first matching kind.
func Classify(err error) ErrorKind {
	if err == nil {
		return KindUnknown
	}

	var exhausted *ExhaustedError
	if errors.As(err, &exhausted) && len(exhausted.Attempts) > 0 {
		return Classify(exhausted.Last().Err)
	}

	var perr *driver.ProviderError
	hasProvider := errors.As(err, &perr) && perr != nil
	status := 0
	if hasProvider {
		status = perr.StatusCode
	}
	text := strings.ToLower(err.Error())
	if hasProvider {
		text += " " + strings.ToLower(perr.Type)
	}

	switch {
	case errors.Is(err, ErrBudgetExhausted),
		status == http.StatusTooManyRequests,
		containsAny(text, "rate limit", "rate_limit", "too many requests", "quota"):
		return KindRateLimited

	case status == http.StatusServiceUnavailable,
		status == 529,
		containsAny(text, "currently loading", "is loading", "model loading", "overloaded", "unavailable"):
		return KindModelLoading

	case errors.Is(err, driver.ErrMissingAPIKey),
		status == http.StatusUnauthorized,
		status == http.StatusForbidden,
		containsAny(text, "unauthorized", "invalid api key", "invalid x-api-key", "authentication", "permission"):
		return KindAuth

	case status == http.StatusNotFound,
		containsAny(text, "model not found", "not_found", "does not exist", "no such model"):
		return KindModelNotFound

	case isNetwork(err),
		containsAny(text, "connection refused", "connection reset", "no such host", "network"):
		return KindNetwork

	case isTimeout(err),
		status == http.StatusGatewayTimeout,
		status == http.StatusRequestTimeout,
		containsAny(text, "timeout", "timed out", "deadline exceeded"):
		return KindTimeout

	case errors.Is(err, ErrEmptyCompletion):
		return KindEmptyResponse
	}

	return KindUnknown
}

// isNetwork matches transport failures that are not timeouts.
func isNetwork(err error) bool {
	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return !dnsErr.IsTimeout
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return !opErr.Timeout()
	}
	return false
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func containsAny(text string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(text, n) {
			return true
		}
	}
	return false
}
