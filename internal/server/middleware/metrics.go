package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/lightspeedtech/lightspeed/internal/observability"
)

// HTTP metric names.
const (
	HTTPRequestsTotal   = "http_requests_total"
	HTTPRequestDuration = "http_request_duration_ms"
	HTTPRequestSize     = "http_request_size_bytes"
	HTTPResponseSize    = "http_response_size_bytes"
	HTTPErrorsTotal     = "http_errors_total"
)

// responseWriter records the status code and body size.
type responseWriter struct {
	http.ResponseWriter
	statusCode   int
	bytesWritten int64
	wroteHeader  bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.statusCode = code
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	n, err := rw.ResponseWriter.Write(b)
	rw.bytesWritten += int64(n)
	return n, err
}

// getEndpointPattern returns the chi route pattern, or a fixed bucket for
// requests that did not match a route, so labels stay low-cardinality.
func getEndpointPattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}

	path := r.URL.Path
	switch {
	case path == "/health" || strings.HasPrefix(path, "/health/"):
		return "/health/*"
	case path == "/api/chat", path == "/api/contact", path == "/api/whatsapp":
		return path
	case path == "/version", path == "/metrics", path == "/":
		return path
	default:
		return "/unknown"
	}
}

// RequestMetrics emits per-request counters, durations and sizes, and logs
// one line per completed request.
func RequestMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if observability.TelemetrySystem == nil {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		requestSize := r.ContentLength
		if requestSize < 0 {
			requestSize = 0
		}

		next.ServeHTTP(wrapped, r)

		duration := time.Since(start)
		endpoint := getEndpointPattern(r)
		status := strconv.Itoa(wrapped.statusCode)

		labels := map[string]string{
			"method":   r.Method,
			"endpoint": endpoint,
			"status":   status,
		}
		sizeLabels := map[string]string{
			"method":   r.Method,
			"endpoint": endpoint,
		}

		sys := observability.TelemetrySystem
		_ = sys.Counter(HTTPRequestsTotal, 1, labels)
		_ = sys.Histogram(HTTPRequestDuration, duration, labels)
		_ = sys.Gauge(HTTPRequestSize, float64(requestSize), sizeLabels)
		_ = sys.Gauge(HTTPResponseSize, float64(wrapped.bytesWritten), sizeLabels)

		if wrapped.statusCode >= http.StatusBadRequest {
			errorType := "client_error"
			if wrapped.statusCode >= http.StatusInternalServerError {
				errorType = "server_error"
			}
			_ = sys.Counter(HTTPErrorsTotal, 1, map[string]string{
				"method":     r.Method,
				"endpoint":   endpoint,
				"status":     status,
				"error_type": errorType,
			})
		}

		if observability.ServerLogger != nil {
			observability.ServerLogger.Info("HTTP request completed",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("endpoint", endpoint),
				zap.Int("status", wrapped.statusCode),
				zap.Duration("duration", duration),
				zap.Int64("request_size", requestSize),
				zap.Int64("response_size", wrapped.bytesWritten),
				zap.String("requestID", GetRequestID(r.Context())),
			)
		}
	})
}
