package errors

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/fulmenhq/gofulmen/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lightspeedtech/lightspeed/internal/metrics"
	"github.com/lightspeedtech/lightspeed/internal/observability"
	"github.com/lightspeedtech/lightspeed/internal/server/middleware"
)

// Error codes carried by envelopes and mapped to HTTP statuses.
const (
	CodeInvalidInput       = "INVALID_INPUT"
	CodeValidationFailed   = "VALIDATION_FAILED"
	CodeNotFound           = "NOT_FOUND"
	CodeMethodNotAllowed   = "METHOD_NOT_ALLOWED"
	CodeRateLimited        = "RATE_LIMITED"
	CodeInternal           = "INTERNAL_ERROR"
	CodeConfigInvalid      = "CONFIG_INVALID"
	CodeExternalService    = "EXTERNAL_SERVICE_ERROR"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	CodeTimeout            = "TIMEOUT"
)

// User errors (400-level)
func NewInvalidInputError(message string) *errors.ErrorEnvelope {
	return errors.NewErrorEnvelope(CodeInvalidInput, message)
}

func NewNotFoundError(message string) *errors.ErrorEnvelope {
	return errors.NewErrorEnvelope(CodeNotFound, message)
}

func NewMethodNotAllowedError(message string) *errors.ErrorEnvelope {
	return errors.NewErrorEnvelope(CodeMethodNotAllowed, message)
}

func NewRateLimitedError(message string) *errors.ErrorEnvelope {
	return errors.NewErrorEnvelope(CodeRateLimited, message)
}

// Server errors (500-level)
func NewInternalError(message string) *errors.ErrorEnvelope {
	return errors.NewErrorEnvelope(CodeInternal, message)
}

func NewConfigInvalidError(message string) *errors.ErrorEnvelope {
	return errors.NewErrorEnvelope(CodeConfigInvalid, message)
}

func NewServiceUnavailableError(message string) *errors.ErrorEnvelope {
	return errors.NewErrorEnvelope(CodeServiceUnavailable, message)
}

// Wrap builds an envelope for code, stamps it with the request's correlation
// ID and keeps err as server-side context. The message is what callers see.
func Wrap(ctx context.Context, code string, err error, message string) *errors.ErrorEnvelope {
	envelope := errors.NewErrorEnvelope(code, message).WithCorrelationID(extractCorrelationID(ctx))
	return withWrappedError(envelope, err)
}

func WrapInvalidInput(ctx context.Context, err error, message string) *errors.ErrorEnvelope {
	return Wrap(ctx, CodeInvalidInput, err, message)
}

func WrapValidationError(ctx context.Context, err error, message string) *errors.ErrorEnvelope {
	return Wrap(ctx, CodeValidationFailed, err, message)
}

// WrapConfigInvalid marks a missing or broken server setting. Severity is high
// so the cause is logged at error level.
func WrapConfigInvalid(ctx context.Context, err error, message string) *errors.ErrorEnvelope {
	envelope := Wrap(ctx, CodeConfigInvalid, err, message)
	if updated, sevErr := envelope.WithSeverity(errors.SeverityHigh); sevErr == nil {
		envelope = updated
	}
	return envelope
}

func WrapInternal(ctx context.Context, err error, message string) *errors.ErrorEnvelope {
	envelope := Wrap(ctx, CodeInternal, err, message)
	if updated, sevErr := envelope.WithSeverity(errors.SeverityHigh); sevErr == nil {
		envelope = updated
	}
	return envelope
}

// WithContext attaches diagnostic fields that are logged but never sent to the caller.
func WithContext(envelope *errors.ErrorEnvelope, fields map[string]interface{}) *errors.ErrorEnvelope {
	if envelope == nil || len(fields) == 0 {
		return envelope
	}
	merged := make(map[string]interface{}, len(envelope.Context)+len(fields))
	for k, v := range envelope.Context {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	updated, err := envelope.WithContext(merged)
	if err != nil {
		return envelope
	}
	return updated
}

// extractCorrelationID gets the request ID from ctx, or a fresh UUID.
func extractCorrelationID(ctx context.Context) string {
	if ctx != nil {
		if requestID := middleware.GetRequestID(ctx); requestID != "" {
			return requestID
		}
	}
	return uuid.New().String()
}

// EnsureEnvelope normalizes any error into a gofulmen ErrorEnvelope.
func EnsureEnvelope(err error) *errors.ErrorEnvelope {
	if err == nil {
		env := errors.NewErrorEnvelope(CodeInternal, "unexpected nil error")
		env, _ = env.WithSeverity(errors.SeverityCritical)
		return env
	}

	if envelope, ok := err.(*errors.ErrorEnvelope); ok && envelope != nil {
		return envelope
	}

	env := errors.NewErrorEnvelope(CodeInternal, "unexpected error")
	env, _ = env.WithContext(map[string]interface{}{
		"wrapped_error": err.Error(),
	})
	env, _ = env.WithSeverity(errors.SeverityHigh)
	return env
}

// EnsureCorrelationID attaches a correlation ID to the envelope using the context when available.
func EnsureCorrelationID(envelope *errors.ErrorEnvelope, ctx context.Context) *errors.ErrorEnvelope {
	if envelope == nil {
		return nil
	}
	if envelope.CorrelationID != "" {
		return envelope
	}

	var correlationID string
	if ctx != nil {
		correlationID = middleware.GetRequestID(ctx)
	}
	if correlationID == "" {
		correlationID = "fallback-" + errors.GenerateCorrelationID()
	}
	return envelope.WithCorrelationID(correlationID)
}

// HTTPStatusFromEnvelope resolves the HTTP status code corresponding to an error envelope.
func HTTPStatusFromEnvelope(envelope *errors.ErrorEnvelope) int {
	if envelope == nil {
		return http.StatusInternalServerError
	}
	return HTTPStatusFromCode(envelope.Code)
}

// HTTPStatusFromCode resolves the HTTP status code corresponding to an error code.
func HTTPStatusFromCode(code string) int {
	switch code {
	case CodeInvalidInput, CodeValidationFailed:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeMethodNotAllowed:
		return http.StatusMethodNotAllowed
	case CodeRateLimited:
		return http.StatusTooManyRequests
	case CodeTimeout:
		return http.StatusGatewayTimeout
	case CodeExternalService:
		return http.StatusBadGateway
	case CodeServiceUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func withWrappedError(envelope *errors.ErrorEnvelope, err error) *errors.ErrorEnvelope {
	if envelope == nil || err == nil {
		return envelope
	}
	return WithContext(envelope, map[string]interface{}{
		"wrapped_error": err.Error(),
	})
}

// ResponseDetails returns the caller-visible details. Envelope context is
// diagnostic and stays in the logs.
func ResponseDetails(envelope *errors.ErrorEnvelope) map[string]interface{} {
	if envelope == nil || len(envelope.Details) == 0 {
		return nil
	}
	details := make(map[string]interface{}, len(envelope.Details))
	for key, value := range envelope.Details {
		details[key] = value
	}
	return details
}

// HTTPErrorDetail captures the error body returned to callers.
type HTTPErrorDetail struct {
	Code      string                 `json:"code"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
}

// HTTPErrorResponse wraps HTTPErrorDetail in the standard envelope structure.
type HTTPErrorResponse struct {
	Error HTTPErrorDetail `json:"error"`
}

// RespondWithError normalizes the supplied error and writes a JSON response.
func RespondWithError(w http.ResponseWriter, r *http.Request, err error) {
	RespondWithEnvelope(w, r, EnsureEnvelope(err))
}

// RespondWithEnvelope finalizes the provided envelope, logging and emitting metrics.
func RespondWithEnvelope(w http.ResponseWriter, r *http.Request, envelope *errors.ErrorEnvelope) {
	if w == nil {
		return
	}

	if r != nil {
		envelope = EnsureCorrelationID(envelope, r.Context())
	} else {
		envelope = EnsureCorrelationID(envelope, nil)
	}

	statusCode := HTTPStatusFromEnvelope(envelope)

	response := HTTPErrorResponse{
		Error: HTTPErrorDetail{
			Code:      envelope.Code,
			Message:   envelope.Message,
			Details:   ResponseDetails(envelope),
			RequestID: envelope.CorrelationID,
		},
	}

	logHTTPError(r, envelope, statusCode)
	emitErrorMetrics(r, envelope, statusCode)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(response)
}

func logHTTPError(r *http.Request, envelope *errors.ErrorEnvelope, statusCode int) {
	if observability.ServerLogger == nil || envelope == nil {
		return
	}

	fields := []zap.Field{
		zap.String("error_code", envelope.Code),
		zap.Int("http_status", statusCode),
	}
	if r != nil {
		fields = append(fields, zap.String("path", r.URL.Path))
	}
	if envelope.Severity != "" {
		fields = append(fields, zap.String("severity", string(envelope.Severity)))
	}
	for key, value := range envelope.Context {
		fields = append(fields, zap.Any(key, value))
	}
	if envelope.CorrelationID != "" {
		fields = append(fields, zap.String("request_id", envelope.CorrelationID))
	}

	switch {
	case envelope.Severity == errors.SeverityCritical, envelope.Severity == errors.SeverityHigh:
		observability.ServerLogger.Error(envelope.Message, fields...)
	case envelope.Severity == errors.SeverityMedium, statusCode >= http.StatusInternalServerError:
		observability.ServerLogger.Warn(envelope.Message, fields...)
	default:
		observability.ServerLogger.Info(envelope.Message, fields...)
	}
}

func emitErrorMetrics(r *http.Request, envelope *errors.ErrorEnvelope, statusCode int) {
	if envelope == nil {
		return
	}

	metrics.RecordError(envelope.Code, statusCode)
	if r != nil {
		metrics.RecordErrorByEndpoint(r.URL.Path, envelope.Code)
	}
}
