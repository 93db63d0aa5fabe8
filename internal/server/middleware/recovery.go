package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/fulmenhq/gofulmen/errors"
	"go.uber.org/zap"

	"github.com/lightspeedtech/lightspeed/internal/metrics"
	"github.com/lightspeedtech/lightspeed/internal/observability"
)

// PanicMessage is the only thing a caller learns about a panic.
const PanicMessage = "Internal Server Error"

// Recovery turns a panic in any handler into a logged critical envelope and
// a generic 500 response. The panic value and stack stay in the logs.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}

			requestID := GetRequestID(r.Context())
			envelope := errors.NewErrorEnvelope("INTERNAL_ERROR", PanicMessage).
				WithCorrelationID(requestID)
			if updated, err := envelope.WithSeverity(errors.SeverityCritical); err == nil {
				envelope = updated
			}

			metrics.RecordPanic()
			if observability.ServerLogger != nil {
				observability.ServerLogger.Error("Recovered from panic",
					zap.String("panic", fmt.Sprint(rec)),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.String("requestID", requestID),
					zap.ByteString("stack", debug.Stack()),
				)
			}

			writeErrorResponse(w, envelope, http.StatusInternalServerError)
		}()

		next.ServeHTTP(w, r)
	})
}

// ErrorResponse mirrors the body written by internal/errors. It is duplicated
// here because that package imports this one.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code      string                 `json:"code"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
}

func writeErrorResponse(w http.ResponseWriter, envelope *errors.ErrorEnvelope, statusCode int) {
	response := ErrorResponse{
		Error: ErrorDetail{
			Code:      envelope.Code,
			Message:   envelope.Message,
			RequestID: envelope.CorrelationID,
		},
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(response)
}
