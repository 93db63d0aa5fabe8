package chat

import (
	"net/http"

	"github.com/lightspeedtech/lightspeed/internal/ailink"
	apperrors "github.com/lightspeedtech/lightspeed/internal/errors"
)

// User-facing messages. Upstream details never reach the visitor.
const (
	MessageRateLimited   = "You're sending too many messages. Please wait a moment and try again."
	MessageModelLoading  = "Our assistant is waking up. Please try again in a few seconds."
	MessageMisconfigured = "The assistant is temporarily misconfigured. Please contact us directly."
	MessageTimeout       = "The assistant took too long to respond. Please try again."
	MessageUnavailable   = "Sorry, I'm having trouble responding right now. Please try again shortly or contact us directly."
)

// Outcome maps a classified upstream failure to the HTTP status, error code
// and message returned to the visitor.
func Outcome(kind ailink.ErrorKind) (status int, code, message string) {
	switch kind {
	case ailink.KindRateLimited:
		return http.StatusTooManyRequests, apperrors.CodeRateLimited, MessageRateLimited
	case ailink.KindModelLoading:
		return http.StatusServiceUnavailable, apperrors.CodeServiceUnavailable, MessageModelLoading
	case ailink.KindAuth:
		return http.StatusInternalServerError, apperrors.CodeConfigInvalid, MessageMisconfigured
	case ailink.KindTimeout:
		return http.StatusGatewayTimeout, apperrors.CodeTimeout, MessageTimeout
	default:
		return http.StatusServiceUnavailable, apperrors.CodeServiceUnavailable, MessageUnavailable
	}
}
