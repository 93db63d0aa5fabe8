package handlers

import (
	"errors"
	"net/http"

	"github.com/lightspeedtech/lightspeed/internal/contact"
	apperrors "github.com/lightspeedtech/lightspeed/internal/errors"
	"github.com/lightspeedtech/lightspeed/internal/metrics"
	"github.com/lightspeedtech/lightspeed/internal/ratelimit"
)

// ContactResponse is the success body of POST /api/contact.
type ContactResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ContactHandler serves POST /api/contact.
type ContactHandler struct {
	Service      *contact.Service
	MaxBodyBytes int64
}

func (h *ContactHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	body, err := readBody(w, r, h.MaxBodyBytes)
	if err != nil {
		metrics.RecordContactSubmission("invalid")
		respondWithError(w, r, apperrors.WrapInvalidInput(ctx, err, "Invalid form data"))
		return
	}

	sub, err := contact.Decode(body)
	if err != nil {
		metrics.RecordContactSubmission("invalid")
		respondWithError(w, r, apperrors.WrapInvalidInput(ctx, err, "Invalid form data"))
		return
	}

	ip := ratelimit.ClientKey(r)
	result, err := h.Service.Submit(ctx, sub, ip)
	switch {
	case err == nil:
	case errors.Is(err, contact.ErrInvalid):
		respondWithError(w, r, apperrors.WrapValidationError(ctx, err, "Invalid form data"))
		return
	case errors.Is(err, contact.ErrNotConfigured):
		envelope := apperrors.WrapConfigInvalid(ctx, err, "Server configuration error")
		respondWithError(w, r, apperrors.WithContext(envelope, map[string]interface{}{
			"missing_setting": h.Service.MissingSetting(),
		}))
		return
	case errors.Is(err, contact.ErrSendFailed):
		envelope := apperrors.WrapInternal(ctx, err, "Failed to send email")
		respondWithError(w, r, apperrors.WithContext(envelope, map[string]interface{}{"client": ip}))
		return
	default:
		respondWithError(w, r, apperrors.WrapInternal(ctx, err, "Internal Server Error"))
		return
	}

	if result.Spam {
		writeJSON(w, http.StatusOK, ContactResponse{Success: true, Message: "Message sent"})
		return
	}
	writeJSON(w, http.StatusOK, ContactResponse{Success: true, Message: "Message sent successfully"})
}
