package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/lightspeedtech/lightspeed/internal/ailink"
	"github.com/lightspeedtech/lightspeed/internal/chat"
	apperrors "github.com/lightspeedtech/lightspeed/internal/errors"
	"github.com/lightspeedtech/lightspeed/internal/metrics"
	"github.com/lightspeedtech/lightspeed/internal/ratelimit"
)

// DefaultMaxBodyBytes caps request bodies on the public endpoints.
const DefaultMaxBodyBytes = 64 << 10

// ChatResponse is the success body of POST /api/chat.
type ChatResponse struct {
	Message string `json:"message"`
}

// ChatHandler serves POST /api/chat. Rate limiting happens in middleware
// before the body is read.
type ChatHandler struct {
	Service *chat.Service
	// CredentialEnv names the missing variable in misconfiguration logs.
	CredentialEnv string
	MaxBodyBytes  int64
}

func (h *ChatHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	body, err := readBody(w, r, h.MaxBodyBytes)
	if err != nil {
		metrics.RecordChatReply("invalid")
		respondWithError(w, r, apperrors.WrapInvalidInput(ctx, err, "Invalid request body"))
		return
	}

	messages, err := chat.ParseRequest(body)
	if err != nil {
		metrics.RecordChatReply("invalid")
		respondWithError(w, r, apperrors.WrapInvalidInput(ctx, err, "Invalid request body"))
		return
	}

	if !h.Service.Configured() {
		h.misconfigured(w, r, chat.ErrNotConfigured)
		return
	}

	result, err := h.Service.Reply(ctx, messages)
	if err != nil {
		if errors.Is(err, chat.ErrNotConfigured) {
			h.misconfigured(w, r, err)
			return
		}

		kind := ailink.Classify(err)
		_, code, message := chat.Outcome(kind)
		metrics.RecordChatReply(kind.String())

		envelope := apperrors.Wrap(ctx, code, err, message)
		fields := map[string]interface{}{
			"error_kind": kind.String(),
			"client":     ratelimit.ClientKey(r),
		}
		if result != nil {
			tried := make([]string, 0, len(result.Attempts))
			for _, a := range result.Attempts {
				tried = append(tried, a.Candidate+":"+a.Kind.String())
			}
			fields["attempts"] = tried
		}
		respondWithError(w, r, apperrors.WithContext(envelope, fields))
		return
	}

	metrics.RecordChatReply("ok")
	writeJSON(w, http.StatusOK, ChatResponse{Message: result.Text})
}

func (h *ChatHandler) misconfigured(w http.ResponseWriter, r *http.Request, err error) {
	metrics.RecordChatReply("not_configured")
	envelope := apperrors.WrapConfigInvalid(r.Context(), err, "Server configuration error")
	envelope = apperrors.WithContext(envelope, map[string]interface{}{
		"missing_env": h.CredentialEnv,
	})
	respondWithError(w, r, envelope)
}

func readBody(w http.ResponseWriter, r *http.Request, limit int64) ([]byte, error) {
	if limit <= 0 {
		limit = DefaultMaxBodyBytes
	}
	defer r.Body.Close() // nolint:errcheck // best-effort cleanup
	return io.ReadAll(http.MaxBytesReader(w, r.Body, limit))
}
