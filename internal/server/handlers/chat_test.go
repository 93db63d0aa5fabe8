package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lightspeedtech/lightspeed/internal/ailink/driver/anthropic"
	"github.com/lightspeedtech/lightspeed/internal/chat"
	apperrors "github.com/lightspeedtech/lightspeed/internal/errors"
)

type upstream struct {
	calls  atomic.Int32
	models []string
	server *httptest.Server
}

// newUpstream fakes the Messages API; respond decides the reply per model.
func newUpstream(t *testing.T, respond func(model string) (int, string)) *upstream {
	t.Helper()
	u := &upstream{}
	u.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u.calls.Add(1)
		var req struct {
			Model string `json:"model"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		u.models = append(u.models, req.Model)

		status, body := respond(req.Model)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(u.server.Close)
	return u
}

func chatHandlerFor(u *upstream, apiKey string, models ...string) *ChatHandler {
	return &ChatHandler{
		Service: &chat.Service{
			Driver: anthropic.NewClient(u.server.URL, apiKey),
			Models: models,
		},
		CredentialEnv: "ANTHROPIC_API_KEY",
	}
}

func postChat(h http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) apperrors.HTTPErrorDetail {
	t.Helper()
	var resp apperrors.HTTPErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Error
}

func TestChatHandlerSuccess(t *testing.T) {
	u := newUpstream(t, func(string) (int, string) {
		return http.StatusOK, `{"content":[{"type":"text","text":"We design networks."}],"stop_reason":"end_turn"}`
	})

	rec := postChat(chatHandlerFor(u, "sk-test", "claude-3-5-sonnet-20240620"),
		`{"messages":[{"sender":"user","text":"What do you do?"}]}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp ChatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "We design networks.", resp.Message)
}

func TestChatHandlerRejectsMalformedBodyWithoutUpstreamCall(t *testing.T) {
	u := newUpstream(t, func(string) (int, string) { return http.StatusOK, `{}` })
	h := chatHandlerFor(u, "sk-test", "m")

	for _, body := range []string{`{`, `{"messages":"hello"}`, `{"text":"hi"}`} {
		rec := postChat(h, body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.Equal(t, apperrors.CodeInvalidInput, decodeError(t, rec).Code)
	}
	assert.Zero(t, u.calls.Load())
}

func TestChatHandlerMissingCredential(t *testing.T) {
	u := newUpstream(t, func(string) (int, string) { return http.StatusOK, `{}` })

	rec := postChat(chatHandlerFor(u, "", "m"), `{"messages":[{"sender":"user","text":"hi"}]}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	detail := decodeError(t, rec)
	assert.Equal(t, apperrors.CodeConfigInvalid, detail.Code)
	assert.Equal(t, "Server configuration error", detail.Message)
	assert.NotContains(t, rec.Body.String(), "ANTHROPIC_API_KEY")
	assert.Zero(t, u.calls.Load())
}

func TestChatHandlerModelLoadingIs503(t *testing.T) {
	u := newUpstream(t, func(model string) (int, string) {
		return http.StatusServiceUnavailable, `{"error":"Model ` + model + ` is currently loading"}`
	})

	rec := postChat(chatHandlerFor(u, "sk-test", "m"), `{"messages":[{"sender":"user","text":"hi"}]}`)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	detail := decodeError(t, rec)
	assert.Equal(t, chat.MessageModelLoading, detail.Message)
	assert.NotContains(t, rec.Body.String(), "currently loading", "provider text stays server-side")
}

func TestChatHandlerFallbackUsesLastFailure(t *testing.T) {
	u := newUpstream(t, func(model string) (int, string) {
		switch model {
		case "first":
			return http.StatusServiceUnavailable, `{"error":"Model first is currently loading"}`
		case "second":
			return http.StatusNotFound, `{"error":{"type":"not_found_error","message":"model: second"}}`
		default:
			return http.StatusUnauthorized, `{"error":{"type":"authentication_error","message":"invalid x-api-key"}}`
		}
	})

	rec := postChat(chatHandlerFor(u, "sk-test", "first", "second", "third"),
		`{"messages":[{"sender":"user","text":"hi"}]}`)

	assert.Equal(t, []string{"first", "second", "third"}, u.models)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, chat.MessageMisconfigured, decodeError(t, rec).Message)
}

func TestChatHandlerFallbackRecovers(t *testing.T) {
	u := newUpstream(t, func(model string) (int, string) {
		if model == "first" {
			return http.StatusTooManyRequests, `{"error":{"type":"rate_limit_error","message":"rate limited"}}`
		}
		return http.StatusOK, `{"content":[{"type":"text","text":"Hello from second"}]}`
	})

	rec := postChat(chatHandlerFor(u, "sk-test", "first", "second"),
		`{"messages":[{"sender":"user","text":"hi"}]}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Hello from second")
	assert.EqualValues(t, 2, u.calls.Load())
}
