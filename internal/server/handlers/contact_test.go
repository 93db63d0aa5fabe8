package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lightspeedtech/lightspeed/internal/contact"
	apperrors "github.com/lightspeedtech/lightspeed/internal/errors"
	"github.com/lightspeedtech/lightspeed/internal/mailer"
)

type fakeMailer struct {
	sent []mailer.Email
	err  error
	key  string
}

func (m *fakeMailer) HasCredential() bool { return m.key != "" }

func (m *fakeMailer) Send(_ context.Context, email mailer.Email) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, email)
	return nil
}

const validContact = `{"name":"Jane Mwangi","email":"jane@example.com","service":"Cloud Hosting","message":"Please quote hosting for our booking platform."}`

func contactHandlerFor(m *fakeMailer) *ContactHandler {
	return &ContactHandler{Service: &contact.Service{
		Mailer: m,
		From:   "Lightspeed Contact <onboarding@resend.dev>",
		To:     []string{"hello@lightspeed.tech"},
	}}
}

func postContact(h http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(body))
	req.RemoteAddr = "203.0.113.7:40000"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestContactHandlerSends(t *testing.T) {
	m := &fakeMailer{key: "re_test"}
	rec := postContact(contactHandlerFor(m), validContact)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp ContactResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, ContactResponse{Success: true, Message: "Message sent successfully"}, resp)

	require.Len(t, m.sent, 1)
	assert.Contains(t, m.sent[0].HTML, "Not provided")
	assert.Contains(t, m.sent[0].HTML, "IP: 203.0.113.7")
}

func TestContactHandlerHoneypot(t *testing.T) {
	m := &fakeMailer{key: "re_test"}
	body := strings.TrimSuffix(validContact, "}") + `,"_honey":"gotcha"}`
	rec := postContact(contactHandlerFor(m), body)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"message":"Message sent"}`, rec.Body.String())
	assert.Empty(t, m.sent)
}

func TestContactHandlerInvalid(t *testing.T) {
	m := &fakeMailer{key: "re_test"}
	for _, body := range []string{`{`, `{"name":"J"}`, `{"name":"Jane","email":"jane@example.com","service":"x","message":"short"}`} {
		rec := postContact(contactHandlerFor(m), body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)

		var resp apperrors.HTTPErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "Invalid form data", resp.Error.Message)
	}
	assert.Empty(t, m.sent)
}

func TestContactHandlerMissingKey(t *testing.T) {
	rec := postContact(contactHandlerFor(&fakeMailer{}), validContact)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Server configuration error")
}

func TestContactHandlerProviderFailure(t *testing.T) {
	m := &fakeMailer{key: "re_test", err: &mailer.ProviderError{Provider: "resend", StatusCode: http.StatusForbidden, Message: "domain not verified"}}
	rec := postContact(contactHandlerFor(m), validContact)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Failed to send email")
	assert.NotContains(t, rec.Body.String(), "domain not verified")
}
