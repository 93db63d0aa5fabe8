package mailer

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type flakyMailer struct {
	errs  []error
	calls int
}

func (m *flakyMailer) Send(context.Context, Email) error {
	m.calls++
	if m.calls <= len(m.errs) {
		return m.errs[m.calls-1]
	}
	return nil
}

func testEmail() Email {
	return Email{From: "a@example.com", To: []string{"b@example.com"}, Subject: "hi", HTML: "<p>hi</p>"}
}

func TestRetryingRecoversFromServerErrors(t *testing.T) {
	inner := &flakyMailer{errs: []error{
		&ProviderError{Provider: "test", StatusCode: http.StatusBadGateway},
		errors.New("connection reset"),
	}}
	r := &Retrying{Mailer: inner, MaxRetries: 2, InitialInterval: time.Millisecond}

	require.NoError(t, r.Send(context.Background(), testEmail()))
	assert.Equal(t, 3, inner.calls)
}

func TestRetryingGivesUpAfterMaxRetries(t *testing.T) {
	failure := &ProviderError{Provider: "test", StatusCode: http.StatusServiceUnavailable}
	inner := &flakyMailer{errs: []error{failure, failure, failure, failure}}
	r := &Retrying{Mailer: inner, MaxRetries: 2, InitialInterval: time.Millisecond}

	err := r.Send(context.Background(), testEmail())
	require.Error(t, err)
	assert.Equal(t, 3, inner.calls)

	var perr *ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, http.StatusServiceUnavailable, perr.StatusCode)
}

func TestRetryingDoesNotRetryClientErrors(t *testing.T) {
	inner := &flakyMailer{errs: []error{&ProviderError{Provider: "test", StatusCode: http.StatusUnprocessableEntity}}}
	r := &Retrying{Mailer: inner, MaxRetries: 3, InitialInterval: time.Millisecond}

	require.Error(t, r.Send(context.Background(), testEmail()))
	assert.Equal(t, 1, inner.calls)

	inner = &flakyMailer{errs: []error{ErrMissingAPIKey}}
	r.Mailer = inner
	require.ErrorIs(t, r.Send(context.Background(), testEmail()), ErrMissingAPIKey)
	assert.Equal(t, 1, inner.calls)
}

func TestRetryingRetriesRateLimit(t *testing.T) {
	inner := &flakyMailer{errs: []error{&ProviderError{Provider: "test", StatusCode: http.StatusTooManyRequests}}}
	r := &Retrying{Mailer: inner, MaxRetries: 1, InitialInterval: time.Millisecond}

	require.NoError(t, r.Send(context.Background(), testEmail()))
	assert.Equal(t, 2, inner.calls)
}

func TestRetryingWithoutRetries(t *testing.T) {
	inner := &flakyMailer{errs: []error{errors.New("boom")}}
	r := &Retrying{Mailer: inner}

	require.Error(t, r.Send(context.Background(), testEmail()))
	assert.Equal(t, 1, inner.calls)
}

func TestEmailValidate(t *testing.T) {
	assert.NoError(t, testEmail().Validate())

	e := testEmail()
	e.To = nil
	assert.Error(t, e.Validate())

	e = testEmail()
	e.From = ""
	assert.Error(t, e.Validate())
}

type keyedMailer struct {
	flakyMailer
	key string
}

func (m *keyedMailer) HasCredential() bool { return m.key != "" }

func TestHasCredential(t *testing.T) {
	assert.False(t, HasCredential(nil))
	assert.True(t, HasCredential(&flakyMailer{}))
	assert.False(t, HasCredential(&keyedMailer{}))
	assert.True(t, (&Retrying{Mailer: &keyedMailer{key: "re_x"}}).HasCredential())
	assert.False(t, (&Retrying{Mailer: &keyedMailer{}}).HasCredential())
}
