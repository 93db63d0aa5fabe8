// Package mailer sends transactional email through an HTTP provider.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// ErrMissingAPIKey is returned by providers constructed without a credential.
var ErrMissingAPIKey = errors.New("mail provider api key is required")

// Email is one outgoing message.
type Email struct {
	From    string
	To      []string
	Subject string
	HTML    string
	ReplyTo string
}

// Mailer delivers an Email.
type Mailer interface {
	Send(ctx context.Context, email Email) error
}

// CredentialChecker is implemented by mailers that can tell whether they were
// given an API key.
type CredentialChecker interface {
	HasCredential() bool
}

// HasCredential reports whether m can authenticate. Mailers that do not
// implement CredentialChecker are assumed to be ready.
func HasCredential(m Mailer) bool {
	if m == nil {
		return false
	}
	if checker, ok := m.(CredentialChecker); ok {
		return checker.HasCredential()
	}
	return true
}

// ProviderError is returned when the provider answers with a non-2xx status.
type ProviderError struct {
	Provider   string
	StatusCode int
	Message    string
	Body       []byte
}

func (e *ProviderError) Error() string {
	if e == nil {
		return "mail provider error"
	}
	return fmt.Sprintf("%s send failed: status %d: %s", e.Provider, e.StatusCode, e.Message)
}

// Temporary reports whether retrying the same message might succeed.
func (e *ProviderError) Temporary() bool {
	if e == nil {
		return false
	}
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= http.StatusInternalServerError
}

// Validate checks the fields every provider requires.
func (e Email) Validate() error {
	switch {
	case e.From == "":
		return errors.New("email: from is required")
	case len(e.To) == 0:
		return errors.New("email: at least one recipient is required")
	case e.Subject == "":
		return errors.New("email: subject is required")
	}
	return nil
}
