// Package contact validates contact-form submissions and forwards them to
// the site owner by email.
package contact

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/lightspeedtech/lightspeed/internal/mailer"
	"github.com/lightspeedtech/lightspeed/internal/metrics"
	"github.com/lightspeedtech/lightspeed/internal/observability"
)

// DefaultSubjectPrefix precedes the selected service in the email subject.
const DefaultSubjectPrefix = "New Contact Form"

var (
	// ErrInvalid wraps decoding and validation failures.
	ErrInvalid = errors.New("invalid form data")

	// ErrNotConfigured means a setting needed for delivery is missing; the
	// wrapped message names it (see Service.MissingSetting).
	ErrNotConfigured = errors.New("contact mail is not configured")

	// ErrSendFailed wraps mail provider failures.
	ErrSendFailed = errors.New("failed to send email")
)

// Submission is the contact form payload. Honey is the hidden honeypot
// field; people leave it empty.
type Submission struct {
	Name    string `json:"name" validate:"required,min=2"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone,omitempty"`
	Service string `json:"service" validate:"required"`
	Message string `json:"message" validate:"required,min=20,max=1000"`
	Honey   string `json:"_honey,omitempty"`
}

// Result reports how a valid submission was handled.
type Result struct {
	// Spam is set when the honeypot was filled; no email is sent.
	Spam bool
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Decode parses a JSON body into a Submission. Fields of the wrong type are
// reported as ErrInvalid.
func Decode(body []byte) (Submission, error) {
	var sub Submission
	if err := json.Unmarshal(body, &sub); err != nil {
		return Submission{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return sub, nil
}

// Validate checks the submission against the form rules.
func (s Submission) Validate() error {
	if err := validate.Struct(s); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s(%s)", fe.Field(), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(fields, ", "))
		}
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

// Service forwards submissions through a Mailer.
type Service struct {
	Mailer        mailer.Mailer
	From          string
	To            []string
	SubjectPrefix string
	// Site names the sending site in the email footer.
	Site string
}

// Settings named by MissingSetting.
const (
	SettingMailCredential = "RESEND_API_KEY"
	SettingRecipients     = "CONTACT_EMAIL"
	SettingFrom           = "mail.from"
)

// MissingSetting names the first setting that keeps submissions from being
// delivered, or returns "" when the service is ready.
func (s *Service) MissingSetting() string {
	switch {
	case s == nil || !mailer.HasCredential(s.Mailer):
		return SettingMailCredential
	case len(s.To) == 0:
		return SettingRecipients
	case strings.TrimSpace(s.From) == "":
		return SettingFrom
	}
	return ""
}

// Configured reports whether submissions can be delivered.
func (s *Service) Configured() bool {
	return s.MissingSetting() == ""
}

// Submit validates sub and emails it. ip is the submitter's address as seen
// by the server and is included in the email footer.
func (s *Service) Submit(ctx context.Context, sub Submission, ip string) (Result, error) {
	if err := sub.Validate(); err != nil {
		metrics.RecordContactSubmission("invalid")
		return Result{}, err
	}

	if sub.Honey != "" {
		metrics.RecordContactSubmission("spam")
		if logger := observability.Logger(); logger != nil {
			logger.Warn("Spam detected in contact form", zap.String("client_ip", ip))
		}
		return Result{Spam: true}, nil
	}

	if missing := s.MissingSetting(); missing != "" {
		metrics.RecordContactSubmission("not_configured")
		return Result{}, fmt.Errorf("%w: %s is not set", ErrNotConfigured, missing)
	}

	html, err := Render(Inquiry{
		Name:    sub.Name,
		Email:   sub.Email,
		Phone:   sub.Phone,
		Service: sub.Service,
		Message: sub.Message,
		IP:      ip,
		Site:    s.site(),
	})
	if err != nil {
		return Result{}, err
	}

	email := mailer.Email{
		From:    s.From,
		To:      s.To,
		Subject: fmt.Sprintf("%s: %s", s.subjectPrefix(), sub.Service),
		HTML:    html,
		ReplyTo: sub.Email,
	}
	if err := s.Mailer.Send(ctx, email); err != nil {
		metrics.RecordContactSubmission("send_failed")
		if logger := observability.Logger(); logger != nil {
			fields := []zap.Field{zap.String("client_ip", ip), zap.Error(err)}
			var perr *mailer.ProviderError
			if errors.As(err, &perr) {
				fields = append(fields,
					zap.String("provider", perr.Provider),
					zap.Int("status_code", perr.StatusCode),
					zap.ByteString("provider_body", perr.Body),
				)
			}
			logger.Error("Contact email send failed", fields...)
		}
		return Result{}, fmt.Errorf("%w: %w", ErrSendFailed, err)
	}

	metrics.RecordContactSubmission("sent")
	return Result{}, nil
}

func (s *Service) subjectPrefix() string {
	if p := strings.TrimSpace(s.SubjectPrefix); p != "" {
		return p
	}
	return DefaultSubjectPrefix
}

func (s *Service) site() string {
	if site := strings.TrimSpace(s.Site); site != "" {
		return site
	}
	return "lightspeed.tech"
}
