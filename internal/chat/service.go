// Package chat turns a visitor conversation into one assistant reply.
//
// The service prepends the site persona, asks each configured model in
// priority order until one answers, and cleans the answer before it is
// returned. Failures are normalized with ailink.Classify and mapped to a
// user-safe message by Outcome.
package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/lightspeedtech/lightspeed/internal/ailink"
	"github.com/lightspeedtech/lightspeed/internal/ailink/driver"
	"github.com/lightspeedtech/lightspeed/internal/ailink/prompt"
	"github.com/lightspeedtech/lightspeed/internal/metrics"
	"github.com/lightspeedtech/lightspeed/internal/observability"
	"github.com/lightspeedtech/lightspeed/internal/ratelimit"
)

// SenderBot marks messages previously produced by the assistant.
const SenderBot = "bot"

// DateLayout is how the current date is rendered into the persona.
const DateLayout = "Monday, January 2, 2006"

var (
	// ErrInvalidBody is returned by ParseRequest for anything that is not
	// {"messages": [...]}.
	ErrInvalidBody = errors.New("invalid request body")

	// ErrNotConfigured means no upstream credential or model is set.
	ErrNotConfigured = errors.New("chat upstream is not configured")
)

// Message is one turn as sent by the site widget.
type Message struct {
	Sender string `json:"sender"`
	Text   string `json:"text"`
}

// ParseRequest decodes a chat request body. The messages field must be
// present, be a JSON array, and hold at least one message.
func ParseRequest(body []byte) ([]Message, error) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBody, err)
	}

	raw, ok := envelope["messages"]
	if !ok {
		return nil, fmt.Errorf("%w: messages is required", ErrInvalidBody)
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '[' {
		return nil, fmt.Errorf("%w: messages must be an array", ErrInvalidBody)
	}

	var messages []Message
	if err := json.Unmarshal(raw, &messages); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBody, err)
	}
	if len(messages) == 0 {
		return nil, fmt.Errorf("%w: messages is empty", ErrInvalidBody)
	}
	return messages, nil
}

// Result is a successful reply.
type Result struct {
	Text     string
	Model    string
	Attempts []ailink.Attempt
}

// Service answers chat conversations through an upstream driver.
type Service struct {
	Driver  driver.Driver
	Models  []string
	Persona *prompt.Prompt
	Company string

	// Budget caps upstream calls across all clients. Nil means unlimited.
	Budget ratelimit.Limiter

	// Timeout bounds the whole reply, every fallback candidate included.
	// It must stay below the server's write timeout or a 504 cannot be sent.
	Timeout time.Duration

	Clock func() time.Time
}

// Configured reports whether the service can call upstream at all.
func (s *Service) Configured() bool {
	if s == nil || s.Driver == nil || len(s.Models) == 0 {
		return false
	}
	if checker, ok := s.Driver.(driver.CredentialChecker); ok {
		return checker.HasCredential()
	}
	return true
}

// Reply produces the assistant's next message for the conversation. On
// failure the returned error classifies (ailink.Classify) to the kind of the
// last attempt.
func (s *Service) Reply(ctx context.Context, messages []Message) (*Result, error) {
	if !s.Configured() {
		return nil, ErrNotConfigured
	}

	if err := s.takeBudget(ctx); err != nil {
		return nil, err
	}

	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	base := s.buildRequest(messages)
	provider := s.Driver.Name()

	var model string
	text, attempts, err := ailink.Fallback(ctx, s.Models, func(ctx context.Context, candidate string) (string, error) {
		req := base
		req.Model = candidate
		resp, err := s.Driver.Complete(ctx, &req)
		if err != nil {
			return "", err
		}
		model = candidate
		return ailink.CleanCompletion(resp.Text), nil
	})

	for _, attempt := range attempts {
		kind := "ok"
		if !attempt.Succeeded() {
			kind = attempt.Kind.String()
			logAttemptFailure(provider, attempt)
		}
		metrics.RecordUpstreamAttempt(provider, attempt.Candidate, kind, attempt.Duration)
	}

	if err != nil {
		return &Result{Attempts: attempts}, err
	}
	return &Result{Text: text, Model: model, Attempts: attempts}, nil
}

func (s *Service) takeBudget(ctx context.Context) error {
	if s.Budget == nil {
		return nil
	}
	decision, err := s.Budget.Allow(ctx, "upstream")
	if err != nil {
		if logger := observability.Logger(); logger != nil {
			logger.Error("Upstream budget check failed, allowing call", zap.Error(err))
		}
		return nil
	}
	if !decision.Allowed {
		return fmt.Errorf("%w: retry in %s", ailink.ErrBudgetExhausted, decision.RetryAfter)
	}
	return nil
}

func (s *Service) buildRequest(messages []Message) driver.Request {
	now := time.Now()
	if s.Clock != nil {
		now = s.Clock()
	}

	req := driver.Request{Messages: make([]driver.Message, 0, len(messages)+1)}
	if s.Persona != nil {
		system := s.Persona.Render(map[string]string{
			"date":    now.Format(DateLayout),
			"company": s.Company,
		})
		if system != "" {
			req.Messages = append(req.Messages, driver.Message{Role: driver.RoleSystem, Content: system})
		}
		if s.Persona.Config.MaxTokens > 0 {
			maxTokens := s.Persona.Config.MaxTokens
			req.MaxTokens = &maxTokens
		}
		req.Temperature = s.Persona.Config.Temperature
		req.Sampling = s.Persona.Config.Sampling
	}

	for _, m := range messages {
		req.Messages = append(req.Messages, driver.Message{Role: roleFor(m.Sender), Content: m.Text})
	}
	return req
}

func roleFor(sender string) string {
	if strings.EqualFold(strings.TrimSpace(sender), SenderBot) {
		return driver.RoleAssistant
	}
	return driver.RoleUser
}

func logAttemptFailure(provider string, attempt ailink.Attempt) {
	logger := observability.Logger()
	if logger == nil {
		return
	}

	fields := []zap.Field{
		zap.String("provider", provider),
		zap.String("model", attempt.Candidate),
		zap.String("kind", attempt.Kind.String()),
		zap.Duration("duration", attempt.Duration),
		zap.Error(attempt.Err),
	}
	var perr *driver.ProviderError
	if errors.As(attempt.Err, &perr) {
		fields = append(fields,
			zap.Int("status_code", perr.StatusCode),
			zap.ByteString("provider_body", perr.RawResponse),
		)
	}
	logger.Warn("Upstream model attempt failed", fields...)
}
