package driver

import (
	"context"
	"errors"
)

// ErrMissingAPIKey is returned by drivers constructed without a credential.
var ErrMissingAPIKey = errors.New("api key is required")

// Driver is a chat-completion provider.
type Driver interface {
	// Complete sends one completion request and returns the generated text.
	Complete(ctx context.Context, req *Request) (*Response, error)
	// Name returns the driver identifier (e.g. "anthropic").
	Name() string
}

// CredentialChecker is implemented by drivers that can tell whether they
// were given an API key.
type CredentialChecker interface {
	HasCredential() bool
}

// Roles understood by every driver.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of the conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Usage contains token usage statistics.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Request is a provider-agnostic completion request. System instructions
// travel as RoleSystem messages; drivers whose API has a dedicated system
// field lift them out.
type Request struct {
	Model       string
	Messages    []Message
	MaxTokens   *int
	Temperature *float64
	// Sampling false asks for greedy decoding (temperature 0).
	Sampling *bool
}

// Response is a provider-agnostic completion response.
type Response struct {
	Text         string
	Model        string
	FinishReason string
	Usage        *Usage
}

// EffectiveTemperature resolves Temperature and Sampling into the value sent
// upstream. Nil means "provider default".
func (r *Request) EffectiveTemperature() *float64 {
	if r == nil {
		return nil
	}
	if r.Sampling != nil && !*r.Sampling {
		zero := 0.0
		return &zero
	}
	return r.Temperature
}
