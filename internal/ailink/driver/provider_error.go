package driver

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ProviderError is returned when a provider responds with a non-2xx status.
//
// RawResponse holds the provider response body and must never include API keys.
type ProviderError struct {
	Provider    string
	StatusCode  int
	Type        string
	Message     string
	RawResponse []byte
}

func (e *ProviderError) Error() string {
	if e == nil {
		return "provider error"
	}
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s request failed: status %d: %s", e.Provider, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s request failed: %s", e.Provider, e.Message)
}

// NewProviderError builds a ProviderError from a failed response, pulling the
// message out of the common error body shapes:
//
//	{"error": {"type": "...", "message": "..."}}   Anthropic, OpenAI, OpenRouter
//	{"error": "Model x is currently loading"}      Hugging Face
func NewProviderError(provider string, status int, body []byte) *ProviderError {
	perr := &ProviderError{
		Provider:    provider,
		StatusCode:  status,
		Message:     strings.TrimSpace(string(body)),
		RawResponse: body,
	}

	var envelope struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Error) == 0 {
		return perr
	}

	var text string
	if err := json.Unmarshal(envelope.Error, &text); err == nil {
		perr.Message = strings.TrimSpace(text)
		return perr
	}

	var detail struct {
		Type    string `json:"type"`
		Code    any    `json:"code"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(envelope.Error, &detail); err == nil {
		if strings.TrimSpace(detail.Message) != "" {
			perr.Message = strings.TrimSpace(detail.Message)
		}
		perr.Type = detail.Type
		if perr.Type == "" {
			if code, ok := detail.Code.(string); ok {
				perr.Type = code
			}
		}
	}
	return perr
}
