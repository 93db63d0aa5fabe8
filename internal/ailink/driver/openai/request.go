package openai

import (
	"fmt"
	"strings"

	"github.com/lightspeedtech/lightspeed/internal/ailink/driver"
)

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature *float64      `json:"temperature,omitempty"`
	MaxTokens   *int          `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func buildChatRequest(req *driver.Request) (*chatCompletionRequest, error) {
	if req == nil {
		return nil, fmt.Errorf("request is required")
	}
	if strings.TrimSpace(req.Model) == "" {
		return nil, fmt.Errorf("model is required")
	}
	if len(req.Messages) == 0 {
		return nil, fmt.Errorf("messages are required")
	}

	messages := make([]chatMessage, 0, len(req.Messages))
	for _, msg := range req.Messages {
		role := msg.Role
		switch role {
		case driver.RoleSystem, driver.RoleUser, driver.RoleAssistant:
		default:
			return nil, fmt.Errorf("unsupported role: %q", role)
		}
		messages = append(messages, chatMessage{Role: role, Content: msg.Content})
	}

	return &chatCompletionRequest{
		Model:       req.Model,
		Messages:    messages,
		Temperature: req.EffectiveTemperature(),
		MaxTokens:   req.MaxTokens,
	}, nil
}
