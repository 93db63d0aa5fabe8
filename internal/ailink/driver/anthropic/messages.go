package anthropic

import (
	"fmt"
	"strings"

	"github.com/lightspeedtech/lightspeed/internal/ailink/driver"
)

type messagesRequest struct {
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	System      string    `json:"system,omitempty"`
	Messages    []message `json:"messages"`
	Temperature *float64  `json:"temperature,omitempty"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Model      string         `json:"model"`
	Content    []contentBlock `json:"content"`
	StopReason string         `json:"stop_reason"`
	Usage      *usage         `json:"usage,omitempty"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// buildMessagesRequest lifts system messages into the top-level system field;
// the Messages API only accepts user and assistant turns.
func buildMessagesRequest(req *driver.Request) (*messagesRequest, error) {
	if req == nil {
		return nil, fmt.Errorf("request is required")
	}
	if strings.TrimSpace(req.Model) == "" {
		return nil, fmt.Errorf("model is required")
	}

	var system []string
	messages := make([]message, 0, len(req.Messages))
	for _, msg := range req.Messages {
		switch msg.Role {
		case driver.RoleSystem:
			system = append(system, msg.Content)
		case driver.RoleUser, driver.RoleAssistant:
			messages = append(messages, message{Role: msg.Role, Content: msg.Content})
		default:
			return nil, fmt.Errorf("unsupported role: %q", msg.Role)
		}
	}
	if len(messages) == 0 {
		return nil, fmt.Errorf("messages are required")
	}

	maxTokens := DefaultMaxTokens
	if req.MaxTokens != nil && *req.MaxTokens > 0 {
		maxTokens = *req.MaxTokens
	}

	return &messagesRequest{
		Model:       req.Model,
		MaxTokens:   maxTokens,
		System:      strings.Join(system, "\n\n"),
		Messages:    messages,
		Temperature: req.EffectiveTemperature(),
	}, nil
}

// toDriverResponse concatenates text blocks; other block types are ignored.
func (r *messagesResponse) toDriverResponse() *driver.Response {
	var text strings.Builder
	for _, block := range r.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	resp := &driver.Response{
		Text:         text.String(),
		Model:        r.Model,
		FinishReason: r.StopReason,
	}
	if r.Usage != nil {
		resp.Usage = &driver.Usage{
			PromptTokens:     r.Usage.InputTokens,
			CompletionTokens: r.Usage.OutputTokens,
			TotalTokens:      r.Usage.InputTokens + r.Usage.OutputTokens,
		}
	}
	return resp
}
