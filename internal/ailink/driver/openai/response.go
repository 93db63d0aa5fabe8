package openai

import (
	"github.com/lightspeedtech/lightspeed/internal/ailink/driver"
)

type chatCompletionResponse struct {
	Model   string   `json:"model"`
	Choices []choice `json:"choices"`
	Usage   *usage   `json:"usage,omitempty"`
}

type choice struct {
	Message      chatResponseMessage `json:"message"`
	FinishReason string              `json:"finish_reason"`
}

type chatResponseMessage struct {
	Content string `json:"content"`
}

type usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// toDriverResponse maps the first choice. A response without choices yields
// empty text, which callers treat as a failed attempt.
func toDriverResponse(resp *chatCompletionResponse) (*driver.Response, error) {
	response := &driver.Response{}
	if resp == nil {
		return response, nil
	}
	response.Model = resp.Model

	if len(resp.Choices) > 0 {
		response.Text = resp.Choices[0].Message.Content
		response.FinishReason = resp.Choices[0].FinishReason
	}

	if resp.Usage != nil {
		response.Usage = &driver.Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		}
	}

	return response, nil
}
