package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/lightspeedtech/lightspeed/internal/ailink/driver"
)

// Base URLs of the OpenAI-compatible providers this driver speaks to.
const (
	DefaultBaseURL     = "https://api.openai.com/v1"
	OpenRouterBaseURL  = "https://openrouter.ai/api/v1"
	HuggingFaceBaseURL = "https://router.huggingface.co/v1"
)

// Client implements the OpenAI chat completions API via direct HTTP. The same
// wire format is served by OpenRouter and the Hugging Face inference router,
// so Provider only changes the name reported in errors and metrics.
type Client struct {
	Provider   string
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
	Timeout    time.Duration
}

// NewClient returns a client with defaults applied.
func NewClient(baseURL, apiKey string) *Client {
	url := strings.TrimSpace(baseURL)
	if url == "" {
		url = DefaultBaseURL
	}

	return &Client{
		Provider: "openai",
		BaseURL:  url,
		APIKey:   strings.TrimSpace(apiKey),
	}
}

// NewProvider returns a client for a named OpenAI-compatible provider
// ("openai", "openrouter" or "huggingface"). baseURL overrides the default.
func NewProvider(provider, baseURL, apiKey string) *Client {
	if strings.TrimSpace(baseURL) == "" {
		switch provider {
		case "openrouter":
			baseURL = OpenRouterBaseURL
		case "huggingface":
			baseURL = HuggingFaceBaseURL
		}
	}
	c := NewClient(baseURL, apiKey)
	if provider != "" {
		c.Provider = provider
	}
	return c
}

// Name returns the driver identifier.
func (c *Client) Name() string {
	if c == nil || c.Provider == "" {
		return "openai"
	}
	return c.Provider
}

// HasCredential reports whether an API key is set.
func (c *Client) HasCredential() bool {
	return c != nil && strings.TrimSpace(c.APIKey) != ""
}

// Complete sends a chat completion request.
func (c *Client) Complete(ctx context.Context, req *driver.Request) (*driver.Response, error) {
	if c == nil {
		return nil, fmt.Errorf("openai client not configured")
	}
	if strings.TrimSpace(c.APIKey) == "" {
		return nil, driver.ErrMissingAPIKey
	}

	payload, err := buildChatRequest(req)
	if err != nil {
		return nil, err
	}

	ctx, cancel := withTimeout(ctx, c.Timeout)
	if cancel != nil {
		defer cancel()
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	url := strings.TrimRight(c.BaseURL, "/") + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	httpReq.Header.Set("Authorization", "Bearer "+c.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")

	client := c.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	trace := driver.StartTrace(c.Name(), url, payload.Model, body)
	resp, err := client.Do(httpReq)
	if err != nil {
		trace.Finish(0, nil, err)
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close() // nolint:errcheck // best-effort cleanup

	respBody, err := io.ReadAll(resp.Body)
	trace.Finish(resp.StatusCode, respBody, err)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, driver.NewProviderError(c.Name(), resp.StatusCode, respBody)
	}

	var parsed chatCompletionResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return toDriverResponse(&parsed)
}

func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return ctx, nil
	}
	return context.WithTimeout(ctx, timeout)
}
