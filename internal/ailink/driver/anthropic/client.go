package anthropic

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

const (
	defaultBaseURL = "https://api.anthropic.com/v1"
	// APIVersion is sent as the anthropic-version header.
	APIVersion = "2023-06-01"
	// DefaultMaxTokens is used when the request does not set MaxTokens; the
	// Messages API requires the field.
	DefaultMaxTokens = 1024
)

// Client implements the Anthropic Messages API via direct HTTP.
type Client struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
	Timeout    time.Duration
}

// NewClient returns a client with defaults applied.
func NewClient(baseURL, apiKey string) *Client {
	url := strings.TrimSpace(baseURL)
	if url == "" {
		url = defaultBaseURL
	}
	return &Client{
		BaseURL: url,
		APIKey:  strings.TrimSpace(apiKey),
	}
}

// Name returns the driver identifier.
func (c *Client) Name() string {
	return "anthropic"
}

// HasCredential reports whether an API key is set.
func (c *Client) HasCredential() bool {
	return c != nil && strings.TrimSpace(c.APIKey) != ""
}

// Complete sends a Messages API request.
func (c *Client) Complete(ctx context.Context, req *driver.Request) (*driver.Response, error) {
	if c == nil {
		return nil, fmt.Errorf("anthropic client not configured")
	}
	if strings.TrimSpace(c.APIKey) == "" {
		return nil, driver.ErrMissingAPIKey
	}

	payload, err := buildMessagesRequest(req)
	if err != nil {
		return nil, err
	}

	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	url := strings.TrimRight(c.BaseURL, "/") + "/messages"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("x-api-key", c.APIKey)
	httpReq.Header.Set("anthropic-version", APIVersion)
	httpReq.Header.Set("content-type", "application/json")

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

	var parsed messagesResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return parsed.toDriverResponse(), nil
}
