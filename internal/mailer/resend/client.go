// Package resend delivers email through the Resend HTTP API.
package resend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/lightspeedtech/lightspeed/internal/mailer"
	"github.com/lightspeedtech/lightspeed/internal/metrics"
)

// DefaultBaseURL is the public Resend API.
const DefaultBaseURL = "https://api.resend.com"

// Client implements mailer.Mailer via direct HTTP.
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
		url = DefaultBaseURL
	}
	return &Client{
		BaseURL: url,
		APIKey:  strings.TrimSpace(apiKey),
	}
}

// Name returns the provider identifier.
func (c *Client) Name() string {
	return "resend"
}

// HasCredential reports whether an API key is set.
func (c *Client) HasCredential() bool {
	return c != nil && c.APIKey != ""
}

type sendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
	ReplyTo string   `json:"reply_to,omitempty"`
}

type errorBody struct {
	StatusCode int    `json:"statusCode"`
	Name       string `json:"name"`
	Message    string `json:"message"`
}

// Send posts email to /emails.
func (c *Client) Send(ctx context.Context, email mailer.Email) (err error) {
	if c == nil {
		return fmt.Errorf("resend client not configured")
	}
	if c.APIKey == "" {
		return mailer.ErrMissingAPIKey
	}
	if err := email.Validate(); err != nil {
		return err
	}

	started := time.Now()
	defer func() {
		metrics.RecordMailSend(c.Name(), err == nil, time.Since(started))
	}()

	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	body, err := json.Marshal(sendRequest{
		From:    email.From,
		To:      email.To,
		Subject: email.Subject,
		HTML:    email.HTML,
		ReplyTo: email.ReplyTo,
	})
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	url := strings.TrimRight(c.BaseURL, "/") + "/emails"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	req.Header.Set("Content-Type", "application/json")

	client := c.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close() // nolint:errcheck // best-effort cleanup

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return newProviderError(resp.StatusCode, respBody)
	}
	return nil
}

func newProviderError(status int, body []byte) *mailer.ProviderError {
	perr := &mailer.ProviderError{
		Provider:   "resend",
		StatusCode: status,
		Message:    strings.TrimSpace(string(body)),
		Body:       body,
	}
	var parsed errorBody
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Message != "" {
		perr.Message = parsed.Message
	}
	if perr.Message == "" {
		perr.Message = http.StatusText(status)
	}
	return perr
}
