package ailink

import (
	"fmt"
	"strings"
	"time"

	"github.com/lightspeedtech/lightspeed/internal/ailink/driver"
	"github.com/lightspeedtech/lightspeed/internal/ailink/driver/anthropic"
	"github.com/lightspeedtech/lightspeed/internal/ailink/driver/openai"
)

// ProviderSettings selects and configures one upstream provider.
type ProviderSettings struct {
	Provider string
	BaseURL  string
	APIKey   string
	Timeout  time.Duration
}

// NewDriver builds the driver for settings.Provider. An empty API key is
// accepted; the driver then fails every call with driver.ErrMissingAPIKey.
func NewDriver(settings ProviderSettings) (driver.Driver, error) {
	provider := strings.ToLower(strings.TrimSpace(settings.Provider))
	switch provider {
	case "", "anthropic":
		client := anthropic.NewClient(settings.BaseURL, settings.APIKey)
		client.Timeout = settings.Timeout
		return client, nil
	case "openai", "openrouter", "huggingface":
		client := openai.NewProvider(provider, settings.BaseURL, settings.APIKey)
		client.Timeout = settings.Timeout
		return client, nil
	default:
		return nil, fmt.Errorf("unknown chat provider %q", settings.Provider)
	}
}
