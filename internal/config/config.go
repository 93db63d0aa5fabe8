package config

import (
	"strings"
	"time"
)

// Config is the complete application configuration. It is assembled by
// viper (defaults, optional YAML file, LIGHTSPEED_* and the legacy
// unprefixed environment variables) and decoded with mapstructure.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Health    HealthConfig    `mapstructure:"health"`
	Site      SiteConfig      `mapstructure:"site"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Chat      ChatConfig      `mapstructure:"chat"`
	Contact   ContactConfig   `mapstructure:"contact"`
	Mail      MailConfig      `mapstructure:"mail"`
	Redis     RedisConfig     `mapstructure:"redis"`
	WhatsApp  WhatsAppConfig  `mapstructure:"whatsapp"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is one of trace, debug, info, warn, error.
	Level       string `mapstructure:"level"`
	Environment string `mapstructure:"environment"`
}

// MetricsConfig contains Prometheus metrics configuration
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

type HealthConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// SiteConfig holds public facts about the business the assistant speaks for.
type SiteConfig struct {
	URL         string `mapstructure:"url"`
	CalendlyURL string `mapstructure:"calendly_url"`
	Company     string `mapstructure:"company"`
}

// RateLimitConfig selects the limiter backend and the per-endpoint windows.
type RateLimitConfig struct {
	// Backend is "memory" (process-local tables) or "redis".
	Backend string       `mapstructure:"backend"`
	Chat    WindowConfig `mapstructure:"chat"`
	Contact WindowConfig `mapstructure:"contact"`
}

// WindowConfig describes one limiter.
type WindowConfig struct {
	Limit  int           `mapstructure:"limit"`
	Window time.Duration `mapstructure:"window"`

	// SweepThreshold only applies to the fixed-window limiter.
	SweepThreshold int `mapstructure:"sweep_threshold"`
}

// ChatConfig configures the upstream language model.
type ChatConfig struct {
	// Provider is "anthropic", "openai", "openrouter" or "huggingface".
	Provider        string        `mapstructure:"provider"`
	BaseURL         string        `mapstructure:"base_url"`
	Models          []string      `mapstructure:"models"`
	Timeout         time.Duration `mapstructure:"timeout"`
	UpstreamRPS     float64       `mapstructure:"upstream_rps"`
	UpstreamBurst   int           `mapstructure:"upstream_burst"`
	PersonaFile     string        `mapstructure:"persona_file"`
	AnthropicAPIKey string        `mapstructure:"anthropic_api_key"`
	OpenAIAPIKey    string        `mapstructure:"openai_api_key"`
	OpenRouterKey   string        `mapstructure:"openrouter_api_key"`
	HFToken         string        `mapstructure:"hf_token"`
}

// Credential returns the API key for the selected provider.
func (c ChatConfig) Credential() string {
	switch c.ProviderName() {
	case "openai":
		return strings.TrimSpace(c.OpenAIAPIKey)
	case "openrouter":
		return strings.TrimSpace(c.OpenRouterKey)
	case "huggingface":
		return strings.TrimSpace(c.HFToken)
	default:
		return strings.TrimSpace(c.AnthropicAPIKey)
	}
}

// CredentialEnv names the environment variable that supplies Credential.
func (c ChatConfig) CredentialEnv() string {
	switch c.ProviderName() {
	case "openai":
		return "OPENAI_API_KEY"
	case "openrouter":
		return "OPENROUTER_API_KEY"
	case "huggingface":
		return "HF_TOKEN"
	default:
		return "ANTHROPIC_API_KEY"
	}
}

// ProviderName returns the normalized provider, defaulting to anthropic.
func (c ChatConfig) ProviderName() string {
	p := strings.ToLower(strings.TrimSpace(c.Provider))
	if p == "" {
		return "anthropic"
	}
	return p
}

// ContactConfig configures where inquiries are delivered.
type ContactConfig struct {
	Recipients    []string `mapstructure:"recipients"`
	SubjectPrefix string   `mapstructure:"subject_prefix"`
}

// MailConfig configures the transactional email provider.
type MailConfig struct {
	Provider        string        `mapstructure:"provider"`
	BaseURL         string        `mapstructure:"base_url"`
	ResendAPIKey    string        `mapstructure:"resend_api_key"`
	From            string        `mapstructure:"from"`
	Timeout         time.Duration `mapstructure:"timeout"`
	MaxRetries      int           `mapstructure:"max_retries"`
	InitialInterval time.Duration `mapstructure:"initial_interval"`
}

// RedisConfig is used when ratelimit.backend is "redis".
type RedisConfig struct {
	Addr      string `mapstructure:"addr"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

// WhatsAppConfig holds the business number used for deep links.
type WhatsAppConfig struct {
	PhoneE164      string `mapstructure:"phone_e164"`
	DisplayNumber  string `mapstructure:"display_number"`
	DefaultMessage string `mapstructure:"default_message"`
}
