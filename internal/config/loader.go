// Package config provides centralized configuration for the lightspeed backend.
//
// Values come from three layers, lowest precedence first: the defaults
// registered by SetDefaults, an optional YAML config file, and the
// environment (LIGHTSPEED_* keys plus the unprefixed provider variables the
// site has always used, such as ANTHROPIC_API_KEY and RESEND_API_KEY).
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

var (
	appConfig *Config
	configMu  sync.RWMutex
)

// ErrMissingCredential is reported by Validate when a provider key is absent.
var ErrMissingCredential = errors.New("missing credential")

// legacyEnv maps config keys to the unprefixed variables that also set them.
var legacyEnv = map[string][]string{
	"chat.anthropic_api_key":  {"ANTHROPIC_API_KEY"},
	"chat.openai_api_key":     {"OPENAI_API_KEY"},
	"chat.openrouter_api_key": {"OPENROUTER_API_KEY"},
	"chat.hf_token":           {"HF_TOKEN", "HUGGINGFACE_API_KEY"},
	"mail.resend_api_key":     {"RESEND_API_KEY"},
	"site.url":                {"SITE_URL", "NEXT_PUBLIC_SITE_URL"},
	"site.calendly_url":       {"CALENDLY_URL"},
	"contact.recipients":      {"CONTACT_EMAIL"},
}

// SetDefaults registers default values for every key. Keys without a default
// are invisible to AllSettings, so every field of Config needs one here.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "45s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.environment", "production")

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.port", 9090)

	v.SetDefault("health.enabled", true)

	v.SetDefault("site.url", "https://lightspeed.tech")
	v.SetDefault("site.calendly_url", "")
	v.SetDefault("site.company", "Lightspeed")

	v.SetDefault("ratelimit.backend", "memory")
	v.SetDefault("ratelimit.chat.limit", 10)
	v.SetDefault("ratelimit.chat.window", "1m")
	v.SetDefault("ratelimit.chat.sweep_threshold", 0)
	v.SetDefault("ratelimit.contact.limit", 3)
	v.SetDefault("ratelimit.contact.window", "1h")
	v.SetDefault("ratelimit.contact.sweep_threshold", 1000)

	v.SetDefault("chat.provider", "anthropic")
	v.SetDefault("chat.base_url", "")
	v.SetDefault("chat.models", []string{"claude-3-5-sonnet-20240620"})
	v.SetDefault("chat.timeout", "30s")
	v.SetDefault("chat.upstream_rps", 0)
	v.SetDefault("chat.upstream_burst", 5)
	v.SetDefault("chat.persona_file", "")
	v.SetDefault("chat.anthropic_api_key", "")
	v.SetDefault("chat.openai_api_key", "")
	v.SetDefault("chat.openrouter_api_key", "")
	v.SetDefault("chat.hf_token", "")

	v.SetDefault("contact.recipients", []string{})
	v.SetDefault("contact.subject_prefix", "New Contact Form")

	v.SetDefault("mail.provider", "resend")
	v.SetDefault("mail.base_url", "https://api.resend.com")
	v.SetDefault("mail.resend_api_key", "")
	v.SetDefault("mail.from", "Lightspeed Contact <onboarding@resend.dev>")
	v.SetDefault("mail.timeout", "15s")
	v.SetDefault("mail.max_retries", 2)
	v.SetDefault("mail.initial_interval", "500ms")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.key_prefix", "lightspeed:rl")

	v.SetDefault("whatsapp.phone_e164", "254115217699")
	v.SetDefault("whatsapp.display_number", "0115217699")
	v.SetDefault("whatsapp.default_message", "Hi! I'm interested in Lightspeed services.")
}

// BindEnvironment wires prefixed environment variables (LIGHTSPEED_CHAT_MODELS
// for chat.models) and the legacy unprefixed names.
func BindEnvironment(v *viper.Viper, prefix string) error {
	prefix = strings.TrimSuffix(prefix, "_")
	v.SetEnvPrefix(prefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, names := range legacyEnv {
		prefixed := prefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(append([]string{key, prefixed}, names...)...); err != nil {
			return fmt.Errorf("bind env for %s: %w", key, err)
		}
	}
	return nil
}

// Load decodes the viper state into a Config and makes it the current config.
// It is safe to call again on reload.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
			mapstructure.StringToFloat64HookFunc(),
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create decoder: %w", err)
	}

	if err := decoder.Decode(v.AllSettings()); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	normalize(cfg)
	setConfig(cfg)
	return cfg, nil
}

func normalize(cfg *Config) {
	cfg.Chat.Models = compact(cfg.Chat.Models)
	cfg.Contact.Recipients = compact(cfg.Contact.Recipients)
	cfg.RateLimit.Backend = strings.ToLower(strings.TrimSpace(cfg.RateLimit.Backend))
	cfg.Site.URL = strings.TrimRight(strings.TrimSpace(cfg.Site.URL), "/")
}

func compact(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// minReplyHeadroom is the part of the write timeout kept back for reading the
// request and writing the error body after an upstream timeout.
const minReplyHeadroom = 5 * time.Second

// ChatReplyTimeout is the deadline for a whole chat reply across every model
// candidate. It is chat.timeout, shortened when needed so the reply (a 504
// included) is written before server.write_timeout closes the connection.
func (c *Config) ChatReplyTimeout() time.Duration {
	timeout := c.Chat.Timeout
	write := c.Server.WriteTimeout
	if write <= 0 {
		return timeout
	}
	headroom := minReplyHeadroom
	if write <= 2*headroom {
		headroom = write / 2
	}
	if limit := write - headroom; timeout <= 0 || timeout > limit {
		return limit
	}
	return timeout
}

// Validate reports settings that leave an endpoint unable to serve. Missing
// credentials are reported, never defaulted; the affected endpoint answers
// with a configuration error until they are supplied.
func (c *Config) Validate() error {
	var problems []error

	if c.Chat.Credential() == "" {
		problems = append(problems, fmt.Errorf("%w: %s is not set (chat.provider=%s)",
			ErrMissingCredential, c.Chat.CredentialEnv(), c.Chat.ProviderName()))
	}
	if len(c.Chat.Models) == 0 {
		problems = append(problems, errors.New("chat.models is empty"))
	}
	if strings.TrimSpace(c.Mail.ResendAPIKey) == "" {
		problems = append(problems, fmt.Errorf("%w: RESEND_API_KEY is not set", ErrMissingCredential))
	}
	if len(c.Contact.Recipients) == 0 {
		problems = append(problems, errors.New("contact.recipients is empty (set CONTACT_EMAIL)"))
	}
	if c.Site.URL != "" {
		if u, err := url.Parse(c.Site.URL); err != nil || u.Scheme == "" || u.Host == "" {
			problems = append(problems, fmt.Errorf("site.url %q is not an absolute URL", c.Site.URL))
		}
	}
	if c.Server.WriteTimeout > 0 && c.Chat.Timeout > 0 && c.Server.WriteTimeout-c.Chat.Timeout < minReplyHeadroom {
		problems = append(problems, fmt.Errorf("server.write_timeout %s must exceed chat.timeout %s by at least %s; chat replies are cut to %s",
			c.Server.WriteTimeout, c.Chat.Timeout, minReplyHeadroom, c.ChatReplyTimeout()))
	}
	switch c.RateLimit.Backend {
	case "memory", "redis":
	default:
		problems = append(problems, fmt.Errorf("ratelimit.backend %q is not one of memory, redis", c.RateLimit.Backend))
	}
	if c.RateLimit.Chat.Limit <= 0 || c.RateLimit.Chat.Window <= 0 {
		problems = append(problems, errors.New("ratelimit.chat needs a positive limit and window"))
	}
	if c.RateLimit.Contact.Limit <= 0 || c.RateLimit.Contact.Window <= 0 {
		problems = append(problems, errors.New("ratelimit.contact needs a positive limit and window"))
	}

	return errors.Join(problems...)
}

// GetConfig returns the current application configuration (thread-safe)
func GetConfig() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return appConfig
}

func setConfig(cfg *Config) {
	configMu.Lock()
	defer configMu.Unlock()
	appConfig = cfg
}
