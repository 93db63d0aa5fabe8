package cmd

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/lightspeedtech/lightspeed/internal/ailink"
	"github.com/lightspeedtech/lightspeed/internal/ailink/prompt"
	"github.com/lightspeedtech/lightspeed/internal/chat"
	"github.com/lightspeedtech/lightspeed/internal/config"
	"github.com/lightspeedtech/lightspeed/internal/contact"
	"github.com/lightspeedtech/lightspeed/internal/mailer"
	"github.com/lightspeedtech/lightspeed/internal/mailer/resend"
	"github.com/lightspeedtech/lightspeed/internal/ratelimit"
	"github.com/lightspeedtech/lightspeed/internal/server"
	"github.com/lightspeedtech/lightspeed/internal/server/handlers"
	"github.com/lightspeedtech/lightspeed/internal/whatsapp"
)

// Limiter names, used as metric labels and Redis key segments.
const (
	chatLimiterName    = "chat"
	contactLimiterName = "contact"
)

// buildChatService wires the upstream driver, persona and upstream budget.
// A missing credential is not an error here; the service reports itself as
// not configured and the endpoint answers with a configuration error.
func buildChatService(cfg *config.Config) (*chat.Service, error) {
	drv, err := ailink.NewDriver(ailink.ProviderSettings{
		Provider: cfg.Chat.ProviderName(),
		BaseURL:  cfg.Chat.BaseURL,
		APIKey:   cfg.Chat.Credential(),
		Timeout:  cfg.Chat.Timeout,
	})
	if err != nil {
		return nil, err
	}

	persona, err := prompt.Persona(cfg.Chat.PersonaFile)
	if err != nil {
		return nil, fmt.Errorf("load persona: %w", err)
	}

	svc := &chat.Service{
		Driver:  drv,
		Models:  cfg.Chat.Models,
		Persona: persona,
		Company: cfg.Site.Company,
		Timeout: cfg.ChatReplyTimeout(),
	}
	// A nil *Budget must not end up inside the interface.
	if budget := ratelimit.NewBudget(cfg.Chat.UpstreamRPS, cfg.Chat.UpstreamBurst); budget != nil {
		svc.Budget = budget
	}
	return svc, nil
}

// buildContactService wires the mail provider behind the retry wrapper.
func buildContactService(cfg *config.Config) (*contact.Service, error) {
	var m mailer.Mailer
	switch provider := strings.ToLower(strings.TrimSpace(cfg.Mail.Provider)); provider {
	case "", "resend":
		client := resend.NewClient(cfg.Mail.BaseURL, cfg.Mail.ResendAPIKey)
		client.Timeout = cfg.Mail.Timeout
		m = client
	default:
		return nil, fmt.Errorf("unknown mail provider %q", cfg.Mail.Provider)
	}

	return &contact.Service{
		Mailer: &mailer.Retrying{
			Mailer:          m,
			MaxRetries:      cfg.Mail.MaxRetries,
			InitialInterval: cfg.Mail.InitialInterval,
		},
		From:          cfg.Mail.From,
		To:            cfg.Contact.Recipients,
		SubjectPrefix: cfg.Contact.SubjectPrefix,
		Site:          siteHost(cfg.Site.URL),
	}, nil
}

func buildWhatsAppResolver(cfg *config.Config) whatsapp.Resolver {
	return whatsapp.Resolver{
		PhoneE164:      cfg.WhatsApp.PhoneE164,
		DisplayNumber:  cfg.WhatsApp.DisplayNumber,
		DefaultMessage: cfg.WhatsApp.DefaultMessage,
	}
}

// limiters holds the per-endpoint limiters and the Redis client behind them,
// if any.
type limiters struct {
	chat    ratelimit.Limiter
	contact ratelimit.Limiter
	redis   *redis.Client
}

func (l *limiters) Close() error {
	if l == nil || l.redis == nil {
		return nil
	}
	return l.redis.Close()
}

// buildLimiters returns sliding-window chat and fixed-window contact limiters
// on the configured backend.
func buildLimiters(cfg *config.Config) (*limiters, error) {
	chatCfg := cfg.RateLimit.Chat
	contactCfg := cfg.RateLimit.Contact

	switch cfg.RateLimit.Backend {
	case "", "memory":
		contactLimiter := ratelimit.NewFixedWindow(contactCfg.Limit, contactCfg.Window)
		if contactCfg.SweepThreshold > 0 {
			contactLimiter.SweepThreshold = contactCfg.SweepThreshold
		}
		return &limiters{
			chat:    ratelimit.NewSlidingWindow(chatCfg.Limit, chatCfg.Window),
			contact: contactLimiter,
		}, nil

	case "redis":
		client := newRedisClient(cfg.Redis)
		prefix := cfg.Redis.KeyPrefix
		if prefix == "" {
			prefix = ratelimit.DefaultKeyPrefix
		}
		return &limiters{
			chat: &ratelimit.RedisSlidingWindow{
				Client: client,
				Name:   chatLimiterName,
				Prefix: prefix,
				Limit:  chatCfg.Limit,
				Window: chatCfg.Window,
			},
			contact: &ratelimit.RedisFixedWindow{
				Client: client,
				Name:   contactLimiterName,
				Prefix: prefix,
				Limit:  contactCfg.Limit,
				Window: contactCfg.Window,
			},
			redis: client,
		}, nil

	default:
		return nil, fmt.Errorf("unknown rate limit backend %q", cfg.RateLimit.Backend)
	}
}

func newRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// registerHealthChecks adds the dependency checks. None of them fail
// readiness; a missing credential only disables one endpoint.
func registerHealthChecks(hm *handlers.HealthManager, cfg *config.Config, chatSvc *chat.Service, contactSvc *contact.Service, lim *limiters) {
	hm.RegisterChecker("chat_credential", handlers.CredentialCheck(cfg.Chat.CredentialEnv(), chatSvc.Configured))
	hm.RegisterChecker("mail_credential", handlers.SettingCheck(contactSvc.MissingSetting))
	if lim != nil && lim.redis != nil {
		hm.RegisterChecker("redis", handlers.RedisCheck(lim.redis))
	}
}

// buildDeps assembles every service the HTTP server needs.
func buildDeps(cfg *config.Config, version string) (server.Deps, *limiters, error) {
	chatSvc, err := buildChatService(cfg)
	if err != nil {
		return server.Deps{}, nil, err
	}
	contactSvc, err := buildContactService(cfg)
	if err != nil {
		return server.Deps{}, nil, err
	}
	lim, err := buildLimiters(cfg)
	if err != nil {
		return server.Deps{}, nil, err
	}

	hm := handlers.NewHealthManager(version)
	registerHealthChecks(hm, cfg, chatSvc, contactSvc, lim)

	return server.Deps{
		Chat:           chatSvc,
		ChatLimiter:    lim.chat,
		CredentialEnv:  cfg.Chat.CredentialEnv(),
		Contact:        contactSvc,
		ContactLimiter: lim.contact,
		WhatsApp:       buildWhatsAppResolver(cfg),
		Health:         hm,
	}, lim, nil
}

// pingRedis reports whether the configured Redis answers. It is only used
// when the redis backend is selected.
func pingRedis(ctx context.Context, cfg config.RedisConfig) error {
	client := newRedisClient(cfg)
	defer func() { _ = client.Close() }()
	return client.Ping(ctx).Err()
}

// siteHost returns the host of the site URL for the email footer.
func siteHost(siteURL string) string {
	u, err := url.Parse(strings.TrimSpace(siteURL))
	if err != nil || u.Host == "" {
		return ""
	}
	return u.Host
}
