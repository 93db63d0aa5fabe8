package cmd

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/fulmenhq/gofulmen/crucible"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/lightspeedtech/lightspeed/internal/ailink/prompt"
	"github.com/lightspeedtech/lightspeed/internal/appid"
	"github.com/lightspeedtech/lightspeed/internal/config"
	errwrap "github.com/lightspeedtech/lightspeed/internal/errors"
	"github.com/lightspeedtech/lightspeed/internal/output"
)

type checkStatus string

const (
	statusPass checkStatus = "ok"
	statusWarn checkStatus = "warn"
	statusFail checkStatus = "fail"
)

type doctorCheck struct {
	Name   string      `json:"name"`
	Status checkStatus `json:"status"`
	Detail string      `json:"detail"`
}

var doctorOutput string

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run diagnostic checks",
	Long: `Check that every endpoint has what it needs: provider credentials, chat
models, the persona, contact recipients, the site URL and the rate limit
store. Exits non-zero when a check fails.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		format, err := output.ParseFormat(doctorOutput)
		if err != nil {
			return errwrap.WrapInvalidInput(ctx, err, "invalid --output")
		}

		cfg, err := loadConfig()
		if err != nil {
			return errwrap.WrapConfigInvalid(ctx, err, "config load failed")
		}

		checks := runDoctor(ctx, cfg)
		rendered, err := output.Render(format, doctorReport(checks))
		if err != nil {
			return errwrap.WrapInternal(ctx, err, "render failed")
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), rendered)

		failed := 0
		for _, c := range checks {
			if c.Status == statusFail {
				failed++
			}
		}
		if failed > 0 {
			return errwrap.NewConfigInvalidError(fmt.Sprintf("%d doctor check(s) failed", failed))
		}
		return nil
	},
}

// runDoctor evaluates cfg. Only the redis check touches the network.
func runDoctor(ctx context.Context, cfg *config.Config) []doctorCheck {
	version := crucible.GetVersion()
	configFile := viper.ConfigFileUsed()
	if configFile == "" {
		configFile = "none (defaults and environment)"
	}

	checks := []doctorCheck{
		{Name: "runtime", Status: statusPass, Detail: fmt.Sprintf("%s, gofulmen %s, crucible %s", runtime.Version(), version.Gofulmen, version.Crucible)},
		{Name: "config file", Status: statusPass, Detail: configFile},
	}

	if cfg.Chat.Credential() != "" {
		checks = append(checks, doctorCheck{Name: "chat credential", Status: statusPass,
			Detail: fmt.Sprintf("%s set (provider %s)", cfg.Chat.CredentialEnv(), cfg.Chat.ProviderName())})
	} else {
		checks = append(checks, doctorCheck{Name: "chat credential", Status: statusFail,
			Detail: fmt.Sprintf("%s is not set; /api/chat answers 500", cfg.Chat.CredentialEnv())})
	}

	if len(cfg.Chat.Models) > 0 {
		checks = append(checks, doctorCheck{Name: "chat models", Status: statusPass, Detail: strings.Join(cfg.Chat.Models, " > ")})
	} else {
		checks = append(checks, doctorCheck{Name: "chat models", Status: statusFail, Detail: "chat.models is empty"})
	}

	if p, err := prompt.Persona(cfg.Chat.PersonaFile); err != nil {
		checks = append(checks, doctorCheck{Name: "persona", Status: statusFail, Detail: err.Error()})
	} else {
		source := "embedded"
		if cfg.Chat.PersonaFile != "" {
			source = cfg.Chat.PersonaFile
		}
		checks = append(checks, doctorCheck{Name: "persona", Status: statusPass, Detail: fmt.Sprintf("%s (%s)", p.Config.Slug, source)})
	}

	if strings.TrimSpace(cfg.Mail.ResendAPIKey) != "" {
		checks = append(checks, doctorCheck{Name: "mail credential", Status: statusPass, Detail: "RESEND_API_KEY set"})
	} else {
		checks = append(checks, doctorCheck{Name: "mail credential", Status: statusFail, Detail: "RESEND_API_KEY is not set; /api/contact answers 500"})
	}

	if len(cfg.Contact.Recipients) > 0 {
		checks = append(checks, doctorCheck{Name: "contact recipients", Status: statusPass, Detail: strings.Join(cfg.Contact.Recipients, ", ")})
	} else {
		checks = append(checks, doctorCheck{Name: "contact recipients", Status: statusFail, Detail: "set CONTACT_EMAIL or contact.recipients"})
	}

	if host := siteHost(cfg.Site.URL); host != "" {
		checks = append(checks, doctorCheck{Name: "site url", Status: statusPass, Detail: cfg.Site.URL})
	} else {
		checks = append(checks, doctorCheck{Name: "site url", Status: statusWarn, Detail: fmt.Sprintf("%q is not an absolute URL", cfg.Site.URL)})
	}

	checks = append(checks, rateLimitCheck(ctx, cfg))
	return checks
}

func rateLimitCheck(ctx context.Context, cfg *config.Config) doctorCheck {
	detail := fmt.Sprintf("chat %d/%s, contact %d/%s",
		cfg.RateLimit.Chat.Limit, cfg.RateLimit.Chat.Window,
		cfg.RateLimit.Contact.Limit, cfg.RateLimit.Contact.Window)

	switch cfg.RateLimit.Backend {
	case "", "memory":
		return doctorCheck{Name: "rate limits", Status: statusPass, Detail: "memory: " + detail}
	case "redis":
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		if err := pingRedis(pingCtx, cfg.Redis); err != nil {
			// Limiters fail open, so an unreachable store is not fatal.
			return doctorCheck{Name: "rate limits", Status: statusWarn, Detail: fmt.Sprintf("redis %s unreachable: %v", cfg.Redis.Addr, err)}
		}
		return doctorCheck{Name: "rate limits", Status: statusPass, Detail: fmt.Sprintf("redis %s: %s", cfg.Redis.Addr, detail)}
	default:
		return doctorCheck{Name: "rate limits", Status: statusFail, Detail: fmt.Sprintf("unknown backend %q", cfg.RateLimit.Backend)}
	}
}

func doctorReport(checks []doctorCheck) output.Report {
	rows := make([][]string, 0, len(checks))
	passed := 0
	for _, c := range checks {
		if c.Status == statusPass {
			passed++
		}
		rows = append(rows, []string{c.Name, string(c.Status), c.Detail})
	}
	return output.Report{
		Title:  appid.Get().BinaryName + " doctor",
		Header: []string{"Check", "Status", "Detail"},
		Rows:   rows,
		Footer: []string{"", fmt.Sprintf("%d/%d ok", passed, len(checks)), ""},
		Data:   checks,
	}
}

func init() {
	rootCmd.AddCommand(doctorCmd)
	doctorCmd.Flags().StringVarP(&doctorOutput, "output", "o", "table", "output format: table, json, markdown")
}
