package cmd

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/fulmenhq/gofulmen/crucible"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/lightspeedtech/lightspeed/internal/appid"
	"github.com/lightspeedtech/lightspeed/internal/config"
	errwrap "github.com/lightspeedtech/lightspeed/internal/errors"
	"github.com/lightspeedtech/lightspeed/internal/output"
)

var envInfoOutput string

var envInfoCmd = &cobra.Command{
	Use:   "envinfo",
	Short: "Display environment information",
	Long:  "Display version, runtime and effective configuration. Secrets are shown only as set or not set.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		format, err := output.ParseFormat(envInfoOutput)
		if err != nil {
			return errwrap.WrapInvalidInput(ctx, err, "invalid --output")
		}
		cfg, err := loadConfig()
		if err != nil {
			return errwrap.WrapConfigInvalid(ctx, err, "config load failed")
		}

		rendered, err := output.Render(format, envInfoReport(cfg))
		if err != nil {
			return errwrap.WrapInternal(ctx, err, "render failed")
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), rendered)
		return nil
	},
}

type envEntry struct {
	Section string `json:"section"`
	Key     string `json:"key"`
	Value   string `json:"value"`
}

func envInfoEntries(cfg *config.Config) []envEntry {
	deps := crucible.GetVersion()
	configFile := viper.ConfigFileUsed()
	if configFile == "" {
		configFile = "(none)"
	}

	return []envEntry{
		{"app", "name", appid.Get().BinaryName},
		{"app", "version", versionInfo.Version},
		{"app", "commit", versionInfo.Commit},
		{"app", "built", versionInfo.BuildDate},
		{"app", "gofulmen", deps.Gofulmen},
		{"app", "crucible", deps.Crucible},
		{"runtime", "go", runtime.Version()},
		{"runtime", "platform", runtime.GOOS + "/" + runtime.GOARCH},
		{"config", "file", configFile},
		{"config", "env prefix", appid.Get().EnvPrefix},
		{"server", "listen", fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)},
		{"server", "log level", cfg.Logging.Level},
		{"server", "metrics", fmt.Sprintf("enabled=%t port=%d", cfg.Metrics.Enabled, cfg.Metrics.Port)},
		{"site", "url", cfg.Site.URL},
		{"site", "company", cfg.Site.Company},
		{"chat", "provider", cfg.Chat.ProviderName()},
		{"chat", "models", strings.Join(cfg.Chat.Models, ", ")},
		{"chat", "timeout", cfg.Chat.Timeout.String()},
		{"chat", strings.ToLower(cfg.Chat.CredentialEnv()), secretState(cfg.Chat.Credential())},
		{"mail", "provider", cfg.Mail.Provider},
		{"mail", "from", cfg.Mail.From},
		{"mail", "resend_api_key", secretState(cfg.Mail.ResendAPIKey)},
		{"contact", "recipients", strings.Join(cfg.Contact.Recipients, ", ")},
		{"ratelimit", "backend", cfg.RateLimit.Backend},
		{"ratelimit", "chat", fmt.Sprintf("%d per %s", cfg.RateLimit.Chat.Limit, cfg.RateLimit.Chat.Window)},
		{"ratelimit", "contact", fmt.Sprintf("%d per %s", cfg.RateLimit.Contact.Limit, cfg.RateLimit.Contact.Window)},
		{"whatsapp", "number", cfg.WhatsApp.DisplayNumber},
	}
}

func envInfoReport(cfg *config.Config) output.Report {
	entries := envInfoEntries(cfg)
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{e.Section, e.Key, e.Value})
	}
	return output.Report{
		Title:  appid.Get().BinaryName + " environment",
		Header: []string{"Section", "Key", "Value"},
		Rows:   rows,
		Data:   entries,
	}
}

func secretState(value string) string {
	if strings.TrimSpace(value) == "" {
		return "(not set)"
	}
	return "(set)"
}

func init() {
	rootCmd.AddCommand(envInfoCmd)
	envInfoCmd.Flags().StringVarP(&envInfoOutput, "output", "o", string(output.FormatTable), "output format: table, json, markdown")
}
