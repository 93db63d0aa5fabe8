package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lightspeedtech/lightspeed/internal/config"
	"github.com/lightspeedtech/lightspeed/internal/ratelimit"
)

var rateLimitEndpoint string

var rateLimitCmd = &cobra.Command{
	Use:   "rate-limit",
	Short: "Inspect and reset shared rate limit state",
	Long: `Inspect and reset per-client rate limit windows kept in Redis.

Only the redis backend can be managed from the shell; memory limiters live
inside the server process and reset when it restarts.`,
}

// endpointInspector pairs an endpoint name with its limiter store.
type endpointInspector struct {
	endpoint  string
	inspector ratelimit.Inspector
}

// openInspectors returns the inspectors selected by --endpoint ("" for all)
// and a close function for the underlying Redis client.
func openInspectors(cfg *config.Config, endpoint string) ([]endpointInspector, func() error, error) {
	if cfg.RateLimit.Backend != "redis" {
		return nil, nil, fmt.Errorf("rate limit backend is %q; only redis state can be managed", cfg.RateLimit.Backend)
	}

	lim, err := buildLimiters(cfg)
	if err != nil {
		return nil, nil, err
	}

	all := []struct {
		name    string
		limiter ratelimit.Limiter
	}{
		{chatLimiterName, lim.chat},
		{contactLimiterName, lim.contact},
	}

	endpoint = strings.ToLower(strings.TrimSpace(endpoint))
	var out []endpointInspector
	for _, l := range all {
		if endpoint != "" && endpoint != l.name {
			continue
		}
		if in, ok := l.limiter.(ratelimit.Inspector); ok {
			out = append(out, endpointInspector{endpoint: l.name, inspector: in})
		}
	}
	if len(out) == 0 {
		_ = lim.Close()
		return nil, nil, fmt.Errorf("unknown endpoint %q (want chat or contact)", endpoint)
	}
	return out, lim.Close, nil
}

func init() {
	rateLimitCmd.PersistentFlags().StringVar(&rateLimitEndpoint, "endpoint", "", "limit to one endpoint: chat|contact (default both)")
	rateLimitCmd.AddCommand(rateLimitStatusCmd)
	rateLimitCmd.AddCommand(rateLimitResetCmd)
	rootCmd.AddCommand(rateLimitCmd)
}
