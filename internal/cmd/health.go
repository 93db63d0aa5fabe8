package cmd

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	errwrap "github.com/lightspeedtech/lightspeed/internal/errors"
	"github.com/lightspeedtech/lightspeed/internal/observability"
)

const defaultProbeTimeout = 5 * time.Second

var (
	healthURL     string
	healthTimeout time.Duration
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Probe a running server",
	Long: `Probe a health endpoint of a running server and exit non-zero unless it
answers 200. Suitable as a container HEALTHCHECK in images without curl.`,
	Example: `  lightspeed health
  lightspeed health --url http://127.0.0.1:8080/health/live`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := probeHealth(cmd.Context(), healthURL, healthTimeout); err != nil {
			ExitWithCode(observability.CLILogger, foundry.ExitExternalServiceUnavailable, "Health check failed", err)
			return
		}
		observability.CLILogger.Info("Health check passed", zap.String("url", healthURL))
	},
}

// probeHealth GETs url and returns an error unless the answer is 200.
func probeHealth(ctx context.Context, url string, timeout time.Duration) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return errwrap.WrapInvalidInput(ctx, err, "invalid health URL")
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return errwrap.Wrap(ctx, errwrap.CodeServiceUnavailable, err, "server unreachable")
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode != http.StatusOK {
		return errwrap.NewServiceUnavailableError(fmt.Sprintf("%s answered %d", url, resp.StatusCode))
	}
	return nil
}

func init() {
	rootCmd.AddCommand(healthCmd)

	healthCmd.Flags().StringVar(&healthURL, "url", "http://localhost:8080/health/ready", "health endpoint to probe")
	healthCmd.Flags().DurationVar(&healthTimeout, "timeout", defaultProbeTimeout, "probe timeout")
}
