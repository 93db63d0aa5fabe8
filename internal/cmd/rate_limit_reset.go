package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	errwrap "github.com/lightspeedtech/lightspeed/internal/errors"
	"github.com/lightspeedtech/lightspeed/internal/output"
)

var (
	rateLimitResetYes    bool
	rateLimitResetDryRun bool
	rateLimitResetOutput string
)

var rateLimitResetCmd = &cobra.Command{
	Use:   "reset <client-ip>...",
	Short: "Clear rate limit windows for clients",
	Example: `  lightspeed rate-limit reset --endpoint contact 203.0.113.7 --yes
  lightspeed rate-limit reset 203.0.113.7 --dry-run`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		format, err := output.ParseFormat(rateLimitResetOutput)
		if err != nil {
			return errwrap.WrapInvalidInput(ctx, err, "invalid --output")
		}
		if !rateLimitResetYes && !rateLimitResetDryRun {
			return errwrap.WrapInvalidInput(ctx, errors.New("reset requires --yes (or use --dry-run)"), "confirmation required")
		}

		cfg, err := loadConfig()
		if err != nil {
			return errwrap.WrapConfigInvalid(ctx, err, "config load failed")
		}
		inspectors, closeFn, err := openInspectors(cfg, rateLimitEndpoint)
		if err != nil {
			return errwrap.WrapInvalidInput(ctx, err, "cannot reset rate limits")
		}
		defer func() { _ = closeFn() }()

		rows, err := resetUsage(ctx, inspectors, args, rateLimitResetDryRun)
		if err != nil {
			return errwrap.Wrap(ctx, errwrap.CodeServiceUnavailable, err, "rate limit store unavailable")
		}

		title := "rate limits cleared"
		if rateLimitResetDryRun {
			title = "rate limits that would be cleared (dry run)"
		}
		rendered, err := output.Render(format, rateLimitReport(title, rows))
		if err != nil {
			return errwrap.WrapInternal(ctx, err, "render failed")
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), rendered)
		return nil
	},
}

// resetUsage reports each client's usage before clearing it. With dryRun the
// store is left untouched.
func resetUsage(ctx context.Context, inspectors []endpointInspector, clients []string, dryRun bool) ([]rateLimitRow, error) {
	rows, err := collectUsage(ctx, inspectors, clients)
	if err != nil {
		return nil, err
	}
	if dryRun {
		return rows, nil
	}

	i := 0
	for _, ei := range inspectors {
		for _, client := range clients {
			if err := ei.inspector.Reset(ctx, client); err != nil {
				return nil, err
			}
			rows[i].Cleared = true
			i++
		}
	}
	return rows, nil
}

func init() {
	rateLimitResetCmd.Flags().BoolVar(&rateLimitResetYes, "yes", false, "confirm the reset")
	rateLimitResetCmd.Flags().BoolVar(&rateLimitResetDryRun, "dry-run", false, "show what would be cleared")
	rateLimitResetCmd.Flags().StringVarP(&rateLimitResetOutput, "output", "o", string(output.FormatTable), "output format: table, json, markdown")
}
