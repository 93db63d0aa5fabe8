package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	errwrap "github.com/lightspeedtech/lightspeed/internal/errors"
	"github.com/lightspeedtech/lightspeed/internal/output"
)

var rateLimitStatusOutput string

type rateLimitRow struct {
	Endpoint string  `json:"endpoint"`
	Client   string  `json:"client"`
	Count    int     `json:"count"`
	Limit    int     `json:"limit"`
	ResetIn  float64 `json:"reset_in_seconds"`
	Cleared  bool    `json:"cleared,omitempty"`
}

var rateLimitStatusCmd = &cobra.Command{
	Use:   "status <client-ip>...",
	Short: "Show current window usage for clients",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		format, err := output.ParseFormat(rateLimitStatusOutput)
		if err != nil {
			return errwrap.WrapInvalidInput(ctx, err, "invalid --output")
		}

		cfg, err := loadConfig()
		if err != nil {
			return errwrap.WrapConfigInvalid(ctx, err, "config load failed")
		}
		inspectors, closeFn, err := openInspectors(cfg, rateLimitEndpoint)
		if err != nil {
			return errwrap.WrapInvalidInput(ctx, err, "cannot inspect rate limits")
		}
		defer func() { _ = closeFn() }()

		rows, err := collectUsage(ctx, inspectors, args)
		if err != nil {
			return errwrap.Wrap(ctx, errwrap.CodeServiceUnavailable, err, "rate limit store unavailable")
		}

		rendered, err := output.Render(format, rateLimitReport("rate limits", rows))
		if err != nil {
			return errwrap.WrapInternal(ctx, err, "render failed")
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), rendered)
		return nil
	},
}

func collectUsage(ctx context.Context, inspectors []endpointInspector, clients []string) ([]rateLimitRow, error) {
	rows := make([]rateLimitRow, 0, len(inspectors)*len(clients))
	for _, ei := range inspectors {
		for _, client := range clients {
			usage, err := ei.inspector.Usage(ctx, client)
			if err != nil {
				return nil, err
			}
			rows = append(rows, rateLimitRow{
				Endpoint: ei.endpoint,
				Client:   usage.Key,
				Count:    usage.Count,
				Limit:    usage.Limit,
				ResetIn:  usage.ResetIn.Seconds(),
			})
		}
	}
	return rows, nil
}

func rateLimitReport(title string, rows []rateLimitRow) output.Report {
	table := make([][]string, 0, len(rows))
	for _, r := range rows {
		resetIn := "-"
		if r.ResetIn > 0 {
			resetIn = strconv.FormatFloat(r.ResetIn, 'f', 0, 64) + "s"
		}
		table = append(table, []string{r.Endpoint, r.Client, fmt.Sprintf("%d/%d", r.Count, r.Limit), resetIn})
	}
	return output.Report{
		Title:  title,
		Header: []string{"Endpoint", "Client", "Used", "Resets In"},
		Rows:   table,
		Data:   rows,
	}
}

func init() {
	rateLimitStatusCmd.Flags().StringVarP(&rateLimitStatusOutput, "output", "o", string(output.FormatTable), "output format: table, json, markdown")
}
