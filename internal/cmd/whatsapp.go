package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	errwrap "github.com/lightspeedtech/lightspeed/internal/errors"
	"github.com/lightspeedtech/lightspeed/internal/output"
	"github.com/lightspeedtech/lightspeed/internal/whatsapp"
)

var (
	whatsappPath    string
	whatsappMessage string
	whatsappOutput  string
)

var whatsappCmd = &cobra.Command{
	Use:   "whatsapp-link",
	Short: "Print the WhatsApp link for a site page",
	Long: `Print the wa.me link, the app link and the prefilled message the site's
WhatsApp button uses for a page. Handy for QR codes and campaign links.`,
	Example: `  lightspeed whatsapp-link --path /services/web-design
  lightspeed whatsapp-link --message "Hi, I'd like a quote" -o json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		format, err := output.ParseFormat(whatsappOutput)
		if err != nil {
			return errwrap.WrapInvalidInput(ctx, err, "invalid --output")
		}

		cfg, err := loadConfig()
		if err != nil {
			return errwrap.WrapConfigInvalid(ctx, err, "config load failed")
		}

		target := buildWhatsAppResolver(cfg).Resolve(whatsappPath, whatsappMessage)
		rendered, err := output.Render(format, whatsappReport(target))
		if err != nil {
			return errwrap.WrapInternal(ctx, err, "render failed")
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), rendered)
		return nil
	},
}

func whatsappReport(t whatsapp.Target) output.Report {
	return output.Report{
		Header: []string{"Field", "Value"},
		Rows: [][]string{
			{"url", t.URL},
			{"app_url", t.AppURL},
			{"message", t.Message},
			{"display_number", t.DisplayNumber},
		},
		Data: t,
	}
}

func init() {
	rootCmd.AddCommand(whatsappCmd)

	whatsappCmd.Flags().StringVar(&whatsappPath, "path", "/", "site path the visitor is on")
	whatsappCmd.Flags().StringVar(&whatsappMessage, "message", "", "explicit message (overrides the page message)")
	whatsappCmd.Flags().StringVarP(&whatsappOutput, "output", "o", string(output.FormatTable), "output format: table, json, markdown")
}
