package cmd

import (
	"fmt"
	"runtime"

	"github.com/fulmenhq/gofulmen/crucible"
	"github.com/spf13/cobra"

	"github.com/lightspeedtech/lightspeed/internal/appid"
)

var extended bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  "Print version information. Use --extended for build, Go, Gofulmen and Crucible versions.",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		name := appid.Get().BinaryName

		_, _ = fmt.Fprintf(out, "%s %s\n", name, versionInfo.Version)
		if !extended {
			return nil
		}

		deps := crucible.GetVersion()
		_, _ = fmt.Fprintf(out, "Commit: %s\n", versionInfo.Commit)
		_, _ = fmt.Fprintf(out, "Built: %s\n", versionInfo.BuildDate)
		_, _ = fmt.Fprintf(out, "Go: %s\n\n", runtime.Version())
		_, _ = fmt.Fprintf(out, "Gofulmen: %s\n", deps.Gofulmen)
		_, _ = fmt.Fprintf(out, "Crucible: %s\n", deps.Crucible)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.Flags().BoolVarP(&extended, "extended", "e", false, "show extended version information")
}
