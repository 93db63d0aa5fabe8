package main

import (
	"github.com/fulmenhq/gofulmen/foundry"

	"github.com/lightspeedtech/lightspeed/internal/cmd"
	"github.com/lightspeedtech/lightspeed/internal/server/handlers"
)

// Set via ldflags, e.g.
// go build -ldflags="-X main.version=1.2.0 -X main.commit=abc123 -X main.buildDate=2026-01-15"
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	cmd.SetVersionInfo(version, commit, buildDate)
	handlers.SetVersionInfo(version, commit, buildDate)

	if err := cmd.Execute(); err != nil {
		cmd.ExitWithCodeStderr(foundry.ExitFailure, "Command execution failed", err)
	}
}
