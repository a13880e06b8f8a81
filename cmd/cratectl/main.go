// Package main is the entry point for the cratectl CLI.
//
// cratectl publishes package archives to a registry and manages crate
// owners and yanked versions. All functionality lives in internal/cli;
// this file only injects build information and applies the exit status.
//
// Build-time variables (version, commit, date) are injected via ldflags
// during the release process. During development, they default to "dev",
// "none", and "unknown" respectively.
package main

import (
	"os"

	"github.com/mmr-tortoise/cratectl/internal/cli"
)

// version, commit, and date are set at build time via ldflags
// (-X main.version=...). They are shown by --version and `cratectl version`.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cli.Version = version
	cli.Commit = commit
	cli.Date = date

	// Main returns the exit status instead of exiting, so this is the
	// only place the process terminates.
	os.Exit(cli.Main(os.Args[1:]))
}
