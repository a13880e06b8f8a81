// version.go implements the "cratectl version" command.

package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/cratectl/internal/runner"
	"github.com/mmr-tortoise/cratectl/internal/shell"
)

// versionInfo is the JSON printed by the version command.
type versionInfo struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// versionCommand builds "cratectl version". Values are set at link time.
func (a *app) versionCommand() runner.Command[struct{}, runner.NoPayload, versionInfo] {
	return runner.Command[struct{}, runner.NoPayload, versionInfo]{
		Usage: runner.Usage[struct{}]{
			Use:   "version",
			Short: "Print version information as JSON",
			Args:  cobra.NoArgs,
		},
		Exec: func(context.Context, struct{}, runner.NoPayload, *shell.MultiShell) (*versionInfo, error) {
			return &versionInfo{Version: Version, Commit: Commit, Date: Date}, nil
		},
	}
}
