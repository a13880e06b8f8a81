// read_manifest.go implements the "cratectl read-manifest"
// command, which prints the publish metadata of a manifest as JSON.

package cli

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/mmr-tortoise/cratectl/internal/model"
	"github.com/mmr-tortoise/cratectl/internal/runner"
	"github.com/mmr-tortoise/cratectl/internal/shell"
)

// readManifestFlags holds the flag values for the read-manifest command.
type readManifestFlags struct {
	// manifest overrides manifest discovery in the working directory.
	manifest string
}

// readManifestCommand builds "cratectl read-manifest". The metadata is
// returned as the result, so the runner prints it as JSON on stdout.
func (a *app) readManifestCommand() runner.Command[readManifestFlags, runner.NoPayload, model.NewCrate] {
	return runner.Command[readManifestFlags, runner.NoPayload, model.NewCrate]{
		Usage: runner.Usage[readManifestFlags]{
			Use:   "read-manifest [flags]",
			Short: "Print the publish metadata of a manifest as JSON",
			Args:  cobra.NoArgs,
			Flags: func(fs *pflag.FlagSet, f *readManifestFlags) {
				fs.StringVar(&f.manifest, "manifest", "", "Path to the manifest")
			},
		},
		Exec: func(_ context.Context, f readManifestFlags, _ runner.NoPayload, _ *shell.MultiShell) (*model.NewCrate, error) {
			return loadManifest(f.manifest)
		},
	}
}
