// publish.go implements the "cratectl publish" and
// "cratectl publish-raw" commands.
//
// Both upload a package archive. publish takes the metadata from a
// manifest; publish-raw reads it as a JSON payload on standard input,
// which lets other tools drive uploads without writing a manifest.

package cli

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/mmr-tortoise/cratectl/internal/model"
	"github.com/mmr-tortoise/cratectl/internal/runner"
	"github.com/mmr-tortoise/cratectl/internal/shell"
)

// publishFlags holds the flag values for the publish command.
type publishFlags struct {
	registryFlags

	// manifest overrides manifest discovery in the working directory.
	manifest string

	// archive is the path of the package archive to upload.
	archive string

	// dryRun prints the metadata instead of uploading.
	dryRun bool
}

// publishCommand builds "cratectl publish". The result is only non-nil
// on a dry run, so the metadata is printed instead of uploaded.
func (a *app) publishCommand() runner.Command[publishFlags, runner.NoPayload, model.NewCrate] {
	return runner.Command[publishFlags, runner.NoPayload, model.NewCrate]{
		Usage: runner.Usage[publishFlags]{
			Use:   "publish --archive <path> [flags]",
			Short: "Upload a package archive described by a manifest",
			Long: `Upload a package archive to the registry.

The metadata sent with the archive is read from the manifest
(Crate.toml or crate.json in the working directory unless --manifest is
given). With --dry-run, the metadata is printed as JSON and nothing is
uploaded.

Examples:
  cratectl publish --archive target/foo-0.1.0.crate
  cratectl publish --manifest ./foo/Crate.toml --archive foo.crate --dry-run`,
			Args: cobra.NoArgs,
			Flags: func(fs *pflag.FlagSet, f *publishFlags) {
				f.registryFlags.bind(fs)
				fs.StringVar(&f.manifest, "manifest", "", "Path to the manifest")
				fs.StringVar(&f.archive, "archive", "", "Path to the package archive")
				fs.BoolVar(&f.dryRun, "dry-run", false, "Print the metadata without uploading")
			},
		},
		Exec: func(ctx context.Context, f publishFlags, _ runner.NoPayload, sh *shell.MultiShell) (*model.NewCrate, error) {
			a.setVerbose(f.verbose)
			krate, err := loadManifest(f.manifest)
			if err != nil {
				return nil, err
			}
			warnMissingMetadata(sh, krate)
			if f.dryRun {
				_ = sh.Warn("aborting upload due to dry run")
				return krate, nil
			}
			return nil, a.upload(ctx, f.registryFlags, f.archive, krate, sh)
		},
	}
}

// publishRawFlags holds the flag values for the publish-raw command.
type publishRawFlags struct {
	registryFlags

	archive string
}

// publishRawCommand builds "cratectl publish-raw". ReadsStdin makes the
// runner decode the metadata payload before Exec runs.
func (a *app) publishRawCommand() runner.Command[publishRawFlags, model.NewCrate, struct{}] {
	return runner.Command[publishRawFlags, model.NewCrate, struct{}]{
		Usage: runner.Usage[publishRawFlags]{
			Use:   "publish-raw --archive <path> [flags] < metadata.json",
			Short: "Upload a package archive with metadata read from stdin",
			Long: `Upload a package archive whose metadata is read from standard input.

Standard input must hold one JSON object in the registry's publish
metadata format, as printed by 'cratectl read-manifest'.

Example:
  cratectl read-manifest | cratectl publish-raw --archive foo-0.1.0.crate`,
			Args: cobra.NoArgs,
			Flags: func(fs *pflag.FlagSet, f *publishRawFlags) {
				f.registryFlags.bind(fs)
				fs.StringVar(&f.archive, "archive", "", "Path to the package archive")
			},
		},
		ReadsStdin: true,
		Exec: func(ctx context.Context, f publishRawFlags, krate model.NewCrate, sh *shell.MultiShell) (*struct{}, error) {
			a.setVerbose(f.verbose)
			krate.Normalize()
			return nil, a.upload(ctx, f.registryFlags, f.archive, &krate, sh)
		},
	}
}

// upload sends archive with krate's metadata.
func (a *app) upload(ctx context.Context, flags registryFlags, archive string, krate *model.NewCrate, sh *shell.MultiShell) error {
	if archive == "" {
		return model.NewCLIError(model.ExitGeneralError, "--archive is required")
	}
	client, err := a.client(flags)
	if err != nil {
		return err
	}

	_ = sh.Status("Uploading", krate.String()+" to "+client.Host())
	if err := client.Publish(ctx, krate, archive); err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "failed to publish "+krate.String(), err)
	}
	return nil
}

// warnMissingMetadata warns about fields registries commonly require.
func warnMissingMetadata(sh *shell.MultiShell, krate *model.NewCrate) {
	if krate.License == nil {
		_ = sh.Warn("manifest has no license")
	}
	if krate.Description == nil {
		_ = sh.Warn("manifest has no description")
	}
}
