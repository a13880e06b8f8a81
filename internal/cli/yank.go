// yank.go implements the "cratectl yank" command.
//
// Yanking marks a published version as unusable for new dependents
// without deleting it; --undo reverses it.

package cli

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/mmr-tortoise/cratectl/internal/model"
	"github.com/mmr-tortoise/cratectl/internal/runner"
	"github.com/mmr-tortoise/cratectl/internal/shell"
)

// yankFlags holds the flag values for the yank command.
type yankFlags struct {
	registryFlags

	// crate is the optional positional crate name.
	crate string

	// manifest locates the crate name when crate is empty.
	manifest string

	// vers is the version to yank.
	vers string

	// undo unyanks instead.
	undo bool
}

// yankCommand builds "cratectl yank".
func (a *app) yankCommand() runner.Command[yankFlags, runner.NoPayload, struct{}] {
	return runner.Command[yankFlags, runner.NoPayload, struct{}]{
		Usage: runner.Usage[yankFlags]{
			Use:   "yank [<crate>] --vers <version> [flags]",
			Short: "Yank or unyank a published version",
			Long: `Remove a published version from the index, or restore it with --undo.

Examples:
  cratectl yank foo --vers 0.1.0
  cratectl yank foo --vers 0.1.0 --undo`,
			Args: cobra.MaximumNArgs(1),
			Flags: func(fs *pflag.FlagSet, f *yankFlags) {
				f.registryFlags.bind(fs)
				fs.StringVar(&f.manifest, "manifest", "", "Path to the manifest")
				fs.StringVar(&f.vers, "vers", "", "The version to yank or un-yank")
				fs.BoolVar(&f.undo, "undo", false, "Undo a yank, putting a version back into the index")
			},
			Bind: func(f *yankFlags, args []string) error {
				if len(args) == 1 {
					f.crate = args[0]
				}
				return nil
			},
		},
		Exec: func(ctx context.Context, f yankFlags, _ runner.NoPayload, sh *shell.MultiShell) (*struct{}, error) {
			return nil, a.runYank(ctx, f, sh)
		},
	}
}

// runYank yanks or unyanks crate@vers. The crate name falls back to the
// manifest when no positional argument is given.
func (a *app) runYank(ctx context.Context, f yankFlags, sh *shell.MultiShell) error {
	a.setVerbose(f.verbose)
	if f.vers == "" {
		return model.NewCLIError(model.ExitGeneralError, "--vers is required")
	}

	name, err := crateName(f.crate, f.manifest)
	if err != nil {
		return err
	}
	client, err := a.client(f.registryFlags)
	if err != nil {
		return err
	}

	target := name + "@" + f.vers
	if f.undo {
		_ = sh.Status("Unyank", target)
		if err := client.Unyank(ctx, name, f.vers); err != nil {
			return model.WrapCLIError(model.ExitGeneralError, "failed to undo a yank of "+target, err)
		}
		return nil
	}

	_ = sh.Status("Yank", target)
	if err := client.Yank(ctx, name, f.vers); err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "failed to yank "+target, err)
	}
	return nil
}
