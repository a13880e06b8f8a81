// owner.go implements the "cratectl owner" command.
//
// owner adds or removes owners of a crate. The crate defaults to the one
// described by the manifest in the working directory.

package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/mmr-tortoise/cratectl/internal/model"
	"github.com/mmr-tortoise/cratectl/internal/runner"
	"github.com/mmr-tortoise/cratectl/internal/shell"
)

// ownerFlags holds the flag values for the owner command.
type ownerFlags struct {
	registryFlags

	// crate is the optional positional crate name.
	crate string

	// manifest locates the crate name when crate is empty.
	manifest string

	// add and remove list the users to change.
	add    []string
	remove []string
}

// ownerCommand builds "cratectl owner". --add and --remove may be
// repeated or comma-separated.
func (a *app) ownerCommand() runner.Command[ownerFlags, runner.NoPayload, struct{}] {
	return runner.Command[ownerFlags, runner.NoPayload, struct{}]{
		Usage: runner.Usage[ownerFlags]{
			Use:   "owner [<crate>] [flags]",
			Short: "Add or remove owners of a crate",
			Long: `Add or remove owners of a crate.

When <crate> is omitted, the crate named by the manifest is used.

Examples:
  cratectl owner foo --add alice --add bob
  cratectl owner --remove carol`,
			Args: cobra.MaximumNArgs(1),
			Flags: func(fs *pflag.FlagSet, f *ownerFlags) {
				f.registryFlags.bind(fs)
				fs.StringVar(&f.manifest, "manifest", "", "Path to the manifest")
				fs.StringSliceVarP(&f.add, "add", "a", nil, "Login of a user to add as an owner")
				fs.StringSliceVarP(&f.remove, "remove", "r", nil, "Login of a user to remove as an owner")
			},
			Bind: func(f *ownerFlags, args []string) error {
				if len(args) == 1 {
					f.crate = args[0]
				}
				return nil
			},
		},
		Exec: func(ctx context.Context, f ownerFlags, _ runner.NoPayload, sh *shell.MultiShell) (*struct{}, error) {
			return nil, a.runOwner(ctx, f, sh)
		},
	}
}

// runOwner applies the additions, then the removals.
func (a *app) runOwner(ctx context.Context, f ownerFlags, sh *shell.MultiShell) error {
	a.setVerbose(f.verbose)
	if len(f.add) == 0 && len(f.remove) == 0 {
		return model.NewCLIError(model.ExitGeneralError, "nothing to do: pass --add or --remove")
	}

	name, err := crateName(f.crate, f.manifest)
	if err != nil {
		return err
	}
	client, err := a.client(f.registryFlags)
	if err != nil {
		return err
	}

	if len(f.add) > 0 {
		_ = sh.Status("Owner", "adding "+strings.Join(f.add, ", ")+" to crate "+name)
		if err := client.AddOwners(ctx, name, f.add); err != nil {
			return model.WrapCLIError(model.ExitGeneralError, "failed to add owners to crate "+name, err)
		}
	}
	if len(f.remove) > 0 {
		_ = sh.Status("Owner", "removing "+strings.Join(f.remove, ", ")+" from crate "+name)
		if err := client.RemoveOwners(ctx, name, f.remove); err != nil {
			return model.WrapCLIError(model.ExitGeneralError, "failed to remove owners from crate "+name, err)
		}
	}
	return nil
}

// crateName returns crate, or the name from the manifest when empty.
func crateName(crate, manifestPath string) (string, error) {
	if crate != "" {
		if err := model.ValidateName(crate); err != nil {
			return "", model.WrapCLIError(model.ExitGeneralError, "invalid crate name", err)
		}
		return crate, nil
	}
	krate, err := loadManifest(manifestPath)
	if err != nil {
		return "", err
	}
	return krate.Name, nil
}
