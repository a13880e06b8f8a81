// login.go implements the "cratectl login" command.
//
// login stores an API token (and optionally a registry host) in the
// config file so that later commands can omit --token.

package cli

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/mmr-tortoise/cratectl/internal/model"
	"github.com/mmr-tortoise/cratectl/internal/runner"
	"github.com/mmr-tortoise/cratectl/internal/shell"
)

// loginFlags holds the flag values for the login command.
type loginFlags struct {
	// token is the positional API token.
	token string

	// host, when set, is saved as the registry URL.
	host string
}

// loginCommand builds "cratectl login". The token is the only positional
// argument; it does not talk to the registry.
func (a *app) loginCommand() runner.Command[loginFlags, runner.NoPayload, struct{}] {
	return runner.Command[loginFlags, runner.NoPayload, struct{}]{
		Usage: runner.Usage[loginFlags]{
			Use:   "login <token> [flags]",
			Short: "Save an API token for the registry",
			Long: `Save an API token for the registry.

The token is written to $CRATECTL_HOME/config.yaml (default
~/.cratectl/config.yaml), readable only by the current user.

Examples:
  cratectl login 0123456789abcdef
  cratectl login --host https://registry.example.com 0123456789abcdef`,
			Args: cobra.ExactArgs(1),
			Flags: func(fs *pflag.FlagSet, f *loginFlags) {
				fs.StringVar(&f.host, "host", "", "Registry URL to save alongside the token")
			},
			Bind: func(f *loginFlags, args []string) error {
				f.token = args[0]
				return nil
			},
		},
		Exec: func(_ context.Context, f loginFlags, _ runner.NoPayload, sh *shell.MultiShell) (*struct{}, error) {
			return nil, a.runLogin(f, sh)
		},
	}
}

// runLogin merges the token into the existing config and saves it.
func (a *app) runLogin(f loginFlags, sh *shell.MultiShell) error {
	if f.token == "" {
		return model.NewCLIError(model.ExitGeneralError, "the token must not be empty")
	}

	cfg, err := a.loadConfig()
	if err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "failed to load config", err)
	}
	cfg.Override(f.host, f.token)

	path, err := cfg.Save()
	if err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "failed to save the token", err)
	}
	a.logger.Debug("saved config", "path", path, "host", cfg.Host)
	_ = sh.Status("Login", "token for "+cfg.Host+" saved")
	return nil
}
