// registry.go holds what the registry-facing commands
// (owner, yank, publish, publish-raw) share: the --host/--token flags,
// client construction from the layered config, and manifest lookup.

package cli

import (
	"os"

	"github.com/spf13/pflag"

	"github.com/mmr-tortoise/cratectl/internal/manifest"
	"github.com/mmr-tortoise/cratectl/internal/model"
	"github.com/mmr-tortoise/cratectl/internal/registry"
)

// msgNoToken is reported when neither the config, the environment nor
// --token provides a token.
const msgNoToken = "no upload token found, please run `cratectl login`"

// registryFlags holds the connection flags common to registry commands.
type registryFlags struct {
	// host overrides the configured registry URL.
	host string

	// token overrides the configured API token.
	token string

	// verbose raises verbosity for this command only.
	verbose bool
}

// bind registers the connection flags on fs.
func (f *registryFlags) bind(fs *pflag.FlagSet) {
	fs.StringVar(&f.host, "host", "", "Registry URL (default from config)")
	fs.StringVar(&f.token, "token", "", "API token (default from config)")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "Use verbose output")
}

// client builds a registry client from the config file and environment,
// overridden by the command-line flags.
func (a *app) client(flags registryFlags) (*registry.Client, error) {
	cfg, err := a.loadConfig()
	if err != nil {
		return nil, model.WrapCLIError(model.ExitGeneralError, "failed to load config", err)
	}
	cfg.Override(flags.host, flags.token)
	if cfg.Token == "" {
		return nil, model.NewCLIError(model.ExitGeneralError, msgNoToken)
	}

	a.logger.Debug("using registry", "host", cfg.Host)
	return registry.NewClient(cfg.Host, cfg.Token,
		registry.WithLogger(a.logger),
		registry.WithUserAgent("cratectl/"+Version),
	), nil
}

// loadManifest loads the manifest at path, or the one found in the
// working directory when path is empty.
func loadManifest(path string) (*model.NewCrate, error) {
	if path == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, model.WrapCLIError(model.ExitGeneralError, "failed to get working directory", err)
		}
		path, err = manifest.Find(cwd)
		if err != nil {
			return nil, model.WrapCLIError(model.ExitGeneralError, "failed to locate a manifest", err)
		}
	}

	krate, err := manifest.Load(path)
	if err != nil {
		return nil, model.WrapCLIError(model.ExitGeneralError, "failed to read manifest", err)
	}
	return krate, nil
}
