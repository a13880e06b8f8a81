// Package cli implements the cratectl commands on top of the runner
// pipeline.
//
// Each subcommand (login, owner, yank, publish, publish-raw,
// read-manifest, version) is defined in its own file within this package
// as a runner.Command. This file defines the root command, which parses
// the global options and dispatches to a subcommand, passing the rest of
// the arguments through untouched.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/mmr-tortoise/cratectl/internal/config"
	"github.com/mmr-tortoise/cratectl/internal/logging"
	"github.com/mmr-tortoise/cratectl/internal/model"
	"github.com/mmr-tortoise/cratectl/internal/runner"
	"github.com/mmr-tortoise/cratectl/internal/shell"
)

// version, commit, and date are set at build time via ldflags.
// They are injected from the main package to display version information.
var (
	// Version is the semantic version of the binary (e.g., "1.0.0").
	Version = "dev"

	// Commit is the Git commit hash the binary was built from.
	Commit = "none"

	// Date is the build timestamp.
	Date = "unknown"
)

// versionString is shown by --version.
func versionString() string {
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date)
}

// app holds what every command of one invocation shares: the process
// streams, the shell and the logger.
type app struct {
	stdin  io.Reader
	stdout io.Writer
	sh     *shell.MultiShell
	logger *log.Logger

	// loadConfig is config.Load, replaceable in tests.
	loadConfig func() (*config.Config, error)

	// commands maps subcommand names to their runners.
	commands map[string]func(ctx context.Context, env runner.Env) int
}

// newApp wires an app over the given streams.
func newApp(stdin io.Reader, stdout, stderr io.Writer) *app {
	a := &app{
		stdin:      stdin,
		stdout:     stdout,
		sh:         shell.New(stdout, stderr, false),
		logger:     logging.New(stderr, false),
		loadConfig: config.Load,
	}
	a.commands = map[string]func(ctx context.Context, env runner.Env) int{
		"login":         func(ctx context.Context, env runner.Env) int { return runner.Run(ctx, a.loginCommand(), env) },
		"owner":         func(ctx context.Context, env runner.Env) int { return runner.Run(ctx, a.ownerCommand(), env) },
		"yank":          func(ctx context.Context, env runner.Env) int { return runner.Run(ctx, a.yankCommand(), env) },
		"publish":       func(ctx context.Context, env runner.Env) int { return runner.Run(ctx, a.publishCommand(), env) },
		"publish-raw":   func(ctx context.Context, env runner.Env) int { return runner.Run(ctx, a.publishRawCommand(), env) },
		"read-manifest": func(ctx context.Context, env runner.Env) int { return runner.Run(ctx, a.readManifestCommand(), env) },
		"version":       func(ctx context.Context, env runner.Env) int { return runner.Run(ctx, a.versionCommand(), env) },
	}
	return a
}

// Main runs cratectl with the process streams and returns the exit
// status. It is the only entry point called from main.go.
func Main(args []string) int {
	return newApp(os.Stdin, os.Stdout, os.Stderr).run(context.Background(), args)
}

// env builds the runner environment for args.
func (a *app) env(args []string) runner.Env {
	return runner.Env{
		Args:   args,
		Stdin:  a.stdin,
		Stdout: a.stdout,
		Shell:  a.sh,
		Logger: a.logger,
	}
}

// setVerbose raises verbosity for the shell and the logger. Both the
// root and the subcommand accept -v, so a second call is a no-op.
func (a *app) setVerbose(verbose bool) {
	if !verbose || a.sh.IsVerbose() {
		return
	}
	a.sh.SetVerbose(true)
	a.logger.SetLevel(logging.Level(true, os.Getenv(logging.EnvLevel)))
}

// rootFlags holds the global options.
type rootFlags struct {
	// verbose applies to the shell and logger before dispatch.
	verbose bool

	// list prints the subcommand names and exits.
	list bool

	// command and args are the first positional argument and the rest,
	// left unparsed for the subcommand.
	command string
	args    []string
}

// dispatch is the root handler's result: which subcommand to run.
type dispatch struct {
	command string
	args    []string
}

// run parses the global options and hands the remaining arguments to
// the selected subcommand.
func (a *app) run(ctx context.Context, args []string) int {
	env := a.env(args)
	target, err := runner.Call(ctx, a.rootCommand(), env)
	if err != nil {
		return runner.Process[dispatch](env, nil, err).Int()
	}
	if target == nil {
		return model.ExitSuccess.Int()
	}

	sub, ok := a.commands[target.command]
	if !ok {
		err := model.NewCLIError(model.ExitGeneralError,
			fmt.Sprintf("no such subcommand: `%s`\n\nAvailable commands: %s", target.command, strings.Join(a.commandNames(), ", ")))
		return runner.Process[dispatch](env, nil, err).Int()
	}

	a.logger.Debug("dispatching", "command", target.command, "args", target.args)
	return sub(ctx, a.env(target.args))
}

// commandNames lists the subcommands in alphabetical order.
func (a *app) commandNames() []string {
	names := make([]string, 0, len(a.commands))
	for name := range a.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

const rootUsage = `cratectl [options] <command> [<args>...]`

const rootLong = `cratectl publishes packages to a registry and manages their owners
and yanked versions.

Commands:
  login          Save an API token for the registry
  owner          Add or remove owners of a crate
  yank           Yank or unyank a published version
  publish        Upload a package archive described by a manifest
  publish-raw    Upload a package archive with metadata read from stdin
  read-manifest  Print the publish metadata of a manifest as JSON
  version        Print version information as JSON

Run 'cratectl <command> --help' for more information on a command.`

// rootCommand is the options-first dispatcher. Parsing stops at the
// first positional argument, so everything from the subcommand name on is
// passed through to the subcommand's own parser.
func (a *app) rootCommand() runner.Command[rootFlags, runner.NoPayload, dispatch] {
	return runner.Command[rootFlags, runner.NoPayload, dispatch]{
		Usage: runner.Usage[rootFlags]{
			Use:          rootUsage,
			Short:        "Package registry client",
			Long:         rootLong,
			Version:      versionString(),
			// Stop at the subcommand name so its flags are not parsed here.
			OptionsFirst: true,
			Args:         cobra.ArbitraryArgs,
			Flags: func(fs *pflag.FlagSet, f *rootFlags) {
				fs.BoolVarP(&f.verbose, "verbose", "v", false, "Use verbose output")
				fs.BoolVar(&f.list, "list", false, "List installed commands")
			},
			Bind: func(f *rootFlags, args []string) error {
				if len(args) > 0 {
					f.command, f.args = args[0], args[1:]
				}
				return nil
			},
		},
		Exec: func(_ context.Context, f rootFlags, _ runner.NoPayload, sh *shell.MultiShell) (*dispatch, error) {
			a.setVerbose(f.verbose)
			if f.list {
				_ = sh.Say("Installed commands:", shell.ColorNone)
				for _, name := range a.commandNames() {
					_ = sh.Say("    "+name, shell.ColorNone)
				}
				return nil, nil
			}
			if f.command == "" {
				// Nothing to run: show the root help, as --help would.
				_, err := runner.Parse(a.rootCommand().Usage, []string{"--help"})
				var perr *runner.ParseError
				if errors.As(err, &perr) {
					return nil, perr.CLIError()
				}
				return nil, err
			}
			return &dispatch{command: f.command, args: f.args}, nil
		},
	}
}
