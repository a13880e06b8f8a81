package runner

import (
	"bytes"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/mmr-tortoise/cratectl/internal/model"
)

// Usage is the grammar of one command: its usage line, help text and
// the bindings from flags and positional arguments into the typed flags
// record F.
type Usage[F any] struct {
	// Use is the one-line usage pattern, e.g. "yank <crate> [flags]".
	Use   string
	Short string
	Long  string

	// Version enables --version when non-empty.
	Version string

	// OptionsFirst stops flag parsing at the first positional argument,
	// leaving everything after it untouched. Dispatchers use it to pass
	// a subcommand's flags through.
	OptionsFirst bool

	// Args validates the positional arguments, e.g. cobra.ExactArgs(1).
	Args cobra.PositionalArgs

	// Flags registers the command's flags, bound to fields of F.
	Flags func(fs *pflag.FlagSet, flags *F)

	// Bind copies positional arguments into F after flags are parsed.
	Bind func(flags *F, args []string) error
}

// ParseError is returned by Parse. Fatal errors are user mistakes and
// exit 1; non-fatal ones carry the help or version text the user asked
// for and exit 0.
type ParseError struct {
	// Message is cobra's error, or the help or version text.
	Message string
	Fatal   bool

	// Usage is the command's usage line, shown under fatal errors.
	Usage string
}

func (e *ParseError) Error() string       { return e.Message }
func (e *ParseError) Description() string { return e.Message }
func (e *ParseError) Cause() error        { return nil }

// Detail returns the usage line for fatal errors.
func (e *ParseError) Detail() string {
	if !e.Fatal || e.Usage == "" {
		return ""
	}
	return "Usage: " + e.Usage
}

// ExitCode maps the fatality of the error to the process exit code.
func (e *ParseError) ExitCode() model.ExitCode {
	if e.Fatal {
		return model.ExitGeneralError
	}
	return model.ExitSuccess
}

// CLIError converts the parse error for reporting, keeping the usage
// line as its detail.
func (e *ParseError) CLIError() *model.CLIError {
	return model.FromError(e, e.ExitCode())
}

// Parse parses argv against usage into a flags record.
//
// cobra prints help and version output itself and then returns without
// running the command; that outcome is captured and turned into a
// non-fatal ParseError whose message is the printed text.
func Parse[F any](usage Usage[F], argv []string) (F, error) {
	var flags F
	ran := false

	cmd := &cobra.Command{
		Use:     usage.Use,
		Short:   usage.Short,
		Long:    usage.Long,
		Version: usage.Version,
		Args:    usage.Args,

		// Errors and usage are reported through ParseError instead.
		SilenceErrors: true,
		SilenceUsage:  true,

		// RunE only runs when neither --help nor --version was given.
		RunE: func(cmd *cobra.Command, args []string) error {
			ran = true
			if usage.Bind != nil {
				return usage.Bind(&flags, args)
			}
			return nil
		},
	}
	// No "completion" subcommand: these commands take no subcommands.
	cmd.CompletionOptions.DisableDefaultCmd = true
	// With interspersing off, pflag stops at the first positional argument.
	cmd.Flags().SetInterspersed(!usage.OptionsFirst)
	if usage.Flags != nil {
		usage.Flags(cmd.Flags(), &flags)
	}

	// Help and version text is captured rather than written to the
	// terminal, so the caller decides where it goes.
	var printed bytes.Buffer
	cmd.SetOut(&printed)
	cmd.SetErr(&printed)

	// A nil slice would make cobra fall back to os.Args.
	if argv == nil {
		argv = []string{}
	}
	cmd.SetArgs(argv)

	if err := cmd.Execute(); err != nil {
		return flags, &ParseError{Message: err.Error(), Fatal: true, Usage: cmd.UseLine()}
	}
	if !ran {
		return flags, &ParseError{Message: strings.TrimRight(printed.String(), "\n")}
	}
	return flags, nil
}
