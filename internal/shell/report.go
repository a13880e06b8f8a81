package shell

import (
	"github.com/mmr-tortoise/cratectl/internal/model"
)

// VerboseHint is printed in concise mode when more information is
// available with --verbose.
const VerboseHint = "\nTo learn more, run the command again with --verbose."

// UnknownErrorMessage replaces the message of unclassified errors.
const UnknownErrorMessage = "An unknown error occurred"

// ReportError prints err on the error channel.
//
// The summary line is always printed. A hint to re-run with --verbose
// follows when a cause chain exists or the error is unknown, unless the
// shell is already verbose. In verbose mode the raw message of unknown
// errors, the detail and every cause are printed, each cause under a
// "Caused by:" header.
//
// Printing is best-effort: write failures are discarded so that reporting
// an error can never fail itself.
func ReportError(sh *MultiShell, err *model.CLIError) {
	if err == nil {
		return
	}

	switch {
	case err.Unknown:
		_ = sh.Error(UnknownErrorMessage)
	case err.Code == model.ExitSuccess && err.Message != "":
		// Help and version output: not a failure, so not painted red.
		_ = sh.Err().Say(err.Message, ColorNone)
	default:
		_ = sh.Error(err.Message)
	}

	cause := err.Cause()
	if cause != nil || err.Unknown {
		_ = sh.Concise(func(sh *MultiShell) error {
			return sh.Err().Say(VerboseHint, ColorNone)
		})
	}

	_ = sh.Verbose(func(sh *MultiShell) error {
		if err.Unknown {
			_ = sh.Error(err.Message)
		}
		if detail := err.Detail(); detail != "" {
			_ = sh.Err().Say(detail, ColorNone)
		}
		for _, c := range model.Chain(err) {
			_ = sh.Err().Say("\nCaused by:", ColorNone)
			_ = sh.Err().Say("  "+model.DescriptionOf(c), ColorNone)
		}
		return nil
	})
}
