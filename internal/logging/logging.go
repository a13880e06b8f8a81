// Package logging builds the diagnostic logger shared by cratectl
// packages. Diagnostics go to standard error and are separate from the
// user-facing shell output: by default only warnings pass, and --verbose
// or CRATECTL_LOG=debug lowers the level to debug.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

// EnvLevel is the environment variable overriding the log level.
const EnvLevel = "CRATECTL_LOG"

// New returns a logger writing to w. verbose selects debug level; the
// CRATECTL_LOG variable, when set to a known level name, wins over it.
func New(w io.Writer, verbose bool) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		Prefix: "cratectl",
	})
	logger.SetLevel(Level(verbose, os.Getenv(EnvLevel)))
	return logger
}

// Level resolves the effective level from the verbosity flag and the
// environment override.
func Level(verbose bool, env string) log.Level {
	if env != "" {
		if lvl, err := log.ParseLevel(strings.ToLower(env)); err == nil {
			return lvl
		}
	}
	if verbose {
		return log.DebugLevel
	}
	return log.WarnLevel
}

// Discard returns a logger that drops everything. Tests and library
// callers that do not care about diagnostics use it.
func Discard() *log.Logger {
	return log.New(io.Discard)
}
