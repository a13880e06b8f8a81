package shell

import (
	"io"
)

// MultiShell owns the output and error channels of one invocation.
type MultiShell struct {
	out     *Shell
	err     *Shell
	verbose bool
}

// NewMultiShell pairs two already-configured shells.
func NewMultiShell(out, err *Shell, verbose bool) *MultiShell {
	return &MultiShell{out: out, err: err, verbose: verbose}
}

// New builds a MultiShell over stdout and stderr, requesting colour on
// both and detecting terminals per channel.
func New(stdout, stderr io.Writer, verbose bool) *MultiShell {
	out := Create(stdout, ShellConfig{Color: true, Verbose: verbose, Tty: isTerminal(stdout)})
	err := Create(stderr, ShellConfig{Color: true, Verbose: verbose, Tty: isTerminal(stderr)})
	return NewMultiShell(out, err, verbose)
}

// Out returns the standard output shell.
func (m *MultiShell) Out() *Shell { return m.out }

// Err returns the standard error shell.
func (m *MultiShell) Err() *Shell { return m.err }

// IsVerbose reports the current verbosity.
func (m *MultiShell) IsVerbose() bool { return m.verbose }

// SetVerbose changes verbosity. The root command calls this once after
// parsing its own --verbose flag.
func (m *MultiShell) SetVerbose(verbose bool) {
	m.verbose = verbose
	m.out.config.Verbose = verbose
	m.err.config.Verbose = verbose
}

// Say writes a line to the output channel.
func (m *MultiShell) Say(msg string, color Color) error {
	return m.out.Say(msg, color)
}

// Status writes a green status line to the error channel, keeping
// standard output free for the JSON result.
func (m *MultiShell) Status(verb, msg string) error {
	return m.err.Status(verb, msg, ColorGreen)
}

// Error writes msg in red to the error channel. Empty messages are
// skipped.
func (m *MultiShell) Error(msg string) error {
	if msg == "" {
		return nil
	}
	return m.err.Say(msg, ColorRed)
}

// Warn writes a yellow warning to the error channel.
func (m *MultiShell) Warn(msg string) error {
	return m.err.Say("warning: "+msg, ColorYellow)
}

// Concise runs fn only when verbosity is off.
func (m *MultiShell) Concise(fn func(*MultiShell) error) error {
	if m.verbose {
		return nil
	}
	return fn(m)
}

// Verbose runs fn only when verbosity is on.
func (m *MultiShell) Verbose(fn func(*MultiShell) error) error {
	if !m.verbose {
		return nil
	}
	return fn(m)
}
