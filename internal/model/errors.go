package model

import (
	"errors"
)

// ExitCode defines the CLI exit codes. Only two values are produced by the
// pipeline today: success, and a general failure. Non-fatal parse outcomes
// (help or version requested) also exit with ExitSuccess.
type ExitCode uint8

const (
	// ExitSuccess indicates the command completed successfully, or that
	// the user asked for help/version output.
	ExitSuccess ExitCode = 0

	// ExitGeneralError indicates any failure: malformed arguments, bad
	// stdin payload, registry or filesystem errors.
	ExitGeneralError ExitCode = 1
)

// Int returns the exit code as an int suitable for os.Exit.
func (c ExitCode) Int() int {
	return int(c)
}

// Describer is implemented by errors that expose more structure than a
// flat message. The error reporter prints Detail and walks Cause in
// verbose mode.
//
// Detail returns "" when there is no detail. Cause returns nil when the
// error is the root of its chain. A cause chain must terminate: producers
// must never build a cycle.
type Describer interface {
	error
	Description() string
	Detail() string
	Cause() error
}

// CLIError is the unified error representation of the command pipeline.
// It carries the exit code for the process, the one-line human message,
// and optionally the underlying error whose structure is preserved for
// verbose reporting.
type CLIError struct {
	// Message is the human-readable one-line summary. It may be empty,
	// in which case only the cause chain is reported.
	Message string

	// Code is the exit code to return to the OS. It is always set, also
	// for unknown errors.
	Code ExitCode

	// Err is the underlying error, if any.
	Err error

	// Unknown marks errors that could not be classified into a known
	// kind. They are reported as "An unknown error occurred".
	Unknown bool

	// adopted is set when Message was taken from Err rather than
	// written by the caller.
	adopted bool
}

// Error satisfies the error interface and returns the message only; the
// cause chain is rendered separately by the reporter.
func (e *CLIError) Error() string {
	return e.Message
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
func (e *CLIError) Unwrap() error {
	return e.Err
}

// Description returns the one-line message.
func (e *CLIError) Description() string {
	return e.Message
}

// Detail returns the detail string of the underlying error when this
// error adopted it (see FromError), or "".
func (e *CLIError) Detail() string {
	if !e.adopted {
		return ""
	}
	if d, ok := e.Err.(Describer); ok {
		return d.Detail()
	}
	return ""
}

// Cause returns the next error in the cause chain.
//
// An error built by FromError or UnknownError has taken over the message
// of the error it holds, so the chain continues at that error's own
// cause. An error built by WrapCLIError reports the wrapped error itself
// as its cause.
func (e *CLIError) Cause() error {
	if e.Err == nil {
		return nil
	}
	if !e.adopted {
		return e.Err
	}
	if d, ok := e.Err.(Describer); ok {
		return d.Cause()
	}
	return nil
}

// NewCLIError creates a new CLIError with the given exit code and message.
func NewCLIError(code ExitCode, message string) *CLIError {
	return &CLIError{Code: code, Message: message}
}

// WrapCLIError creates a new CLIError that wraps an existing error. The
// wrapped error becomes the first "Caused by:" entry in verbose output.
func WrapCLIError(code ExitCode, message string, err error) *CLIError {
	return &CLIError{Code: code, Message: message, Err: err}
}

// FromError converts err into a CLIError with the given exit code,
// adopting its message. When err is a Describer, its detail and cause
// remain reachable through the returned error.
func FromError(err error, code ExitCode) *CLIError {
	return &CLIError{Code: code, Message: DescriptionOf(err), Err: err, adopted: true}
}

// UnknownError wraps an error that does not fit any recognized kind.
func UnknownError(err error) *CLIError {
	return &CLIError{Code: ExitGeneralError, Message: DescriptionOf(err), Err: err, Unknown: true, adopted: true}
}

// AsCLIError converts any error into a CLIError. A CLIError found anywhere
// in err's chain is returned as-is; everything else is unknown. The
// conversion is total: it never returns nil for a non-nil err.
func AsCLIError(err error) *CLIError {
	if err == nil {
		return nil
	}
	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		return cliErr
	}
	return UnknownError(err)
}

// Chain returns the cause chain below err, from the immediate cause to
// the root. Errors that are not Describers end the chain.
func Chain(err error) []error {
	var chain []error
	d, ok := err.(Describer)
	for ok {
		cause := d.Cause()
		if cause == nil {
			break
		}
		chain = append(chain, cause)
		d, ok = cause.(Describer)
	}
	return chain
}

// DescriptionOf returns the description of err, preferring the
// Describer form over Error().
func DescriptionOf(err error) string {
	if d, ok := err.(Describer); ok {
		return d.Description()
	}
	return err.Error()
}

// ChainError is a minimal Describer used to build explicit cause chains
// for errors that have no structure of their own.
type ChainError struct {
	Msg       string
	DetailMsg string
	Next      error
}

// NewChainError returns a ChainError with the given message and cause.
func NewChainError(msg string, cause error) *ChainError {
	return &ChainError{Msg: msg, Next: cause}
}

func (e *ChainError) Error() string       { return e.Msg }
func (e *ChainError) Description() string { return e.Msg }
func (e *ChainError) Detail() string      { return e.DetailMsg }
func (e *ChainError) Cause() error        { return e.Next }
func (e *ChainError) Unwrap() error       { return e.Next }
