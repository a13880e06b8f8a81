// Package runner implements the command pipeline shared by every cratectl
// command:
//
//  1. parse argv against the command's usage grammar into a flags record
//  2. for commands that declare one, read and decode a JSON payload from
//     standard input
//  3. invoke the handler with the flags, payload and the MultiShell
//  4. print the handler's result as one JSON line on standard output, or
//     report its error through the shell
//  5. return the exit status
//
// The pipeline is generic over the flags (F), payload (P) and result (R)
// types, so handlers receive typed values and decoding needs no type
// switches. The exit status is returned, never applied: the driver in
// cmd/cratectl calls os.Exit exactly once.
package runner

import (
	"context"
	"encoding/json"
	"errors"
	"io"

	"github.com/charmbracelet/log"

	"github.com/mmr-tortoise/cratectl/internal/logging"
	"github.com/mmr-tortoise/cratectl/internal/model"
	"github.com/mmr-tortoise/cratectl/internal/shell"
)

// Handler executes a command. A nil result means silent success.
type Handler[F, P, R any] func(ctx context.Context, flags F, payload P, sh *shell.MultiShell) (*R, error)

// Command is one runnable command: its grammar, whether it reads a stdin
// payload, and its handler.
type Command[F, P, R any] struct {
	Usage Usage[F]

	// ReadsStdin makes the runner decode standard input into P before
	// calling Exec. When false, Exec receives the zero P.
	ReadsStdin bool

	Exec Handler[F, P, R]
}

// Env is the process environment of one invocation. Tests substitute
// buffers for the standard streams.
type Env struct {
	Args   []string
	Stdin  io.Reader
	Stdout io.Writer
	Shell  *shell.MultiShell
	Logger *log.Logger
}

// logger returns the environment's logger or a discarding one.
func (e Env) logger() *log.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return logging.Discard()
}

// Call runs the pipeline up to and including the handler.
func Call[F, P, R any](ctx context.Context, cmd Command[F, P, R], env Env) (*R, error) {
	flags, err := Parse(cmd.Usage, env.Args)
	if err != nil {
		var perr *ParseError
		if errors.As(err, &perr) {
			return nil, perr.CLIError()
		}
		return nil, err
	}

	var payload P
	if cmd.ReadsStdin {
		payload, err = PayloadFromStdin[P](env.Stdin)
		if err != nil {
			return nil, err
		}
	}

	return cmd.Exec(ctx, flags, payload, env.Shell)
}

// Process finishes the pipeline: it reports err, or prints result as a
// single JSON line, and returns the exit status.
func Process[R any](env Env, result *R, err error) model.ExitCode {
	logger := env.logger()

	if err != nil {
		cliErr := model.AsCLIError(err)
		logger.Debug("handle_error", "err", cliErr.Message, "code", cliErr.Code, "unknown", cliErr.Unknown)
		shell.ReportError(env.Shell, cliErr)
		return cliErr.Code
	}

	if result == nil {
		return model.ExitSuccess
	}

	encoded, err := json.Marshal(result)
	if err != nil {
		return Process[R](env, nil, model.WrapCLIError(model.ExitGeneralError, "could not encode the result as JSON", err))
	}
	encoded = append(encoded, '\n')
	if _, err := env.Stdout.Write(encoded); err != nil {
		logger.Warn("failed to write result", "err", err)
		return model.ExitGeneralError
	}
	return model.ExitSuccess
}

// Run executes cmd end to end and returns the process exit status.
func Run[F, P, R any](ctx context.Context, cmd Command[F, P, R], env Env) int {
	result, err := Call(ctx, cmd, env)
	return Process(env, result, err).Int()
}
