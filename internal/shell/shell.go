// Package shell renders human-facing output for cratectl.
//
// Output goes to two independent channels: standard output for results
// and standard error for status lines and error reports. Each channel is
// wrapped in a Shell carrying its own ShellConfig, taken once at
// construction. Colour is requested on both channels but only honored
// when the destination is a terminal, so piped output stays plain.
//
// MultiShell pairs the two channels with the process verbosity flag. It is
// created once per invocation by the driver and handed to command handlers.
package shell

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Color selects the foreground colour of a line. ColorNone writes the
// text unstyled even on a terminal.
type Color int

const (
	ColorNone Color = iota
	ColorRed
	ColorGreen
	ColorYellow
)

// ansi maps a Color to its basic ANSI palette index.
func (c Color) ansi() lipgloss.Color {
	switch c {
	case ColorRed:
		return lipgloss.Color("1")
	case ColorGreen:
		return lipgloss.Color("2")
	case ColorYellow:
		return lipgloss.Color("3")
	default:
		return lipgloss.Color("")
	}
}

// ShellConfig is the read-only snapshot of a channel's capabilities.
type ShellConfig struct {
	// Color requests coloured output. It only takes effect when Tty is
	// also true.
	Color bool

	// Verbose mirrors the process verbosity at construction time.
	Verbose bool

	// Tty is true when the channel's destination is a terminal.
	Tty bool
}

// Shell writes lines to a single output channel.
type Shell struct {
	w        io.Writer
	config   ShellConfig
	renderer *lipgloss.Renderer
}

// Create wraps w with the given configuration.
func Create(w io.Writer, config ShellConfig) *Shell {
	return &Shell{
		w:        w,
		config:   config,
		renderer: lipgloss.NewRenderer(w),
	}
}

// Config returns the channel's configuration snapshot.
func (s *Shell) Config() ShellConfig {
	return s.config
}

// colored reports whether styles are applied on this channel.
func (s *Shell) colored() bool {
	return s.config.Color && s.config.Tty
}

// paint renders msg in the given colour when colours are honored.
func (s *Shell) paint(msg string, color Color, bold bool) string {
	if !s.colored() || (color == ColorNone && !bold) {
		return msg
	}
	style := s.renderer.NewStyle().Bold(bold)
	if color != ColorNone {
		style = style.Foreground(color.ansi())
	}
	return style.Render(msg)
}

// Say writes msg followed by a newline.
func (s *Shell) Say(msg string, color Color) error {
	_, err := fmt.Fprintln(s.w, s.paint(msg, color, false))
	return err
}

// Status writes a right-aligned bold verb followed by msg, e.g.
//
//	   Uploading foo v0.1.0
func (s *Shell) Status(verb, msg string, color Color) error {
	_, err := fmt.Fprintf(s.w, "%s %s\n", s.paint(fmt.Sprintf("%12s", verb), color, true), msg)
	return err
}

// Write lets a Shell be used as a plain io.Writer.
func (s *Shell) Write(p []byte) (int, error) {
	return s.w.Write(p)
}

// isTerminal reports whether w is a terminal. Only *os.File writers can
// be terminals; buffers and pipes wrapped in other types never are.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
