package shell

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmr-tortoise/cratectl/internal/model"
)

// newTestShell builds a MultiShell over two buffers. Buffers are never
// terminals, so output is always uncoloured.
func newTestShell(verbose bool) (*MultiShell, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	return New(&out, &errOut, verbose), &out, &errOut
}

// TestReportError_MessageOnly verifies that an error without a cause
// prints only its message, without the verbose hint.
func TestReportError_MessageOnly(t *testing.T) {
	sh, out, errOut := newTestShell(false)

	ReportError(sh, model.NewCLIError(model.ExitGeneralError, "no upload token found"))

	assert.Empty(t, out.String())
	assert.Equal(t, "no upload token found\n", errOut.String())
}

// TestReportError_EmptyMessage verifies that an empty message prints
// nothing at all.
func TestReportError_EmptyMessage(t *testing.T) {
	sh, _, errOut := newTestShell(false)

	ReportError(sh, model.NewCLIError(model.ExitSuccess, ""))

	assert.Empty(t, errOut.String())
}

// TestReportError_ConciseHint verifies that a cause triggers the hint in
// concise mode and that the cause itself is not shown.
func TestReportError_ConciseHint(t *testing.T) {
	sh, _, errOut := newTestShell(false)

	err := model.WrapCLIError(model.ExitGeneralError, "failed to yank", errors.New("unauthorized API access"))
	ReportError(sh, err)

	assert.Equal(t, "failed to yank\n"+VerboseHint+"\n", errOut.String())
	assert.NotContains(t, errOut.String(), "Caused by:")
}

// TestReportError_Unknown verifies the unknown branch in both modes.
func TestReportError_Unknown(t *testing.T) {
	t.Run("concise", func(t *testing.T) {
		sh, _, errOut := newTestShell(false)
		ReportError(sh, model.UnknownError(errors.New("weird failure")))

		got := errOut.String()
		assert.True(t, strings.HasPrefix(got, UnknownErrorMessage+"\n"))
		assert.Contains(t, got, VerboseHint)
		assert.NotContains(t, got, "weird failure")
	})

	t.Run("verbose", func(t *testing.T) {
		sh, _, errOut := newTestShell(true)
		ReportError(sh, model.UnknownError(errors.New("weird failure")))

		assert.Equal(t, UnknownErrorMessage+"\nweird failure\n", errOut.String())
	})
}

// TestReportError_VerboseChain verifies that a three-level cause chain
// prints exactly three "Caused by:" blocks from immediate cause to root.
func TestReportError_VerboseChain(t *testing.T) {
	sh, out, errOut := newTestShell(true)

	root := errors.New("connection reset by peer")
	mid := model.NewChainError("http error: upload interrupted", root)
	first := model.NewChainError("failed to upload archive", mid)
	ReportError(sh, model.WrapCLIError(model.ExitGeneralError, "failed to publish foo v0.1.0", first))

	want := "failed to publish foo v0.1.0\n" +
		"\nCaused by:\n  failed to upload archive\n" +
		"\nCaused by:\n  http error: upload interrupted\n" +
		"\nCaused by:\n  connection reset by peer\n"
	assert.Equal(t, want, errOut.String())
	assert.Equal(t, 3, strings.Count(errOut.String(), "Caused by:"))
	assert.NotContains(t, errOut.String(), VerboseHint)
	assert.Empty(t, out.String())
}

// TestReportError_VerboseDetail verifies that the adopted detail is
// printed before the causes.
func TestReportError_VerboseDetail(t *testing.T) {
	sh, _, errOut := newTestShell(true)

	d := &model.ChainError{Msg: "invalid manifest", DetailMsg: "line 3: expected '='", Next: errors.New("parse error")}
	ReportError(sh, model.FromError(d, model.ExitGeneralError))

	assert.Equal(t, "invalid manifest\nline 3: expected '='\n\nCaused by:\n  parse error\n", errOut.String())
}

// failingWriter rejects every write.
type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("closed") }

// TestReportError_WriteFailureIgnored verifies that reporting never panics
// or fails when the error channel is broken.
func TestReportError_WriteFailureIgnored(t *testing.T) {
	sh := New(failingWriter{}, failingWriter{}, true)
	assert.NotPanics(t, func() {
		ReportError(sh, model.WrapCLIError(model.ExitGeneralError, "x", errors.New("y")))
	})
}

// TestMultiShell_ConciseVerbose verifies the conditional blocks.
func TestMultiShell_ConciseVerbose(t *testing.T) {
	sh, _, _ := newTestShell(false)

	var ranConcise, ranVerbose bool
	require.NoError(t, sh.Concise(func(*MultiShell) error { ranConcise = true; return nil }))
	require.NoError(t, sh.Verbose(func(*MultiShell) error { ranVerbose = true; return nil }))
	assert.True(t, ranConcise)
	assert.False(t, ranVerbose)
	assert.False(t, sh.IsVerbose())

	sh.SetVerbose(true)
	assert.True(t, sh.IsVerbose())
	ranConcise, ranVerbose = false, false
	require.NoError(t, sh.Concise(func(*MultiShell) error { ranConcise = true; return nil }))
	require.NoError(t, sh.Verbose(func(*MultiShell) error { ranVerbose = true; return nil }))
	assert.False(t, ranConcise)
	assert.True(t, ranVerbose)
	assert.True(t, sh.Err().Config().Verbose)
}

// TestShell_NoColorWithoutTty verifies that colour is requested but not
// applied when the destination is not a terminal.
func TestShell_NoColorWithoutTty(t *testing.T) {
	sh, _, errOut := newTestShell(false)

	assert.True(t, sh.Err().Config().Color)
	assert.False(t, sh.Err().Config().Tty)

	require.NoError(t, sh.Status("Uploading", "foo v0.1.0"))
	require.NoError(t, sh.Warn("manifest has no license"))
	assert.Equal(t, "   Uploading foo v0.1.0\nwarning: manifest has no license\n", errOut.String())
}
