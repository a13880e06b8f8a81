// root_test.go contains end-to-end tests of the command
// dispatch: each test runs the app over in-memory streams, with a mock
// registry server where a command talks to one.

package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmr-tortoise/cratectl/internal/config"
	"github.com/mmr-tortoise/cratectl/internal/logging"
	"github.com/mmr-tortoise/cratectl/internal/model"
)

// testApp is an app over buffers.
type testApp struct {
	*app
	stdout *bytes.Buffer
	stderr *bytes.Buffer
}

func newTestApp(t *testing.T, stdin string) *testApp {
	t.Helper()
	t.Setenv(config.EnvHome, t.TempDir())
	t.Setenv("CRATECTL_REGISTRY_HOST", "")
	t.Setenv("CRATECTL_REGISTRY_TOKEN", "")

	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	return &testApp{
		app:    newApp(strings.NewReader(stdin), stdout, stderr),
		stdout: stdout,
		stderr: stderr,
	}
}

// withRegistry points the app's config at host with a token.
func (ta *testApp) withRegistry(host string) *testApp {
	ta.loadConfig = func() (*config.Config, error) {
		return &config.Config{Host: host, Token: "secret"}, nil
	}
	return ta
}

// recorded is one request seen by the mock registry.
type recorded struct {
	method string
	path   string
	auth   string
	body   []byte
}

// newRegistry starts a mock registry answering every request with status
// and body.
func newRegistry(t *testing.T, status int, body string) (*httptest.Server, *[]recorded) {
	t.Helper()
	var seen []recorded
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		seen = append(seen, recorded{
			method: r.Method,
			path:   r.URL.EscapedPath(),
			auth:   r.Header.Get("Authorization"),
			body:   data,
		})
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &seen
}

func writeManifest(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "Crate.toml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

const testManifest = `
[package]
name = "foo"
version = "0.1.0"
license = "MIT"
description = "A test crate"

[dependencies]
bar = "1.0"
`

// TestRun_NoCommand verifies that a bare invocation prints the root help
// and succeeds.
func TestRun_NoCommand(t *testing.T) {
	ta := newTestApp(t, "")
	code := ta.run(t.Context(), nil)

	assert.Equal(t, 0, code)
	assert.Contains(t, ta.stderr.String(), "cratectl [options] <command>")
	assert.Empty(t, ta.stdout.String())
}

// TestRun_HelpAndVersion verifies that help and version requests exit 0.
func TestRun_HelpAndVersion(t *testing.T) {
	for _, args := range [][]string{{"--help"}, {"--version"}, {"yank", "--help"}} {
		t.Run(strings.Join(args, " "), func(t *testing.T) {
			ta := newTestApp(t, "")
			assert.Equal(t, 0, ta.run(t.Context(), args))
			assert.NotEmpty(t, ta.stderr.String())
		})
	}
}

// TestRun_UnknownSubcommand verifies the error and the list of commands.
func TestRun_UnknownSubcommand(t *testing.T) {
	ta := newTestApp(t, "")
	code := ta.run(t.Context(), []string{"frobnicate"})

	assert.Equal(t, 1, code)
	assert.Contains(t, ta.stderr.String(), "no such subcommand: `frobnicate`")
	assert.Contains(t, ta.stderr.String(), "login, owner, publish, publish-raw, read-manifest, version, yank")
}

// TestRun_UnknownFlag verifies that a bad subcommand flag is fatal and
// shows the usage line.
func TestRun_UnknownFlag(t *testing.T) {
	ta := newTestApp(t, "")
	code := ta.run(t.Context(), []string{"-v", "read-manifest", "--bogus"})

	assert.Equal(t, 1, code)
	assert.Contains(t, ta.stderr.String(), "unknown flag: --bogus")
	assert.Contains(t, ta.stderr.String(), "Usage: read-manifest")
}

// TestRun_List verifies --list prints every command on stdout.
func TestRun_List(t *testing.T) {
	ta := newTestApp(t, "")
	code := ta.run(t.Context(), []string{"--list"})

	assert.Equal(t, 0, code)
	assert.Contains(t, ta.stdout.String(), "Installed commands:\n")
	assert.Contains(t, ta.stdout.String(), "    publish-raw\n")
}

// TestVersion verifies the JSON result line.
func TestVersion(t *testing.T) {
	ta := newTestApp(t, "")
	code := ta.run(t.Context(), []string{"version"})

	require.Equal(t, 0, code)
	assert.Equal(t, `{"version":"dev","commit":"none","date":"unknown"}`+"\n", ta.stdout.String())
}

// TestReadManifest verifies the metadata is printed in the wire format.
func TestReadManifest(t *testing.T) {
	ta := newTestApp(t, "")
	code := ta.run(t.Context(), []string{"read-manifest", "--manifest", writeManifest(t, testManifest)})
	require.Equal(t, 0, code, ta.stderr.String())

	var krate model.NewCrate
	require.NoError(t, json.Unmarshal(ta.stdout.Bytes(), &krate))
	assert.Equal(t, "foo", krate.Name)
	assert.Equal(t, "0.1.0", krate.Vers)
	require.Len(t, krate.Deps, 1)
	assert.Equal(t, "1.0", krate.Deps[0].VersionReq)
	assert.True(t, strings.HasSuffix(ta.stdout.String(), "}\n"))
}

// TestReadManifest_Missing verifies the concise and verbose reports of a
// missing manifest.
func TestReadManifest_Missing(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "Crate.toml")

	ta := newTestApp(t, "")
	assert.Equal(t, 1, ta.run(t.Context(), []string{"read-manifest", "--manifest", missing}))
	assert.Equal(t, "failed to read manifest\n"+"\nTo learn more, run the command again with --verbose.\n", ta.stderr.String())

	ta = newTestApp(t, "")
	assert.Equal(t, 1, ta.run(t.Context(), []string{"--verbose", "read-manifest", "--manifest", missing}))
	assert.Contains(t, ta.stderr.String(), "\nCaused by:\n  manifest not found: "+missing+"\n")
	assert.Empty(t, ta.stdout.String())
}

// TestLogin verifies the token is saved to the config file.
func TestLogin(t *testing.T) {
	ta := newTestApp(t, "")
	code := ta.run(t.Context(), []string{"login", "--host", "https://registry.example.com", "abc123"})
	require.Equal(t, 0, code, ta.stderr.String())
	assert.Contains(t, ta.stderr.String(), "Login token for https://registry.example.com saved")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "https://registry.example.com", cfg.Host)
	assert.Equal(t, "abc123", cfg.Token)
}

// TestOwner_AddAndRemove verifies both requests reach the registry.
func TestOwner_AddAndRemove(t *testing.T) {
	srv, seen := newRegistry(t, http.StatusOK, `{"ok":true}`)
	ta := newTestApp(t, "").withRegistry(srv.URL)

	code := ta.run(t.Context(), []string{"owner", "foo", "--add", "alice,bob", "-r", "carol"})
	require.Equal(t, 0, code, ta.stderr.String())

	require.Len(t, *seen, 2)
	add, remove := (*seen)[0], (*seen)[1]
	assert.Equal(t, http.MethodPut, add.method)
	assert.Equal(t, "/api/v1/crates/foo/owners", add.path)
	assert.Equal(t, "secret", add.auth)
	assert.JSONEq(t, `{"users":["alice","bob"]}`, string(add.body))
	assert.Equal(t, http.MethodDelete, remove.method)
	assert.JSONEq(t, `{"users":["carol"]}`, string(remove.body))
	assert.Contains(t, ta.stderr.String(), "adding alice, bob to crate foo")
}

// TestOwner_CrateFromManifest verifies the manifest supplies the name.
func TestOwner_CrateFromManifest(t *testing.T) {
	srv, seen := newRegistry(t, http.StatusOK, `{"ok":true}`)
	ta := newTestApp(t, "").withRegistry(srv.URL)

	code := ta.run(t.Context(), []string{"owner", "--manifest", writeManifest(t, testManifest), "--add", "alice"})
	require.Equal(t, 0, code, ta.stderr.String())
	require.Len(t, *seen, 1)
	assert.Equal(t, "/api/v1/crates/foo/owners", (*seen)[0].path)
}

// TestOwner_Errors covers the failures reported before and after a
// request.
func TestOwner_Errors(t *testing.T) {
	t.Run("nothing to do", func(t *testing.T) {
		ta := newTestApp(t, "")
		assert.Equal(t, 1, ta.run(t.Context(), []string{"owner", "foo"}))
		assert.Contains(t, ta.stderr.String(), "nothing to do")
	})

	t.Run("no token", func(t *testing.T) {
		ta := newTestApp(t, "")
		assert.Equal(t, 1, ta.run(t.Context(), []string{"owner", "foo", "--add", "alice"}))
		assert.Contains(t, ta.stderr.String(), msgNoToken)
	})

	t.Run("api errors in verbose mode", func(t *testing.T) {
		srv, _ := newRegistry(t, http.StatusOK, `{"errors":[{"detail":"user alice not found"}]}`)
		ta := newTestApp(t, "").withRegistry(srv.URL)

		assert.Equal(t, 1, ta.run(t.Context(), []string{"owner", "foo", "--add", "alice", "-v"}))
		stderr := ta.stderr.String()
		assert.Contains(t, stderr, "failed to add owners to crate foo\n")
		assert.Contains(t, stderr, "\nCaused by:\n  api errors: user alice not found\n")
		assert.NotContains(t, stderr, "--verbose.")
	})

	t.Run("unauthorized", func(t *testing.T) {
		srv, _ := newRegistry(t, http.StatusForbidden, "")
		ta := newTestApp(t, "").withRegistry(srv.URL)

		assert.Equal(t, 1, ta.run(t.Context(), []string{"owner", "foo", "--add", "alice"}))
		assert.Contains(t, ta.stderr.String(), "To learn more, run the command again with --verbose.")
	})
}

// TestYank verifies yank and unyank requests and status lines.
func TestYank(t *testing.T) {
	srv, seen := newRegistry(t, http.StatusOK, `{"ok":true}`)

	ta := newTestApp(t, "").withRegistry(srv.URL)
	require.Equal(t, 0, ta.run(t.Context(), []string{"yank", "foo", "--vers", "0.1.0"}))
	assert.Contains(t, ta.stderr.String(), "Yank foo@0.1.0")

	ta = newTestApp(t, "").withRegistry(srv.URL)
	require.Equal(t, 0, ta.run(t.Context(), []string{"yank", "foo", "--vers", "0.1.0", "--undo"}))
	assert.Contains(t, ta.stderr.String(), "Unyank foo@0.1.0")

	require.Len(t, *seen, 2)
	assert.Equal(t, http.MethodDelete, (*seen)[0].method)
	assert.Equal(t, "/api/v1/crates/foo/0.1.0/yank", (*seen)[0].path)
	assert.Equal(t, http.MethodPut, (*seen)[1].method)
	assert.Equal(t, "/api/v1/crates/foo/0.1.0/unyank", (*seen)[1].path)

	ta = newTestApp(t, "").withRegistry(srv.URL)
	assert.Equal(t, 1, ta.run(t.Context(), []string{"yank", "foo"}))
	assert.Contains(t, ta.stderr.String(), "--vers is required")
}

// TestYank_UnexpectedStatusShowsBody verifies the registry's explanation
// of a failed request reaches the verbose report.
func TestYank_UnexpectedStatusShowsBody(t *testing.T) {
	srv, _ := newRegistry(t, http.StatusInternalServerError, "crate foo is locked for maintenance\n")

	ta := newTestApp(t, "").withRegistry(srv.URL)
	code := ta.run(t.Context(), []string{"-v", "yank", "foo", "--vers", "1.0.0"})

	assert.Equal(t, 1, code)
	assert.Contains(t, ta.stderr.String(), "failed to yank foo@1.0.0\n")
	assert.Contains(t, ta.stderr.String(),
		"\nCaused by:\n  failed to get a 200 OK response, got 500: crate foo is locked for maintenance\n")
	assert.Empty(t, ta.stdout.String())
}

// TestVerbose_RootAndSubcommand verifies -v may be given on both sides of
// the subcommand name and raises the shell and logger once.
func TestVerbose_RootAndSubcommand(t *testing.T) {
	t.Setenv(logging.EnvLevel, "")
	srv, _ := newRegistry(t, http.StatusOK, `{"ok":true}`)

	ta := newTestApp(t, "").withRegistry(srv.URL)
	assert.False(t, ta.sh.IsVerbose())

	code := ta.run(t.Context(), []string{"-v", "yank", "foo", "--vers", "1.0.0", "-v"})
	require.Equal(t, 0, code, ta.stderr.String())
	assert.True(t, ta.sh.IsVerbose())
	assert.Equal(t, log.DebugLevel, ta.logger.GetLevel())

	ta = newTestApp(t, "").withRegistry(srv.URL)
	require.Equal(t, 0, ta.run(t.Context(), []string{"yank", "foo", "--vers", "1.0.0"}))
	assert.False(t, ta.sh.IsVerbose())
}
