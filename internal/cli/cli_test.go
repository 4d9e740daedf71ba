package cli

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bellycard/apigee-cli/internal/config"
)

type seenRequest struct {
	Method string
	Path   string
	Query  string
	Body   string
}

// mgmtAPI stands in for the management API, answering fixed responses per "METHOD path".
type mgmtAPI struct {
	*httptest.Server
	mu     sync.Mutex
	routes map[string]mgmtResponse
	seen   []seenRequest
}

type mgmtResponse struct {
	status int
	body   string
}

func newMgmtAPI(t *testing.T) *mgmtAPI {
	t.Helper()
	m := &mgmtAPI{routes: map[string]mgmtResponse{}}
	m.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)

		m.mu.Lock()
		m.seen = append(m.seen, seenRequest{Method: r.Method, Path: r.URL.Path, Query: r.URL.RawQuery, Body: string(body)})
		resp, ok := m.routes[r.Method+" "+r.URL.Path]
		m.mu.Unlock()

		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(resp.status)
		_, _ = w.Write([]byte(resp.body))
	}))
	t.Cleanup(m.Close)
	return m
}

func (m *mgmtAPI) on(method, path string, status int, body string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.routes[method+" "+path] = mgmtResponse{status: status, body: body}
}

func (m *mgmtAPI) requests() []seenRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]seenRequest(nil), m.seen...)
}

func (m *mgmtAPI) methods() []string {
	var out []string
	for _, r := range m.requests() {
		out = append(out, r.Method+" "+r.Path)
	}
	return out
}

// clearEnv keeps APIGEE_* variables of the host from leaking into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		config.EnvBaseURL, config.EnvOrg, config.EnvEnvironment,
		config.EnvUsername, config.EnvPassword, config.EnvProxyMode,
	} {
		t.Setenv(k, "")
	}
}

// execute runs the full command tree with stdin and returns what it wrote to stdout.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	clearEnv(t)

	root := NewRootCmd()
	AddCommands(root)

	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)

	err := root.Execute()
	return out.String(), err
}

// against runs a command with credentials pointing at api and an empty settings file.
func against(t *testing.T, api *mgmtAPI, stdin string, args ...string) (string, error) {
	t.Helper()
	global := []string{
		"--config", filepath.Join(t.TempDir(), "apiconfig"),
		"--base-url", api.URL,
		"--org", "acme",
		"--username", "ops@example.com",
		"--password", "secret",
	}
	return execute(t, stdin, append(global, args...)...)
}

func TestRootCommandTree(t *testing.T) {
	root := NewRootCmd()
	AddCommands(root)

	for _, path := range [][]string{
		{"resource", "list"},
		{"resource", "upload"},
		{"resource", "delete"},
		{"config", "list"},
		{"config", "push"},
		{"config", "pull"},
		{"config", "delete"},
		{"settings", "init"},
		{"settings", "show"},
		{"settings", "test"},
		{"settings", "path"},
		{"completion", "bash"},
		{"upload"},
		{"push"},
		{"pull"},
	} {
		cmd, _, err := root.Find(path)
		require.NoError(t, err, strings.Join(path, " "))
		assert.Equal(t, path[len(path)-1], cmd.Name())
	}

	for _, flag := range []string{"config", "org", "environment", "username", "password", "base-url", "verbose", "debug", "log-file", "no-color"} {
		assert.NotNil(t, root.PersistentFlags().Lookup(flag), "--%s", flag)
	}
}

func TestMissingCredentialsFailBeforeAnyRequest(t *testing.T) {
	api := newMgmtAPI(t)

	_, err := execute(t, "",
		"--config", filepath.Join(t.TempDir(), "apiconfig"),
		"--base-url", api.URL,
		"--org", "acme",
		"resource", "list")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid settings")
	assert.Contains(t, err.Error(), "username")
	assert.Empty(t, api.requests())
}

func TestCompletionWritesScript(t *testing.T) {
	out, err := execute(t, "", "completion", "bash")
	require.NoError(t, err)
	assert.Contains(t, out, "apigee")
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{" yes \n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
		{"sure\n", false},
		{"y", true},
	}

	for _, tt := range tests {
		t.Run(strings.TrimSpace(tt.input), func(t *testing.T) {
			cmd := newResourceDeleteCmd()
			var out bytes.Buffer
			cmd.SetOut(&out)
			cmd.SetIn(strings.NewReader(tt.input))

			assert.Equal(t, tt.want, confirm(cmd, "Delete it?"))
			assert.Contains(t, out.String(), "Delete it? [y/n] ")
		})
	}
}
