package api

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bellycard/apigee-cli/internal/config"
	"github.com/bellycard/apigee-cli/internal/logging"
)

// recordedRequest captures what the fake management API received.
type recordedRequest struct {
	Method      string
	Path        string
	RawQuery    string
	Body        string
	ContentType string
	Accept      string
	User        string
	Password    string
}

// fakeAPI is an httptest server that answers with a fixed status/body per "METHOD path".
type fakeAPI struct {
	*httptest.Server
	mu        sync.Mutex
	requests  []recordedRequest
	responses map[string]fakeResponse
}

type fakeResponse struct {
	status int
	body   string
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()
	f := &fakeAPI{responses: map[string]fakeResponse{}}
	f.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		user, pass, _ := r.BasicAuth()

		f.mu.Lock()
		f.requests = append(f.requests, recordedRequest{
			Method:      r.Method,
			Path:        r.URL.EscapedPath(),
			RawQuery:    r.URL.RawQuery,
			Body:        string(body),
			ContentType: r.Header.Get("Content-Type"),
			Accept:      r.Header.Get("Accept"),
			User:        user,
			Password:    pass,
		})
		resp, ok := f.responses[r.Method+" "+r.URL.EscapedPath()]
		f.mu.Unlock()

		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"code":"notFound"}`))
			return
		}
		w.WriteHeader(resp.status)
		_, _ = w.Write([]byte(resp.body))
	}))
	t.Cleanup(f.Close)
	return f
}

func (f *fakeAPI) on(method, path string, status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[method+" "+path] = fakeResponse{status: status, body: body}
}

func (f *fakeAPI) recorded() []recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]recordedRequest(nil), f.requests...)
}

func newTestClient(t *testing.T, f *fakeAPI) *Client {
	t.Helper()
	s := config.New()
	s.BaseURL = f.URL
	s.Org = "acme"
	s.Environment = "test"
	s.Username = "ops@example.com"
	s.Password = "secret"

	c, err := NewClient(s, WithHTTPClient(f.Client()))
	require.NoError(t, err)
	return c
}

// TestNewClientRejectsEmptyBaseURL verifies that NewClient fails with a clear error
// when the base URL is empty, instead of producing "unsupported protocol scheme"
// errors on every request.
func TestNewClientRejectsEmptyBaseURL(t *testing.T) {
	s := config.New()
	s.BaseURL = ""
	s.Org = "acme"

	_, err := NewClient(s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API base URL is empty")
}

func TestNewClientRejectsEmptyOrg(t *testing.T) {
	_, err := NewClient(config.New())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "organization is empty")
}

// TestNewClientAcceptsValidSettings verifies NewClient builds its own HTTP client from settings.
func TestNewClientAcceptsValidSettings(t *testing.T) {
	s := config.New()
	s.Org = "acme"

	c, err := NewClient(s)
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, "acme", c.Org())
	assert.Equal(t, "test", c.Environment())
}

func TestKeyValueMapsURL(t *testing.T) {
	s := config.New()
	s.Org = "acme"
	s.Environment = "prod"

	c, err := NewClient(s)
	require.NoError(t, err)

	assert.Equal(t, "https://api.enterprise.apigee.com/v1/o/acme/environments/prod/keyvaluemaps", c.KeyValueMapsURL())
}

func TestWithEnvironment(t *testing.T) {
	s := config.New()
	s.Org = "acme"
	c, err := NewClient(s)
	require.NoError(t, err)

	prod := c.WithEnvironment("prod")

	assert.Equal(t, "prod", prod.Environment())
	assert.Equal(t, "test", c.Environment(), "original client keeps its environment")
}

func TestPathEscapesValues(t *testing.T) {
	s := config.New()
	s.Org = "acme"
	c, err := NewClient(s)
	require.NoError(t, err)

	got := c.path(keyValueMapEntryPath, map[string]string{"name": "my map", "entry": "a/b"})

	assert.Equal(t, "/o/acme/environments/test/keyvaluemaps/my%20map/entries/a%2Fb", got)
}

func TestRequestsCarryBasicAuth(t *testing.T) {
	f := newFakeAPI(t)
	f.on("GET", "/v1/o/acme/environments/test/keyvaluemaps", 200, `[]`)
	c := newTestClient(t, f)

	_, err := c.ListConfigNames(context.Background())
	require.NoError(t, err)

	reqs := f.recorded()
	require.Len(t, reqs, 1)
	assert.Equal(t, "ops@example.com", reqs[0].User)
	assert.Equal(t, "secret", reqs[0].Password)
	assert.Equal(t, "application/json", reqs[0].Accept)
}

func TestAPIErrorSentinels(t *testing.T) {
	notFound := &APIError{Method: "GET", URL: "u", StatusCode: 404}
	unauthorized := &APIError{Method: "GET", URL: "u", StatusCode: 401, Body: "nope"}

	assert.True(t, IsNotFound(notFound))
	assert.False(t, IsNotFound(unauthorized))
	assert.ErrorIs(t, unauthorized, ErrUnauthorized)
	assert.Equal(t, 401, StatusCode(unauthorized))
	assert.Equal(t, 0, StatusCode(assert.AnError))
	assert.Equal(t, "GET u: status 401: nope", unauthorized.Error())
	assert.Equal(t, "GET u: status 404", notFound.Error())
}

func TestEachCallIsLoggedOnceAtDebug(t *testing.T) {
	logging.SetGlobalLevel(zerolog.DebugLevel)
	defer logging.SetGlobalLevel(zerolog.InfoLevel)

	f := newFakeAPI(t)
	f.on("GET", kvmBase+"/configuration", 200, configurationJSON)

	s := config.New()
	s.BaseURL = f.URL
	s.Org = "acme"
	s.Username = "ops@example.com"
	s.Password = "secret"

	var buf bytes.Buffer
	c, err := NewClient(s, WithLogger(logging.NewLogger(logging.Options{Out: &buf})))
	require.NoError(t, err)

	_, err = c.ReadConfig(context.Background(), "configuration")
	require.NoError(t, err)

	out := buf.String()
	assert.Equal(t, 1, strings.Count(out, "API call"), out)
	assert.Equal(t, 1, strings.Count(out, "\n"), "one log line per call: %s", out)
	assert.NotContains(t, out, "performing request")
}
