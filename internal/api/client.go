// Package api provides a client for the Apigee Edge management API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	nethttp "net/http"
	"net/url"
	"strings"
	"time"

	"github.com/valyala/fasttemplate"

	"github.com/bellycard/apigee-cli/internal/config"
	"github.com/bellycard/apigee-cli/internal/constants"
	"github.com/bellycard/apigee-cli/internal/http"
	"github.com/bellycard/apigee-cli/internal/logging"
)

// Client represents the Apigee management API client, scoped to one org and environment
type Client struct {
	httpClient  *nethttp.Client
	logger      *logging.Logger
	baseURL     string
	org         string
	environment string
	username    string
	password    string
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client built from settings.
func WithHTTPClient(hc *nethttp.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *logging.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient creates a new API client
func NewClient(s *config.Settings, opts ...Option) (*Client, error) {
	baseURL := strings.TrimSuffix(strings.TrimSpace(s.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("API base URL is empty: set base_url in settings or pass --base-url")
	}
	if strings.TrimSpace(s.Org) == "" {
		return nil, errors.New("organization is empty: set org in settings or pass --org")
	}

	c := &Client{
		baseURL:     baseURL,
		org:         s.Org,
		environment: s.Environment,
		username:    s.Username,
		password:    s.Password,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logging.NewDefaultCLILogger()
	}

	if c.httpClient == nil {
		hc, err := http.NewAPIClient(s, c.logger)
		if err != nil {
			return nil, err
		}
		c.httpClient = hc
	}

	return c, nil
}

// Org returns the organization the client is scoped to.
func (c *Client) Org() string {
	return c.org
}

// Environment returns the environment the client is scoped to.
func (c *Client) Environment() string {
	return c.environment
}

// WithEnvironment returns a copy of the client scoped to another environment.
func (c *Client) WithEnvironment(env string) *Client {
	cp := *c
	cp.environment = env
	return &cp
}

// request describes a single management API call
type request struct {
	method      string
	path        string // rendered path below the API version prefix
	query       url.Values
	contentType string
	accept      string
	body        []byte
}

// path renders a URL template, substituting org, environment and the given
// variables. Every value is path-escaped.
func (c *Client) path(tmpl string, vars map[string]string) string {
	t := fasttemplate.New(tmpl, "{{", "}}")
	return t.ExecuteFuncString(func(w io.Writer, tag string) (int, error) {
		var v string
		switch tag {
		case "org":
			v = c.org
		case "env":
			v = c.environment
		default:
			v = vars[tag]
		}
		return w.Write([]byte(url.PathEscape(v)))
	})
}

// url returns the absolute URL for a rendered path and query.
func (c *Client) url(path string, query url.Values) string {
	u := c.baseURL + constants.APIVersionPrefix + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// doRequest performs an HTTP request with authentication
func (c *Client) doRequest(ctx context.Context, r request) (*nethttp.Response, error) {
	var body io.Reader
	if r.body != nil {
		body = bytes.NewReader(r.body)
	}

	target := c.url(r.path, r.query)
	req, err := nethttp.NewRequestWithContext(ctx, r.method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.SetBasicAuth(c.username, c.password)
	if r.accept != "" {
		req.Header.Set("Accept", r.accept)
	}
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug().Str("method", r.method).Str("url", target).Err(err).Msg("API call failed")
		return nil, fmt.Errorf("%s %s: request failed: %w", r.method, target, err)
	}

	c.logger.Debug().
		Str("method", r.method).
		Str("url", target).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("API call")

	return resp, nil
}

// call performs the request and returns the response body when the status code is
// one of want. Any other status becomes an *APIError.
func (c *Client) call(ctx context.Context, r request, want ...int) ([]byte, error) {
	resp, err := c.doRequest(ctx, r)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	for _, code := range want {
		if resp.StatusCode == code {
			return body, nil
		}
	}

	return nil, &APIError{
		Method:     r.method,
		URL:        c.url(r.path, r.query),
		StatusCode: resp.StatusCode,
		Body:       strings.TrimSpace(string(body)),
	}
}

// callJSON marshals in (when non-nil) as the request body, performs the request,
// and decodes the response into out (when non-nil).
func (c *Client) callJSON(ctx context.Context, r request, in, out interface{}, want ...int) error {
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		r.body = data
		r.contentType = "application/json"
	}
	r.accept = "application/json"

	body, err := c.call(ctx, r, want...)
	if err != nil {
		return err
	}

	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", r.path, err)
	}
	return nil
}
