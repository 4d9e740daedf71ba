package api

import (
	"context"
	"fmt"
	nethttp "net/http"
	"net/url"

	"github.com/bellycard/apigee-cli/internal/models"
)

const (
	keyValueMapsPath     = "/o/{{org}}/environments/{{env}}/keyvaluemaps"
	keyValueMapPath      = keyValueMapsPath + "/{{name}}"
	keyValueMapEntryPath = keyValueMapPath + "/entries/{{entry}}"
)

// KeyValueMapsURL returns the collection URL for key-value maps in the client's environment.
func (c *Client) KeyValueMapsURL() string {
	return c.url(c.path(keyValueMapsPath, nil), nil)
}

// ListConfigs returns every key-value map in the environment, entries included.
func (c *Client) ListConfigs(ctx context.Context) ([]models.KeyValueMap, error) {
	var list models.KeyValueMapList
	err := c.callJSON(ctx, request{
		method: nethttp.MethodGet,
		path:   c.path(keyValueMapsPath, nil),
		query:  url.Values{"expand": {"true"}},
	}, nil, &list, nethttp.StatusOK)
	if err != nil {
		return nil, fmt.Errorf("list key value maps: %w", err)
	}
	return list.KeyValueMaps, nil
}

// ListConfigNames returns the names of the key-value maps in the environment.
func (c *Client) ListConfigNames(ctx context.Context) ([]string, error) {
	var names []string
	err := c.callJSON(ctx, request{
		method: nethttp.MethodGet,
		path:   c.path(keyValueMapsPath, nil),
	}, nil, &names, nethttp.StatusOK)
	if err != nil {
		return nil, fmt.Errorf("list key value map names: %w", err)
	}
	return names, nil
}

// ReadConfig returns a single key-value map.
func (c *Client) ReadConfig(ctx context.Context, name string) (*models.KeyValueMap, error) {
	var m models.KeyValueMap
	err := c.callJSON(ctx, request{
		method: nethttp.MethodGet,
		path:   c.path(keyValueMapPath, map[string]string{"name": name}),
	}, nil, &m, nethttp.StatusOK)
	if err != nil {
		return nil, fmt.Errorf("read key value map %q: %w", name, err)
	}
	return &m, nil
}

// WriteConfig creates a key-value map with the given entries.
func (c *Client) WriteConfig(ctx context.Context, name string, entries []models.Entry) (*models.KeyValueMap, error) {
	var m models.KeyValueMap
	err := c.callJSON(ctx, request{
		method: nethttp.MethodPost,
		path:   c.path(keyValueMapsPath, nil),
	}, newKeyValueMap(name, entries), &m, nethttp.StatusCreated, nethttp.StatusOK)
	if err != nil {
		return nil, fmt.Errorf("create key value map %q: %w", name, err)
	}
	return &m, nil
}

// UpdateConfig replaces the entries of an existing key-value map.
func (c *Client) UpdateConfig(ctx context.Context, name string, entries []models.Entry) (*models.KeyValueMap, error) {
	var m models.KeyValueMap
	err := c.callJSON(ctx, request{
		method: nethttp.MethodPut,
		path:   c.path(keyValueMapPath, map[string]string{"name": name}),
	}, newKeyValueMap(name, entries), &m, nethttp.StatusOK)
	if err != nil {
		return nil, fmt.Errorf("update key value map %q: %w", name, err)
	}
	return &m, nil
}

// RemoveConfig deletes a key-value map and returns it as it was before deletion.
func (c *Client) RemoveConfig(ctx context.Context, name string) (*models.KeyValueMap, error) {
	var m models.KeyValueMap
	err := c.callJSON(ctx, request{
		method: nethttp.MethodDelete,
		path:   c.path(keyValueMapPath, map[string]string{"name": name}),
	}, nil, &m, nethttp.StatusOK)
	if err != nil {
		return nil, fmt.Errorf("delete key value map %q: %w", name, err)
	}
	return &m, nil
}

// RemoveEntry deletes one entry from a key-value map and returns the removed entry.
func (c *Client) RemoveEntry(ctx context.Context, name, entry string) (*models.Entry, error) {
	var e models.Entry
	err := c.callJSON(ctx, request{
		method: nethttp.MethodDelete,
		path:   c.path(keyValueMapEntryPath, map[string]string{"name": name, "entry": entry}),
	}, nil, &e, nethttp.StatusOK)
	if err != nil {
		return nil, fmt.Errorf("delete entry %q from key value map %q: %w", entry, name, err)
	}
	return &e, nil
}

// newKeyValueMap builds the request body; entries is never nil so it encodes as [].
func newKeyValueMap(name string, entries []models.Entry) models.KeyValueMap {
	if entries == nil {
		entries = []models.Entry{}
	}
	return models.KeyValueMap{Name: name, Entries: entries}
}
