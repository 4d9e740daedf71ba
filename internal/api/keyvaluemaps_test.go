package api

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bellycard/apigee-cli/internal/models"
)

const kvmBase = "/v1/o/acme/environments/test/keyvaluemaps"

var testEntries = []models.Entry{
	{Name: "key_one", Value: "value_one"},
	{Name: "key_two", Value: "value_two"},
}

const configurationJSON = `{"name":"configuration","entry":[{"name":"key_one","value":"value_one"},{"name":"key_two","value":"value_two"}]}`

func TestListConfigs(t *testing.T) {
	f := newFakeAPI(t)
	f.on("GET", kvmBase, 200, `{"keyValueMap":[`+configurationJSON+`]}`)
	c := newTestClient(t, f)

	maps, err := c.ListConfigs(context.Background())
	require.NoError(t, err)
	require.Len(t, maps, 1)
	assert.Equal(t, "configuration", maps[0].Name)
	assert.Equal(t, testEntries, maps[0].Entries)

	reqs := f.recorded()
	require.Len(t, reqs, 1)
	assert.Equal(t, "GET", reqs[0].Method)
	assert.Equal(t, "expand=true", reqs[0].RawQuery)
}

func TestListConfigs_ErrorStatus(t *testing.T) {
	f := newFakeAPI(t)
	f.on("GET", kvmBase, 500, `{}`)
	c := newTestClient(t, f)

	_, err := c.ListConfigs(context.Background())
	require.Error(t, err)
	assert.Equal(t, 500, StatusCode(err))
	assert.Len(t, f.recorded(), 1, "no retries")
}

func TestListConfigNames(t *testing.T) {
	f := newFakeAPI(t)
	f.on("GET", kvmBase, 200, `["configuration","flags"]`)
	c := newTestClient(t, f)

	names, err := c.ListConfigNames(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"configuration", "flags"}, names)
	assert.Empty(t, f.recorded()[0].RawQuery)
}

func TestReadConfig(t *testing.T) {
	f := newFakeAPI(t)
	f.on("GET", kvmBase+"/configuration", 200, configurationJSON)
	c := newTestClient(t, f)

	m, err := c.ReadConfig(context.Background(), "configuration")
	require.NoError(t, err)
	assert.Equal(t, "configuration", m.Name)
	assert.Equal(t, testEntries, m.Entries)
}

func TestReadConfig_NotFound(t *testing.T) {
	f := newFakeAPI(t)
	c := newTestClient(t, f)

	_, err := c.ReadConfig(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.Contains(t, err.Error(), `read key value map "missing"`)
}

func TestWriteConfig(t *testing.T) {
	f := newFakeAPI(t)
	f.on("POST", kvmBase, 201, configurationJSON)
	c := newTestClient(t, f)

	m, err := c.WriteConfig(context.Background(), "configuration", testEntries)
	require.NoError(t, err)
	assert.Equal(t, "configuration", m.Name)

	reqs := f.recorded()
	require.Len(t, reqs, 1)
	assert.Equal(t, "POST", reqs[0].Method)
	assert.Equal(t, "application/json", reqs[0].ContentType)
	assert.JSONEq(t, configurationJSON, reqs[0].Body)
}

func TestWriteConfig_EmptyEntriesEncodeAsArray(t *testing.T) {
	f := newFakeAPI(t)
	f.on("POST", kvmBase, 201, `{"name":"empty","entry":[]}`)
	c := newTestClient(t, f)

	_, err := c.WriteConfig(context.Background(), "empty", nil)
	require.NoError(t, err)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(f.recorded()[0].Body), &body))
	assert.Equal(t, []interface{}{}, body["entry"])
}

func TestWriteConfig_Conflict(t *testing.T) {
	f := newFakeAPI(t)
	f.on("POST", kvmBase, 409, `{"code":"keyvaluemap.service.KeyValueMapAlreadyExists"}`)
	c := newTestClient(t, f)

	_, err := c.WriteConfig(context.Background(), "configuration", testEntries)
	require.Error(t, err)
	assert.Equal(t, 409, StatusCode(err))
	assert.Contains(t, err.Error(), "KeyValueMapAlreadyExists")
}

func TestUpdateConfig(t *testing.T) {
	f := newFakeAPI(t)
	f.on("PUT", kvmBase+"/configuration", 200, configurationJSON)
	c := newTestClient(t, f)

	_, err := c.UpdateConfig(context.Background(), "configuration", testEntries)
	require.NoError(t, err)

	reqs := f.recorded()
	require.Len(t, reqs, 1)
	assert.Equal(t, "PUT", reqs[0].Method)
	assert.Equal(t, kvmBase+"/configuration", reqs[0].Path)
	assert.JSONEq(t, configurationJSON, reqs[0].Body)
}

func TestRemoveConfig(t *testing.T) {
	f := newFakeAPI(t)
	f.on("DELETE", kvmBase+"/configuration", 200, configurationJSON)
	c := newTestClient(t, f)

	m, err := c.RemoveConfig(context.Background(), "configuration")
	require.NoError(t, err)
	assert.Equal(t, "configuration", m.Name)
	assert.Equal(t, "DELETE", f.recorded()[0].Method)
}

func TestRemoveEntry(t *testing.T) {
	f := newFakeAPI(t)
	f.on("DELETE", kvmBase+"/configuration/entries/key_one", 200, `{"name":"key_one","value":"value_one"}`)
	c := newTestClient(t, f)

	e, err := c.RemoveEntry(context.Background(), "configuration", "key_one")
	require.NoError(t, err)
	assert.Equal(t, models.Entry{Name: "key_one", Value: "value_one"}, *e)
}

func TestEnvironmentScopesURLs(t *testing.T) {
	f := newFakeAPI(t)
	f.on("GET", "/v1/o/acme/environments/prod/keyvaluemaps", 200, `[]`)
	c := newTestClient(t, f).WithEnvironment("prod")

	_, err := c.ListConfigNames(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/v1/o/acme/environments/prod/keyvaluemaps", f.recorded()[0].Path)
}
