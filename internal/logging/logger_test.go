package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerWritesToConsole(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(Options{Out: &buf})

	l.Info().Str("org", "acme").Msg("listing maps")

	assert.Contains(t, buf.String(), "listing maps")
	assert.Contains(t, buf.String(), "acme")
}

func TestLoggerDebugHiddenAtInfoLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(Options{Out: &buf})

	l.Debugf("request %s", "GET")

	assert.Empty(t, buf.String())
}

func TestLoggerTeesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "apigee.log")
	var buf bytes.Buffer
	l := NewLogger(Options{Out: &buf, LogFile: path})

	l.Warnf("proxy %s missing", "host")
	require.NoError(t, l.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"level":"warn"`)
	assert.Contains(t, string(data), "proxy host missing")
	assert.Contains(t, buf.String(), "proxy host missing")
}

func TestSetGlobalLevel(t *testing.T) {
	defer SetGlobalLevel(zerolog.InfoLevel)

	var buf bytes.Buffer
	l := NewLogger(Options{Out: &buf})
	SetGlobalLevel(zerolog.DebugLevel)

	l.Debug().Msg("now visible")

	assert.Contains(t, buf.String(), "now visible")
}
