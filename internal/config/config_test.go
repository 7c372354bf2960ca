// ABOUTME: Tests for configuration loading, validation, and env expansion.
// ABOUTME: Covers defaults, duration parsing, and required-field failures.

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "engine-router.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadComplete(t *testing.T) {
	path := writeConfig(t, `
server:
  http_addr: "127.0.0.1:8080"
nats:
  url: "nats://127.0.0.1:4222"
  session_timeout: "15s"
  request_timeout: "3s"
database:
  path: "/tmp/engine-router.db"
logging:
  level: "debug"
  format: "json"
metrics:
  enabled: true
  addr: "127.0.0.1:9090"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:8080", cfg.Server.HTTPAddr)
	assert.Equal(t, "nats://127.0.0.1:4222", cfg.NATS.URL)
	assert.Equal(t, 15*time.Second, cfg.NATS.SessionTimeout)
	assert.Equal(t, 3*time.Second, cfg.NATS.RequestTimeout)
	assert.Equal(t, "/tmp/engine-router.db", cfg.Database.Path)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Metrics.Enabled)
}

func TestLoadTimeoutDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  http_addr: "127.0.0.1:8080"
nats:
  url: "nats://127.0.0.1:4222"
database:
  path: "engine-router.db"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, DefaultSessionTimeout, cfg.NATS.SessionTimeout)
	assert.Equal(t, DefaultRequestTimeout, cfg.NATS.RequestTimeout)
}

func TestLoadEnvExpansion(t *testing.T) {
	t.Setenv("ER_TEST_NATS_URL", "nats://bus.internal:4222")

	path := writeConfig(t, `
server:
  http_addr: "127.0.0.1:8080"
nats:
  url: "${ER_TEST_NATS_URL}"
database:
  path: "engine-router.db"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "nats://bus.internal:4222", cfg.NATS.URL)
}

func TestLoadMissingRequiredFields(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name: "missing http_addr",
			content: `
nats:
  url: "nats://127.0.0.1:4222"
database:
  path: "x.db"
`,
			wantErr: "server.http_addr",
		},
		{
			name: "missing nats url",
			content: `
server:
  http_addr: ":8080"
database:
  path: "x.db"
`,
			wantErr: "nats.url",
		},
		{
			name: "missing database path",
			content: `
server:
  http_addr: ":8080"
nats:
  url: "nats://127.0.0.1:4222"
`,
			wantErr: "database.path",
		},
		{
			name: "metrics enabled without addr",
			content: `
server:
  http_addr: ":8080"
nats:
  url: "nats://127.0.0.1:4222"
database:
  path: "x.db"
metrics:
  enabled: true
`,
			wantErr: "metrics.addr",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadBadDuration(t *testing.T) {
	path := writeConfig(t, `
server:
  http_addr: ":8080"
nats:
  url: "nats://127.0.0.1:4222"
  session_timeout: "soon"
database:
  path: "x.db"
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "session_timeout")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
