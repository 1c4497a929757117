package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jrsteele09/twa-auth/internal/config"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "twa.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefaults(t *testing.T) {
	c := config.New()

	require.Equal(t, "http://localhost:8080", c.GetBackendURL())
	require.Equal(t, 30*time.Second, c.GetRequestTimeout())
	require.False(t, c.GetDebugRequests())
	require.Equal(t, "TWA_INIT_DATA", c.GetInitDataVar())
	require.Equal(t, ":8080", c.GetPort())
	require.Equal(t, "1", c.GetAgreementVersion())
	require.True(t, c.GetAllowedOrigins().IsAllowedOrigin("*"))
	require.Equal(t, 60, c.GetRateLimit())
}

func TestLoad_FileValues(t *testing.T) {
	path := writeConfig(t, `
backend_url = "https://auth.example.com"
request_timeout = "5s"
debug_requests = true
port = 9090
allowed_origins = ["https://web.telegram.org", "https://example.com"]
`)

	c, err := config.Load(path)
	require.NoError(t, err)

	require.Equal(t, "https://auth.example.com", c.GetBackendURL())
	require.Equal(t, 5*time.Second, c.GetRequestTimeout())
	require.True(t, c.GetDebugRequests())
	require.Equal(t, ":9090", c.GetPort())

	origins := c.GetAllowedOrigins()
	require.True(t, origins.IsAllowedOrigin("https://web.telegram.org"))
	require.True(t, origins.IsAllowedOrigin("https://example.com"))
	require.False(t, origins.IsAllowedOrigin("*"))
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `backend_url = "https://file.example.com"`)
	t.Setenv("BACKEND_URL", "https://env.example.com")
	t.Setenv("PORT", ":7000")

	c, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, "https://env.example.com", c.GetBackendURL())
	require.Equal(t, ":7000", c.GetPort())
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("REQUEST_TIMEOUT", "soon")
	t.Setenv("RATE_LIMIT", "lots")

	c, err := config.Load("")
	require.NoError(t, err)
	require.Equal(t, 30*time.Second, c.GetRequestTimeout())
	require.Equal(t, 60, c.GetRateLimit())
}

func TestLoad_BadFile(t *testing.T) {
	path := writeConfig(t, `backend_url = `)

	_, err := config.Load(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to parse")
}
