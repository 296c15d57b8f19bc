package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
	return path
}

func TestLoadFromEnv_Defaults(t *testing.T) {
	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, DefaultAuthorizeURL, cfg.Webex.AuthorizeURL)
	assert.Equal(t, DefaultAPIBaseURL, cfg.Webex.APIBaseURL)
	assert.Equal(t, DefaultDisplayText, cfg.Webex.DisplayText)
	assert.Equal(t, []string{"spark:all", "spark:kms"}, cfg.Webex.Scopes)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.False(t, cfg.Server.TrustProxy)
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	t.Setenv("WEBEX_CLIENT_ID", "C123")
	t.Setenv("WEBEX_SCOPES", "spark:people_read,spark:rooms_read")
	t.Setenv("WEBEX_IMPLICIT_ADDR", "127.0.0.1:9000")
	t.Setenv("WEBEX_IMPLICIT_TRUST_PROXY", "true")
	t.Setenv("WEBEX_IMPLICIT_SHUTDOWN_TIMEOUT", "3s")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "C123", cfg.Webex.ClientID)
	assert.Equal(t, []string{"spark:people_read", "spark:rooms_read"}, cfg.Webex.Scopes)
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	assert.True(t, cfg.Server.TrustProxy)
	assert.Equal(t, 3*time.Second, cfg.Server.ShutdownTimeout)
}

func TestLoad_NoFile(t *testing.T) {
	t.Setenv("WEBEX_CLIENT_ID", "from-env")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Webex.ClientID)
}

func TestLoad_FileOverlaysEnv(t *testing.T) {
	t.Setenv("WEBEX_DISPLAY_TEXT", "Sign in")
	t.Setenv("DEMO_CLIENT_ID", `"quoted-id"`)

	path := writeConfig(t, `{
		"version": "v1",
		"server": {"addr": ":9090", "publicUrl": "https://demo.example.com/app/", "shutdownTimeout": "2s"},
		"webex": {"clientId": {"$env": "DEMO_CLIENT_ID"}, "scopes": ["spark:all"]}
	}`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "https://demo.example.com/app/", cfg.Server.PublicURL)
	assert.Equal(t, 2*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, 10*time.Second, cfg.Server.ReadHeaderTimeout)
	assert.Equal(t, "quoted-id", cfg.Webex.ClientID)
	assert.Equal(t, []string{"spark:all"}, cfg.Webex.Scopes)
	assert.Equal(t, "Sign in", cfg.Webex.DisplayText)
	assert.Equal(t, DefaultAuthorizeURL, cfg.Webex.AuthorizeURL)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name        string
		config      string
		expectError string
	}{
		{
			name:        "missing_version",
			config:      `{"webex": {}}`,
			expectError: "config version is required",
		},
		{
			name:        "unsupported_version",
			config:      `{"version": "v0"}`,
			expectError: "unsupported config version: v0",
		},
		{
			name:        "unset_env_reference",
			config:      `{"version": "v1", "webex": {"clientId": {"$env": "WEBEX_IMPLICIT_TEST_UNSET"}}}`,
			expectError: "environment variable WEBEX_IMPLICIT_TEST_UNSET not set",
		},
		{
			name:        "bad_duration",
			config:      `{"version": "v1", "server": {"shutdownTimeout": "soon"}}`,
			expectError: "parsing shutdownTimeout",
		},
		{
			name:        "relative_public_url",
			config:      `{"version": "v1", "server": {"publicUrl": "/app"}}`,
			expectError: "server.publicUrl",
		},
		{
			name:        "invalid_json",
			config:      `{nope`,
			expectError: "parsing config JSON",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.config))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.expectError)
		})
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load("/nonexistent/config.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config file")
}

func TestParseConfigValue(t *testing.T) {
	t.Setenv("PARSE_TEST_VAR", "value")
	t.Setenv("PARSE_TEST_SINGLE", `'single'`)
	t.Setenv("PARSE_TEST_MIXED", `"mixed'`)

	tests := []struct {
		name          string
		input         string
		expectedValue string
		expectedError bool
	}{
		{name: "plain string", input: `"hello world"`, expectedValue: "hello world"},
		{name: "env reference", input: `{"$env": "PARSE_TEST_VAR"}`, expectedValue: "value"},
		{name: "single quotes stripped", input: `{"$env": "PARSE_TEST_SINGLE"}`, expectedValue: "single"},
		{name: "mixed quotes kept", input: `{"$env": "PARSE_TEST_MIXED"}`, expectedValue: `"mixed'`},
		{name: "unknown reference", input: `{"$file": "x"}`, expectedError: true},
		{name: "number", input: `42`, expectedError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value, err := ParseConfigValue([]byte(tt.input))
			if tt.expectedError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expectedValue, value)
		})
	}
}
