package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"EDUSURVEY_CONFIG", "API_BASE_URL", "API_TIMEOUT",
		"CREDENTIAL_BACKEND", "CREDENTIAL_SERVICE", "CREDENTIAL_SLOT", "CREDENTIAL_DB_PATH",
		"WEB_ADDRESS", "WEB_SESSION_SECRET", "WEB_ALLOW_ORIGINS",
		"LOG_LEVEL", "LOG_FORMAT",
	} {
		t.Setenv(key, "")
	}
	// t.Setenv restores the original value; unset it for the test body
	t.Setenv("SESSION_REVALIDATE", "")
	os.Unsetenv("SESSION_REVALIDATE")
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:5000", cfg.API.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.API.Timeout)
	assert.Equal(t, BackendKeyring, cfg.Credentials.Backend)
	assert.Equal(t, "token", cfg.Credentials.Slot)
	assert.Equal(t, "@every 5m", cfg.Session.Revalidate)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Empty(t, cfg.Web.AllowOrigins, "CORS stays off unless configured")
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	t.Chdir(dir)

	path := filepath.Join(dir, "edusurvey.yaml")
	data := []byte(`
api:
  base_url: https://surveys.example.com
  timeout: 10s
credentials:
  backend: sqlite
  slot: from-file
logging:
  level: debug
`)
	require.NoError(t, os.WriteFile(path, data, 0644))

	t.Setenv("EDUSURVEY_CONFIG", path)
	t.Setenv("CREDENTIAL_SLOT", "from-env")
	t.Setenv("WEB_ALLOW_ORIGINS", "http://a.test, http://b.test ,")
	t.Setenv("SESSION_REVALIDATE", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://surveys.example.com", cfg.API.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.API.Timeout)
	assert.Equal(t, BackendSQLite, cfg.Credentials.Backend)
	assert.Equal(t, "from-env", cfg.Credentials.Slot)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Web.AllowOrigins)
	assert.Empty(t, cfg.Session.Revalidate, "explicitly empty env disables revalidation")
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{name: "bad timeout", key: "API_TIMEOUT", val: "soon"},
		{name: "unknown backend", key: "CREDENTIAL_BACKEND", val: "clipboard"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Chdir(t.TempDir())
			t.Setenv(tt.key, tt.val)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestValidate_RequiresSlot(t *testing.T) {
	cfg := Default()
	cfg.Credentials.Slot = ""
	assert.Error(t, cfg.Validate())
}
