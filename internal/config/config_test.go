package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"AGENTDESK_BASE_URL", "AGENTDESK_API_TOKEN", "AGENTDESK_LOG_LEVEL",
		"AGENTDESK_EMBEDDED", "AGENTDESK_REQUEST_TIMEOUT",
	} {
		t.Setenv(name, "")
		os.Unsetenv(name)
	}
}

func TestLoadConfigCreatesDefault(t *testing.T) {
	clearEnv(t)
	t.Setenv("AGENTDESK_HOME", t.TempDir())

	cfg, err := LoadConfig()

	require.NoError(t, err)
	assert.Equal(t, "default", cfg.ActiveProfile)
	assert.False(t, cfg.IsValid())
	assert.FileExists(t, filepath.Join(cfg.Dir(), "config.json"))
	assert.Equal(t, filepath.Join(cfg.Dir(), "agentdesk.log"), cfg.LogPath())
	assert.Equal(t, DefaultRequestTimeout, cfg.RequestTimeout())
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel())
}

func TestLoadConfigReadsActiveProfile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
  "profiles": {
    "prod": {"base_url": "https://support.example.com/", "api_token": "tok", "agent_id": "agent-7"},
    "staging": {"base_url": "https://staging.example.com", "api_token": "tok2"}
  },
  "active_profile": "prod"
}`), 0o600))

	cfg, err := LoadConfigFrom(path)

	require.NoError(t, err)
	assert.True(t, cfg.IsValid())
	assert.Equal(t, "https://support.example.com", cfg.GetBaseURL())
	assert.Equal(t, "tok", cfg.GetAPIToken())
	assert.Equal(t, "agent-7", cfg.GetAgentID())
	assert.Equal(t, []string{"prod", "staging"}, cfg.ProfileNames())
}

func TestLoadConfigMissingActiveProfileFallsBack(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
  "profiles": {"b": {"base_url": "https://b"}, "a": {"base_url": "https://a"}},
  "active_profile": "gone"
}`), 0o600))

	cfg, err := LoadConfigFrom(path)

	require.NoError(t, err)
	assert.Equal(t, "a", cfg.ActiveProfile)
	assert.Equal(t, "https://a", cfg.GetBaseURL())
}

func TestEnvOverridesProfile(t *testing.T) {
	clearEnv(t)
	t.Setenv("AGENTDESK_BASE_URL", "http://localhost:8080")
	t.Setenv("AGENTDESK_API_TOKEN", "env-token")
	t.Setenv("AGENTDESK_LOG_LEVEL", "debug")
	t.Setenv("AGENTDESK_EMBEDDED", "true")
	t.Setenv("AGENTDESK_REQUEST_TIMEOUT", "3s")

	cfg, err := LoadConfigFrom(filepath.Join(t.TempDir(), "config.json"))

	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080", cfg.GetBaseURL())
	assert.Equal(t, "env-token", cfg.GetAPIToken())
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel())
	assert.True(t, cfg.Embedded())
	assert.Equal(t, 3*time.Second, cfg.RequestTimeout())
}

func TestClearTemporaryPasswordPersists(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
  "profiles": {"default": {"base_url": "https://x", "api_token": "t", "temporary_password": "temp123"}},
  "active_profile": "default"
}`), 0o600))
	cfg, err := LoadConfigFrom(path)
	require.NoError(t, err)
	require.Equal(t, "temp123", cfg.GetTemporaryPassword())

	require.NoError(t, cfg.ClearTemporaryPassword())

	reloaded, err := LoadConfigFrom(path)
	require.NoError(t, err)
	assert.Empty(t, reloaded.GetTemporaryPassword())
}

func TestDeleteLastProfileLeavesDefault(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadConfigFrom(filepath.Join(t.TempDir(), "config.json"))
	require.NoError(t, err)

	require.NoError(t, cfg.DeleteProfile("default"))

	assert.Equal(t, []string{"default"}, cfg.ProfileNames())
	assert.Equal(t, "default", cfg.ActiveProfile)
	assert.Error(t, cfg.DeleteProfile("nope"))
}

func TestUseSwitchesProfile(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadConfigFrom(filepath.Join(t.TempDir(), "config.json"))
	require.NoError(t, err)
	cfg.Profiles["other"] = Profile{BaseURL: "https://other", APIToken: "o"}

	require.NoError(t, cfg.Use("other"))

	assert.Equal(t, "https://other", cfg.GetBaseURL())
	assert.Error(t, cfg.Use("missing"))
}

func TestPermissions(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"active_profile": "limited",
		"profiles": {
			"limited": {"base_url": "http://x", "api_token": "t", "permissions": ["conversations.read"]},
			"open": {"base_url": "http://y", "api_token": "t"}
		}
	}`), 0o600))

	cfg, err := LoadConfigFrom(path)
	require.NoError(t, err)
	assert.True(t, cfg.Can("conversations.read"))
	assert.False(t, cfg.Can("reports.read"))

	require.NoError(t, cfg.Use("open"))
	assert.True(t, cfg.Can("reports.read"), "no permission list grants everything")
}
