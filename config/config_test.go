package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaultsWithoutFile(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := LoadConfig("missing.toml")
	require.NoError(t, err)
	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Storage.Driver)
	assert.Equal(t, 5000, cfg.Limits.MaxMessageLength)
	assert.Equal(t, 10, cfg.Limits.MaxPromptsPerUser)
	assert.Equal(t, 5*time.Second, cfg.Performance.ToolWarn)
	assert.Equal(t, "demo_user", cfg.Demo.OwnerID)
	assert.Equal(t, "data/msgagent.db", cfg.SQLitePath())
}

func TestLoadConfigLayers(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[server]
port = 9000
allowed_origins = "http://a.test, http://b.test"

[performance]
tool_warn = "2s"

[limits]
rate_limit_per_minute = 10
`), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("MSGAGENT_LOG_LEVEL=debug\n"), 0o600))

	t.Setenv("MSGAGENT_LIMITS_RATE_LIMIT_PER_MINUTE", "50")
	t.Setenv("MSGAGENT_STORAGE_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost/db")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Origins())
	assert.Equal(t, 2*time.Second, cfg.Performance.ToolWarn)
	assert.Equal(t, 50, cfg.Limits.RateLimitPerMinute)
	assert.Equal(t, "postgres", cfg.Storage.Driver)
	assert.Equal(t, "postgres://u:p@localhost/db", cfg.Storage.PostgresDSN)
	assert.Equal(t, "debug", cfg.Log.Level)

	// godotenv does not override, clean up what it set.
	os.Unsetenv("MSGAGENT_LOG_LEVEL")
}

func TestValidate(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	cfg.Storage.Driver = "mysql"
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Storage.Driver = "postgres"
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Limits.MinPromptLength = 20000
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.SSL.Enabled = true
	assert.Error(t, cfg.Validate())
}

func TestSecurityHeaders(t *testing.T) {
	cfg := Default()
	assert.Empty(t, cfg.GetSecurityHeaders())

	cfg.SSL.Enabled = true
	cfg.SSL.Domain = "example.com"
	assert.Equal(t, "max-age=31536000; includeSubDomains", cfg.GetSecurityHeaders()["Strict-Transport-Security"])
}
