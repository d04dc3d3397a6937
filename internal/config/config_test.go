package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCreatesDefaultConfig(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_DATA_HOME", t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	_, err = os.Stat(GetConfigFilePath())
	require.NoError(t, err, "default config file should be written")

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, GetDefaultDatabasePath(), cfg.Database.DSN)
	assert.Equal(t, "Your Reading", cfg.Email.Subject)
	assert.False(t, cfg.Email.Allow)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[server]
addr = ":9000"

[email]
allow = true
subject = "From the file"
`), 0644))

	t.Setenv("CARDORACLE_EMAIL_SUBJECT", "From the environment")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.True(t, cfg.Email.Allow)
	assert.Equal(t, "From the environment", cfg.Email.Subject)
	assert.Equal(t, 587, cfg.Email.SMTPPort, "env-default fills unset fields")
}

func TestSetDefaultReading(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_DATA_HOME", t.TempDir())

	require.NoError(t, SetDefaultReading("", 42))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, uint(42), cfg.Display.DefaultReading)
}

func TestGetCacheDirHonoursXDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", dir)
	assert.Equal(t, filepath.Join(dir, "cardoracle"), GetCacheDir())
}
