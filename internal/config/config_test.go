package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv unsets every override for the duration of the test. godotenv
// never replaces a variable that is set, even to "".
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"TODOS_API_URL", "TODOS_USER_ID", "TODOS_THEME", "TODOS_LOG_LEVEL",
		"TODOS_LOG_FORMAT", "TODOS_LOG_FILE", "TODOS_REQUEST_TIMEOUT", "TODOS_SERVER_ADDR",
	} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	assert.Equal(t, DefaultAPIURL, cfg.APIURL)
	assert.Equal(t, 0, cfg.UserID)
	assert.False(t, cfg.Configured())
	assert.Equal(t, 3*time.Second, cfg.ErrorTimeoutDuration())
	assert.Zero(t, cfg.RequestTimeoutDuration())
	assert.NoError(t, cfg.Validate())
}

func TestLoad_NoFiles(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())

	cfg, err := Load("", "")
	require.NoError(t, err)
	assert.Empty(t, cfg.Path)
	assert.Equal(t, DefaultAPIURL, cfg.APIURL)
}

func TestLoad_TOMLFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	t.Chdir(dir)
	writeFile(t, filepath.Join(dir, DefaultFile), `
api_url = "http://localhost:9000"
user_id = 2129
theme = "neon"
request_timeout = "10s"

[server]
addr = ":9000"
allow_origins = ["http://localhost:3000"]
`)

	cfg, err := Load("", "")
	require.NoError(t, err)
	assert.Equal(t, DefaultFile, cfg.Path)
	assert.Equal(t, "http://localhost:9000", cfg.APIURL)
	assert.Equal(t, 2129, cfg.UserID)
	assert.Equal(t, "neon", cfg.Theme)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeoutDuration())
	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.Server.AllowOrigins)
	// keys absent from the file keep their defaults
	assert.Equal(t, DefaultErrorTimeout, cfg.ErrorTimeout)
}

func TestLoad_ExplicitMissingFile(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())

	_, err := Load("missing.toml", "")
	assert.Error(t, err)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	t.Chdir(dir)
	writeFile(t, filepath.Join(dir, "custom.toml"), "user_id = 1\n")
	t.Setenv("TODOS_USER_ID", "42")
	t.Setenv("TODOS_API_URL", "http://127.0.0.1:8080")

	cfg, err := Load("custom.toml", "")
	require.NoError(t, err)
	assert.Equal(t, 42, cfg.UserID)
	assert.Equal(t, "http://127.0.0.1:8080", cfg.APIURL)
}

func TestLoad_DotEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	t.Chdir(dir)
	writeFile(t, filepath.Join(dir, ".env"), "TODOS_USER_ID=7\nTODOS_THEME=mono\n")

	cfg, err := Load("", "")
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.UserID)
	assert.Equal(t, "mono", cfg.Theme)
}

func TestLoad_BadUserIDEnv(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())
	t.Setenv("TODOS_USER_ID", "abc")

	_, err := Load("", "")
	assert.ErrorContains(t, err, "TODOS_USER_ID")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad url", func(c *Config) { c.APIURL = "localhost" }},
		{"negative user", func(c *Config) { c.UserID = -1 }},
		{"bad theme", func(c *Config) { c.Theme = "pastel" }},
		{"bad level", func(c *Config) { c.LogLevel = "loud" }},
		{"bad timeout", func(c *Config) { c.RequestTimeout = "soon" }},
		{"negative error timeout", func(c *Config) { c.ErrorTimeout = "-1s" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
