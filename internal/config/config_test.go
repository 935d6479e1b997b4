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
	for _, key := range []string{"FOCUSBOARD_DATA_DIR", "FOCUSBOARD_LOG_LEVEL", "FOCUSBOARD_YTDLP", "FOCUSBOARD_BCRYPT_COST", "GOOGLE_API_KEY"} {
		t.Setenv(key, "")
	}
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_DATA_HOME", t.TempDir())
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 3, cfg.Video.Retry.MaxAttempts)
	assert.Equal(t, 2*time.Second, cfg.Video.Retry.Delay)
	assert.Equal(t, "gemini-1.5-flash-latest", cfg.Summarizer.Model)
	assert.Equal(t, "focusboard", filepath.Base(cfg.DataDir))
}

func TestLoadFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
data_dir: /srv/focus
log:
  level: debug
categories: [Side Projects, Work]
video:
  retry:
    max_attempts: 5
    delay: 500ms
    backoff: exponential
summarizer:
  timeout: 2m
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/srv/focus", cfg.DataDir)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 5, cfg.Video.Retry.MaxAttempts)
	assert.Equal(t, 500*time.Millisecond, cfg.Video.Retry.Delay)
	assert.Equal(t, 2*time.Minute, cfg.Summarizer.Timeout)
	// untouched keys keep their defaults
	assert.Equal(t, "yt-dlp", cfg.Video.YTDLPPath)

	assert.Equal(t, filepath.Join("/srv/focus", "users", "users.json"), cfg.UsersFile())
	assert.Equal(t, filepath.Join("/srv/focus", "project_data"), cfg.ProjectsDir())
	assert.Equal(t, filepath.Join("/srv/focus", "focusboard.log"), cfg.LogFile())

	cats := cfg.AllCategories([]string{"Personal", "Work"})
	assert.Equal(t, []string{"Personal", "Work", "Side Projects"}, cats)

	p := cfg.Video.Retry.Policy()
	assert.Equal(t, 5, p.MaxAttempts)
	assert.Equal(t, time.Second, p.Backoff(2))
}

func TestEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("FOCUSBOARD_DATA_DIR", "/tmp/fb")
	t.Setenv("GOOGLE_API_KEY", "secret")
	t.Setenv("FOCUSBOARD_BCRYPT_COST", "4")

	cfg, err := Load(writeConfig(t, "data_dir: /ignored\n"))
	require.NoError(t, err)
	assert.Equal(t, "/tmp/fb", cfg.DataDir)
	assert.Equal(t, "secret", cfg.Summarizer.APIKey)
	assert.Equal(t, 4, cfg.Auth.BcryptCost)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadEmptyFile(t *testing.T) {
	clearEnv(t)
	_, err := Load(writeConfig(t, ""))
	assert.NoError(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"log level", func(c *Config) { c.Log.Level = "loud" }},
		{"attempts", func(c *Config) { c.Video.Retry.MaxAttempts = 0 }},
		{"backoff", func(c *Config) { c.Video.Retry.Backoff = "random" }},
		{"cost", func(c *Config) { c.Auth.BcryptCost = 2 }},
		{"timeout", func(c *Config) { c.Summarizer.Timeout = 0 }},
		{"data dir", func(c *Config) { c.DataDir = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
	assert.NoError(t, Default().Validate())
}
