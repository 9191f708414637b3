package config

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.False(t, cfg.Dev)
	assert.Equal(t, DefaultDataURL, cfg.DataURL)
	assert.Equal(t, 30*time.Minute, cfg.CacheTTL)
	assert.Equal(t, "", cfg.Redis.Addr())
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "codash.yaml")
	data := `
dev: true
addr: ":8080"
fetch_interval: 1h
archive: /tmp/codash/archive.db
redis:
  host: cache
  db: 2
preselected: [WW, JP]
scale: 1000000
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.Dev)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, time.Hour, cfg.FetchInterval)
	assert.Equal(t, "/tmp/codash/archive.db", cfg.Archive)
	assert.Equal(t, "cache:6379", cfg.Redis.Addr())
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.Equal(t, []string{"WW", "JP"}, cfg.Preselected)
	assert.Equal(t, 1000000.0, cfg.Scale)

	// Unset values keep their defaults
	assert.Equal(t, DefaultDataURL, cfg.DataURL)
	assert.Equal(t, "secrets", cfg.CertDir)
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default().Addr, cfg.Addr)
}

func TestLoadInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "codash.yaml")
	require.NoError(t, os.WriteFile(path, []byte("addr: [unclosed"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"COVID":           "dev",
		"CODASH_ADDR":     ":4000",
		"CODASH_DATA_URL": "http://localhost/records.json",
		"CODASH_ARCHIVE":  "archive.db",
		"LOG_LEVEL":       "debug",
		"REDIS_HOST":      "127.0.0.1",
		"REDIS_PORT":      "6380",
		"REDIS_PASS":      "secret",
		"REDIS_DB":        "3",
	}

	cfg := Default()
	require.NoError(t, cfg.applyEnv(func(k string) string { return env[k] }))

	assert.True(t, cfg.Dev)
	assert.Equal(t, ":4000", cfg.Addr)
	assert.Equal(t, "http://localhost/records.json", cfg.DataURL)
	assert.Equal(t, "archive.db", cfg.Archive)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "127.0.0.1:6380", cfg.Redis.Addr())
	assert.Equal(t, "secret", cfg.Redis.Pass)
	assert.Equal(t, 3, cfg.Redis.DB)

	env["REDIS_DB"] = "x"
	assert.Error(t, Default().applyEnv(func(k string) string { return env[k] }))
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("CODASH_ADDR", ":5000")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":5000", cfg.Addr)
}

func TestValidate(t *testing.T) {
	tests := map[string]func(c *Config){
		"no url":         func(c *Config) { c.DataURL = "" },
		"ftp url":        func(c *Config) { c.DataURL = "ftp://example.com" },
		"short interval": func(c *Config) { c.FetchInterval = time.Second },
		"no archive":     func(c *Config) { c.Archive = "" },
		"zero scale":     func(c *Config) { c.Scale = 0 },
		"no domains":     func(c *Config) { c.Domains = nil },
		"preselected": func(c *Config) {
			for i := 0; i < 31; i++ {
				c.Preselected = append(c.Preselected, fmt.Sprintf("G%02d", i))
			}
		},
	}

	for name, mutate := range tests {
		cfg := Default()
		mutate(cfg)
		assert.Error(t, cfg.Validate(), name)
	}

	cfg := Default()
	cfg.Dev = true
	cfg.Domains = nil
	assert.NoError(t, cfg.Validate())

	cfg.Preselected = make([]string, 30)
	assert.NoError(t, cfg.Validate())
}
