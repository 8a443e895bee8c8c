package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 15, cfg.Scanner.Workers)
	assert.Equal(t, 365, cfg.Scanner.LookbackDays)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, "memory", cfg.Cache.Backend)
	assert.Len(t, cfg.Sectors.Groups, 7)
	require.NoError(t, cfg.Validate())
}

func TestLoadOverrides(t *testing.T) {
	path := writeConfig(t, `
scanner:
  workers: 4
  timeout: 90s
providers:
  yahoo:
    enabled: false
cache:
  backend: none
logging:
  level: debug
  format: json
sectors:
  groups:
    - name: Ngân hàng
      top: 5
      bottom: 1
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.Scanner.Workers)
	assert.Equal(t, 90*time.Second, cfg.Scanner.Timeout)
	assert.Equal(t, 365, cfg.Scanner.LookbackDays, "unset keys keep defaults")
	assert.False(t, cfg.Providers.Yahoo.Enabled)
	assert.True(t, cfg.Providers.TCBS.Enabled)
	assert.Equal(t, "json", cfg.Logging.Format)
	require.Len(t, cfg.Sectors.Groups, 1)
	assert.Equal(t, 5, cfg.Sectors.Groups[0].Top)
	assert.Equal(t, "Ngân hàng", cfg.Sectors.Resolve("NH"))
	require.NoError(t, cfg.Validate())
}

func TestLoadInvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "scanner: [unclosed"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing config file")
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("TECHTRACK_REDIS_ADDR", "localhost:6379")
	t.Setenv("TECHTRACK_UNIVERSE", "/data/list.csv")
	t.Setenv("TECHTRACK_WORKERS", "8")

	cfg, err := Load(writeConfig(t, "cache:\n  backend: memory\n"))
	require.NoError(t, err)

	assert.Equal(t, "redis", cfg.Cache.Backend)
	assert.Equal(t, "localhost:6379", cfg.Cache.Addr)
	assert.Equal(t, "/data/list.csv", cfg.Universe.Path)
	assert.Equal(t, 8, cfg.Scanner.Workers)
	require.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"zero workers", func(c *Config) { c.Scanner.Workers = 0 }, "Workers"},
		{"unknown backend", func(c *Config) { c.Cache.Backend = "memcached" }, "Backend"},
		{"redis without addr", func(c *Config) { c.Cache.Backend = "redis"; c.Cache.Addr = "" }, "Addr"},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, "Format"},
		{"bad port", func(c *Config) { c.Server.Port = 70000 }, "Port"},
		{"negative top", func(c *Config) { c.Sectors.Groups[0].Top = -1 }, "Top"},
		{"no providers", func(c *Config) {
			c.Providers.TCBS.Enabled = false
			c.Providers.Yahoo.Enabled = false
		}, "at least one provider"},
		{"bad cron", func(c *Config) { c.Server.Refresh = "every day" }, "server.refresh"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Cache.Backend = "memory"
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestValidateAllowsEmptyRefresh(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Server.Refresh = ""
	assert.NoError(t, cfg.Validate())
}
