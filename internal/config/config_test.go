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
	path := filepath.Join(t.TempDir(), "config.test.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "release", cfg.Mode)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 54*time.Second, cfg.PingPeriod)
	assert.Equal(t, "memory", cfg.Cache.Backend)
	assert.Equal(t, 4*time.Hour, cfg.Cache.TTL)
	assert.Equal(t, 10*time.Second, cfg.Upstream.Timeout)
	assert.Equal(t, "Admin", cfg.Hub.AdminAlias)
	assert.Equal(t, time.Second, cfg.Hub.RateInterval)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
}

func TestLoadFileAndEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
mode: debug
port: 9000
cache:
  backend: redis
  redis_url: redis://localhost:6379/0
  ttl: 30m
hub:
  admin_alias: VHO
`)
	t.Setenv("HEARINGS_PORT", "9100")
	t.Setenv("HEARINGS_HUB_RATE_LIMIT", "5")
	t.Setenv("HEARINGS_UPSTREAM_TIMEOUT", "2s")

	cfg, err := load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Mode)
	assert.Equal(t, 9100, cfg.Port, "environment wins over the file")
	assert.Equal(t, "redis", cfg.Cache.Backend)
	assert.Equal(t, 30*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, "VHO", cfg.Hub.AdminAlias)
	assert.Equal(t, 5, cfg.Hub.RateLimit)
	assert.Equal(t, 2*time.Second, cfg.Upstream.Timeout)
}

func TestLoadRejectsInvalidCache(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "given redis without url when loaded then error", body: "cache:\n  backend: redis\n"},
		{name: "given unknown backend when loaded then error", body: "cache:\n  backend: etcd\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}
