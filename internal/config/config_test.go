package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, "http://localhost:9000", cfg.Commerce.BaseURL)
	assert.Equal(t, 100, cfg.Commerce.PageLimit)
	assert.Equal(t, 3600, cfg.Cache.ListTTL)
	assert.Equal(t, 60, cfg.Cache.LookupTTL)
	assert.Equal(t, "off", cfg.Fallback.Mode)
	assert.False(t, cfg.Redis.Enabled)
}

func TestLoad_FileAndEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	yaml := `
server:
  port: 9090
commerce:
  base_url: https://shop.example.com
  publishable_key: pk_test
fallback:
  mode: on_failure
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o600))

	t.Setenv("COMMERCE_PAGE_LIMIT", "25")

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0:9090", cfg.Server.Addr())
	assert.Equal(t, "https://shop.example.com", cfg.Commerce.BaseURL)
	assert.Equal(t, "pk_test", cfg.Commerce.PublishableKey)
	assert.Equal(t, 25, cfg.Commerce.PageLimit)
	assert.Equal(t, "on_failure", cfg.Fallback.Mode)
}

func TestLoad_RejectsUnknownFallbackMode(t *testing.T) {
	t.Setenv("FALLBACK_MODE", "sometimes")

	_, err := Load(t.TempDir())
	assert.ErrorContains(t, err, "fallback.mode")
}
