package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/spend-atlas/pkg/store/client"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:8000", cfg.Addr())
	assert.Equal(t, client.DefaultBaseURL, cfg.Upstream.BaseURL)
	assert.Equal(t, 60*time.Second, cfg.Upstream.Timeout)
	assert.Equal(t, 10, cfg.Upstream.MaxPages)
	assert.Equal(t, 1, cfg.Upstream.ParallelPages)
	assert.Equal(t, "business", cfg.Upstream.RecipientType)
	assert.Equal(t, 2023, cfg.Analysis.BaseYear)
	assert.Equal(t, 2024, cfg.Analysis.ComparisonYear)
	assert.Equal(t, "memory", cfg.Cache.Backend)
	assert.Equal(t, time.Hour, cfg.Cache.TTL)
}

func TestLoadConfig_ValidYAML_PopulatesAllFields(t *testing.T) {
	// Given
	// No indentation of top-level keys to keep the YAML valid
	path := writeConfig(t, `server:
  host: "0.0.0.0"
  port: 9090
upstream:
  base_url: "http://localhost:1234/search/"
  timeout: 5s
  max_pages: 3
  parallel_pages: 2
analysis:
  base_year: 2021
cache:
  backend: duckdb
  ttl: 30m
  duckdb_path: /tmp/cache.db`)

	// When
	cfg, err := LoadConfig(path)

	// Then
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:9090", cfg.Addr())
	assert.Equal(t, "http://localhost:1234/search/", cfg.Upstream.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.Upstream.Timeout)
	assert.Equal(t, 3, cfg.Upstream.MaxPages)
	assert.Equal(t, 2, cfg.Upstream.ParallelPages)
	assert.Equal(t, 2021, cfg.Analysis.BaseYear)
	assert.Equal(t, 2022, cfg.Analysis.ComparisonYear)
	assert.Equal(t, "duckdb", cfg.Cache.Backend)
	assert.Equal(t, 30*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, "/tmp/cache.db", cfg.Cache.DuckDBPath)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("SPEND_ATLAS_SERVER_PORT", "8123")
	t.Setenv("SPEND_ATLAS_CACHE_BACKEND", "none")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, 8123, cfg.Server.Port)
	assert.Equal(t, "none", cfg.Cache.Backend)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "bad yaml", content: "server: port: : bad"},
		{name: "unknown cache backend", content: "cache:\n  backend: redis"},
		{name: "zero page cap", content: "upstream:\n  max_pages: 0"},
		{name: "comparison before base", content: "analysis:\n  base_year: 2024\n  comparison_year: 2023"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
