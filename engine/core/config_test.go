package core

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "assetforge.toml")
	err := os.WriteFile(path, []byte(`
content_root = "game/content"
platform = "Android"
allow_source_only = true

[remote]
timeout_ms = 250
remote_fonts = true

[build]
platforms = ["Windows", "Linux"]
workers = 2
`), 0644)
	require.NoError(t, err)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "game/content", cfg.ContentRoot)
	assert.Equal(t, "Android", cfg.Platform)
	assert.True(t, cfg.AllowSourceOnly)
	assert.Equal(t, 250, cfg.Remote.TimeoutMillis)
	assert.True(t, cfg.Remote.RemoteFonts)
	assert.Equal(t, []string{"Windows", "Linux"}, cfg.Build.Platforms)
	assert.Equal(t, 2, cfg.Build.Workers)

	// untouched keys keep their defaults
	assert.Equal(t, 4321, cfg.Remote.DiscoveryPort)
	assert.Equal(t, 8080, cfg.Remote.HTTPPort)
	assert.True(t, cfg.HotReload)
}

func TestLoadConfigYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "assetforge.yaml")
	err := os.WriteFile(path, []byte("content_root: assets\nproduction: true\nstore:\n  redis_addr: localhost:6379\n"), 0644)
	require.NoError(t, err)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "assets", cfg.ContentRoot)
	assert.True(t, cfg.Production)
	assert.Equal(t, "localhost:6379", cfg.Store.RedisAddr)
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name string
		file string
		body string
	}{
		{"bad port", "a.toml", "[remote]\ndiscovery_port = 70000\n"},
		{"empty root", "b.toml", "content_root = \"\"\n"},
		{"no workers", "c.toml", "[build]\nworkers = 0\n"},
		{"unknown format", "d.json", "{}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.file)
			require.NoError(t, os.WriteFile(path, []byte(tt.body), 0644))
			_, err := LoadConfig(path)
			assert.Error(t, err)
		})
	}
}

func TestConfigWriteRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.toml")
	cfg := DefaultConfig()
	cfg.SourcePath = "../src"
	require.NoError(t, cfg.Write(path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "../src", loaded.SourcePath)
	assert.Equal(t, cfg.Remote, loaded.Remote)
	assert.Equal(t, cfg.EmbeddedNamespace, loaded.EmbeddedNamespace)
}

func TestSetLogLevel(t *testing.T) {
	assert.True(t, SetLogLevel("warn"))
	assert.False(t, SetLogLevel("loud"))
	assert.True(t, SetLogLevel("debug"))
}
