package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, 1024.0, cfg.ViewWidth)
	assert.Equal(t, 1024, cfg.TileSize)
	assert.Equal(t, 2*time.Minute, cfg.ExtractTimeout)
	assert.Equal(t, 10, cfg.ContextBefore)
	assert.Equal(t, 0, cfg.ContextAfter)
	assert.Equal(t, "eng", cfg.OCRLanguage)
	assert.True(t, cfg.LogRequests)
	assert.NoError(t, cfg.Validate())
}

func TestLoadEnvironment(t *testing.T) {
	t.Setenv("PDFVIEW_ADDR", "127.0.0.1:9000")
	t.Setenv("PDFVIEW_VIEW_WIDTH", "800.5")
	t.Setenv("PDFVIEW_EXTRACT_TIMEOUT", "30s")
	t.Setenv("PDFVIEW_CONTEXT_AFTER", "5")
	t.Setenv("PDFVIEW_LOG_REQUESTS", "false")
	t.Setenv("PDFVIEW_LOG_FORMAT", "json")
	t.Setenv("PDFVIEW_CONTEXT_BEFORE", "not-a-number")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.Addr)
	assert.Equal(t, 800.5, cfg.ViewWidth)
	assert.Equal(t, 30*time.Second, cfg.ExtractTimeout)
	assert.Equal(t, 5, cfg.ContextAfter)
	assert.Equal(t, 10, cfg.ContextBefore, "unparsable values fall back to the default")
	assert.False(t, cfg.LogRequests)
	assert.Equal(t, "json", cfg.Logger().Format)
}

func TestLoadEnvFile(t *testing.T) {
	require.NoError(t, os.Unsetenv("PDFVIEW_TILE_SIZE"))
	t.Cleanup(func() { os.Unsetenv("PDFVIEW_TILE_SIZE") })

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("PDFVIEW_TILE_SIZE=512\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 512, cfg.TileSize)
}

func TestLoadMissingEnvFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.NoError(t, err)
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "file.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	valid := func() Config {
		return Config{Addr: ":8080", ViewWidth: 1024, TileSize: 256, LogFormat: "text"}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"document root", func(c *Config) { c.DocumentRoot = dir }, false},
		{"no addr", func(c *Config) { c.Addr = "" }, true},
		{"zero width", func(c *Config) { c.ViewWidth = 0 }, true},
		{"tile not power of two", func(c *Config) { c.TileSize = 300 }, true},
		{"tile too small", func(c *Config) { c.TileSize = 32 }, true},
		{"negative context", func(c *Config) { c.ContextBefore = -1 }, true},
		{"bad log format", func(c *Config) { c.LogFormat = "xml" }, true},
		{"missing root", func(c *Config) { c.DocumentRoot = filepath.Join(dir, "nope") }, true},
		{"root is a file", func(c *Config) { c.DocumentRoot = file }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
