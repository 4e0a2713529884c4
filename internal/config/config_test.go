package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`db_path: /var/lib/booksearch/books.db
log_level: debug
cache_size: 50
cache_ttl: 30s
workers: 3
`)
	require.NoError(t, os.WriteFile(path, data, 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/booksearch/books.db", cfg.DBPath)
	assert.Equal(t, "DEBUG", cfg.LogLevel)
	assert.Equal(t, 50, cfg.CacheSize)
	assert.Equal(t, 30*time.Second, cfg.CacheTTL)
	assert.Equal(t, 3, cfg.Workers)
}

func TestLoad_Defaults(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, ".booksearch", "booksearch.db"), cfg.DBPath)
	assert.Equal(t, "INFO", cfg.LogLevel)
	assert.Equal(t, 1000, cfg.CacheSize)
	assert.Equal(t, time.Hour, cfg.CacheTTL)
	assert.Equal(t, 0, cfg.Workers)
}

func TestLoad_BlankDBPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("db_path: \"   \"\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	expected, err := ExpandHome(DefaultDBPath)
	require.NoError(t, err)
	assert.Equal(t, expected, cfg.DBPath)
	assert.True(t, filepath.IsAbs(cfg.DBPath))
	assert.Contains(t, cfg.DBPath, home)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: ERROR\ncache_size: 10\n"), 0644))

	t.Setenv("BOOKSEARCH_LOG_LEVEL", "WARN")
	t.Setenv("BOOKSEARCH_DB_PATH", ":memory:")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "WARN", cfg.LogLevel)
	assert.Equal(t, ":memory:", cfg.DBPath)
	assert.Equal(t, 10, cfg.CacheSize)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("bad log level", func(t *testing.T) {
		t.Setenv("BOOKSEARCH_LOG_LEVEL", "LOUD")
		_, err := Load("")
		assert.ErrorContains(t, err, "unknown log level")
	})

	t.Run("negative workers", func(t *testing.T) {
		t.Setenv("BOOKSEARCH_WORKERS", "-1")
		_, err := Load("")
		assert.ErrorContains(t, err, "workers")
	})
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	tests := []struct {
		in   string
		want string
	}{
		{"~", home},
		{"~/books.db", filepath.Join(home, "books.db")},
		{"/abs/books.db", "/abs/books.db"},
		{"relative.db", "relative.db"},
		{"~other/books.db", "~other/books.db"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ExpandHome(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEnsureDBDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "dir")
	cfg := Config{DBPath: filepath.Join(dir, "books.db")}

	require.NoError(t, cfg.EnsureDBDir())
	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	assert.NoError(t, Config{DBPath: ":memory:"}.EnsureDBDir())
}
