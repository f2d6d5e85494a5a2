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
	cfg, err := LoadFrom(t.TempDir(), "missing")
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "memory", cfg.Cache.Driver)
	assert.Equal(t, "index_page", cfg.Cache.Prefix)
	assert.Equal(t, 20*time.Second, cfg.Cache.TTL)
	assert.Equal(t, 10, cfg.Feed.PageSize)
	assert.Equal(t, "/auth/login/", cfg.Auth.LoginURL)
	assert.Equal(t, 24*time.Hour, cfg.Auth.SessionTTL)
	assert.Equal(t, "local", cfg.Storage.Driver)
	assert.Equal(t, "/media", cfg.Storage.Local.URLPrefix)
	assert.Equal(t, "none", cfg.PubSub.Driver)
	assert.Equal(t, 960, cfg.Media.ThumbnailWidth)
	assert.Equal(t, "yatube", cfg.Log.ServiceName)
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	yaml := []byte("cache:\n  driver: redis\n  ttl: 5s\nfeed:\n  page_size: 25\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "yatube.yaml"), yaml, 0o644))

	t.Setenv("PORT", "9090")
	t.Setenv("DB_DRIVER", "postgres")

	cfg, err := LoadFrom(dir, "yatube")
	require.NoError(t, err)

	assert.Equal(t, "redis", cfg.Cache.Driver)
	assert.Equal(t, 5*time.Second, cfg.Cache.TTL)
	assert.Equal(t, 25, cfg.Feed.PageSize)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
}

func TestLoadExplicitFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "site.yaml")
	require.NoError(t, os.WriteFile(path, []byte("storage:\n  driver: s3\n  s3:\n    bucket: media\n"), 0o644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "s3", cfg.Storage.Driver)
	assert.Equal(t, "media", cfg.Storage.S3.Bucket)
	assert.Equal(t, "index_page", cfg.Cache.Prefix)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
