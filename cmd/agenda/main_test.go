package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-agenda/internal/config"
)

func TestSetupLogging_WritesToCacheDir(t *testing.T) {
	cache := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", cache)
	t.Setenv("HOME", t.TempDir())

	closer := setupLogging(false)
	require.NotNil(t, closer)
	slog.Info("hello", config.LogKeyComponent, config.CompMain)
	slog.Debug("hidden")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(filepath.Join(cache, config.AppID, config.LogFileName))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"hello"`)
	assert.Contains(t, string(data), `"component":"main"`)
	assert.NotContains(t, string(data), "hidden", "debug records need debug mode")
}

func TestGetLogFilePath(t *testing.T) {
	cache := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", cache)

	path, err := getLogFilePath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(cache, config.AppID, config.LogFileName), path)

	info, err := os.Stat(filepath.Dir(path))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
