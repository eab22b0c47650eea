package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/esiqveland/notifyd/server"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Empty(t, cfg.Selector)
	assert.Equal(t, server.DefaultConfig(), cfg.Server)
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("NOTIFYD_BUS_PATH", "team/alerts")
	t.Setenv("NOTIFYD_DEFAULT_TIMEOUT", "2s")
	t.Setenv("NOTIFYD_MINIMUM_TIMEOUT", "50ms")
	t.Setenv("NOTIFYD_SELECTOR", "dmenu -l 5")
	t.Setenv("NOTIFYD_LOG_LEVEL", "debug")

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "team/alerts", cfg.Server.BusPath)
	assert.Equal(t, 2*time.Second, cfg.Server.DefaultTimeout)
	assert.Equal(t, 50*time.Millisecond, cfg.Server.MinimumTimeout)
	assert.Equal(t, []string{"dmenu", "-l", "5"}, cfg.Selector)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadConfigEnvFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	file := filepath.Join(dir, "notifyd.env")
	require.NoError(t, os.WriteFile(file, []byte("NOTIFYD_STOP_GRACE=3s\nNOTIFYD_NAME=custom\n"), 0o600))
	// restore the variables godotenv sets once the test ends
	t.Setenv("NOTIFYD_STOP_GRACE", "")
	os.Unsetenv("NOTIFYD_STOP_GRACE")
	t.Setenv("NOTIFYD_NAME", "")
	os.Unsetenv("NOTIFYD_NAME")

	cfg, err := loadConfig(file)
	require.NoError(t, err)
	assert.Equal(t, 3*time.Second, cfg.Server.StopGrace)
	assert.Equal(t, "custom", cfg.Server.Name)

	_, err = loadConfig(filepath.Join(dir, "missing.env"))
	require.Error(t, err)
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	t.Chdir(t.TempDir())

	t.Setenv("NOTIFYD_DEFAULT_TIMEOUT", "soon")
	_, err := loadConfig()
	require.ErrorIs(t, err, errParsingConfig)

	t.Setenv("NOTIFYD_DEFAULT_TIMEOUT", "-1s")
	_, err = loadConfig()
	require.ErrorIs(t, err, server.ErrInvalidConfig)
}
