package config

import (
	"bytes"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unsetenv removes key for the duration of the test.
func unsetenv(t *testing.T, key string) {
	t.Setenv(key, "")
	require.NoError(t, os.Unsetenv(key))
}

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"ITERM_SESSION_ID", "ITERM2_FOCUS_OSASCRIPT", "ITERM2_FOCUS_APP", "ITERM2_FOCUS_LOG_LEVEL"} {
		unsetenv(t, key)
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "", cfg.SessionID)
	assert.Equal(t, "osascript", cfg.Osascript)
	assert.Equal(t, "iTerm2", cfg.AppName)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("ITERM_SESSION_ID", "w0t1p0:ABC")
	t.Setenv("ITERM2_FOCUS_OSASCRIPT", "/usr/local/bin/osascript")
	t.Setenv("ITERM2_FOCUS_APP", "iTerm")
	t.Setenv("ITERM2_FOCUS_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "w0t1p0:ABC", cfg.SessionID)
	assert.Equal(t, "/usr/local/bin/osascript", cfg.Osascript)
	assert.Equal(t, "iTerm", cfg.AppName)

	level, err := cfg.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestSlogLevelInvalid(t *testing.T) {
	cfg := &Config{LogLevel: "chatty"}
	level, err := cfg.SlogLevel()
	assert.Error(t, err)
	assert.Equal(t, slog.LevelWarn, level)
}

func TestSetupLogging(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	var buf bytes.Buffer
	cfg := &Config{LogLevel: "info"}
	cfg.SetupLogging(&buf)

	slog.Debug("hidden")
	slog.Info("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}
