package config

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

// Config holds everything read from the environment.
type Config struct {
	// SessionID is set by iTerm2 in every shell it starts, e.g. "w0t1p0:UUID".
	SessionID string `envconfig:"ITERM_SESSION_ID"`
	Osascript string `envconfig:"ITERM2_FOCUS_OSASCRIPT" default:"osascript"`
	AppName   string `envconfig:"ITERM2_FOCUS_APP" default:"iTerm2"`
	LogLevel  string `envconfig:"ITERM2_FOCUS_LOG_LEVEL" default:"warn"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// SlogLevel parses LogLevel ("debug", "info", "warn", "error").
func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return slog.LevelWarn, fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	return level, nil
}

// SetupLogging installs a text slog handler writing to w as the default
// logger. An invalid level falls back to warn and is reported through the
// new logger.
func (c *Config) SetupLogging(w io.Writer) {
	level, err := c.SlogLevel()
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
	if err != nil {
		slog.Warn("using default log level", "err", err)
	}
}
