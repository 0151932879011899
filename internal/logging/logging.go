// Package logging builds the zerolog logger of the superposition binary.
package logging

import (
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Environment variables read by [New].
const (
	EnvLogLevel     = "SUPERPOSITION_LOG_LEVEL"
	EnvLogTimestamp = "SUPERPOSITION_LOG_TIMESTAMP"
	EnvLogNoColor   = "SUPERPOSITION_LOG_NOCOLOR"
	EnvLogJSON      = "SUPERPOSITION_LOG_JSON"
)

// Profile selects default settings.
type Profile int

const (
	ProfileRuntime Profile = iota
	ProfileTest
)

// Config controls logger output.
type Config struct {
	Level     zerolog.Level
	Timestamp bool
	NoColor   bool
	// JSON writes raw JSON lines instead of the console format.
	JSON bool
}

// DefaultConfig returns the settings of profile.
func DefaultConfig(profile Profile) Config {
	switch profile {
	case ProfileTest:
		return Config{Level: zerolog.DebugLevel, NoColor: true}
	default:
		return Config{Level: zerolog.InfoLevel, Timestamp: true}
	}
}

// ApplyEnv overrides cfg from env. Unparseable values are ignored.
func (cfg *Config) ApplyEnv(env map[string]string) {
	if lvl, ok := ParseLevel(env[EnvLogLevel]); ok {
		cfg.Level = lvl
	}

	if v, ok := parseBool(env[EnvLogTimestamp]); ok {
		cfg.Timestamp = v
	}

	if v, ok := parseBool(env[EnvLogNoColor]); ok {
		cfg.NoColor = v
	}

	if v, ok := parseBool(env[EnvLogJSON]); ok {
		cfg.JSON = v
	}
}

// New returns a logger writing to w with the profile defaults overridden by
// env.
func New(w io.Writer, profile Profile, env map[string]string) zerolog.Logger {
	cfg := DefaultConfig(profile)
	cfg.ApplyEnv(env)

	return NewWithConfig(w, cfg)
}

// NewWithConfig returns a logger writing to w.
func NewWithConfig(w io.Writer, cfg Config) zerolog.Logger {
	out := w
	if !cfg.JSON {
		out = zerolog.ConsoleWriter{
			Out:        w,
			NoColor:    cfg.NoColor,
			TimeFormat: time.RFC3339,
			PartsExclude: func() []string {
				if cfg.Timestamp {
					return nil
				}

				return []string{zerolog.TimestampFieldName}
			}(),
		}
	}

	ctx := zerolog.New(out).Level(cfg.Level).With()
	if cfg.Timestamp {
		ctx = ctx.Timestamp()
	}

	return ctx.Logger()
}

// ParseLevel parses a level name. The second result is false for empty or
// unknown names.
func ParseLevel(raw string) (zerolog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "trace":
		return zerolog.TraceLevel, true
	case "debug":
		return zerolog.DebugLevel, true
	case "info":
		return zerolog.InfoLevel, true
	case "warn", "warning":
		return zerolog.WarnLevel, true
	case "error":
		return zerolog.ErrorLevel, true
	case "disabled", "off", "none":
		return zerolog.Disabled, true
	default:
		return zerolog.InfoLevel, false
	}
}

func parseBool(raw string) (bool, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false, false
	}

	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}

	return v, true
}
