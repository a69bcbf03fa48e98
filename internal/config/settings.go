package config

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"
)

// Settings are the typed, resolved options the commands act on.
type Settings struct {
	Color         string
	LogLevel      slog.Level
	LogFile       string
	LogFormat     string
	ExprCacheSize int
	Strict        bool
	HostVariables bool
	MaxTicks      int
	Interval      time.Duration
}

// Settings resolves the global options of c (environment, then file, then
// defaults) into their typed form.
func (s *ConfigSchema) Settings(c *Config) (Settings, error) {
	var (
		out Settings
		err error
	)
	out.Color = s.Resolve(c, "color")
	if out.LogLevel, err = ParseLevel(s.Resolve(c, "log.level")); err != nil {
		return Settings{}, err
	}
	out.LogFile = s.Resolve(c, "log.file")
	switch out.LogFormat = strings.ToLower(s.Resolve(c, "log.format")); out.LogFormat {
	case "text", "json":
	default:
		return Settings{}, fmt.Errorf("log.format: unsupported format %q", out.LogFormat)
	}
	if out.ExprCacheSize, err = s.resolveInt(c, "expr.cache-size"); err != nil {
		return Settings{}, err
	}
	if out.Strict, err = s.resolveBool(c, "tree.strict"); err != nil {
		return Settings{}, err
	}
	if out.HostVariables, err = s.resolveBool(c, "tree.host-variables"); err != nil {
		return Settings{}, err
	}
	if out.MaxTicks, err = s.resolveInt(c, "run.max-ticks"); err != nil {
		return Settings{}, err
	}
	if v := s.Resolve(c, "run.interval"); v != "" {
		if out.Interval, err = time.ParseDuration(v); err != nil {
			return Settings{}, fmt.Errorf("run.interval: %w", err)
		}
	}
	return out, nil
}

func (s *ConfigSchema) resolveInt(c *Config, key string) (int, error) {
	v := s.Resolve(c, key)
	if v == "" {
		return 0, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return i, nil
}

func (s *ConfigSchema) resolveBool(c *Config, key string) (bool, error) {
	v := s.Resolve(c, key)
	if v == "" {
		return false, nil
	}
	b, err := parseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

// ParseLevel parses a log level name: debug, info, warn or error.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}
