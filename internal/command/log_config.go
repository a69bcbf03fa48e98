package command

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/minerva-studio/aethiumian-ai-sub000/internal/config"
)

// logConfig holds resolved logging configuration for tree commands.
type logConfig struct {
	level   slog.Level
	format  string
	logFile io.WriteCloser // nil if no file logging
}

// resolveLogConfig resolves log configuration from flags and settings. Flag
// values take precedence over settings. The caller must Close the result.
func resolveLogConfig(flagPath, flagLevel string, settings config.Settings) (logConfig, error) {
	lc := logConfig{level: settings.LogLevel, format: settings.LogFormat}

	if flagLevel != "" {
		level, err := config.ParseLevel(flagLevel)
		if err != nil {
			return lc, err
		}
		lc.level = level
	}

	logPath := flagPath
	if logPath == "" {
		logPath = settings.LogFile
	}
	if logPath != "" {
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return lc, fmt.Errorf("failed to open log file %s: %w", logPath, err)
		}
		lc.logFile = f
	}

	return lc, nil
}

// logger returns a logger writing to the log file, or to stderr.
func (lc logConfig) logger(stderr io.Writer) *slog.Logger {
	var w io.Writer = stderr
	if lc.logFile != nil {
		w = lc.logFile
	}
	opts := &slog.HandlerOptions{Level: lc.level}
	if lc.format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func (lc logConfig) Close() error {
	if lc.logFile == nil {
		return nil
	}
	return lc.logFile.Close()
}
