// Package logging builds the process logger on log/slog.
//
// Three console formats are supported: json for machines, text for grep,
// and pretty (charmbracelet/log) for a developer terminal. An optional
// rolling JSON file is written alongside the console via lumberjack.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LevelTrace sits below debug and is used for wire-level detail such as
// remote request and response bodies.
const LevelTrace = slog.Level(-8)

// Config holds logging configuration.
type Config struct {
	Level   string
	Format  string
	Service string
	Version string
	File    FileConfig
}

// FileConfig describes the optional rolling log file.
type FileConfig struct {
	Enabled    bool
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// New creates a logger writing to stdout.
func New(cfg *Config) *slog.Logger {
	return NewWithWriter(cfg, os.Stdout)
}

// NewWithWriter creates a logger writing console output to w.
// Secret redaction applies to the json and text handlers.
func NewWithWriter(cfg *Config, w io.Writer) *slog.Logger {
	level := parseLevel(cfg.Level)

	handler := consoleHandler(cfg.Format, level, w)

	if cfg.File.Enabled && cfg.File.Path != "" {
		rolling := &lumberjack.Logger{
			Filename:   cfg.File.Path,
			MaxSize:    cfg.File.MaxSizeMB,
			MaxBackups: cfg.File.MaxBackups,
			MaxAge:     cfg.File.MaxAgeDays,
			Compress:   cfg.File.Compress,
		}

		handler = NewMultiHandler(handler, slog.NewJSONHandler(rolling, handlerOptions(level)))
	}

	return slog.New(handler).With(
		slog.String("service_name", cfg.Service),
		slog.String("service_version", cfg.Version),
	)
}

func consoleHandler(format string, level slog.Level, w io.Writer) slog.Handler {
	switch strings.ToLower(format) {
	case "text":
		return slog.NewTextHandler(w, handlerOptions(level))
	case "pretty":
		return log.NewWithOptions(w, log.Options{
			Level:           slogToCharmLevel(level),
			ReportTimestamp: true,
			TimeFormat:      time.Kitchen,
		})
	default:
		return slog.NewJSONHandler(w, handlerOptions(level))
	}
}

func handlerOptions(level slog.Level) *slog.HandlerOptions {
	return &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: NewReplaceAttr(),
	}
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "trace":
		return LevelTrace
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// slogToCharmLevel folds slog levels onto the four charm levels.
// Trace has no charm equivalent and is shown as debug.
func slogToCharmLevel(level slog.Level) log.Level {
	switch {
	case level < slog.LevelInfo:
		return log.DebugLevel
	case level < slog.LevelWarn:
		return log.InfoLevel
	case level < slog.LevelError:
		return log.WarnLevel
	default:
		return log.ErrorLevel
	}
}
