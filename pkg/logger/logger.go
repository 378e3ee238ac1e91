package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

var (
	base    *slog.Logger
	logFile *os.File
)

// Init configures the package logger. Output always goes to stderr and, when
// filename is non-empty, is appended to that file as well.
func Init(level slog.Level, filename string) error {
	var w io.Writer = os.Stderr
	if filename != "" {
		f, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
		if err != nil {
			return fmt.Errorf("open log file '%s': %w", filename, err)
		}
		logFile = f
		w = io.MultiWriter(os.Stderr, f)
	}
	SetOutput(w, level)
	return nil
}

// SetOutput replaces the handler with a text handler on w.
func SetOutput(w io.Writer, level slog.Level) {
	base = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(base)
}

// ParseLevel converts "debug", "info", "warn" or "error" to a slog.Level.
// Anything else is info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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

func Close() {
	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
}

func get() *slog.Logger {
	if base == nil {
		return slog.Default()
	}
	return base
}

func Debugf(format string, v ...interface{}) {
	get().Debug(fmt.Sprintf(format, v...))
}

func Infof(format string, v ...interface{}) {
	get().Info(fmt.Sprintf(format, v...))
}

func Warnf(format string, v ...interface{}) {
	get().Warn(fmt.Sprintf(format, v...))
}

func Errorf(format string, v ...interface{}) {
	get().Error(fmt.Sprintf(format, v...))
}
