package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Type alias for slog.Level for easier usage
type Level = slog.Level

const (
	LevelTrace   = slog.Level(-8)
	LevelDebug   = slog.LevelDebug
	LevelInfo    = slog.LevelInfo
	LevelWarning = slog.LevelWarn
	LevelError   = slog.LevelError
)

var (
	Logger       *slog.Logger
	programLevel = new(slog.LevelVar)
)

func init() {
	level, err := ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		level = LevelInfo
	}
	programLevel.Set(level)
	SetOutput(os.Stderr)
}

// SetOutput sends log records to w as text. Stdout is reserved for output.
func SetOutput(w io.Writer) {
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: programLevel})
	Logger = slog.New(handler)
}

// Setup applies the configured level. debug wins over levelStr.
func Setup(levelStr string, debug bool) error {
	if debug {
		programLevel.Set(LevelDebug)
		return nil
	}
	if levelStr == "" {
		return nil
	}
	level, err := ParseLevel(levelStr)
	if err != nil {
		return err
	}
	programLevel.Set(level)
	return nil
}

// SetLevel sets the minimum log level for the logger
func SetLevel(level slog.Level) {
	programLevel.Set(level)
}

// GetLevel returns the current minimum log level
func GetLevel() slog.Level {
	return programLevel.Level()
}

// ParseLevel converts a string level name to slog.Level.
// An empty string is INFO.
func ParseLevel(levelStr string) (slog.Level, error) {
	switch strings.ToUpper(strings.TrimSpace(levelStr)) {
	case "TRACE":
		return LevelTrace, nil
	case "DEBUG":
		return LevelDebug, nil
	case "INFO", "":
		return LevelInfo, nil
	case "WARN", "WARNING":
		return LevelWarning, nil
	case "ERROR":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("unknown log level: %s", levelStr)
	}
}

// Debug logs a debug-level message
func Debug(msg string, args ...any) {
	Logger.Debug(msg, args...)
}

// Info logs an info-level message
func Info(msg string, args ...any) {
	Logger.Info(msg, args...)
}

// Warn logs a warning-level message
func Warn(msg string, args ...any) {
	Logger.Warn(msg, args...)
}

// Error logs an error-level message
func Error(msg string, args ...any) {
	Logger.Error(msg, args...)
}
