// Package logging is the dashboard's human-readable log. The TUI owns the
// terminal, so records go to a dated file under the config directory.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
)

// Logger receives every record. Nil until Init or SetOutput, and the
// package helpers drop records while it is nil.
var Logger *log.Logger

var file *os.File

// FileName is the log file for the day containing t.
func FileName(t time.Time) string {
	return "chainpulse-" + t.Format(time.DateOnly) + ".log"
}

// Init appends to dir/logs/FileName(now), creating the directory if needed.
func Init(dir string) error {
	path := filepath.Join(dir, "logs", FileName(time.Now()))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("logging: create %s: %w", filepath.Dir(path), err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("logging: open %s: %w", path, err)
	}
	file = f
	SetOutput(f)
	Logger.Info("ChainPulse started", "pid", os.Getpid())
	return nil
}

// SetOutput sends records to w at debug level and above.
func SetOutput(w io.Writer) {
	Logger = log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Level:           log.DebugLevel,
	})
}

// Close writes a final record and releases the file opened by Init.
func Close() {
	emit(log.InfoLevel, "ChainPulse shutting down", nil)
	if file == nil {
		return
	}
	if err := file.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "logging: close: %v\n", err)
	}
	file = nil
}

func emit(level log.Level, msg string, keyvals []any) {
	if Logger == nil {
		return
	}
	Logger.Log(level, msg, keyvals...)
}

func Debug(msg string, keyvals ...any) { emit(log.DebugLevel, msg, keyvals) }
func Info(msg string, keyvals ...any)  { emit(log.InfoLevel, msg, keyvals) }
func Warn(msg string, keyvals ...any)  { emit(log.WarnLevel, msg, keyvals) }
func Error(msg string, keyvals ...any) { emit(log.ErrorLevel, msg, keyvals) }

// WithPrefix returns a sub-logger for one component. Before Init it
// discards everything.
func WithPrefix(prefix string) *log.Logger {
	if Logger == nil {
		return log.New(io.Discard)
	}
	return Logger.WithPrefix(prefix)
}
