// =============================================================================
// Graduation Audit - Logging
// =============================================================================
//
// The pipeline logs through the Logger interface so callers decide where
// messages go. Two implementations are provided:
//   - Leveled: writes "[LEVEL] message" lines to an io.Writer, filtered by a
//     minimum level taken from the main configuration (log_level).
//   - Nop: discards everything. Used when no logger is supplied.
//
// =============================================================================

package logger

import (
	"fmt"
	"io"
	"strings"
	"sync"
)

// Logger is the logging interface used by the pipeline packages.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
}

// Level is a logging severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the upper-case level name used as the line prefix.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel converts a configuration value to a Level.
// Unrecognised values fall back to LevelInfo.
func ParseLevel(value string) Level {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "debug", "trace", "verbose":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error", "err":
		return LevelError
	default:
		return LevelInfo
	}
}

// =============================================================================
// LEVELED LOGGER
// =============================================================================

// Leveled writes log lines at or above a minimum level.
// It is safe for concurrent use.
type Leveled struct {
	mu    sync.Mutex
	out   io.Writer
	level Level
}

// New creates a Leveled logger writing to out.
func New(out io.Writer, level Level) *Leveled {
	return &Leveled{out: out, level: level}
}

// SetLevel changes the minimum level.
func (l *Leveled) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

func (l *Leveled) Debug(msg string, args ...interface{}) { l.log(LevelDebug, msg, args...) }
func (l *Leveled) Info(msg string, args ...interface{})  { l.log(LevelInfo, msg, args...) }
func (l *Leveled) Warn(msg string, args ...interface{})  { l.log(LevelWarn, msg, args...) }
func (l *Leveled) Error(msg string, args ...interface{}) { l.log(LevelError, msg, args...) }

func (l *Leveled) log(level Level, msg string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if level < l.level || l.out == nil {
		return
	}
	fmt.Fprintf(l.out, "["+level.String()+"] "+msg+"\n", args...)
}

// =============================================================================
// NOP LOGGER
// =============================================================================

// Nop returns a Logger that discards every message.
func Nop() Logger {
	return nopLogger{}
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
