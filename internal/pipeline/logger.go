package pipeline

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
)

// Log levels accepted by the logger sink.
const (
	LevelDebug = "debug"
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
)

// Logger is the sink stages report through. Messages go to a slog
// handler; warnings and errors are additionally collected so the build
// result can surface them. Debug messages are suppressed outside
// development mode.
type Logger struct {
	slog  *slog.Logger
	debug bool

	mu       sync.Mutex
	warnings []string
	errors   []string
}

// NewLogger creates a Logger writing text log lines to w. Debug output
// is emitted only when debug is true.
func NewLogger(w io.Writer, debug bool) *Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return &Logger{slog: slog.New(handler), debug: debug}
}

// Log records a message at the given level. Unknown levels are treated
// as info.
func (l *Logger) Log(message, level string) {
	switch level {
	case LevelDebug:
		if l.debug {
			l.slog.Debug(message)
		}
	case LevelWarn:
		l.slog.Warn(message)
		l.mu.Lock()
		l.warnings = append(l.warnings, message)
		l.mu.Unlock()
	case LevelError:
		l.slog.Error(message)
		l.mu.Lock()
		l.errors = append(l.errors, message)
		l.mu.Unlock()
	default:
		l.slog.Info(message)
	}
}

// Debugf logs a formatted debug message.
func (l *Logger) Debugf(format string, args ...any) {
	l.Log(fmt.Sprintf(format, args...), LevelDebug)
}

// Infof logs a formatted info message.
func (l *Logger) Infof(format string, args ...any) {
	l.Log(fmt.Sprintf(format, args...), LevelInfo)
}

// Warnf logs a formatted warning and records it for the build result.
func (l *Logger) Warnf(format string, args ...any) {
	l.Log(fmt.Sprintf(format, args...), LevelWarn)
}

// Errorf logs a formatted error and records it for the build result.
func (l *Logger) Errorf(format string, args ...any) {
	l.Log(fmt.Sprintf(format, args...), LevelError)
}

// Warnings returns the collected warning messages.
func (l *Logger) Warnings() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.warnings))
	copy(out, l.warnings)
	return out
}

// Errors returns the collected error messages.
func (l *Logger) Errors() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.errors))
	copy(out, l.errors)
	return out
}
