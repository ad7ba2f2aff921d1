package logging

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// Logger writes leveled, human-oriented log lines. Parameter values must be
// wrapped in Secret before they reach a format argument.
type Logger struct {
	debug   bool
	noColor bool

	mu  sync.Mutex
	out io.Writer
}

// New creates a logger that writes to stderr
func New(debug, noColor bool) *Logger {
	return NewWithWriter(os.Stderr, debug, noColor)
}

// NewWithWriter creates a logger that writes to w
func NewWithWriter(w io.Writer, debug, noColor bool) *Logger {
	return &Logger{
		debug:   debug,
		noColor: noColor,
		out:     w,
	}
}

// Discard returns a logger that drops everything. Handy as a default.
func Discard() *Logger {
	return NewWithWriter(io.Discard, false, true)
}

// DebugEnabled reports whether Debug lines are written
func (l *Logger) DebugEnabled() bool {
	return l.debug
}

// Info logs an informational message
func (l *Logger) Info(format string, args ...interface{}) {
	l.emit("\033[32m✓\033[0m", "✓", format, args...)
}

// Warn logs a warning message
func (l *Logger) Warn(format string, args ...interface{}) {
	l.emit("\033[33m⚠\033[0m", "⚠", format, args...)
}

// Error logs an error message
func (l *Logger) Error(format string, args ...interface{}) {
	l.emit("\033[31m✗\033[0m", "✗", format, args...)
}

// Debug logs a debug message if debug mode is enabled
func (l *Logger) Debug(format string, args ...interface{}) {
	if !l.debug {
		return
	}
	l.emit("\033[36m[DEBUG]\033[0m", "[DEBUG]", format, args...)
}

func (l *Logger) emit(colored, plain, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	marker := colored
	if l.noColor {
		marker = plain
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.out, "%s %s\n", marker, msg)
}

// Secret represents a value that should be redacted in logs
type Secret string

// String implements the Stringer interface, always returning a redacted value
func (s Secret) String() string {
	return "[REDACTED]"
}

// GoString implements the GoStringer interface for %#v formatting
func (s Secret) GoString() string {
	return "[REDACTED]"
}
