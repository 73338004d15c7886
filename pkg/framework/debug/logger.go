// Package debug provides logging and fatal assertions for plugin core code.
//
// Nothing in this package may be called from the audio thread.
package debug

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// EnvLogLevel overrides the default logger level at process start.
const EnvLogLevel = "PLUGCORE_LOG_LEVEL"

// LogLevel represents the severity of a log message.
type LogLevel int

const (
	// LogLevelDebug is for detailed debugging information.
	LogLevelDebug LogLevel = iota
	// LogLevelInfo is for general informational messages.
	LogLevelInfo
	// LogLevelWarn is for warning messages.
	LogLevelWarn
	// LogLevelError is for error messages.
	LogLevelError
	// LogLevelFatal is for author defects that abort the plugin.
	LogLevelFatal
	// LogLevelOff disables all logging.
	LogLevelOff
)

// String returns the string representation of the log level.
func (l LogLevel) String() string {
	switch l {
	case LogLevelDebug:
		return "DEBUG"
	case LogLevelInfo:
		return "INFO"
	case LogLevelWarn:
		return "WARN"
	case LogLevelError:
		return "ERROR"
	case LogLevelFatal:
		return "FATAL"
	case LogLevelOff:
		return "OFF"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel maps a level name to a LogLevel.
func ParseLevel(raw string) (LogLevel, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug", "trace":
		return LogLevelDebug, true
	case "info":
		return LogLevelInfo, true
	case "warn", "warning":
		return LogLevelWarn, true
	case "error":
		return LogLevelError, true
	case "fatal":
		return LogLevelFatal, true
	case "off", "none", "disabled":
		return LogLevelOff, true
	default:
		return LogLevelInfo, false
	}
}

func (l LogLevel) zerolog() zerolog.Level {
	switch l {
	case LogLevelDebug:
		return zerolog.DebugLevel
	case LogLevelInfo:
		return zerolog.InfoLevel
	case LogLevelWarn:
		return zerolog.WarnLevel
	case LogLevelError:
		return zerolog.ErrorLevel
	case LogLevelFatal:
		return zerolog.FatalLevel
	default:
		return zerolog.Disabled
	}
}

// Logger is a leveled logger with an optional component prefix.
type Logger struct {
	mu      sync.Mutex
	output  io.Writer
	prefix  string
	level   LogLevel
	enabled bool
	zl      zerolog.Logger
}

var defaultLogger *Logger

func init() {
	defaultLogger = New(os.Stderr, "")
	if lvl, ok := ParseLevel(os.Getenv(EnvLogLevel)); ok {
		defaultLogger.SetLevel(lvl)
	}
}

// New creates a logger writing human readable lines to output.
func New(output io.Writer, prefix string) *Logger {
	l := &Logger{
		output:  output,
		prefix:  prefix,
		level:   LogLevelInfo,
		enabled: true,
	}
	l.rebuild()
	return l
}

// rebuild must be called with mu held (or before the logger is shared).
func (l *Logger) rebuild() {
	w := zerolog.ConsoleWriter{
		Out:        l.output,
		NoColor:    true,
		TimeFormat: time.RFC3339,
	}
	ctx := zerolog.New(w).With().Timestamp()
	if l.prefix != "" {
		ctx = ctx.Str("component", l.prefix)
	}
	level := l.level.zerolog()
	if !l.enabled {
		level = zerolog.Disabled
	}
	l.zl = ctx.Logger().Level(level)
}

// SetOutput sets the output destination for the logger.
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.output = w
	l.rebuild()
}

// SetLevel sets the minimum log level.
func (l *Logger) SetLevel(level LogLevel) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
	l.rebuild()
}

// Level returns the minimum log level.
func (l *Logger) Level() LogLevel {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.level
}

// SetEnabled enables or disables the logger.
func (l *Logger) SetEnabled(enabled bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.enabled = enabled
	l.rebuild()
}

// IsEnabled returns whether the logger is enabled.
func (l *Logger) IsEnabled() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.enabled
}

// With returns a child logger with a different prefix sharing the output and level.
func (l *Logger) With(prefix string) *Logger {
	l.mu.Lock()
	defer l.mu.Unlock()
	child := &Logger{
		output:  l.output,
		prefix:  prefix,
		level:   l.level,
		enabled: l.enabled,
	}
	child.rebuild()
	return child
}

func (l *Logger) logger() zerolog.Logger {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.zl
}

// Debug logs a debug message.
func (l *Logger) Debug(format string, args ...interface{}) {
	zl := l.logger()
	zl.Debug().Msgf(format, args...)
}

// Info logs an informational message.
func (l *Logger) Info(format string, args ...interface{}) {
	zl := l.logger()
	zl.Info().Msgf(format, args...)
}

// Warn logs a warning message.
func (l *Logger) Warn(format string, args ...interface{}) {
	zl := l.logger()
	zl.Warn().Msgf(format, args...)
}

// Error logs an error message.
func (l *Logger) Error(format string, args ...interface{}) {
	zl := l.logger()
	zl.Error().Msgf(format, args...)
}

// Fatal logs a fatal message and panics. It never calls os.Exit.
func (l *Logger) Fatal(format string, args ...interface{}) {
	zl := l.logger()
	msg := fmt.Sprintf(format, args...)
	zl.WithLevel(zerolog.FatalLevel).Msg(msg)
	panic(msg)
}

// Assert calls Fatal when cond is false.
func (l *Logger) Assert(cond bool, format string, args ...interface{}) {
	if !cond {
		l.Fatal(format, args...)
	}
}

// Global logger functions

// Default returns the default logger instance.
func Default() *Logger {
	return defaultLogger
}

// SetOutput sets the output destination for the default logger.
func SetOutput(w io.Writer) {
	defaultLogger.SetOutput(w)
}

// SetLevel sets the minimum log level for the default logger.
func SetLevel(level LogLevel) {
	defaultLogger.SetLevel(level)
}

// SetEnabled enables or disables the default logger.
func SetEnabled(enabled bool) {
	defaultLogger.SetEnabled(enabled)
}

// Debug logs a debug message using the default logger.
func Debug(format string, args ...interface{}) {
	defaultLogger.Debug(format, args...)
}

// Info logs an informational message using the default logger.
func Info(format string, args ...interface{}) {
	defaultLogger.Info(format, args...)
}

// Warn logs a warning message using the default logger.
func Warn(format string, args ...interface{}) {
	defaultLogger.Warn(format, args...)
}

// Error logs an error message using the default logger.
func Error(format string, args ...interface{}) {
	defaultLogger.Error(format, args...)
}

// Fatal logs a fatal error message using the default logger and panics.
func Fatal(format string, args ...interface{}) {
	defaultLogger.Fatal(format, args...)
}

// Assert aborts through the default logger when cond is false.
func Assert(cond bool, format string, args ...interface{}) {
	if !cond {
		defaultLogger.Fatal(format, args...)
	}
}

// DebugIf logs a debug message if the condition is true.
func DebugIf(condition bool, format string, args ...interface{}) {
	if condition {
		defaultLogger.Debug(format, args...)
	}
}
