package utils

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// LogLevel represents the severity of a log message
type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
)

// String returns the string representation of the log level
func (l LogLevel) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

func (l LogLevel) zerolog() zerolog.Level {
	switch l {
	case DEBUG:
		return zerolog.DebugLevel
	case WARN:
		return zerolog.WarnLevel
	case ERROR:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// ParseLogLevel maps a config value onto a LogLevel, defaulting to INFO
func ParseLogLevel(s string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return DEBUG
	case "warn", "warning":
		return WARN
	case "error":
		return ERROR
	default:
		return INFO
	}
}

// Logger is a leveled printf-style logger on top of zerolog
type Logger struct {
	zl    zerolog.Logger
	level LogLevel
}

// NewLogger creates a console logger with the specified level
func NewLogger(level LogLevel) *Logger {
	return NewLoggerTo(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "2006-01-02 15:04:05"}, level)
}

// NewLoggerTo creates a logger writing to w; pass os.Stdout for JSON lines
func NewLoggerTo(w io.Writer, level LogLevel) *Logger {
	zl := zerolog.New(w).With().Timestamp().Str("service", "msgagent").Logger().Level(level.zerolog())
	return &Logger{zl: zl, level: level}
}

// Debug logs a debug message
func (l *Logger) Debug(format string, v ...interface{}) {
	l.zl.Debug().Msgf(format, v...)
}

// Info logs an info message
func (l *Logger) Info(format string, v ...interface{}) {
	l.zl.Info().Msgf(format, v...)
}

// Warn logs a warning message
func (l *Logger) Warn(format string, v ...interface{}) {
	l.zl.Warn().Msgf(format, v...)
}

// Error logs an error message
func (l *Logger) Error(format string, v ...interface{}) {
	l.zl.Error().Msgf(format, v...)
}

// WithFields returns a new logger with the specified fields
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	return &Logger{
		zl:    l.zl.With().Fields(fields).Logger(),
		level: l.level,
	}
}

// WithField returns a new logger with a single field added
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return l.WithFields(map[string]interface{}{key: value})
}

// SetLevel changes the log level
func (l *Logger) SetLevel(level LogLevel) {
	l.level = level
	l.zl = l.zl.Level(level.zerolog())
}

// Level returns the current level
func (l *Logger) Level() LogLevel {
	return l.level
}

// Zerolog exposes the underlying logger for libraries that take one
func (l *Logger) Zerolog() *zerolog.Logger {
	return &l.zl
}

// Global logger instance
var Log = NewLogger(INFO)

// ConfigureLogging replaces the global logger according to config. Output
// goes to w, as JSON lines or through the console writer.
func ConfigureLogging(w io.Writer, level string, json bool) {
	if json {
		Log = NewLoggerTo(w, ParseLogLevel(level))
		return
	}
	Log = NewLoggerTo(zerolog.ConsoleWriter{Out: w, TimeFormat: "2006-01-02 15:04:05"}, ParseLogLevel(level))
}
