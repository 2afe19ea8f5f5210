// logger/logger.go
package logger

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// Logger defines the interface for our custom logger.
// Every component takes one of these instead of a concrete type.
type Logger interface {
	Debug(format string, v ...interface{})
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
	Fatal(format string, v ...interface{}) // Calls os.Exit(1) after logging
	With(key string, value interface{}) Logger
	SetOutput(w io.Writer)
	SetPrefix(prefix string)
}

// LogLevel represents the severity of a log message.
type LogLevel int

const (
	LogLevelDebug LogLevel = iota
	LogLevelInfo
	LogLevelWarn
	LogLevelError
	LogLevelFatal
)

// String returns the string representation of a LogLevel.
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
	default:
		return "UNKNOWN"
	}
}

// ParseLevel maps LOG_LEVEL values; anything unrecognised is info.
func ParseLevel(s string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LogLevelDebug
	case "warn", "warning":
		return LogLevelWarn
	case "error":
		return LogLevelError
	case "fatal":
		return LogLevelFatal
	default:
		return LogLevelInfo
	}
}

func (l LogLevel) logrus() logrus.Level {
	switch l {
	case LogLevelDebug:
		return logrus.DebugLevel
	case LogLevelWarn:
		return logrus.WarnLevel
	case LogLevelError:
		return logrus.ErrorLevel
	case LogLevelFatal:
		return logrus.FatalLevel
	default:
		return logrus.InfoLevel
	}
}

// ConsoleLogger writes leveled, prefixed lines through logrus.
type ConsoleLogger struct {
	base   *logrus.Logger
	entry  *logrus.Entry
	mu     sync.Mutex
	prefix string
}

func NewConsoleLogger(output io.Writer, prefix string, minLevel LogLevel) *ConsoleLogger {
	base := logrus.New()
	base.SetOutput(output)
	base.SetLevel(minLevel.logrus())
	base.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	return &ConsoleLogger{
		base:   base,
		entry:  logrus.NewEntry(base),
		prefix: prefix,
	}
}

func (cl *ConsoleLogger) msg(format string, v ...interface{}) string {
	cl.mu.Lock()
	prefix := cl.prefix
	cl.mu.Unlock()
	if prefix == "" {
		return fmt.Sprintf(format, v...)
	}
	return prefix + " " + fmt.Sprintf(format, v...)
}

// Debug logs a debug message.
func (cl *ConsoleLogger) Debug(format string, v ...interface{}) {
	cl.entry.Debug(cl.msg(format, v...))
}

// Info logs an info message.
func (cl *ConsoleLogger) Info(format string, v ...interface{}) {
	cl.entry.Info(cl.msg(format, v...))
}

// Warn logs a warning message.
func (cl *ConsoleLogger) Warn(format string, v ...interface{}) {
	cl.entry.Warn(cl.msg(format, v...))
}

// Error logs an error message.
func (cl *ConsoleLogger) Error(format string, v ...interface{}) {
	cl.entry.Error(cl.msg(format, v...))
}

// Fatal logs a fatal message and exits the application.
func (cl *ConsoleLogger) Fatal(format string, v ...interface{}) {
	cl.entry.Fatal(cl.msg(format, v...))
}

// With returns a child logger carrying an extra structured field.
func (cl *ConsoleLogger) With(key string, value interface{}) Logger {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	return &ConsoleLogger{
		base:   cl.base,
		entry:  cl.entry.WithField(key, value),
		prefix: cl.prefix,
	}
}

// SetOutput sets the output destination for the logger.
func (cl *ConsoleLogger) SetOutput(w io.Writer) {
	cl.base.SetOutput(w)
}

// SetPrefix sets the output prefix for the logger.
func (cl *ConsoleLogger) SetPrefix(prefix string) {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	cl.prefix = prefix
}

// Discard is a logger for tests.
func Discard() Logger {
	return NewConsoleLogger(io.Discard, "", LogLevelFatal)
}
