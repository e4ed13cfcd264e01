package log

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

// Level is the logging level.
type Level int

const (
	// DEBUG level for developer information
	DEBUG Level = iota - 1
	// INFO level for state and status
	INFO
	// WARN level for possible issues
	WARN
	// ERROR level for errors
	ERROR
	// FATAL level for unrecoverable errors that stop the process.
	FATAL
)

// String returns an upper case string representation of the log level
func (l Level) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	case FATAL:
		return "FATAL"
	default:
		return fmt.Sprintf("Level(%d)", l)
	}
}

// PaddedString returns a five character upper case representation of the log level
func (l Level) PaddedString() string {
	if l == INFO || l == WARN {
		return l.String() + " "
	}
	return l.String()
}

// UnmarshalText converts a slice of characters to a Level
func (l *Level) UnmarshalText(text []byte) bool {
	switch strings.TrimSpace(string(bytes.ToUpper(text))) {
	case "DEBUG":
		*l = DEBUG
	case "INFO", "":
		*l = INFO
	case "WARN":
		*l = WARN
	case "ERROR":
		*l = ERROR
	case "FATAL":
		*l = FATAL
	default:
		return false
	}
	return true
}

// CoreLogger implements leveled logging for headless runs and trace
// output, where the monitor's notification log is not available.
type CoreLogger struct {
	level           Level
	writer          io.Writer
	timestampFormat string
	callerFormat    string
}

var defaultLogger *CoreLogger

// TerminateFunc defines logic for termination of fatal log messages.
var TerminateFunc = terminate

// Configurator has methods to fetch the logging configuration values.
type Configurator interface {
	LogLevel() string
	Output() io.Writer
}

// New creates a new logger using default settings.
// Standard out, INFO level, timestamping and class:line reporting
func New() *CoreLogger {
	logger := CoreLogger{}
	logger.level = INFO
	logger.writer = os.Stdout
	logger.timestampFormat = "01-02 15:04:05.000 "
	logger.callerFormat = " %16.16s:%03d - "
	return &logger
}

// GetDefaultLogger returns the default logger implementation.
func GetDefaultLogger() *CoreLogger {
	if defaultLogger == nil {
		defaultLogger = New()
	}
	return defaultLogger
}

// Setup applies a configuration to the logger. If it is not called the
// logger reports at INFO level to standard output.
func (c *CoreLogger) Setup(config Configurator) {
	c.level.UnmarshalText([]byte(config.LogLevel()))
	if writer := config.Output(); writer != nil {
		c.writer = writer
	}
}

// SetLogLevel sets a filter on the minimum level of messages that will be logged.
func (c *CoreLogger) SetLogLevel(level Level) {
	c.level = level
}

// GetLogLevel gets the current log level.
func (c *CoreLogger) GetLogLevel() Level {
	return c.level
}

// SetOutput sets the io.Writer to which all future log messages will be written.
func (c *CoreLogger) SetOutput(w io.Writer) {
	c.writer = w
}

// Perform the actual logging routine
func (c *CoreLogger) log(level Level, format string, args []interface{}) {
	if level < c.level {
		return
	}

	_, file, line, ok := runtime.Caller(2)
	if !ok {
		file = "???"
		line = 0
	} else {
		file = filepath.Base(file)
	}

	var msg string
	if format == "" {
		msg = fmt.Sprint(args...)
	} else {
		msg = fmt.Sprintf(format, args...)
	}

	var b strings.Builder
	b.WriteString(time.Now().Format(c.timestampFormat))
	b.WriteString(level.PaddedString())
	_, _ = fmt.Fprintf(&b, c.callerFormat, file, line)
	b.WriteString(msg)
	b.WriteString("\n")
	_, _ = c.writer.Write([]byte(b.String()))
}

// Replaceable termination logic for testing fatal errors
func terminate() {
	os.Exit(1)
}

// Debug logs a message at DEBUG level.
func (c *CoreLogger) Debug(args ...interface{}) {
	c.log(DEBUG, "", args)
}

// Debugf logs a formatted message at DEBUG level.
func (c *CoreLogger) Debugf(format string, args ...interface{}) {
	c.log(DEBUG, format, args)
}

// Info logs a message at INFO level.
func (c *CoreLogger) Info(args ...interface{}) {
	c.log(INFO, "", args)
}

// Infof logs a formatted message at INFO level.
func (c *CoreLogger) Infof(format string, args ...interface{}) {
	c.log(INFO, format, args)
}

// Warn logs a message at WARN level.
func (c *CoreLogger) Warn(args ...interface{}) {
	c.log(WARN, "", args)
}

// Warnf logs a formatted message at WARN level.
func (c *CoreLogger) Warnf(format string, args ...interface{}) {
	c.log(WARN, format, args)
}

// Error logs a message at ERROR level.
func (c *CoreLogger) Error(args ...interface{}) {
	c.log(ERROR, "", args)
}

// Errorf logs a formatted message at ERROR level.
func (c *CoreLogger) Errorf(format string, args ...interface{}) {
	c.log(ERROR, format, args)
}

// Fatal logs a message at FATAL level and then exits.
func (c *CoreLogger) Fatal(args ...interface{}) {
	c.log(FATAL, "", args)
	TerminateFunc()
}

// Fatalf logs a formatted message at FATAL level and then exits.
func (c *CoreLogger) Fatalf(format string, args ...interface{}) {
	c.log(FATAL, format, args)
	TerminateFunc()
}
