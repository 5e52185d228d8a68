package http

import (
	"log"
	"os"

	"github.com/fredcamaral/miniserve/internal/domain/entities"
)

var levelRank = map[entities.LogLevel]int{
	entities.LogLevelDebug: 0,
	entities.LogLevelInfo:  1,
	entities.LogLevelWarn:  2,
	entities.LogLevelError: 3,
}

// HTTPLogger provides level-filtered logging for the control server
type HTTPLogger struct {
	component string
	verbose   bool
	level     entities.LogLevel
	out       *log.Logger
}

// NewHTTPLogger creates a new HTTP logger at info level
func NewHTTPLogger(component string, verbose bool) *HTTPLogger {
	level := entities.LogLevelInfo
	if verbose {
		level = entities.LogLevelDebug
	}
	return NewHTTPLoggerWithLevel(component, verbose, level)
}

// NewHTTPLoggerWithLevel creates a new HTTP logger with a specific level
func NewHTTPLoggerWithLevel(component string, verbose bool, level entities.LogLevel) *HTTPLogger {
	return &HTTPLogger{
		component: component,
		verbose:   verbose,
		level:     level,
		out:       log.New(os.Stderr, "", log.LstdFlags),
	}
}

// NewHTTPLoggerFromConfig creates a logger honouring the [logging] section
func NewHTTPLoggerFromConfig(component string, cfg *entities.LoggingConfig) *HTTPLogger {
	if cfg == nil {
		return NewHTTPLogger(component, false)
	}
	return NewHTTPLoggerWithLevel(component, cfg.Verbose, cfg.GetLevel())
}

// With returns a logger for a sub-component sharing level and output
func (l *HTTPLogger) With(component string) *HTTPLogger {
	return &HTTPLogger{
		component: component,
		verbose:   l.verbose,
		level:     l.level,
		out:       l.out,
	}
}

// SetOutput redirects log lines, mainly for tests
func (l *HTTPLogger) SetOutput(out *log.Logger) {
	l.out = out
}

// SetLevel updates the logging level
func (l *HTTPLogger) SetLevel(level entities.LogLevel) {
	l.level = level
}

func (l *HTTPLogger) shouldLog(msgLevel entities.LogLevel) bool {
	return levelRank[msgLevel] >= levelRank[l.level]
}

func (l *HTTPLogger) printf(tag, msg string, args ...interface{}) {
	l.out.Printf("["+tag+"] [%s] "+msg, append([]interface{}{l.component}, args...)...)
}

// Debug logs debug messages
func (l *HTTPLogger) Debug(msg string, args ...interface{}) {
	if l.shouldLog(entities.LogLevelDebug) {
		l.printf("DEBUG", msg, args...)
	}
}

// Info logs informational messages
func (l *HTTPLogger) Info(msg string, args ...interface{}) {
	if l.shouldLog(entities.LogLevelInfo) {
		l.printf("INFO", msg, args...)
	}
}

// Warn logs warning messages
func (l *HTTPLogger) Warn(msg string, args ...interface{}) {
	if l.shouldLog(entities.LogLevelWarn) {
		l.printf("WARN", msg, args...)
	}
}

// Error logs error messages
func (l *HTTPLogger) Error(msg string, args ...interface{}) {
	if l.shouldLog(entities.LogLevelError) {
		l.printf("ERROR", msg, args...)
	}
}

// Success logs success messages at info level
func (l *HTTPLogger) Success(msg string, args ...interface{}) {
	if l.shouldLog(entities.LogLevelInfo) {
		l.printf("SUCCESS", msg, args...)
	}
}
