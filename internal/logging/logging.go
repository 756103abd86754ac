package logging

import (
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
)

// LogLevel orders message severities from most to least verbose.
type LogLevel int

const (
	// LevelDebug enables per-lookup and per-generation detail
	LevelDebug LogLevel = iota
	// LevelInfo is the default operational level
	LevelInfo
	// LevelWarn reports recoverable problems
	LevelWarn
	// LevelError reports failures
	LevelError
)

var levelNames = [...]string{"debug", "info", "warn", "error"}

// String returns the lowercase name of the level
func (l LogLevel) String() string {
	if l < LevelDebug || l > LevelError {
		return fmt.Sprintf("unknown(%d)", int(l))
	}
	return levelNames[l]
}

var (
	currentLevel LogLevel
	levelOnce    sync.Once
)

// parseLevel maps a LOG_LEVEL value to a level. Matching is case
// insensitive and "warning" is accepted as an alias for warn.
func parseLevel(s string) (LogLevel, bool) {
	switch strings.ToLower(s) {
	case "debug":
		return LevelDebug, true
	case "info":
		return LevelInfo, true
	case "warn", "warning":
		return LevelWarn, true
	case "error":
		return LevelError, true
	}
	return LevelInfo, false
}

// envLevel resolves the active level from the environment. DEBUG set to
// a truthy value forces debug regardless of LOG_LEVEL; an unset or
// unrecognized LOG_LEVEL means info.
func envLevel() LogLevel {
	switch strings.ToLower(os.Getenv("DEBUG")) {
	case "1", "true", "yes", "on":
		return LevelDebug
	}
	if level, ok := parseLevel(os.Getenv("LOG_LEVEL")); ok {
		return level
	}
	return LevelInfo
}

// GetLevel returns the active log level, resolved from the environment
// on first use and fixed for the life of the process.
func GetLevel() LogLevel {
	levelOnce.Do(func() { currentLevel = envLevel() })
	return currentLevel
}

// IsDebugEnabled reports whether debug output is on. Callers use it to
// skip building expensive log arguments.
func IsDebugEnabled() bool {
	return GetLevel() <= LevelDebug
}

func logf(level LogLevel, format string, args ...interface{}) {
	if GetLevel() <= level {
		log.Printf("["+strings.ToUpper(level.String())+"] "+format, args...)
	}
}

// Debug logs a debug message
func Debug(format string, args ...interface{}) {
	logf(LevelDebug, format, args...)
}

// Info logs an info message
func Info(format string, args ...interface{}) {
	logf(LevelInfo, format, args...)
}

// Warn logs a warning message
func Warn(format string, args ...interface{}) {
	logf(LevelWarn, format, args...)
}

// Error logs an error message
func Error(format string, args ...interface{}) {
	logf(LevelError, format, args...)
}

// Fatal logs an error message and exits
func Fatal(format string, args ...interface{}) {
	log.Fatalf("[FATAL] "+format, args...)
}
