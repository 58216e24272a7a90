package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
)

// LogLevel is the minimum severity that gets printed.
type LogLevel int32

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levelNames = [...]string{"debug", "info", "warn", "error"}

var (
	threshold atomic.Int32
	envOnce   sync.Once
)

// fromEnv applies DEBUG and LOG_LEVEL once, unless SetLevel ran first.
func fromEnv() {
	envOnce.Do(func() {
		level := LevelInfo
		if l, err := ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
			level = l
		}
		if slices.Contains([]string{"1", "true", "yes", "on"}, strings.ToLower(os.Getenv("DEBUG"))) {
			level = LevelDebug
		}
		threshold.Store(int32(level))
	})
}

// ParseLevel converts a level name into a LogLevel. The empty string maps to info.
func ParseLevel(s string) (LogLevel, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	switch name {
	case "":
		return LevelInfo, nil
	case "warning":
		return LevelWarn, nil
	}
	if i := slices.Index(levelNames[:], name); i >= 0 {
		return LogLevel(i), nil
	}
	return LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// SetLevel overrides LOG_LEVEL and DEBUG.
func SetLevel(level LogLevel) {
	envOnce.Do(func() {})
	threshold.Store(int32(level))
}

// SetOutput redirects log output.
func SetOutput(w io.Writer) {
	log.SetOutput(w)
}

// GetLevel returns the current threshold.
func GetLevel() LogLevel {
	fromEnv()
	return LogLevel(threshold.Load())
}

// IsDebugEnabled reports whether Debug lines are printed.
func IsDebugEnabled() bool {
	return GetLevel() <= LevelDebug
}

func logf(level LogLevel, format string, args []any) {
	if GetLevel() > level {
		return
	}
	log.Printf("["+strings.ToUpper(level.String())+"] "+format, args...)
}

// Debug logs per-file detail.
func Debug(format string, args ...any) { logf(LevelDebug, format, args) }

// Info logs pass summaries and lifecycle events.
func Info(format string, args ...any) { logf(LevelInfo, format, args) }

// Warn logs recoverable problems.
func Warn(format string, args ...any) { logf(LevelWarn, format, args) }

// Error logs failures.
func Error(format string, args ...any) { logf(LevelError, format, args) }

func (l LogLevel) String() string {
	if l >= 0 && int(l) < len(levelNames) {
		return levelNames[l]
	}
	return fmt.Sprintf("unknown(%d)", l)
}
