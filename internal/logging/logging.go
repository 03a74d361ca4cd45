// Package logging is codegraph's process-wide stderr logger. The stdio MCP
// transport owns stdout for JSON-RPC frames, so every log line, at any
// level, goes to stderr, never stdout. Component-tagged Printf lines with
// the two levels the CLI's -v/--verbose flag switches between.
package logging

import (
	"fmt"
	"os"
	"sync"
	"time"
)

// Level is codegraph's log verbosity. There are only two: info (default)
// and debug (-v/--verbose).
type Level int

const (
	LevelInfo Level = iota
	LevelDebug
)

var (
	mu      sync.Mutex
	current = LevelInfo
)

// SetLevel raises or lowers the process-wide log level. Called once at
// startup from the CLI's -v/--verbose flag.
func SetLevel(l Level) {
	mu.Lock()
	defer mu.Unlock()
	current = l
}

// SetLevelFromEnv applies the CODEGRAPH_LOG environment variable, if set.
// The -v/--verbose flag is applied afterwards and can only raise the level.
func SetLevelFromEnv() {
	switch os.Getenv("CODEGRAPH_LOG") {
	case "debug":
		SetLevel(LevelDebug)
	case "info":
		SetLevel(LevelInfo)
	}
}

func enabled(l Level) bool {
	mu.Lock()
	defer mu.Unlock()
	return l <= current
}

func write(level, component, format string, args ...interface{}) {
	ts := time.Now().Format("15:04:05.000")
	fmt.Fprintf(os.Stderr, "%s [%s] %s: %s\n", ts, level, component, fmt.Sprintf(format, args...))
}

// Info logs an info-level line, tagged with component.
func Info(component, format string, args ...interface{}) {
	write("INFO", component, format, args...)
}

// Debug logs a debug-level line, tagged with component; suppressed unless
// SetLevel(LevelDebug) was called.
func Debug(component, format string, args ...interface{}) {
	if !enabled(LevelDebug) {
		return
	}
	write("DEBUG", component, format, args...)
}

// Error logs an error-level line, tagged with component. Errors are always
// emitted regardless of level.
func Error(component, format string, args ...interface{}) {
	write("ERROR", component, format, args...)
}
