// Package logging provides config-driven categorized file-based logging for
// intentguard. Logs are written to <workspace>/.orchestration/logs/ with one
// file per category. Logging is controlled by debug mode (the CLI turns it
// on from debug_mode in the loaded config or from --verbose) — while it is
// off, category loggers discard everything until debug mode is turned on.
package logging

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Category identifies a logging subsystem. Each category gets its own file
// under .orchestration/logs/<category>.log.
type Category string

const (
	CategoryBoot        Category = "boot"        // process startup, config load
	CategoryIntent      Category = "intent"      // intent store + state machine
	CategoryHooks       Category = "hooks"       // hook pipeline engine
	CategoryScope       Category = "scope"       // scope validation stage
	CategoryConcurrency Category = "concurrency" // concurrency guard stage
	CategoryApproval    Category = "approval"    // approval gate stage
	CategoryTrace       Category = "trace"       // trace ledger writes
	CategoryVCS         Category = "vcs"         // revision oracle
	CategoryClassify    Category = "classify"    // mutation classifier
	CategoryCLI         Category = "cli"         // command-line glue
)

// Logger wraps a standard logger scoped to one category and file.
type Logger struct {
	category Category
	logger   *log.Logger
	file     *os.File
}

var (
	mu           sync.RWMutex
	loggers      = make(map[Category]*Logger)
	logsDir      string
	debugMode    bool
	initialized  bool
)

// Initialize prepares the logging subsystem rooted at workspace. It creates
// .orchestration/logs/ on first use; failure to create the directory is
// recovered by retrying lazily on first write rather than failing boot.
func Initialize(workspace string, debug bool) error {
	mu.Lock()
	defer mu.Unlock()

	logsDir = filepath.Join(workspace, ".orchestration", "logs")
	debugMode = debug
	initialized = true

	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return fmt.Errorf("logging: create log dir: %w", err)
	}
	return nil
}

// SetDebugMode toggles whether category loggers actually write to disk.
func SetDebugMode(enabled bool) {
	mu.Lock()
	defer mu.Unlock()
	debugMode = enabled
}

// IsDebugMode reports whether file logging is currently active.
func IsDebugMode() bool {
	mu.RLock()
	defer mu.RUnlock()
	return debugMode
}

// Get returns (creating if necessary) the logger for a category.
func Get(category Category) *Logger {
	mu.Lock()
	defer mu.Unlock()

	if !debugMode || logsDir == "" {
		return &Logger{category: category}
	}
	if l, ok := loggers[category]; ok && l.logger != nil {
		return l
	}

	l := &Logger{category: category}
	path := filepath.Join(logsDir, string(category)+".log")
	if err := os.MkdirAll(logsDir, 0755); err == nil {
		if f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644); err == nil {
			l.file = f
			l.logger = log.New(f, "", 0)
		}
	}
	loggers[category] = l
	return l
}

// Close flushes and closes every open category log file.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	for _, l := range loggers {
		if l.file != nil {
			l.file.Close()
		}
	}
	loggers = make(map[Category]*Logger)
	initialized = false
}

func (l *Logger) write(level, format string, args ...interface{}) {
	if l.logger == nil {
		return
	}
	ts := time.Now().Format(time.RFC3339)
	msg := fmt.Sprintf(format, args...)
	l.logger.Printf("%s [%s] [%s] %s", ts, level, l.category, msg)
}

// Debug logs a debug-level message for this category.
func (l *Logger) Debug(format string, args ...interface{}) { l.write("DEBUG", format, args...) }

// Info logs an info-level message for this category.
func (l *Logger) Info(format string, args ...interface{}) { l.write("INFO", format, args...) }

// Warn logs a warning-level message for this category.
func (l *Logger) Warn(format string, args ...interface{}) { l.write("WARN", format, args...) }

// Error logs an error-level message for this category.
func (l *Logger) Error(format string, args ...interface{}) { l.write("ERROR", format, args...) }

// convenience package-level helpers, mirroring the teacher's CategoryDebug
// shorthand functions (e.g. logging.ToolsDebug) for the categories this
// module actually exercises.

func HooksDebug(format string, args ...interface{}) { Get(CategoryHooks).Debug(format, args...) }
func HooksInfo(format string, args ...interface{})  { Get(CategoryHooks).Info(format, args...) }
func IntentDebug(format string, args ...interface{}) { Get(CategoryIntent).Debug(format, args...) }
func IntentWarn(format string, args ...interface{})  { Get(CategoryIntent).Warn(format, args...) }
func TraceDebug(format string, args ...interface{})  { Get(CategoryTrace).Debug(format, args...) }
func VCSDebug(format string, args ...interface{})    { Get(CategoryVCS).Debug(format, args...) }
func ScopeWarn(format string, args ...interface{})   { Get(CategoryScope).Warn(format, args...) }
func ConcurrencyWarn(format string, args ...interface{}) {
	Get(CategoryConcurrency).Warn(format, args...)
}
func ApprovalInfo(format string, args ...interface{}) { Get(CategoryApproval).Info(format, args...) }
func BootInfo(format string, args ...interface{})     { Get(CategoryBoot).Info(format, args...) }
