// Package logging provides categorized file-based logging for askpdf. The
// interactive TUI owns the terminal, so diagnostics go to files under the
// config directory, one per category per day. When debug is disabled every
// logger is a silent no-op.
package logging

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Category represents a log category.
type Category string

const (
	CategoryBoot    Category = "boot"    // Startup and configuration
	CategorySession Category = "session" // Session lifecycle and turns
	CategoryAPI     Category = "api"     // Remote service calls
	CategoryExport  Category = "export"  // Transcript exports
)

// Logger wraps a standard logger writing to a category file.
type Logger struct {
	category Category
	logger   *log.Logger
	file     *os.File
}

var (
	loggers   = make(map[Category]*Logger)
	loggersMu sync.RWMutex
	logsDir   string
	enabled   bool
)

// Initialize sets the log directory and whether logging is enabled. Should be
// called once at startup; with debug disabled it is a silent no-op.
func Initialize(dir string, debug bool) error {
	enabled = debug
	if !enabled {
		return nil
	}
	logsDir = filepath.Join(dir, "logs")
	if err := os.MkdirAll(logsDir, 0o755); err != nil {
		return fmt.Errorf("create logs directory: %w", err)
	}
	Get(CategoryBoot).Info("logging initialized, dir=%s", logsDir)
	return nil
}

// Get returns (or creates) the logger for a category. Returns a no-op logger
// when logging is disabled or the file cannot be opened.
func Get(category Category) *Logger {
	if !enabled || logsDir == "" {
		return &Logger{category: category}
	}

	loggersMu.RLock()
	if l, ok := loggers[category]; ok {
		loggersMu.RUnlock()
		return l
	}
	loggersMu.RUnlock()

	loggersMu.Lock()
	defer loggersMu.Unlock()
	if l, ok := loggers[category]; ok {
		return l
	}

	date := time.Now().Format("2006-01-02")
	path := filepath.Join(logsDir, fmt.Sprintf("%s_%s.log", date, category))
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[logging] could not open %s: %v\n", path, err)
		return &Logger{category: category}
	}

	l := &Logger{
		category: category,
		file:     file,
		logger:   log.New(file, "", log.Ldate|log.Ltime|log.Lmicroseconds),
	}
	loggers[category] = l
	return l
}

// Info logs an informational message.
func (l *Logger) Info(format string, args ...interface{}) {
	if l.logger == nil {
		return
	}
	l.logger.Printf("[INFO] %s", fmt.Sprintf(format, args...))
}

// Warn logs a warning.
func (l *Logger) Warn(format string, args ...interface{}) {
	if l.logger == nil {
		return
	}
	l.logger.Printf("[WARN] %s", fmt.Sprintf(format, args...))
}

// Error logs an error.
func (l *Logger) Error(format string, args ...interface{}) {
	if l.logger == nil {
		return
	}
	l.logger.Printf("[ERROR] %s", fmt.Sprintf(format, args...))
}

// CloseAll closes all open log files. Call at shutdown.
func CloseAll() {
	loggersMu.Lock()
	defer loggersMu.Unlock()
	for _, l := range loggers {
		if l.file != nil {
			l.file.Close()
		}
	}
	loggers = make(map[Category]*Logger)
}

// Convenience functions; no-ops when logging is disabled.

// Boot logs to the boot category.
func Boot(format string, args ...interface{}) { Get(CategoryBoot).Info(format, args...) }

// Session logs to the session category.
func Session(format string, args ...interface{}) { Get(CategorySession).Info(format, args...) }

// API logs to the api category.
func API(format string, args ...interface{}) { Get(CategoryAPI).Info(format, args...) }

// APIError logs an error to the api category.
func APIError(format string, args ...interface{}) { Get(CategoryAPI).Error(format, args...) }

// Export logs to the export category.
func Export(format string, args ...interface{}) { Get(CategoryExport).Info(format, args...) }

// ExportError logs an error to the export category.
func ExportError(format string, args ...interface{}) { Get(CategoryExport).Error(format, args...) }
