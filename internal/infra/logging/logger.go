// Package logging provides file-based logging for tasktree.
// Lines go to <dataDir>/logs/tasktree.log.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/runoshun/tasktree/internal/domain"
)

// Ensure Logger implements domain.Logger interface.
var _ domain.Logger = (*Logger)(nil)

// FileName is the log file name inside the logs directory.
const FileName = "tasktree.log"

// Logger writes formatted lines to the log file.
// Fields are ordered to minimize memory padding.
type Logger struct {
	file    *os.File
	now     func() time.Time
	dataDir string
	mu      sync.Mutex
	level   slog.Level
}

// New creates a Logger writing below dataDir.
// If dataDir is empty, logging is disabled.
func New(dataDir string, level slog.Level) *Logger {
	return &Logger{
		dataDir: dataDir,
		level:   level,
		now:     time.Now,
	}
}

// Path returns the log file path for dataDir.
func Path(dataDir string) string {
	return filepath.Join(dataDir, "logs", FileName)
}

// ParseLevel parses a log level string into slog.Level.
func ParseLevel(levelStr string) slog.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// SetLevel changes the minimum level.
func (l *Logger) SetLevel(level slog.Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// ensureFileLocked opens the log file on first use.
func (l *Logger) ensureFileLocked() (*os.File, error) {
	if l.file != nil {
		return l.file, nil
	}

	path := Path(l.dataDir)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("create logs directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o640) //nolint:gosec // Log file readable by owner and group
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	l.file = f
	return f, nil
}

// Close closes the log file.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

// formatLog formats a log entry.
// Format: [2025-12-30 09:32:51] [INFO] [3f2a9c1e] [category] message
func formatLog(t time.Time, level slog.Level, entityID, category, msg string) string {
	entity := "global"
	if entityID != "" {
		entity = shortID(entityID)
	}
	return fmt.Sprintf("[%s] [%s] [%s] [%s] %s\n",
		t.Format("2006-01-02 15:04:05"),
		levelToString(level),
		entity,
		category,
		msg,
	)
}

// shortID keeps log lines readable for UUID identifiers.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func levelToString(level slog.Level) string {
	switch level {
	case slog.LevelDebug:
		return "DEBUG"
	case slog.LevelWarn:
		return "WARN"
	case slog.LevelError:
		return "ERROR"
	default:
		return "INFO"
	}
}

func (l *Logger) log(level slog.Level, entityID, category, msg string) {
	if l.dataDir == "" {
		return // Logging disabled
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if level < l.level {
		return
	}
	f, err := l.ensureFileLocked()
	if err != nil {
		return
	}
	_, _ = io.WriteString(f, formatLog(l.now(), level, entityID, category, msg))
}

// Info logs an info message.
func (l *Logger) Info(entityID, category, msg string) {
	l.log(slog.LevelInfo, entityID, category, msg)
}

// Debug logs a debug message.
func (l *Logger) Debug(entityID, category, msg string) {
	l.log(slog.LevelDebug, entityID, category, msg)
}

// Warn logs a warning message.
func (l *Logger) Warn(entityID, category, msg string) {
	l.log(slog.LevelWarn, entityID, category, msg)
}

// Error logs an error message.
func (l *Logger) Error(entityID, category, msg string) {
	l.log(slog.LevelError, entityID, category, msg)
}
