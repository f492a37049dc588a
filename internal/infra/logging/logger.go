// Package logging provides file-based logging for ralph.
// It outputs logs to both a global log file (.ralph/logs/ralph.log)
// and worker lane log files (.ralph/logs/worker-N.log).
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/Cook1eMonster/Ralph/internal/domain"
)

// Ensure Logger implements domain.Logger interface.
var _ domain.Logger = (*Logger)(nil)

// Logger writes lane-tagged entries to append-only files.
// Fields are ordered to minimize memory padding.
type Logger struct {
	globalFile *os.File
	laneFiles  map[int]*os.File
	now        func() time.Time
	ralphDir   string
	mu         sync.Mutex
	level      slog.Level
}

// New creates a new Logger that writes to the ralph log directory.
// If ralphDir is empty, logging is disabled.
func New(ralphDir string, level slog.Level) *Logger {
	return &Logger{
		ralphDir:  ralphDir,
		level:     level,
		laneFiles: make(map[int]*os.File),
		now:       time.Now,
	}
}

// ParseLevel parses a log level string into slog.Level.
func ParseLevel(levelStr string) slog.Level {
	switch levelStr {
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

// ensureLogsDir creates the logs directory if it doesn't exist.
func (l *Logger) ensureLogsDir() error {
	return os.MkdirAll(filepath.Join(l.ralphDir, "logs"), 0o750)
}

// openFile opens path for appending.
func (l *Logger) openFile(path string) (*os.File, error) {
	if err := l.ensureLogsDir(); err != nil {
		return nil, fmt.Errorf("create logs directory: %w", err)
	}
	// Log files are append-only and need read access by repository users
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o640) //nolint:gosec // Log file readable by owner and group
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}

// writeEntry appends entry to the global file and, for worker lanes, to the
// lane's own file. Write failures are dropped.
func (l *Logger) writeEntry(lane int, entry string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.globalFile == nil {
		f, err := l.openFile(domain.GlobalLogPath(l.ralphDir))
		if err != nil {
			return
		}
		l.globalFile = f
	}
	_, _ = io.WriteString(l.globalFile, entry)

	if lane <= 0 {
		return
	}
	f, ok := l.laneFiles[lane]
	if !ok {
		var err error
		if f, err = l.openFile(domain.WorkerLogPath(l.ralphDir, lane)); err != nil {
			return
		}
		l.laneFiles[lane] = f
	}
	_, _ = io.WriteString(f, entry)
}

// Close closes all open log files.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	var lastErr error
	if l.globalFile != nil {
		if err := l.globalFile.Close(); err != nil {
			lastErr = err
		}
		l.globalFile = nil
	}
	for id, f := range l.laneFiles {
		if err := f.Close(); err != nil {
			lastErr = err
		}
		delete(l.laneFiles, id)
	}
	return lastErr
}

// formatLog formats a log entry.
// Format: [2025-12-30 09:32:51] [INFO] [worker-1] [category] message
func formatLog(t time.Time, level slog.Level, lane int, category, msg string) string {
	return fmt.Sprintf("[%s] [%s] [%s] [%s] %s\n",
		t.Format("2006-01-02 15:04:05"),
		levelToString(level),
		domain.LaneName(lane),
		category,
		msg,
	)
}

func levelToString(level slog.Level) string {
	switch level {
	case slog.LevelDebug:
		return "DEBUG"
	case slog.LevelInfo:
		return "INFO"
	case slog.LevelWarn:
		return "WARN"
	case slog.LevelError:
		return "ERROR"
	default:
		return "INFO"
	}
}

func (l *Logger) log(level slog.Level, lane int, category, msg string) {
	if l.ralphDir == "" {
		return // Logging disabled
	}

	if level < l.level {
		return // Skip if below minimum level
	}

	l.writeEntry(lane, formatLog(l.now(), level, lane, category, msg))
}

// Info logs an info message.
func (l *Logger) Info(lane int, category, msg string) {
	l.log(slog.LevelInfo, lane, category, msg)
}

// Debug logs a debug message.
func (l *Logger) Debug(lane int, category, msg string) {
	l.log(slog.LevelDebug, lane, category, msg)
}

// Warn logs a warning message.
func (l *Logger) Warn(lane int, category, msg string) {
	l.log(slog.LevelWarn, lane, category, msg)
}

// Error logs an error message.
func (l *Logger) Error(lane int, category, msg string) {
	l.log(slog.LevelError, lane, category, msg)
}
