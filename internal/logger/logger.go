package logger

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime/debug"
	"sync/atomic"
	"time"
)

const (
	logFileName = "debug.log"
	maxLogSize  = 10 * 1024 * 1024
)

var (
	debugLog *os.File
	logPath  string
	verbose  atomic.Bool
)

// DefaultDir returns ~/.cardarena
func DefaultDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".cardarena"), nil
}

// Init redirects the standard logger into <dir>/debug.log.
// The terminal belongs to the UI, so nothing is written to stdout/stderr after this.
// An empty dir means DefaultDir.
func Init(dir string) error {
	if dir == "" {
		var err error
		if dir, err = DefaultDir(); err != nil {
			return err
		}
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	logPath = filepath.Join(dir, logFileName)
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	// Rotate if file is too large
	if info, err := f.Stat(); err == nil && info.Size() > maxLogSize {
		_ = f.Close()
		backupPath := filepath.Join(dir, fmt.Sprintf("%s.%d", logFileName, time.Now().Unix()))
		_ = os.Rename(logPath, backupPath)
		f, err = os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("failed to create new log file: %w", err)
		}
	}
	debugLog = f

	log.SetOutput(debugLog)
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds | log.Lshortfile)

	LogInfo("Logger initialized, log file: %s", logPath)
	return nil
}

// Close closes the debug log file
func Close() {
	if debugLog != nil {
		log.SetOutput(os.Stderr)
		_ = debugLog.Close()
		debugLog = nil
	}
}

// SetDebug toggles LogDebug output
func SetDebug(enabled bool) {
	verbose.Store(enabled)
}

// LogDebug logs a debug message when debug output is enabled
func LogDebug(format string, args ...any) {
	if verbose.Load() {
		_ = log.Output(2, fmt.Sprintf("[DEBUG] "+format, args...))
	}
}

// LogInfo logs an info message
func LogInfo(format string, args ...any) {
	_ = log.Output(2, fmt.Sprintf("[INFO] "+format, args...))
}

// LogError logs an error message
func LogError(format string, args ...any) {
	_ = log.Output(2, fmt.Sprintf("[ERROR] "+format, args...))
}

// LogPanic logs a panic with stack trace
func LogPanic(r any) {
	_ = log.Output(2, fmt.Sprintf("[PANIC] %v\n%s", r, debug.Stack()))
}

// GetLogPath returns the current log file path
func GetLogPath() string {
	return logPath
}
