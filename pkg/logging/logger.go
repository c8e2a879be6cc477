package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	// maxLogSizeMB rotates the session log once it grows past this size.
	maxLogSizeMB = 10
	maxBackups   = 3
	maxAgeDays   = 14
)

// Logger writes component-tagged entries for tabshelf.
// All components of one process share a session log under ~/.tabshelf/logs/,
// rotated by lumberjack.
//
// There is no level filtering.
type Logger struct {
	sessionID string
	component string
	logger    *log.Logger
	writer    io.Writer
	mu        sync.Mutex
	logPath   string
}

var (
	// sessionID names this process's log file.
	sessionID     string
	sessionIDOnce sync.Once

	logDir   string
	initOnce sync.Once
	initErr  error

	sinkMu sync.Mutex
	sink   *lumberjack.Logger
)

func getSessionID() string {
	sessionIDOnce.Do(func() {
		sessionID = uuid.New().String()
	})
	return sessionID
}

// initLogDirectory creates ~/.tabshelf/logs unless a directory was set.
func initLogDirectory() error {
	initOnce.Do(func() {
		if logDir == "" {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				initErr = fmt.Errorf("failed to get home directory: %w", err)
				return
			}
			logDir = filepath.Join(homeDir, ".tabshelf", "logs")
		}
		if err := os.MkdirAll(logDir, 0750); err != nil {
			initErr = fmt.Errorf("failed to create log directory: %w", err)
			return
		}
	})
	return initErr
}

// sessionSink returns the rotating writer shared by every component.
func sessionSink() *lumberjack.Logger {
	sinkMu.Lock()
	defer sinkMu.Unlock()
	if sink == nil {
		sink = &lumberjack.Logger{
			Filename:   filepath.Join(logDir, fmt.Sprintf("%s-tabshelf.log", getSessionID())),
			MaxSize:    maxLogSizeMB,
			MaxBackups: maxBackups,
			MaxAge:     maxAgeDays,
		}
	}
	return sink
}

// NewLogger creates a logger for a specific component.
// The logger writes to ~/.tabshelf/logs/<session-id>-tabshelf.log
//
// If the log directory cannot be created it returns a fallback logger that
// writes to stderr along with the error. Callers can check the error to
// detect fallback mode.
func NewLogger(component string) (*Logger, error) {
	if err := initLogDirectory(); err != nil {
		return newFallbackLogger(component, err), err
	}

	w := sessionSink()
	return &Logger{
		sessionID: getSessionID(),
		component: component,
		logger:    log.New(w, "", 0), // timestamps are formatted per entry
		writer:    w,
		logPath:   w.Filename,
	}, nil
}

// Discard returns a logger that drops every entry.
func Discard(component string) *Logger {
	return &Logger{
		sessionID: getSessionID(),
		component: component,
		logger:    log.New(io.Discard, "", 0),
		writer:    io.Discard,
	}
}

// newFallbackLogger writes to stderr and reports why file logging is off.
func newFallbackLogger(component string, err error) *Logger {
	logger := log.New(os.Stderr, fmt.Sprintf("[%s] ", component), log.LstdFlags|log.Lshortfile)
	logger.Printf("WARNING: Failed to initialize file logging: %v", err)
	logger.Printf("Falling back to stderr logging")

	return &Logger{
		sessionID: getSessionID(),
		component: component,
		logger:    logger,
		writer:    os.Stderr,
	}
}

// formatLogEntry prefixes message with time, component and level.
func (l *Logger) formatLogEntry(level, message string) string {
	timestamp := time.Now().Format("2006-01-02 15:04:05.000")
	return fmt.Sprintf("[%s] [%s] [%s] %s", timestamp, l.component, level, message)
}

func (l *Logger) write(level, format string, v ...interface{}) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.logger.Println(l.formatLogEntry(level, fmt.Sprintf(format, v...)))
}

// Printf logs a formatted message at INFO level.
func (l *Logger) Printf(format string, v ...interface{}) { l.write("INFO", format, v...) }

// Debugf logs at DEBUG.
func (l *Logger) Debugf(format string, v ...interface{}) { l.write("DEBUG", format, v...) }

// Infof logs at INFO.
func (l *Logger) Infof(format string, v ...interface{}) { l.write("INFO", format, v...) }

// Warnf logs at WARN.
func (l *Logger) Warnf(format string, v ...interface{}) { l.write("WARN", format, v...) }

// Errorf logs at ERROR.
func (l *Logger) Errorf(format string, v ...interface{}) { l.write("ERROR", format, v...) }

// With returns a logger for a sub-component sharing the same sink.
func (l *Logger) With(component string) *Logger {
	return &Logger{
		sessionID: l.sessionID,
		component: l.component + "." + component,
		logger:    l.logger,
		writer:    l.writer,
		logPath:   l.logPath,
	}
}

// Writer exposes the underlying sink, e.g. for a subprocess's stderr.
func (l *Logger) Writer() io.Writer {
	return l.writer
}

func (l *Logger) SessionID() string {
	return l.sessionID
}

// LogPath returns the path to the log file, or "" for stderr and discard
// loggers.
func (l *Logger) LogPath() string {
	return l.logPath
}

// Close flushes and closes the shared session log. Safe to call multiple
// times; later writes reopen the file.
func Close() error {
	sinkMu.Lock()
	defer sinkMu.Unlock()
	if sink == nil {
		return nil
	}
	return sink.Close()
}

// GetSessionID returns the process-wide session id.
func GetSessionID() string {
	return getSessionID()
}

// GetLogDirectory returns the session log directory, creating it if needed.
func GetLogDirectory() (string, error) {
	if err := initLogDirectory(); err != nil {
		return "", err
	}
	return logDir, nil
}
