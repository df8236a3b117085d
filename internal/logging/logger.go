package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

type LogLevel uint8

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelCritical
)

// ParseLevel maps a config string to a level. Unknown strings fall back to info.
func ParseLevel(s string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	case "critical":
		return LevelCritical
	default:
		return LevelInfo
	}
}

type Logger struct {
	level   LogLevel
	output  io.Writer
	closer  io.Closer
	logChan chan string
	wg      sync.WaitGroup

	// mu guards closed; senders hold it shared so Close never races a send.
	mu     sync.RWMutex
	closed bool
}

// NewLogger writes to path (rotating an oversized or stale file first) and
// mirrors every line to stderr. An empty path logs to stderr only.
func NewLogger(level LogLevel, path string) (*Logger, error) {
	if path == "" {
		return NewWriterLogger(level, os.Stderr), nil
	}

	file, err := openLogFile(path)
	if err != nil {
		return nil, err
	}

	l := newLogger(level, io.MultiWriter(file, os.Stderr))
	l.closer = file
	return l, nil
}

// NewWriterLogger logs to w without owning it.
func NewWriterLogger(level LogLevel, w io.Writer) *Logger {
	return newLogger(level, w)
}

func newLogger(level LogLevel, w io.Writer) *Logger {
	l := &Logger{
		level:   level,
		output:  w,
		logChan: make(chan string, 1024),
	}

	l.wg.Add(1)
	go l.worker()

	return l
}

func (l *Logger) worker() {
	defer l.wg.Done()
	for line := range l.logChan {
		io.WriteString(l.output, line)
	}
}

func (l *Logger) log(level LogLevel, format string, args ...interface{}) {
	if level < l.level {
		return
	}

	timestamp := time.Now().Format("2006-01-02 15:04:05.000")
	message := fmt.Sprintf(format, args...)
	line := fmt.Sprintf("[%s] [%s] %s\n", timestamp, levelString(level), message)

	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		return
	}
	// Blocks when the buffer is full; lines are never dropped before Close.
	l.logChan <- line
}

func (l *Logger) Debug(format string, args ...interface{}) {
	l.log(LevelDebug, format, args...)
}

func (l *Logger) Info(format string, args ...interface{}) {
	l.log(LevelInfo, format, args...)
}

func (l *Logger) Warn(format string, args ...interface{}) {
	l.log(LevelWarn, format, args...)
}

func (l *Logger) Error(format string, args ...interface{}) {
	l.log(LevelError, format, args...)
}

func (l *Logger) Critical(format string, args ...interface{}) {
	l.log(LevelCritical, format, args...)
}

func levelString(level LogLevel) string {
	switch level {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	case LevelCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// Close drains pending lines and closes the file, if any. Lines logged after
// Close are discarded.
func (l *Logger) Close() error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.closed = true
	close(l.logChan)
	l.mu.Unlock()

	l.wg.Wait()
	if l.closer != nil {
		return l.closer.Close()
	}
	return nil
}

var global atomic.Pointer[Logger]

// GlobalLogger returns the installed logger, or nil.
func GlobalLogger() *Logger {
	return global.Load()
}

func InitGlobalLogger(level LogLevel, path string) error {
	logger, err := NewLogger(level, path)
	if err != nil {
		return err
	}
	if old := global.Swap(logger); old != nil {
		old.Close()
	}
	return nil
}

// Shutdown flushes and detaches the global logger.
func Shutdown() error {
	l := global.Swap(nil)
	if l == nil {
		return nil
	}
	return l.Close()
}

func Debug(format string, args ...interface{}) {
	if l := global.Load(); l != nil {
		l.Debug(format, args...)
	}
}

func Info(format string, args ...interface{}) {
	if l := global.Load(); l != nil {
		l.Info(format, args...)
	}
}

func Warn(format string, args ...interface{}) {
	if l := global.Load(); l != nil {
		l.Warn(format, args...)
	}
}

func Error(format string, args ...interface{}) {
	if l := global.Load(); l != nil {
		l.Error(format, args...)
	}
}

func Critical(format string, args ...interface{}) {
	if l := global.Load(); l != nil {
		l.Critical(format, args...)
	}
}
