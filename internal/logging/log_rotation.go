package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	defaultMaxLogSize = 10 << 20
	defaultMaxLogAge  = 7 * 24 * time.Hour
)

type LogRotation struct {
	maxSize int64
	maxAge  time.Duration
}

func NewLogRotation(maxSize int64, maxAge time.Duration) *LogRotation {
	return &LogRotation{
		maxSize: maxSize,
		maxAge:  maxAge,
	}
}

func (lr *LogRotation) ShouldRotate(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}

	if info.Size() >= lr.maxSize {
		return true
	}

	return time.Since(info.ModTime()) >= lr.maxAge
}

// Rotate renames path to a timestamped sibling and returns the new name.
func (lr *LogRotation) Rotate(path string) (string, error) {
	timestamp := time.Now().Format("20060102-150405")
	ext := filepath.Ext(path)
	base := path[:len(path)-len(ext)]

	newPath := fmt.Sprintf("%s-%s%s", base, timestamp, ext)
	return newPath, os.Rename(path, newPath)
}

// openLogFile rotates path when it is too large or too old, then opens it for
// appending. Rotation happens only at startup.
func openLogFile(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
	}

	rotation := NewLogRotation(defaultMaxLogSize, defaultMaxLogAge)
	if rotation.ShouldRotate(path) {
		if _, err := rotation.Rotate(path); err != nil {
			return nil, fmt.Errorf("failed to rotate %s: %w", path, err)
		}
	}

	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
}
