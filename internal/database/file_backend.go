package database

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileBackend keeps each document as a JSON file in one directory.
type FileBackend struct {
	mu    sync.Mutex
	dir   string
	files map[Kind]string
}

// NewFileBackend creates dir if needed. names maps each kind to its file name;
// kinds left out use "<kind>.json".
func NewFileBackend(dir string, names map[Kind]string) (*FileBackend, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	files := make(map[Kind]string, len(Kinds))
	for _, kind := range Kinds {
		name := names[kind]
		if name == "" {
			name = string(kind) + ".json"
		}
		files[kind] = filepath.Join(dir, name)
	}

	return &FileBackend{dir: dir, files: files}, nil
}

func (b *FileBackend) path(kind Kind) (string, error) {
	p, ok := b.files[kind]
	if !ok {
		return "", fmt.Errorf("unknown document kind %q", kind)
	}
	return p, nil
}

func (b *FileBackend) Load(kind Kind) ([]byte, error) {
	p, err := b.path(kind)
	if err != nil {
		return nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	data, err := os.ReadFile(p)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	return data, err
}

// Save replaces the file through a temp file in the same directory, so readers
// see either the old document or the new one.
func (b *FileBackend) Save(kind Kind, data []byte) error {
	p, err := b.path(kind)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	tmp, err := os.CreateTemp(b.dir, "."+filepath.Base(p)+".*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, p); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

func (b *FileBackend) Describe(kind Kind) string {
	if p, ok := b.files[kind]; ok {
		return p
	}
	return string(kind)
}

func (b *FileBackend) Close() error {
	return nil
}
