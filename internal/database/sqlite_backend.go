package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteBackend stores each document as one row of the documents table.
type SQLiteBackend struct {
	mu   sync.Mutex
	db   *sql.DB
	path string
}

// NewSQLiteBackend opens (or creates) the database at path.
func NewSQLiteBackend(path string) (*SQLiteBackend, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One writer; whole-document saves do not benefit from a pool.
	db.SetMaxOpenConns(1)
	db.SetConnMaxIdleTime(10 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if _, err := db.Exec("PRAGMA synchronous=FULL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set synchronous mode: %w", err)
	}

	b := &SQLiteBackend{db: db, path: path}
	if err := b.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return b, nil
}

func (b *SQLiteBackend) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS documents (
		kind TEXT PRIMARY KEY,
		body TEXT NOT NULL,
		updated_at INTEGER NOT NULL DEFAULT 0
	);
	`

	_, err := b.db.Exec(schema)
	return err
}

func (b *SQLiteBackend) Load(kind Kind) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var body string
	err := b.db.QueryRow(`SELECT body FROM documents WHERE kind = ?`, string(kind)).Scan(&body)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return []byte(body), nil
}

func (b *SQLiteBackend) Save(kind Kind, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	_, err := b.db.Exec(
		`INSERT OR REPLACE INTO documents (kind, body, updated_at) VALUES (?, ?, ?)`,
		string(kind), string(data), time.Now().Unix(),
	)
	return err
}

func (b *SQLiteBackend) Describe(kind Kind) string {
	return fmt.Sprintf("%s#%s", b.path, kind)
}

func (b *SQLiteBackend) Close() error {
	if b.db != nil {
		return b.db.Close()
	}
	return nil
}
