package database

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"

	"aria-bot/internal/config"
)

var (
	// ErrNotFound is returned by a Backend when a document has never been written.
	ErrNotFound = errors.New("document not found")
	// ErrCorrupt marks a document that exists but cannot be decoded.
	ErrCorrupt = errors.New("document is corrupt")
)

// Backend stores whole documents by kind. Load and Save always move the full
// document; there is no partial update.
type Backend interface {
	Load(kind Kind) ([]byte, error)
	Save(kind Kind, data []byte) error
	Describe(kind Kind) string
	Close() error
}

// Store is the typed view over a Backend. Each Load/Save pair is the unit of
// atomicity; concurrent read-modify-write sequences on the same document are
// last-write-wins.
type Store struct {
	backend Backend
}

// Open builds the configured backend and makes sure every document exists and
// decodes. Missing documents are created empty; a corrupt one aborts startup.
func Open(cfg config.StorageConfig) (*Store, error) {
	var (
		backend Backend
		err     error
	)

	switch cfg.Backend {
	case "", "json":
		backend, err = NewFileBackend(cfg.DataDir, map[Kind]string{
			KindGuilds: cfg.GuildsFile,
			KindUsers:  cfg.UsersFile,
			KindLogs:   cfg.LogsFile,
		})
	case "sqlite":
		path := cfg.SQLitePath
		if !filepath.IsAbs(path) {
			path = filepath.Join(cfg.DataDir, path)
		}
		backend, err = NewSQLiteBackend(path)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, err
	}

	return New(backend)
}

// New wraps an already-open backend and initializes its documents.
func New(backend Backend) (*Store, error) {
	s := &Store{backend: backend}
	if err := s.ensureDocuments(); err != nil {
		backend.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureDocuments() error {
	for _, kind := range Kinds {
		data, err := s.backend.Load(kind)
		if errors.Is(err, ErrNotFound) {
			if err := s.backend.Save(kind, []byte("{}")); err != nil {
				return fmt.Errorf("failed to create %s: %w", s.backend.Describe(kind), err)
			}
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", s.backend.Describe(kind), err)
		}

		if err := s.validate(kind, data); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) validate(kind Kind, data []byte) error {
	var target interface{}
	switch kind {
	case KindGuilds:
		target = &GuildDocument{}
	case KindUsers:
		target = &UserDocument{}
	case KindLogs:
		target = &LogDocument{}
	}
	return s.decode(kind, data, target)
}

func (s *Store) decode(kind Kind, data []byte, v interface{}) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return fmt.Errorf("%w: %s is empty", ErrCorrupt, s.backend.Describe(kind))
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrCorrupt, s.backend.Describe(kind), err)
	}
	return nil
}

func (s *Store) load(kind Kind, v interface{}) error {
	data, err := s.backend.Load(kind)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", kind, err)
	}
	return s.decode(kind, data, v)
}

func (s *Store) save(kind Kind, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", kind, err)
	}
	if err := s.backend.Save(kind, data); err != nil {
		return fmt.Errorf("failed to save %s: %w", kind, err)
	}
	return nil
}

// LoadGuilds reads the full guild document.
func (s *Store) LoadGuilds() (GuildDocument, error) {
	doc := GuildDocument{}
	if err := s.load(KindGuilds, &doc); err != nil {
		return nil, err
	}
	if doc == nil {
		doc = GuildDocument{}
	}
	return doc, nil
}

// SaveGuilds overwrites the full guild document.
func (s *Store) SaveGuilds(doc GuildDocument) error {
	return s.save(KindGuilds, doc)
}

// LoadUsers reads the full user document.
func (s *Store) LoadUsers() (UserDocument, error) {
	doc := UserDocument{}
	if err := s.load(KindUsers, &doc); err != nil {
		return nil, err
	}
	if doc == nil {
		doc = UserDocument{}
	}
	return doc, nil
}

// SaveUsers overwrites the full user document.
func (s *Store) SaveUsers(doc UserDocument) error {
	return s.save(KindUsers, doc)
}

// LoadLogs reads the event log.
func (s *Store) LoadLogs() (*LogDocument, error) {
	var doc LogDocument
	if err := s.load(KindLogs, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// SaveLogs overwrites the event log.
func (s *Store) SaveLogs(doc *LogDocument) error {
	return s.save(KindLogs, doc)
}

// Counts reports how many records each document holds.
func (s *Store) Counts() (Counts, error) {
	guilds, err := s.LoadGuilds()
	if err != nil {
		return Counts{}, err
	}
	users, err := s.LoadUsers()
	if err != nil {
		return Counts{}, err
	}
	logs, err := s.LoadLogs()
	if err != nil {
		return Counts{}, err
	}
	return Counts{
		Guilds:     len(guilds),
		Users:      len(users),
		GuildJoins: len(logs.GuildJoins),
		Reports:    len(logs.Reports),
	}, nil
}

// Describe names where a document lives, for logs and diagnostics.
func (s *Store) Describe(kind Kind) string {
	return s.backend.Describe(kind)
}

// Close releases the backend.
func (s *Store) Close() error {
	return s.backend.Close()
}
