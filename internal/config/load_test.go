package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// isolate keeps .env files and the caller's environment out of Load.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })

	for _, key := range []string{
		"DISCORD_TOKEN", "OWNER_ID", "ARIA_GUILD_ID", "ARIA_DATA_DIR",
		"ARIA_STORAGE_BACKEND", "ARIA_LOG_LEVEL", "ARIA_METRICS_ADDR",
	} {
		t.Setenv(key, "")
	}
	return dir
}

func TestLoadMissingTokenIsFatal(t *testing.T) {
	dir := isolate(t)

	_, err := Load(filepath.Join(dir, "config.json"))
	if !errors.Is(err, ErrMissingToken) {
		t.Fatalf("Load() error = %v, want ErrMissingToken", err)
	}
}

func TestLoadDefaultsWithEnvToken(t *testing.T) {
	dir := isolate(t)
	t.Setenv("DISCORD_TOKEN", "secret")

	cfg, err := Load(filepath.Join(dir, "config.json"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Bot.Token != "secret" {
		t.Errorf("token = %q", cfg.Bot.Token)
	}
	if cfg.Storage.Backend != "json" || cfg.Storage.DataDir != "data" {
		t.Errorf("storage defaults not applied: %+v", cfg.Storage)
	}
	if cfg.Bot.Prefix != "!" {
		t.Errorf("prefix = %q", cfg.Bot.Prefix)
	}
}

func TestLoadFileThenEnvOverride(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "config.json")
	body := `{"bot":{"token":"from-file","owner_id":"587806838716891147"},"storage":{"backend":"sqlite"}}`
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("ARIA_DATA_DIR", "/var/lib/aria")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Bot.Token != "from-file" {
		t.Errorf("token = %q", cfg.Bot.Token)
	}
	if cfg.Bot.OwnerID != "587806838716891147" {
		t.Errorf("owner = %q", cfg.Bot.OwnerID)
	}
	if cfg.Storage.Backend != "sqlite" {
		t.Errorf("backend = %q", cfg.Storage.Backend)
	}
	if cfg.Storage.DataDir != "/var/lib/aria" {
		t.Errorf("data dir = %q", cfg.Storage.DataDir)
	}
	// Unset keys keep their defaults.
	if cfg.Storage.UsersFile != "users.json" {
		t.Errorf("users file = %q", cfg.Storage.UsersFile)
	}
}

func TestLoadRejectsInvalidOwner(t *testing.T) {
	dir := isolate(t)
	t.Setenv("DISCORD_TOKEN", "secret")
	t.Setenv("OWNER_ID", "not-a-number")

	_, err := Load(filepath.Join(dir, "config.json"))
	if !errors.Is(err, ErrInvalidOwner) {
		t.Fatalf("Load() error = %v, want ErrInvalidOwner", err)
	}
}

func TestLoadMalformedFile(t *testing.T) {
	dir := isolate(t)
	t.Setenv("DISCORD_TOKEN", "secret")
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("expected error for malformed config")
	}
}

func TestValidateUnknownBackend(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Bot.Token = "secret"
	cfg.Storage.Backend = "redis"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestReadSkipsValidation(t *testing.T) {
	dir := isolate(t)

	cfg, err := Read(filepath.Join(dir, "config.json"))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if cfg.Bot.Token != "" || cfg.Storage.DataDir != "data" {
		t.Fatalf("Read() = %+v", cfg)
	}
}
