package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"aria-bot/pkg/util"

	"github.com/joho/godotenv"
)

var (
	ErrMissingToken = errors.New("DISCORD_TOKEN is not set")
	ErrInvalidOwner = errors.New("owner id is not a valid snowflake")
)

type Config struct {
	Bot     BotConfig     `json:"bot"`
	Storage StorageConfig `json:"storage"`
	Logging LoggingConfig `json:"logging"`
	Metrics MetricsConfig `json:"metrics"`
}

type BotConfig struct {
	Token   string `json:"token"`
	OwnerID string `json:"owner_id"`
	Prefix  string `json:"prefix"`
	// GuildID scopes command registration to one guild; empty registers globally.
	GuildID string `json:"guild_id"`
}

type StorageConfig struct {
	Backend    string `json:"backend"` // "json" or "sqlite"
	DataDir    string `json:"data_dir"`
	GuildsFile string `json:"guilds_file"`
	UsersFile  string `json:"users_file"`
	LogsFile   string `json:"logs_file"`
	SQLitePath string `json:"sqlite_path"`
}

type LoggingConfig struct {
	Level string `json:"level"`
	Path  string `json:"path"` // empty logs to stderr only
}

type MetricsConfig struct {
	Enabled bool   `json:"enabled"`
	Addr    string `json:"addr"`
}

// Load reads the config with Read and rejects it if the bot cannot start
// with it.
func Load(path string) (*Config, error) {
	cfg, err := Read(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Read loads the JSON config at path, then applies .env and environment
// overrides. A missing file yields the defaults; a malformed one is an error.
// The result is not validated.
func Read(path string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	applyEnv(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if token := os.Getenv("DISCORD_TOKEN"); token != "" {
		cfg.Bot.Token = token
	}
	if owner := os.Getenv("OWNER_ID"); owner != "" {
		cfg.Bot.OwnerID = owner
	}
	if guildID := os.Getenv("ARIA_GUILD_ID"); guildID != "" {
		cfg.Bot.GuildID = guildID
	}
	if dir := os.Getenv("ARIA_DATA_DIR"); dir != "" {
		cfg.Storage.DataDir = dir
	}
	if backend := os.Getenv("ARIA_STORAGE_BACKEND"); backend != "" {
		cfg.Storage.Backend = backend
	}
	if level := os.Getenv("ARIA_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
	if addr := os.Getenv("ARIA_METRICS_ADDR"); addr != "" {
		cfg.Metrics.Enabled = true
		cfg.Metrics.Addr = addr
	}
}

// Validate checks the settings that make startup impossible when wrong.
func (c *Config) Validate() error {
	c.Bot.Token = strings.TrimSpace(c.Bot.Token)
	if c.Bot.Token == "" {
		return ErrMissingToken
	}

	c.Bot.OwnerID = strings.TrimSpace(c.Bot.OwnerID)
	if c.Bot.OwnerID != "" && !util.IsSnowflake(c.Bot.OwnerID) {
		return fmt.Errorf("%w: %q", ErrInvalidOwner, c.Bot.OwnerID)
	}

	switch c.Storage.Backend {
	case "json", "sqlite":
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	return nil
}

func DefaultConfig() *Config {
	return &Config{
		Bot: BotConfig{
			Prefix: "!",
		},
		Storage: StorageConfig{
			Backend:    "json",
			DataDir:    "data",
			GuildsFile: "servers.json",
			UsersFile:  "users.json",
			LogsFile:   "logs.json",
			SQLitePath: "aria.db",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Addr:    "127.0.0.1:9464",
		},
	}
}
