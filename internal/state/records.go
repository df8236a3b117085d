package state

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"aria-bot/internal/database"
)

// Well-known guild setting keys. Values are opaque strings like every other
// setting; these two are only interpreted by the member-join workflow.
const (
	KeyWelcomeEnabled   = "welcome_enabled"
	KeyWelcomeChannelID = "welcome_channel_id"
)

var (
	ErrEmptySetting = errors.New("setting key and value must both be non-empty")
	ErrEmptyID      = errors.New("record id is empty")
)

// Setting is one key/value pair of a record's settings map.
type Setting struct {
	Key   string
	Value string
}

// IsTrue reports whether a setting value means "on". Only the literal "true",
// compared case-insensitively, qualifies.
func IsTrue(value string) bool {
	return strings.EqualFold(strings.TrimSpace(value), "true")
}

// Records resolves guild and user records, creating them on first touch.
type Records struct {
	store *database.Store
}

func NewRecords(store *database.Store) *Records {
	return &Records{store: store}
}

func ensureGuild(doc database.GuildDocument, guildID, displayName string) (*database.GuildRecord, bool) {
	if rec, ok := doc[guildID]; ok && rec != nil {
		if rec.Settings == nil {
			rec.Settings = make(map[string]string)
		}
		return rec, false
	}
	rec := &database.GuildRecord{
		ServerName: displayName,
		Settings:   make(map[string]string),
	}
	doc[guildID] = rec
	return rec, true
}

func ensureUser(doc database.UserDocument, userID, displayName string) (*database.UserRecord, bool) {
	if rec, ok := doc[userID]; ok && rec != nil {
		if rec.Settings == nil {
			rec.Settings = make(map[string]string)
		}
		return rec, false
	}
	rec := &database.UserRecord{
		Username: displayName,
		Settings: make(map[string]string),
	}
	doc[userID] = rec
	return rec, true
}

// GetOrCreateGuild returns the guild's record, persisting a default one if the
// guild has never been seen. An existing record is returned untouched; its
// name snapshot is not refreshed.
func (r *Records) GetOrCreateGuild(guildID, displayName string) (*database.GuildRecord, error) {
	if guildID == "" {
		return nil, ErrEmptyID
	}

	doc, err := r.store.LoadGuilds()
	if err != nil {
		return nil, err
	}

	rec, created := ensureGuild(doc, guildID, displayName)
	if created {
		if err := r.store.SaveGuilds(doc); err != nil {
			return nil, fmt.Errorf("failed to create guild %s: %w", guildID, err)
		}
	}
	return rec, nil
}

// GetOrCreateUser is the user-scoped counterpart of GetOrCreateGuild.
func (r *Records) GetOrCreateUser(userID, displayName string) (*database.UserRecord, error) {
	if userID == "" {
		return nil, ErrEmptyID
	}

	doc, err := r.store.LoadUsers()
	if err != nil {
		return nil, err
	}

	rec, created := ensureUser(doc, userID, displayName)
	if created {
		if err := r.store.SaveUsers(doc); err != nil {
			return nil, fmt.Errorf("failed to create user %s: %w", userID, err)
		}
	}
	return rec, nil
}

// GuildSettings lists the guild's settings sorted by key.
func (r *Records) GuildSettings(guildID, displayName string) ([]Setting, error) {
	rec, err := r.GetOrCreateGuild(guildID, displayName)
	if err != nil {
		return nil, err
	}
	return sortedSettings(rec.Settings), nil
}

// GuildSetting returns one guild setting and whether it is present.
func (r *Records) GuildSetting(guildID, displayName, key string) (string, bool, error) {
	rec, err := r.GetOrCreateGuild(guildID, displayName)
	if err != nil {
		return "", false, err
	}
	v, ok := rec.Settings[key]
	return v, ok, nil
}

// SetGuildSetting writes one key into the guild's settings and persists the
// whole guild document. Authorization is the caller's job.
func (r *Records) SetGuildSetting(guildID, displayName, key, value string) error {
	if guildID == "" {
		return ErrEmptyID
	}
	if key == "" || value == "" {
		return ErrEmptySetting
	}

	doc, err := r.store.LoadGuilds()
	if err != nil {
		return err
	}

	rec, _ := ensureGuild(doc, guildID, displayName)
	rec.Settings[key] = value

	if err := r.store.SaveGuilds(doc); err != nil {
		return fmt.Errorf("failed to update guild %s: %w", guildID, err)
	}
	return nil
}

// UserSettings lists the user's settings sorted by key.
func (r *Records) UserSettings(userID, displayName string) ([]Setting, error) {
	rec, err := r.GetOrCreateUser(userID, displayName)
	if err != nil {
		return nil, err
	}
	return sortedSettings(rec.Settings), nil
}

// SetUserSetting writes one key into the user's settings and persists the
// whole user document.
func (r *Records) SetUserSetting(userID, displayName, key, value string) error {
	if userID == "" {
		return ErrEmptyID
	}
	if key == "" || value == "" {
		return ErrEmptySetting
	}

	doc, err := r.store.LoadUsers()
	if err != nil {
		return err
	}

	rec, _ := ensureUser(doc, userID, displayName)
	rec.Settings[key] = value

	if err := r.store.SaveUsers(doc); err != nil {
		return fmt.Errorf("failed to update user %s: %w", userID, err)
	}
	return nil
}

func sortedSettings(m map[string]string) []Setting {
	out := make([]Setting, 0, len(m))
	for k, v := range m {
		out = append(out, Setting{Key: k, Value: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}
