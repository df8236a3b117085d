package database

import (
	"bytes"
	"encoding/json"
	"time"
)

// Kind names one of the persisted documents.
type Kind string

const (
	KindGuilds Kind = "guilds"
	KindUsers  Kind = "users"
	KindLogs   Kind = "logs"
)

// Kinds lists every document the store manages.
var Kinds = []Kind{KindGuilds, KindUsers, KindLogs}

// GuildRecord is the persisted state of one guild.
type GuildRecord struct {
	ServerName string            `json:"server_name"`
	Settings   map[string]string `json:"settings"`
}

// UserRecord is the persisted state of one user.
type UserRecord struct {
	Username string            `json:"username"`
	Settings map[string]string `json:"settings"`
}

// GuildDocument maps guild id to record.
type GuildDocument map[string]*GuildRecord

// UserDocument maps user id to record.
type UserDocument map[string]*UserRecord

// JoinEvent is logged each time the bot is added to a guild.
type JoinEvent struct {
	GuildID   string    `json:"guild_id"`
	GuildName string    `json:"guild_name"`
	At        time.Time `json:"at"`
}

// Report is a piece of user feedback submitted with /report.
type Report struct {
	ID       string    `json:"id"`
	UserID   string    `json:"user_id"`
	Username string    `json:"username"`
	GuildID  *string   `json:"guild_id"` // nil when sent from a DM
	Message  string    `json:"message"`
	At       time.Time `json:"at"`
}

// UnmarshalJSON accepts guild_id as a string or as a bare JSON number, the
// form older logs.json files were written with.
func (e *JoinEvent) UnmarshalJSON(data []byte) error {
	type plain JoinEvent
	aux := struct {
		*plain
		GuildID looseID `json:"guild_id"`
	}{plain: (*plain)(e)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	e.GuildID = string(aux.GuildID)
	return nil
}

// UnmarshalJSON accepts user_id and guild_id as strings or bare JSON numbers.
func (r *Report) UnmarshalJSON(data []byte) error {
	type plain Report
	aux := struct {
		*plain
		UserID  looseID  `json:"user_id"`
		GuildID *looseID `json:"guild_id"`
	}{plain: (*plain)(r)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	r.UserID = string(aux.UserID)
	r.GuildID = nil
	if aux.GuildID != nil {
		id := string(*aux.GuildID)
		r.GuildID = &id
	}
	return nil
}

// looseID decodes a snowflake written either as "123" or as 123.
type looseID string

func (id *looseID) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = looseID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = looseID(n.String())
	return nil
}

// LogDocument is the append-only event log.
type LogDocument struct {
	GuildJoins []JoinEvent `json:"guild_joins"`
	Reports    []Report    `json:"reports"`
}

// Counts summarizes document sizes for diagnostics.
type Counts struct {
	Guilds     int
	Users      int
	GuildJoins int
	Reports    int
}
