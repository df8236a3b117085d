package state

import (
	"errors"
	"testing"
	"time"

	"aria-bot/internal/config"
	"aria-bot/internal/database"
)

func newStore(t *testing.T) *database.Store {
	t.Helper()
	cfg := config.DefaultConfig().Storage
	cfg.DataDir = t.TempDir()
	s, err := database.Open(cfg)
	if err != nil {
		t.Fatalf("database.Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestGetOrCreateGuildPersistsEmptyRecord(t *testing.T) {
	store := newStore(t)
	records := NewRecords(store)

	rec, err := records.GetOrCreateGuild("100", "Test Guild")
	if err != nil {
		t.Fatalf("GetOrCreateGuild: %v", err)
	}
	if rec.ServerName != "Test Guild" || len(rec.Settings) != 0 {
		t.Fatalf("new record = %+v", rec)
	}

	doc, err := store.LoadGuilds()
	if err != nil {
		t.Fatal(err)
	}
	if doc["100"] == nil {
		t.Fatal("record not persisted")
	}
}

func TestGetOrCreateIsIdempotent(t *testing.T) {
	store := newStore(t)
	records := NewRecords(store)

	if err := records.SetGuildSetting("100", "First Name", "welcome_enabled", "true"); err != nil {
		t.Fatal(err)
	}

	rec, err := records.GetOrCreateGuild("100", "Renamed Guild")
	if err != nil {
		t.Fatal(err)
	}
	if rec.ServerName != "First Name" {
		t.Errorf("name snapshot refreshed to %q", rec.ServerName)
	}
	if rec.Settings["welcome_enabled"] != "true" {
		t.Errorf("settings overwritten: %+v", rec.Settings)
	}
}

func TestGetOrCreateUser(t *testing.T) {
	store := newStore(t)
	records := NewRecords(store)

	rec, err := records.GetOrCreateUser("7", "alice")
	if err != nil {
		t.Fatal(err)
	}
	if rec.Username != "alice" || len(rec.Settings) != 0 {
		t.Fatalf("new user = %+v", rec)
	}

	users, err := store.LoadUsers()
	if err != nil {
		t.Fatal(err)
	}
	if users["7"] == nil {
		t.Fatal("user not persisted")
	}
	guilds, err := store.LoadGuilds()
	if err != nil {
		t.Fatal(err)
	}
	if len(guilds) != 0 {
		t.Errorf("user creation touched guilds: %+v", guilds)
	}
}

func TestSetThenListOverwrites(t *testing.T) {
	records := NewRecords(newStore(t))

	steps := []Setting{
		{"timezone", "UTC"},
		{"color", "blue"},
		{"timezone", "CET"},
	}
	for _, s := range steps {
		if err := records.SetUserSetting("7", "alice", s.Key, s.Value); err != nil {
			t.Fatal(err)
		}
	}

	got, err := records.UserSettings("7", "alice")
	if err != nil {
		t.Fatal(err)
	}
	want := []Setting{{"color", "blue"}, {"timezone", "CET"}}
	if len(got) != len(want) {
		t.Fatalf("UserSettings = %+v, want %+v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("UserSettings[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestSetRejectsEmpty(t *testing.T) {
	records := NewRecords(newStore(t))

	if err := records.SetGuildSetting("1", "g", "", "v"); !errors.Is(err, ErrEmptySetting) {
		t.Errorf("empty key: err = %v", err)
	}
	if err := records.SetUserSetting("1", "u", "k", ""); !errors.Is(err, ErrEmptySetting) {
		t.Errorf("empty value: err = %v", err)
	}
	if _, err := records.GetOrCreateGuild("", "g"); !errors.Is(err, ErrEmptyID) {
		t.Errorf("empty id: err = %v", err)
	}
}

func TestGuildSetting(t *testing.T) {
	records := NewRecords(newStore(t))

	if _, ok, err := records.GuildSetting("1", "g", KeyWelcomeEnabled); err != nil || ok {
		t.Fatalf("absent key: ok=%v err=%v", ok, err)
	}
	if err := records.SetGuildSetting("1", "g", KeyWelcomeEnabled, "TRUE"); err != nil {
		t.Fatal(err)
	}
	v, ok, err := records.GuildSetting("1", "g", KeyWelcomeEnabled)
	if err != nil || !ok || !IsTrue(v) {
		t.Fatalf("GuildSetting = %q ok=%v err=%v", v, ok, err)
	}
}

func TestIsTrue(t *testing.T) {
	for _, v := range []string{"true", "TRUE", "True", " true "} {
		if !IsTrue(v) {
			t.Errorf("IsTrue(%q) = false", v)
		}
	}
	for _, v := range []string{"", "yes", "1", "on", "false", "truee"} {
		if IsTrue(v) {
			t.Errorf("IsTrue(%q) = true", v)
		}
	}
}

func TestRecordReportAppendsOnly(t *testing.T) {
	store := newStore(t)
	log := NewEventLog(store)
	log.now = func() time.Time { return time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC) }

	first, err := log.RecordReport("7", "alice", "100", "the bot is great")
	if err != nil {
		t.Fatal(err)
	}
	if first.ID == "" || first.GuildID == nil || *first.GuildID != "100" {
		t.Fatalf("report = %+v", first)
	}
	second, err := log.RecordReport("8", "bob", "", "from a DM")
	if err != nil {
		t.Fatal(err)
	}
	if second.GuildID != nil {
		t.Errorf("DM report has guild id %q", *second.GuildID)
	}
	if first.ID == second.ID {
		t.Error("report ids collide")
	}

	doc, err := store.LoadLogs()
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Reports) != 2 || doc.Reports[0].Message != "the bot is great" {
		t.Fatalf("reports = %+v", doc.Reports)
	}

	guilds, _ := store.LoadGuilds()
	users, _ := store.LoadUsers()
	if len(guilds) != 0 || len(users) != 0 {
		t.Errorf("report touched settings documents: guilds=%v users=%v", guilds, users)
	}

	recent, err := log.RecentReports(1)
	if err != nil {
		t.Fatal(err)
	}
	if len(recent) != 1 || recent[0].ID != second.ID {
		t.Errorf("RecentReports(1) = %+v", recent)
	}
}

func TestRecordReportRejectsBlank(t *testing.T) {
	log := NewEventLog(newStore(t))
	if _, err := log.RecordReport("7", "alice", "", "   "); !errors.Is(err, ErrEmptyReport) {
		t.Fatalf("err = %v, want ErrEmptyReport", err)
	}
}

func TestRecordJoin(t *testing.T) {
	store := newStore(t)
	log := NewEventLog(store)

	for i := 0; i < 2; i++ {
		if err := log.RecordJoin("100", "Test Guild"); err != nil {
			t.Fatal(err)
		}
	}

	doc, err := store.LoadLogs()
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.GuildJoins) != 2 {
		t.Fatalf("joins = %+v", doc.GuildJoins)
	}
	if doc.GuildJoins[0].GuildName != "Test Guild" || doc.GuildJoins[0].At.IsZero() {
		t.Errorf("join entry = %+v", doc.GuildJoins[0])
	}
}
