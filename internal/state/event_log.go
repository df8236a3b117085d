package state

import (
	"errors"
	"strings"
	"time"

	"aria-bot/internal/database"

	"github.com/google/uuid"
)

var ErrEmptyReport = errors.New("report message is empty")

// EventLog appends join events and reports. Entries are never edited.
type EventLog struct {
	store *database.Store
	now   func() time.Time
}

func NewEventLog(store *database.Store) *EventLog {
	return &EventLog{store: store, now: time.Now}
}

// RecordJoin appends a guild-join entry.
func (l *EventLog) RecordJoin(guildID, guildName string) error {
	doc, err := l.store.LoadLogs()
	if err != nil {
		return err
	}

	doc.GuildJoins = append(doc.GuildJoins, database.JoinEvent{
		GuildID:   guildID,
		GuildName: guildName,
		At:        l.now().UTC(),
	})
	return l.store.SaveLogs(doc)
}

// RecordReport appends a report. guildID is empty for reports sent from DMs.
func (l *EventLog) RecordReport(userID, username, guildID, message string) (database.Report, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return database.Report{}, ErrEmptyReport
	}

	doc, err := l.store.LoadLogs()
	if err != nil {
		return database.Report{}, err
	}

	report := database.Report{
		ID:       uuid.NewString(),
		UserID:   userID,
		Username: username,
		Message:  message,
		At:       l.now().UTC(),
	}
	if guildID != "" {
		gid := guildID
		report.GuildID = &gid
	}

	doc.Reports = append(doc.Reports, report)
	if err := l.store.SaveLogs(doc); err != nil {
		return database.Report{}, err
	}
	return report, nil
}

// RecentReports returns up to n of the newest reports, newest first.
func (l *EventLog) RecentReports(n int) ([]database.Report, error) {
	doc, err := l.store.LoadLogs()
	if err != nil {
		return nil, err
	}

	out := make([]database.Report, 0, n)
	for i := len(doc.Reports) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, doc.Reports[i])
	}
	return out, nil
}
