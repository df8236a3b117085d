package commands

import (
	"errors"
	"fmt"
	"strings"

	"aria-bot/internal/logging"
	"aria-bot/internal/metrics"
	"aria-bot/internal/state"
)

const recentReportLimit = 10

func (d *Dispatcher) report(req *Request) (*Reply, error) {
	report, err := d.events.RecordReport(req.UserID, req.Username, req.GuildID, req.Option("message"))
	if errors.Is(err, state.ErrEmptyReport) {
		return text("Please include a message describing the issue or feedback."), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to record report: %w", err)
	}

	d.metrics.Inc(metrics.ReportsRecorded)
	logging.Info("Report %s recorded from user %s", report.ID, req.UserID)

	return text("✅ Your report has been recorded. Thank you!"), nil
}

// reports shows the newest reports to the bot owner.
func (d *Dispatcher) reports(req *Request) (*Reply, error) {
	if err := d.gate.requireOwner(req); err != nil {
		return nil, err
	}

	recent, err := d.events.RecentReports(recentReportLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load reports: %w", err)
	}
	if len(recent) == 0 {
		return text("No reports have been submitted yet."), nil
	}

	lines := []string{fmt.Sprintf("**Latest %d report(s):**", len(recent))}
	for _, r := range recent {
		where := "DM"
		if r.GuildID != nil {
			where = "guild " + *r.GuildID
		}
		lines = append(lines, fmt.Sprintf("• `%s` **%s** (%s, %s): %s",
			r.At.Format("2006-01-02 15:04"), r.Username, r.UserID, where, truncateString(r.Message, 200)))
	}
	return text("%s", strings.Join(lines, "\n")), nil
}
