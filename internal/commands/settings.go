package commands

import (
	"fmt"
	"strings"

	"aria-bot/internal/logging"
	"aria-bot/internal/metrics"
	"aria-bot/internal/state"
)

const provideBoth = "To update a setting, provide both a field and a value."

func formatSettings(title string, settings []state.Setting) string {
	lines := make([]string, 0, len(settings)+1)
	lines = append(lines, title)
	for _, s := range settings {
		lines = append(lines, fmt.Sprintf("**%s**: %s", s.Key, s.Value))
	}
	return strings.Join(lines, "\n")
}

// settings lists guild settings for anyone and changes them for members with
// manage-capability.
func (d *Dispatcher) settings(req *Request) (*Reply, error) {
	if !req.InGuild() {
		return text("This command must be used in a server."), nil
	}

	field, value := req.Option("field"), req.Option("value")

	if field == "" && value == "" {
		current, err := d.records.GuildSettings(req.GuildID, req.GuildName)
		if err != nil {
			return nil, fmt.Errorf("failed to load server settings: %w", err)
		}
		if len(current) == 0 {
			return text("No custom settings found for this server."), nil
		}
		return text("%s", formatSettings("**Current Server Settings:**", current)), nil
	}

	if err := d.gate.requireManageGuild(req); err != nil {
		return nil, err
	}

	if field == "" || value == "" {
		return text(provideBoth), nil
	}

	if err := d.records.SetGuildSetting(req.GuildID, req.GuildName, field, value); err != nil {
		return nil, fmt.Errorf("failed to save server setting: %w", err)
	}
	d.metrics.Inc(metrics.SettingsWritten)
	logging.Info("Guild %s setting %q set by %s", req.GuildID, field, req.UserID)

	return text("✅ Setting **%s** updated to **%s**.", field, value), nil
}

// profile lists or changes the invoker's own settings.
func (d *Dispatcher) profile(req *Request) (*Reply, error) {
	field, value := req.Option("field"), req.Option("value")

	if field == "" && value == "" {
		current, err := d.records.UserSettings(req.UserID, req.Username)
		if err != nil {
			return nil, fmt.Errorf("failed to load your settings: %w", err)
		}
		if len(current) == 0 {
			return text("You don't have any custom settings yet."), nil
		}
		return text("%s", formatSettings("**Your Profile Settings:**", current)), nil
	}

	if field == "" || value == "" {
		return text(provideBoth), nil
	}

	if err := d.records.SetUserSetting(req.UserID, req.Username, field, value); err != nil {
		return nil, fmt.Errorf("failed to save your setting: %w", err)
	}
	d.metrics.Inc(metrics.SettingsWritten)

	return text("✅ Your setting **%s** is now **%s**.", field, value), nil
}
