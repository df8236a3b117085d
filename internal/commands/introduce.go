package commands

import (
	"fmt"

	"aria-bot/internal/state"
)

// introduce answers differently in DMs and in servers; in a server it also
// reports whether welcome messages are on.
func (d *Dispatcher) introduce(req *Request) (*Reply, error) {
	if !req.InGuild() {
		return text("Hey %s! I'm **ARIA**, your assistant. "+
			"From DMs I can help you with personal settings and guidance. "+
			"Invite me to a server to enable coaching tools, coordination and accountability features.",
			req.Mention()), nil
	}

	enabled, _, err := d.records.GuildSetting(req.GuildID, req.GuildName, state.KeyWelcomeEnabled)
	if err != nil {
		return nil, fmt.Errorf("failed to load server settings: %w", err)
	}

	status := "off ❌"
	if state.IsTrue(enabled) {
		status = "on ✅"
	}

	return text("Hello **%s**! I'm **ARIA**.\n"+
		"• I help with coaching, coordination, and healthy community interactions.\n"+
		"• Try `/help` to see what's available now.\n"+
		"• Admins: `/settings welcome_enabled true/false` (currently **%s**). Optionally set `welcome_channel_id`.",
		req.GuildName, status), nil
}
