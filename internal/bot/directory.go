package bot

import (
	"github.com/bwmarrin/discordgo"
)

// directory reads from the gateway state first and asks the REST API only
// when the cache misses.
type directory struct {
	discord *discordgo.Session
}

func (d *directory) Guild(guildID string) (*discordgo.Guild, error) {
	if g, err := d.discord.State.Guild(guildID); err == nil {
		return g, nil
	}
	g, err := d.discord.Guild(guildID)
	if err != nil {
		return nil, err
	}
	if len(g.Channels) == 0 {
		if channels, err := d.discord.GuildChannels(guildID); err == nil {
			g.Channels = channels
		}
	}
	return g, nil
}

func (d *directory) UserChannelPermissions(userID, channelID string) (int64, error) {
	if perms, err := d.discord.State.UserChannelPermissions(userID, channelID); err == nil {
		return perms, nil
	}
	return d.discord.UserChannelPermissions(userID, channelID)
}
