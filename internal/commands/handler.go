package commands

import (
	"fmt"
	"strings"

	"aria-bot/internal/logging"
	"aria-bot/internal/metrics"

	"github.com/bwmarrin/discordgo"
)

// Responder answers slash command interactions. *discordgo.Session satisfies it.
type Responder interface {
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
}

// Messenger posts plain channel messages and opens direct message channels.
// *discordgo.Session satisfies it.
type Messenger interface {
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	UserChannelCreate(recipientID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
}

// Directory looks up guilds and resolved member permissions. *discordgo.State
// satisfies it.
type Directory interface {
	Guild(guildID string) (*discordgo.Guild, error)
	UserChannelPermissions(userID, channelID string) (int64, error)
}

// Handler turns platform events into Requests and delivers the Reply.
type Handler struct {
	dispatcher *Dispatcher
	directory  Directory
	prefix     string
}

func NewHandler(dispatcher *Dispatcher, directory Directory, prefix string) *Handler {
	return &Handler{
		dispatcher: dispatcher,
		directory:  directory,
		prefix:     prefix,
	}
}

// HandleInteraction runs a slash command and responds privately when the
// Reply asks for it.
func (h *Handler) HandleInteraction(r Responder, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}
	data := i.ApplicationCommandData()

	req := &Request{
		Name:    data.Name,
		Options: make(map[string]string, len(data.Options)),
		GuildID: i.GuildID,
	}
	for _, opt := range data.Options {
		if opt.Type == discordgo.ApplicationCommandOptionString {
			req.Options[opt.Name] = strings.TrimSpace(opt.StringValue())
		}
	}

	switch {
	case i.Member != nil && i.Member.User != nil:
		req.UserID = i.Member.User.ID
		req.Username = i.Member.User.Username
		req.Permissions = i.Member.Permissions
	case i.User != nil:
		req.UserID = i.User.ID
		req.Username = i.User.Username
	}
	if req.UserID == "" {
		if err := respondError(r, i, "could not identify who ran this command"); err != nil {
			logging.Warn("Failed to respond to /%s: %v", req.Name, err)
		}
		return
	}
	req.GuildName = h.guildName(i.GuildID)

	reply := h.dispatcher.Dispatch(req)
	if err := respond(r, i, reply); err != nil {
		h.dispatcher.metrics.Inc(metrics.SendFailures)
		logging.Warn("Failed to respond to /%s: %v", req.Name, err)
	}
}

// HandleMessage runs a prefixed text command. It reports whether the message
// was a command at all. Replies to commands typed in a guild channel go to the
// invoker by direct message, never to the channel itself.
func (h *Handler) HandleMessage(m Messenger, msg *discordgo.Message) bool {
	if msg.Author == nil {
		return false
	}
	name, rest, ok := splitCommand(msg.Content, h.prefix)
	if !ok {
		return false
	}

	c, known := h.dispatcher.lookup(name)
	if !known {
		// Unknown words after the prefix are ordinary chat.
		return false
	}
	if c.slashOnly {
		h.reply(m, msg, fmt.Sprintf("Use `/%s` for this command.", name))
		return true
	}

	req := &Request{
		Name:     name,
		Options:  bindOptions(c.def.Options, rest),
		UserID:   msg.Author.ID,
		Username: msg.Author.Username,
		GuildID:  msg.GuildID,
	}
	if msg.GuildID != "" {
		req.GuildName = h.guildName(msg.GuildID)
		perms, err := h.directory.UserChannelPermissions(msg.Author.ID, msg.ChannelID)
		if err != nil {
			logging.Warn("Failed to resolve permissions for %s in %s: %v", msg.Author.ID, msg.ChannelID, err)
		}
		req.Permissions = perms
	}

	reply := h.dispatcher.Dispatch(req)
	h.reply(m, msg, reply.Content)
	return true
}

// reply answers in place for a DM and through a DM channel otherwise. If the
// DM channel cannot be opened the reply is dropped.
func (h *Handler) reply(m Messenger, msg *discordgo.Message, content string) {
	if content == "" {
		return
	}
	channelID := msg.ChannelID
	if msg.GuildID != "" {
		dm, err := m.UserChannelCreate(msg.Author.ID)
		if err != nil {
			h.dispatcher.metrics.Inc(metrics.SendFailures)
			logging.Warn("Failed to open DM with %s: %v", msg.Author.ID, err)
			return
		}
		channelID = dm.ID
	}
	h.send(m, channelID, content)
}

func (h *Handler) send(m Messenger, channelID, content string) {
	if content == "" {
		return
	}
	if _, err := m.ChannelMessageSend(channelID, content); err != nil {
		h.dispatcher.metrics.Inc(metrics.SendFailures)
		logging.Warn("Failed to send message to channel %s: %v", channelID, err)
	}
}

// guildName falls back to the id when the guild is not cached.
func (h *Handler) guildName(guildID string) string {
	if guildID == "" || h.directory == nil {
		return guildID
	}
	guild, err := h.directory.Guild(guildID)
	if err != nil || guild == nil || guild.Name == "" {
		return guildID
	}
	return guild.Name
}

func respond(r Responder, i *discordgo.InteractionCreate, reply *Reply) error {
	data := &discordgo.InteractionResponseData{
		Content: reply.Content,
		Embeds:  reply.Embeds,
	}
	if reply.Ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	return r.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	})
}

// respondError sends an ephemeral error message
func respondError(r Responder, i *discordgo.InteractionCreate, message string) error {
	return respond(r, i, errorReply(message))
}
