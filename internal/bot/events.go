package bot

import (
	"fmt"
	"runtime/debug"
	"sort"
	"strings"
	"sync"

	"aria-bot/internal/commands"
	"aria-bot/internal/database"
	"aria-bot/internal/logging"
	"aria-bot/internal/metrics"
	"aria-bot/internal/state"
	"aria-bot/pkg/util"

	"github.com/bwmarrin/discordgo"
)

const (
	greetingFormat = "👋 Hi everyone, I'm **ARIA**! Thanks for inviting me to **%s**.\n" +
		"Use `/about` and `/help` to see what I can do.\n" +
		"Admins can configure me with `/settings`."
	welcomeFormat = "🎉 Welcome %s! I'm ARIA, try `/introduce` to meet me."
	mentionReply  = "👋 I'm here! Try `/help` for commands, or `/introduce` to learn what I can do in this server."
)

const sendMask = discordgo.PermissionViewChannel | discordgo.PermissionSendMessages

// Router turns gateway events into the bot's workflows. Every entry point
// recovers its own panics so one bad event never stops the session.
type Router struct {
	records  *state.Records
	events   *state.EventLog
	commands *commands.Handler
	out      commands.Messenger
	dir      commands.Directory
	metrics  *metrics.MetricsRegistry

	mu    sync.Mutex
	botID string
	// guilds is every guild the bot currently belongs to this session. A
	// GuildCreate for a member guild is a load or an outage recovery, not a
	// join. Only a GuildDelete that is not an outage removes an entry.
	guilds map[string]struct{}
}

func NewRouter(store *database.Store, handler *commands.Handler, out commands.Messenger, dir commands.Directory, registry *metrics.MetricsRegistry) *Router {
	if registry == nil {
		registry = metrics.GetRegistry()
	}
	return &Router{
		records:     state.NewRecords(store),
		events:      state.NewEventLog(store),
		commands:    handler,
		out:         out,
		dir:         dir,
		metrics:     registry,
		guilds:      make(map[string]struct{}),
	}
}

func (r *Router) BotID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.botID
}

func (r *Router) recoverPanic(workflow string) {
	if rec := recover(); rec != nil {
		r.metrics.Inc(metrics.HandlerPanics)
		logging.Critical("Panic in %s handler: %v\n%s", workflow, rec, debug.Stack())
	}
}

func (r *Router) send(channelID, content string) bool {
	if _, err := r.out.ChannelMessageSend(channelID, content); err != nil {
		r.metrics.Inc(metrics.SendFailures)
		logging.Warn("Failed to send message to channel %s: %v", channelID, err)
		return false
	}
	return true
}

// OnReady records who the bot is and which guilds it already belongs to.
func (r *Router) OnReady(ready *discordgo.Ready) {
	defer r.recoverPanic("ready")
	r.metrics.Inc(metrics.EventsRouted)

	r.mu.Lock()
	if ready.User != nil {
		r.botID = ready.User.ID
	}
	r.guilds = make(map[string]struct{}, len(ready.Guilds))
	for _, g := range ready.Guilds {
		r.guilds[g.ID] = struct{}{}
	}
	r.mu.Unlock()

	name := ""
	if ready.User != nil {
		name = ready.User.Username
	}
	logging.Info("Logged in as %s, present in %d guild(s)", name, len(ready.Guilds))
}

// OnGuildCreate loads guilds the bot already belongs to and treats any other
// guild as a fresh join: record it, log it, greet it.
func (r *Router) OnGuildCreate(guild *discordgo.Guild) {
	defer r.recoverPanic("guild-create")
	if guild == nil || guild.Unavailable {
		return
	}
	r.metrics.Inc(metrics.EventsRouted)

	r.mu.Lock()
	_, known := r.guilds[guild.ID]
	r.guilds[guild.ID] = struct{}{}
	r.mu.Unlock()

	if _, err := r.records.GetOrCreateGuild(guild.ID, guild.Name); err != nil {
		logging.Error("Failed to initialize record for guild %s: %v", guild.ID, err)
		return
	}
	if known {
		return
	}

	r.metrics.Inc(metrics.GuildJoins)
	logging.Info("Joined guild %s (%s)", guild.Name, guild.ID)
	if err := r.events.RecordJoin(guild.ID, guild.Name); err != nil {
		logging.Error("Failed to log join for guild %s: %v", guild.ID, err)
	}

	channelID := greetingChannel(guild, r.canSend)
	if channelID == "" {
		logging.Warn("No channel to greet guild %s", guild.ID)
		return
	}
	r.send(channelID, fmt.Sprintf(greetingFormat, guild.Name))
}

// OnGuildDelete forgets a guild the bot was removed from. An outage keeps the
// guild, so its return is not greeted.
func (r *Router) OnGuildDelete(guild *discordgo.Guild) {
	defer r.recoverPanic("guild-delete")
	if guild == nil {
		return
	}
	r.metrics.Inc(metrics.EventsRouted)
	if guild.Unavailable {
		logging.Warn("Guild %s became unavailable", guild.ID)
		return
	}

	r.mu.Lock()
	delete(r.guilds, guild.ID)
	r.mu.Unlock()
	logging.Info("Removed from guild %s", guild.ID)
}

// OnMemberAdd welcomes a new member when the guild has welcome_enabled set to
// "true". The target channel is resolved again on every join.
func (r *Router) OnMemberAdd(member *discordgo.Member) {
	defer r.recoverPanic("member-add")
	if member == nil || member.User == nil {
		return
	}
	r.metrics.Inc(metrics.EventsRouted)

	guild, err := r.dir.Guild(member.GuildID)
	if err != nil {
		logging.Warn("Member joined unknown guild %s: %v", member.GuildID, err)
		return
	}

	enabled, _, err := r.records.GuildSetting(guild.ID, guild.Name, state.KeyWelcomeEnabled)
	if err != nil {
		logging.Error("Failed to load settings for guild %s: %v", guild.ID, err)
		return
	}
	if !state.IsTrue(enabled) {
		return
	}

	configured, _, err := r.records.GuildSetting(guild.ID, guild.Name, state.KeyWelcomeChannelID)
	if err != nil {
		logging.Error("Failed to load settings for guild %s: %v", guild.ID, err)
		return
	}

	channelID := welcomeChannel(guild, configured, r.canSend)
	if channelID == "" {
		logging.Debug("No welcome channel available in guild %s", guild.ID)
		return
	}
	if r.send(channelID, fmt.Sprintf(welcomeFormat, member.User.Mention())) {
		r.metrics.Inc(metrics.WelcomesSent)
	}
}

// OnMessage answers direct mentions of the bot and hands every human message
// to the prefix command path.
func (r *Router) OnMessage(msg *discordgo.Message) {
	defer r.recoverPanic("message")
	if msg == nil || msg.Author == nil || msg.Author.Bot {
		return
	}
	r.metrics.Inc(metrics.EventsRouted)

	if r.mentionsBot(msg) {
		if r.send(msg.ChannelID, mentionReply) {
			r.metrics.Inc(metrics.MentionReplies)
		}
	}

	if r.commands != nil {
		r.commands.HandleMessage(r.out, msg)
	}
}

func (r *Router) mentionsBot(msg *discordgo.Message) bool {
	botID := r.BotID()
	if botID == "" {
		return false
	}
	for _, u := range msg.Mentions {
		if u != nil && u.ID == botID {
			return true
		}
	}
	return false
}

// canSend checks the bot's resolved permissions in a channel. Unknown
// permissions count as not sendable.
func (r *Router) canSend(channelID string) bool {
	botID := r.BotID()
	if botID == "" || r.dir == nil {
		return false
	}
	perms, err := r.dir.UserChannelPermissions(botID, channelID)
	if err != nil {
		logging.Debug("Permission lookup failed for channel %s: %v", channelID, err)
		return false
	}
	return perms&sendMask == sendMask
}

// textChannels returns the guild's text channels ordered by position.
func textChannels(guild *discordgo.Guild) []*discordgo.Channel {
	out := make([]*discordgo.Channel, 0, len(guild.Channels))
	for _, c := range guild.Channels {
		if c != nil && c.Type == discordgo.ChannelTypeGuildText {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Position < out[j].Position
	})
	return out
}

func firstSendable(guild *discordgo.Guild, canSend func(string) bool) string {
	for _, c := range textChannels(guild) {
		if canSend(c.ID) {
			return c.ID
		}
	}
	return ""
}

// greetingChannel picks the system channel whenever the guild has one, then
// the first text channel the bot may post in.
func greetingChannel(guild *discordgo.Guild, canSend func(string) bool) string {
	if guild.SystemChannelID != "" {
		return guild.SystemChannelID
	}
	return firstSendable(guild, canSend)
}

// welcomeChannel prefers a configured channel that exists in the guild, then
// falls back like greetingChannel.
func welcomeChannel(guild *discordgo.Guild, configured string, canSend func(string) bool) string {
	configured = strings.TrimSpace(configured)
	if util.IsSnowflake(configured) {
		for _, c := range guild.Channels {
			if c != nil && c.ID == configured {
				return configured
			}
		}
		logging.Debug("Configured welcome channel %s not found in guild %s", configured, guild.ID)
	}
	return greetingChannel(guild, canSend)
}
