package bot

import (
	"errors"
	"fmt"

	"aria-bot/internal/commands"
	"aria-bot/internal/config"
	"aria-bot/internal/logging"

	"github.com/bwmarrin/discordgo"
)

// Intents is the gateway subscription the bot needs: guild lifecycle, member
// joins for welcomes, and message content for mentions and prefix commands.
const Intents = discordgo.IntentsGuilds |
	discordgo.IntentsGuildMembers |
	discordgo.IntentsGuildMessages |
	discordgo.IntentsDirectMessages |
	discordgo.IntentsMessageContent

var errNotConnected = errors.New("discord session is not connected")

type Session struct {
	discord *discordgo.Session
	guildID string
}

// New creates the Discord session without connecting it.
func New(cfg *config.Config) (*Session, error) {
	dg, err := discordgo.New("Bot " + cfg.Bot.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord session: %w", err)
	}
	dg.Identify.Intents = Intents
	dg.StateEnabled = true

	return &Session{
		discord: dg,
		guildID: cfg.Bot.GuildID,
	}, nil
}

// Messenger exposes the session's REST client for posting messages.
func (s *Session) Messenger() commands.Messenger {
	return s.discord
}

// Directory resolves guilds and permissions from the gateway cache, falling
// back to REST on a miss.
func (s *Session) Directory() commands.Directory {
	return &directory{discord: s.discord}
}

// SetupEventHandlers subscribes the router and the slash command handler.
func (s *Session) SetupEventHandlers(router *Router, handler *commands.Handler) {
	s.discord.AddHandler(func(_ *discordgo.Session, e *discordgo.Ready) {
		router.OnReady(e)
	})
	s.discord.AddHandler(func(_ *discordgo.Session, e *discordgo.GuildCreate) {
		router.OnGuildCreate(e.Guild)
	})
	s.discord.AddHandler(func(_ *discordgo.Session, e *discordgo.GuildDelete) {
		router.OnGuildDelete(e.Guild)
	})
	s.discord.AddHandler(func(_ *discordgo.Session, e *discordgo.GuildMemberAdd) {
		router.OnMemberAdd(e.Member)
	})
	s.discord.AddHandler(func(_ *discordgo.Session, e *discordgo.MessageCreate) {
		router.OnMessage(e.Message)
	})
	s.discord.AddHandler(func(ds *discordgo.Session, e *discordgo.InteractionCreate) {
		handler.HandleInteraction(ds, e)
	})
	logging.Info("Event handlers registered")
}

// Connect opens the Discord websocket connection
func (s *Session) Connect() error {
	if err := s.discord.Open(); err != nil {
		return fmt.Errorf("failed to open Discord connection: %w", err)
	}
	if u := s.discord.State.User; u != nil {
		logging.Info("Bot ID: %s", u.ID)
	}
	logging.Info("Discord bot connected successfully")
	return nil
}

// Close closes the Discord connection
func (s *Session) Close() error {
	if s.discord != nil {
		return s.discord.Close()
	}
	return nil
}

// SyncCommands overwrites the registered slash commands with the current
// table, scoped to the configured guild when one is set.
func (s *Session) SyncCommands() (int, error) {
	if s.discord.State == nil || s.discord.State.User == nil {
		return 0, errNotConnected
	}

	defs := commands.GetAllCommands()
	scope := "globally"
	if s.guildID != "" {
		scope = "in guild " + s.guildID
	}
	logging.Info("Registering %d slash commands %s...", len(defs), scope)

	registered, err := s.discord.ApplicationCommandBulkOverwrite(s.discord.State.User.ID, s.guildID, defs)
	if err != nil {
		return 0, fmt.Errorf("failed to register commands: %w", err)
	}
	for _, cmd := range registered {
		logging.Debug("Registered command: /%s", cmd.Name)
	}
	return len(registered), nil
}
