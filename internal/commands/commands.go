package commands

import (
	"strings"

	"github.com/bwmarrin/discordgo"
)

type runFunc func(d *Dispatcher, req *Request) (*Reply, error)

type command struct {
	def   *discordgo.ApplicationCommand
	run   runFunc
	usage string
	// slashOnly commands are refused on the prefix path because their replies
	// must stay private.
	slashOnly bool
	ownerOnly bool
}

func stringOption(name, description string, required bool) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Name:        name,
		Description: description,
		Type:        discordgo.ApplicationCommandOptionString,
		Required:    required,
	}
}

// commandTable is the fixed set of commands, in help order.
func commandTable() []*command {
	return []*command{
		{
			def:   &discordgo.ApplicationCommand{Name: "ping", Description: "Check if the bot is responsive."},
			run:   (*Dispatcher).ping,
			usage: "`/ping`: Check responsiveness",
		},
		{
			def:   &discordgo.ApplicationCommand{Name: "about", Description: "Learn more about the bot."},
			run:   (*Dispatcher).about,
			usage: "`/about`: Info about ARIA",
		},
		{
			def:   &discordgo.ApplicationCommand{Name: "help", Description: "Show available commands."},
			run:   (*Dispatcher).help,
			usage: "`/help`: This list",
		},
		{
			def:   &discordgo.ApplicationCommand{Name: "introduce", Description: "ARIA introduces herself based on context."},
			run:   (*Dispatcher).introduce,
			usage: "`/introduce`: ARIA introduces herself based on context",
		},
		{
			def: &discordgo.ApplicationCommand{
				Name:        "profile",
				Description: "View or update your personal settings.",
				Options: []*discordgo.ApplicationCommandOption{
					stringOption("field", "The setting name to update (optional)", false),
					stringOption("value", "The new value (optional)", false),
				},
			},
			run:   (*Dispatcher).profile,
			usage: "`/profile [field] [value]`: Set your personal options",
		},
		{
			def: &discordgo.ApplicationCommand{
				Name:        "settings",
				Description: "View or change server settings.",
				Options: []*discordgo.ApplicationCommandOption{
					stringOption("field", "The setting name to change (optional)", false),
					stringOption("value", "The new value (optional)", false),
				},
			},
			run:   (*Dispatcher).settings,
			usage: "`/settings [field] [value]`: Server config (admins)",
		},
		{
			def: &discordgo.ApplicationCommand{
				Name:        "report",
				Description: "Send feedback, report an issue, or suggest improvements.",
				Options: []*discordgo.ApplicationCommandOption{
					stringOption("message", "Describe the issue or feedback you want to report.", true),
				},
			},
			run:   (*Dispatcher).report,
			usage: "`/report <message>`: Send feedback/issues",
		},
		{
			def:       &discordgo.ApplicationCommand{Name: "sync", Description: "Re-register slash commands (bot owner only)."},
			run:       (*Dispatcher).sync,
			usage:     "`/sync`: Re-register commands (owner)",
			slashOnly: true,
			ownerOnly: true,
		},
		{
			def:       &discordgo.ApplicationCommand{Name: "stats", Description: "Show host and bot statistics (bot owner only)."},
			run:       (*Dispatcher).stats,
			usage:     "`/stats`: Host and bot statistics (owner)",
			slashOnly: true,
			ownerOnly: true,
		},
		{
			def:       &discordgo.ApplicationCommand{Name: "reports", Description: "Show the most recent reports (bot owner only)."},
			run:       (*Dispatcher).reports,
			usage:     "`/reports`: Latest feedback reports (owner)",
			slashOnly: true,
			ownerOnly: true,
		},
	}
}

// GetAllCommands returns all application commands
func GetAllCommands() []*discordgo.ApplicationCommand {
	table := commandTable()
	defs := make([]*discordgo.ApplicationCommand, len(table))
	for i, c := range table {
		defs[i] = c.def
	}
	return defs
}

func helpText(table []*command, owner bool) string {
	lines := make([]string, 0, len(table))
	for _, c := range table {
		if c.ownerOnly && !owner {
			continue
		}
		lines = append(lines, c.usage)
	}
	return "**Available Commands:**\n" + strings.Join(lines, "\n")
}
