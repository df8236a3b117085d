package commands

import (
	"errors"
	"fmt"
	"runtime/debug"

	"aria-bot/internal/database"
	"aria-bot/internal/logging"
	"aria-bot/internal/metrics"
	"aria-bot/internal/state"

	"github.com/bwmarrin/discordgo"
)

// Request is one command invocation, from a slash command or a prefixed
// message. GuildID is empty for direct messages.
type Request struct {
	Name        string
	Options     map[string]string
	UserID      string
	Username    string
	GuildID     string
	GuildName   string
	Permissions int64
}

// Option returns the trimmed option value, or "" if it was not supplied.
func (r *Request) Option(name string) string {
	return r.Options[name]
}

func (r *Request) InGuild() bool {
	return r.GuildID != ""
}

// Mention renders the invoker as a Discord mention.
func (r *Request) Mention() string {
	return "<@" + r.UserID + ">"
}

// Reply is the single response to a Request.
type Reply struct {
	Content   string
	Embeds    []*discordgo.MessageEmbed
	Ephemeral bool
}

func text(format string, args ...interface{}) *Reply {
	return &Reply{Content: fmt.Sprintf(format, args...), Ephemeral: true}
}

// Registrar pushes the command table to the platform.
type Registrar interface {
	SyncCommands() (int, error)
}

// Dispatcher runs commands against the store. It owns no connection state;
// everything it needs about the invoker arrives in the Request.
type Dispatcher struct {
	records   *state.Records
	events    *state.EventLog
	store     *database.Store
	gate      *Gate
	registrar Registrar
	metrics   *metrics.MetricsRegistry
	table     map[string]*command
	ordered   []*command
}

func NewDispatcher(store *database.Store, gate *Gate, registrar Registrar, registry *metrics.MetricsRegistry) *Dispatcher {
	if registry == nil {
		registry = metrics.GetRegistry()
	}
	d := &Dispatcher{
		records:   state.NewRecords(store),
		events:    state.NewEventLog(store),
		store:     store,
		gate:      gate,
		registrar: registrar,
		metrics:   registry,
		table:     make(map[string]*command),
		ordered:   commandTable(),
	}
	for _, c := range d.ordered {
		d.table[c.def.Name] = c
	}
	return d
}

// SetRegistrar attaches the registrar once the session exists.
func (d *Dispatcher) SetRegistrar(r Registrar) {
	d.registrar = r
}

func (d *Dispatcher) lookup(name string) (*command, bool) {
	c, ok := d.table[name]
	return c, ok
}

// Dispatch runs the named command and always returns exactly one reply.
// Authorization failures become denials, other errors become an error reply;
// nothing escapes to the caller.
func (d *Dispatcher) Dispatch(req *Request) (reply *Reply) {
	d.metrics.Inc(metrics.CommandsHandled)

	defer func() {
		if rec := recover(); rec != nil {
			d.metrics.Inc(metrics.HandlerPanics)
			logging.Critical("Command panic [%s]: %v\n%s", req.Name, rec, debug.Stack())
			reply = errorReply("something went wrong while handling this command")
		}
	}()

	c, ok := d.lookup(req.Name)
	if !ok {
		return errorReply(fmt.Sprintf("unknown command: %s", req.Name))
	}

	reply, err := c.run(d, req)
	if err != nil {
		var access *AccessError
		if errors.As(err, &access) {
			d.metrics.Inc(metrics.CommandDenials)
			logging.Info("Denied /%s for user %s in guild %q", req.Name, req.UserID, req.GuildID)
			return text("🚫 %s", access.Reason)
		}

		d.metrics.Inc(metrics.CommandErrors)
		logging.Error("Command error [%s]: %v", req.Name, err)
		return errorReply(err.Error())
	}
	return reply
}

func errorReply(message string) *Reply {
	return text("❌ Error: %s", message)
}
