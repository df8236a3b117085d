package metrics

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// Counter names used across the bot.
const (
	EventsRouted    = "events_routed_total"
	GuildJoins      = "guild_joins_total"
	WelcomesSent    = "welcomes_sent_total"
	MentionReplies  = "mention_replies_total"
	SendFailures    = "send_failures_total"
	CommandsHandled = "commands_handled_total"
	CommandErrors   = "command_errors_total"
	CommandDenials  = "command_denials_total"
	SettingsWritten = "settings_written_total"
	ReportsRecorded = "reports_recorded_total"
	HandlerPanics   = "handler_panics_total"
)

type MetricsRegistry struct {
	mu        sync.RWMutex
	counters  map[string]*uint64
	events    *RateCounter
	startedAt time.Time
}

func NewMetricsRegistry() *MetricsRegistry {
	return &MetricsRegistry{
		counters:  make(map[string]*uint64),
		events:    NewRateCounter(),
		startedAt: time.Now(),
	}
}

func (mr *MetricsRegistry) counter(name string) *uint64 {
	mr.mu.RLock()
	c := mr.counters[name]
	mr.mu.RUnlock()
	if c != nil {
		return c
	}

	mr.mu.Lock()
	defer mr.mu.Unlock()
	if c = mr.counters[name]; c == nil {
		c = new(uint64)
		mr.counters[name] = c
	}
	return c
}

// Inc adds one to the named counter, creating it on first use.
func (mr *MetricsRegistry) Inc(name string) {
	atomic.AddUint64(mr.counter(name), 1)
	if name == EventsRouted {
		mr.events.Increment()
	}
}

// Get returns the current value of a counter.
func (mr *MetricsRegistry) Get(name string) uint64 {
	return atomic.LoadUint64(mr.counter(name))
}

// Names returns every registered counter name, sorted.
func (mr *MetricsRegistry) Names() []string {
	mr.mu.RLock()
	defer mr.mu.RUnlock()

	names := make([]string, 0, len(mr.counters))
	for name := range mr.counters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (mr *MetricsRegistry) EventRate() *RateCounter {
	return mr.events
}

func (mr *MetricsRegistry) Uptime() time.Duration {
	return time.Since(mr.startedAt)
}

var (
	globalMu       sync.Mutex
	GlobalRegistry *MetricsRegistry
)

func InitGlobalRegistry() {
	globalMu.Lock()
	GlobalRegistry = NewMetricsRegistry()
	globalMu.Unlock()
}

func GetRegistry() *MetricsRegistry {
	globalMu.Lock()
	defer globalMu.Unlock()
	if GlobalRegistry == nil {
		GlobalRegistry = NewMetricsRegistry()
	}
	return GlobalRegistry
}

// Inc bumps a counter on the global registry.
func Inc(name string) {
	GetRegistry().Inc(name)
}
