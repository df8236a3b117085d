package metrics

import (
	"fmt"
	"strings"
)

type MetricsExporter struct {
	registry *MetricsRegistry
}

func NewMetricsExporter(registry *MetricsRegistry) *MetricsExporter {
	return &MetricsExporter{registry: registry}
}

// Export renders every counter in the plain-text exposition format, one
// "aria_<name> <value>" line each, followed by uptime and event rate.
func (me *MetricsExporter) Export() string {
	var b strings.Builder
	for _, name := range me.registry.Names() {
		fmt.Fprintf(&b, "aria_%s %d\n", name, me.registry.Get(name))
	}
	fmt.Fprintf(&b, "aria_uptime_seconds %.0f\n", me.registry.Uptime().Seconds())
	fmt.Fprintf(&b, "aria_events_per_minute %.2f\n", me.registry.EventRate().PerMinute())
	return b.String()
}
