package commands

import (
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"aria-bot/internal/metrics"

	"github.com/bwmarrin/discordgo"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/net"
	"github.com/shirou/gopsutil/v3/process"
)

// SystemStats holds the numbers shown by /stats. Fields that could not be
// read stay zero.
type SystemStats struct {
	Hostname string
	Platform string
	Uptime   time.Duration

	CPUThreads int
	CPUUsage   float64

	TotalMemory   uint64
	UsedMemory    uint64
	MemoryPercent float64

	DiskUsed    uint64
	DiskTotal   uint64
	DiskPercent float64

	NetSent uint64
	NetRecv uint64

	ProcessRSS uint64

	GoVersion  string
	GoRoutines int
	HeapAlloc  uint64
	NumGC      uint32

	Guilds     int
	Users      int
	GuildJoins int
	Reports    int

	CommandsHandled uint64
	EventsRouted    uint64
	BotUptime       time.Duration
}

func (d *Dispatcher) stats(req *Request) (*Reply, error) {
	if err := d.gate.requireOwner(req); err != nil {
		return nil, err
	}

	stats, err := d.gatherSystemStats()
	if err != nil {
		return nil, err
	}

	return &Reply{
		Embeds:    []*discordgo.MessageEmbed{createStatsEmbed(stats)},
		Ephemeral: true,
	}, nil
}

// gatherSystemStats reads host numbers best-effort; only a store failure is
// reported as an error.
func (d *Dispatcher) gatherSystemStats() (*SystemStats, error) {
	stats := &SystemStats{}

	if hostInfo, err := host.Info(); err == nil {
		stats.Hostname = hostInfo.Hostname
		stats.Platform = fmt.Sprintf("%s %s", hostInfo.Platform, hostInfo.PlatformVersion)
		stats.Uptime = time.Duration(hostInfo.Uptime) * time.Second
	}

	stats.CPUThreads = runtime.NumCPU()
	if pct, err := cpu.Percent(0, false); err == nil && len(pct) > 0 {
		stats.CPUUsage = pct[0]
	}

	if memInfo, err := mem.VirtualMemory(); err == nil {
		stats.TotalMemory = memInfo.Total
		stats.UsedMemory = memInfo.Used
		stats.MemoryPercent = memInfo.UsedPercent
	}

	if usage, err := disk.Usage("/"); err == nil {
		stats.DiskUsed = usage.Used
		stats.DiskTotal = usage.Total
		stats.DiskPercent = usage.UsedPercent
	}

	if counters, err := net.IOCounters(false); err == nil && len(counters) > 0 {
		stats.NetSent = counters[0].BytesSent
		stats.NetRecv = counters[0].BytesRecv
	}

	if proc, err := process.NewProcess(int32(os.Getpid())); err == nil {
		if info, err := proc.MemoryInfo(); err == nil {
			stats.ProcessRSS = info.RSS
		}
	}

	stats.GoVersion = runtime.Version()
	stats.GoRoutines = runtime.NumGoroutine()
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	stats.HeapAlloc = m.HeapAlloc
	stats.NumGC = m.NumGC

	counts, err := d.store.Counts()
	if err != nil {
		return nil, fmt.Errorf("failed to count records: %w", err)
	}
	stats.Guilds = counts.Guilds
	stats.Users = counts.Users
	stats.GuildJoins = counts.GuildJoins
	stats.Reports = counts.Reports

	stats.CommandsHandled = d.metrics.Get(metrics.CommandsHandled)
	stats.EventsRouted = d.metrics.Get(metrics.EventsRouted)
	stats.BotUptime = d.metrics.Uptime()

	return stats, nil
}

func createStatsEmbed(stats *SystemStats) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title: "📊 ARIA Statistics",
		Color: 0x00BFFF,
		Fields: []*discordgo.MessageEmbedField{
			{
				Name: "🖥️ Host",
				Value: fmt.Sprintf("**Hostname:** `%s`\n**Platform:** `%s`\n**Uptime:** `%s`",
					stats.Hostname, stats.Platform, formatDuration(stats.Uptime)),
			},
			{
				Name: "⚡ CPU & Memory",
				Value: fmt.Sprintf("**Threads:** `%d`\n**CPU:** `%.1f%%` %s\n**RAM:** `%s / %s` %s\n**Disk:** `%s / %s` %s\n**Network:** `↑ %s  ↓ %s`",
					stats.CPUThreads,
					stats.CPUUsage, createProgressBar(stats.CPUUsage, 100),
					formatBytes(stats.UsedMemory), formatBytes(stats.TotalMemory),
					createProgressBar(stats.MemoryPercent, 100),
					formatBytes(stats.DiskUsed), formatBytes(stats.DiskTotal),
					createProgressBar(stats.DiskPercent, 100),
					formatBytes(stats.NetSent), formatBytes(stats.NetRecv)),
			},
			{
				Name: "🔷 Process",
				Value: fmt.Sprintf("**Go:** `%s`\n**Goroutines:** `%d`\n**RSS:** `%s`\n**Heap:** `%s`\n**GC Cycles:** `%d`",
					stats.GoVersion, stats.GoRoutines, formatBytes(stats.ProcessRSS), formatBytes(stats.HeapAlloc), stats.NumGC),
				Inline: true,
			},
			{
				Name: "🗂️ Store",
				Value: fmt.Sprintf("**Guilds:** `%d`\n**Users:** `%d`\n**Joins logged:** `%d`\n**Reports:** `%d`",
					stats.Guilds, stats.Users, stats.GuildJoins, stats.Reports),
				Inline: true,
			},
			{
				Name: "🤖 Bot",
				Value: fmt.Sprintf("**Uptime:** `%s`\n**Commands:** `%d`\n**Events:** `%d`",
					formatDuration(stats.BotUptime), stats.CommandsHandled, stats.EventsRouted),
				Inline: true,
			},
		},
		Timestamp: time.Now().Format(time.RFC3339),
	}
}

func formatBytes(bytes uint64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := uint64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.2f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

func formatDuration(d time.Duration) string {
	days := int(d.Hours() / 24)
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60

	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm", days, hours, minutes)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}

func createProgressBar(value, max float64) string {
	if max <= 0 {
		return ""
	}
	filled := int(value / max * 10)
	if filled < 0 {
		filled = 0
	}
	if filled > 10 {
		filled = 10
	}
	return "`" + strings.Repeat("█", filled) + strings.Repeat("░", 10-filled) + "`"
}

func truncateString(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
