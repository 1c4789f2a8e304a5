package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/bims2021/AI-Autocode-Completion/pkg/cache"
	"github.com/bims2021/AI-Autocode-Completion/pkg/stats"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#797593", Dark: "#908caa"})

	valueStyle = lipgloss.NewStyle().Bold(true)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.AdaptiveColor{Light: "#907aa9", Dark: "#c4a7e7"}).
			Padding(0, 2)
)

func row(label string, value any) string {
	return labelStyle.Render(fmt.Sprintf("%-16s", label)) + valueStyle.Render(fmt.Sprint(value))
}

// RenderStats formats a statistics snapshot for terminal display.
func RenderStats(snap stats.Snapshot, cacheSnap cache.Stats) string {
	var lines []string
	lines = append(lines, titleStyle.Render("Completion statistics"))
	lines = append(lines, "")
	lines = append(lines, row("session start", snap.SessionStart.Format("15:04:05")))
	lines = append(lines, row("completions", snap.Totals.Completions))
	lines = append(lines, row("suggestions", snap.Totals.Suggestions))
	lines = append(lines, row("acceptances", snap.Totals.Acceptances))
	lines = append(lines, row("cache hits", snap.Totals.CacheHits))
	lines = append(lines, row("avg latency", fmt.Sprintf("%.1fms", snap.AvgLatencyMs)))
	lines = append(lines, row("cache", fmt.Sprintf("%d/%d entries", cacheSnap.Size, cacheSnap.Capacity)))

	if len(snap.ByLanguage) > 0 {
		lines = append(lines, "")
		lines = append(lines, titleStyle.Render("By language"))
		for _, lang := range sortedKeys(snap.ByLanguage) {
			c := snap.ByLanguage[lang]
			lines = append(lines, row(lang, fmt.Sprintf("%d completions, %d accepted", c.Completions, c.Acceptances)))
		}
	}
	if len(snap.ErrorsByKind) > 0 {
		lines = append(lines, "")
		lines = append(lines, titleStyle.Render("Errors"))
		kinds := make([]string, 0, len(snap.ErrorsByKind))
		for kind := range snap.ErrorsByKind {
			kinds = append(kinds, kind)
		}
		sort.Strings(kinds)
		for _, kind := range kinds {
			lines = append(lines, row(kind, snap.ErrorsByKind[kind]))
		}
	}
	return boxStyle.Render(strings.Join(lines, "\n"))
}

func sortedKeys(m map[string]stats.Counters) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
