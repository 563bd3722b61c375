package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/abelbrown/chainpulse/internal/otel"
)

// debugPanelChrome is the number of terminal lines consumed by DebugPanel's
// border (top + bottom = 2) and vertical padding (top + bottom = 2).
// Must be updated if DebugPanel style changes.
const debugPanelChrome = 4

// debugOverlay renders the debug panel showing dashboard stats and recent
// events. Returns empty string if ring is nil.
func debugOverlay(ring *otel.RingBuffer, width, height int, now time.Time) string {
	if ring == nil {
		return ""
	}

	stats := ring.Stats()
	recent := ring.Last(20)

	var lines []string
	lines = append(lines, DebugHeaderStyle.Render("Dashboard Stats"))
	lines = append(lines, fmt.Sprintf("  Fetches:    %d complete, %d errors",
		stats[otel.KindFetchComplete], stats[otel.KindFetchError]))
	lines = append(lines, fmt.Sprintf("  Refreshes:  %d complete, %d errors, %d skipped",
		stats[otel.KindRefreshComplete], stats[otel.KindRefreshError], stats[otel.KindRefreshSkipped]))
	lines = append(lines, fmt.Sprintf("  Layouts:    %d started, %d settled",
		stats[otel.KindSimStart], stats[otel.KindSimSettled]))
	lines = append(lines, fmt.Sprintf("  Chart:      %d hovers, %d clicks",
		stats[otel.KindChartHover], stats[otel.KindChartClick]))
	lines = append(lines, fmt.Sprintf("  Snapshots:  %d saved, %d errors",
		stats[otel.KindStoreSave], stats[otel.KindStoreError]))
	if e, ok := ring.LastOf(otel.KindBreakerChange); ok {
		lines = append(lines, fmt.Sprintf("  Breaker:    %s (%s ago)", e.Msg, formatAge(now.Sub(e.Time))))
	}
	lines = append(lines, fmt.Sprintf("  Buffer:     %d / %d events, %d errors", ring.Len(), ring.Cap(), ring.Errors()))
	lines = append(lines, "")

	lines = append(lines, DebugHeaderStyle.Render("Recent Events"))
	for _, e := range recent {
		line := fmt.Sprintf("  %6s  %-18s", formatAge(now.Sub(e.Time)), string(e.Kind))
		if e.Ticker != "" {
			line += "  " + e.Ticker
		}
		if e.Msg != "" {
			line += "  " + truncateRunes(e.Msg, 40)
		}
		if e.Err != "" {
			line += "  ERR:" + truncateRunes(e.Err, 30)
		}
		if e.Gen != 0 {
			line += fmt.Sprintf("  gen:%d", e.Gen)
		}
		lines = append(lines, line)
	}

	// Truncate to fit terminal height (subtract chrome added by DebugPanel border/padding)
	maxHeight := height - debugPanelChrome
	if maxHeight < 1 {
		maxHeight = 1
	}
	if len(lines) > maxHeight {
		lines = lines[:maxHeight]
	}

	panelWidth := 76
	if panelWidth > width-4 {
		panelWidth = width - 4
	}
	if panelWidth < 20 {
		panelWidth = 20
	}

	content := strings.Join(lines, "\n")
	return DebugPanel.Width(panelWidth).Render(content)
}

// formatAge formats a duration as a compact human string.
// Handles negative durations from clock skew by clamping to "0ms".
func formatAge(d time.Duration) string {
	if d < 0 {
		return "0ms"
	}
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	default:
		return fmt.Sprintf("%.0fm", d.Minutes())
	}
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// debugStatusBar renders the status bar for the debug overlay.
func debugStatusBar(width int) string {
	keys := StatusBarKey.Render("D") + StatusBarText.Render(":close")
	return StatusBar.Width(width).Render("  [DEBUG]  " + keys)
}
