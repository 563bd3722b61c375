package feed

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/abelbrown/chainpulse/internal/sentiment"
)

var (
	colorBullish = lipgloss.Color("#22c55e")
	colorBearish = lipgloss.Color("#ef4444")
	colorNeutral = lipgloss.Color("#9ca3af")
	colorMuted   = lipgloss.Color("#6b7280")
	colorText    = lipgloss.Color("#f3f4f6")
)

var headerStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorText)

var mutedStyle = lipgloss.NewStyle().
	Foreground(colorMuted)

var ruleStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("#374151"))

// badgeStyle is the ticker chip at the start of each entry.
var badgeStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("#0d1117")).
	Background(lipgloss.Color("#58a6ff")).
	Padding(0, 1)

var titleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorText)

var descStyle = lipgloss.NewStyle().
	Foreground(colorNeutral)

var timeStyle = lipgloss.NewStyle().
	Foreground(colorMuted)

var pagerStyle = lipgloss.NewStyle().
	Foreground(colorText)

var disabledStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("#4b5563"))

var currentPageStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("#ffffff")).
	Background(lipgloss.Color("62"))

var (
	bullishStyle = lipgloss.NewStyle().Foreground(colorBullish)
	bearishStyle = lipgloss.NewStyle().Foreground(colorBearish)
	neutralStyle = lipgloss.NewStyle().Foreground(colorNeutral)
)

// scoreStyle colors by sign alone; a score of 0.05 is green even though
// it classifies as Neutral.
func scoreStyle(score float64) lipgloss.Style {
	switch {
	case score > 0:
		return bullishStyle
	case score < 0:
		return bearishStyle
	default:
		return neutralStyle
	}
}

func labelStyle(l sentiment.Label) lipgloss.Style {
	switch l {
	case sentiment.Bullish:
		return bullishStyle
	case sentiment.Bearish:
		return bearishStyle
	default:
		return neutralStyle
	}
}
