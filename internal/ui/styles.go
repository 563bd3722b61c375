package ui

import "github.com/charmbracelet/lipgloss"

// Colors used in the application.
var (
	colorPrimary   = lipgloss.Color("62")  // Purple
	colorSecondary = lipgloss.Color("241") // Gray
	colorMuted     = lipgloss.Color("240") // Darker gray
	colorHighlight = lipgloss.Color("212") // Pink
	colorBullish   = lipgloss.Color("#22c55e")
	colorBearish   = lipgloss.Color("#ef4444")
	colorNeutral   = lipgloss.Color("#9ca3af")
)

// Title style for the "ChainPulse" heading.
var Title = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("255"))

// Subtitle style for the line under the heading.
var Subtitle = lipgloss.NewStyle().
	Foreground(colorSecondary)

// Button style for the refresh control.
var Button = lipgloss.NewStyle().
	Foreground(lipgloss.Color("255")).
	Background(colorPrimary).
	Padding(0, 2)

// ButtonDisabled style for the refresh control while busy.
var ButtonDisabled = lipgloss.NewStyle().
	Foreground(colorSecondary).
	Background(lipgloss.Color("236")).
	Padding(0, 2)

// RetryButton style for the error view's reload control.
var RetryButton = lipgloss.NewStyle().
	Foreground(lipgloss.Color("255")).
	Background(lipgloss.Color("#dc2626")).
	Padding(0, 2)

// PanelTitle style for "News Sentiment Bubbles".
var PanelTitle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("255"))

// StatBox style for one cell of the stats strip.
var StatBox = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("238")).
	Padding(0, 1)

// StatLabel style for the caption inside a stat box.
var StatLabel = lipgloss.NewStyle().
	Foreground(colorSecondary)

// StatusBar style for the bottom status bar.
var StatusBar = lipgloss.NewStyle().
	Foreground(lipgloss.Color("255")).
	Background(lipgloss.Color("236")).
	Padding(0, 1)

// StatusBarKey style for key hints in status bar.
var StatusBarKey = lipgloss.NewStyle().
	Foreground(colorHighlight).
	Bold(true)

// StatusBarText style for descriptive text in status bar.
var StatusBarText = lipgloss.NewStyle().
	Foreground(colorSecondary)

// NoticeStyle for the transient refresh-failure notice.
var NoticeStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("#fbbf24")).
	Bold(true)

// ErrorStyle for displaying errors.
var ErrorStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("#f87171")).
	Bold(true).
	Padding(0, 1)

// HelpStyle for help text.
var HelpStyle = lipgloss.NewStyle().
	Foreground(colorMuted).
	Padding(0, 1)

// LoadingStyle for the spinner line.
var LoadingStyle = lipgloss.NewStyle().
	Foreground(colorNeutral)

// DebugPanel style for the debug overlay container.
var DebugPanel = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(colorPrimary).
	Padding(1, 2)

// DebugHeaderStyle for section headers inside the debug overlay.
var DebugHeaderStyle = lipgloss.NewStyle().
	Foreground(colorHighlight).
	Bold(true)

var (
	bullishText = lipgloss.NewStyle().Foreground(colorBullish).Bold(true)
	bearishText = lipgloss.NewStyle().Foreground(colorBearish).Bold(true)
	neutralText = lipgloss.NewStyle().Foreground(colorNeutral).Bold(true)
)
