package ui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/abelbrown/chainpulse/internal/aggregate"
	"github.com/abelbrown/chainpulse/internal/chart"
	"github.com/abelbrown/chainpulse/internal/config"
	"github.com/abelbrown/chainpulse/internal/feed"
	"github.com/abelbrown/chainpulse/internal/logging"
	"github.com/abelbrown/chainpulse/internal/news"
	"github.com/abelbrown/chainpulse/internal/otel"
)

// Status is the lifecycle of the news list.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusReady
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusFailed:
		return "failed"
	default:
		return "idle"
	}
}

const (
	headerHeight = 2
	statsHeight  = 3
	wideLayout   = 100 // columns at which chart and feed sit side by side

	errorHeadline = "Failed to load news data"
	loadingText   = "Loading sentiment data..."
	subtitle      = "Real-time sentiment analysis from crypto news"
)

// ObsConfig wires the event stream into the UI.
type ObsConfig struct {
	Logger *otel.Logger
	Ring   *otel.RingBuffer
}

// AppConfig holds the commands and settings the App is built from.
// The App never talks to the network or the store itself.
type AppConfig struct {
	// LoadNews returns a Cmd producing NewsLoaded.
	LoadNews func() tea.Cmd
	// RefreshNews returns a Cmd producing RefreshDone.
	RefreshNews func() tea.Cmd
	// SaveSnapshot returns a Cmd producing SnapshotSaved. Optional.
	SaveSnapshot func(items []news.Item) tea.Cmd

	Chart chart.Options
	Feed  feed.Options
	UI    config.UIConfig
	Obs   ObsConfig

	// Now defaults to time.Now.
	Now func() time.Time
}

type rect struct{ x, y, w, h int }

func (r rect) contains(x, y int) bool {
	return x >= r.x && x < r.x+r.w && y >= r.y && y < r.y+r.h
}

// App is the root Bubble Tea model.
// IMPORTANT: App does NOT hold the news client or the store. It receives
// data via messages.
type App struct {
	cfg AppConfig

	status     Status
	refreshing bool
	items      []news.Item
	summaries  []aggregate.CoinSummary
	stats      aggregate.Stats
	err        error
	notice     string
	snapshotID int64

	chart   *chart.Chart
	feed    feed.Model
	spinner spinner.Model
	help    help.Model

	width, height int
	ready         bool
	debugVisible  bool
	helpVisible   bool
	chartArea     rect
	feedArea      rect
}

// NewApp creates an App from cfg. With a LoadNews command the App starts
// in StatusLoading and Init issues the load.
func NewApp(cfg AppConfig) App {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	a := App{
		cfg:     cfg,
		feed:    feed.New(cfg.Feed),
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(LoadingStyle)),
		help:    help.New(),
	}
	if cfg.LoadNews != nil {
		a.status = StatusLoading
	}
	return a
}

// Init issues the initial load.
func (a App) Init() tea.Cmd {
	if a.cfg.LoadNews == nil {
		return nil
	}
	return tea.Batch(a.cfg.LoadNews(), a.spinner.Tick)
}

// Update handles messages and returns the updated model and any commands.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if otel.TraceEnabled() {
		a.emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindMsgReceived, Comp: "ui", Msg: fmt.Sprintf("%T", msg)})
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return a.handleKeyMsg(msg)

	case tea.MouseMsg:
		return a.handleMouseMsg(msg)

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true
		a.resize()
		return a, nil

	case spinner.TickMsg:
		if a.status != StatusLoading {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case NewsLoaded:
		return a.handleNewsLoaded(msg)

	case RefreshDone:
		return a.handleRefreshDone(msg)

	case SnapshotSaved:
		if msg.Err == nil {
			a.snapshotID = msg.ID
		}
		return a, nil

	case chart.FrameMsg:
		// Frames from a replaced chart are dropped here.
		if a.chart == nil || msg.Gen != a.chart.Generation() {
			return a, nil
		}
		return a, a.chart.Frame()
	}

	return a, nil
}

func (a App) handleNewsLoaded(msg NewsLoaded) (tea.Model, tea.Cmd) {
	if a.status != StatusLoading {
		return a, nil
	}
	if msg.Err != nil {
		a.status = StatusFailed
		a.err = msg.Err
		a.unmount()
		logging.Error("Initial load failed", "err", msg.Err)
		return a, nil
	}
	a.status = StatusReady
	a.err = nil
	return a, a.setItems(msg.Items)
}

func (a App) handleRefreshDone(msg RefreshDone) (tea.Model, tea.Cmd) {
	// Another refresh is still running; its own RefreshDone clears the flag.
	if errors.Is(msg.Err, news.ErrRefreshInFlight) {
		return a, nil
	}
	a.refreshing = false
	if msg.Err != nil {
		a.notice = "Refresh failed: " + news.Describe(msg.Err)
		logging.Warn("Refresh failed", "err", msg.Err)
		return a, nil
	}
	if a.status != StatusReady {
		return a, nil
	}
	return a, a.setItems(msg.Items)
}

// setItems replaces the list, remounts the chart and saves a snapshot.
func (a *App) setItems(items []news.Item) tea.Cmd {
	a.items = items
	a.summaries = aggregate.Aggregate(items)
	a.stats = aggregate.Summarize(items)
	a.feed.SetItems(items)

	cmds := []tea.Cmd{a.mount()}
	if a.cfg.SaveSnapshot != nil && len(items) > 0 {
		cmds = append(cmds, a.cfg.SaveSnapshot(items))
	}
	return tea.Batch(cmds...)
}

// mount replaces the chart. The old one is closed first so its tooltip is
// released and its pending frames are ignored.
func (a *App) mount() tea.Cmd {
	a.unmount()
	a.chart = chart.New(a.summaries, a.cfg.Chart)
	a.chart.Resize(a.chartArea.w, a.chartArea.h)
	return a.chart.Kick()
}

func (a *App) unmount() {
	if a.chart != nil {
		a.chart.Close()
		a.chart = nil
	}
}

// handleKeyMsg processes keyboard input.
func (a App) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Any key dismisses the refresh notice.
	a.notice = ""

	if key.Matches(msg, keys.Quit) {
		a.unmount()
		return a, tea.Quit
	}
	if key.Matches(msg, keys.Debug) {
		a.debugVisible = !a.debugVisible
		return a, nil
	}
	if a.debugVisible {
		return a, nil
	}
	if key.Matches(msg, keys.Help) {
		a.helpVisible = !a.helpVisible
		return a, nil
	}

	if a.status == StatusFailed {
		if key.Matches(msg, keys.Refresh) {
			return a.reload()
		}
		return a, nil
	}

	switch {
	case key.Matches(msg, keys.Refresh):
		return a.refresh()
	case key.Matches(msg, keys.Focus):
		return a, a.chartCmd(func(c *chart.Chart) tea.Cmd { return c.FocusNext(1) })
	case key.Matches(msg, keys.FocusRev):
		return a, a.chartCmd(func(c *chart.Chart) tea.Cmd { return c.FocusNext(-1) })
	case key.Matches(msg, keys.Click):
		return a, a.chartCmd(func(c *chart.Chart) tea.Cmd { return c.Click(c.Hovered()) })
	case key.Matches(msg, keys.Blur):
		return a, a.chartCmd(func(c *chart.Chart) tea.Cmd { return c.Unhover() })
	}

	var cmd tea.Cmd
	a.feed, cmd = a.feed.Update(msg)
	return a, cmd
}

func (a App) chartCmd(fn func(*chart.Chart) tea.Cmd) tea.Cmd {
	if a.chart == nil {
		return nil
	}
	return fn(a.chart)
}

// refresh starts a refresh unless one is running or the list is not loaded.
func (a App) refresh() (tea.Model, tea.Cmd) {
	if a.status != StatusReady || a.refreshing || a.cfg.RefreshNews == nil {
		a.emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindRefreshSkipped, Comp: "ui", Msg: a.status.String()})
		return a, nil
	}
	a.refreshing = true
	return a, a.cfg.RefreshNews()
}

// reload throws the failed App away and starts over from a clean one, as
// a page reload would.
func (a App) reload() (tea.Model, tea.Cmd) {
	a.unmount()
	fresh := NewApp(a.cfg)
	fresh.debugVisible = a.debugVisible
	if a.ready {
		m, _ := fresh.Update(tea.WindowSizeMsg{Width: a.width, Height: a.height})
		fresh = m.(App)
	}
	return fresh, fresh.Init()
}

func (a App) handleMouseMsg(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if a.debugVisible || a.helpVisible || a.status != StatusReady {
		return a, nil
	}

	if a.feedArea.contains(msg.X, msg.Y) {
		var cmd tea.Cmd
		a.feed, cmd = a.feed.Update(msg)
		return a, cmd
	}
	if a.chart == nil {
		return a, nil
	}
	if !a.chartArea.contains(msg.X, msg.Y) {
		if a.chart.Hovered() >= 0 {
			return a, a.chart.Unhover()
		}
		return a, nil
	}

	col, row := msg.X-a.chartArea.x, msg.Y-a.chartArea.y
	switch {
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		return a, tea.Batch(a.chart.HoverAt(col, row), a.chart.ClickAt(col, row))
	case msg.Action == tea.MouseActionMotion:
		return a, a.chart.HoverAt(col, row)
	}
	return a, nil
}

// resize lays out the panels for the current terminal size.
func (a *App) resize() {
	top := headerHeight
	if a.cfg.UI.ShowStats {
		top += statsHeight
	}
	bodyH := max(a.height-top-1, 0)

	chartTitle := 1
	if a.cfg.UI.ShowLegend {
		chartTitle++
	}

	if a.width >= wideLayout {
		chartW := a.width * 3 / 5
		a.chartArea = rect{x: 0, y: top + chartTitle, w: chartW, h: max(bodyH-chartTitle, 0)}
		a.feedArea = rect{x: chartW + 1, y: top, w: max(a.width-chartW-1, 0), h: bodyH}
	} else {
		chartH := bodyH / 2
		a.chartArea = rect{x: 0, y: top + chartTitle, w: a.width, h: max(chartH-chartTitle, 0)}
		a.feedArea = rect{x: 0, y: top + chartH, w: a.width, h: bodyH - chartH}
	}

	a.feed.SetSize(a.feedArea.w, a.feedArea.h)
	a.help.Width = a.width
	if a.chart != nil {
		a.chart.Resize(a.chartArea.w, a.chartArea.h)
	}
}

func (a App) emit(e otel.Event) {
	if a.cfg.Obs.Logger == nil {
		return
	}
	a.cfg.Obs.Logger.Emit(e)
}

// View renders the UI.
func (a App) View() string {
	if !a.ready {
		return "Loading..."
	}

	if a.debugVisible {
		overlay := debugOverlay(a.cfg.Obs.Ring, a.width, a.height-1, a.cfg.Now())
		if overlay == "" {
			overlay = HelpStyle.Render("No event buffer attached.")
		}
		return lipgloss.Place(a.width, a.height-1, lipgloss.Center, lipgloss.Center, overlay) +
			"\n" + debugStatusBar(a.width)
	}

	if a.status == StatusFailed {
		return a.renderError()
	}

	parts := []string{a.renderHeader()}
	if a.cfg.UI.ShowStats {
		parts = append(parts, a.renderStats())
	}
	parts = append(parts, a.renderBody(), a.renderStatusBar())
	return strings.Join(parts, "\n")
}

func (a App) renderHeader() string {
	label, style := "Refresh Data", Button
	if a.refreshing {
		label, style = "Refreshing...", ButtonDisabled
	} else if a.status != StatusReady {
		style = ButtonDisabled
	}
	title := Title.Render("ChainPulse")
	button := style.Render(label)
	gap := max(a.width-lipgloss.Width(title)-lipgloss.Width(button), 1)
	return title + strings.Repeat(" ", gap) + button + "\n" + Subtitle.Render(subtitle)
}

func (a App) renderStats() string {
	box := func(label string, n int, value lipgloss.Style) string {
		return StatBox.Render(StatLabel.Render(label) + " " + value.Render(fmt.Sprint(n)))
	}
	if a.status != StatusReady {
		return strings.Repeat("\n", statsHeight-1)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		box("Bullish Articles", a.stats.Bullish, bullishText),
		" ",
		box("Bearish Articles", a.stats.Bearish, bearishText),
		" ",
		box("Total Articles", a.stats.Total, Title),
	)
}

func (a App) bodyHeight() int {
	h := a.height - headerHeight - 1
	if a.cfg.UI.ShowStats {
		h -= statsHeight
	}
	return max(h, 0)
}

func (a App) helpKeys() helpKeys {
	return helpKeys{keyMap: keys, page: a.feed.KeyMap()}
}

func (a App) renderBody() string {
	h := a.bodyHeight()
	if h == 0 {
		return ""
	}
	fit := lipgloss.NewStyle().Width(a.width).Height(h).MaxHeight(h)

	if a.helpVisible {
		return fit.Render(lipgloss.Place(a.width, h, lipgloss.Center, lipgloss.Center,
			HelpStyle.Render(a.help.FullHelpView(a.helpKeys().FullHelp()))))
	}
	if a.status == StatusLoading {
		line := a.spinner.View() + " " + LoadingStyle.Render(loadingText)
		return fit.Render(lipgloss.Place(a.width, h, lipgloss.Center, lipgloss.Center, line))
	}

	chartPanel := a.renderChartPanel()
	feedView := a.feed.View()
	var body string
	if a.width >= wideLayout {
		body = lipgloss.JoinHorizontal(lipgloss.Top, chartPanel, " ", feedView)
	} else {
		body = lipgloss.JoinVertical(lipgloss.Left, chartPanel, feedView)
	}
	return fit.Render(body)
}

func (a App) renderChartPanel() string {
	lines := []string{PanelTitle.Render("News Sentiment Bubbles")}
	if a.cfg.UI.ShowLegend {
		lines = append(lines, a.renderLegend())
	}
	var canvas string
	if a.chart != nil {
		canvas = a.chart.View()
	} else if a.chartArea.w > 0 && a.chartArea.h > 0 {
		canvas = lipgloss.Place(a.chartArea.w, a.chartArea.h, lipgloss.Center, lipgloss.Center, chart.EmptyMessage)
	}
	lines = append(lines, canvas)
	return lipgloss.NewStyle().Width(a.chartArea.w).Render(strings.Join(lines, "\n"))
}

func (a App) renderLegend() string {
	pal := a.cfg.Chart.Palette
	dot := func(score float64, label string) string {
		return lipgloss.NewStyle().Foreground(lipgloss.Color(pal.Hex(score))).Render("●") +
			" " + StatusBarText.Render(label)
	}
	return strings.Join([]string{
		dot(1, "Bullish"),
		dot(0, "Neutral"),
		dot(-1, "Bearish"),
		StatusBarText.Render("Size = News Volume"),
	}, "   ")
}

func (a App) renderStatusBar() string {
	var left string
	switch {
	case a.notice != "":
		left = NoticeStyle.Render(a.notice)
	case a.status == StatusLoading:
		left = "Loading..."
	case a.refreshing:
		left = "Refreshing..."
	case a.status == StatusReady:
		left = fmt.Sprintf("%d coins · %d articles", len(a.summaries), len(a.items))
		if a.feed.TotalPages() > 1 {
			left += fmt.Sprintf(" · page %d/%d", a.feed.Page()+1, a.feed.TotalPages())
		}
	}

	inner := max(a.width-2, 0)
	right := a.help.ShortHelpView(a.helpKeys().ShortHelp())
	room := inner - lipgloss.Width(left) - 1
	if room < lipgloss.Width(right) {
		right = ansi.Truncate(right, max(room, 0), "")
	}
	padding := max(inner-lipgloss.Width(left)-lipgloss.Width(right), 0)
	return StatusBar.Width(a.width).MaxWidth(a.width).Render(left + strings.Repeat(" ", padding) + right)
}

func (a App) renderError() string {
	detail := ""
	if a.err != nil {
		detail = news.Describe(a.err)
	}
	content := lipgloss.JoinVertical(lipgloss.Center,
		ErrorStyle.Render(errorHeadline),
		Subtitle.Render(detail),
		"",
		RetryButton.Render("Retry"),
		HelpStyle.Render("press r to retry · q to quit"),
	)
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, content)
}

// Status returns the load status (for testing).
func (a App) Status() Status { return a.status }

// Refreshing reports whether a refresh is in flight (for testing).
func (a App) Refreshing() bool { return a.refreshing }

// Items returns the current list, newest first (for testing).
func (a App) Items() []news.Item { return a.items }

// Summaries returns the per-coin summaries behind the chart (for testing).
func (a App) Summaries() []aggregate.CoinSummary { return a.summaries }

// Chart returns the mounted chart, or nil (for testing).
func (a App) Chart() *chart.Chart { return a.chart }

// Err returns the initial-load error, if any (for testing).
func (a App) Err() error { return a.err }

// Notice returns the transient status notice (for testing).
func (a App) Notice() string { return a.notice }
