// Package feed renders the raw news list next to the bubble chart.
//
// The list is either split into pages (bubbles/paginator) with a sliding
// window of page numbers, or shown whole in a scrolling viewport. Entries
// are labeled with sentiment.Classify, the same classification the chart
// tooltip uses.
package feed

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/paginator"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/dustin/go-humanize"
	"golang.org/x/net/html"

	"github.com/abelbrown/chainpulse/internal/news"
	"github.com/abelbrown/chainpulse/internal/sentiment"
)

// EmptyMessage is shown when the list has no articles.
const EmptyMessage = "No news articles available"

// WindowSize is the most page numbers the pager shows at once.
const WindowSize = 5

// DateLayout is the absolute part of an entry's timestamp.
const DateLayout = "Jan 2, 2006, 3:04 PM"

const headerHeight = 2

// unscored stands in for the score of an article the backend sent without one.
const unscored = "n/a"

// Options configures a Model.
type Options struct {
	Paginate bool
	PageSize int
	// Now and Location default to time.Now and time.Local.
	Now      func() time.Time
	Location *time.Location
}

// KeyMap holds the page/scroll bindings.
type KeyMap struct {
	Prev key.Binding
	Next key.Binding
}

// DefaultKeyMap pages with left/right and scrolls with pgup/pgdown.
var DefaultKeyMap = KeyMap{
	Prev: key.NewBinding(key.WithKeys("left", "h", "pgup"), key.WithHelp("←", "prev page")),
	Next: key.NewBinding(key.WithKeys("right", "l", "pgdown"), key.WithHelp("→", "next page")),
}

// Model is the news list.
type Model struct {
	opts   Options
	keys   KeyMap
	items  []news.Item
	pager  paginator.Model
	scroll viewport.Model
	width  int
	height int
}

// New returns an empty list.
func New(opts Options) Model {
	if opts.PageSize <= 0 {
		opts.PageSize = 5
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	p := paginator.New()
	p.PerPage = opts.PageSize
	p.TotalPages = 1
	return Model{
		opts:   opts,
		keys:   DefaultKeyMap,
		pager:  p,
		scroll: viewport.New(0, 0),
	}
}

// SetItems replaces the list and returns to the first page.
func (m *Model) SetItems(items []news.Item) {
	m.items = items
	m.pager.Page = 0
	m.pager.TotalPages = 1
	m.pager.SetTotalPages(len(items))
	m.scroll.SetContent(m.renderAll())
	m.scroll.GotoTop()
}

// SetSize sets the area the list draws into.
func (m *Model) SetSize(width, height int) {
	m.width, m.height = width, height
	m.scroll.Width = width
	m.scroll.Height = max(height-headerHeight, 0)
	m.scroll.SetContent(m.renderAll())
}

// Len is the number of articles.
func (m Model) Len() int { return len(m.items) }

// Page is the current 0-based page. Always 0 when not paginated.
func (m Model) Page() int {
	if !m.opts.Paginate {
		return 0
	}
	return m.pager.Page
}

// TotalPages is at least 1, even for an empty list.
func (m Model) TotalPages() int {
	if !m.opts.Paginate {
		return 1
	}
	return m.pager.TotalPages
}

// Visible returns the articles on the current page, or all of them when
// not paginated.
func (m Model) Visible() []news.Item {
	if !m.opts.Paginate {
		return m.items
	}
	start, end := m.pager.GetSliceBounds(len(m.items))
	return m.items[start:end]
}

// KeyMap returns the active bindings, for help rendering.
func (m Model) KeyMap() KeyMap { return m.keys }

// Update pages on key presses in paginated mode and otherwise forwards
// the message to the scrolling viewport.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if !m.opts.Paginate {
		var cmd tea.Cmd
		m.scroll, cmd = m.scroll.Update(msg)
		return m, cmd
	}
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.Prev):
			m.pager.PrevPage()
		case key.Matches(msg, m.keys.Next):
			m.pager.NextPage()
		}
	}
	return m, nil
}

// View renders the header, the entries and, when paginated, the pager.
func (m Model) View() string {
	if m.width <= 0 || m.height <= 0 {
		return ""
	}
	header := m.renderHeader()
	if len(m.items) == 0 {
		body := lipgloss.Place(m.width, max(m.height-headerHeight, 1), lipgloss.Center, lipgloss.Center,
			mutedStyle.Render(EmptyMessage))
		return header + "\n" + body
	}
	if !m.opts.Paginate {
		return header + "\n" + m.scroll.View()
	}

	var entries []string
	for _, item := range m.Visible() {
		entries = append(entries, m.renderEntry(item))
	}
	body := strings.Join(entries, "\n\n")
	bodyHeight := max(m.height-headerHeight-2, 1)
	body = lipgloss.NewStyle().Height(bodyHeight).MaxHeight(bodyHeight).Render(body)
	return header + "\n" + body + "\n\n" + m.renderPager()
}

func (m Model) renderHeader() string {
	title := headerStyle.Render("Latest News")
	count := mutedStyle.Render(fmt.Sprintf("%d total articles", len(m.items)))
	gap := max(m.width-lipgloss.Width(title)-lipgloss.Width(count), 1)
	return title + strings.Repeat(" ", gap) + count + "\n" + ruleStyle.Render(strings.Repeat("─", m.width))
}

func (m Model) renderAll() string {
	if m.width <= 0 {
		return ""
	}
	entries := make([]string, 0, len(m.items))
	for _, item := range m.items {
		entries = append(entries, m.renderEntry(item))
	}
	return strings.Join(entries, "\n\n")
}

// renderEntry draws one article: badge and label, title (two lines at
// most), description (one line), then timestamp and score.
func (m Model) renderEntry(item news.Item) string {
	label := sentiment.Classify(item.SentimentScore)
	w := max(m.width, 1)

	lines := []string{
		badgeStyle.Render(item.CoinTicker) + " " +
			labelStyle(label).Render(label.Emoji()+" "+label.String()),
	}
	lines = append(lines, titleStyle.Render(Clamp(item.Title, w, 2)))
	if d := cleanText(item.Description); d != "" {
		lines = append(lines, descStyle.Render(Clamp(d, w, 1)))
	}

	when := m.formatTime(item)
	score := mutedStyle.Render(unscored)
	if item.Scored() {
		score = scoreStyle(item.SentimentScore).Render(sentiment.Signed(item.SentimentScore, 3))
	}
	gap := w - lipgloss.Width(when) - lipgloss.Width(score)
	if gap < 1 {
		when = ansi.Truncate(when, max(w-lipgloss.Width(score)-1, 0), "…")
		gap = 1
	}
	lines = append(lines, timeStyle.Render(when)+strings.Repeat(" ", gap)+score)
	return strings.Join(lines, "\n")
}

// formatTime renders "Jan 2, 2006, 3:04 PM · 3 hours ago". Unparseable
// timestamps are shown verbatim.
func (m Model) formatTime(item news.Item) string {
	t, ok := item.Published()
	if !ok {
		return item.PublishedAt
	}
	return FormatTime(t, m.opts.Now(), m.opts.Location)
}

// FormatTime renders t in loc with its age relative to now.
func FormatTime(t, now time.Time, loc *time.Location) string {
	return t.In(loc).Format(DateLayout) + " · " + humanize.RelTime(t, now, "ago", "from now")
}

func (m Model) renderPager() string {
	var parts []string
	if m.pager.OnFirstPage() {
		parts = append(parts, disabledStyle.Render("‹ Prev"))
	} else {
		parts = append(parts, pagerStyle.Render("‹ Prev"))
	}
	for _, p := range PageWindow(m.pager.Page, m.pager.TotalPages, WindowSize) {
		n := fmt.Sprintf(" %d ", p+1)
		if p == m.pager.Page {
			parts = append(parts, currentPageStyle.Render(n))
		} else {
			parts = append(parts, pagerStyle.Render(n))
		}
	}
	if m.pager.OnLastPage() {
		parts = append(parts, disabledStyle.Render("Next ›"))
	} else {
		parts = append(parts, pagerStyle.Render("Next ›"))
	}
	return lipgloss.PlaceHorizontal(m.width, lipgloss.Center, strings.Join(parts, " "))
}

// PageWindow returns at most size 0-based page numbers around current,
// shifted so the window never runs past either end.
func PageWindow(current, total, size int) []int {
	if total <= 0 || size <= 0 {
		return nil
	}
	current = min(max(current, 0), total-1)
	start := max(0, current-size/2)
	end := min(total, start+size)
	start = max(0, end-size)

	pages := make([]int, 0, end-start)
	for p := start; p < end; p++ {
		pages = append(pages, p)
	}
	return pages
}

// Clamp wraps s to width and keeps at most n lines, ending the last kept
// line with an ellipsis when text was cut.
func Clamp(s string, width, n int) string {
	if width <= 0 || n <= 0 {
		return ""
	}
	lines := strings.Split(ansi.Wrap(s, width, ""), "\n")
	if len(lines) <= n {
		return strings.Join(lines, "\n")
	}
	lines = lines[:n]
	last := strings.TrimRight(lines[n-1], " ")
	if ansi.StringWidth(last)+1 > width {
		last = ansi.Truncate(last, width-1, "")
	}
	lines[n-1] = last + "…"
	return strings.Join(lines, "\n")
}

// cleanText reduces an HTML-ish description to one line of plain text.
// Tags are dropped, entities decoded, script and style bodies skipped, and
// a bare "<" or ">" in prose is kept.
func cleanText(s string) string {
	z := html.NewTokenizer(strings.NewReader(s))
	var b strings.Builder
	skip := false
	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.Join(strings.Fields(b.String()), " ")
		case html.TextToken:
			if !skip {
				b.Write(z.Text())
			}
		case html.StartTagToken:
			name, _ := z.TagName()
			skip = string(name) == "script" || string(name) == "style"
			b.WriteByte(' ')
		case html.EndTagToken, html.SelfClosingTagToken:
			skip = false
			b.WriteByte(' ')
		}
	}
}
