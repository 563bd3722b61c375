package feed

import (
	"fmt"
	"math"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abelbrown/chainpulse/internal/news"
)

var testNow = time.Date(2024, 3, 15, 18, 0, 0, 0, time.UTC)

func makeItems(n int) []news.Item {
	items := make([]news.Item, n)
	for i := range items {
		items[i] = news.Item{
			ID:             i + 1,
			Title:          fmt.Sprintf("Headline %d", i+1),
			CoinTicker:     "BTC",
			PublishedAt:    testNow.Add(-time.Duration(i+1) * time.Hour).Format("2006-01-02T15:04:05"),
			SentimentScore: 0.5,
		}
	}
	return items
}

func newModel(paginate bool, items []news.Item) Model {
	m := New(Options{
		Paginate: paginate,
		PageSize: 5,
		Now:      func() time.Time { return testNow },
		Location: time.UTC,
	})
	m.SetSize(80, 60)
	m.SetItems(items)
	return m
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestPageWindow(t *testing.T) {
	tests := []struct {
		name           string
		current, total int
		want           []int
	}{
		{"single page", 0, 1, []int{0}},
		{"fewer than window", 1, 3, []int{0, 1, 2}},
		{"start", 0, 10, []int{0, 1, 2, 3, 4}},
		{"middle", 5, 10, []int{3, 4, 5, 6, 7}},
		{"near end", 8, 10, []int{5, 6, 7, 8, 9}},
		{"end", 9, 10, []int{5, 6, 7, 8, 9}},
		{"out of range clamps", 42, 10, []int{5, 6, 7, 8, 9}},
		{"no pages", 0, 0, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PageWindow(tt.current, tt.total, WindowSize)
			assert.Equal(t, tt.want, got)
			assert.LessOrEqual(t, len(got), WindowSize)
		})
	}
}

func TestPaginationBounds(t *testing.T) {
	m := newModel(true, makeItems(12))
	assert.Equal(t, 3, m.TotalPages())
	assert.Equal(t, 0, m.Page())
	require.Len(t, m.Visible(), 5)
	assert.Equal(t, 1, m.Visible()[0].ID)

	m, _ = m.Update(keyMsg("left"))
	assert.Equal(t, 0, m.Page(), "prev is disabled on the first page")

	m, _ = m.Update(keyMsg("right"))
	m, _ = m.Update(keyMsg("l"))
	assert.Equal(t, 2, m.Page())
	require.Len(t, m.Visible(), 2)
	assert.Equal(t, 11, m.Visible()[0].ID)

	m, _ = m.Update(keyMsg("right"))
	assert.Equal(t, 2, m.Page(), "next is disabled on the last page")

	m, _ = m.Update(keyMsg("h"))
	assert.Equal(t, 1, m.Page())
}

func TestSetItemsResetsPage(t *testing.T) {
	m := newModel(true, makeItems(12))
	m, _ = m.Update(keyMsg("right"))
	require.Equal(t, 1, m.Page())

	m.SetItems(makeItems(3))
	assert.Equal(t, 0, m.Page())
	assert.Equal(t, 1, m.TotalPages())
}

func TestEmptyList(t *testing.T) {
	for _, paginate := range []bool{true, false} {
		m := newModel(paginate, nil)
		assert.Equal(t, 1, m.TotalPages())
		assert.Empty(t, m.Visible())
		out := ansi.Strip(m.View())
		assert.Contains(t, out, EmptyMessage)
		assert.Contains(t, out, "0 total articles")
	}
}

func TestViewPaginated(t *testing.T) {
	m := newModel(true, makeItems(12))
	out := ansi.Strip(m.View())

	assert.Contains(t, out, "Latest News")
	assert.Contains(t, out, "12 total articles")
	assert.Contains(t, out, "Headline 1")
	assert.Contains(t, out, "Headline 5")
	assert.NotContains(t, out, "Headline 6")
	assert.Contains(t, out, "‹ Prev")
	assert.Contains(t, out, "Next ›")
	assert.Contains(t, out, " 3 ")
	assert.Contains(t, out, "🚀 Bullish")
	assert.Contains(t, out, "+0.500")
	assert.Contains(t, out, "Mar 15, 2024, 5:00 PM · 1 hour ago")
}

func TestViewUnpaginatedShowsAll(t *testing.T) {
	m := New(Options{Now: func() time.Time { return testNow }, Location: time.UTC})
	m.SetSize(80, 200)
	m.SetItems(makeItems(12))

	out := ansi.Strip(m.View())
	assert.Contains(t, out, "Headline 12")
	assert.NotContains(t, out, "‹ Prev")
	assert.Equal(t, 0, m.Page())
	assert.Len(t, m.Visible(), 12)
}

func TestEntryLabelsAndScores(t *testing.T) {
	m := newModel(true, []news.Item{
		{ID: 1, Title: "Up", CoinTicker: "ETH", SentimentScore: 0.25},
		{ID: 2, Title: "Flat", CoinTicker: "SOL", SentimentScore: 0.1},
		{ID: 3, Title: "Down", CoinTicker: "ADA", SentimentScore: -0.1234},
	})
	out := ansi.Strip(m.View())
	assert.Contains(t, out, "ETH")
	assert.Contains(t, out, "🚀 Bullish")
	assert.Contains(t, out, "Neutral")
	assert.Contains(t, out, "📉 Bearish")
	assert.Contains(t, out, "+0.250")
	assert.Contains(t, out, "+0.100")
	assert.Contains(t, out, "-0.123")
}

func TestUnscoredEntryShowsPlaceholder(t *testing.T) {
	m := newModel(true, []news.Item{{ID: 1, Title: "No score yet", CoinTicker: "BTC", SentimentScore: math.NaN()}})
	out := ansi.Strip(m.View())
	assert.Contains(t, out, "n/a")
	assert.NotContains(t, out, "NaN")
}

func TestUnparseableTimestampShownVerbatim(t *testing.T) {
	m := newModel(true, []news.Item{{ID: 1, Title: "x", CoinTicker: "BTC", PublishedAt: "yesterday-ish"}})
	assert.Contains(t, ansi.Strip(m.View()), "yesterday-ish")
}

func TestFormatTime(t *testing.T) {
	ts := time.Date(2024, 1, 2, 9, 5, 0, 0, time.UTC)
	assert.Equal(t, "Jan 2, 2024, 9:05 AM · 3 days ago", FormatTime(ts, ts.Add(72*time.Hour), time.UTC))
}

func TestClamp(t *testing.T) {
	assert.Equal(t, "short", Clamp("short", 20, 2))

	got := Clamp("one two three four five six seven", 10, 2)
	lines := strings.Split(got, "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasSuffix(lines[1], "…"))
	for _, l := range lines {
		assert.LessOrEqual(t, ansi.StringWidth(l), 10)
	}

	assert.Equal(t, "", Clamp("anything", 0, 2))
}

func TestCleanText(t *testing.T) {
	assert.Equal(t, "Bitcoin rallies again", cleanText("<p>Bitcoin   rallies</p>\n again"))
	assert.Equal(t, "", cleanText("   "))
	assert.Equal(t, "BTC holds < $60k support while ETH > $3k resistance",
		cleanText("BTC holds < $60k support while ETH > $3k resistance"))
	assert.Equal(t, "Coinbase & Binance list SOL", cleanText("Coinbase &amp; Binance <b>list</b> SOL"))
	assert.Equal(t, "ETF approved", cleanText("<style>p{color:red}</style>ETF <i>approved</i>"))
}
