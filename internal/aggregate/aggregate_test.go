package aggregate

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abelbrown/chainpulse/internal/news"
)

func TestAggregateScenario(t *testing.T) {
	items := []news.Item{
		{ID: 1, CoinTicker: "BTC", SentimentScore: 0.5},
		{ID: 2, CoinTicker: "BTC", SentimentScore: -0.1},
		{ID: 3, CoinTicker: "ETH", SentimentScore: 0.8},
	}

	got := Aggregate(items)
	require.Len(t, got, 2)

	assert.Equal(t, "BTC", got[0].Ticker)
	assert.Equal(t, "BTC", got[0].Name)
	assert.Equal(t, 2, got[0].NewsCount)
	assert.InDelta(t, 0.2, got[0].SentimentScore, 1e-12)
	assert.Equal(t, []float64{0.5, -0.1}, got[0].Scores)

	assert.Equal(t, "ETH", got[1].Ticker)
	assert.Equal(t, 1, got[1].NewsCount)
	assert.InDelta(t, 0.8, got[1].SentimentScore, 1e-12)
}

func TestAggregateOneSummaryPerTicker(t *testing.T) {
	tickers := []string{"BTC", "ETH", "SOL", "BTC", "DOGE", "ETH", "BTC", "SOL", "XRP"}
	items := make([]news.Item, len(tickers))
	want := map[string]int{}
	for i, tk := range tickers {
		items[i] = news.Item{ID: i, CoinTicker: tk, SentimentScore: float64(i%3) / 3}
		want[tk]++
	}

	got := Aggregate(items)
	require.Len(t, got, len(want))

	seen := map[string]bool{}
	for _, s := range got {
		assert.False(t, seen[s.Ticker], "duplicate summary for %s", s.Ticker)
		seen[s.Ticker] = true
		assert.Equal(t, want[s.Ticker], s.NewsCount, s.Ticker)
		assert.Len(t, s.Scores, s.NewsCount)
	}

	// first-occurrence order
	assert.Equal(t, []string{"BTC", "ETH", "SOL", "DOGE", "XRP"}, tickersOf(got))
}

func TestAggregateEmpty(t *testing.T) {
	assert.Empty(t, Aggregate(nil))
	assert.Empty(t, Aggregate([]news.Item{}))
}

func TestMeanOfEmptyIsZero(t *testing.T) {
	assert.Equal(t, 0.0, Mean(nil))
	assert.Equal(t, 0.0, Mean([]float64{}))
}

func TestAggregateSkipsInvalidScores(t *testing.T) {
	items := []news.Item{
		{CoinTicker: "BTC", SentimentScore: 0.4},
		{CoinTicker: "BTC", SentimentScore: math.NaN()},
		{CoinTicker: "BTC", SentimentScore: math.Inf(1)},
		{CoinTicker: "ETH", SentimentScore: math.NaN()},
	}

	got := Aggregate(items)
	require.Len(t, got, 2)

	assert.Equal(t, 1, got[0].NewsCount)
	assert.InDelta(t, 0.4, got[0].SentimentScore, 1e-12)

	assert.Equal(t, "ETH", got[1].Ticker)
	assert.Equal(t, 0, got[1].NewsCount)
	assert.Equal(t, 0.0, got[1].SentimentScore)
	assert.False(t, math.IsNaN(got[1].SentimentScore))
}

func TestAggregateSkipsUnscoredArticles(t *testing.T) {
	var items []news.Item
	err := json.Unmarshal([]byte(`[
  {"coin_ticker": "BTC", "sentiment_score": 0.5},
  {"coin_ticker": "BTC", "sentiment_score": null},
  {"coin_ticker": "BTC"}
]`), &items)
	require.NoError(t, err)

	got := Aggregate(items)
	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].NewsCount)
	assert.InDelta(t, 0.5, got[0].SentimentScore, 1e-12)
	assert.Equal(t, []float64{0.5}, got[0].Scores)
}

func TestExtent(t *testing.T) {
	_, _, ok := Extent(nil)
	assert.False(t, ok)

	lo, hi, ok := Extent([]CoinSummary{{NewsCount: 4}, {NewsCount: 1}, {NewsCount: 9}})
	require.True(t, ok)
	assert.Equal(t, 1, lo)
	assert.Equal(t, 9, hi)
}

func TestSummarize(t *testing.T) {
	items := []news.Item{
		{SentimentScore: 0.5},
		{SentimentScore: 0.1},
		{SentimentScore: -0.3},
		{SentimentScore: 0},
		{SentimentScore: 0.11},
	}
	assert.Equal(t, Stats{Bullish: 2, Bearish: 1, Neutral: 2, Total: 5}, Summarize(items))
}

func tickersOf(s []CoinSummary) []string {
	out := make([]string, len(s))
	for i := range s {
		out[i] = s[i].Ticker
	}
	return out
}
