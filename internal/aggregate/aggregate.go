// Package aggregate reduces scored articles to one summary per coin.
package aggregate

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/abelbrown/chainpulse/internal/news"
	"github.com/abelbrown/chainpulse/internal/sentiment"
)

// CoinSummary is the per-ticker reduction of a news list.
// NewsCount always equals len(Scores).
type CoinSummary struct {
	Ticker         string
	Name           string
	Scores         []float64
	NewsCount      int
	SentimentScore float64
}

// Aggregate groups items by CoinTicker in a single pass.
//
// Groups are created on first occurrence and returned in that order.
// Scores that are NaN or infinite are left out of the group's Scores, so
// they count toward neither the mean nor NewsCount; the ticker still
// appears. A group with no usable score has SentimentScore 0.
func Aggregate(items []news.Item) []CoinSummary {
	index := make(map[string]int)
	var out []CoinSummary

	for _, item := range items {
		i, ok := index[item.CoinTicker]
		if !ok {
			i = len(out)
			index[item.CoinTicker] = i
			out = append(out, CoinSummary{
				Ticker: item.CoinTicker,
				Name:   item.CoinTicker,
			})
		}
		if !valid(item.SentimentScore) {
			continue
		}
		out[i].Scores = append(out[i].Scores, item.SentimentScore)
	}

	for i := range out {
		out[i].NewsCount = len(out[i].Scores)
		out[i].SentimentScore = Mean(out[i].Scores)
	}
	return out
}

// Mean returns the arithmetic mean of scores, or 0 for an empty slice.
func Mean(scores []float64) float64 {
	if len(scores) == 0 {
		return 0
	}
	return stat.Mean(scores, nil)
}

// Extent returns the smallest and largest NewsCount across summaries.
// ok is false when summaries is empty.
func Extent(summaries []CoinSummary) (lo, hi int, ok bool) {
	if len(summaries) == 0 {
		return 0, 0, false
	}
	lo, hi = summaries[0].NewsCount, summaries[0].NewsCount
	for _, s := range summaries[1:] {
		lo = min(lo, s.NewsCount)
		hi = max(hi, s.NewsCount)
	}
	return lo, hi, true
}

// Stats counts articles per sentiment label.
type Stats struct {
	Bullish int
	Bearish int
	Neutral int
	Total   int
}

// Summarize classifies every article on its own score.
func Summarize(items []news.Item) Stats {
	var s Stats
	for _, item := range items {
		s.Total++
		switch sentiment.Classify(item.SentimentScore) {
		case sentiment.Bullish:
			s.Bullish++
		case sentiment.Bearish:
			s.Bearish++
		default:
			s.Neutral++
		}
	}
	return s
}

func valid(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
