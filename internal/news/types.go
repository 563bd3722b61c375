// Package news talks to the sentiment backend.
//
// The backend serves a flat list of scored articles at GET /api/news and
// re-ingests upstream news on POST /api/refresh-news. This package owns the
// wire model and the HTTP client; it does not score or store anything.
package news

import (
	"encoding/json"
	"math"
	"strings"
	"time"
)

// Item is one scored news article as served by the backend.
// Immutable once fetched; a refresh replaces the whole list.
type Item struct {
	ID             int     `json:"id"`
	Title          string  `json:"title"`
	Description    string  `json:"description,omitempty"`
	CoinTicker     string  `json:"coin_ticker"`
	PublishedAt    string  `json:"published_at"`
	Link           string  `json:"link"`
	SentimentScore float64 `json:"sentiment_score"` // NaN when the backend sent none
}

// UnmarshalJSON decodes an Item. A null or missing sentiment_score becomes
// NaN so aggregation leaves the article out of the coin's mean.
func (i *Item) UnmarshalJSON(data []byte) error {
	type plain Item
	aux := struct {
		*plain
		SentimentScore *float64 `json:"sentiment_score"`
	}{plain: (*plain)(i)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	i.SentimentScore = math.NaN()
	if aux.SentimentScore != nil {
		i.SentimentScore = *aux.SentimentScore
	}
	return nil
}

// Scored reports whether the article carries a usable score.
func (i Item) Scored() bool {
	return !math.IsNaN(i.SentimentScore) && !math.IsInf(i.SentimentScore, 0)
}

// publishedLayouts are the timestamp shapes the backend has been seen to emit.
// SQLAlchemy DateTime columns serialize without a zone.
var publishedLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999",
	"2006-01-02 15:04:05",
}

// Published parses PublishedAt. Zone-less timestamps are read as UTC.
func (i Item) Published() (time.Time, bool) {
	s := strings.TrimSpace(i.PublishedAt)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range publishedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Reversed returns a copy of items in reverse order.
func Reversed(items []Item) []Item {
	out := make([]Item, len(items))
	for i, item := range items {
		out[len(items)-1-i] = item
	}
	return out
}

// listResponse is the GET /api/news envelope.
type listResponse struct {
	News *[]Item `json:"news"`
}
