package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/abelbrown/chainpulse/internal/aggregate"
	"github.com/abelbrown/chainpulse/internal/news"
	"github.com/abelbrown/chainpulse/internal/sentiment"
)

func runStats() {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	offline := fs.Bool("offline", false, "Use the latest stored snapshot instead of the API")
	asJSON := fs.Bool("json", false, "Print JSON instead of a table")
	fs.Parse(os.Args[1:])

	cfg := loadConfig()
	items, src, err := loadItems(cfg, *offline)
	if err != nil {
		fatalf("%v", err)
	}

	if *asJSON {
		if err := writeStatsJSON(os.Stdout, items); err != nil {
			fatalf("%v", err)
		}
		return
	}
	fmt.Printf("Source:   %s (%s)\n\n", src.Label, humanize.Time(src.FetchedAt))
	writeStats(os.Stdout, items)
}

// sortedSummaries orders coins by article count, then ticker.
func sortedSummaries(items []news.Item) []aggregate.CoinSummary {
	summaries := aggregate.Aggregate(items)
	sort.SliceStable(summaries, func(i, j int) bool {
		if summaries[i].NewsCount != summaries[j].NewsCount {
			return summaries[i].NewsCount > summaries[j].NewsCount
		}
		return summaries[i].Ticker < summaries[j].Ticker
	})
	return summaries
}

// writeStats prints the per-coin table and the article totals.
func writeStats(w io.Writer, items []news.Item) {
	summaries := sortedSummaries(items)

	fmt.Fprintf(w, "%-8s %8s %8s  %s\n", "TICKER", "ARTICLES", "SCORE", "SENTIMENT")
	for _, s := range summaries {
		label := sentiment.Classify(s.SentimentScore)
		fmt.Fprintf(w, "%-8s %8d %8s  %s %s\n",
			truncate(s.Ticker, 8), s.NewsCount, sentiment.Signed(s.SentimentScore, 3), label, label.Emoji())
	}

	st := aggregate.Summarize(items)
	fmt.Fprintln(w, strings.Repeat("-", 40))
	fmt.Fprintf(w, "Coins:            %s\n", humanize.Comma(int64(len(summaries))))
	fmt.Fprintf(w, "Bullish Articles: %s\n", humanize.Comma(int64(st.Bullish)))
	fmt.Fprintf(w, "Bearish Articles: %s\n", humanize.Comma(int64(st.Bearish)))
	fmt.Fprintf(w, "Neutral Articles: %s\n", humanize.Comma(int64(st.Neutral)))
	fmt.Fprintf(w, "Total Articles:   %s\n", humanize.Comma(int64(st.Total)))
}

type coinJSON struct {
	Ticker    string  `json:"ticker"`
	NewsCount int     `json:"news_count"`
	Score     float64 `json:"sentiment_score"`
	Label     string  `json:"label"`
}

type statsJSON struct {
	Coins   []coinJSON `json:"coins"`
	Bullish int        `json:"bullish"`
	Bearish int        `json:"bearish"`
	Neutral int        `json:"neutral"`
	Total   int        `json:"total"`
}

func writeStatsJSON(w io.Writer, items []news.Item) error {
	st := aggregate.Summarize(items)
	out := statsJSON{Coins: []coinJSON{}, Bullish: st.Bullish, Bearish: st.Bearish, Neutral: st.Neutral, Total: st.Total}
	for _, s := range sortedSummaries(items) {
		out.Coins = append(out.Coins, coinJSON{
			Ticker:    s.Ticker,
			NewsCount: s.NewsCount,
			Score:     s.SentimentScore,
			Label:     sentiment.Classify(s.SentimentScore).String(),
		})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
