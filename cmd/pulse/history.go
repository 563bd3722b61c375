package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/abelbrown/chainpulse/internal/sentiment"
	"github.com/abelbrown/chainpulse/internal/store"
)

func runHistory() {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	ticker := fs.String("ticker", "", "Show one coin's score per snapshot (e.g. BTC)")
	limit := fs.Int("limit", 20, "Number of snapshots to show")
	fs.Parse(os.Args[1:])

	st := openDB()
	defer st.Close()

	now := time.Now()
	if *ticker == "" {
		infos, err := st.Snapshots(*limit)
		if err != nil {
			fatalf("%v", err)
		}
		writeSnapshots(os.Stdout, infos, now)
		return
	}

	t := strings.ToUpper(strings.TrimSpace(*ticker))
	points, err := st.TickerHistory(t, *limit)
	if err != nil {
		fatalf("%v", err)
	}
	writeTickerHistory(os.Stdout, t, points, now)
}

func writeSnapshots(w io.Writer, infos []store.SnapshotInfo, now time.Time) {
	if len(infos) == 0 {
		fmt.Fprintln(w, "No snapshots stored yet. Run chainpulse to record one.")
		return
	}
	fmt.Fprintf(w, "%-6s %-16s %8s %6s  %s\n", "ID", "FETCHED", "ARTICLES", "COINS", "SOURCE")
	for _, s := range infos {
		fmt.Fprintf(w, "%-6d %-16s %8d %6d  %s\n",
			s.ID, humanize.RelTime(s.FetchedAt, now, "ago", "from now"), s.Count, s.Tickers, truncate(s.Source, 40))
	}
}

// writeTickerHistory prints newest first and the change across the window.
func writeTickerHistory(w io.Writer, ticker string, points []store.HistoryPoint, now time.Time) {
	if len(points) == 0 {
		fmt.Fprintf(w, "No stored snapshots mention %s.\n", ticker)
		return
	}
	fmt.Fprintf(w, "%s sentiment over %d snapshots\n\n", ticker, len(points))
	fmt.Fprintf(w, "%-6s %-16s %8s %8s  %s\n", "ID", "FETCHED", "ARTICLES", "SCORE", "SENTIMENT")
	for _, p := range points {
		label := sentiment.Classify(p.Mean)
		fmt.Fprintf(w, "%-6d %-16s %8d %8s  %s %s\n",
			p.SnapshotID, humanize.RelTime(p.FetchedAt, now, "ago", "from now"), p.Count,
			sentiment.Signed(p.Mean, 3), label, label.Emoji())
	}
	if len(points) > 1 {
		delta := points[0].Mean - points[len(points)-1].Mean
		fmt.Fprintf(w, "\nChange: %s\n", sentiment.Signed(delta, 3))
	}
}
