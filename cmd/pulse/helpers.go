package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/abelbrown/chainpulse/internal/config"
	"github.com/abelbrown/chainpulse/internal/news"
	"github.com/abelbrown/chainpulse/internal/store"
)

// fatalf prints "error: ..." to stderr and exits 1.
func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
	os.Exit(1)
}

// loadConfig loads ~/.chainpulse/config.json (and .env) or fatals.
func loadConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		fatalf("load config: %v", err)
	}
	return cfg
}

// openDB opens the snapshot store or fatals.
func openDB() *store.Store {
	st, err := store.Open(config.DBPath())
	if err != nil {
		fatalf("open database: %v", err)
	}
	return st
}

// source says where a list of items came from.
type source struct {
	Label     string
	FetchedAt time.Time
}

// loadItems fetches the live list newest-first, or reads the latest stored
// snapshot when offline is set.
func loadItems(cfg *config.Config, offline bool) ([]news.Item, source, error) {
	if offline {
		st := openDB()
		defer st.Close()
		snap, err := st.LatestSnapshot()
		if errors.Is(err, store.ErrNoSnapshot) {
			return nil, source{}, fmt.Errorf("no stored snapshot; run chainpulse or drop -offline")
		}
		if err != nil {
			return nil, source{}, err
		}
		return snap.Items, source{Label: fmt.Sprintf("snapshot #%d", snap.ID), FetchedAt: snap.FetchedAt}, nil
	}

	apiURL := config.ResolveAPIURL(cfg.APIURL)
	client := news.NewClient(apiURL, news.Options{Timeout: time.Duration(cfg.TimeoutSec) * time.Second})
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.TimeoutSec+5)*time.Second)
	defer cancel()

	items, err := client.News(ctx)
	if err != nil {
		return nil, source{}, fmt.Errorf("%s (%w)", news.Describe(err), err)
	}
	return items, source{Label: apiURL, FetchedAt: time.Now()}, nil
}

// truncate shortens a string to max runes, appending "..." if truncated.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
