package main

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/abelbrown/chainpulse/internal/logging"
	"github.com/abelbrown/chainpulse/internal/news"
	"github.com/abelbrown/chainpulse/internal/otel"
	"github.com/abelbrown/chainpulse/internal/store"
	"github.com/abelbrown/chainpulse/internal/ui"
)

// keepSnapshots bounds the snapshot history kept on disk.
const keepSnapshots = 200

// commands builds the tea.Cmds the App is configured with. Each one runs
// off the update loop and reports back with a message.
type commands struct {
	ctx    context.Context
	client *news.Client
	store  *store.Store // nil disables snapshots
	events *otel.Logger
}

func (c commands) loadNews() tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		c.events.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindFetchStart, Comp: "news", Endpoint: c.client.BaseURL()})

		items, err := c.client.News(c.ctx)
		dur := time.Since(start)
		if err != nil {
			c.events.Emit(otel.Event{Level: otel.LevelError, Kind: otel.KindFetchError, Comp: "news", Dur: dur, Err: err.Error()})
			logging.Error("Failed to load news", "err", err, "kind", news.KindOf(err))
			return ui.NewsLoaded{Err: err, Dur: dur}
		}

		c.events.Timed(otel.KindFetchComplete, "news", dur, len(items))
		logging.Info("Loaded news", "count", len(items), "dur", dur)
		return ui.NewsLoaded{Items: items, Dur: dur}
	}
}

func (c commands) refreshNews() tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		c.events.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindRefreshStart, Comp: "news", Endpoint: c.client.BaseURL()})

		items, err := c.client.RefreshAndFetch(c.ctx)
		dur := time.Since(start)
		if err != nil {
			c.events.Emit(otel.Event{Level: otel.LevelError, Kind: otel.KindRefreshError, Comp: "news", Dur: dur, Err: err.Error()})
			logging.Warn("Refresh failed", "err", err, "kind", news.KindOf(err))
			return ui.RefreshDone{Err: err, Dur: dur}
		}

		c.events.Timed(otel.KindRefreshComplete, "news", dur, len(items))
		return ui.RefreshDone{Items: items, Dur: dur}
	}
}

// saveSnapshot is nil when there is no store, which leaves snapshots off.
func (c commands) saveSnapshot() func([]news.Item) tea.Cmd {
	if c.store == nil {
		return nil
	}
	return func(items []news.Item) tea.Cmd {
		return func() tea.Msg {
			id, err := c.store.SaveSnapshot(time.Now(), c.client.BaseURL(), items)
			if err != nil {
				c.events.Error(otel.KindStoreError, "store", err)
				logging.Warn("Failed to save snapshot", "err", err)
				return ui.SnapshotSaved{Err: err}
			}
			if _, err := c.store.Prune(keepSnapshots); err != nil {
				c.events.Error(otel.KindStoreError, "store", err)
				logging.Warn("Failed to prune snapshots", "err", err)
			}
			c.events.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindStoreSave, Comp: "store", Count: len(items), Msg: "snapshot saved"})
			return ui.SnapshotSaved{ID: id}
		}
	}
}

// breakerChanged reports circuit breaker transitions.
func breakerChanged(events *otel.Logger) func(from, to string) {
	return func(from, to string) {
		events.Emit(otel.Event{Level: otel.LevelWarn, Kind: otel.KindBreakerChange, Comp: "news", Msg: from + " -> " + to})
		logging.Warn("API breaker state changed", "from", from, "to", to)
	}
}
