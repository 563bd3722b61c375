// Package ui provides the Bubble Tea dashboard for ChainPulse.
package ui

import (
	"time"

	"github.com/abelbrown/chainpulse/internal/news"
)

// NewsLoaded is sent when the initial GET /api/news finishes.
// Items are newest-first.
type NewsLoaded struct {
	Items []news.Item
	Dur   time.Duration
	Err   error
}

// RefreshDone is sent when a refresh (trigger + re-fetch) finishes.
type RefreshDone struct {
	Items []news.Item
	Dur   time.Duration
	Err   error
}

// SnapshotSaved is sent after a loaded list was written to the store.
type SnapshotSaved struct {
	ID  int64
	Err error
}
