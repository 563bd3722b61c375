// Package otel provides structured observability for ChainPulse.
//
// Events are typed structs serialized as JSONL lines. The Logger writes
// events asynchronously via a buffered channel and background drain goroutine.
// An optional RingBuffer provides live in-memory inspection for the debug overlay.
package otel

import (
	"encoding/json"
	"time"
)

// Level defines event severity for filtering.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// EventKind identifies the category of an observability event.
// Dot-delimited: "<subsystem>.<action>".
type EventKind string

const (
	// Initial load of /api/news
	KindFetchStart    EventKind = "fetch.start"
	KindFetchComplete EventKind = "fetch.complete"
	KindFetchError    EventKind = "fetch.error"

	// Manual refresh: trigger + re-fetch
	KindRefreshStart    EventKind = "refresh.start"
	KindRefreshComplete EventKind = "refresh.complete"
	KindRefreshError    EventKind = "refresh.error"
	KindRefreshSkipped  EventKind = "refresh.skipped"

	// API client circuit breaker
	KindBreakerChange EventKind = "api.breaker"

	// Layout simulation
	KindSimStart   EventKind = "sim.start"
	KindSimSettled EventKind = "sim.settled"

	// Chart interaction
	KindChartClick EventKind = "chart.click"
	KindChartHover EventKind = "chart.hover"

	// Snapshot store
	KindStoreSave  EventKind = "store.save"
	KindStoreError EventKind = "store.error"

	// UI events
	KindKeyPress EventKind = "ui.key"

	// System events
	KindStartup  EventKind = "sys.startup"
	KindShutdown EventKind = "sys.shutdown"
	KindError    EventKind = "sys.error"

	// Trace events
	KindMsgReceived EventKind = "trace.msg_received"
)

// Event is the universal observability record. Every field except Kind and
// Time is optional. Serialized as a single JSONL line.
type Event struct {
	Time      time.Time      `json:"t"`
	Level     Level          `json:"level,omitempty"`
	Kind      EventKind      `json:"kind"`
	Comp      string         `json:"comp,omitempty"`       // component: "ui", "chart", "news", "store", "main"
	SessionID string         `json:"session_id,omitempty"` // same for the entire app run
	Gen       int            `json:"gen,omitempty"`        // chart generation the event belongs to
	Dur       time.Duration  `json:"-"`                    // not serialized directly
	DurMs     float64        `json:"dur_ms,omitempty"`     // computed from Dur at marshal time
	Count     int            `json:"count,omitempty"`
	Endpoint  string         `json:"endpoint,omitempty"`
	Ticker    string         `json:"ticker,omitempty"`
	Score     float64        `json:"score,omitempty"`
	Err       string         `json:"err,omitempty"`
	Msg       string         `json:"msg,omitempty"`
	Extra     map[string]any `json:"extra,omitempty"`
}

// MarshalJSON implements json.Marshaler, converting Dur to DurMs.
func (e Event) MarshalJSON() ([]byte, error) {
	type Alias Event
	a := struct {
		Alias
	}{Alias: Alias(e)}
	if e.Dur > 0 {
		a.DurMs = float64(e.Dur) / float64(time.Millisecond)
	}
	return json.Marshal(a)
}
