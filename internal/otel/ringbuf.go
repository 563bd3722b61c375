package otel

import (
	"maps"
	"sync"
)

// DefaultRingSize is the ring capacity used by the dashboard.
const DefaultRingSize = 512

// RingBuffer keeps the newest events for the debug overlay. Once full,
// each Push replaces the oldest event. Safe for concurrent use.
type RingBuffer struct {
	mu     sync.Mutex
	events []Event
	next   int // slot the next Push writes
	n      int // filled slots
}

// NewRingBuffer returns a ring holding up to size events, or
// DefaultRingSize when size is not positive.
func NewRingBuffer(size int) *RingBuffer {
	if size <= 0 {
		size = DefaultRingSize
	}
	return &RingBuffer{events: make([]Event, size)}
}

// Push stores e. Extra is cloned so callers may reuse their map.
func (r *RingBuffer) Push(e Event) {
	e.Extra = maps.Clone(e.Extra)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.events[r.next] = e
	r.next = (r.next + 1) % len(r.events)
	r.n = min(r.n+1, len(r.events))
}

// Snapshot returns every buffered event, oldest first.
func (r *RingBuffer) Snapshot() []Event { return r.Last(r.Cap()) }

// Last returns up to n of the newest events, oldest first. Nil when there
// is nothing to return.
func (r *RingBuffer) Last(n int) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	n = min(n, r.n)
	if n <= 0 {
		return nil
	}
	out := make([]Event, 0, n)
	r.walk(r.n-n, func(e *Event) { out = append(out, *e) })
	return out
}

// Len is the number of buffered events.
func (r *RingBuffer) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.n
}

// Cap is the most events the ring holds.
func (r *RingBuffer) Cap() int { return len(r.events) }

// Stats counts buffered events by kind.
func (r *RingBuffer) Stats() map[EventKind]int {
	counts := make(map[EventKind]int)
	r.each(func(e *Event) { counts[e.Kind]++ })
	return counts
}

// Errors counts buffered error-level events.
func (r *RingBuffer) Errors() int {
	n := 0
	r.each(func(e *Event) {
		if e.Level == LevelError {
			n++
		}
	})
	return n
}

// LastOf returns the most recent event of kind.
func (r *RingBuffer) LastOf(kind EventKind) (Event, bool) {
	var (
		out   Event
		found bool
	)
	r.each(func(e *Event) {
		if e.Kind == kind {
			out, found = *e, true
		}
	})
	return out, found
}

func (r *RingBuffer) each(fn func(*Event)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.walk(0, fn)
}

// walk visits buffered events oldest first, starting skip events in.
// The caller holds mu.
func (r *RingBuffer) walk(skip int, fn func(*Event)) {
	size := len(r.events)
	oldest := r.next - r.n + size
	for i := skip; i < r.n; i++ {
		fn(&r.events[(oldest+i)%size])
	}
}
