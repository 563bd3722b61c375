package chart

import "sync/atomic"

var liveTooltips atomic.Int64

// LiveTooltips is the number of tooltips acquired and not yet released
// across all charts. A mounted dashboard holds exactly one.
func LiveTooltips() int64 {
	return liveTooltips.Load()
}

// tooltip is the floating panel next to the pointer. Each Chart acquires
// one in New and releases it in Close.
type tooltip struct {
	lines    []string
	at       [2]int // pointer cell
	visible  bool
	released bool
}

func acquireTooltip() *tooltip {
	liveTooltips.Add(1)
	return &tooltip{}
}

func (t *tooltip) set(lines []string, at [2]int) {
	t.lines = lines
	t.show(at)
}

func (t *tooltip) show(at [2]int) {
	if t.released {
		return
	}
	t.at = at
	t.visible = true
}

func (t *tooltip) hide() {
	t.visible = false
}

func (t *tooltip) release() {
	if t.released {
		return
	}
	t.released = true
	t.visible = false
	t.lines = nil
	liveTooltips.Add(-1)
}
