// Package chart draws coin bubbles on a terminal canvas and handles the
// pointer interactions on them.
//
// A Chart owns one layout simulation, one tooltip and the per-bubble
// animation state. It is driven from the Bubble Tea update loop: the owner
// calls Frame on every FrameMsg carrying the chart's generation, and
// discards frames from older charts. Close releases the tooltip and stops
// the simulation; a closed chart ignores everything.
package chart

import (
	"fmt"
	"math/rand/v2"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/harmonica"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/abelbrown/chainpulse/internal/aggregate"
	"github.com/abelbrown/chainpulse/internal/config"
	"github.com/abelbrown/chainpulse/internal/layout"
	"github.com/abelbrown/chainpulse/internal/logging"
	"github.com/abelbrown/chainpulse/internal/otel"
	"github.com/abelbrown/chainpulse/internal/scale"
	"github.com/abelbrown/chainpulse/internal/sentiment"
)

const (
	hoverScale = 1.15
	clickScale = 0.95

	// Spring angular frequencies. A critically damped spring is within 1%
	// of its target after about 7/ω seconds: 200ms for hover, 100ms per
	// click leg.
	hoverFreq = 35.0
	clickFreq = 70.0

	// maxSettleTicks bounds headless layouts.
	maxSettleTicks = 1000
)

// Options configures a Chart.
type Options struct {
	Width, Height        float64 // logical canvas, px
	RadiusMin, RadiusMax float64
	Palette              scale.Diverging
	Background           colorful.Color
	IdleOpacity          float64
	FPS                  int

	// Seed fixes initial positions. Zero seeds from the clock.
	Seed uint64

	// Events receives sim/chart events. Nil disables them.
	Events *otel.Logger
}

// FromVariant builds Options for a configured dashboard variant.
func FromVariant(v config.Variant, fps int) (Options, error) {
	pal, err := scale.NewDiverging(v.Palette[0], v.Palette[1], v.Palette[2])
	if err != nil {
		return Options{}, err
	}
	bg, err := colorful.Hex(v.Background)
	if err != nil {
		return Options{}, fmt.Errorf("parse background %q: %w", v.Background, err)
	}
	return Options{
		Width:       v.Width,
		Height:      v.Height,
		RadiusMin:   v.RadiusMin,
		RadiusMax:   v.RadiusMax,
		Palette:     pal,
		Background:  bg,
		IdleOpacity: v.IdleOpacity,
		FPS:         fps,
	}, nil
}

// FrameMsg asks the chart of generation Gen to advance one frame.
type FrameMsg struct {
	Gen uint64
}

// anim is one bubble's radius multiplier and opacity, each a spring.
type anim struct {
	scale, scaleVel, scaleTarget       float64
	opacity, opacityVel, opacityTarget float64

	// squash counts frames left in the pressed phase of a click.
	squash int
	// quick selects the click spring until the bubble is back at rest.
	quick bool
}

func (a *anim) resting() bool {
	const eps = 1e-3
	return a.squash == 0 &&
		abs(a.scale-a.scaleTarget) < eps && abs(a.scaleVel) < eps &&
		abs(a.opacity-a.opacityTarget) < eps && abs(a.opacityVel) < eps
}

var generation atomic.Uint64

// Chart is the interactive bubble chart for one data set.
// Not safe for concurrent use.
type Chart struct {
	gen   uint64
	opts  Options
	sim   *layout.Simulation
	anims []anim
	tip   *tooltip

	hovered int
	pointer [2]int // last pointer cell, for tooltip placement
	view    viewport

	hoverSpring harmonica.Spring
	clickSpring harmonica.Spring
	squashLen   int
	frameDur    time.Duration

	started time.Time
	ticking bool
	closed  bool
}

// New builds nodes from summaries, starts their simulation and acquires
// the tooltip. Callers must Close the chart.
func New(summaries []aggregate.CoinSummary, opts Options) *Chart {
	if opts.FPS <= 0 {
		opts.FPS = 60
	}
	c := &Chart{
		gen:         generation.Add(1),
		opts:        opts,
		tip:         acquireTooltip(),
		hovered:     -1,
		hoverSpring: harmonica.NewSpring(harmonica.FPS(opts.FPS), hoverFreq, 1.0),
		clickSpring: harmonica.NewSpring(harmonica.FPS(opts.FPS), clickFreq, 1.0),
		squashLen:   max(1, opts.FPS/10),
		frameDur:    time.Second / time.Duration(opts.FPS),
		started:     time.Now(),
	}

	seed := opts.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	rng := rand.New(rand.NewPCG(seed, c.gen))
	nodes := layout.NewNodes(summaries, layout.SizeScale(summaries, opts.RadiusMin, opts.RadiusMax), opts.Width, opts.Height, rng)

	c.anims = make([]anim, len(nodes))
	for i := range c.anims {
		c.anims[i] = anim{scale: 1, scaleTarget: 1, opacity: 1, opacityTarget: 1}
	}

	c.sim = layout.NewSimulation(nodes, layout.DefaultForces(opts.Width, opts.Height))
	c.sim.Start()
	c.emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindSimStart, Count: len(nodes)})
	if c.sim.State() == layout.Settled {
		c.emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindSimSettled})
	}
	return c
}

// Layout runs a headless simulation to rest and returns the nodes.
func Layout(summaries []aggregate.CoinSummary, opts Options) []layout.Node {
	c := New(summaries, opts)
	defer c.Close()
	c.sim.Settle(maxSettleTicks)
	return c.sim.Nodes()
}

// Close discards the simulation and releases the tooltip. Idempotent.
func (c *Chart) Close() {
	if c.closed {
		return
	}
	c.closed = true
	c.sim.Discard()
	c.tip.release()
}

// Generation identifies this chart instance.
func (c *Chart) Generation() uint64 { return c.gen }

// Closed reports whether Close was called.
func (c *Chart) Closed() bool { return c.closed }

// Len is the number of bubbles.
func (c *Chart) Len() int { return c.sim.Len() }

// State is the simulation state.
func (c *Chart) State() layout.State { return c.sim.State() }

// Nodes returns a copy of the current bubble positions.
func (c *Chart) Nodes() []layout.Node { return c.sim.Nodes() }

// Hovered is the index of the hovered bubble, or -1.
func (c *Chart) Hovered() int { return c.hovered }

// Kick schedules the next frame unless one is already pending.
func (c *Chart) Kick() tea.Cmd {
	if c.closed || c.ticking || !c.Animating() {
		return nil
	}
	c.ticking = true
	gen := c.gen
	return tea.Tick(c.frameDur, func(time.Time) tea.Msg { return FrameMsg{Gen: gen} })
}

// Frame advances one animation frame: a simulation tick while running and
// one spring step per bubble. Returns the follow-up frame command, if any.
func (c *Chart) Frame() tea.Cmd {
	c.ticking = false
	if c.closed {
		return nil
	}
	if c.sim.State() == layout.Running {
		if !c.sim.Tick() {
			c.emit(otel.Event{
				Level: otel.LevelInfo,
				Kind:  otel.KindSimSettled,
				Count: c.sim.Ticks(),
				Dur:   time.Since(c.started),
			})
		}
		c.refit()
	}
	for i := range c.anims {
		c.step(&c.anims[i])
	}
	return c.Kick()
}

func (c *Chart) step(a *anim) {
	sp := c.hoverSpring
	if a.quick {
		sp = c.clickSpring
	}
	a.scale, a.scaleVel = sp.Update(a.scale, a.scaleVel, a.scaleTarget)
	a.opacity, a.opacityVel = c.hoverSpring.Update(a.opacity, a.opacityVel, a.opacityTarget)
	// The press leg gets squashLen full frames before the release starts.
	if a.squash > 0 {
		a.squash--
		if a.squash == 0 {
			a.scaleTarget = 1
		}
	}
	if a.resting() {
		a.scale, a.scaleVel = a.scaleTarget, 0
		a.opacity, a.opacityVel = a.opacityTarget, 0
		a.quick = false
	}
}

// Animating reports whether more frames would change the picture.
func (c *Chart) Animating() bool {
	if c.closed {
		return false
	}
	if c.sim.State() == layout.Running {
		return true
	}
	for i := range c.anims {
		if !c.anims[i].resting() {
			return true
		}
	}
	return false
}

// Hover makes bubble i the hovered one, moving the pointer to its center.
// Any i outside [0, Len) unhovers.
func (c *Chart) Hover(i int) tea.Cmd {
	if i >= 0 && i < len(c.anims) {
		c.pointer = c.view.center(c.sim.NodeAt(i))
	}
	return c.hover(i)
}

// HoverAt hovers whatever bubble is under the pointer cell.
func (c *Chart) HoverAt(col, row int) tea.Cmd {
	c.pointer = [2]int{col, row}
	return c.hover(c.HitTest(col, row))
}

// Unhover clears the hovered bubble.
func (c *Chart) Unhover() tea.Cmd { return c.hover(-1) }

// FocusNext moves keyboard focus by delta bubbles, wrapping around.
func (c *Chart) FocusNext(delta int) tea.Cmd {
	n := len(c.anims)
	if n == 0 {
		return nil
	}
	i := c.hovered
	if i < 0 {
		if delta < 0 {
			i = 0
		} else {
			i = -1
		}
	}
	return c.Hover(((i+delta)%n + n) % n)
}

func (c *Chart) hover(i int) tea.Cmd {
	if c.closed {
		return nil
	}
	if i < 0 || i >= len(c.anims) {
		i = -1
	}
	if i == c.hovered {
		if i >= 0 {
			c.tip.show(c.pointer)
		}
		return nil
	}
	if prev := c.hovered; prev >= 0 {
		a := &c.anims[prev]
		a.scaleTarget = 1
		a.opacityTarget = c.opts.IdleOpacity
	}
	c.hovered = i
	if i < 0 {
		c.tip.hide()
		return c.Kick()
	}

	a := &c.anims[i]
	a.squash = 0
	a.scaleTarget = hoverScale
	a.opacityTarget = 1
	n := c.sim.NodeAt(i)
	c.tip.set(TooltipLines(n.CoinSummary), c.pointer)
	c.emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindChartHover, Ticker: n.Ticker, Score: n.SentimentScore})
	return c.Kick()
}

// Click plays the press animation on bubble i and records the click. Data
// is not changed.
func (c *Chart) Click(i int) tea.Cmd {
	if c.closed || i < 0 || i >= len(c.anims) {
		return nil
	}
	a := &c.anims[i]
	a.scaleTarget = clickScale
	a.squash = c.squashLen
	a.quick = true

	n := c.sim.NodeAt(i)
	logging.Info("Clicked on: "+n.Ticker, "sentiment", n.SentimentScore)
	c.emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindChartClick, Ticker: n.Ticker, Score: n.SentimentScore})
	return c.Kick()
}

// ClickAt clicks the bubble under the cell, if any.
func (c *Chart) ClickAt(col, row int) tea.Cmd {
	return c.Click(c.HitTest(col, row))
}

// TooltipVisible reports whether the tooltip is shown.
func (c *Chart) TooltipVisible() bool { return c.tip.visible }

// TooltipText is the tooltip content, empty while hidden.
func (c *Chart) TooltipText() []string {
	if !c.tip.visible {
		return nil
	}
	return append([]string(nil), c.tip.lines...)
}

// radius is bubble i's current drawn radius.
func (c *Chart) radius(i int, n layout.Node) float64 {
	return n.Radius * c.anims[i].scale
}

func (c *Chart) emit(e otel.Event) {
	if c.opts.Events == nil {
		return
	}
	e.Comp = "chart"
	e.Gen = int(c.gen)
	c.opts.Events.Emit(e)
}

// TooltipLines is the tooltip body for a coin: name, 3-decimal score,
// article count and sentiment label.
func TooltipLines(s aggregate.CoinSummary) []string {
	label := sentiment.Classify(s.SentimentScore)
	return []string{
		s.Name,
		"Sentiment Score: " + sentiment.Fixed(s.SentimentScore, 3),
		fmt.Sprintf("News Articles: %d", s.NewsCount),
		"Sentiment: " + label.String() + " " + label.Emoji(),
	}
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
