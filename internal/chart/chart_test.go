package chart

import (
	"bytes"
	"encoding/xml"
	"math"
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abelbrown/chainpulse/internal/aggregate"
	"github.com/abelbrown/chainpulse/internal/config"
	"github.com/abelbrown/chainpulse/internal/layout"
	"github.com/abelbrown/chainpulse/internal/news"
)

func testOptions(t *testing.T) Options {
	t.Helper()
	opts, err := FromVariant(config.Classic(), 60)
	require.NoError(t, err)
	opts.Seed = 42
	return opts
}

func testSummaries() []aggregate.CoinSummary {
	return aggregate.Aggregate([]news.Item{
		{ID: 1, CoinTicker: "BTC", SentimentScore: 0.5},
		{ID: 2, CoinTicker: "BTC", SentimentScore: -0.1},
		{ID: 3, CoinTicker: "ETH", SentimentScore: 0.8},
		{ID: 4, CoinTicker: "SOL", SentimentScore: -0.6},
		{ID: 5, CoinTicker: "SOL", SentimentScore: -0.2},
		{ID: 6, CoinTicker: "SOL", SentimentScore: -0.4},
	})
}

// settled returns a chart whose simulation has come to rest.
func settled(t *testing.T) *Chart {
	t.Helper()
	c := New(testSummaries(), testOptions(t))
	t.Cleanup(c.Close)
	for i := 0; i < 2000 && c.State() == layout.Running; i++ {
		c.Frame()
	}
	require.Equal(t, layout.Settled, c.State())
	c.Resize(120, 40)
	return c
}

func runFrames(c *Chart, n int) {
	for i := 0; i < n; i++ {
		c.Frame()
	}
}

func TestNewAndCloseTooltipLifecycle(t *testing.T) {
	before := LiveTooltips()

	a := New(testSummaries(), testOptions(t))
	assert.Equal(t, before+1, LiveTooltips())
	assert.Equal(t, layout.Running, a.State())
	assert.Equal(t, 3, a.Len())

	b := New(testSummaries(), testOptions(t))
	assert.Equal(t, before+2, LiveTooltips())
	assert.Greater(t, b.Generation(), a.Generation())

	a.Close()
	a.Close()
	assert.Equal(t, before+1, LiveTooltips(), "Close must be idempotent")
	assert.Equal(t, layout.Discarded, a.State())
	assert.True(t, a.Closed())
	assert.Nil(t, a.Frame(), "closed chart ignores frames")
	assert.Nil(t, a.Click(0))

	b.Close()
	assert.Equal(t, before, LiveTooltips())
}

func TestRemountCycleDoesNotLeak(t *testing.T) {
	before := LiveTooltips()
	var c *Chart
	for i := 0; i < 20; i++ {
		if c != nil {
			c.Close()
		}
		c = New(testSummaries(), testOptions(t))
	}
	assert.Equal(t, before+1, LiveTooltips())
	c.Close()
	assert.Equal(t, before, LiveTooltips())
}

func TestFramesSettleSimulation(t *testing.T) {
	c := New(testSummaries(), testOptions(t))
	defer c.Close()
	require.True(t, c.Animating())
	require.NotNil(t, c.Kick())
	assert.Nil(t, c.Kick(), "only one frame may be pending")

	frames := 0
	for c.State() == layout.Running && frames < 2000 {
		c.Frame()
		frames++
	}
	assert.Equal(t, layout.Settled, c.State())
	assert.InDelta(t, 300, frames, 2)
	assert.False(t, c.Animating())

	nodes := c.Nodes()
	assert.Empty(t, layout.Overlaps(nodes, 3, 1e-6))
}

func TestHoverAnimatesAndShowsTooltip(t *testing.T) {
	c := settled(t)
	base := c.Nodes()[0].Radius

	require.NotNil(t, c.Hover(0))
	assert.Equal(t, 0, c.Hovered())
	assert.True(t, c.TooltipVisible())
	assert.Equal(t, []string{
		"BTC",
		"Sentiment Score: 0.200",
		"News Articles: 2",
		"Sentiment: Bullish 🚀",
	}, c.TooltipText())

	runFrames(c, 60)
	assert.InDelta(t, base*hoverScale, c.radius(0, c.Nodes()[0]), 1e-2)
	assert.InDelta(t, 1, c.anims[0].opacity, 1e-3)

	c.Unhover()
	assert.Equal(t, -1, c.Hovered())
	assert.False(t, c.TooltipVisible())
	runFrames(c, 60)
	assert.InDelta(t, base, c.radius(0, c.Nodes()[0]), 1e-2)
	assert.InDelta(t, config.Classic().IdleOpacity, c.anims[0].opacity, 1e-3)
	assert.False(t, c.Animating())
}

func TestHoverSwitchRestoresPrevious(t *testing.T) {
	c := settled(t)
	c.Hover(0)
	runFrames(c, 60)
	c.Hover(1)
	runFrames(c, 60)

	assert.InDelta(t, 1, c.anims[0].scale, 1e-3)
	assert.InDelta(t, hoverScale, c.anims[1].scale, 1e-3)
	assert.Equal(t, "ETH", c.TooltipText()[0])
}

func TestClickSquashesThenRestores(t *testing.T) {
	c := settled(t)
	require.NotNil(t, c.Click(2))

	minScale := 1.0
	for i := 0; i < 60; i++ {
		c.Frame()
		minScale = math.Min(minScale, c.anims[2].scale)
	}
	assert.Less(t, minScale, 0.99)
	assert.GreaterOrEqual(t, minScale, clickScale-0.01)
	assert.InDelta(t, 1, c.anims[2].scale, 1e-3)
	assert.False(t, c.Animating())

	assert.Nil(t, c.Click(-1))
	assert.Nil(t, c.Click(99))
}

func TestHoverReachesTargetWithin200ms(t *testing.T) {
	c := settled(t)
	idle := config.Classic().IdleOpacity
	frames := c.opts.FPS / 5

	c.Hover(0)
	runFrames(c, frames)
	assert.InDelta(t, hoverScale, c.anims[0].scale, 0.01*(hoverScale-1))
	assert.InDelta(t, 1, c.anims[0].opacity, 1e-3)

	c.Unhover()
	runFrames(c, frames)
	assert.InDelta(t, 1, c.anims[0].scale, 0.01*(hoverScale-1))
	assert.InDelta(t, idle, c.anims[0].opacity, 0.01*(1-idle))
}

func TestClickLegsTake100ms(t *testing.T) {
	c := settled(t)
	require.Equal(t, c.opts.FPS/10, c.squashLen)

	c.Click(2)
	runFrames(c, c.squashLen)
	assert.InDelta(t, clickScale, c.anims[2].scale, 0.01*(1-clickScale))
	assert.Equal(t, 1.0, c.anims[2].scaleTarget, "release should start after the press leg")

	runFrames(c, c.squashLen)
	assert.InDelta(t, 1, c.anims[2].scale, 0.01*(1-clickScale))
}

func TestHitTestFindsBubbleUnderCell(t *testing.T) {
	c := settled(t)
	for i, n := range c.Nodes() {
		at := c.view.center(n)
		assert.Equal(t, i, c.HitTest(at[0], at[1]), "center of %s", n.Ticker)
	}
	assert.Equal(t, -1, c.HitTest(-1, 0))
	assert.Equal(t, -1, c.HitTest(0, 999))

	at := c.view.center(c.Nodes()[1])
	c.HoverAt(at[0], at[1])
	assert.Equal(t, 1, c.Hovered())
	c.HoverAt(0, 0)
	assert.Equal(t, -1, c.Hovered())
}

func TestFocusNextWraps(t *testing.T) {
	c := settled(t)
	c.FocusNext(1)
	assert.Equal(t, 0, c.Hovered())
	c.FocusNext(1)
	c.FocusNext(1)
	c.FocusNext(1)
	assert.Equal(t, 0, c.Hovered())
	c.FocusNext(-1)
	assert.Equal(t, 2, c.Hovered())
}

func TestViewDrawsLabelsAndTooltip(t *testing.T) {
	c := settled(t)
	out := ansi.Strip(c.View())
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 40)
	for _, l := range lines {
		assert.Equal(t, 120, ansi.StringWidth(l))
	}
	for _, want := range []string{"BTC", "ETH", "SOL", "+0.20", "+0.80", "-0.40"} {
		assert.Contains(t, out, want)
	}
	assert.NotContains(t, out, "Sentiment Score")

	c.Hover(2)
	out = ansi.Strip(c.View())
	assert.Contains(t, out, "Sentiment Score: -0.400")
	assert.Contains(t, out, "Bearish")
	assert.Contains(t, out, "╭")
}

func TestTooltipClampedInsideCanvas(t *testing.T) {
	c := settled(t)
	c.HoverAt(119, 0)
	c.tip.set(TooltipLines(c.Nodes()[0].CoinSummary), [2]int{119, 0})

	lines := strings.Split(ansi.Strip(c.View()), "\n")
	require.Len(t, lines, 40)
	assert.True(t, strings.HasSuffix(lines[0], "╮"), "top border hugs the right edge: %q", lines[0])
}

func TestViewEmptyAndUnsized(t *testing.T) {
	c := New(nil, testOptions(t))
	defer c.Close()
	assert.Equal(t, layout.Settled, c.State())
	assert.Equal(t, "", c.View())

	c.Resize(40, 5)
	assert.Contains(t, c.View(), EmptyMessage)
	assert.Equal(t, -1, c.HitTest(20, 2))
	assert.Nil(t, c.FocusNext(1))
}

func TestLayoutHeadless(t *testing.T) {
	before := LiveTooltips()
	nodes := Layout(testSummaries(), testOptions(t))
	require.Len(t, nodes, 3)
	assert.Empty(t, layout.Overlaps(nodes, 3, 1e-6))
	assert.Equal(t, before, LiveTooltips())
}

func TestWriteSVG(t *testing.T) {
	opts := testOptions(t)
	nodes := Layout(testSummaries(), opts)

	var buf bytes.Buffer
	require.NoError(t, WriteSVG(&buf, nodes, opts))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, `<svg xmlns="http://www.w3.org/2000/svg" width="700" height="400"`))
	assert.Equal(t, 3, strings.Count(out, "<circle"))
	assert.Contains(t, out, `fill="`+opts.Palette.Hex(0.8)+`"`)
	assert.Contains(t, out, "+0.20")
	assert.Contains(t, out, "News Articles: 3")

	dec := xml.NewDecoder(strings.NewReader(out))
	for {
		_, err := dec.Token()
		if err != nil {
			assert.Equal(t, "EOF", err.Error())
			break
		}
	}
}

func TestWriteSVGEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSVG(&buf, nil, testOptions(t)))
	assert.Contains(t, buf.String(), EmptyMessage)
	assert.NotContains(t, buf.String(), "<circle")
}

func TestNum(t *testing.T) {
	assert.Equal(t, "700", num(700))
	assert.Equal(t, "12.5", num(12.5))
	assert.Equal(t, "0", num(0))
	assert.Equal(t, "3.14", num(3.14159))
}
