package chart

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/abelbrown/chainpulse/internal/layout"
	"github.com/abelbrown/chainpulse/internal/scale"
	"github.com/abelbrown/chainpulse/internal/sentiment"
)

// EmptyMessage is shown instead of the chart when there are no coins.
const EmptyMessage = "No sentiment data available"

const (
	labelColor  = "#ffffff"
	tooltipFg   = "#ffffff"
	tooltipBg   = "#000000"
	fitMarginPx = 4
	cellAspect  = 2 // a cell is this many times taller than wide
)

// viewport maps canvas pixels onto terminal cells.
type viewport struct {
	cols, rows int
	x0, y0     float64 // px at the top-left corner of cell (0,0)
	cw, ch     float64 // px per cell
}

func (v viewport) empty() bool { return v.cols <= 0 || v.rows <= 0 || v.cw <= 0 }

// px is the canvas point at the center of a cell.
func (v viewport) px(col, row int) (x, y float64) {
	return v.x0 + (float64(col)+0.5)*v.cw, v.y0 + (float64(row)+0.5)*v.ch
}

// cell is the cell containing a canvas point.
func (v viewport) cell(x, y float64) (col, row int) {
	return int(math.Floor((x - v.x0) / v.cw)), int(math.Floor((y - v.y0) / v.ch))
}

func (v viewport) center(n layout.Node) [2]int {
	if v.empty() {
		return [2]int{}
	}
	col, row := v.cell(n.X, n.Y)
	return [2]int{col, row}
}

// Resize sets the terminal area the chart draws into.
func (c *Chart) Resize(cols, rows int) {
	c.view.cols, c.view.rows = max(cols, 0), max(rows, 0)
	c.refit()
}

// refit frames the canvas plus every bubble at its hovered size, so
// bubbles pushed past the canvas edge stay visible.
func (c *Chart) refit() {
	v := &c.view
	if v.cols <= 0 || v.rows <= 0 {
		v.cw = 0
		return
	}
	minX, minY := 0.0, 0.0
	maxX, maxY := c.opts.Width, c.opts.Height
	for _, n := range c.sim.Nodes() {
		r := n.Radius * hoverScale
		minX = math.Min(minX, n.X-r)
		minY = math.Min(minY, n.Y-r)
		maxX = math.Max(maxX, n.X+r)
		maxY = math.Max(maxY, n.Y+r)
	}
	minX -= fitMarginPx
	minY -= fitMarginPx
	maxX += fitMarginPx
	maxY += fitMarginPx

	bw, bh := maxX-minX, maxY-minY
	v.cw = math.Max(bw/float64(v.cols), bh/(cellAspect*float64(v.rows)))
	v.ch = cellAspect * v.cw
	v.x0 = minX - (float64(v.cols)*v.cw-bw)/2
	v.y0 = minY - (float64(v.rows)*v.ch-bh)/2
}

// HitTest returns the topmost bubble covering the cell, or -1.
func (c *Chart) HitTest(col, row int) int {
	if c.closed || c.view.empty() || col < 0 || row < 0 || col >= c.view.cols || row >= c.view.rows {
		return -1
	}
	x, y := c.view.px(col, row)
	nodes := c.sim.Nodes()
	for i := len(nodes) - 1; i >= 0; i-- {
		n := nodes[i]
		if math.Hypot(x-n.X, y-n.Y) <= c.radius(i, n) {
			return i
		}
	}
	return -1
}

type cell struct {
	text  string
	fg    string
	bg    string
	bold  bool
	owner int
	skip  bool // right half of a wide rune
}

type grid [][]cell

func newGrid(cols, rows int, bg string) grid {
	g := make(grid, rows)
	for r := range g {
		g[r] = make([]cell, cols)
		for c := range g[r] {
			g[r][c] = cell{text: " ", bg: bg, owner: -1}
		}
	}
	return g
}

// paint writes s from (col,row) rightwards. With owner >= 0 only cells of
// that bubble are written. Returns the number of columns used.
func (g grid) paint(row, col int, s, fg string, bold bool, owner int) int {
	if row < 0 || row >= len(g) {
		return 0
	}
	line := g[row]
	x, last := col, -1
	for _, r := range s {
		w := runewidth.RuneWidth(r)
		if w == 0 {
			if last >= 0 {
				line[last].text += string(r)
			}
			continue
		}
		if x < 0 || x+w > len(line) {
			x += w
			continue
		}
		if owner >= 0 && (line[x].owner != owner || (w == 2 && line[x+1].owner != owner)) {
			x += w
			continue
		}
		line[x].text, line[x].fg, line[x].bold, line[x].skip = string(r), fg, bold, false
		if w == 2 {
			line[x+1].skip = true
			line[x+1].bg = line[x].bg
		}
		last = x
		x += w
	}
	return x - col
}

func (g grid) fill(row, col, width int, fg, bg string) {
	if row < 0 || row >= len(g) {
		return
	}
	for x := max(col, 0); x < min(col+width, len(g[row])); x++ {
		g[row][x] = cell{text: " ", fg: fg, bg: bg, owner: -1}
	}
}

func (g grid) render() string {
	styles := map[cell]lipgloss.Style{}
	var b strings.Builder
	for r, line := range g {
		if r > 0 {
			b.WriteByte('\n')
		}
		var run strings.Builder
		var key cell
		flush := func() {
			if run.Len() == 0 {
				return
			}
			st, ok := styles[key]
			if !ok {
				st = lipgloss.NewStyle().Bold(key.bold)
				if key.fg != "" {
					st = st.Foreground(lipgloss.Color(key.fg))
				}
				if key.bg != "" {
					st = st.Background(lipgloss.Color(key.bg))
				}
				styles[key] = st
			}
			b.WriteString(st.Render(run.String()))
			run.Reset()
		}
		for _, cl := range line {
			if cl.skip {
				continue
			}
			k := cell{fg: cl.fg, bg: cl.bg, bold: cl.bold}
			if k != key {
				flush()
				key = k
			}
			run.WriteString(cl.text)
		}
		flush()
	}
	return b.String()
}

// View draws the chart into the area set by Resize: filled bubbles with
// ticker and signed score labels, then the tooltip on top.
func (c *Chart) View() string {
	v := c.view
	if v.cols <= 0 || v.rows <= 0 {
		return ""
	}
	if c.closed || c.Len() == 0 {
		return lipgloss.Place(v.cols, v.rows, lipgloss.Center, lipgloss.Center, EmptyMessage)
	}

	bg := c.opts.Background
	g := newGrid(v.cols, v.rows, bg.Hex())
	nodes := c.sim.Nodes()

	for i, n := range nodes {
		r := c.radius(i, n)
		fill := scale.Fade(c.opts.Palette.At(n.SentimentScore), bg, c.anims[i].opacity).Hex()
		c0, r0 := v.cell(n.X-r, n.Y-r)
		c1, r1 := v.cell(n.X+r, n.Y+r)
		for row := max(r0, 0); row <= min(r1, v.rows-1); row++ {
			for col := max(c0, 0); col <= min(c1, v.cols-1); col++ {
				x, y := v.px(col, row)
				if math.Hypot(x-n.X, y-n.Y) <= r {
					g[row][col] = cell{text: " ", bg: fill, owner: i}
				}
			}
		}
	}

	for i, n := range nodes {
		r := c.radius(i, n)
		at := v.center(n)
		widthCells := 2 * r / v.cw
		if w := runewidth.StringWidth(n.Ticker); float64(w) <= widthCells-1 {
			g.paint(at[1], at[0]-w/2, n.Ticker, labelColor, true, i)
		}
		if r/v.ch >= 1.5 {
			score := sentiment.Signed(n.SentimentScore, 2)
			w := runewidth.StringWidth(score)
			if float64(w) <= widthCells-2 {
				g.paint(at[1]+1, at[0]-w/2, score, labelColor, false, i)
			}
		}
	}

	if c.tip.visible {
		c.paintTooltip(g)
	}
	return g.render()
}

// paintTooltip draws the tooltip box at pointer + (2, -1), kept inside
// the canvas.
func (c *Chart) paintTooltip(g grid) {
	cols, rows := c.view.cols, c.view.rows
	inner := 0
	for _, l := range c.tip.lines {
		inner = max(inner, runewidth.StringWidth(l))
	}
	inner = min(inner, cols-4)
	if inner <= 0 {
		return
	}
	w, h := inner+4, len(c.tip.lines)+2
	x := min(max(c.tip.at[0]+2, 0), cols-w)
	y := min(max(c.tip.at[1]-1, 0), rows-h)
	x, y = max(x, 0), max(y, 0)

	border := func(row int, left, mid, right string) {
		g.fill(row, x, w, tooltipFg, tooltipBg)
		g.paint(row, x, left+strings.Repeat(mid, w-2)+right, tooltipFg, false, -1)
	}
	border(y, "╭", "─", "╮")
	for i, l := range c.tip.lines {
		row := y + 1 + i
		if row >= rows {
			return
		}
		g.fill(row, x, w, tooltipFg, tooltipBg)
		g.paint(row, x, "│", tooltipFg, false, -1)
		g.paint(row, x+2, runewidth.Truncate(l, inner, "…"), tooltipFg, i == 0, -1)
		g.paint(row, x+w-1, "│", tooltipFg, false, -1)
	}
	if y+h-1 < rows {
		border(y+h-1, "╰", "─", "╯")
	}
}
