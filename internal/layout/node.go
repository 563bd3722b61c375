// Package layout places coin bubbles on a 2D canvas without overlap.
//
// Positions come from an iterative velocity-based relaxation in the style
// of d3-force: pairwise charge, centering, collision and weak x/y pulls,
// with alpha cooling the system until it settles. Step is a pure function
// of its inputs so the physics can be tested without any renderer.
package layout

import (
	"math/rand/v2"

	"github.com/abelbrown/chainpulse/internal/aggregate"
	"github.com/abelbrown/chainpulse/internal/scale"
)

// Node is one bubble. X, Y, VX and VY belong to the simulation while it
// runs; renderers get copies.
type Node struct {
	aggregate.CoinSummary

	Radius float64
	X, Y   float64
	VX, VY float64
}

// SizeScale returns the square-root radius scale over the NewsCount extent
// of summaries.
func SizeScale(summaries []aggregate.CoinSummary, rmin, rmax float64) scale.Sqrt {
	lo, hi, ok := aggregate.Extent(summaries)
	if !ok {
		return scale.NewSqrt(0, 0, rmin, rmax)
	}
	return scale.NewSqrt(float64(lo), float64(hi), rmin, rmax)
}

// NewNodes builds a fresh node per summary with its radius from size and a
// position drawn uniformly from [0,width) x [0,height).
func NewNodes(summaries []aggregate.CoinSummary, size scale.Sqrt, width, height float64, rng *rand.Rand) []Node {
	nodes := make([]Node, len(summaries))
	for i, s := range summaries {
		r := size.At(float64(s.NewsCount))
		if r <= 0 {
			r = 1
		}
		nodes[i] = Node{
			CoinSummary: s,
			Radius:      r,
			X:           rng.Float64() * width,
			Y:           rng.Float64() * height,
		}
	}
	return nodes
}

// Copy returns a deep-enough copy of nodes for read-only consumers.
func Copy(nodes []Node) []Node {
	out := make([]Node, len(nodes))
	copy(out, nodes)
	return out
}
