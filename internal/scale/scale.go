// Package scale maps data values onto visual channels: bubble radius and
// bubble color.
package scale

import (
	"fmt"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// Sqrt maps a value to an output range through its square root, so that
// the area of a circle drawn with the result grows linearly with the value.
// Values are not clamped; callers pass values inside Domain.
type Sqrt struct {
	Domain [2]float64
	Range  [2]float64
}

// NewSqrt builds a Sqrt scale over [lo, hi] onto [rlo, rhi].
func NewSqrt(lo, hi, rlo, rhi float64) Sqrt {
	return Sqrt{Domain: [2]float64{lo, hi}, Range: [2]float64{rlo, rhi}}
}

// At returns the scaled value of v.
// A degenerate domain (lo == hi) maps every value to the middle of the range.
func (s Sqrt) At(v float64) float64 {
	d0, d1 := math.Sqrt(math.Max(s.Domain[0], 0)), math.Sqrt(math.Max(s.Domain[1], 0))
	if d1 == d0 {
		return (s.Range[0] + s.Range[1]) / 2
	}
	t := (math.Sqrt(math.Max(v, 0)) - d0) / (d1 - d0)
	return s.Range[0] + t*(s.Range[1]-s.Range[0])
}

// Invert returns the domain value that At maps to r.
func (s Sqrt) Invert(r float64) float64 {
	d0, d1 := math.Sqrt(math.Max(s.Domain[0], 0)), math.Sqrt(math.Max(s.Domain[1], 0))
	if s.Range[1] == s.Range[0] {
		return s.Domain[0]
	}
	t := (r - s.Range[0]) / (s.Range[1] - s.Range[0])
	root := d0 + t*(d1-d0)
	return root * root
}

// Diverging interpolates linearly in RGB between three color stops placed at
// Domain[0], Domain[1] and Domain[2]. Inputs outside the domain are clamped.
type Diverging struct {
	Domain [3]float64
	Stops  [3]colorful.Color
}

// NewDiverging parses three hex colors into a scale over [-1, 0, 1].
func NewDiverging(low, mid, high string) (Diverging, error) {
	var d Diverging
	d.Domain = [3]float64{-1, 0, 1}
	for i, hex := range []string{low, mid, high} {
		c, err := colorful.Hex(hex)
		if err != nil {
			return Diverging{}, fmt.Errorf("parse color %q: %w", hex, err)
		}
		d.Stops[i] = c
	}
	return d, nil
}

// MustDiverging is NewDiverging for compile-time constant palettes.
func MustDiverging(low, mid, high string) Diverging {
	d, err := NewDiverging(low, mid, high)
	if err != nil {
		panic(err)
	}
	return d
}

// At returns the color for v.
func (d Diverging) At(v float64) colorful.Color {
	if math.IsNaN(v) {
		return d.Stops[1]
	}
	switch {
	case v <= d.Domain[0]:
		return d.Stops[0]
	case v >= d.Domain[2]:
		return d.Stops[2]
	case v < d.Domain[1]:
		t := (v - d.Domain[0]) / (d.Domain[1] - d.Domain[0])
		return d.Stops[0].BlendRgb(d.Stops[1], t).Clamped()
	default:
		t := (v - d.Domain[1]) / (d.Domain[2] - d.Domain[1])
		return d.Stops[1].BlendRgb(d.Stops[2], t).Clamped()
	}
}

// Hex returns At(v) as "#rrggbb".
func (d Diverging) Hex(v float64) string {
	return d.At(v).Hex()
}

// Fade blends c toward bg so that c is drawn at the given opacity over bg.
func Fade(c, bg colorful.Color, opacity float64) colorful.Color {
	opacity = math.Max(0, math.Min(1, opacity))
	return bg.BlendRgb(c, opacity).Clamped()
}
