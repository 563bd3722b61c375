package layout

import "math"

// Forces configures one relaxation step.
type Forces struct {
	Width, Height float64

	// Charge is the per-node many-body strength. Negative repels.
	Charge float64
	// DistanceMin bounds the charge at very short range.
	DistanceMin float64
	// CenterStrength scales the translation toward the canvas center.
	CenterStrength float64
	// Padding is added to each radius for collision: two nodes collide when
	// closer than r_i + r_j + 2*Padding.
	Padding float64
	// CollideStrength and CollideIterations tune the collision pass.
	CollideStrength   float64
	CollideIterations int
	// XStrength and YStrength pull every node toward the center lines.
	XStrength, YStrength float64
	// VelocityDecay is the friction applied each step, in [0,1].
	VelocityDecay float64
}

// DefaultForces returns the dashboard's force configuration for a canvas.
func DefaultForces(width, height float64) Forces {
	return Forces{
		Width:             width,
		Height:            height,
		Charge:            -300,
		DistanceMin:       1,
		CenterStrength:    1,
		Padding:           3,
		CollideStrength:   1,
		CollideIterations: 1,
		XStrength:         0.1,
		YStrength:         0.1,
		VelocityDecay:     0.4,
	}
}

// Step advances nodes by one tick at the given alpha. It applies, in order,
// charge, centering, collision and the x/y pulls, then integrates velocity.
// Only the passed slice is mutated.
func Step(nodes []Node, f Forces, alpha float64) {
	if len(nodes) == 0 {
		return
	}
	applyCharge(nodes, f, alpha)
	applyCenter(nodes, f)
	for i := 0; i < max(f.CollideIterations, 1); i++ {
		applyCollide(nodes, f)
	}
	applyPull(nodes, f, alpha)

	keep := 1 - f.VelocityDecay
	for i := range nodes {
		n := &nodes[i]
		n.VX *= keep
		n.VY *= keep
		n.X += n.VX
		n.Y += n.VY
	}
}

func applyCharge(nodes []Node, f Forces, alpha float64) {
	dmin2 := f.DistanceMin * f.DistanceMin
	for i := range nodes {
		ni := &nodes[i]
		for j := range nodes {
			if i == j {
				continue
			}
			x := nodes[j].X - ni.X
			y := nodes[j].Y - ni.Y
			if x == 0 {
				x = jiggle(i, j, 0)
			}
			if y == 0 {
				y = jiggle(i, j, 1)
			}
			l := x*x + y*y
			if l < dmin2 {
				l = math.Sqrt(dmin2 * l)
			}
			w := f.Charge * alpha / l
			ni.VX += x * w
			ni.VY += y * w
		}
	}
}

func applyCenter(nodes []Node, f Forces) {
	var sx, sy float64
	for _, n := range nodes {
		sx += n.X
		sy += n.Y
	}
	n := float64(len(nodes))
	dx := (sx/n - f.Width/2) * f.CenterStrength
	dy := (sy/n - f.Height/2) * f.CenterStrength
	for i := range nodes {
		nodes[i].X -= dx
		nodes[i].Y -= dy
	}
}

// applyCollide pushes apart pairs whose predicted positions (x + vx) are
// closer than their padded radii, sharing the push by relative mass.
func applyCollide(nodes []Node, f Forces) {
	for i := range nodes {
		ni := &nodes[i]
		ri := ni.Radius + f.Padding
		ri2 := ri * ri
		xi := ni.X + ni.VX
		yi := ni.Y + ni.VY

		for j := i + 1; j < len(nodes); j++ {
			nj := &nodes[j]
			rj := nj.Radius + f.Padding
			r := ri + rj
			x := xi - nj.X - nj.VX
			y := yi - nj.Y - nj.VY
			l := x*x + y*y
			if l >= r*r {
				continue
			}
			if x == 0 {
				x = jiggle(i, j, 0)
				l += x * x
			}
			if y == 0 {
				y = jiggle(i, j, 1)
				l += y * y
			}
			l = math.Sqrt(l)
			l = (r - l) / l * f.CollideStrength
			x *= l
			y *= l
			rj2 := rj * rj
			k := rj2 / (ri2 + rj2)
			ni.VX += x * k
			ni.VY += y * k
			nj.VX -= x * (1 - k)
			nj.VY -= y * (1 - k)
		}
	}
}

func applyPull(nodes []Node, f Forces, alpha float64) {
	cx, cy := f.Width/2, f.Height/2
	for i := range nodes {
		n := &nodes[i]
		n.VX += (cx - n.X) * f.XStrength * alpha
		n.VY += (cy - n.Y) * f.YStrength * alpha
	}
}

// jiggle breaks exact coincidences with a tiny offset that depends only on
// the pair and axis, so Step stays deterministic. jiggle(i, j) is the
// negation of jiggle(j, i): the two nodes of a pair are nudged apart.
func jiggle(i, j, axis int) float64 {
	lo, hi := min(i, j), max(i, j)
	v := float64((lo*31+hi*17+axis*5)%7+1) * 1e-7
	if i > j {
		return -v
	}
	return v
}

// Overlap is a pair of nodes closer than their required separation.
type Overlap struct {
	I, J     int
	Distance float64
	Required float64
}

// Overlaps lists every pair whose centers are closer than
// r_i + r_j + 2*padding - tolerance.
func Overlaps(nodes []Node, padding, tolerance float64) []Overlap {
	var out []Overlap
	for i := range nodes {
		for j := i + 1; j < len(nodes); j++ {
			d := math.Hypot(nodes[i].X-nodes[j].X, nodes[i].Y-nodes[j].Y)
			req := nodes[i].Radius + nodes[j].Radius + 2*padding
			if d < req-tolerance {
				out = append(out, Overlap{I: i, J: j, Distance: d, Required: req})
			}
		}
	}
	return out
}

// ResolveOverlaps moves overlapping pairs apart along their center line until
// no pair violates the padded separation or maxPasses is reached. Returns the
// number of passes that moved something.
func ResolveOverlaps(nodes []Node, padding float64, maxPasses int) int {
	const slack = 1e-7
	passes := 0
	for p := 0; p < maxPasses; p++ {
		moved := false
		for i := range nodes {
			for j := i + 1; j < len(nodes); j++ {
				a, b := &nodes[i], &nodes[j]
				req := a.Radius + b.Radius + 2*padding
				dx := b.X - a.X
				dy := b.Y - a.Y
				d := math.Hypot(dx, dy)
				if d >= req {
					continue
				}
				var ux, uy float64
				if d == 0 {
					// Coincident centers: split along a pair-dependent angle.
					angle := float64(i*7+j*13) * 0.61803398875 * 2 * math.Pi
					ux, uy = math.Cos(angle), math.Sin(angle)
				} else {
					ux, uy = dx/d, dy/d
				}
				push := (req-d)/2 + slack
				a.X -= ux * push
				a.Y -= uy * push
				b.X += ux * push
				b.Y += uy * push
				moved = true
			}
		}
		if !moved {
			break
		}
		passes++
	}
	return passes
}
