package layout

import (
	"fmt"
	"math"
)

// State is the lifecycle of a Simulation.
type State int

const (
	Uninitialized State = iota
	Running
	Settled
	Discarded
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Running:
		return "running"
	case Settled:
		return "settled"
	case Discarded:
		return "discarded"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

const (
	defaultAlphaMin = 0.001
	// settleTicks is how many ticks alpha takes to cool from 1 to alphaMin.
	settleTicks = 300
	// overlapPasses bounds the final overlap resolution.
	overlapPasses = 500
)

// Simulation drives Step over a node set until alpha cools below AlphaMin.
// It is not safe for concurrent use; the owner ticks it from one goroutine.
type Simulation struct {
	nodes  []Node
	forces Forces

	alpha       float64
	alphaMin    float64
	alphaDecay  float64
	alphaTarget float64

	state State
	ticks int
}

// NewSimulation takes ownership of nodes. The simulation starts
// Uninitialized; call Start before ticking.
func NewSimulation(nodes []Node, f Forces) *Simulation {
	return &Simulation{
		nodes:      nodes,
		forces:     f,
		alphaMin:   defaultAlphaMin,
		alphaDecay: 1 - math.Pow(defaultAlphaMin, 1.0/settleTicks),
	}
}

// Start moves an Uninitialized simulation to Running with alpha 1.
func (s *Simulation) Start() {
	if s.state != Uninitialized {
		return
	}
	s.alpha = 1
	s.state = Running
	if len(s.nodes) == 0 {
		s.finish()
	}
}

// Tick advances one step. Returns true while the simulation is still
// running afterwards.
func (s *Simulation) Tick() bool {
	if s.state != Running {
		return false
	}
	s.alpha += (s.alphaTarget - s.alpha) * s.alphaDecay
	Step(s.nodes, s.forces, s.alpha)
	s.ticks++
	if s.alpha < s.alphaMin {
		s.finish()
		return false
	}
	return true
}

// Settle ticks until the simulation settles or maxTicks steps have run,
// then forces it to Settled. Returns the number of ticks executed.
func (s *Simulation) Settle(maxTicks int) int {
	if s.state == Uninitialized {
		s.Start()
	}
	n := 0
	for n < maxTicks && s.Tick() {
		n++
	}
	if s.state == Running {
		s.finish()
	}
	return n
}

// Discard stops the simulation for good. Further ticks are no-ops.
func (s *Simulation) Discard() {
	s.state = Discarded
}

// State reports the lifecycle state.
func (s *Simulation) State() State { return s.state }

// Alpha is the current temperature.
func (s *Simulation) Alpha() float64 { return s.alpha }

// Ticks is the number of steps executed so far.
func (s *Simulation) Ticks() int { return s.ticks }

// Forces returns the configuration the simulation runs with.
func (s *Simulation) Forces() Forces { return s.forces }

// Nodes returns a copy of the current node positions.
func (s *Simulation) Nodes() []Node {
	return Copy(s.nodes)
}

// NodeAt returns a copy of node i.
func (s *Simulation) NodeAt(i int) Node { return s.nodes[i] }

// Len is the number of nodes.
func (s *Simulation) Len() int { return len(s.nodes) }

// finish enforces the at-rest separation and freezes the nodes.
func (s *Simulation) finish() {
	ResolveOverlaps(s.nodes, s.forces.Padding, overlapPasses)
	for i := range s.nodes {
		s.nodes[i].VX = 0
		s.nodes[i].VY = 0
	}
	s.state = Settled
}
