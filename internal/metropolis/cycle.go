package metropolis

import (
	"fmt"
	"math/rand/v2"

	"github.com/san-kum/ising/internal/lattice"
	"github.com/san-kum/ising/internal/stats"
)

type Phase int

const (
	Equilibrating Phase = iota
	Measuring
	Done
)

func (p Phase) String() string {
	switch p {
	case Equilibrating:
		return "equilibrating"
	case Measuring:
		return "measuring"
	case Done:
		return "done"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Params are the cycle lengths and physical constants for one temperature.
type Params struct {
	FlipsToSkip         int
	MeasurementsPerT    int
	FlipsPerMeasurement int
	AttemptsPerFlip     int
	J                   float64
	K                   float64
}

// Reporter receives one signal per completed measurement.
type Reporter interface {
	Signal()
}

// Counters track proposal statistics over the whole cycle.
type Counters struct {
	Proposals int64
	Accepted  int64
}

// AcceptanceRatio is Accepted/Proposals, or 0 before any proposal.
func (c Counters) AcceptanceRatio() float64 {
	if c.Proposals == 0 {
		return 0
	}
	return float64(c.Accepted) / float64(c.Proposals)
}

// Cycle drives one lattice at a fixed temperature through equilibration and
// measurement. It owns the lattice and the random source; it is not safe for
// concurrent use.
type Cycle struct {
	lattice     *lattice.Lattice
	rng         *rand.Rand
	temperature float64
	params      Params
	phase       Phase
	samples     []stats.Sample
	counters    Counters
}

func NewCycle(l *lattice.Lattice, rng *rand.Rand, temperature float64, params Params) *Cycle {
	return &Cycle{
		lattice:     l,
		rng:         rng,
		temperature: temperature,
		params:      params,
		phase:       Equilibrating,
		samples:     make([]stats.Sample, 0, params.MeasurementsPerT),
	}
}

func (c *Cycle) Phase() Phase            { return c.phase }
func (c *Cycle) Temperature() float64    { return c.temperature }
func (c *Cycle) Counters() Counters      { return c.counters }
func (c *Cycle) Samples() []stats.Sample { return c.samples }

// Run executes the remaining phases to completion and returns the samples
// in the order they were taken. r may be nil.
func (c *Cycle) Run(r Reporter) []stats.Sample {
	for c.phase != Done {
		c.Advance(r)
	}
	return c.samples
}

// Advance performs the work of the current phase and moves to the next one.
// Calling it on a finished cycle is a no-op.
func (c *Cycle) Advance(r Reporter) {
	switch c.phase {
	case Equilibrating:
		for i := 0; i < c.params.FlipsToSkip; i++ {
			c.flipSlot()
		}
		c.phase = Measuring
	case Measuring:
		for m := 0; m < c.params.MeasurementsPerT; m++ {
			for i := 0; i < c.params.FlipsPerMeasurement; i++ {
				c.flipSlot()
			}
			c.samples = append(c.samples, stats.Sample{
				Energy: c.lattice.EnergyPerSite(c.params.J),
				Order:  c.lattice.OrderParameter(),
			})
			if r != nil {
				r.Signal()
			}
		}
		c.phase = Done
	}
}

// flipSlot proposes up to AttemptsPerFlip random flips and applies the first
// one accepted. It reports whether a flip happened.
func (c *Cycle) flipSlot() bool {
	for a := 0; a < c.params.AttemptsPerFlip; a++ {
		idx := c.lattice.RandomIndex()
		dE := c.lattice.EnergyDelta(idx, c.params.J)
		p := FlipProbability(dE, c.temperature, c.params.K)
		c.counters.Proposals++

		if c.rng.Float64() < p {
			c.lattice.Flip(idx)
			c.counters.Accepted++
			return true
		}
	}
	return false
}
