// Package stats reduces the samples taken at one temperature into the
// thermodynamic observables of a sweep.
package stats

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

var (
	// ErrUnknownSeries indicates a susceptibility source name that is not recognised.
	ErrUnknownSeries = errors.New("stats: unknown sample series")

	// ErrUnknownScaling indicates a susceptibility scaling name that is not recognised.
	ErrUnknownScaling = errors.New("stats: unknown scaling")
)

// Sample is one measurement: energy per site and order parameter.
type Sample struct {
	Energy float64
	Order  float64
}

// Record is the reduced result for one temperature.
type Record struct {
	T  float64 `json:"t" yaml:"t"`
	DE float64 `json:"dE" yaml:"dE"`
	I  float64 `json:"I" yaml:"I"`
	X  float64 `json:"X" yaml:"X"`
}

func (r Record) String() string {
	return fmt.Sprintf("T=%.2f dE=%.5f I=%.5f X=%.10f", r.T, r.DE, r.I, r.X)
}

// Series selects which sampled quantity a fluctuation estimate is taken over.
type Series int

const (
	EnergySeries Series = iota
	OrderSeries
)

func (s Series) String() string {
	switch s {
	case EnergySeries:
		return "energy"
	case OrderSeries:
		return "order"
	default:
		return fmt.Sprintf("series(%d)", int(s))
	}
}

func ParseSeries(name string) (Series, error) {
	switch name {
	case "energy", "":
		return EnergySeries, nil
	case "order":
		return OrderSeries, nil
	default:
		return 0, fmt.Errorf("%w: %q (expected energy|order)", ErrUnknownSeries, name)
	}
}

// Scaling selects how a variance is normalised.
type Scaling int

const (
	// Raw reports the population variance unchanged.
	Raw Scaling = iota
	// Thermal divides the population variance by k*T.
	Thermal
)

func (s Scaling) String() string {
	switch s {
	case Raw:
		return "raw"
	case Thermal:
		return "thermal"
	default:
		return fmt.Sprintf("scaling(%d)", int(s))
	}
}

func ParseScaling(name string) (Scaling, error) {
	switch name {
	case "raw", "":
		return Raw, nil
	case "thermal":
		return Thermal, nil
	default:
		return 0, fmt.Errorf("%w: %q (expected raw|thermal)", ErrUnknownScaling, name)
	}
}

// Strategy computes the susceptibility-like quantity X for one temperature.
type Strategy interface {
	Name() string
	Susceptibility(t, k float64, energies, orders []float64) float64
}

// Fluctuation derives X from the population variance of one sample series.
type Fluctuation struct {
	Source  Series
	Scaling Scaling
}

func NewStrategy(source, scaling string) (Strategy, error) {
	src, err := ParseSeries(source)
	if err != nil {
		return nil, err
	}
	sc, err := ParseScaling(scaling)
	if err != nil {
		return nil, err
	}
	return Fluctuation{Source: src, Scaling: sc}, nil
}

func (f Fluctuation) Name() string {
	return f.Source.String() + "/" + f.Scaling.String()
}

func (f Fluctuation) Susceptibility(t, k float64, energies, orders []float64) float64 {
	series := energies
	if f.Source == OrderSeries {
		series = orders
	}
	v := PopVariance(series)
	if f.Scaling == Thermal {
		v /= k * t
	}
	return v
}

// PopVariance is the population variance of x. Fewer than two values carry
// no fluctuation, so the result is 0.
func PopVariance(x []float64) float64 {
	if len(x) < 2 {
		return 0
	}
	return stat.PopVariance(x, nil)
}

// HeatCapacity is Var(E)/(k*T^2).
func HeatCapacity(t, k float64, energies []float64) float64 {
	return PopVariance(energies) / (k * math.Pow(t, 2))
}

type Collector struct {
	k        float64
	strategy Strategy
}

// NewCollector returns a Collector using k as the thermal constant. A nil
// strategy selects the raw energy fluctuation.
func NewCollector(k float64, strategy Strategy) *Collector {
	if strategy == nil {
		strategy = Fluctuation{Source: EnergySeries, Scaling: Raw}
	}
	return &Collector{k: k, strategy: strategy}
}

func (c *Collector) Strategy() Strategy { return c.strategy }

// Reduce turns the samples taken at temperature t into a Record.
func (c *Collector) Reduce(t float64, samples []Sample) Record {
	energies := make([]float64, len(samples))
	orders := make([]float64, len(samples))
	for i, s := range samples {
		energies[i] = s.Energy
		orders[i] = s.Order
	}

	rec := Record{T: t}
	if len(samples) == 0 {
		return rec
	}
	rec.I = stat.Mean(orders, nil)
	rec.DE = HeatCapacity(t, c.k, energies)
	rec.X = c.strategy.Susceptibility(t, c.k, energies, orders)
	return rec
}
