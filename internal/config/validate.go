package config

import (
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/ising/internal/stats"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("config: invalid configuration")

// ValidationError names the offending field.
type ValidationError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config: %s=%v: %s", e.Field, e.Value, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalid
}

func invalid(field string, value any, reason string) error {
	return &ValidationError{Field: field, Value: value, Reason: reason}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Validate rejects configurations the simulation core cannot run: empty
// lattices, non-positive temperatures or thermal constant, and empty
// measurement or attempt budgets.
func (c *Config) Validate() error {
	t := c.Temperature
	if !finite(t.Min) || t.Min <= 0 {
		return invalid("temperature.min", t.Min, "must be positive")
	}
	if !finite(t.Max) || t.Max < t.Min {
		return invalid("temperature.max", t.Max, "must be at least temperature.min")
	}
	if !finite(t.Step) || t.Step <= 0 {
		return invalid("temperature.step", t.Step, "must be positive")
	}
	if c.LatticeSize < 1 {
		return invalid("lattice_size", c.LatticeSize, "must be at least 1")
	}
	if c.FlipsToSkip < 0 {
		return invalid("flips_to_skip", c.FlipsToSkip, "must not be negative")
	}
	if c.MeasurementsPerT < 1 {
		return invalid("measurements_per_t", c.MeasurementsPerT, "must be at least 1")
	}
	if c.FlipsPerMeasurement < 0 {
		return invalid("flips_per_measurement", c.FlipsPerMeasurement, "must not be negative")
	}
	if c.AttemptsPerFlip < 1 {
		return invalid("attempts_per_flip", c.AttemptsPerFlip, "must be at least 1")
	}
	if !finite(c.J) {
		return invalid("j", c.J, "must be finite")
	}
	if !finite(c.K) || c.K <= 0 {
		return invalid("k", c.K, "must be positive")
	}
	if c.Workers < 0 {
		return invalid("workers", c.Workers, "must not be negative")
	}
	if _, err := stats.NewStrategy(c.Observables.SusceptibilitySource, c.Observables.SusceptibilityScaling); err != nil {
		return &ValidationError{Field: "observables", Value: c.Observables, Reason: err.Error()}
	}
	return nil
}
