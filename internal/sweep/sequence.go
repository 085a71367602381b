package sweep

import (
	"cmp"
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/ising/internal/stats"
)

// sequenceTolerance absorbs rounding in (hi-lo)/step so that an upper bound
// lying on the grid is included.
const sequenceTolerance = 1e-9

// Temperatures returns lo, lo+step, ... up to hi in ascending order. The
// last point never exceeds hi. An empty slice is returned for step <= 0 or
// hi < lo.
func Temperatures(lo, hi, step float64) []float64 {
	if !(step > 0) || !(hi >= lo) {
		return nil
	}

	n := int(math.Floor((hi-lo)/step+sequenceTolerance)) + 1
	ts := make([]float64, n)
	if n == 1 {
		ts[0] = lo
		return ts
	}

	floats.Span(ts, lo, lo+float64(n-1)*step)
	if ts[n-1] > hi {
		ts[n-1] = hi
	}
	return ts
}

// CompareTemperatures orders a before b ascending. Any comparison involving
// NaN reports "less" instead of failing.
func CompareTemperatures(a, b float64) int {
	if math.IsNaN(a) || math.IsNaN(b) {
		return -1
	}
	return cmp.Compare(a, b)
}

// SortRecords sorts records ascending by temperature.
func SortRecords(records []stats.Record) {
	slices.SortStableFunc(records, func(a, b stats.Record) int {
		return CompareTemperatures(a.T, b.T)
	})
}
