// Package metropolis implements the Metropolis acceptance rule and the
// per-temperature equilibration/measurement cycle built on it.
package metropolis

import "math"

// FlipProbability returns min(1, exp(-dE/(k*t))). Non-increasing moves
// (dE <= 0) are always accepted. t and k must be positive.
func FlipProbability(dE, t, k float64) float64 {
	if dE <= 0 {
		return 1
	}
	return math.Min(1, math.Exp(-dE/(k*t)))
}
