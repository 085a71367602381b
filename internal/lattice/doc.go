// Package lattice implements a periodic square grid of two-state spins.
//
// A [Lattice] owns its spins and the random source used to pick cells. It is
// not safe for concurrent use; every sweep worker creates its own:
//
//	rng := rand.New(rand.NewPCG(seed, stream))
//	l, _ := lattice.New(50, rng)
//	idx := l.RandomIndex()
//	if l.EnergyDelta(idx, 1.0) <= 0 {
//		l.Flip(idx)
//	}
//
// Energies follow H = -J Σ s_i s_j over nearest-neighbour pairs with
// wrap-around boundaries.
package lattice
