package lattice

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
)

// ErrInvalidSize is returned by New for lattices smaller than 1x1.
var ErrInvalidSize = errors.New("lattice: size must be at least 1")

// Spin values a cell can hold.
const (
	Up   int8 = 1
	Down int8 = -1
)

// Index addresses one cell.
type Index struct {
	Row int
	Col int
}

func (i Index) String() string {
	return fmt.Sprintf("(%d,%d)", i.Row, i.Col)
}

type Lattice struct {
	size  int
	spins []int8
	rng   *rand.Rand
}

// New allocates a size x size lattice with every spin drawn uniformly from
// {Up, Down} using rng. The lattice keeps rng for RandomIndex.
func New(size int, rng *rand.Rand) (*Lattice, error) {
	if size < 1 {
		return nil, fmt.Errorf("%w, got %d", ErrInvalidSize, size)
	}

	l := &Lattice{
		size:  size,
		spins: make([]int8, size*size),
		rng:   rng,
	}
	for i := range l.spins {
		if rng.IntN(2) == 0 {
			l.spins[i] = Up
		} else {
			l.spins[i] = Down
		}
	}
	return l, nil
}

func (l *Lattice) Size() int  { return l.size }
func (l *Lattice) Sites() int { return len(l.spins) }

func (l *Lattice) Spin(idx Index) int8 {
	return l.spins[l.offset(idx)]
}

// RandomIndex returns a cell chosen uniformly over all size*size cells.
func (l *Lattice) RandomIndex() Index {
	n := l.rng.IntN(len(l.spins))
	return Index{Row: n / l.size, Col: n % l.size}
}

// EnergyDelta is the energy change flipping idx would cause:
// 2 * J * s * (sum of the four periodic neighbours). The lattice is not
// modified.
func (l *Lattice) EnergyDelta(idx Index, j float64) float64 {
	s := l.spins[l.offset(idx)]
	return 2 * j * float64(s) * float64(l.neighbourSum(idx))
}

func (l *Lattice) Flip(idx Index) {
	off := l.offset(idx)
	l.spins[off] = -l.spins[off]
}

// EnergyPerSite sums -J * s_i * s_j over every nearest-neighbour bond once
// (right and down neighbours of each cell) and divides by the site count.
func (l *Lattice) EnergyPerSite(j float64) float64 {
	bonds := 0
	for r := 0; r < l.size; r++ {
		for c := 0; c < l.size; c++ {
			s := int(l.spins[r*l.size+c])
			right := int(l.spins[r*l.size+l.wrap(c+1)])
			down := int(l.spins[l.wrap(r+1)*l.size+c])
			bonds += s * (right + down)
		}
	}
	return -j * float64(bonds) / float64(len(l.spins))
}

// Magnetization is the signed mean spin, in [-1, 1].
func (l *Lattice) Magnetization() float64 {
	sum := 0
	for _, s := range l.spins {
		sum += int(s)
	}
	return float64(sum) / float64(len(l.spins))
}

// OrderParameter is |Magnetization()|, in [0, 1].
func (l *Lattice) OrderParameter() float64 {
	return math.Abs(l.Magnetization())
}

func (l *Lattice) neighbourSum(idx Index) int {
	r, c := idx.Row, idx.Col
	return int(l.spins[l.wrap(r-1)*l.size+c]) +
		int(l.spins[l.wrap(r+1)*l.size+c]) +
		int(l.spins[r*l.size+l.wrap(c-1)]) +
		int(l.spins[r*l.size+l.wrap(c+1)])
}

func (l *Lattice) wrap(i int) int {
	i %= l.size
	if i < 0 {
		i += l.size
	}
	return i
}

// offset panics on out-of-range indices, like a slice access would.
func (l *Lattice) offset(idx Index) int {
	if idx.Row < 0 || idx.Row >= l.size || idx.Col < 0 || idx.Col >= l.size {
		panic(fmt.Sprintf("lattice: index %s out of range for size %d", idx, l.size))
	}
	return idx.Row*l.size + idx.Col
}
