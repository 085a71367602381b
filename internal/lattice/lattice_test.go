package lattice

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"
)

func newTestLattice(t *testing.T, size int, seed uint64) *Lattice {
	t.Helper()
	l, err := New(size, rand.New(rand.NewPCG(seed, 0)))
	if err != nil {
		t.Fatalf("New(%d) failed: %v", size, err)
	}
	return l
}

func fill(l *Lattice, s int8) {
	for i := range l.spins {
		l.spins[i] = s
	}
}

func TestNew_InvalidSize(t *testing.T) {
	for _, size := range []int{0, -1} {
		_, err := New(size, rand.New(rand.NewPCG(1, 1)))
		if !errors.Is(err, ErrInvalidSize) {
			t.Errorf("New(%d): expected ErrInvalidSize, got %v", size, err)
		}
	}
}

func TestNew_SpinsAreTwoState(t *testing.T) {
	l := newTestLattice(t, 20, 7)
	if l.Sites() != 400 {
		t.Fatalf("expected 400 sites, got %d", l.Sites())
	}

	ups := 0
	for _, s := range l.spins {
		switch s {
		case Up:
			ups++
		case Down:
		default:
			t.Fatalf("invalid spin %d", s)
		}
	}
	// 400 fair coin flips; 4 sigma is 40.
	if ups < 160 || ups > 240 {
		t.Errorf("initial state not balanced: %d up spins out of 400", ups)
	}
}

func TestFlip_KeepsTwoStateInvariant(t *testing.T) {
	for _, size := range []int{1, 2, 3, 10} {
		l := newTestLattice(t, size, uint64(size))
		for i := 0; i < 5000; i++ {
			l.Flip(l.RandomIndex())
		}
		for i, s := range l.spins {
			if s != Up && s != Down {
				t.Fatalf("size %d: cell %d holds %d", size, i, s)
			}
		}
	}
}

func TestFlip_TwiceRestoresState(t *testing.T) {
	l := newTestLattice(t, 6, 3)
	j := 1.5

	for i := 0; i < 100; i++ {
		idx := l.RandomIndex()
		spin := l.Spin(idx)
		energy := l.EnergyPerSite(j)

		l.Flip(idx)
		if l.Spin(idx) != -spin {
			t.Fatalf("flip did not negate spin at %s", idx)
		}
		l.Flip(idx)

		if l.Spin(idx) != spin {
			t.Fatalf("double flip changed spin at %s", idx)
		}
		if l.EnergyPerSite(j) != energy {
			t.Fatalf("double flip changed energy: %v -> %v", energy, l.EnergyPerSite(j))
		}
	}
}

func TestEnergyDelta_MatchesTotalEnergyChange(t *testing.T) {
	tests := []struct {
		size int
		j    float64
	}{
		{2, 1.0},
		{3, 1.0},
		{5, 0.5},
		{8, -1.0},
	}

	for _, tt := range tests {
		l := newTestLattice(t, tt.size, 11)
		sites := float64(l.Sites())
		for i := 0; i < 50; i++ {
			idx := l.RandomIndex()
			before := l.EnergyPerSite(tt.j) * sites
			delta := l.EnergyDelta(idx, tt.j)
			l.Flip(idx)
			after := l.EnergyPerSite(tt.j) * sites

			if math.Abs((after-before)-delta) > 1e-9 {
				t.Fatalf("size %d: delta %v, observed %v", tt.size, delta, after-before)
			}
		}
	}
}

func TestEnergyDelta_DoesNotMutate(t *testing.T) {
	l := newTestLattice(t, 4, 5)
	snapshot := append([]int8(nil), l.spins...)
	for i := 0; i < 20; i++ {
		l.EnergyDelta(l.RandomIndex(), 1.0)
	}
	for i := range snapshot {
		if snapshot[i] != l.spins[i] {
			t.Fatal("EnergyDelta modified the lattice")
		}
	}
}

func TestEnergyPerSite_Aligned(t *testing.T) {
	l := newTestLattice(t, 4, 1)
	fill(l, Up)

	if got := l.EnergyPerSite(1.0); got != -2.0 {
		t.Errorf("aligned lattice energy per site = %v, want -2", got)
	}
	if got := l.EnergyDelta(Index{1, 2}, 1.0); got != 8.0 {
		t.Errorf("aligned lattice flip delta = %v, want 8", got)
	}
	if got := l.OrderParameter(); got != 1.0 {
		t.Errorf("aligned order parameter = %v, want 1", got)
	}
}

func TestEnergyPerSite_Checkerboard(t *testing.T) {
	l := newTestLattice(t, 4, 1)
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			if (r+c)%2 == 0 {
				l.spins[r*4+c] = Up
			} else {
				l.spins[r*4+c] = Down
			}
		}
	}

	if got := l.EnergyPerSite(1.0); got != 2.0 {
		t.Errorf("checkerboard energy per site = %v, want 2", got)
	}
	if got := l.OrderParameter(); got != 0 {
		t.Errorf("checkerboard order parameter = %v, want 0", got)
	}
}

func TestOrderParameter_IsMagnitude(t *testing.T) {
	l := newTestLattice(t, 2, 1)
	fill(l, Down)
	l.Flip(Index{0, 0})

	if got := l.Magnetization(); got != -0.5 {
		t.Errorf("magnetization = %v, want -0.5", got)
	}
	if got := l.OrderParameter(); got != 0.5 {
		t.Errorf("order parameter = %v, want 0.5", got)
	}
}

func TestRandomIndex_Uniform(t *testing.T) {
	l := newTestLattice(t, 3, 99)
	counts := make(map[Index]int)
	const draws = 90000

	for i := 0; i < draws; i++ {
		idx := l.RandomIndex()
		if idx.Row < 0 || idx.Row >= 3 || idx.Col < 0 || idx.Col >= 3 {
			t.Fatalf("index out of range: %s", idx)
		}
		counts[idx]++
	}

	if len(counts) != 9 {
		t.Fatalf("expected all 9 cells to be drawn, got %d", len(counts))
	}
	for idx, n := range counts {
		if n < 9500 || n > 10500 {
			t.Errorf("cell %s drawn %d times, expected about 10000", idx, n)
		}
	}
}

func TestSpin_OutOfRangePanics(t *testing.T) {
	l := newTestLattice(t, 2, 1)
	defer func() {
		if recover() == nil {
			t.Error("expected panic for out of range index")
		}
	}()
	l.Spin(Index{Row: 2, Col: 0})
}
