package export

import (
	"math"
	"strings"
	"testing"

	"github.com/san-kum/ising/internal/stats"
)

func TestObservablesToSVG(t *testing.T) {
	records := []stats.Record{
		{T: 1.0, DE: 0.1, I: 0.99, X: 0.01},
		{T: 2.0, DE: 0.9, I: 0.80, X: 0.20},
		{T: 3.0, DE: 0.4, I: 0.10, X: 0.05},
	}

	svg := ObservablesToSVG(records, 300, 300)

	if !strings.HasPrefix(svg, "<?xml") || !strings.HasSuffix(svg, "</svg>") {
		t.Fatalf("malformed document:\n%s", svg)
	}
	if got := strings.Count(svg, "<path"); got != 3 {
		t.Errorf("expected 3 paths, got %d", got)
	}
	for _, label := range []string{">dE<", ">I<", ">X<"} {
		if !strings.Contains(svg, label) {
			t.Errorf("missing label %s", label)
		}
	}
	// first point of the top panel starts at the left edge
	if !strings.Contains(svg, `d="M0.0,`) {
		t.Errorf("expected path starting at x=0:\n%s", svg)
	}
}

func TestObservablesToSVG_TooFewRecords(t *testing.T) {
	if svg := ObservablesToSVG([]stats.Record{{T: 1}}, 100, 100); svg != "" {
		t.Errorf("expected empty output, got %q", svg)
	}
	if svg := ObservablesToSVG(nil, 100, 100); svg != "" {
		t.Errorf("expected empty output, got %q", svg)
	}
}

func TestObservablesToSVG_NaNBreaksLine(t *testing.T) {
	records := []stats.Record{
		{T: 1.0, DE: 0.1},
		{T: 2.0, DE: math.NaN()},
		{T: 3.0, DE: 0.3},
	}

	svg := ObservablesToSVG(records, 300, 300)
	first := svg[strings.Index(svg, "<path"):]
	first = first[:strings.Index(first, "/>")]

	if strings.Contains(first, "NaN") {
		t.Errorf("NaN leaked into path: %s", first)
	}
	if got := strings.Count(first, "M"); got != 2 {
		t.Errorf("expected the line to restart after NaN, got %d moves in %s", got, first)
	}
}
