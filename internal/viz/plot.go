package viz

import (
	"fmt"
	"strings"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/ising/internal/stats"
)

// PlotObservables draws dE, I and X against temperature, one chart each.
// Records must be sorted by temperature.
func PlotObservables(records []stats.Record, width, height int) string {
	if len(records) == 0 {
		return "no records to plot\n"
	}

	n := len(records)
	de := make([]float64, n)
	order := make([]float64, n)
	x := make([]float64, n)
	for i, r := range records {
		de[i], order[i], x[i] = r.DE, r.I, r.X
	}
	span := fmt.Sprintf("T %.2f .. %.2f", records[0].T, records[n-1].T)

	series := []struct {
		name string
		data []float64
	}{
		{"dE (specific heat)", de},
		{"I (order parameter)", order},
		{"X (susceptibility)", x},
	}

	var b strings.Builder
	for _, s := range series {
		if len(s.data) < 2 {
			b.WriteString(fmt.Sprintf("%s at %s: %.5f\n\n", s.name, span, s.data[0]))
			continue
		}
		b.WriteString(asciigraph.Plot(s.data,
			asciigraph.Height(height),
			asciigraph.Width(width),
			asciigraph.Caption(s.name+" vs "+span),
		))
		b.WriteString("\n\n")
	}
	return b.String()
}
