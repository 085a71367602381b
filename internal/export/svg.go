package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/ising/internal/stats"
)

type curve struct {
	label string
	color string
	value func(stats.Record) float64
}

var observableCurves = []curve{
	{"dE", "#ff8c00", func(r stats.Record) float64 { return r.DE }},
	{"I", "#00ff00", func(r stats.Record) float64 { return r.I }},
	{"X", "#00bfff", func(r stats.Record) float64 { return r.X }},
}

// ObservablesToSVG draws dE, I and X against T as three stacked panels of
// the given total size. Records must be sorted by T. Non-finite values break
// the line. Fewer than two records yield an empty string.
func ObservablesToSVG(records []stats.Record, width, height int) string {
	if len(records) < 2 || width <= 0 || height <= 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))

	panel := float64(height) / float64(len(observableCurves))
	for i, c := range observableCurves {
		top := float64(i) * panel
		ys := make([]float64, len(records))
		for j, r := range records {
			ys[j] = c.value(r)
		}
		sb.WriteString(fmt.Sprintf(`<text x="4" y="%.1f" fill="%s" font-family="monospace" font-size="12">%s</text>
`, top+14, c.color, c.label))
		sb.WriteString(polyline(records, ys, float64(width), top, panel, c.color))
	}

	sb.WriteString("</svg>")
	return sb.String()
}

func polyline(records []stats.Record, ys []float64, width, top, height float64, color string) string {
	minX, maxX := records[0].T, records[len(records)-1].T
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, y := range ys {
		if math.IsNaN(y) || math.IsInf(y, 0) {
			continue
		}
		minY = math.Min(minY, y)
		maxY = math.Max(maxY, y)
	}
	if math.IsInf(minY, 1) {
		return ""
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minY -= rangeY * 0.1
	rangeY *= 1.2

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5" d="`, color))

	pen := false
	for i, r := range records {
		y := ys[i]
		if math.IsNaN(y) || math.IsInf(y, 0) || math.IsNaN(r.T) {
			pen = false
			continue
		}
		px := (r.T - minX) / rangeX * width
		py := top + height - (y-minY)/rangeY*height

		cmd := "L"
		if !pen {
			cmd = "M"
		}
		if i > 0 {
			sb.WriteString(" ")
		}
		sb.WriteString(fmt.Sprintf("%s%.1f,%.1f", cmd, px, py))
		pen = true
	}

	sb.WriteString(`"/>
`)
	return sb.String()
}
