package storage

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/san-kum/ising/internal/stats"
)

const (
	tableHeaderFormat = "%5s%30s%15s%20s"
	tableRowFormat    = "%5.2f%30.5f%15.5f%20.10f"
)

// FormatTable renders records as the fixed-width results table: a T/dE/I/X
// header followed by one row per record, newline terminated.
func FormatTable(records []stats.Record) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf(tableHeaderFormat, "T", "dE", "I", "X"))
	b.WriteString("\n")
	for _, r := range records {
		b.WriteString(fmt.Sprintf(tableRowFormat, r.T, r.DE, r.I, r.X))
		b.WriteString("\n")
	}
	return b.String()
}

func WriteTable(w io.Writer, records []stats.Record) error {
	_, err := io.WriteString(w, FormatTable(records))
	return err
}

// ParseTable reads a table written by WriteTable. Values carry the table's
// printed precision.
func ParseTable(r io.Reader) ([]stats.Record, error) {
	sc := bufio.NewScanner(r)
	records := make([]stats.Record, 0)
	line := 0
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		if line == 1 {
			if strings.Join(fields, " ") != "T dE I X" {
				return nil, fmt.Errorf("line 1: unexpected header %q", sc.Text())
			}
			continue
		}
		if len(fields) != 4 {
			return nil, fmt.Errorf("line %d: expected 4 columns, got %d", line, len(fields))
		}

		var vals [4]float64
		for i, f := range fields {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			vals[i] = v
		}
		records = append(records, stats.Record{T: vals[0], DE: vals[1], I: vals[2], X: vals[3]})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if line == 0 {
		return nil, fmt.Errorf("empty table")
	}
	return records, nil
}
