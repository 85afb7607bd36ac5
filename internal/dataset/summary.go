package dataset

import (
	"fmt"
	"strings"

	"drivesim/internal/env"
)

// Summary counts labels over a dataset
type Summary struct {
	Total      int
	Counts     [env.NumActions]int
	Open       int // rows where every ray reads maximum range
	OpenCounts [env.NumActions]int
}

// Summarize tallies the action labels of samples, separately for rows whose
// rays all read at least maxRange
func Summarize(samples []Sample, maxRange float64) Summary {
	var s Summary
	for _, sample := range samples {
		s.Total++
		s.Counts[sample.Action]++
		if allAtRange(sample.Rays, maxRange) {
			s.Open++
			s.OpenCounts[sample.Action]++
		}
	}
	return s
}

func allAtRange(rays []float64, maxRange float64) bool {
	for _, r := range rays {
		if r < maxRange {
			return false
		}
	}
	return true
}

// String renders the summary as a small table
func (s Summary) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Total rows: %d\n", s.Total)
	fmt.Fprintf(&b, "Open-road rows: %d\n", s.Open)
	fmt.Fprintf(&b, "%-12s %8s %8s\n", "action", "all", "open")
	for _, a := range env.Actions {
		fmt.Fprintf(&b, "%-12s %8d %8d\n", a, s.Counts[a], s.OpenCounts[a])
	}
	return b.String()
}
