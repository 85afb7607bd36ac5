package logging

import (
	"fmt"

	"drivesim/internal/env"
)

// Status is one console line of a live run
type Status struct {
	Tick      int
	X, Y      float64
	Speed     float64
	Accel     float64
	Center    float64
	Action    env.Action
	Score     float64 // fused score of the chosen action
	Hybrid    bool
	Recording bool
	Paused    bool
}

// FormatStatus renders s in the fixed-width console layout
func FormatStatus(s Status) string {
	mode := "TOPSIS"
	if s.Hybrid {
		mode = "HYBRID"
	}
	flags := ""
	if s.Recording {
		flags += " REC"
	}
	if s.Paused {
		flags += " PAUSED"
	}
	return fmt.Sprintf("Tick %6d | %s | Pos: (%6.1f, %6.1f) | Speed: %5.1f | Accel: %6.1f | Center: %5.1f | %-11s %.3f%s",
		s.Tick, mode, s.X, s.Y, s.Speed, s.Accel, s.Center, s.Action, s.Score, flags)
}
