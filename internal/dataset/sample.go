// Package dataset stores recorded driving samples and reads them back for
// offline training and analysis.
package dataset

import (
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"drivesim/internal/env"
)

// Sample is one recorded tick: the ray distances, the vehicle's speed and
// acceleration, and the action that was chosen
type Sample struct {
	Rays   []float64
	Speed  float64
	Accel  float64
	Action env.Action
}

// Features returns the estimator input for the sample
func (s Sample) Features() []float64 {
	out := make([]float64, 0, env.FeatureDim(len(s.Rays)))
	out = append(out, s.Rays...)
	return append(out, s.Speed, s.Accel)
}

// Rounded returns a copy with every value rounded to one decimal place
func (s Sample) Rounded() Sample {
	rays := make([]float64, len(s.Rays))
	for i, r := range s.Rays {
		rays[i] = Round1(r)
	}
	return Sample{Rays: rays, Speed: Round1(s.Speed), Accel: Round1(s.Accel), Action: s.Action}
}

// Round1 rounds v to one decimal place
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func formatValue(v float64) string {
	return strconv.FormatFloat(Round1(v), 'f', 1, 64)
}

// Header returns the column names for a fan of rays sensor rays
func Header(rays int) []string {
	h := make([]string, 0, rays+3)
	for i := 0; i < rays; i++ {
		h = append(h, fmt.Sprintf("ray_%d", i))
	}
	return append(h, "speed", "acceleration", "action")
}

// Record returns the CSV row for the sample
func (s Sample) Record() []string {
	row := make([]string, 0, len(s.Rays)+3)
	for _, r := range s.Rays {
		row = append(row, formatValue(r))
	}
	return append(row, formatValue(s.Speed), formatValue(s.Accel), s.Action.String())
}

// Recorder accepts samples for persistent storage
type Recorder interface {
	Record(Sample) error
	io.Closer
}

// Create opens a recorder of the given format ("csv" or "sqlite")
func Create(format, path string, rays int) (Recorder, error) {
	switch format {
	case "csv":
		return NewCSVRecorder(path, rays)
	case "sqlite":
		return NewSQLiteRecorder(path, rays)
	default:
		return nil, fmt.Errorf("dataset: unknown format %q", format)
	}
}

// Load reads every sample stored at path. Files ending in .db, .sqlite or
// .sqlite3 are read as SQLite; anything else as CSV.
func Load(path string) ([]Sample, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return ReadSQLite(path, "")
	default:
		return ReadCSV(path)
	}
}
