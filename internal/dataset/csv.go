package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"drivesim/internal/env"
)

// CSVRecorder appends samples to a CSV file. The header is written only when
// the file is new or empty so repeated sessions extend one dataset.
type CSVRecorder struct {
	file   *os.File
	writer *csv.Writer
	rays   int
}

// NewCSVRecorder opens path for appending
func NewCSVRecorder(path string, rays int) (*CSVRecorder, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	fresh := true
	if info, err := os.Stat(path); err == nil {
		fresh = info.Size() == 0
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}
	r := &CSVRecorder{file: f, writer: csv.NewWriter(f), rays: rays}
	if fresh {
		if err := r.writer.Write(Header(rays)); err != nil {
			f.Close()
			return nil, err
		}
		r.writer.Flush()
		if err := r.writer.Error(); err != nil {
			f.Close()
			return nil, err
		}
	}
	return r, nil
}

// Record appends one row and flushes it
func (r *CSVRecorder) Record(s Sample) error {
	if len(s.Rays) != r.rays {
		return fmt.Errorf("dataset: sample has %d rays, recorder expects %d", len(s.Rays), r.rays)
	}
	if err := r.writer.Write(s.Record()); err != nil {
		return err
	}
	r.writer.Flush()
	return r.writer.Error()
}

// Close flushes and closes the file
func (r *CSVRecorder) Close() error {
	r.writer.Flush()
	if err := r.writer.Error(); err != nil {
		r.file.Close()
		return err
	}
	return r.file.Close()
}

// ReadCSV parses a dataset file. A header row is recognised by a
// non-numeric first field and skipped. Errors name the 1-based line.
func ReadCSV(path string) ([]Sample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return readCSV(f)
}

func readCSV(r io.Reader) ([]Sample, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	var samples []Sample
	width := 0
	first := true
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		line, _ := cr.FieldPos(0)
		if first {
			first = false
			if _, err := strconv.ParseFloat(row[0], 64); err != nil {
				continue
			}
		}
		if len(row) < 4 {
			return nil, fmt.Errorf("line %d: %d fields, need rays, speed, acceleration and action", line, len(row))
		}
		if width == 0 {
			width = len(row)
		} else if len(row) != width {
			return nil, fmt.Errorf("line %d: %d fields, previous rows have %d", line, len(row), width)
		}
		s, err := parseRow(row)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		samples = append(samples, s)
	}
	return samples, nil
}

func parseRow(row []string) (Sample, error) {
	n := len(row) - 3
	values := make([]float64, n+2)
	for i, field := range row[:n+2] {
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return Sample{}, fmt.Errorf("column %d: %w", i+1, err)
		}
		values[i] = v
	}
	action, err := env.ParseAction(row[n+2])
	if err != nil {
		return Sample{}, err
	}
	return Sample{Rays: values[:n:n], Speed: values[n], Accel: values[n+1], Action: action}, nil
}
