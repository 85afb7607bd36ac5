// Package topsis ranks alternatives by their relative closeness to an ideal
// solution (Technique for Order of Preference by Similarity to Ideal Solution).
package topsis

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Impact marks a criterion as benefit (maximise) or cost (minimise)
type Impact float64

const (
	Benefit Impact = 1
	Cost    Impact = -1
)

// Ranker scores the rows of a decision matrix against weighted criteria
type Ranker struct {
	weights []float64
	impacts []Impact
}

// New creates a ranker. weights and impacts must have one entry per criterion.
func New(weights []float64, impacts []Impact) (*Ranker, error) {
	if len(weights) == 0 {
		return nil, errors.New("topsis: no criteria")
	}
	if len(weights) != len(impacts) {
		return nil, fmt.Errorf("topsis: %d weights but %d impacts", len(weights), len(impacts))
	}
	for i, im := range impacts {
		if im != Benefit && im != Cost {
			return nil, fmt.Errorf("topsis: impact %d is %v, want +1 or -1", i, float64(im))
		}
	}
	w := make([]float64, len(weights))
	copy(w, weights)
	im := make([]Impact, len(impacts))
	copy(im, impacts)
	return &Ranker{weights: w, impacts: im}, nil
}

// Criteria returns the number of columns the ranker expects
func (r *Ranker) Criteria() int {
	return len(r.weights)
}

// Score returns one preference score per row of m, in row order.
//
// A zero column norm is replaced by 1 and so is a zero total distance; in the
// latter case the score is the raw negative-ideal distance.
func (r *Ranker) Score(m mat.Matrix) ([]float64, error) {
	rows, cols := m.Dims()
	if rows == 0 {
		return nil, errors.New("topsis: empty decision matrix")
	}
	if cols != len(r.weights) {
		return nil, fmt.Errorf("topsis: matrix has %d criteria, ranker has %d", cols, len(r.weights))
	}

	norms := make([]float64, cols)
	for j := 0; j < cols; j++ {
		n := floats.Norm(mat.Col(nil, j, m), 2)
		if n == 0 {
			n = 1
		}
		norms[j] = n
	}

	var weighted mat.Dense
	weighted.Apply(func(_, j int, v float64) float64 {
		return v / norms[j] * r.weights[j]
	}, m)

	ideal := make([]float64, cols)
	negIdeal := make([]float64, cols)
	col := make([]float64, rows)
	for j := 0; j < cols; j++ {
		mat.Col(col, j, &weighted)
		hi, lo := floats.Max(col), floats.Min(col)
		if r.impacts[j] == Benefit {
			ideal[j], negIdeal[j] = hi, lo
		} else {
			ideal[j], negIdeal[j] = lo, hi
		}
	}

	scores := make([]float64, rows)
	row := make([]float64, cols)
	for i := 0; i < rows; i++ {
		mat.Row(row, i, &weighted)
		dPos := floats.Distance(row, ideal, 2)
		dNeg := floats.Distance(row, negIdeal, 2)
		total := dPos + dNeg
		if total == 0 {
			total = 1
		}
		scores[i] = dNeg / total
	}
	return scores, nil
}

// ScoreRows is a convenience wrapper over Score for row-major input
func (r *Ranker) ScoreRows(rows [][]float64) ([]float64, error) {
	if len(rows) == 0 {
		return nil, errors.New("topsis: empty decision matrix")
	}
	cols := len(rows[0])
	if cols == 0 {
		return nil, errors.New("topsis: no criteria in decision matrix")
	}
	data := make([]float64, 0, len(rows)*cols)
	for i, row := range rows {
		if len(row) != cols {
			return nil, fmt.Errorf("topsis: row %d has %d values, want %d", i, len(row), cols)
		}
		data = append(data, row...)
	}
	return r.Score(mat.NewDense(len(rows), cols, data))
}
