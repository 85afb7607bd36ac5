package topsis

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
)

func defaultRanker(t *testing.T) *Ranker {
	t.Helper()
	r, err := New([]float64{0.6, 0.2, 0.2}, []Impact{Benefit, Benefit, Cost})
	require.NoError(t, err)
	return r
}

func TestNewValidation(t *testing.T) {
	_, err := New(nil, nil)
	assert.Error(t, err)

	_, err = New([]float64{0.5, 0.5}, []Impact{Benefit})
	assert.Error(t, err)

	_, err = New([]float64{1}, []Impact{0})
	assert.Error(t, err)
}

func TestScoreShapeMismatch(t *testing.T) {
	r := defaultRanker(t)
	_, err := r.ScoreRows([][]float64{{1, 2}})
	assert.Error(t, err)
	_, err = r.ScoreRows(nil)
	assert.Error(t, err)
	_, err = r.ScoreRows([][]float64{{1, 2, 3}, {1, 2}})
	assert.Error(t, err)
}

func TestScoreOpenRoad(t *testing.T) {
	r := defaultRanker(t)
	scores, err := r.ScoreRows([][]float64{
		{250, 24, 4},
		{250, 24, 4},
		{250, 0, 1},
		{250, 100, 0},
	})
	require.NoError(t, err)
	require.Len(t, scores, 4)

	// the last row is ideal on every criterion
	assert.InDelta(t, 1.0, scores[3], 1e-12)
	assert.Equal(t, scores[0], scores[1])
	assert.Equal(t, 3, floats.MaxIdx(scores))
}

func TestScoreDominatingRowWins(t *testing.T) {
	r := defaultRanker(t)
	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 200; trial++ {
		rows := make([][]float64, 4)
		for i := range rows {
			rows[i] = []float64{rng.Float64() * 200, rng.Float64() * 80, 1 + rng.Float64()*50}
		}
		best := rng.Intn(4)
		rows[best] = []float64{250, 100, 0}

		scores, err := r.ScoreRows(rows)
		require.NoError(t, err)
		for _, s := range scores {
			assert.GreaterOrEqual(t, s, 0.0)
			assert.LessOrEqual(t, s, 1.0)
		}
		assert.Equal(t, best, floats.MaxIdx(scores), "trial %d", trial)
	}
}

func TestScoreZeroColumn(t *testing.T) {
	r := defaultRanker(t)
	scores, err := r.ScoreRows([][]float64{
		{250, 0, 4},
		{100, 0, 4},
		{250, 0, 1},
		{0, 0, 100},
	})
	require.NoError(t, err)
	for _, s := range scores {
		assert.False(t, math.IsNaN(s))
		assert.False(t, math.IsInf(s, 0))
	}
}

func TestScoreAllZero(t *testing.T) {
	r := defaultRanker(t)
	scores, err := r.ScoreRows([][]float64{
		{0, 0, 0},
		{0, 0, 0},
	})
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0}, scores)
}

func TestScoreIdenticalRows(t *testing.T) {
	r := defaultRanker(t)
	scores, err := r.ScoreRows([][]float64{
		{10, 5, 3},
		{10, 5, 3},
		{10, 5, 3},
	})
	require.NoError(t, err)
	// both distances vanish and the raw negative-ideal distance is returned
	assert.Equal(t, []float64{0, 0, 0}, scores)
}
