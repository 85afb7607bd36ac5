package knn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFitValidation(t *testing.T) {
	_, err := Fit(nil, nil, 1)
	assert.Error(t, err)

	_, err = Fit([][]float64{{1}}, []string{"A", "B"}, 1)
	assert.Error(t, err)

	_, err = Fit([][]float64{{1}, {2}}, []string{"A", "B"}, 3)
	assert.Error(t, err)

	_, err = Fit([][]float64{{1}, {2, 3}}, []string{"A", "B"}, 1)
	assert.Error(t, err)
}

func TestPredictProba(t *testing.T) {
	samples := [][]float64{{0, 0}, {0, 1}, {10, 10}, {10, 11}, {11, 10}}
	labels := []string{"BRAKE", "BRAKE", "CONTINUE", "CONTINUE", "EVADE_LEFT"}
	c, err := Fit(samples, labels, 3)
	require.NoError(t, err)
	require.NoError(t, c.Validate())

	assert.Equal(t, []string{"BRAKE", "CONTINUE", "EVADE_LEFT"}, c.Classes())

	p, err := c.PredictProba([]float64{10, 10.2})
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0, 2.0 / 3, 1.0 / 3}, p, 1e-12)

	p, err = c.PredictProba([]float64{0, 0.4})
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{2.0 / 3, 1.0 / 3, 0}, p, 1e-12)

	label, err := c.Predict([]float64{0.1, 0.1})
	require.NoError(t, err)
	assert.Equal(t, "BRAKE", label)

	_, err = c.PredictProba([]float64{1})
	assert.Error(t, err)
}

func TestValidateCatchesCorruption(t *testing.T) {
	c := &Classifier{K: 1, Labels: []string{"A"}, Samples: [][]float64{{1}}, Targets: []int{3}}
	assert.Error(t, c.Validate())

	c = &Classifier{K: 2, Labels: []string{"A"}, Samples: [][]float64{{1}}, Targets: []int{0}}
	assert.Error(t, c.Validate())
}
