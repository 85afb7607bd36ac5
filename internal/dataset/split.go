package dataset

import (
	"math"
	"math/rand"
)

// Shuffle permutes samples in place
func Shuffle(samples []Sample, rng *rand.Rand) {
	rng.Shuffle(len(samples), func(i, j int) {
		samples[i], samples[j] = samples[j], samples[i]
	})
}

// Split holds out the trailing testFraction of samples (rounded up). The
// training part always keeps at least one sample.
func Split(samples []Sample, testFraction float64) (train, test []Sample) {
	n := len(samples)
	nTest := int(math.Ceil(testFraction * float64(n)))
	if nTest < 0 {
		nTest = 0
	}
	if nTest >= n {
		nTest = n - 1
	}
	if nTest < 0 {
		return nil, nil
	}
	return samples[:n-nTest], samples[n-nTest:]
}

// XY returns the feature rows and label names of samples
func XY(samples []Sample) ([][]float64, []string) {
	x := make([][]float64, len(samples))
	y := make([]string, len(samples))
	for i, s := range samples {
		x[i] = s.Features()
		y[i] = s.Action.String()
	}
	return x, y
}
