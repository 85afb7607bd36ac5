package ga

import (
	"math/rand"
)

// MutateWithReset applies Gaussian mutation in place with an occasional
// random reset of single weights
func MutateWithReset(genome []float32, rate, sigma, resetP float64, rng *rand.Rand) {
	for i := range genome {
		if rng.Float64() < resetP {
			genome[i] = float32(rng.NormFloat64() * 0.5)
		} else if rng.Float64() < rate {
			genome[i] += float32(rng.NormFloat64() * sigma)
		}
	}
}

// MutateAgent applies mutation to an agent's genome
func MutateAgent(a *Agent, rate, sigma, resetP float64, rng *rand.Rand) {
	MutateWithReset(a.Genome, rate, sigma, resetP, rng)
}

func reinitialize(genome []float32, rng *rand.Rand) {
	for j := range genome {
		genome[j] = float32(rng.NormFloat64() * 0.5)
	}
}
