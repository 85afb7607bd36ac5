package ga

import (
	"math/rand"

	"drivesim/internal/nn"
)

// UniformCrossover swaps each gene between the parents with probability
// rate and returns both children
func UniformCrossover(p1, p2 []float32, rate float64, rng *rand.Rand) ([]float32, []float32) {
	c1 := nn.CloneGenome(p1)
	c2 := nn.CloneGenome(p2)
	for i := range c1 {
		if rng.Float64() < rate {
			c1[i], c2[i] = c2[i], c1[i]
		}
	}
	return c1, c2
}

// CreateChild builds one offspring. Without crossover it copies a random
// parent; with crossover every weight comes from either parent with equal
// chance.
func CreateChild(p1, p2 *Agent, crossoverRate float64, rng *rand.Rand) *Agent {
	if rng.Float64() > crossoverRate {
		src := p1
		if rng.Intn(2) == 1 {
			src = p2
		}
		return &Agent{Genome: nn.CloneGenome(src.Genome)}
	}

	genome := make([]float32, len(p1.Genome))
	for i := range genome {
		if rng.Intn(2) == 0 {
			genome[i] = p1.Genome[i]
		} else {
			genome[i] = p2.Genome[i]
		}
	}
	return &Agent{Genome: genome}
}
