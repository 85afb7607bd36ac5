package ga

import (
	"math/rand"
)

// better orders agents by fitness, then by training accuracy
func better(a, b *Agent) bool {
	if a.Fitness != b.Fitness {
		return a.Fitness > b.Fitness
	}
	return a.Accuracy > b.Accuracy
}

// TournamentSelect draws k agents with replacement and returns the best
func TournamentSelect(agents []*Agent, k int, rng *rand.Rand) *Agent {
	if len(agents) == 0 {
		return nil
	}
	k = min(max(k, 1), len(agents))

	best := agents[rng.Intn(len(agents))]
	for i := 1; i < k; i++ {
		if c := agents[rng.Intn(len(agents))]; better(c, best) {
			best = c
		}
	}
	return best
}

// SelectionPool returns the fittest poolSize agents. poolSize <= 0 means
// the whole population.
func SelectionPool(pop *Population, poolSize int) []*Agent {
	pop.SortByFitness()
	if poolSize <= 0 || poolSize > len(pop.Agents) {
		poolSize = len(pop.Agents)
	}
	return pop.Agents[:poolSize]
}

// SelectParents runs two tournaments over the pool. The second parent is
// redrawn a few times so a pool of two or more rarely mates an agent with
// itself.
func SelectParents(pool []*Agent, k int, rng *rand.Rand) (*Agent, *Agent) {
	p1 := TournamentSelect(pool, k, rng)
	p2 := TournamentSelect(pool, k, rng)
	for try := 0; p2 == p1 && len(pool) > 1 && try < 3; try++ {
		p2 = TournamentSelect(pool, k, rng)
	}
	return p1, p2
}
