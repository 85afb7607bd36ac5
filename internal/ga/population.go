package ga

import (
	"math/rand"
	"sort"

	"drivesim/internal/nn"
)

// Agent is one candidate weight vector for the driving classifier
type Agent struct {
	Genome   []float32
	Fitness  float64 // training accuracy minus mean cross-entropy
	Accuracy float64
}

// Population manages the collection of agents
type Population struct {
	Agents     []*Agent
	GenomeSize int
	rng        *rand.Rand
}

// NewPopulation creates a new random population
func NewPopulation(size, genomeSize int, rng *rand.Rand) *Population {
	p := &Population{
		Agents:     make([]*Agent, size),
		GenomeSize: genomeSize,
		rng:        rng,
	}

	for i := range p.Agents {
		p.Agents[i] = &Agent{Genome: nn.RandomGenome(genomeSize, rng)}
	}
	return p
}

// Size returns the population size
func (p *Population) Size() int {
	return len(p.Agents)
}

// SortByFitness orders agents best first. Full ties keep their order so a
// seeded run is reproducible.
func (p *Population) SortByFitness() {
	sort.SliceStable(p.Agents, func(i, j int) bool {
		return better(p.Agents[i], p.Agents[j])
	})
}

// Best returns the fittest agent, or nil for an empty population
func (p *Population) Best() *Agent {
	if len(p.Agents) == 0 {
		return nil
	}
	best := p.Agents[0]
	for _, a := range p.Agents[1:] {
		if better(a, best) {
			best = a
		}
	}
	return best
}

// Clone creates a deep copy of an agent
func (a *Agent) Clone() *Agent {
	return &Agent{
		Genome:   nn.CloneGenome(a.Genome),
		Fitness:  a.Fitness,
		Accuracy: a.Accuracy,
	}
}
