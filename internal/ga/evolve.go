package ga

import "fmt"

// Params controls how one generation produces the next
type Params struct {
	Population     int
	Elites         int
	SelectionPool  int
	TournamentK    int
	CrossoverRate  float64
	MutationRate   float64
	MutationSigma  float64
	ResetMutationP float64
	ResetFraction  float64
}

// Validate rejects parameter sets Next cannot honor
func (p Params) Validate() error {
	if p.Population < 2 {
		return fmt.Errorf("ga: population must be at least 2, got %d", p.Population)
	}
	if p.Elites < 0 || p.Elites >= p.Population {
		return fmt.Errorf("ga: elites must be in [0, %d), got %d", p.Population, p.Elites)
	}
	if p.TournamentK < 1 {
		return fmt.Errorf("ga: tournament_k must be positive, got %d", p.TournamentK)
	}
	return nil
}

// Next replaces the population with the following generation via
// selection, crossover and mutation. Elites are carried over unchanged.
func (p *Population) Next(params Params) {
	rng := p.rng
	newAgents := make([]*Agent, params.Population)

	p.SortByFitness()
	for i := 0; i < params.Elites && i < len(p.Agents); i++ {
		newAgents[i] = p.Agents[i].Clone()
	}

	pool := SelectionPool(p, params.SelectionPool)

	for i := params.Elites; i < params.Population; i++ {
		p1, p2 := SelectParents(pool, params.TournamentK, rng)
		child := CreateChild(p1, p2, params.CrossoverRate, rng)
		MutateAgent(child, params.MutationRate, params.MutationSigma, params.ResetMutationP, rng)
		newAgents[i] = child
	}

	// Occasionally reseed the tail to keep diversity
	if params.ResetFraction > 0 && rng.Float64() < 0.1 {
		numReset := int(float64(params.Population) * params.ResetFraction)
		for i := params.Population - numReset; i < params.Population; i++ {
			if i >= params.Elites {
				reinitialize(newAgents[i].Genome, rng)
			}
		}
	}

	p.Agents = newAgents
}
