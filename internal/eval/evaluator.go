package eval

import (
	"fmt"
	"math"
	"runtime"
	"sync"

	"gonum.org/v1/gonum/floats"

	"drivesim/internal/ga"
	"drivesim/internal/nn"
)

// Architecture fixes the network shape every genome is decoded into
type Architecture struct {
	Inputs  int
	Hidden1 int
	Hidden2 int
	Labels  []string
	Scale   []float64
}

// GenomeSize returns the genome length for the architecture
func (a Architecture) GenomeSize() int {
	return nn.GenomeSize(a.Inputs, a.Hidden1, a.Hidden2, len(a.Labels))
}

// Network decodes a genome into a ready to use classifier
func (a Architecture) Network(genome []float32) *nn.MLP {
	m := nn.NewMLP(a.Inputs, a.Hidden1, a.Hidden2, len(a.Labels))
	m.SetWeights(genome)
	m.Labels = append([]string(nil), a.Labels...)
	if a.Scale != nil {
		m.InputScale = append([]float64(nil), a.Scale...)
	}
	return m
}

// Evaluator scores genomes against a labelled training set
type Evaluator struct {
	arch    Architecture
	x       [][]float64
	y       []int
	workers int
}

// NewEvaluator creates a new evaluator. y holds class indices into
// arch.Labels.
func NewEvaluator(arch Architecture, x [][]float64, y []int, workers int) (*Evaluator, error) {
	if len(x) == 0 {
		return nil, fmt.Errorf("eval: empty training set")
	}
	if len(x) != len(y) {
		return nil, fmt.Errorf("eval: %d samples but %d targets", len(x), len(y))
	}
	for i, row := range x {
		if len(row) != arch.Inputs {
			return nil, fmt.Errorf("eval: sample %d has %d features, want %d", i, len(row), arch.Inputs)
		}
		if y[i] < 0 || y[i] >= len(arch.Labels) {
			return nil, fmt.Errorf("eval: sample %d has target %d out of range", i, y[i])
		}
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Evaluator{arch: arch, x: x, y: y, workers: workers}, nil
}

// Fitness holds the training-set score of one genome
type Fitness struct {
	Loss     float64 // mean cross-entropy
	Accuracy float64
}

// Score is the value the GA maximises
func (f Fitness) Score() float64 {
	return f.Accuracy - f.Loss
}

// EvaluateGenome scores one genome. Safe for concurrent use.
func (e *Evaluator) EvaluateGenome(genome []float32) Fitness {
	// local network per call, MLP buffers are not shareable
	mlp := e.arch.Network(genome)

	var loss float64
	correct := 0
	for i, row := range e.x {
		p, err := mlp.PredictProba(row)
		if err != nil {
			return Fitness{Loss: math.Inf(1)}
		}
		loss -= math.Log(math.Max(p[e.y[i]], 1e-12))
		if floats.MaxIdx(p) == e.y[i] {
			correct++
		}
	}
	n := float64(len(e.x))
	return Fitness{Loss: loss / n, Accuracy: float64(correct) / n}
}

// EvaluatePopulation scores every agent in parallel
func (e *Evaluator) EvaluatePopulation(pop *ga.Population) {
	var wg sync.WaitGroup
	sem := make(chan struct{}, e.workers)

	for _, agent := range pop.Agents {
		wg.Add(1)
		sem <- struct{}{}
		go func(a *ga.Agent) {
			defer wg.Done()
			defer func() { <-sem }()
			f := e.EvaluateGenome(a.Genome)
			a.Fitness = f.Score()
			a.Accuracy = f.Accuracy
		}(agent)
	}
	wg.Wait()
}
