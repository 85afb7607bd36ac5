package logging

import (
	"fmt"
	"strconv"

	"drivesim/internal/ga"
)

// GenerationSummary holds per-generation statistics
type GenerationSummary struct {
	Generation   int     `json:"generation"`
	BestFitness  float64 `json:"best_fitness"`
	MeanFitness  float64 `json:"mean_fitness"`
	BestAccuracy float64 `json:"best_accuracy"`
	MeanAccuracy float64 `json:"mean_accuracy"`
}

// LogGeneration logs a generation summary
func (l *Logger) LogGeneration(gen int, pop *ga.Population) error {
	if !l.initialized || pop.Size() == 0 {
		return nil
	}

	var sumFitness, sumAccuracy float64
	best := pop.Best()
	for _, a := range pop.Agents {
		sumFitness += a.Fitness
		sumAccuracy += a.Accuracy
	}

	n := float64(pop.Size())
	summary := GenerationSummary{
		Generation:   gen,
		BestFitness:  best.Fitness,
		MeanFitness:  sumFitness / n,
		BestAccuracy: best.Accuracy,
		MeanAccuracy: sumAccuracy / n,
	}

	row := []string{
		strconv.Itoa(gen),
		fmt.Sprintf("%.4f", summary.BestFitness),
		fmt.Sprintf("%.4f", summary.MeanFitness),
		fmt.Sprintf("%.4f", summary.BestAccuracy),
		fmt.Sprintf("%.4f", summary.MeanAccuracy),
	}
	if err := l.write(row, summary); err != nil {
		return err
	}

	fmt.Printf("Gen %4d | Best: %8.4f | Mean: %8.4f | Acc: %.3f (mean %.3f)\n",
		gen, summary.BestFitness, summary.MeanFitness, summary.BestAccuracy, summary.MeanAccuracy)
	return nil
}
