package main

import (
	"flag"
	"fmt"
	"math"
	"math/rand"
	"os"
	"time"

	"drivesim/internal/config"
	"drivesim/internal/dataset"
	"drivesim/internal/env"
	"drivesim/internal/eval"
	"drivesim/internal/ga"
	"drivesim/internal/knn"
	"drivesim/internal/logging"
	"drivesim/internal/model"
	"drivesim/internal/nn"
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", "", "path to config file (built-in defaults when empty)")
	dataPath := flag.String("data", "", "dataset to train on (overrides recording.path)")
	outPath := flag.String("out", "", "artifact to write (overrides model.path)")
	kind := flag.String("model", "", "classifier kind: knn or mlp (overrides train.model)")
	generations := flag.Int("generations", 0, "number of generations for mlp training (overrides train.generations)")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}
	if *dataPath == "" {
		*dataPath = cfg.Recording.Path
	}
	if *outPath == "" {
		*outPath = cfg.Model.Path
	}
	if *kind != "" {
		cfg.Train.Model = *kind
	}
	if *generations > 0 {
		cfg.Train.Generations = *generations
	}

	samples, err := dataset.Load(*dataPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading dataset: %v\n", err)
		os.Exit(1)
	}
	if len(samples) < cfg.Train.MinRows {
		fmt.Fprintf(os.Stderr, "Not enough data: %d rows, need at least %d\n", len(samples), cfg.Train.MinRows)
		os.Exit(1)
	}
	features := len(samples[0].Features())
	if features != cfg.FeatureDim() {
		fmt.Fprintf(os.Stderr, "Dataset has %d features, simulator provides %d\n", features, cfg.FeatureDim())
		os.Exit(1)
	}

	fmt.Println("Driving classifier trainer")
	fmt.Printf("Data: %s (%d rows), Model: %s\n", *dataPath, len(samples), cfg.Train.Model)
	fmt.Println("---")

	rng := rand.New(rand.NewSource(cfg.Seed))
	dataset.Shuffle(samples, rng)
	train, test := dataset.Split(samples, cfg.Train.TestFraction)
	fmt.Printf("Train: %d rows, Test: %d rows\n", len(train), len(test))

	startTime := time.Now()
	artifact := &model.Artifact{Kind: model.Kind(cfg.Train.Model), Features: features}

	switch artifact.Kind {
	case model.KindKNN:
		x, y := dataset.XY(train)
		artifact.KNN, err = knn.Fit(x, y, cfg.Train.K)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error fitting knn: %v\n", err)
			os.Exit(1)
		}
	case model.KindMLP:
		artifact.MLP, err = evolveMLP(cfg, train, features, rng)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error training mlp: %v\n", err)
			os.Exit(1)
		}
	}

	clf, err := artifact.Classifier()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if len(test) > 0 {
		x, labels := dataset.XY(test)
		report, err := eval.Holdout(clf, x, labels)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error evaluating model: %v\n", err)
			os.Exit(1)
		}
		artifact.Accuracy = report.Accuracy()
		fmt.Println("---")
		fmt.Print(report)
	}

	if err := model.Save(*outPath, artifact); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving model: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("---")
	fmt.Printf("Training complete in %v\n", time.Since(startTime).Round(time.Millisecond))
	fmt.Printf("Model saved to %s\n", *outPath)
}

// evolveMLP fits network weights with the genetic algorithm, keeping the
// best genome seen across all generations
func evolveMLP(cfg *config.Config, train []dataset.Sample, features int, rng *rand.Rand) (*nn.MLP, error) {
	arch := eval.Architecture{
		Inputs:  features,
		Hidden1: cfg.Train.Hidden1,
		Hidden2: cfg.Train.Hidden2,
		Labels:  make([]string, env.NumActions),
		Scale:   inputScale(cfg),
	}
	for i, a := range env.Actions {
		arch.Labels[i] = a.String()
	}

	x := make([][]float64, len(train))
	y := make([]int, len(train))
	for i, s := range train {
		x[i] = s.Features()
		y[i] = int(s.Action)
	}
	evaluator, err := eval.NewEvaluator(arch, x, y, cfg.Train.Workers)
	if err != nil {
		return nil, err
	}

	params := ga.Params{
		Population:     cfg.Train.GA.Population,
		Elites:         cfg.Train.GA.Elites,
		SelectionPool:  cfg.Train.GA.SelectionPool,
		TournamentK:    cfg.Train.GA.TournamentK,
		CrossoverRate:  cfg.Train.GA.CrossoverRate,
		MutationRate:   cfg.Train.GA.MutationRate,
		MutationSigma:  cfg.Train.GA.MutationSigma,
		ResetMutationP: cfg.Train.GA.ResetMutationP,
		ResetFraction:  cfg.Train.GA.ResetFraction,
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	logger, err := logging.NewTrainingLogger(cfg.Train.CSVPath, cfg.Train.JSONPath)
	if err != nil {
		return nil, err
	}
	if err := logger.Init(); err != nil {
		return nil, err
	}
	defer logger.Close()

	fmt.Printf("Hidden: %d/%d, Genome size: %d weights\n", arch.Hidden1, arch.Hidden2, arch.GenomeSize())
	fmt.Printf("Population: %d, Elites: %d, Tournament K: %d\n", params.Population, params.Elites, params.TournamentK)

	pop := ga.NewPopulation(params.Population, arch.GenomeSize(), rng)

	// Track best ever; elitism keeps it alive but mutation may not improve on it
	var bestEver *ga.Agent
	for gen := 1; gen <= cfg.Train.Generations; gen++ {
		evaluator.EvaluatePopulation(pop)
		if err := logger.LogGeneration(gen, pop); err != nil {
			return nil, err
		}

		if best := pop.Best(); bestEver == nil || best.Fitness > bestEver.Fitness {
			bestEver = best.Clone()
		}
		if gen < cfg.Train.Generations {
			pop.Next(params)
		}
	}
	if bestEver == nil {
		return nil, fmt.Errorf("no generations were run")
	}
	fmt.Printf("Best training accuracy: %.3f (fitness %.4f)\n", bestEver.Accuracy, bestEver.Fitness)
	return arch.Network(bestEver.Genome), nil
}

// inputScale brings rays, speed and acceleration to roughly unit range
func inputScale(cfg *config.Config) []float64 {
	scale := make([]float64, 0, cfg.FeatureDim())
	for i := 0; i < cfg.Sensor.Rays; i++ {
		scale = append(scale, cfg.Sensor.Range)
	}
	k := cfg.Kinematics
	accel := math.Max(math.Abs(k.BrakeAccel), math.Max(math.Abs(k.CruiseAccel), math.Abs(k.ApproachAccel)))
	if accel == 0 {
		accel = 1
	}
	return append(scale, cfg.Vehicle.MaxSpeed, accel)
}
