package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"

	"drivesim/internal/config"
	"drivesim/internal/dataset"
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", "", "path to config file (built-in defaults when empty)")
	outPath := flag.String("out", "", "dataset to append to (overrides recording.path)")
	format := flag.String("format", "", "csv or sqlite (overrides recording.format)")
	repeat := flag.Int("repeat", 1, "number of times to emit every pattern family")
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
	if *outPath == "" {
		*outPath = cfg.Recording.Path
	}
	if *format == "" {
		*format = cfg.Recording.Format
	}
	if *repeat < 1 {
		fmt.Fprintf(os.Stderr, "repeat must be at least 1, got %d\n", *repeat)
		os.Exit(1)
	}

	gen, err := dataset.NewGenerator(cfg.Sensor.Rays, cfg.Sensor.Range, cfg.Vehicle.MaxSpeed, rand.New(rand.NewSource(cfg.Seed)))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	rec, err := dataset.Create(*format, *outPath, cfg.Sensor.Rays)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening dataset: %v\n", err)
		os.Exit(1)
	}

	samples := gen.Generate(*repeat)
	for i, s := range samples {
		if err := rec.Record(s); err != nil {
			rec.Close()
			fmt.Fprintf(os.Stderr, "Error writing sample %d: %v\n", i, err)
			os.Exit(1)
		}
	}
	if err := rec.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Error closing dataset: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Wrote %d synthetic samples to %s\n", len(samples), *outPath)
}
