package main

import (
	"flag"
	"fmt"
	"os"

	"drivesim/internal/config"
	"drivesim/internal/dataset"
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", "", "path to config file (built-in defaults when empty)")
	dataPath := flag.String("data", "", "dataset to inspect (overrides recording.path)")
	chartPath := flag.String("chart", "", "write a label distribution chart (.png, .svg or .pdf)")
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

	samples, err := dataset.Load(*dataPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading dataset: %v\n", err)
		os.Exit(1)
	}

	summary := dataset.Summarize(samples, cfg.Sensor.Range)
	fmt.Printf("Dataset: %s\n", *dataPath)
	fmt.Print(summary)

	if *chartPath != "" {
		if err := dataset.SaveChart(*chartPath, summary); err != nil {
			fmt.Fprintf(os.Stderr, "Error saving chart: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Chart saved to %s\n", *chartPath)
	}
}
