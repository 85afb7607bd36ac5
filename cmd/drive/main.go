package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"drivesim/internal/config"
	"drivesim/internal/dataset"
	"drivesim/internal/decision"
	"drivesim/internal/env"
	"drivesim/internal/logging"
	"drivesim/internal/model"
	"drivesim/internal/sim"
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", "", "path to config file (built-in defaults when empty)")
	modelPath := flag.String("model", "", "classifier artifact (overrides model.path)")
	ticks := flag.Int("ticks", 0, "run this many ticks as fast as possible, then exit")
	record := flag.Bool("record", false, "start with recording enabled")
	replayOut := flag.String("replay-out", "", "write the action trace of this run to a replay file")
	verify := flag.String("verify", "", "re-run a replay file and report the first divergent tick")
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
	if *modelPath != "" {
		cfg.Model.Path = *modelPath
	}

	clf := loadClassifier(cfg)

	if *verify != "" {
		os.Exit(verifyReplay(cfg, clf, *verify))
	}

	simulator, err := sim.New(cfg, clf)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building simulator: %v\n", err)
		os.Exit(1)
	}

	mode := "heuristic-only"
	if simulator.Hybrid() {
		mode = "hybrid"
	}
	fmt.Println("Autonomous driving simulator")
	fmt.Printf("Seed: %d, Rays: %d, Range: %.0f, Mode: %s\n", cfg.Seed, cfg.Sensor.Rays, cfg.Sensor.Range, mode)
	if *ticks > 0 {
		fmt.Printf("Headless run: %d ticks\n", *ticks)
	} else {
		fmt.Printf("Live run at %d fps (SIGUSR1 record, SIGUSR2 pause, SIGHUP reset, Ctrl+C stop)\n", cfg.Run.FPS)
	}
	fmt.Println("---")

	var recorder dataset.Recorder
	rec, err := dataset.Create(cfg.Recording.Format, cfg.Recording.Path, cfg.Sensor.Rays)
	if err != nil {
		log.Printf("recording disabled: %v", err)
	} else {
		recorder = rec
		defer recorder.Close()
	}

	logger, err := logging.NewLogger(cfg.Logging.CSVPath, cfg.Logging.JSONPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Close()

	loopCfg := sim.LoopConfig{
		FPS:         cfg.Run.FPS,
		DT:          cfg.Run.DT,
		RecordEvery: cfg.Recording.Every,
		Recording:   cfg.Recording.Enabled || *record,
		MaxTicks:    *ticks,
	}
	if *ticks > 0 {
		loopCfg.FPS = 0
	}
	loop := sim.NewLoop(simulator, loopCfg, recorder)

	var replay *env.Replay
	if *replayOut != "" {
		replay = env.NewReplay(cfg.Seed, loopCfg.DT, simulator.Hybrid())
		loop.RecordReplay(replay)
	}

	var episodes []env.EpisodeStats
	loop.OnEpisode(func(s env.EpisodeStats) {
		episodes = append(episodes, s)
		if err := logger.LogEpisode(s); err != nil {
			log.Printf("episode log: %v", err)
		}
	})
	if every := cfg.Logging.StatusEvery; every > 0 {
		loop.OnTick(func(t sim.Tick) {
			if t.Index%every != 0 && !t.Reset {
				return
			}
			fmt.Println(logging.FormatStatus(logging.Status{
				Tick:      loop.Ticks(),
				X:         t.After.Pos.X,
				Y:         t.After.Pos.Y,
				Speed:     t.After.Speed,
				Accel:     t.After.Accel,
				Center:    t.Zones.Center,
				Action:    t.Action,
				Score:     t.Fused[t.Action],
				Hybrid:    simulator.Hybrid(),
				Recording: loop.Recording(),
				Paused:    loop.Paused(),
			}))
		})
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	forwardControls(ctx, loop.Commands())

	start := time.Now()
	loop.Run(ctx)

	fmt.Println("---")
	fmt.Printf("Stopped after %d ticks in %v, %d samples recorded\n",
		loop.Ticks(), time.Since(start).Round(time.Millisecond), loop.Recorded())
	logger.LogAggregate(env.Aggregate(episodes))

	if replay != nil {
		if err := os.MkdirAll(filepath.Dir(*replayOut), 0755); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to save replay: %v\n", err)
		} else if err := replay.Save(*replayOut); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to save replay: %v\n", err)
		} else {
			fmt.Printf("Replay saved to %s (%d ticks)\n", *replayOut, replay.Len())
		}
	}
}

// loadClassifier returns nil when no usable artifact exists; the simulator
// then ranks actions on its own
func loadClassifier(cfg *config.Config) decision.Classifier {
	clf, err := model.Load(cfg.Model.Path, cfg.FeatureDim())
	switch {
	case errors.Is(err, model.ErrNotFound):
		log.Printf("no model at %s, running heuristic-only", cfg.Model.Path)
		return nil
	case err != nil:
		log.Printf("model load failed, running heuristic-only: %v", err)
		return nil
	}
	log.Printf("loaded model %s (classes %v)", cfg.Model.Path, clf.Classes())
	return clf
}

func verifyReplay(cfg *config.Config, clf decision.Classifier, path string) int {
	replay, err := env.LoadReplay(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading replay: %v\n", err)
		return 1
	}
	cfg.Seed = replay.Seed
	cfg.Run.DT = replay.DT
	if replay.Hybrid != (clf != nil) {
		log.Printf("replay was recorded with hybrid=%v, current run has hybrid=%v", replay.Hybrid, clf != nil)
	}

	simulator, err := sim.New(cfg, clf)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building simulator: %v\n", err)
		return 1
	}
	if tick := sim.Verify(simulator, replay); tick >= 0 {
		fmt.Printf("Replay diverged at tick %d of %d\n", tick, replay.Len())
		return 1
	}
	fmt.Printf("Replay reproduced: %d ticks\n", replay.Len())
	return 0
}
