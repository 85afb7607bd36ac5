package sim

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"drivesim/internal/dataset"
	"drivesim/internal/env"
)

// Command is an external control input to a running loop
type Command int

const (
	TogglePause Command = iota
	ToggleRecord
	Reset
)

func (c Command) String() string {
	switch c {
	case TogglePause:
		return "toggle-pause"
	case ToggleRecord:
		return "toggle-record"
	case Reset:
		return "reset"
	default:
		return "unknown"
	}
}

// Recorder receives sampled ticks while recording is on
type Recorder interface {
	Record(dataset.Sample) error
}

// LoopConfig controls pacing and recording
type LoopConfig struct {
	FPS         int // 0 runs ticks back to back
	DT          float64
	RecordEvery int
	Recording   bool // record from the first tick
	MaxTicks    int  // 0 runs until cancelled
}

// Loop owns the world and drives the simulator. Commands arrive over a
// channel and are applied between ticks.
type Loop struct {
	sim      *Simulator
	cfg      LoopConfig
	world    env.World
	recorder Recorder
	commands chan Command

	paused    bool
	recording bool
	advanced  int // ticks actually simulated, drives the recording cadence
	recorded  int

	episode   env.EpisodeStats
	replay    *env.Replay
	onTick    func(Tick)
	onEpisode func(env.EpisodeStats)
}

// NewLoop creates a loop over a fresh world. recorder may be nil.
func NewLoop(sim *Simulator, cfg LoopConfig, recorder Recorder) *Loop {
	if cfg.DT <= 0 {
		cfg.DT = sim.DT()
	}
	if cfg.RecordEvery < 1 {
		cfg.RecordEvery = 1
	}
	return &Loop{
		sim:       sim,
		cfg:       cfg,
		world:     sim.NewWorld(),
		recorder:  recorder,
		commands:  make(chan Command, 16),
		recording: cfg.Recording && recorder != nil,
		episode:   env.NewEpisodeStats(uuid.NewString()),
	}
}

// OnTick registers a callback run after every simulated tick
func (l *Loop) OnTick(fn func(Tick)) { l.onTick = fn }

// OnEpisode registers a callback run whenever a scenario ends
func (l *Loop) OnEpisode(fn func(env.EpisodeStats)) { l.onEpisode = fn }

// RecordReplay makes the loop append every chosen action to r
func (l *Loop) RecordReplay(r *env.Replay) { l.replay = r }

// Commands returns the channel external controls write to
func (l *Loop) Commands() chan<- Command { return l.commands }

// World returns the current world state
func (l *Loop) World() env.World { return l.world }

// Paused reports whether tick advancement is frozen
func (l *Loop) Paused() bool { return l.paused }

// Recording reports whether sampled ticks go to the recorder
func (l *Loop) Recording() bool { return l.recording }

// Ticks returns the number of ticks simulated so far
func (l *Loop) Ticks() int { return l.advanced }

// Recorded returns the number of samples handed to the recorder
func (l *Loop) Recorded() int { return l.recorded }

// Apply executes one command immediately
func (l *Loop) Apply(cmd Command) {
	switch cmd {
	case TogglePause:
		l.paused = !l.paused
		log.Printf("paused: %v", l.paused)
	case ToggleRecord:
		if l.recorder == nil {
			log.Printf("recording unavailable: no recorder configured")
			return
		}
		l.recording = !l.recording
		log.Printf("recording: %v", l.recording)
	case Reset:
		l.finishEpisode(env.EndManual)
		l.world = l.sim.NewWorld()
		log.Printf("scenario reset")
	}
}

// Advance simulates exactly one tick regardless of the pause state
func (l *Loop) Advance() Tick {
	next, t := l.sim.Step(l.world, l.cfg.DT)
	if t.Reset {
		l.finishEpisode(env.EndEscaped)
	}
	l.world = next
	l.advanced++

	l.episode.Observe(t.Before, t.After, t.Action, t.Zones.Center)
	if l.replay != nil {
		l.replay.Record(t.Action)
	}
	if l.recording && l.advanced%l.cfg.RecordEvery == 0 {
		l.record(t)
	}
	if l.onTick != nil {
		l.onTick(t)
	}
	return t
}

func (l *Loop) record(t Tick) {
	s := dataset.Sample{
		Rays:   t.Reading,
		Speed:  t.Before.Speed,
		Accel:  t.Before.Accel,
		Action: t.Action,
	}
	if err := l.recorder.Record(s); err != nil {
		// a broken sink must not stop the vehicle
		log.Printf("recording stopped: %v", err)
		l.recording = false
		return
	}
	l.recorded++
}

func (l *Loop) finishEpisode(reason env.EndReason) {
	if l.episode.Ticks > 0 && l.onEpisode != nil {
		l.episode.End = reason
		l.onEpisode(l.episode)
	}
	l.episode = env.NewEpisodeStats(uuid.NewString())
}

func (l *Loop) done() bool {
	return l.cfg.MaxTicks > 0 && l.advanced >= l.cfg.MaxTicks
}

// Run drives the loop until ctx is cancelled or MaxTicks ticks have been
// simulated. Cancellation is a clean stop between ticks.
func (l *Loop) Run(ctx context.Context) {
	defer l.finishEpisode(env.EndStopped)

	if l.cfg.FPS <= 0 {
		l.runFree(ctx)
		return
	}

	ticker := time.NewTicker(time.Second / time.Duration(l.cfg.FPS))
	defer ticker.Stop()

	for !l.done() {
		select {
		case <-ctx.Done():
			return
		case cmd := <-l.commands:
			l.Apply(cmd)
		case <-ticker.C:
			if !l.paused {
				l.Advance()
			}
		}
	}
}

func (l *Loop) runFree(ctx context.Context) {
	for !l.done() {
		if l.paused {
			select {
			case <-ctx.Done():
				return
			case cmd := <-l.commands:
				l.Apply(cmd)
			}
			continue
		}

		select {
		case <-ctx.Done():
			return
		case cmd := <-l.commands:
			l.Apply(cmd)
			continue
		default:
		}
		l.Advance()
	}
}
