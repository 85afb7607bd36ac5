// Package sim advances the driving scenario one tick at a time and runs the
// live loop around it.
//
// A tick always runs in the same order: obstacles move, an escaped obstacle
// rebuilds the whole scenario, the sensors sample the (possibly new) world,
// the decision engine picks an action from the pre-action speed and
// acceleration, and kinematics integrate that action.
package sim

import (
	"math/rand"

	"drivesim/internal/config"
	"drivesim/internal/decision"
	"drivesim/internal/env"
	"drivesim/internal/geom"
	"drivesim/internal/sensor"
	"drivesim/internal/topsis"
)

// Simulator holds the fixed components of a run. It is not safe for
// concurrent use.
type Simulator struct {
	spawner *env.Spawner
	lidar   *sensor.Lidar
	gps     *sensor.Positioning
	engine  *decision.Engine
	kin     env.Kinematics
	dt      float64
}

// Tick is everything one step computed
type Tick struct {
	Index     int // world tick count after the step
	Reset     bool
	Reading   sensor.Reading
	Endpoints []geom.Vec2
	Telemetry sensor.Telemetry
	decision.Decision
	Before env.Vehicle // state the decision was made from
	After  env.Vehicle
}

// New builds a simulator from cfg. clf may be nil, in which case decisions
// use the ranking alone.
func New(cfg *config.Config, clf decision.Classifier) (*Simulator, error) {
	impacts := make([]topsis.Impact, len(cfg.Decision.Impacts))
	for i, v := range cfg.Decision.Impacts {
		impacts[i] = topsis.Impact(v)
	}
	ranker, err := topsis.New(cfg.Decision.Weights, impacts)
	if err != nil {
		return nil, err
	}
	policy := decision.Policy{
		MaxRange:         cfg.Sensor.Range,
		MaxSpeed:         cfg.Vehicle.MaxSpeed,
		ImminentDistance: cfg.Decision.ImminentDistance,
	}
	fusion := decision.Fusion{
		RankingWeight:   cfg.Decision.RankingWeight,
		EstimatorWeight: cfg.Decision.EstimatorWeight,
	}
	engine, err := decision.NewEngine(policy, ranker, decision.SelectEstimator(clf), fusion)
	if err != nil {
		return nil, err
	}

	return &Simulator{
		spawner: env.NewSpawner(FieldSpec(cfg), rand.New(rand.NewSource(cfg.Seed))),
		lidar:   sensor.NewLidar(cfg.Sensor.Rays, cfg.Sensor.FOV(), cfg.Sensor.Range),
		gps: sensor.NewPositioning(cfg.Telemetry.GPSNoise, cfg.Telemetry.IMUScale,
			rand.New(rand.NewSource(cfg.Seed+1))),
		engine: engine,
		kin:    KinematicsFrom(cfg),
		dt:     cfg.Run.DT,
	}, nil
}

// FieldSpec converts the field and vehicle sections of cfg
func FieldSpec(cfg *config.Config) env.FieldSpec {
	f := cfg.Field
	return env.FieldSpec{
		Width:             f.Width,
		Height:            f.Height,
		ObstacleCount:     f.ObstacleCount,
		SpawnXMin:         f.SpawnXMin,
		SpawnXMax:         f.SpawnXMax,
		SpawnYMin:         f.SpawnYMin,
		SpawnYMax:         f.SpawnYMax,
		SizeMin:           f.SizeMin,
		SizeMax:           f.SizeMax,
		SpeedMin:          f.SpeedMin,
		SpeedMax:          f.SpeedMax,
		StaticProbability: f.StaticProbability,
		Start: env.Vehicle{
			Pos:     geom.Vec2{X: cfg.Vehicle.StartX, Y: cfg.Vehicle.StartY},
			Heading: cfg.Vehicle.StartHeading,
			Speed:   cfg.Vehicle.StartSpeed,
		},
	}
}

// KinematicsFrom converts the kinematics section of cfg
func KinematicsFrom(cfg *config.Config) env.Kinematics {
	k := cfg.Kinematics
	return env.Kinematics{
		MaxSpeed:      cfg.Vehicle.MaxSpeed,
		TurnRate:      k.TurnRate,
		EvadeAccel:    k.EvadeAccel,
		BrakeAccel:    k.BrakeAccel,
		CruiseAccel:   k.CruiseAccel,
		CoastAccel:    k.CoastAccel,
		ApproachAccel: k.ApproachAccel,
		FarDistance:   k.FarDistance,
		NearDistance:  k.NearDistance,
		CenteringGain: k.CenteringGain,
	}
}

// DT returns the configured integration step
func (s *Simulator) DT() float64 {
	return s.dt
}

// Hybrid reports whether a trained classifier takes part in decisions
func (s *Simulator) Hybrid() bool {
	return s.engine.Hybrid()
}

// Rays returns the number of sensor rays
func (s *Simulator) Rays() int {
	return s.lidar.Len()
}

// NewWorld builds a fresh scenario: vehicle at its start pose and a new
// random obstacle field
func (s *Simulator) NewWorld() env.World {
	return s.spawner.NewWorld()
}

// Step advances w by dt and returns the next world. w itself is not
// modified.
func (s *Simulator) Step(w env.World, dt float64) (env.World, Tick) {
	var t Tick

	w = w.MoveObstacles(dt)
	if w.Escaped() {
		w = s.spawner.NewWorld()
		t.Reset = true
	}

	v := w.Vehicle
	t.Reading, t.Endpoints = s.lidar.Scan(v.Pos, v.Heading, w.Rects())
	t.Telemetry = s.gps.Read(v.Pos, v.Heading, v.Accel)
	t.Decision = s.engine.Decide(t.Reading, v.Speed, v.Accel)

	t.Before = v
	w.Vehicle = s.kin.Apply(v, t.Action, t.Zones.Center, dt)
	w.Tick++
	t.Index = w.Tick
	t.After = w.Vehicle
	return w, t
}

// Trace runs n ticks from w with step dt and returns the chosen actions
func (s *Simulator) Trace(w env.World, n int, dt float64) []env.Action {
	actions := make([]env.Action, 0, n)
	for i := 0; i < n; i++ {
		var t Tick
		w, t = s.Step(w, dt)
		actions = append(actions, t.Action)
	}
	return actions
}

// Verify replays r from a fresh world and returns the first tick whose
// action differs from the recording, or -1 when the run reproduces it. s
// must be newly built with the replay's seed.
func Verify(s *Simulator, r *env.Replay) int {
	return r.Divergence(s.Trace(s.NewWorld(), r.Len(), r.DT))
}
