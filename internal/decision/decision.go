// Package decision turns a sensor reading into one driving action by fusing
// a TOPSIS ranking of the actions with a learned estimate.
package decision

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"drivesim/internal/env"
	"drivesim/internal/sensor"
	"drivesim/internal/topsis"
)

// Scores holds one value per action, indexed by env.Action
type Scores [env.NumActions]float64

// UniformScores returns the uniform distribution over actions
func UniformScores() Scores {
	var s Scores
	for i := range s {
		s[i] = 1.0 / env.NumActions
	}
	return s
}

// Best returns the highest scoring action; ties go to the earliest action
// in canonical order.
func (s Scores) Best() env.Action {
	return env.Action(floats.MaxIdx(s[:]))
}

// Decision matrix criteria
const (
	CriterionSafety = iota // clearance in the action's direction (benefit)
	CriterionSpeed         // speed kept by the action (benefit)
	CriterionRisk          // risk of the action (cost)
	NumCriteria
)

const (
	evadeSpeedFactor = 0.8
	evadeRisk        = 4
	brakeRisk        = 1
	continueRisk     = 0
	imminentRisk     = 100
)

// Policy builds the per-tick decision matrix
type Policy struct {
	MaxRange         float64 // safest-distance sentinel used for braking
	MaxSpeed         float64
	ImminentDistance float64 // center clearance below which continuing is penalised
}

// Matrix returns the 4x3 decision matrix for the zone clearances and speed
func (p Policy) Matrix(z sensor.Zones, speed float64) *mat.Dense {
	m := mat.NewDense(env.NumActions, NumCriteria, nil)
	m.SetRow(int(env.ActionEvadeLeft), []float64{z.Left, speed * evadeSpeedFactor, evadeRisk})
	m.SetRow(int(env.ActionEvadeRight), []float64{z.Right, speed * evadeSpeedFactor, evadeRisk})
	m.SetRow(int(env.ActionBrake), []float64{p.MaxRange, 0, brakeRisk})
	if z.Center < p.ImminentDistance {
		m.SetRow(int(env.ActionContinue), []float64{0, p.MaxSpeed, imminentRisk})
	} else {
		m.SetRow(int(env.ActionContinue), []float64{z.Center, p.MaxSpeed, continueRisk})
	}
	return m
}

// Fusion blends ranking scores with estimator probabilities
type Fusion struct {
	RankingWeight   float64
	EstimatorWeight float64
}

// Fuse returns the final scores. Without a trained estimator the ranking is
// returned unchanged.
func (f Fusion) Fuse(ranking, estimate Scores, trained bool) Scores {
	if !trained {
		return ranking
	}
	var out Scores
	for i := range out {
		out[i] = f.RankingWeight*ranking[i] + f.EstimatorWeight*estimate[i]
	}
	return out
}

// Decision is the outcome of one decision step
type Decision struct {
	Zones    sensor.Zones
	Features []float64
	Ranking  Scores
	Estimate Scores
	Fused    Scores
	Action   env.Action
}

// Engine runs ranking, estimation and fusion for each tick
type Engine struct {
	policy    Policy
	ranker    *topsis.Ranker
	estimator Estimator
	fusion    Fusion
	features  *env.FeatureExtractor
}

// NewEngine wires the decision pipeline. The ranker must score NumCriteria
// criteria.
func NewEngine(policy Policy, ranker *topsis.Ranker, estimator Estimator, fusion Fusion) (*Engine, error) {
	if ranker.Criteria() != NumCriteria {
		return nil, fmt.Errorf("decision: ranker has %d criteria, want %d", ranker.Criteria(), NumCriteria)
	}
	if estimator == nil {
		estimator = Uniform{}
	}
	return &Engine{
		policy:    policy,
		ranker:    ranker,
		estimator: estimator,
		fusion:    fusion,
		features:  env.NewFeatureExtractor(0),
	}, nil
}

// Hybrid reports whether a trained estimator takes part in decisions
func (e *Engine) Hybrid() bool {
	return e.estimator.Trained()
}

// Decide picks the action for the current reading, speed and acceleration
func (e *Engine) Decide(reading sensor.Reading, speed, accel float64) Decision {
	d := Decision{Zones: reading.Zones()}

	raw, err := e.ranker.Score(e.policy.Matrix(d.Zones, speed))
	if err != nil {
		// the matrix shape is fixed, so this only happens on a broken ranker
		panic(err)
	}
	copy(d.Ranking[:], raw)

	feats := e.features.Extract(reading, speed, accel)
	d.Features = append([]float64(nil), feats...)
	d.Estimate = e.estimator.Probabilities(feats)
	d.Fused = e.fusion.Fuse(d.Ranking, d.Estimate, e.estimator.Trained())
	d.Action = d.Fused.Best()
	return d
}
