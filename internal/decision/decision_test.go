package decision

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"drivesim/internal/env"
	"drivesim/internal/sensor"
	"drivesim/internal/topsis"
)

type stubClassifier struct {
	classes []string
	proba   []float64
	err     error
	panics  bool
	calls   int
}

func (s *stubClassifier) PredictProba([]float64) ([]float64, error) {
	s.calls++
	if s.panics {
		panic("model exploded")
	}
	return s.proba, s.err
}

func (s *stubClassifier) Classes() []string { return s.classes }

func testPolicy() Policy {
	return Policy{MaxRange: 250, MaxSpeed: 100, ImminentDistance: 60}
}

func testEngine(t *testing.T, est Estimator) *Engine {
	t.Helper()
	ranker, err := topsis.New([]float64{0.6, 0.2, 0.2}, []topsis.Impact{topsis.Benefit, topsis.Benefit, topsis.Cost})
	require.NoError(t, err)
	e, err := NewEngine(testPolicy(), ranker, est, Fusion{RankingWeight: 0.6, EstimatorWeight: 0.4})
	require.NoError(t, err)
	return e
}

func openRoad(n int) sensor.Reading {
	r := make(sensor.Reading, n)
	for i := range r {
		r[i] = 250
	}
	return r
}

func TestPolicyMatrix(t *testing.T) {
	p := testPolicy()

	m := p.Matrix(sensor.Zones{Left: 90, Center: 150, Right: 70}, 30)
	want := mat.NewDense(4, 3, []float64{
		90, 24, 4,
		70, 24, 4,
		250, 0, 1,
		150, 100, 0,
	})
	assert.True(t, mat.EqualApprox(want, m, 1e-12))

	imminent := p.Matrix(sensor.Zones{Left: 90, Center: 59.9, Right: 70}, 30)
	assert.Equal(t, []float64{0, 100, 100}, mat.Row(nil, int(env.ActionContinue), imminent))

	boundary := p.Matrix(sensor.Zones{Left: 90, Center: 60, Right: 70}, 30)
	assert.Equal(t, []float64{60, 100, 0}, mat.Row(nil, int(env.ActionContinue), boundary))
}

func TestScoresBest(t *testing.T) {
	assert.Equal(t, env.ActionEvadeLeft, Scores{0.5, 0.5, 0.1, 0.2}.Best())
	assert.Equal(t, env.ActionBrake, Scores{0.1, 0.2, 0.9, 0.9}.Best())
	assert.Equal(t, env.ActionEvadeLeft, UniformScores().Best())
}

func TestFusion(t *testing.T) {
	f := Fusion{RankingWeight: 0.6, EstimatorWeight: 0.4}
	ranking := Scores{0.2, 0.4, 0.7, 0.1}
	estimate := Scores{0.1, 0.2, 0.3, 0.4}

	assert.Equal(t, ranking, f.Fuse(ranking, estimate, false))

	fused := f.Fuse(ranking, estimate, true)
	for i := range fused {
		assert.InDelta(t, 0.6*ranking[i]+0.4*estimate[i], fused[i], 1e-12)
	}
}

func TestUniformEstimator(t *testing.T) {
	var u Uniform
	assert.False(t, u.Trained())
	p := u.Probabilities(nil)
	assert.Equal(t, Scores{0.25, 0.25, 0.25, 0.25}, p)
}

func TestLearnedRemapsLabels(t *testing.T) {
	clf := &stubClassifier{
		classes: []string{"CONTINUE", "BRAKE", "HONK", "EVADE_RIGHT", "SOLA_KAÇIN"},
		proba:   []float64{0.4, 0.1, 0.2, 0.2, 0.1},
	}
	l := NewLearned(clf)
	assert.True(t, l.Trained())
	p := l.Probabilities([]float64{1, 2, 3})
	assert.InDeltaSlice(t, []float64{0.1, 0.2, 0.1, 0.4}, p[:], 1e-12)
}

func TestLearnedFailsSoft(t *testing.T) {
	cases := map[string]*stubClassifier{
		"error":        {classes: []string{"BRAKE"}, err: errors.New("bad input")},
		"panic":        {classes: []string{"BRAKE"}, panics: true},
		"wrong length": {classes: []string{"BRAKE", "CONTINUE"}, proba: []float64{1}},
	}
	for name, clf := range cases {
		t.Run(name, func(t *testing.T) {
			p := NewLearned(clf).Probabilities([]float64{1})
			assert.Equal(t, UniformScores(), p)
			assert.Equal(t, 1, clf.calls)
		})
	}
}

func TestSelectEstimator(t *testing.T) {
	assert.IsType(t, Uniform{}, SelectEstimator(nil))
	assert.IsType(t, &Learned{}, SelectEstimator(&stubClassifier{}))
}

func TestNewEngineRejectsWrongRanker(t *testing.T) {
	ranker, err := topsis.New([]float64{0.5, 0.5}, []topsis.Impact{topsis.Benefit, topsis.Cost})
	require.NoError(t, err)
	_, err = NewEngine(testPolicy(), ranker, nil, Fusion{})
	assert.Error(t, err)
}

func TestDecideOpenRoad(t *testing.T) {
	e := testEngine(t, nil)
	assert.False(t, e.Hybrid())

	d := e.Decide(openRoad(40), 30, 0)
	assert.Equal(t, env.ActionContinue, d.Action)
	assert.Equal(t, d.Ranking, d.Fused)
	assert.Equal(t, UniformScores(), d.Estimate)
	assert.Greater(t, d.Zones.Center, 200.0)
	assert.Len(t, d.Features, 42)
	assert.Equal(t, 30.0, d.Features[40])
}

func TestDecideObstacleAhead(t *testing.T) {
	e := testEngine(t, nil)
	reading := openRoad(40)
	for i := 17; i <= 22; i++ {
		reading[i] = 50
	}

	d := e.Decide(reading, 30, 0)
	assert.NotEqual(t, env.ActionContinue, d.Action)
	assert.Equal(t, int(env.ActionContinue), floats.MinIdx(d.Fused[:]))
	assert.Greater(t, d.Ranking[env.ActionBrake], d.Ranking[env.ActionContinue])
	for _, s := range d.Ranking {
		assert.GreaterOrEqual(t, s, 0.0)
		assert.LessOrEqual(t, s, 1.0)
	}
}

func TestDecideLeftBlockedEvadesRight(t *testing.T) {
	e := testEngine(t, nil)
	reading := openRoad(40)
	for i := 0; i < 26; i++ {
		reading[i] = 50
	}
	d := e.Decide(reading, 30, 0)
	assert.Equal(t, env.ActionEvadeRight, d.Action)
}

func TestDecideHybrid(t *testing.T) {
	clf := &stubClassifier{
		classes: []string{"BRAKE", "CONTINUE", "EVADE_LEFT", "EVADE_RIGHT"},
		proba:   []float64{0.7, 0.1, 0.1, 0.1},
	}
	e := testEngine(t, NewLearned(clf))
	assert.True(t, e.Hybrid())

	d := e.Decide(openRoad(40), 30, 0)
	assert.InDeltaSlice(t, []float64{0.1, 0.1, 0.7, 0.1}, d.Estimate[:], 1e-12)
	for i := range d.Fused {
		assert.InDelta(t, 0.6*d.Ranking[i]+0.4*d.Estimate[i], d.Fused[i], 1e-12)
	}
	assert.Equal(t, d.Fused.Best(), d.Action)
}

func TestDecideDeterministic(t *testing.T) {
	reading := openRoad(40)
	reading[3] = 120
	reading[30] = 70
	a := testEngine(t, nil).Decide(reading, 42, -10)
	b := testEngine(t, nil).Decide(reading, 42, -10)
	assert.Equal(t, a, b)
}
