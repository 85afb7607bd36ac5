package env

import (
	"encoding/json"
	"math"
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"drivesim/internal/geom"
	"drivesim/internal/sensor"
)

func testKinematics() Kinematics {
	return Kinematics{
		MaxSpeed:      100,
		TurnRate:      1.5,
		EvadeAccel:    -10,
		BrakeAccel:    -150,
		CruiseAccel:   50,
		CoastAccel:    0,
		ApproachAccel: -30,
		FarDistance:   200,
		NearDistance:  120,
		CenteringGain: 0.05,
	}
}

func testSpec() FieldSpec {
	return FieldSpec{
		Width: 1000, Height: 650,
		ObstacleCount: 12,
		SpawnXMin:     300, SpawnXMax: 1200,
		SpawnYMin: 50, SpawnYMax: 550,
		SizeMin: 30, SizeMax: 60,
		SpeedMin: -80, SpeedMax: -20,
		StaticProbability: 0.4,
		Start:             Vehicle{Pos: geom.Vec2{X: 100, Y: 325}, Speed: 30},
	}
}

func TestParseAction(t *testing.T) {
	for _, a := range Actions {
		got, err := ParseAction(a.String())
		require.NoError(t, err)
		assert.Equal(t, a, got)
	}

	legacy, err := ParseAction("SÜRDÜR")
	require.NoError(t, err)
	assert.Equal(t, ActionContinue, legacy)

	_, err = ParseAction("JUMP")
	assert.Error(t, err)
	assert.Equal(t, "unknown", Action(9).String())
}

func TestActionJSON(t *testing.T) {
	data, err := json.Marshal([]Action{ActionBrake, ActionEvadeLeft})
	require.NoError(t, err)
	assert.JSONEq(t, `["BRAKE","EVADE_LEFT"]`, string(data))

	var back []Action
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, []Action{ActionBrake, ActionEvadeLeft}, back)
}

func TestKinematicsApply(t *testing.T) {
	k := testKinematics()
	dt := 0.1
	start := Vehicle{Heading: 0.2, Speed: 50}

	t.Run("evade left turns and decelerates", func(t *testing.T) {
		v := k.Apply(start, ActionEvadeLeft, 250, dt)
		assert.InDelta(t, 0.2-0.15, v.Heading, 1e-12)
		assert.Equal(t, -10.0, v.Accel)
		assert.InDelta(t, 49.0, v.Speed, 1e-12)
	})

	t.Run("evade right turns the other way", func(t *testing.T) {
		v := k.Apply(start, ActionEvadeRight, 250, dt)
		assert.InDelta(t, 0.2+0.15, v.Heading, 1e-12)
		assert.Equal(t, -10.0, v.Accel)
	})

	t.Run("brake keeps heading", func(t *testing.T) {
		v := k.Apply(start, ActionBrake, 250, dt)
		assert.Equal(t, 0.2, v.Heading)
		assert.Equal(t, -150.0, v.Accel)
		assert.InDelta(t, 35.0, v.Speed, 1e-12)
	})

	tiers := []struct {
		name   string
		center float64
		accel  float64
	}{
		{"far", 201, 50},
		{"medium", 150, 0},
		{"boundary far", 200, 0},
		{"near", 120, -30},
	}
	for _, tc := range tiers {
		t.Run("continue "+tc.name, func(t *testing.T) {
			v := k.Apply(start, ActionContinue, tc.center, dt)
			assert.Equal(t, tc.accel, v.Accel)
			assert.InDelta(t, 0.2*0.95, v.Heading, 1e-12)
		})
	}

	t.Run("position follows heading", func(t *testing.T) {
		v := k.Integrate(Vehicle{Heading: math.Pi / 2, Speed: 10}, 1)
		assert.InDelta(t, 0, v.Pos.X, 1e-9)
		assert.InDelta(t, 10, v.Pos.Y, 1e-9)
	})
}

func TestKinematicsSpeedBounds(t *testing.T) {
	k := testKinematics()
	rng := rand.New(rand.NewSource(3))
	v := Vehicle{Speed: 30}
	for i := 0; i < 5000; i++ {
		a := Actions[rng.Intn(NumActions)]
		dt := rng.Float64() * 2
		v = k.Apply(v, a, rng.Float64()*300, dt)
		require.GreaterOrEqual(t, v.Speed, 0.0)
		require.LessOrEqual(t, v.Speed, k.MaxSpeed)
	}

	v = k.Integrate(Vehicle{Speed: 99, Accel: 1e9}, 10)
	assert.Equal(t, 100.0, v.Speed)
	v = k.Integrate(Vehicle{Speed: 1, Accel: -1e9}, 10)
	assert.Equal(t, 0.0, v.Speed)
}

func TestSpawnerNewWorld(t *testing.T) {
	spec := testSpec()
	s := NewSpawner(spec, rand.New(rand.NewSource(42)))

	statics := 0
	total := 0
	for round := 0; round < 50; round++ {
		w := s.NewWorld()
		require.Len(t, w.Obstacles, spec.ObstacleCount)
		assert.Equal(t, spec.Start, w.Vehicle)
		assert.Zero(t, w.Tick)
		for _, o := range w.Obstacles {
			total++
			assert.GreaterOrEqual(t, o.Rect.X, 300.0)
			assert.LessOrEqual(t, o.Rect.X, 1200.0)
			assert.GreaterOrEqual(t, o.Rect.Y, 50.0)
			assert.LessOrEqual(t, o.Rect.Y, 550.0)
			assert.GreaterOrEqual(t, o.Rect.W, 30.0)
			assert.LessOrEqual(t, o.Rect.W, 60.0)
			assert.GreaterOrEqual(t, o.Rect.H, 30.0)
			assert.LessOrEqual(t, o.Rect.H, 60.0)
			if o.Kind == ObstacleStatic {
				statics++
				assert.Zero(t, o.VX)
			} else {
				assert.GreaterOrEqual(t, o.VX, -80.0)
				assert.LessOrEqual(t, o.VX, -20.0)
			}
		}
	}
	share := float64(statics) / float64(total)
	assert.InDelta(t, 0.4, share, 0.08)
}

func TestSpawnerDeterministic(t *testing.T) {
	a := NewSpawner(testSpec(), rand.New(rand.NewSource(9))).NewWorld()
	b := NewSpawner(testSpec(), rand.New(rand.NewSource(9))).NewWorld()
	if diff := cmp.Diff(a, b); diff != "" {
		t.Fatalf("worlds differ (-a +b):\n%s", diff)
	}
}

func TestWorldMoveObstacles(t *testing.T) {
	w := World{Obstacles: []Obstacle{
		NewObstacle(geom.Rect{X: 10, Y: 0, W: 30, H: 30}, -50),
		NewObstacle(geom.Rect{X: 500, Y: 0, W: 30, H: 30}, 0),
	}}
	moved := w.MoveObstacles(1)
	assert.Equal(t, 10.0, w.Obstacles[0].Rect.X, "original untouched")
	assert.Equal(t, -40.0, moved.Obstacles[0].Rect.X)
	assert.Equal(t, 500.0, moved.Obstacles[1].Rect.X)
	assert.True(t, moved.Escaped())
	assert.False(t, w.Escaped())
	assert.Equal(t, ObstacleDynamic, w.Obstacles[0].Kind)
	assert.Equal(t, ObstacleStatic, w.Obstacles[1].Kind)
	assert.Len(t, w.Rects(), 2)
}

func TestFeatureExtractor(t *testing.T) {
	f := NewFeatureExtractor(3)
	got := f.Extract(sensor.Reading{1, 2, 3}, 30, -10)
	assert.Equal(t, []float64{1, 2, 3, 30, -10}, got)
	assert.Equal(t, 42, FeatureDim(40))
}

func TestEpisodeStats(t *testing.T) {
	s := NewEpisodeStats("ep")
	s.Observe(Vehicle{}, Vehicle{Pos: geom.Vec2{X: 3, Y: 4}, Speed: 10}, ActionContinue, 250)
	s.Observe(Vehicle{}, Vehicle{Pos: geom.Vec2{X: 0, Y: 1}, Speed: 20}, ActionBrake, 40)
	assert.Equal(t, 2, s.Ticks)
	assert.InDelta(t, 6.0, s.Distance, 1e-12)
	assert.Equal(t, 40.0, s.MinClearance)
	assert.Equal(t, 15.0, s.MeanSpeed())
	assert.Equal(t, [NumActions]int{0, 0, 1, 1}, s.Actions)

	s2 := NewEpisodeStats("ep2")
	s2.Observe(Vehicle{}, Vehicle{Pos: geom.Vec2{X: 2}}, ActionBrake, 100)
	s2.End = EndEscaped
	agg := Aggregate([]EpisodeStats{s, s2})
	assert.Equal(t, 2, agg.NumEpisodes)
	assert.InDelta(t, 4.0, agg.DistanceMean, 1e-12)
	assert.InDelta(t, 2.0, agg.DistanceStd, 1e-12)
	assert.Equal(t, 40.0, agg.MinClearance)
	assert.InDelta(t, 2.0/3.0, agg.ActionShare[ActionBrake], 1e-12)
	assert.Equal(t, 1, agg.EndCounts[EndEscaped])

	empty := Aggregate(nil)
	assert.Zero(t, empty.NumEpisodes)
}

func TestReplaySaveLoad(t *testing.T) {
	r := NewReplay(7, 1.0/60, false)
	r.Record(ActionContinue)
	r.Record(ActionBrake)
	path := filepath.Join(t.TempDir(), "replay.json")
	require.NoError(t, r.Save(path))

	loaded, err := LoadReplay(path)
	require.NoError(t, err)
	assert.Equal(t, r, loaded)

	assert.Equal(t, -1, loaded.Divergence([]Action{ActionContinue, ActionBrake}))
	assert.Equal(t, 1, loaded.Divergence([]Action{ActionContinue, ActionEvadeLeft}))
	assert.Equal(t, 1, loaded.Divergence([]Action{ActionContinue}))
}
