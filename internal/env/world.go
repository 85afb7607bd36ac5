package env

import (
	"math/rand"

	"drivesim/internal/geom"
)

// ObstacleKind tags an obstacle as static or moving
type ObstacleKind int

const (
	ObstacleStatic ObstacleKind = iota
	ObstacleDynamic
)

func (k ObstacleKind) String() string {
	if k == ObstacleDynamic {
		return "dynamic"
	}
	return "static"
}

// Obstacle is an axis-aligned box drifting horizontally
type Obstacle struct {
	Rect geom.Rect
	VX   float64
	Kind ObstacleKind
}

// NewObstacle tags the obstacle from its velocity
func NewObstacle(r geom.Rect, vx float64) Obstacle {
	kind := ObstacleStatic
	if vx != 0 {
		kind = ObstacleDynamic
	}
	return Obstacle{Rect: r, VX: vx, Kind: kind}
}

// World is the complete simulation state: the vehicle and its obstacle field
type World struct {
	Vehicle   Vehicle
	Obstacles []Obstacle
	Tick      int // ticks since the scenario was created
}

// Clone returns a copy that shares no memory with w
func (w World) Clone() World {
	obs := make([]Obstacle, len(w.Obstacles))
	copy(obs, w.Obstacles)
	w.Obstacles = obs
	return w
}

// MoveObstacles returns a copy of w with every obstacle advanced by dt
func (w World) MoveObstacles(dt float64) World {
	w = w.Clone()
	for i := range w.Obstacles {
		w.Obstacles[i].Rect.X += w.Obstacles[i].VX * dt
	}
	return w
}

// Escaped reports whether any obstacle has fully left the field on the left
func (w World) Escaped() bool {
	for _, o := range w.Obstacles {
		if o.Rect.Right() < 0 {
			return true
		}
	}
	return false
}

// Rects returns the obstacle geometry for ray queries
func (w World) Rects() []geom.Rect {
	rects := make([]geom.Rect, len(w.Obstacles))
	for i, o := range w.Obstacles {
		rects[i] = o.Rect
	}
	return rects
}

// FieldSpec bounds the randomised scenario layout
type FieldSpec struct {
	Width, Height     float64
	ObstacleCount     int
	SpawnXMin         int
	SpawnXMax         int
	SpawnYMin         int
	SpawnYMax         int
	SizeMin, SizeMax  int
	SpeedMin          float64
	SpeedMax          float64
	StaticProbability float64
	Start             Vehicle
}

// Spawner builds fresh scenarios from a seeded random source
type Spawner struct {
	spec FieldSpec
	rng  *rand.Rand
}

// NewSpawner creates a spawner drawing layouts from rng
func NewSpawner(spec FieldSpec, rng *rand.Rand) *Spawner {
	return &Spawner{spec: spec, rng: rng}
}

// Spec returns the field bounds
func (s *Spawner) Spec() FieldSpec {
	return s.spec
}

// NewWorld creates the vehicle at its start pose together with a new random
// obstacle field. Both are always created together.
func (s *Spawner) NewWorld() World {
	obs := make([]Obstacle, s.spec.ObstacleCount)
	for i := range obs {
		x := s.intRange(s.spec.SpawnXMin, s.spec.SpawnXMax)
		y := s.intRange(s.spec.SpawnYMin, s.spec.SpawnYMax)
		w := s.intRange(s.spec.SizeMin, s.spec.SizeMax)
		h := s.intRange(s.spec.SizeMin, s.spec.SizeMax)
		vx := 0.0
		if s.rng.Float64() > s.spec.StaticProbability {
			vx = s.spec.SpeedMin + s.rng.Float64()*(s.spec.SpeedMax-s.spec.SpeedMin)
		}
		obs[i] = NewObstacle(geom.Rect{X: float64(x), Y: float64(y), W: float64(w), H: float64(h)}, vx)
	}
	return World{Vehicle: s.spec.Start, Obstacles: obs}
}

// intRange returns a uniform integer in [lo, hi]
func (s *Spawner) intRange(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + s.rng.Intn(hi-lo+1)
}
