// Package sensor simulates the vehicle's ranging fan and its auxiliary
// positioning sensors.
package sensor

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"drivesim/internal/geom"
)

// Reading holds one distance per ray, ordered by ascending angle offset
type Reading []float64

// Lidar casts a fixed fan of rays from the vehicle pose
type Lidar struct {
	Range  float64
	angles []float64
}

// NewLidar builds a fan of n rays evenly spaced over fov radians, centred on
// the heading.
func NewLidar(n int, fov, maxRange float64) *Lidar {
	angles := make([]float64, n)
	if n == 1 {
		angles[0] = -fov / 2
	} else if n > 1 {
		floats.Span(angles, -fov/2, fov/2)
	}
	return &Lidar{Range: maxRange, angles: angles}
}

// Angles returns the ray offsets relative to the heading
func (l *Lidar) Angles() []float64 {
	return l.angles
}

// Len returns the number of rays
func (l *Lidar) Len() int {
	return len(l.angles)
}

// Scan casts every ray against the obstacle rectangles and returns the
// distances together with the world-space ray endpoints.
func (l *Lidar) Scan(pos geom.Vec2, heading float64, obstacles []geom.Rect) (Reading, []geom.Vec2) {
	reading := make(Reading, len(l.angles))
	ends := make([]geom.Vec2, len(l.angles))
	for i, a := range l.angles {
		dir := geom.Heading(heading + a)
		far := pos.Add(dir.Scale(l.Range))
		d := geom.ClosestHit(pos, far, obstacles) * l.Range
		reading[i] = d
		ends[i] = pos.Add(dir.Scale(d))
	}
	return reading, ends
}

// Zones is the nearest distance seen in each third of the fan
type Zones struct {
	Left, Center, Right float64
}

// Zones splits the reading into left, center and right thirds; the right
// zone absorbs the remainder when the ray count is not divisible by three.
func (r Reading) Zones() Zones {
	third := len(r) / 3
	if third == 0 {
		m := math.Inf(1)
		if len(r) > 0 {
			m = floats.Min(r)
		}
		return Zones{Left: m, Center: m, Right: m}
	}
	return Zones{
		Left:   floats.Min(r[:third]),
		Center: floats.Min(r[third : 2*third]),
		Right:  floats.Min(r[2*third:]),
	}
}

// Clone returns a copy of the reading
func (r Reading) Clone() Reading {
	out := make(Reading, len(r))
	copy(out, r)
	return out
}
