// Package geom provides the 2D vector and ray/rectangle intersection math.
package geom

import "math"

// Vec2 is a point or direction in field coordinates (y grows downward)
type Vec2 struct {
	X, Y float64
}

// Add returns v + o
func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{X: v.X + o.X, Y: v.Y + o.Y}
}

// Scale returns v * s
func (v Vec2) Scale(s float64) Vec2 {
	return Vec2{X: v.X * s, Y: v.Y * s}
}

// Dist returns the Euclidean distance between v and o
func (v Vec2) Dist(o Vec2) float64 {
	return math.Hypot(v.X-o.X, v.Y-o.Y)
}

// Heading returns the unit vector for an angle in radians
func Heading(angle float64) Vec2 {
	return Vec2{X: math.Cos(angle), Y: math.Sin(angle)}
}

// Rect is an axis-aligned rectangle anchored at its top-left corner
type Rect struct {
	X, Y, W, H float64
}

// Left returns the smallest x of the rectangle
func (r Rect) Left() float64 { return r.X }

// Right returns the largest x
func (r Rect) Right() float64 { return r.X + r.W }

// Top returns the smallest y
func (r Rect) Top() float64 { return r.Y }

// Bottom returns the largest y
func (r Rect) Bottom() float64 { return r.Y + r.H }

// Edges returns the four boundary segments: top, right, bottom, left
func (r Rect) Edges() [4][2]Vec2 {
	tl := Vec2{r.Left(), r.Top()}
	tr := Vec2{r.Right(), r.Top()}
	br := Vec2{r.Right(), r.Bottom()}
	bl := Vec2{r.Left(), r.Bottom()}
	return [4][2]Vec2{{tl, tr}, {tr, br}, {br, bl}, {bl, tl}}
}

// SegmentIntersect returns the parameter ua along p1->p2 where it crosses
// p3->p4. Parallel segments report no hit.
func SegmentIntersect(p1, p2, p3, p4 Vec2) (float64, bool) {
	denom := (p4.Y-p3.Y)*(p2.X-p1.X) - (p4.X-p3.X)*(p2.Y-p1.Y)
	if denom == 0 {
		return 0, false
	}
	ua := ((p4.X-p3.X)*(p1.Y-p3.Y) - (p4.Y-p3.Y)*(p1.X-p3.X)) / denom
	ub := ((p2.X-p1.X)*(p1.Y-p3.Y) - (p2.Y-p1.Y)*(p1.X-p3.X)) / denom
	if ua < 0 || ua > 1 || ub < 0 || ub > 1 {
		return 0, false
	}
	return ua, true
}

// SegmentRect returns the smallest parameter t in [0,1] at which the segment
// from p1 to p2 crosses an edge of r.
func SegmentRect(p1, p2 Vec2, r Rect) (float64, bool) {
	best := 1.0
	hit := false
	for _, e := range r.Edges() {
		t, ok := SegmentIntersect(p1, p2, e[0], e[1])
		if ok && t < best {
			best = t
			hit = true
		}
	}
	return best, hit
}

// ClosestHit returns the smallest hit parameter over all rects, or 1 when the
// segment reaches its end unobstructed.
func ClosestHit(p1, p2 Vec2, rects []Rect) float64 {
	minT := 1.0
	for _, r := range rects {
		if t, ok := SegmentRect(p1, p2, r); ok && t < minT {
			minT = t
		}
	}
	return minT
}
