package geom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSegmentRect(t *testing.T) {
	box := Rect{X: 100, Y: -20, W: 40, H: 40}

	t.Run("ray through centre hits entry edge", func(t *testing.T) {
		tHit, ok := SegmentRect(Vec2{0, 0}, Vec2{250, 0}, box)
		require.True(t, ok)
		assert.InDelta(t, 100.0/250.0, tHit, 1e-12)
	})

	t.Run("ray starting inside hits exit edge", func(t *testing.T) {
		tHit, ok := SegmentRect(Vec2{120, 0}, Vec2{220, 0}, box)
		require.True(t, ok)
		assert.InDelta(t, 0.2, tHit, 1e-12)
	})

	t.Run("ray pointing away misses", func(t *testing.T) {
		_, ok := SegmentRect(Vec2{0, 0}, Vec2{-250, 0}, box)
		assert.False(t, ok)
	})

	t.Run("ray too short misses", func(t *testing.T) {
		_, ok := SegmentRect(Vec2{0, 0}, Vec2{99, 0}, box)
		assert.False(t, ok)
	})

	t.Run("diagonal ray enters through top edge", func(t *testing.T) {
		tHit, ok := SegmentRect(Vec2{110, -40}, Vec2{130, 0}, box)
		require.True(t, ok)
		assert.InDelta(t, 0.5, tHit, 1e-12)
	})
}

func TestSegmentIntersectParallel(t *testing.T) {
	_, ok := SegmentIntersect(Vec2{0, 0}, Vec2{10, 0}, Vec2{0, 5}, Vec2{10, 5})
	assert.False(t, ok)
}

func TestClosestHit(t *testing.T) {
	rects := []Rect{
		{X: 200, Y: -10, W: 20, H: 20},
		{X: 50, Y: -10, W: 20, H: 20},
		{X: 10, Y: 100, W: 20, H: 20},
	}
	assert.InDelta(t, 0.2, ClosestHit(Vec2{0, 0}, Vec2{250, 0}, rects), 1e-12)
	assert.Equal(t, 1.0, ClosestHit(Vec2{0, 0}, Vec2{0, -250}, rects))
	assert.Equal(t, 1.0, ClosestHit(Vec2{0, 0}, Vec2{250, 0}, nil))
}

func TestRectEdges(t *testing.T) {
	r := Rect{X: 1, Y: 2, W: 3, H: 4}
	assert.Equal(t, 4.0, r.Right())
	assert.Equal(t, 6.0, r.Bottom())
	edges := r.Edges()
	assert.Equal(t, Vec2{1, 2}, edges[0][0])
	assert.Equal(t, Vec2{1, 2}, edges[3][1])
}

func TestRectBounds(t *testing.T) {
	r := Rect{X: 10, Y: 20, W: 30, H: 40}
	assert.Equal(t, 10.0, r.Left())
	assert.Equal(t, 40.0, r.Right())
	assert.Equal(t, 20.0, r.Top())
	assert.Equal(t, 60.0, r.Bottom())
}
