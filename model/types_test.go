package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRectContains(t *testing.T) {
	r := NewRect(2, 2, 6, 6)

	assert.True(t, r.Contains(2, 2))
	assert.True(t, r.Contains(5, 5))
	assert.False(t, r.Contains(6, 5), "X2 is exclusive")
	assert.False(t, r.Contains(5, 6), "Z2 is exclusive")
	assert.False(t, r.Contains(1, 3))
}

func TestRectIntersects(t *testing.T) {
	r := NewRect(0, 0, 4, 4)

	assert.True(t, r.Intersects(NewRect(3, 3, 8, 8)))
	assert.False(t, r.Intersects(NewRect(4, 0, 8, 4)), "edge-adjacent rects share no cell")
	assert.False(t, r.Intersects(NewRect(10, 10, 12, 12)))
}

func TestRectClampIn(t *testing.T) {
	bounds := NewRect(0, 0, 8, 8)

	clipped := NewRect(-4, 6, 12, 12).ClampIn(bounds)
	assert.Equal(t, NewRect(0, 6, 8, 8), clipped)

	empty := NewRect(10, 10, 12, 12).ClampIn(bounds)
	assert.LessOrEqual(t, empty.Area(), int32(0))
}

func TestSafeNormalize(t *testing.T) {
	n := Point{X: 3, Z: 4}.SafeNormalize()
	assert.InDelta(t, 0.6, n.X, 1e-6)
	assert.InDelta(t, 0.8, n.Z, 1e-6)

	assert.Equal(t, Point{}, Point{}.SafeNormalize())
}

func TestPathEndpoints(t *testing.T) {
	p := NewPath(1, 0)
	assert.Equal(t, 2, p.NumPoints())
	assert.Equal(t, uint64(BadHash), p.Hash())

	p.AllocPoints(4)
	p.SetPoint(1, Point{X: 8, Z: 8})
	p.SetPoint(2, Point{X: 16, Z: 8})
	p.SetSourcePoint(Point{X: 0, Z: 0})
	p.SetTargetPoint(Point{X: 24, Z: 16})

	assert.Equal(t, Point{X: 0, Z: 0}, p.Point(0))
	assert.Equal(t, Point{X: 24, Z: 16}, p.Point(3))
	assert.Equal(t, p.SourcePoint(), p.Point(0))
	assert.Equal(t, p.TargetPoint(), p.Point(3))

	p.SetBoundingBox()
	assert.Equal(t, float32(0), p.BoundingBoxMins().X)
	assert.Equal(t, float32(24), p.BoundingBoxMaxs().X)
	assert.Equal(t, float32(16), p.BoundingBoxMaxs().Z)
}

func TestPathCopyPoints(t *testing.T) {
	src := NewPath(1, 0)
	src.AllocPoints(3)
	src.SetPoint(0, Point{X: 1})
	src.SetPoint(1, Point{X: 2})
	src.SetPoint(2, Point{X: 3})

	dst := NewPath(2, 0)
	dst.CopyPoints(src)

	assert.Equal(t, 3, dst.NumPoints())
	assert.Equal(t, src.Point(1), dst.Point(1))

	// copies must not alias
	src.SetPoint(1, Point{X: 99})
	assert.Equal(t, float32(2), dst.Point(1).X)
}
