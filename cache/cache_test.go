package cache

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KyleAnthonyShepherd/spring/model"
)

func fullPath(pathType uint8, hash uint64, pts ...model.Point) *model.Path {
	p := model.NewPath(0, pathType)
	p.AllocPoints(len(pts))
	for i, pt := range pts {
		p.SetPoint(i, pt)
	}
	p.SetSourcePoint(pts[0])
	p.SetTargetPoint(pts[len(pts)-1])
	p.SetHash(hash)
	p.SetHasFullPath(true)
	p.SetBoundingBox()
	return p
}

func TestSetAndGet(t *testing.T) {
	c := NewPathCache(4)

	p := fullPath(1, 42, model.Point{X: 0}, model.Point{X: 8})
	c.Set(42, p)

	got, ok := c.Get(42)
	require.True(t, ok)
	assert.Same(t, p, got)

	_, ok = c.Get(43)
	assert.False(t, ok)

	hits, misses := c.Stats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(1), misses)
}

func TestBadHashNeverCached(t *testing.T) {
	c := NewPathCache(4)

	p := fullPath(1, model.BadHash, model.Point{}, model.Point{X: 8})
	c.Set(model.BadHash, p)

	assert.Equal(t, 0, c.Len())
	_, ok := c.Get(model.BadHash)
	assert.False(t, ok)
}

func TestPartialPathsRefused(t *testing.T) {
	c := NewPathCache(4)

	p := fullPath(1, 7, model.Point{}, model.Point{X: 8})
	p.SetHasFullPath(false)
	p.SetHasPartialPath(true)

	c.Set(7, p)
	assert.Equal(t, 0, c.Len())
}

func TestLRUEviction(t *testing.T) {
	c := NewPathCache(2)

	c.Set(1, fullPath(1, 1, model.Point{}, model.Point{X: 8}))
	c.Set(2, fullPath(1, 2, model.Point{}, model.Point{X: 8}))

	// touch 1 so 2 becomes the eviction candidate
	_, ok := c.Get(1)
	require.True(t, ok)

	c.Set(3, fullPath(1, 3, model.Point{}, model.Point{X: 8}))

	_, ok = c.Get(2)
	assert.False(t, ok, "least recently used entry should be evicted")
	_, ok = c.Get(1)
	assert.True(t, ok)
	_, ok = c.Get(3)
	assert.True(t, ok)
}

func TestInvalidatePredicate(t *testing.T) {
	c := NewPathCache(8)

	for h := uint64(1); h <= 6; h++ {
		c.Set(h, fullPath(1, h, model.Point{}, model.Point{X: float32(h)}))
	}

	dropped := c.Invalidate(func(hash uint64, _ *model.Path) bool {
		return hash%2 == 0
	})

	assert.Equal(t, 3, dropped)
	assert.Equal(t, 3, c.Len())

	_, ok := c.Get(2)
	assert.False(t, ok)
	_, ok = c.Get(3)
	assert.True(t, ok)
}

func TestSnapshotRoundTrip(t *testing.T) {
	c := NewPathCache(8)

	a := fullPath(1, 10,
		model.Point{X: 8, Z: 8},
		model.Point{X: 64, Z: 16},
		model.Point{X: 120, Z: 96},
	)
	b := fullPath(2, 11, model.Point{X: 0, Z: 0}, model.Point{X: 256, Z: 256})

	c.Set(10, a)
	c.Set(11, b)

	var buf bytes.Buffer
	require.NoError(t, c.Save(&buf))

	restored := NewPathCache(8)
	require.NoError(t, restored.Load(&buf))
	assert.Equal(t, 2, restored.Len())

	got, ok := restored.Get(10)
	require.True(t, ok)
	assert.True(t, got.IsFullPath())
	assert.Equal(t, uint8(1), got.PathType())
	require.Equal(t, a.NumPoints(), got.NumPoints())
	for i := 0; i < a.NumPoints(); i++ {
		assert.Equal(t, a.Point(i).X, got.Point(i).X, "point %d X", i)
		assert.Equal(t, a.Point(i).Z, got.Point(i).Z, "point %d Z", i)
	}
	assert.Equal(t, a.BoundingBoxMins(), got.BoundingBoxMins())
	assert.Equal(t, a.BoundingBoxMaxs(), got.BoundingBoxMaxs())
}

func TestLoadRejectsGarbage(t *testing.T) {
	c := NewPathCache(4)
	err := c.Load(bytes.NewReader([]byte("not a snapshot")))
	assert.Error(t, err)
}

func TestPurge(t *testing.T) {
	c := NewPathCache(4)
	c.Set(1, fullPath(1, 1, model.Point{}, model.Point{X: 8}))
	c.Set(2, fullPath(1, 2, model.Point{}, model.Point{X: 8}))

	c.Purge()
	assert.Equal(t, 0, c.Len())
}
