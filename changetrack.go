package spring

import (
	"sync"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/KyleAnthonyShepherd/spring/model"
)

// damageBlockSize is the granularity of terrain damage tracking, in cells.
// Changes are coalesced per block so a burst of overlapping notifications
// costs one invalidation.
const damageBlockSize = 16

// MapChangeTrack accumulates terrain-change notifications between update
// batches as a bitmap over a coarse block grid.
type MapChangeTrack struct {
	mu           sync.Mutex
	mapX         int32
	mapZ         int32
	blocksPerRow int32
	blockRows    int32
	damage       *roaring.Bitmap
}

func newMapChangeTrack(mapX, mapZ int32) *MapChangeTrack {
	return &MapChangeTrack{
		mapX:         mapX,
		mapZ:         mapZ,
		blocksPerRow: (mapX + damageBlockSize - 1) / damageBlockSize,
		blockRows:    (mapZ + damageBlockSize - 1) / damageBlockSize,
		damage:       roaring.New(),
	}
}

// MarkArea records damage over the given cell rectangle and returns the
// number of blocks that were not already marked.
func (t *MapChangeTrack) MarkArea(r model.Rect) int {
	r = r.ClampIn(model.NewRect(0, 0, t.mapX, t.mapZ))
	if r.Area() <= 0 {
		return 0
	}

	bx1 := r.X1 / damageBlockSize
	bz1 := r.Z1 / damageBlockSize
	bx2 := (r.X2 - 1) / damageBlockSize
	bz2 := (r.Z2 - 1) / damageBlockSize

	t.mu.Lock()
	defer t.mu.Unlock()

	added := 0
	for bz := bz1; bz <= bz2; bz++ {
		for bx := bx1; bx <= bx2; bx++ {
			if t.damage.CheckedAdd(uint32(bz*t.blocksPerRow + bx)) {
				added++
			}
		}
	}
	return added
}

// HasDamage reports whether any damage is pending.
func (t *MapChangeTrack) HasDamage() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return !t.damage.IsEmpty()
}

// Drain returns the pending damaged blocks as cell rectangles in ascending
// block order and clears the accumulator. The fixed order keeps downstream
// invalidation deterministic.
func (t *MapChangeTrack) Drain() []model.Rect {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.damage.IsEmpty() {
		return nil
	}

	rects := make([]model.Rect, 0, t.damage.GetCardinality())

	it := t.damage.Iterator()
	for it.HasNext() {
		block := int32(it.Next())
		bx := block % t.blocksPerRow
		bz := block / t.blocksPerRow

		rects = append(rects, model.Rect{
			X1: bx * damageBlockSize,
			Z1: bz * damageBlockSize,
			X2: min((bx+1)*damageBlockSize, t.mapX),
			Z2: min((bz+1)*damageBlockSize, t.mapZ),
		})
	}

	t.damage.Clear()
	return rects
}
