package spring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KyleAnthonyShepherd/spring/model"
)

func TestMarkAreaCoalescesPerBlock(t *testing.T) {
	track := newMapChangeTrack(64, 64)

	added := track.MarkArea(model.NewRect(0, 0, 8, 8))
	assert.Equal(t, 1, added, "one 16-cell block covers the area")

	// overlapping damage in the same block adds nothing
	added = track.MarkArea(model.NewRect(4, 4, 12, 12))
	assert.Equal(t, 0, added)

	// crossing a block boundary marks the second block
	added = track.MarkArea(model.NewRect(12, 0, 20, 4))
	assert.Equal(t, 1, added)
}

func TestDrainReturnsOrderedBlocksAndClears(t *testing.T) {
	track := newMapChangeTrack(64, 64)

	track.MarkArea(model.NewRect(40, 40, 44, 44))
	track.MarkArea(model.NewRect(0, 0, 4, 4))

	rects := track.Drain()
	require.Len(t, rects, 2)

	// ascending block order regardless of mark order
	assert.Equal(t, model.NewRect(0, 0, 16, 16), rects[0])
	assert.Equal(t, model.NewRect(32, 32, 48, 48), rects[1])

	assert.False(t, track.HasDamage())
	assert.Empty(t, track.Drain())
}

func TestMarkAreaClampsToMap(t *testing.T) {
	track := newMapChangeTrack(32, 32)

	assert.Equal(t, 0, track.MarkArea(model.NewRect(40, 40, 50, 50)))

	added := track.MarkArea(model.NewRect(-8, -8, 4, 4))
	assert.Equal(t, 1, added)

	rects := track.Drain()
	require.Len(t, rects, 1)
	assert.Equal(t, model.NewRect(0, 0, 16, 16), rects[0])
}

func TestDrainClampsBlocksAtMapEdge(t *testing.T) {
	// 24 cells is one full block plus a partial one
	track := newMapChangeTrack(24, 24)

	track.MarkArea(model.NewRect(20, 20, 24, 24))

	rects := track.Drain()
	require.Len(t, rects, 1)
	assert.Equal(t, model.NewRect(16, 16, 24, 24), rects[0])
}
