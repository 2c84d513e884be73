package nodelayer

import (
	"testing"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KyleAnthonyShepherd/spring/model"
	"github.com/KyleAnthonyShepherd/spring/qtpfs"
)

func blockRect(width int32, r model.Rect) *roaring.Bitmap {
	bm := roaring.New()
	for z := r.Z1; z < r.Z2; z++ {
		for x := r.X1; x < r.X2; x++ {
			bm.Add(uint32(z*width + x))
		}
	}
	return bm
}

func TestBuildValidation(t *testing.T) {
	_, err := Build(1, 0, 16, nil, nil)
	assert.Error(t, err)

	_, err = Build(1, 16, 16, make([]float32, 3), nil)
	assert.Error(t, err)
}

func TestUniformMapCollapsesToOneLeaf(t *testing.T) {
	layer, err := Build(1, 32, 32, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, layer.NumLeafNodes())

	root := layer.NodeAt(0, 0)
	assert.Equal(t, model.NewRect(0, 0, 32, 32), root.Rect)
	assert.False(t, root.Impassable)
	assert.Equal(t, float32(1), root.MoveCost)
	assert.Empty(t, root.Neighbors)
}

func TestBlockedRegionSplitsTree(t *testing.T) {
	blocked := blockRect(16, model.NewRect(8, 8, 12, 12))
	layer, err := Build(1, 16, 16, nil, blocked)
	require.NoError(t, err)

	assert.Greater(t, layer.NumLeafNodes(), 1)

	island := layer.NodeAt(9, 9)
	assert.True(t, island.Impassable)
	assert.Equal(t, model.NewRect(8, 8, 12, 12), island.Rect)

	open := layer.NodeAt(2, 2)
	assert.False(t, open.Impassable)
}

func TestEveryCellMapsToItsLeaf(t *testing.T) {
	blocked := blockRect(16, model.NewRect(4, 0, 6, 16))
	layer, err := Build(1, 16, 16, nil, blocked)
	require.NoError(t, err)

	for z := int32(0); z < 16; z++ {
		for x := int32(0); x < 16; x++ {
			node := layer.NodeAt(x, z)
			assert.True(t, node.Rect.Contains(x, z), "cell (%d,%d) not inside its leaf %v", x, z, node.Rect)
		}
	}
}

func TestPassableNodesNeverLinkIntoBlockedOnes(t *testing.T) {
	blocked := blockRect(16, model.NewRect(8, 8, 12, 12))
	layer, err := Build(1, 16, 16, nil, blocked)
	require.NoError(t, err)

	for i := 0; i < layer.NumLeafNodes(); i++ {
		node := layer.Node(uint32(i))
		for _, nb := range node.Neighbors {
			assert.False(t, layer.Node(nb).Impassable,
				"node %v links into blocked neighbor %v", node.Rect, layer.Node(nb).Rect)
		}
	}

	// the blocked island itself keeps escape links
	island := layer.NodeAt(9, 9)
	require.True(t, island.Impassable)
	assert.NotEmpty(t, island.Neighbors)
}

func TestNetPointsLieOnSharedEdges(t *testing.T) {
	blocked := blockRect(16, model.NewRect(8, 0, 10, 8))
	layer, err := Build(1, 16, 16, nil, blocked)
	require.NoError(t, err)

	for i := 0; i < layer.NumLeafNodes(); i++ {
		node := layer.Node(uint32(i))
		for ni, nb := range node.Neighbors {
			nbNode := layer.Node(nb)
			for j := 0; j < qtpfs.NetPointsPerEdge; j++ {
				pt := node.NetPoint(ni, j)

				// the point must lie on the boundary of both rectangles
				assert.GreaterOrEqual(t, pt.X, float32(max(node.Rect.X1, nbNode.Rect.X1)*model.SquareSize))
				assert.LessOrEqual(t, pt.X, float32(min(node.Rect.X2, nbNode.Rect.X2)*model.SquareSize))
				assert.GreaterOrEqual(t, pt.Z, float32(max(node.Rect.Z1, nbNode.Rect.Z1)*model.SquareSize))
				assert.LessOrEqual(t, pt.Z, float32(min(node.Rect.Z2, nbNode.Rect.Z2)*model.SquareSize))
			}
		}
	}
}

func TestNodeAtClampsOutOfRange(t *testing.T) {
	layer, err := Build(1, 16, 16, nil, nil)
	require.NoError(t, err)

	assert.Same(t, layer.NodeAt(0, 0), layer.NodeAt(-5, -5))
	assert.Same(t, layer.NodeAt(15, 15), layer.NodeAt(100, 100))
}

func TestNearestPassableNode(t *testing.T) {
	blocked := blockRect(16, model.NewRect(8, 8, 12, 12))
	layer, err := Build(1, 16, 16, nil, blocked)
	require.NoError(t, err)

	full := model.NewRect(0, 0, 16, 16)

	got := layer.NearestPassableNode(full, 9, 9)
	require.NotNil(t, got)
	assert.False(t, got.Impassable)

	// restricting the area to the island alone finds nothing
	got = layer.NearestPassableNode(model.NewRect(8, 8, 12, 12), 9, 9)
	assert.Nil(t, got)
}

func TestMaxRelSpeedMod(t *testing.T) {
	mods := make([]float32, 16*16)
	for i := range mods {
		mods[i] = 0.5
	}
	// one fast quadrant
	for z := int32(0); z < 8; z++ {
		for x := int32(0); x < 8; x++ {
			mods[z*16+x] = 2.0
		}
	}

	layer, err := Build(1, 16, 16, mods, nil)
	require.NoError(t, err)
	assert.Equal(t, float32(2.0), layer.MaxRelSpeedMod())
}

func TestLineMoveDefRawSearch(t *testing.T) {
	blocked := blockRect(16, model.NewRect(8, 0, 10, 16))
	layer, err := Build(1, 16, 16, nil, blocked)
	require.NoError(t, err)

	md := &LineMoveDef{Footprint: 2, Layer: layer}
	assert.Equal(t, int32(2), md.FootprintSize())

	// clear line on the open side
	src := model.Point{X: 2 * model.SquareSize, Z: 2 * model.SquareSize}
	tgt := model.Point{X: 6 * model.SquareSize, Z: 14 * model.SquareSize}
	assert.True(t, md.RawSearch(nil, src, tgt))

	// line through the wall
	tgt = model.Point{X: 14 * model.SquareSize, Z: 2 * model.SquareSize}
	assert.False(t, md.RawSearch(nil, src, tgt))
}
