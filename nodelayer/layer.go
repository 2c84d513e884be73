package nodelayer

import (
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/KyleAnthonyShepherd/spring/model"
	"github.com/KyleAnthonyShepherd/spring/qtpfs"
)

// Layer is a static quad-tree node layer. Leaves are uniform: every cell of
// a leaf shares one blocked status and one speed modifier.
type Layer struct {
	layer  uint8
	width  int32
	height int32

	pool   []qtpfs.Node
	leafAt []int32 // cell -> pool index

	maxRelSpeedMod float32
}

type builder struct {
	width     int32
	height    int32
	speedMods []float32
	blocked   *roaring.Bitmap

	pool   []qtpfs.Node
	leafAt []int32
}

// Build constructs a layer for movement class layerID over a width x height
// cell grid. speedMods holds one speed modifier per cell in row-major order
// (nil means uniform 1.0); cells present in blocked are impassable for this
// layer regardless of their modifier.
func Build(layerID uint8, width, height int32, speedMods []float32, blocked *roaring.Bitmap) (*Layer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("nodelayer: invalid dimensions %dx%d", width, height)
	}
	if speedMods != nil && int32(len(speedMods)) != width*height {
		return nil, fmt.Errorf("nodelayer: speedMods length %d does not match %dx%d grid", len(speedMods), width, height)
	}
	if blocked == nil {
		blocked = roaring.New()
	}

	b := &builder{
		width:     width,
		height:    height,
		speedMods: speedMods,
		blocked:   blocked,
		leafAt:    make([]int32, width*height),
	}

	rootSize := int32(1)
	for rootSize < width || rootSize < height {
		rootSize <<= 1
	}

	b.split(model.NewRect(0, 0, rootSize, rootSize), 0)
	b.link()

	l := &Layer{
		layer:  layerID,
		width:  width,
		height: height,
		pool:   b.pool,
		leafAt: b.leafAt,
	}
	l.maxRelSpeedMod = b.maxSpeedMod()

	return l, nil
}

func (b *builder) cellBlocked(x, z int32) bool {
	return b.blocked.Contains(uint32(z*b.width + x))
}

func (b *builder) cellSpeedMod(x, z int32) float32 {
	if b.speedMods == nil {
		return 1.0
	}
	return b.speedMods[z*b.width+x]
}

// uniform reports whether every in-map cell of r shares the blocked status
// and speed modifier of the region's first cell.
func (b *builder) uniform(r model.Rect) bool {
	blocked := b.cellBlocked(r.X1, r.Z1)
	mod := b.cellSpeedMod(r.X1, r.Z1)

	for z := r.Z1; z < r.Z2; z++ {
		for x := r.X1; x < r.X2; x++ {
			if b.cellBlocked(x, z) != blocked || b.cellSpeedMod(x, z) != mod {
				return false
			}
		}
	}
	return true
}

// split recursively subdivides region until uniform, emitting leaves into
// the pool in depth-first order. Child quadrants are numbered
// right + 2*down, matching the virtual child derivation of the sharing
// hash.
func (b *builder) split(region model.Rect, nodeNumber uint32) {
	clipped := region.ClampIn(model.NewRect(0, 0, b.width, b.height))
	if clipped.Area() <= 0 {
		return
	}

	if region.Width() == 1 || b.uniform(clipped) {
		b.emitLeaf(clipped, nodeNumber)
		return
	}

	half := region.Width() / 2
	for i := uint32(0); i < 4; i++ {
		x1 := region.X1 + half*int32(i&1)
		z1 := region.Z1 + half*int32(i>>1)
		child := model.NewRect(x1, z1, x1+half, z1+half)
		b.split(child, (nodeNumber<<2)+i+1)
	}
}

func (b *builder) emitLeaf(r model.Rect, nodeNumber uint32) {
	blocked := b.cellBlocked(r.X1, r.Z1)
	mod := b.cellSpeedMod(r.X1, r.Z1)

	moveCost := float32(0)
	if !blocked && mod > 0 {
		moveCost = 1.0 / mod
	}

	index := uint32(len(b.pool))
	b.pool = append(b.pool, qtpfs.Node{
		Index:      index,
		NodeNumber: nodeNumber,
		Rect:       r,
		MoveCost:   moveCost,
		Impassable: blocked || mod <= 0,
	})

	for z := r.Z1; z < r.Z2; z++ {
		for x := r.X1; x < r.X2; x++ {
			b.leafAt[z*b.width+x] = int32(index)
		}
	}
}

// link computes neighbor lists, relations, and the pre-sampled transition
// points for every leaf. Neighbor order is the deterministic boundary scan
// order left, right, top, bottom, then the four corners.
func (b *builder) link() {
	for i := range b.pool {
		node := &b.pool[i]
		r := node.Rect

		b.scanEdge(node, r.X1-1, r.X1-1, r.Z1, r.Z2-1, qtpfs.RelEdgeL)
		b.scanEdge(node, r.X2, r.X2, r.Z1, r.Z2-1, qtpfs.RelEdgeR)
		b.scanEdge(node, r.X1, r.X2-1, r.Z1-1, r.Z1-1, qtpfs.RelEdgeT)
		b.scanEdge(node, r.X1, r.X2-1, r.Z2, r.Z2, qtpfs.RelEdgeB)

		b.addNeighbor(node, r.X1-1, r.Z1-1, qtpfs.RelEdgeL|qtpfs.RelEdgeT)
		b.addNeighbor(node, r.X2, r.Z1-1, qtpfs.RelEdgeR|qtpfs.RelEdgeT)
		b.addNeighbor(node, r.X1-1, r.Z2, qtpfs.RelEdgeL|qtpfs.RelEdgeB)
		b.addNeighbor(node, r.X2, r.Z2, qtpfs.RelEdgeR|qtpfs.RelEdgeB)

		b.sampleNetPoints(node)
	}
}

func (b *builder) scanEdge(node *qtpfs.Node, x1, x2, z1, z2 int32, rel uint8) {
	for z := z1; z <= z2; z++ {
		for x := x1; x <= x2; x++ {
			b.addNeighbor(node, x, z, rel)
		}
	}
}

func (b *builder) addNeighbor(node *qtpfs.Node, x, z int32, rel uint8) {
	if x < 0 || x >= b.width || z < 0 || z >= b.height {
		return
	}
	index := uint32(b.leafAt[z*b.width+x])

	// Blocked leaves are never entered. They still carry outgoing links so
	// an agent that starts inside one can pay its way out.
	if b.pool[index].Impassable {
		return
	}

	for i, nb := range node.Neighbors {
		if nb == index {
			node.Relations[i] |= rel
			return
		}
	}
	node.Neighbors = append(node.Neighbors, index)
	node.Relations = append(node.Relations, rel)
}

// sampleNetPoints fills node.NetPoints with NetPointsPerEdge candidate
// crossing points per neighbor, spread evenly over the shared span in world
// coordinates. A corner-only neighbor degenerates to the corner point.
func (b *builder) sampleNetPoints(node *qtpfs.Node) {
	node.NetPoints = make([]model.Float2, len(node.Neighbors)*qtpfs.NetPointsPerEdge)

	for i, nbIndex := range node.Neighbors {
		nb := &b.pool[nbIndex]
		rel := node.Relations[i]

		// shared span is the overlap of the two rectangles
		xlo := float32(max(node.Rect.X1, nb.Rect.X1)) * model.SquareSize
		xhi := float32(min(node.Rect.X2, nb.Rect.X2)) * model.SquareSize
		zlo := float32(max(node.Rect.Z1, nb.Rect.Z1)) * model.SquareSize
		zhi := float32(min(node.Rect.Z2, nb.Rect.Z2)) * model.SquareSize

		// the edge line itself
		var edgeX, edgeZ float32
		switch {
		case rel&qtpfs.RelEdgeL != 0:
			edgeX = float32(node.Rect.X1) * model.SquareSize
		case rel&qtpfs.RelEdgeR != 0:
			edgeX = float32(node.Rect.X2) * model.SquareSize
		}
		switch {
		case rel&qtpfs.RelEdgeT != 0:
			edgeZ = float32(node.Rect.Z1) * model.SquareSize
		case rel&qtpfs.RelEdgeB != 0:
			edgeZ = float32(node.Rect.Z2) * model.SquareSize
		}

		hEdge := rel&(qtpfs.RelEdgeT|qtpfs.RelEdgeB) != 0
		vEdge := rel&(qtpfs.RelEdgeL|qtpfs.RelEdgeR) != 0

		for j := 0; j < qtpfs.NetPointsPerEdge; j++ {
			frac := float32(j+1) / float32(qtpfs.NetPointsPerEdge+1)

			var pt model.Float2
			switch {
			case hEdge && vEdge: // corner neighbor
				pt = model.Float2{X: edgeX, Z: edgeZ}
			case vEdge:
				pt = model.Float2{X: edgeX, Z: zlo + (zhi-zlo)*frac}
			default:
				pt = model.Float2{X: xlo + (xhi-xlo)*frac, Z: edgeZ}
			}
			node.NetPoints[i*qtpfs.NetPointsPerEdge+j] = pt
		}
	}
}

func (b *builder) maxSpeedMod() float32 {
	best := float32(0)
	for i := range b.pool {
		node := &b.pool[i]
		if node.Impassable || node.MoveCost <= 0 {
			continue
		}
		if mod := 1.0 / node.MoveCost; mod > best {
			best = mod
		}
	}
	if best == 0 {
		best = 1.0
	}
	return best
}

// NodeAt returns the leaf containing cell (x, z). Out-of-range coordinates
// are clamped into the map.
func (l *Layer) NodeAt(x, z int32) *qtpfs.Node {
	x = min(max(x, 0), l.width-1)
	z = min(max(z, 0), l.height-1)
	return &l.pool[l.leafAt[z*l.width+x]]
}

// Node returns the leaf with the given pool index.
func (l *Layer) Node(index uint32) *qtpfs.Node {
	return &l.pool[index]
}

// NearestPassableNode returns the passable leaf intersecting area whose
// rectangle is closest to cell (x, z), or nil. Ties resolve to the lowest
// pool index so results are reproducible.
func (l *Layer) NearestPassableNode(area model.Rect, x, z int32) *qtpfs.Node {
	var best *qtpfs.Node
	bestDist := int64(-1)

	for i := range l.pool {
		node := &l.pool[i]
		if node.Impassable || !node.Rect.Intersects(area) {
			continue
		}

		cx := min(max(x, node.Rect.X1), node.Rect.X2-1)
		cz := min(max(z, node.Rect.Z1), node.Rect.Z2-1)
		dx := int64(cx - x)
		dz := int64(cz - z)
		dist := dx*dx + dz*dz

		if bestDist < 0 || dist < bestDist {
			best = node
			bestDist = dist
		}
	}
	return best
}

// MaxNodesAlloced returns the pool size bound for sparse overlay sizing.
func (l *Layer) MaxNodesAlloced() int { return len(l.pool) }

// NumLeafNodes returns the number of leaves.
func (l *Layer) NumLeafNodes() int { return len(l.pool) }

// Layer returns the movement-class layer identity.
func (l *Layer) Layer() uint8 { return l.layer }

// RootMask returns 0: this implementation uses a single quad-tree root.
func (l *Layer) RootMask() uint32 { return 0 }

// MapDims returns the grid extent.
func (l *Layer) MapDims() (int32, int32) { return l.width, l.height }

// MaxRelSpeedMod returns the best speed modifier of any passable leaf.
func (l *Layer) MaxRelSpeedMod() float32 { return l.maxRelSpeedMod }
