package qtpfs

import "github.com/KyleAnthonyShepherd/spring/model"

// Neighbor relation bits. The relation of a node to one of its neighbors
// names the side of the node's rectangle the two share. A corner neighbor
// carries both a horizontal and a vertical bit.
const (
	RelEdgeL uint8 = 1 << iota // neighbor borders the left edge
	RelEdgeR                   // neighbor borders the right edge
	RelEdgeT                   // neighbor borders the top edge
	RelEdgeB                   // neighbor borders the bottom edge
)

// NetPointsPerEdge is the number of candidate transition points pre-sampled
// along each shared edge. One point reduces to "always the edge midpoint";
// more points approximate optimal edge-crossing placement at higher cost.
const NetPointsPerEdge = 2

// Node is one quad-tree leaf of a movement-class layer. Nodes are built and
// mutated by the external node-graph pipeline and are read-only for the
// lifetime of any single search.
type Node struct {
	// Index is the node's identity within its layer's node pool.
	Index uint32

	// NodeNumber is the node's positional quad-tree number, used by the
	// path-sharing hash to derive virtual child identities.
	NodeNumber uint32

	// Rect is the covered region in grid cells.
	Rect model.Rect

	// MoveCost is the average traversal cost per world unit, the reciprocal
	// of the average speed modifier over the covered cells.
	MoveCost float32

	// Impassable reports that every covered cell is blocked for this layer.
	Impassable bool

	// Neighbors lists adjacent leaf indices in a fixed, layer-defined order.
	Neighbors []uint32

	// Relations holds the relation bitmask for each entry of Neighbors.
	Relations []uint8

	// NetPoints holds NetPointsPerEdge pre-sampled transition points per
	// neighbor, in world coordinates, aligned with Neighbors.
	NetPoints []model.Float2
}

// XMid returns the node's center cell along X.
func (n *Node) XMid() int32 { return (n.Rect.X1 + n.Rect.X2) / 2 }

// ZMid returns the node's center cell along Z.
func (n *Node) ZMid() int32 { return (n.Rect.Z1 + n.Rect.Z2) / 2 }

// NetPoint returns candidate transition point j on the edge shared with
// neighbor i.
func (n *Node) NetPoint(i, j int) model.Float2 {
	return n.NetPoints[i*NetPointsPerEdge+j]
}

// RelationTo returns the relation bitmask for the neighbor with the given
// index, or 0 when the node is not a neighbor. Neighbor lists are short, so
// a linear scan is fine.
func (n *Node) RelationTo(index uint32) uint8 {
	for i, nb := range n.Neighbors {
		if nb == index {
			return n.Relations[i]
		}
	}
	return 0
}

// NodeLayer is the search engine's view of one movement-class layer of the
// quad-tree node graph. Construction and incremental update of the tree are
// the collaborator's concern; the engine assumes the layer is not mutated
// while any search runs against it.
type NodeLayer interface {
	// NodeAt returns the leaf containing grid cell (x, z).
	NodeAt(x, z int32) *Node

	// Node returns the leaf with the given pool index.
	Node(index uint32) *Node

	// NearestPassableNode returns the node with passable area nearest to
	// cell (x, z) among leaves intersecting area, or nil if none exists.
	// Ties are broken on the lower node index.
	NearestPassableNode(area model.Rect, x, z int32) *Node

	// MaxNodesAlloced returns an upper bound on pool indices, used to size
	// the sparse search overlay.
	MaxNodesAlloced() int

	// NumLeafNodes returns the current number of leaves, used to reserve
	// the dense search overlay.
	NumLeafNodes() int

	// Layer returns the movement-class layer identity.
	Layer() uint8

	// RootMask selects the root-node bits of a NodeNumber.
	RootMask() uint32

	// MapDims returns the map extent in grid cells.
	MapDims() (x, z int32)

	// MaxRelSpeedMod returns the best speed modifier achievable anywhere on
	// this layer. Its reciprocal scales the heuristic, which keeps the
	// estimate admissible.
	MaxRelSpeedMod() float32
}

// MoveDef describes the movement class a search runs for: the agent
// footprint (for path sharing) and the direct-line feasibility check backing
// the raw shortcut.
type MoveDef interface {
	// FootprintSize returns the agent footprint edge length in grid cells.
	FootprintSize() int32

	// RawSearch walks the straight segment from src to tgt and reports
	// whether it crosses no blocked cells for this movement class. The
	// owner context is passed through from the request.
	RawSearch(owner any, src, tgt model.Point) bool
}
