package qtpfs

import (
	"math"

	"github.com/KyleAnthonyShepherd/spring/internal/queue"
	"github.com/KyleAnthonyShepherd/spring/internal/sparse"
	"github.com/KyleAnthonyShepherd/spring/model"
)

// SearchNode is the ephemeral per-request record overlaying one graph node.
// Records live in the dense array of the owning SearchThreadData and are
// discarded wholesale between requests; the predecessor link is therefore a
// dense-slot index, never a long-lived pointer.
type SearchNode struct {
	index uint32

	gCost float32
	hCost float32

	// prev is the dense slot of the predecessor record, 0 when none.
	prev int32

	// netPoint is the transition point through which this node was reached.
	netPoint model.Float2
}

func newSearchNode(index uint32) SearchNode {
	return SearchNode{
		index: index,
		gCost: math.MaxFloat32,
		hCost: math.MaxFloat32,
	}
}

// Index returns the overlaid graph node's identity.
func (n *SearchNode) Index() uint32 { return n.index }

// PathCostG returns the best known cost from the source to this node.
func (n *SearchNode) PathCostG() float32 { return n.gCost }

// PathCostH returns the heuristic estimate from this node to the target.
func (n *SearchNode) PathCostH() float32 { return n.hCost }

// HeapPriority returns the node's current f-cost. A popped open-set entry
// whose snapshot priority exceeds this value is stale and gets discarded.
func (n *SearchNode) HeapPriority() float32 { return n.gCost + n.hCost }

// TransitionPoint returns the edge point chosen when this node was reached.
func (n *SearchNode) TransitionPoint() model.Float2 { return n.netPoint }

// SearchThreadData is the reusable scratch state for one worker. It is
// bound to exactly one request at a time and reset, not reallocated, in
// between. It must never be shared or migrated mid-request.
type SearchThreadData struct {
	// Nodes overlays the layer's node pool with per-request records.
	Nodes *sparse.Data[SearchNode]

	// OpenNodes is the open set, ordered by ascending f-cost.
	OpenNodes *queue.Min

	// NodesPopped and NodesPushed count open-set traffic for the request
	// most recently run on this scratch. Diagnostics only.
	NodesPopped int
	NodesPushed int
}

const initialQueueCapacity = 256

// NewSearchThreadData creates scratch state sized for nodeCount pool slots.
func NewSearchThreadData(nodeCount int) *SearchThreadData {
	return &SearchThreadData{
		Nodes:     sparse.New[SearchNode](nodeCount),
		OpenNodes: queue.NewMin(initialQueueCapacity),
	}
}

// Init prepares the scratch for one request: the sparse index is sized to
// the layer's pool bound and the dense array is reserved for every leaf up
// front, so record pointers stay stable for the whole request.
func (d *SearchThreadData) Init(sparseSize, denseSize int) {
	d.Nodes.Reserve(denseSize + 1)
	d.Nodes.Reset(sparseSize)
	d.ResetQueue()
	d.NodesPopped = 0
	d.NodesPushed = 0
}

// ResetQueue empties the open set, keeping its backing array.
func (d *SearchThreadData) ResetQueue() {
	d.OpenNodes.Reset()
}
