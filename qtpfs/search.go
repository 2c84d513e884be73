package qtpfs

import (
	"github.com/KyleAnthonyShepherd/spring/internal/queue"
	"github.com/KyleAnthonyShepherd/spring/model"
)

// SearchMode selects the heuristic multiplier of the expansion loop. The
// loop itself is identical in both modes.
type SearchMode uint8

const (
	// ModeAStar scales the heuristic by the reciprocal of the layer's best
	// achievable speed modifier. The estimate never overestimates remaining
	// cost, so paths are near-optimal while exploring far fewer nodes.
	ModeAStar SearchMode = iota

	// ModeDijkstra zeroes the heuristic, degenerating to pure cost-ordered
	// expansion: guaranteed-optimal paths at the price of exploring more of
	// the graph.
	ModeDijkstra
)

const (
	// ClosedNodeCost substitutes for the move cost of an impassable node, so
	// an agent that starts inside a blocked node can still pay its way out
	// instead of being stuck behind an infinite edge.
	ClosedNodeCost float32 = 1 << 20

	// ShareMinNodeSize is the smallest source node size (in cells) for which
	// paths may be shared between requests.
	ShareMinNodeSize = 16

	// ShareMaxNodeSize is the size the source node identity is refined to
	// before hashing, quantizing nearby sources onto one shared key.
	ShareMaxNodeSize = 16

	// impassableSearchMargin widens the rectangle scanned for a substitute
	// target around a fully impassable goal node, in cells.
	impassableSearchMargin = 16
)

// Config carries the tuning constants of one search. The zero value is not
// usable; start from DefaultConfig.
type Config struct {
	Mode SearchMode

	// SmoothingIterations bounds smoothing passes; 0 disables smoothing.
	SmoothingIterations int

	// SmoothingEpsilon is the world-unit distance below which a waypoint
	// counts as "not moved" when deciding whether another pass is worth it.
	SmoothingEpsilon float32
}

// DefaultConfig returns the tuning used by the surrounding engine.
func DefaultConfig() Config {
	return Config{
		Mode:                ModeAStar,
		SmoothingIterations: 2,
		SmoothingEpsilon:    0.05,
	}
}

// PathSearch orchestrates one path request end to end. The required call
// order is Initialize, InitializeThread, Execute, then Finalize (or
// SharedFinalize when an identically-hashed path already exists).
//
// A PathSearch holds no shared state; it may be reused for subsequent
// requests by calling Initialize again.
type PathSearch struct {
	cfg          Config
	moveDef      MoveDef
	rawPathCheck bool

	layer   NodeLayer
	scratch *SearchThreadData
	owner   any

	srcPoint model.Point
	tgtPoint model.Point

	searchRect model.Rect
	hash       uint64

	hCostMult    float32
	badGoal      bool
	haveFullPath bool
	havePartPath bool

	srcSearchNode *SearchNode
	tgtSearchNode *SearchNode
	curSearchNode *SearchNode

	// closest approach so far, for the partial-path fallback
	minSearchNode *SearchNode
	minHDist      float32

	// Per-neighbor candidate evaluation scratch.
	netPoints [NetPointsPerEdge]model.Float2
	gDists    [NetPointsPerEdge]float32
	hDists    [NetPointsPerEdge]float32
	gCosts    [NetPointsPerEdge]float32
	hCosts    [NetPointsPerEdge]float32
}

// New creates a search for one movement class. rawPathCheck marks that a
// direct-line feasibility check already succeeded for this request, letting
// Execute skip the graph search entirely.
func New(cfg Config, moveDef MoveDef, rawPathCheck bool) *PathSearch {
	return &PathSearch{
		cfg:          cfg,
		moveDef:      moveDef,
		rawPathCheck: rawPathCheck,
	}
}

// Initialize binds the request parameters: both points are clamped into map
// bounds, their containing nodes resolved, and the sharing hash derived.
// No shared state is touched.
func (s *PathSearch) Initialize(layer NodeLayer, srcPoint, tgtPoint model.Point, searchArea model.Rect, owner any) {
	s.layer = layer
	s.owner = owner
	s.searchRect = searchArea

	s.srcPoint = s.clampInBounds(srcPoint)
	s.tgtPoint = s.clampInBounds(tgtPoint)

	srcNode := layer.NodeAt(s.cellX(s.srcPoint), s.cellZ(s.srcPoint))
	tgtNode := layer.NodeAt(s.cellX(s.tgtPoint), s.cellZ(s.tgtPoint))

	s.hash = s.generateHash(srcNode, tgtNode)
}

// InitializeThread binds the worker scratch and resolves the working source
// and target records. A target node without any passable area is replaced by
// the nearest passable node around it, the target point moves to that node's
// center, and the goal is marked degraded; the produced path then never
// reports full, so callers cannot mistake the substituted endpoint for the
// literal requested target.
func (s *PathSearch) InitializeThread(threadData *SearchThreadData) {
	s.scratch = threadData
	s.badGoal = false

	threadData.Init(s.layer.MaxNodesAlloced(), s.layer.NumLeafNodes())

	srcNode := s.layer.NodeAt(s.cellX(s.srcPoint), s.cellZ(s.srcPoint))
	tgtNode := s.layer.NodeAt(s.cellX(s.tgtPoint), s.cellZ(s.tgtPoint))

	if tgtNode.Impassable {
		// Without a substitute the search would walk every pathable node
		// before giving up.
		mapX, mapZ := s.layer.MapDims()
		area := model.Rect{
			X1: tgtNode.Rect.X1 - impassableSearchMargin,
			Z1: tgtNode.Rect.Z1 - impassableSearchMargin,
			X2: tgtNode.Rect.X2 + impassableSearchMargin,
			Z2: tgtNode.Rect.Z2 + impassableSearchMargin,
		}.ClampIn(model.NewRect(0, 0, mapX, mapZ))

		if alt := s.layer.NearestPassableNode(area, s.cellX(s.tgtPoint), s.cellZ(s.tgtPoint)); alt != nil {
			tgtNode = alt
			s.badGoal = true

			// Steering toward the literal point would park the agent against
			// the blocked area; aim at the substitute's center instead.
			s.tgtPoint.X = float32(alt.XMid()) * model.SquareSize
			s.tgtPoint.Z = float32(alt.ZMid()) * model.SquareSize
		}
	}

	s.srcSearchNode = threadData.Nodes.Insert(srcNode.Index, newSearchNode(srcNode.Index))
	s.tgtSearchNode = threadData.Nodes.InsertIfAbsent(tgtNode.Index, newSearchNode(tgtNode.Index))
	s.curSearchNode = nil
	s.minSearchNode = s.srcSearchNode
}

// Execute runs the request and reports whether any result (full or partial)
// was produced.
func (s *PathSearch) Execute() bool {
	s.haveFullPath = s.srcSearchNode == s.tgtSearchNode
	s.havePartPath = false

	// source and target resolve to the same node
	if s.haveFullPath {
		return true
	}

	if s.rawPathCheck {
		return s.executeRawSearch()
	}

	return s.executePathSearch()
}

// Hash returns the path-sharing key computed by Initialize, or
// model.BadHash when this request cannot share a path.
func (s *PathSearch) Hash() uint64 { return s.hash }

// BadGoal reports whether the literal target node was impassable and a
// substitute goal was searched instead.
func (s *PathSearch) BadGoal() bool { return s.badGoal }

// HaveFullPath reports whether the working target node was reached.
func (s *PathSearch) HaveFullPath() bool { return s.haveFullPath }

// HavePartialPath reports whether the search produced a best-effort result
// toward the closest-approached node.
func (s *PathSearch) HavePartialPath() bool { return s.havePartPath }

func (s *PathSearch) executePathSearch() bool {
	// Be as optimistic as possible: assume the remainder of the path covers
	// only terrain with the layer's maximum speed modifier. That keeps h of
	// the same order as g; a dominant g reduces the search to Dijkstra while
	// a dominant h makes it inadmissible.
	switch s.cfg.Mode {
	case ModeAStar:
		s.hCostMult = 1.0 / s.layer.MaxRelSpeedMod()
	case ModeDijkstra:
		s.hCostMult = 0.0
	}

	s.resetState()
	s.updateNode(s.srcSearchNode, 0, 0)

	for s.scratch.OpenNodes.Len() > 0 {
		s.iterateNodes()

		s.haveFullPath = s.curSearchNode == s.tgtSearchNode
		if s.haveFullPath {
			s.scratch.ResetQueue()
		}
	}

	s.havePartPath = s.minSearchNode != s.srcSearchNode

	// Adjust the target point for a partial result, otherwise agents would
	// spin in place over a last waypoint they can never reach.
	if !s.haveFullPath && s.havePartPath {
		s.tgtSearchNode = s.minSearchNode
		minNode := s.layer.Node(s.minSearchNode.index)
		s.tgtPoint.X = float32(minNode.XMid()) * model.SquareSize
		s.tgtPoint.Z = float32(minNode.ZMid()) * model.SquareSize
	}

	return s.haveFullPath || s.havePartPath
}

func (s *PathSearch) executeRawSearch() bool {
	if s.moveDef == nil {
		return false
	}
	s.haveFullPath = s.moveDef.RawSearch(s.owner, s.srcPoint, s.tgtPoint)
	return s.haveFullPath
}

// resetState seeds the candidate scratch and the open set with the source.
func (s *PathSearch) resetState() {
	// copied into the source record by updateNode
	s.netPoints[0] = model.Float2{X: s.srcPoint.X, Z: s.srcPoint.Z}

	s.gDists[0] = 0
	s.hDists[0] = s.srcPoint.Distance(s.tgtPoint)
	s.gCosts[0] = 0
	s.hCosts[0] = s.hDists[0] * s.hCostMult

	for i := 1; i < NetPointsPerEdge; i++ {
		s.netPoints[i] = model.Float2{}
		s.gDists[i] = 0
		s.hDists[i] = 0
		s.gCosts[i] = 0
		s.hCosts[i] = 0
	}

	s.minHDist = s.hDists[0]

	s.scratch.ResetQueue()
	s.scratch.OpenNodes.Push(queue.Item{Priority: 0, Node: s.srcSearchNode.index})
}

// updateNode relaxes nextNode through candidate netPointIdx, linking it to
// the predecessor dense slot prevSlot.
func (s *PathSearch) updateNode(nextNode *SearchNode, prevSlot int32, netPointIdx int) {
	nextNode.prev = prevSlot
	nextNode.gCost = s.gCosts[netPointIdx]
	nextNode.hCost = s.hCosts[netPointIdx]
	nextNode.netPoint = s.netPoints[netPointIdx]
}

func (s *PathSearch) iterateNodes() {
	curOpenNode, _ := s.scratch.OpenNodes.Pop()
	s.scratch.NodesPopped++

	s.curSearchNode = s.scratch.Nodes.At(curOpenNode.Node)

	if s.curSearchNode == s.tgtSearchNode {
		return
	}

	// Stale entry: the node was relaxed to a better priority after this
	// entry was pushed and has been expanded through that entry already.
	if s.curSearchNode.HeapPriority() < curOpenNode.Priority {
		return
	}

	// Remember the node nearest the target in case the search never reaches
	// it. Tracked by raw distance rather than h-cost so the partial-path
	// fallback also works when the heuristic multiplier is zero.
	if d := s.tgtPoint.Distance(s.curSearchNode.netPoint.Point()); d < s.minHDist {
		s.minHDist = d
		s.minSearchNode = s.curSearchNode
	}

	s.iterateNodeNeighbors(s.layer.Node(curOpenNode.Node))
}

func (s *PathSearch) iterateNodeNeighbors(curNode *Node) {
	// For the source record this is just the original source point.
	curPoint := s.curSearchNode.netPoint.Point()
	curSlot := s.scratch.Nodes.DenseIndex(s.curSearchNode.index)

	// Each path segment is weighted by the average move cost of the node it
	// crosses. Impassable nodes are not unlinked from the graph; they carry
	// a large finite cost instead, so a unit that starts inside one can
	// still find its way out.
	curNodeSanitizedCost := curNode.MoveCost
	if curNode.Impassable {
		curNodeSanitizedCost = ClosedNodeCost
	}

	for i, nxtIndex := range curNode.Neighbors {
		nextSearchNode := s.scratch.Nodes.InsertIfAbsent(nxtIndex, newSearchNode(nxtIndex))
		isTarget := nextSearchNode == s.tgtSearchNode

		var nxtNode *Node
		if isTarget {
			nxtNode = s.layer.Node(nxtIndex)
		}

		// Examine the candidate transition points along the shared edge and
		// keep the one minimizing g+h. Distances are the actual segment
		// lengths the final path would cover; squared distances would bias
		// paths toward smaller nodes.
		netPointIdx := 0
		for j := 0; j < NetPointsPerEdge; j++ {
			s.netPoints[j] = curNode.NetPoint(i, j)
			netPoint := s.netPoints[j].Point()

			s.gDists[j] = curPoint.Distance(netPoint)
			s.hDists[j] = s.tgtPoint.Distance(netPoint)

			s.gCosts[j] = s.curSearchNode.gCost + curNodeSanitizedCost*s.gDists[j]
			if isTarget {
				// The remaining cost to the exact target is already part of
				// g, so h must not count it again.
				s.gCosts[j] += nxtNode.MoveCost * s.hDists[j]
				s.hCosts[j] = 0
			} else {
				s.hCosts[j] = s.hDists[j] * s.hCostMult
			}

			if s.gCosts[j]+s.hCosts[j] < s.gCosts[netPointIdx]+s.hCosts[netPointIdx] {
				netPointIdx = j
			}
		}

		// Relax only on strict improvement; this gate bounds total work and
		// prevents re-expansion cycles.
		if s.gCosts[netPointIdx] >= nextSearchNode.gCost {
			continue
		}

		s.updateNode(nextSearchNode, curSlot, netPointIdx)
		s.scratch.OpenNodes.Push(queue.Item{
			Priority: nextSearchNode.HeapPriority(),
			Node:     nxtIndex,
		})
		s.scratch.NodesPushed++
	}
}

// Finalize produces the path artifact: trace, optional smoothing, bounding
// box, and result flags. A degraded goal forces full=false even when the
// substituted target was reached.
func (s *PathSearch) Finalize(path *model.Path) {
	if !s.rawPathCheck {
		s.tracePath(path)

		if s.cfg.SmoothingIterations > 0 {
			s.smoothPath(path)
		}
	} else {
		// the raw shortcut is always a two-point straight line
		path.AllocPoints(2)
		path.SetSourcePoint(s.srcPoint)
		path.SetTargetPoint(s.tgtPoint)
	}

	path.SetHash(s.hash)
	path.SetBoundingBox()

	// full and partial are mutually exclusive: a path that reached a
	// degraded goal still carries usable waypoints and reports partial.
	full := s.haveFullPath && !s.badGoal
	path.SetHasFullPath(full)
	path.SetHasPartialPath((s.havePartPath || s.haveFullPath) && !full)
}

// SharedFinalize copies an already-computed path with an identical sharing
// hash into dst, keeping dst's own source and target points.
func (s *PathSearch) SharedFinalize(src, dst *model.Path) bool {
	dst.CopyPoints(src)
	dst.SetSourcePoint(s.srcPoint)
	dst.SetTargetPoint(s.tgtPoint)
	dst.SetHash(s.hash)
	dst.SetBoundingBox()
	dst.SetHasFullPath(src.IsFullPath())
	dst.SetHasPartialPath(src.IsPartialPath())

	s.haveFullPath = src.IsFullPath()
	s.havePartPath = src.IsPartialPath()

	return true
}

func (s *PathSearch) clampInBounds(p model.Point) model.Point {
	mapX, mapZ := s.layer.MapDims()
	maxX := float32(mapX)*model.SquareSize - 1
	maxZ := float32(mapZ)*model.SquareSize - 1

	p.X = min(max(p.X, 0), maxX)
	p.Z = min(max(p.Z, 0), maxZ)
	return p
}

func (s *PathSearch) cellX(p model.Point) int32 {
	return int32(p.X / model.SquareSize)
}

func (s *PathSearch) cellZ(p model.Point) int32 {
	return int32(p.Z / model.SquareSize)
}
