package qtpfs

import "github.com/KyleAnthonyShepherd/spring/model"

// tracePath reconstructs the waypoint sequence by walking the predecessor
// chain from the target record back to the source record, emitting each
// record's stored transition point. Waypoints never repeat, with one
// legitimate exception: the target point can coincide with the first
// transition point, which is skipped.
func (s *PathSearch) tracePath(path *model.Path) {
	// collected target-first; written out source-first below
	var points []model.Point

	if s.srcSearchNode != s.tgtSearchNode {
		tmpNode := s.tgtSearchNode
		prvPoint := s.tgtPoint

		for tmpNode.prev != 0 && tmpNode != s.srcSearchNode {
			tmpPoint := tmpNode.netPoint.Point()

			if tmpPoint != prvPoint {
				points = append(points, tmpPoint)
			}

			prvPoint = tmpPoint
			tmpNode = s.scratch.Nodes.AtDense(tmpNode.prev)
		}
	}

	if len(points) > 0 {
		path.AllocPoints(len(points) + 2)
	} else {
		// source and target resolve to the same node, or the raw case
		path.AllocPoints(2)
	}

	// waypoints [1, N-2]; points[0] is the transition nearest the target
	n := path.NumPoints()
	for k, pt := range points {
		path.SetPoint(n-2-k, pt)
	}

	path.SetSourcePoint(s.srcPoint)
	path.SetTargetPoint(s.tgtPoint)
}

// smoothPath runs bounded smoothing passes and stops early once a pass moves
// no waypoint farther than the configured epsilon.
func (s *PathSearch) smoothPath(path *model.Path) {
	if path.NumPoints() == 2 {
		return
	}

	for k := 0; k < s.cfg.SmoothingIterations; k++ {
		if !s.smoothPathIter(path) {
			// all waypoints stopped moving
			break
		}
	}
}

// smoothPathIter walks the waypoint list from target toward source and tries
// to straighten each consecutive triple (p0, p1, p2), where p1 sits on the
// shared edge between two adjacent nodes. p1 may only move within the
// overlap of the two nodes' rectangles, so the smoothed path still crosses
// the same node sequence. Returns whether any waypoint moved.
func (s *PathSearch) smoothPathIter(path *model.Path) bool {
	ni := path.NumPoints()
	nm := 0

	epsSq := s.cfg.SmoothingEpsilon * s.cfg.SmoothingEpsilon

	n0 := s.tgtSearchNode
	n1 := s.tgtSearchNode

	for n1 != s.srcSearchNode && n0.prev != 0 {
		n0 = n1
		n1 = s.scratch.Nodes.AtDense(n0.prev)
		ni--

		if ni < 2 {
			break
		}

		nn0 := s.layer.Node(n0.index)
		nn1 := s.layer.Node(n1.index)

		ngbRel := nn0.RelationTo(nn1.Index)
		if ngbRel == 0 {
			continue
		}

		p0 := path.Point(ni)
		p1 := path.Point(ni - 1)
		p2 := path.Point(ni - 2)

		// Reduce the angle between segments p0-p1 and p1-p2 (ideally to
		// zero, making p0-p2 a straight line) without letting either
		// segment cross into other nodes.
		p1p0 := p1.Sub(p0).SafeNormalize()
		p2p1 := p2.Sub(p1).SafeNormalize()
		p2p0 := p2.Sub(p0).SafeNormalize()
		dot := p1p0.Dot(p2p1)

		// segments already nearly parallel
		if dot >= 0.995 {
			continue
		}

		// p1 lies on a horizontal edge, a vertical edge, or (for a corner
		// neighbor) both.
		hEdge := ngbRel&(RelEdgeT|RelEdgeB) != 0
		vEdge := ngbRel&(RelEdgeL|RelEdgeR) != 0

		// p1 may move within the overlap of the two rectangles
		xmin := float32(max(nn1.Rect.X1, nn0.Rect.X1)) * model.SquareSize
		zmin := float32(max(nn1.Rect.Z1, nn0.Rect.Z1)) * model.SquareSize
		xmax := float32(min(nn1.Rect.X2, nn0.Rect.X2)) * model.SquareSize
		zmax := float32(min(nn1.Rect.Z2, nn0.Rect.Z2)) * model.SquareSize

		var pi model.Point

		{
			// intersect the ray p0->p2 with the edge line; if it falls
			// inside the edge bound, move p1 there
			var dfx, dfz float32
			if p2p0.X > 0 {
				dfx = float32(nn0.Rect.X2)*model.SquareSize - p0.X
			} else {
				dfx = float32(nn0.Rect.X1)*model.SquareSize - p0.X
			}
			if p2p0.Z > 0 {
				dfz = float32(nn0.Rect.Z2)*model.SquareSize - p0.Z
			} else {
				dfz = float32(nn0.Rect.Z1)*model.SquareSize - p0.Z
			}

			dx := p2p0.X
			if dx > -0.001 && dx < 0.001 {
				dx = 0.001
			}
			dz := p2p0.Z
			if dz > -0.001 && dz < 0.001 {
				dz = 0.001
			}
			tx := dfx / dx
			tz := dfz / dz

			if hEdge {
				pi.X = p0.X + p2p0.X*tz
				pi.Z = p1.Z
			}
			if vEdge {
				pi.X = p1.X
				pi.Z = p0.Z + p2p0.Z*tx
			}

			ok := pi.X >= xmin && pi.X <= xmax
			ok = ok && pi.Z >= zmin && pi.Z <= zmax

			if ok {
				if pi.Sub(p1).SqLength2D() > epsSq {
					nm++
				}
				path.SetPoint(ni-1, pi)
				continue
			}
		}

		if hEdge != vEdge {
			// no interior intersection; try the edge end-points and keep
			// whichever improves collinearity the most
			e0 := p1
			e1 := p1

			if hEdge {
				e0.X = xmin
				e1.X = xmax
			}
			if vEdge {
				e0.Z = zmin
				e1.Z = zmax
			}

			e0p0 := e0.Sub(p0).SafeNormalize()
			p2e0 := p2.Sub(e0).SafeNormalize()
			dot0 := e0p0.Dot(p2e0)

			e1p0 := e1.Sub(p0).SafeNormalize()
			p2e1 := p2.Sub(e1).SafeNormalize()
			dot1 := e1p0.Dot(p2e1)

			// neither end-point is an improvement
			if dot >= max(dot0, dot1) {
				continue
			}

			if dot0 > max(dot1, dot) {
				pi = e0
			}
			if dot1 >= max(dot0, dot) {
				pi = e1
			}

			if pi.Sub(p1).SqLength2D() > epsSq {
				nm++
			}
			path.SetPoint(ni-1, pi)
		}
	}

	return nm != 0
}
