package model

import "math"

// BadHash marks a path that cannot be shared between requests.
const BadHash = math.MaxUint64

// Path is the artifact produced by one search request. The first point is
// the literal source, the last point is the (possibly substituted) target.
// Intermediate points are edge transition points chosen by the search.
type Path struct {
	id       uint32
	pathType uint8
	hash     uint64

	points []Point
	source Point
	target Point

	mins Point
	maxs Point

	haveFullPath    bool
	havePartialPath bool
}

// NewPath creates an empty path for the given movement-class layer.
// Two waypoint slots are pre-allocated for the trivial source/target case.
func NewPath(id uint32, pathType uint8) *Path {
	return &Path{
		id:       id,
		pathType: pathType,
		hash:     BadHash,
		points:   make([]Point, 2),
	}
}

// ID returns the path identifier assigned by the manager.
func (p *Path) ID() uint32 { return p.id }

// PathType returns the movement-class layer this path was searched on.
func (p *Path) PathType() uint8 { return p.pathType }

// Hash returns the path-sharing hash, or BadHash when not shareable.
func (p *Path) Hash() uint64 { return p.hash }

// SetHash records the path-sharing hash.
func (p *Path) SetHash(h uint64) { p.hash = h }

// NumPoints returns the number of waypoint slots.
func (p *Path) NumPoints() int { return len(p.points) }

// AllocPoints resizes the waypoint sequence to n slots.
func (p *Path) AllocPoints(n int) {
	if cap(p.points) < n {
		p.points = make([]Point, n)
		return
	}
	p.points = p.points[:n]
}

// Point returns waypoint i.
func (p *Path) Point(i int) Point { return p.points[i] }

// SetPoint stores waypoint i.
func (p *Path) SetPoint(i int, pt Point) { p.points[i] = pt }

// SetSourcePoint stores the source as waypoint 0.
func (p *Path) SetSourcePoint(pt Point) {
	p.source = pt
	p.points[0] = pt
}

// SetTargetPoint stores the target as the last waypoint.
func (p *Path) SetTargetPoint(pt Point) {
	p.target = pt
	p.points[len(p.points)-1] = pt
}

// SourcePoint returns the literal requested source point.
func (p *Path) SourcePoint() Point { return p.source }

// TargetPoint returns the effective target point. For a degraded or partial
// result this is not the originally requested point.
func (p *Path) TargetPoint() Point { return p.target }

// SetBoundingBox recomputes the axis-aligned bounding box of all waypoints.
func (p *Path) SetBoundingBox() {
	p.mins = Point{X: float32(math.Inf(1)), Y: float32(math.Inf(1)), Z: float32(math.Inf(1))}
	p.maxs = Point{X: float32(math.Inf(-1)), Y: float32(math.Inf(-1)), Z: float32(math.Inf(-1))}

	for _, pt := range p.points {
		p.mins.X = min(p.mins.X, pt.X)
		p.mins.Y = min(p.mins.Y, pt.Y)
		p.mins.Z = min(p.mins.Z, pt.Z)
		p.maxs.X = max(p.maxs.X, pt.X)
		p.maxs.Y = max(p.maxs.Y, pt.Y)
		p.maxs.Z = max(p.maxs.Z, pt.Z)
	}
}

// BoundingBoxMins returns the lower corner of the waypoint bounding box.
func (p *Path) BoundingBoxMins() Point { return p.mins }

// BoundingBoxMaxs returns the upper corner of the waypoint bounding box.
func (p *Path) BoundingBoxMaxs() Point { return p.maxs }

// SetHasFullPath records whether the literal target was reached.
func (p *Path) SetHasFullPath(full bool) { p.haveFullPath = full }

// SetHasPartialPath records whether this is a best-effort partial result.
func (p *Path) SetHasPartialPath(partial bool) { p.havePartialPath = partial }

// IsFullPath reports whether the literal target was reached.
func (p *Path) IsFullPath() bool { return p.haveFullPath }

// IsPartialPath reports whether this is a best-effort partial result.
func (p *Path) IsPartialPath() bool { return p.havePartialPath }

// CopyPoints replaces p's waypoints with a copy of o's. Used when a request
// reuses a path computed for an identical sharing hash.
func (p *Path) CopyPoints(o *Path) {
	p.AllocPoints(o.NumPoints())
	copy(p.points, o.points)
}
