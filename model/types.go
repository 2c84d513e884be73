package model

import (
	"fmt"
	"math"
)

// SquareSize is the width of one grid cell in world units.
const SquareSize = 8

// Point is a position in world space. Y is height; the search operates on
// the X/Z plane and carries Y through unmodified.
type Point struct {
	X, Y, Z float32
}

// String returns a string representation of the Point.
func (p Point) String() string {
	return fmt.Sprintf("(%g,%g,%g)", p.X, p.Y, p.Z)
}

// Add returns p + o.
func (p Point) Add(o Point) Point {
	return Point{p.X + o.X, p.Y + o.Y, p.Z + o.Z}
}

// Sub returns p - o.
func (p Point) Sub(o Point) Point {
	return Point{p.X - o.X, p.Y - o.Y, p.Z - o.Z}
}

// Dot returns the dot product of p and o.
func (p Point) Dot(o Point) float32 {
	return p.X*o.X + p.Y*o.Y + p.Z*o.Z
}

// Distance returns the Euclidean distance between p and o.
func (p Point) Distance(o Point) float32 {
	dx := p.X - o.X
	dy := p.Y - o.Y
	dz := p.Z - o.Z
	return float32(math.Sqrt(float64(dx*dx + dy*dy + dz*dz)))
}

// SqLength2D returns the squared length of p projected onto the X/Z plane.
func (p Point) SqLength2D() float32 {
	return p.X*p.X + p.Z*p.Z
}

// SafeNormalize returns p scaled to unit length, or the zero Point when p is
// too short to normalize.
func (p Point) SafeNormalize() Point {
	sq := p.X*p.X + p.Y*p.Y + p.Z*p.Z
	if sq <= 1e-12 {
		return Point{}
	}
	inv := float32(1.0 / math.Sqrt(float64(sq)))
	return Point{p.X * inv, p.Y * inv, p.Z * inv}
}

// Float2 is a point on the X/Z plane. Edge transition points are stored in
// this form because node edges carry no height information.
type Float2 struct {
	X, Z float32
}

// Point converts f to a Point with zero height.
func (f Float2) Point() Point {
	return Point{f.X, 0, f.Z}
}

// Rect is an axis-aligned rectangle in grid cells. X2 and Z2 are exclusive.
type Rect struct {
	X1, Z1, X2, Z2 int32
}

// NewRect returns the rectangle [x1,x2) x [z1,z2).
func NewRect(x1, z1, x2, z2 int32) Rect {
	return Rect{X1: x1, Z1: z1, X2: x2, Z2: z2}
}

// Width returns the extent of r along X.
func (r Rect) Width() int32 { return r.X2 - r.X1 }

// Height returns the extent of r along Z.
func (r Rect) Height() int32 { return r.Z2 - r.Z1 }

// Area returns the number of cells covered by r.
func (r Rect) Area() int32 { return r.Width() * r.Height() }

// Contains reports whether cell (x, z) lies inside r.
func (r Rect) Contains(x, z int32) bool {
	return x >= r.X1 && x < r.X2 && z >= r.Z1 && z < r.Z2
}

// Intersects reports whether r and o share at least one cell.
func (r Rect) Intersects(o Rect) bool {
	return r.X1 < o.X2 && o.X1 < r.X2 && r.Z1 < o.Z2 && o.Z1 < r.Z2
}

// ClampIn returns r clipped to the bounds of o.
func (r Rect) ClampIn(o Rect) Rect {
	return Rect{
		X1: max(r.X1, o.X1),
		Z1: max(r.Z1, o.Z1),
		X2: min(r.X2, o.X2),
		Z2: min(r.Z2, o.Z2),
	}
}
