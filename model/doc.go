// Package model defines core types shared by the pathfinding engine.
//
// # Geometry Types
//
//   - Point: position in world space (float32, Y is height)
//   - Float2: a point on the X/Z plane (edge transition points)
//   - Rect: axis-aligned rectangle in grid cells, half-open on X2/Z2
//
// # Path Artifact
//
// Path is the output of one search request: an ordered waypoint sequence
// with distinguished source/target points, a bounding box, and result flags
// (full, partial). It is mutated only by the tracer and smoother during
// finalization and must be treated as immutable afterwards.
package model
