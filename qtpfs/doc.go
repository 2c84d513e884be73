// Package qtpfs implements the quad-tree pathfinding search core.
//
// The passability graph is a quad-tree per movement-class layer: large open
// regions are covered by large leaf nodes, constrained terrain by
// progressively smaller ones. PathSearch runs one request end to end over
// such a layer: best-first expansion with edge-interpolated transition
// points, an optional raw (direct-line) shortcut, partial-path degradation
// when the target is unreachable, and a 64-bit sharing hash that lets
// physically identical requests reuse one computed path.
//
// The package owns no shared mutable state. Node layers are read-only for
// the duration of a search; all ephemeral state lives in a SearchThreadData
// owned by exactly one worker. Results are communicated through flags on the
// model.Path artifact, never through errors.
//
// Determinism is a hard requirement of the surrounding lockstep simulation:
// given identical layers and request parameters, the produced waypoint
// sequence is bit-for-bit identical on every machine. Tie-breaking in the
// open set and neighbor iteration order are pure functions of node indices.
package qtpfs
