// Package spring provides terrain-aware pathfinding over quad-tree node
// layers for lockstep-simulated worlds.
//
// The package is organized in layers:
//
//   - model holds the shared value types (points, rectangles, the Path
//     artifact).
//   - qtpfs implements the per-request search: best-first expansion over a
//     node layer with edge-interpolated waypoints, partial-path degradation,
//     and a 64-bit path-sharing hash.
//   - nodelayer provides a static quad-tree NodeLayer built from a cost grid
//     and a bitmap of blocked cells.
//   - cache stores finished full paths under their sharing hash.
//
// This root package ties them together as PathManager: a frame-driven
// facade that queues requests, fans a batch out over a fixed worker pool,
// deduplicates identically-hashed requests, and reacts to terrain changes
// by invalidating affected cached and live paths.
//
// All results are deterministic: the same sequence of requests and terrain
// changes against the same layers yields bit-identical paths regardless of
// worker count, so simulations that run the same inputs on different
// machines stay in sync.
package spring
