// Package nodelayer provides a static in-memory quad-tree implementation of
// the qtpfs.NodeLayer contract, built once from a per-cell speed-modifier
// grid and a roaring bitmap of blocked cells.
//
// It is the reference graph adapter used by tests and hosts that do not
// bring their own node-graph pipeline. Incremental updates after
// construction are deliberately unsupported; a terrain change means
// rebuilding the affected layer.
package nodelayer
