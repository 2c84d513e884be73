package nodelayer

import (
	"github.com/KyleAnthonyShepherd/spring/model"
)

// LineMoveDef is a minimal movement definition over a layer: a square
// footprint plus a straight-line feasibility walk. It satisfies
// qtpfs.MoveDef.
type LineMoveDef struct {
	Footprint int32
	Layer     *Layer
}

// FootprintSize returns the movement class footprint edge length in cells.
func (d *LineMoveDef) FootprintSize() int32 {
	return d.Footprint
}

// RawSearch reports whether the straight segment from src to tgt crosses
// only passable leaves. The segment is sampled once per cell step, so thin
// diagonal walls of single blocked cells may be stepped over; layers that
// need exact walls should keep them at least two cells thick.
func (d *LineMoveDef) RawSearch(_ any, src, tgt model.Point) bool {
	x0 := src.X / model.SquareSize
	z0 := src.Z / model.SquareSize
	x1 := tgt.X / model.SquareSize
	z1 := tgt.Z / model.SquareSize

	dx := x1 - x0
	dz := z1 - z0

	steps := int32(max(abs(dx), abs(dz))) + 1

	for i := int32(0); i <= steps; i++ {
		t := float32(i) / float32(steps)
		cx := int32(x0 + dx*t)
		cz := int32(z0 + dz*t)

		if d.Layer.NodeAt(cx, cz).Impassable {
			return false
		}
	}
	return true
}

func abs(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
