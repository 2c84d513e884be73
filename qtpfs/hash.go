package qtpfs

import "github.com/KyleAnthonyShepherd/spring/model"

// nextBitShift returns the bit shift of the power of two that is equal to or
// slightly bigger than n.
func nextBitShift(n int32) int {
	c := 0
	if n > 0 {
		n--
	} else {
		n = 0
	}
	for n > 1 {
		n >>= 1
		c++
	}
	return c + 1
}

// childNodeNumber derives the quad-tree number of child quadrant i of the
// node identified by nodeNumber, keeping the root bits selected by rootMask
// intact.
func childNodeNumber(nodeNumber, i, rootMask uint32) uint32 {
	rootBits := rootMask & nodeNumber
	nodeBits := ^rootMask & nodeNumber
	return rootBits | ((nodeBits << 2) + (i + 1))
}

// generateHash derives the 64-bit path-sharing key for the request. Requests
// yielding the same key resolve to the same quantized source region, target
// leaf, and movement-class layer, and may therefore share one computed path.
// model.BadHash marks a request that must not share.
func (s *PathSearch) generateHash(srcNode, tgtNode *Node) uint64 {
	if s.rawPathCheck {
		return model.BadHash
	}
	if s.moveDef == nil {
		return model.BadHash
	}

	nodeSize := uint32(srcNode.Rect.Width())
	if nodeSize < ShareMinNodeSize {
		return model.BadHash
	}

	// the smallest power-of-two cell size that comfortably contains the
	// movement class's footprint
	shift := nextBitShift(s.moveDef.FootprintSize())

	// node too small to hold multiple units of this class?
	if nodeSize < 1<<shift {
		return model.BadHash
	}

	// unit too big to share paths at all?
	if 1<<shift > ShareMaxNodeSize {
		return model.BadHash
	}

	// Refine the source identity to the virtual child quadrant containing
	// the source point until it reaches the shareable size. Sources inside
	// the same quadrant then quantize onto one key, while sources in
	// different corners of a huge node do not share inappropriately.
	srcNodeNumber := srcNode.NodeNumber
	xoff := uint32(srcNode.Rect.X1)
	zoff := uint32(srcNode.Rect.Z1)
	srcX := uint32(s.srcPoint.X / model.SquareSize)
	srcZ := uint32(s.srcPoint.Z / model.SquareSize)

	for nodeSize > ShareMaxNodeSize {
		isRight := srcX >= xoff+(nodeSize>>1)
		isDown := srcZ >= zoff+(nodeSize>>1)

		var quadrant uint32
		if isRight {
			quadrant += 1
		}
		if isDown {
			quadrant += 2
		}

		srcNodeNumber = childNodeNumber(srcNodeNumber, quadrant, s.layer.RootMask())

		nodeSize >>= 1
		if isRight {
			xoff += nodeSize
		}
		if isDown {
			zoff += nodeSize
		}
	}

	return s.hashKey(srcNodeNumber, tgtNode.NodeNumber)
}

// hashKey combines the quantized source identity, the target leaf identity,
// and the layer into one positional 64-bit key. Different layers and
// genuinely different endpoint pairs never collide within the representable
// range.
func (s *PathSearch) hashKey(src, dst uint32) uint64 {
	mapX, mapZ := s.layer.MapDims()
	mapArea := uint64(mapX) * uint64(mapZ)
	layer := uint64(s.layer.Layer())

	return uint64(src) + uint64(dst)*mapArea + layer*mapArea*mapArea
}
