package qtpfs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextBitShift(t *testing.T) {
	tests := []struct {
		n    int32
		want int
	}{
		{n: 1, want: 1},
		{n: 2, want: 1},
		{n: 3, want: 2},
		{n: 4, want: 2},
		{n: 5, want: 3},
		{n: 8, want: 3},
		{n: 9, want: 4},
		{n: 16, want: 4},
	}

	for _, tt := range tests {
		got := nextBitShift(tt.n)
		assert.Equal(t, tt.want, got, "nextBitShift(%d)", tt.n)
		assert.GreaterOrEqual(t, int32(1)<<got, tt.n)
	}
}

func TestChildNodeNumber(t *testing.T) {
	// without root bits the numbering is a plain base-4 descent
	assert.Equal(t, uint32(1), childNodeNumber(0, 0, 0))
	assert.Equal(t, uint32(4), childNodeNumber(0, 3, 0))
	assert.Equal(t, uint32(23), childNodeNumber(5, 2, 0))

	// root bits selected by the mask pass through untouched
	rootMask := uint32(0xC0000000)
	n := rootMask | 5
	got := childNodeNumber(n, 2, rootMask)
	assert.Equal(t, rootMask|23, got)
}
