package sparse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsertAndLookup(t *testing.T) {
	d := New[int](16)

	v := d.Insert(3, 42)
	require.NotNil(t, v)
	assert.Equal(t, 42, *v)

	assert.True(t, d.IsSet(3))
	assert.False(t, d.IsSet(4))
	assert.Equal(t, 42, *d.At(3))
	assert.Equal(t, 1, d.Len())
}

func TestInsertIfAbsentKeepsExisting(t *testing.T) {
	d := New[int](16)

	first := d.InsertIfAbsent(5, 1)
	second := d.InsertIfAbsent(5, 2)

	assert.Same(t, first, second)
	assert.Equal(t, 1, *second)
	assert.Equal(t, 1, d.Len())
}

func TestDenseIndexRoundTrip(t *testing.T) {
	d := New[int](16)

	d.Insert(7, 70)
	d.Insert(2, 20)

	slot := d.DenseIndex(7)
	require.NotZero(t, slot, "dense slot 0 is the unused dummy")
	assert.Equal(t, 70, *d.AtDense(slot))

	assert.Equal(t, int32(0), d.DenseIndex(9))
}

func TestResetClearsWithoutReallocating(t *testing.T) {
	d := New[int](16)

	for i := uint32(0); i < 8; i++ {
		d.Insert(i, int(i))
	}
	require.Equal(t, 8, d.Len())

	d.Reset(16)

	assert.Equal(t, 0, d.Len())
	for i := uint32(0); i < 16; i++ {
		assert.False(t, d.IsSet(i), "index %d still set after reset", i)
	}

	// reusable immediately
	d.Insert(11, 99)
	assert.Equal(t, 99, *d.At(11))
}

func TestReserveKeepsPointersStable(t *testing.T) {
	d := New[int](8)
	d.Reserve(8)

	ptrs := make([]*int, 0, 6)
	for i := uint32(0); i < 6; i++ {
		ptrs = append(ptrs, d.Insert(i, int(i)))
	}

	// inserts within the reserved capacity must not move earlier records
	for i, p := range ptrs {
		assert.Equal(t, i, *p)
		assert.Same(t, p, d.At(uint32(i)))
	}
}
