// Package sparse provides a reusable sparse-to-dense overlay keyed by node
// index. A full-size sparse index maps every possible node to a slot in a
// compact dense array, so resetting after a search that touched k of N nodes
// costs O(k) dense records plus one O(N) clear of the index, never a
// reallocation.
package sparse

// Data maps node indices to dense records of type T. Slot 0 of the dense
// array is a dummy record so that index value 0 can mean "absent".
//
// Data is NOT thread-safe. It is intended to be owned by a single worker
// for the duration of one search.
type Data[T any] struct {
	sparseIndex []int32
	denseData   []T
}

// New creates an overlay covering sparseSize node indices.
func New[T any](sparseSize int) *Data[T] {
	d := &Data[T]{}
	d.Reset(sparseSize)
	return d
}

// Reset clears all records and resizes the sparse index to sparseSize.
func (d *Data[T]) Reset(sparseSize int) {
	if cap(d.sparseIndex) < sparseSize {
		d.sparseIndex = make([]int32, sparseSize)
	} else {
		d.sparseIndex = d.sparseIndex[:sparseSize]
		clear(d.sparseIndex)
	}
	d.denseData = d.denseData[:0]

	var dummy T
	d.denseData = append(d.denseData, dummy)
}

// Reserve grows the dense array capacity to at least denseSize records.
// Callers that hold pointers into the dense array across inserts must
// reserve the maximum record count up front, otherwise growth would move
// the backing array out from under them.
func (d *Data[T]) Reserve(denseSize int) {
	if cap(d.denseData) < denseSize {
		grown := make([]T, len(d.denseData), denseSize)
		copy(grown, d.denseData)
		d.denseData = grown
	}
}

// Insert stores record at index, overwriting any existing record, and
// returns a pointer to the stored copy.
func (d *Data[T]) Insert(index uint32, record T) *T {
	if d.sparseIndex[index] == 0 {
		d.denseData = append(d.denseData, record)
		d.sparseIndex[index] = int32(len(d.denseData) - 1)
	} else {
		d.denseData[d.sparseIndex[index]] = record
	}
	return &d.denseData[d.sparseIndex[index]]
}

// InsertIfAbsent stores record at index only when no record exists yet, and
// returns a pointer to the resident record either way.
func (d *Data[T]) InsertIfAbsent(index uint32, record T) *T {
	if d.sparseIndex[index] == 0 {
		return d.Insert(index, record)
	}
	return &d.denseData[d.sparseIndex[index]]
}

// At returns a pointer to the record for index. For an absent index this is
// the dummy record in slot 0.
func (d *Data[T]) At(index uint32) *T {
	return &d.denseData[d.sparseIndex[index]]
}

// DenseIndex returns the dense slot holding the record for index, or 0 when
// absent. Dense slots stay valid until the next Reset, which makes them safe
// back-links between records of the same search.
func (d *Data[T]) DenseIndex(index uint32) int32 {
	return d.sparseIndex[index]
}

// AtDense returns a pointer to the record in dense slot i.
func (d *Data[T]) AtDense(i int32) *T {
	return &d.denseData[i]
}

// IsSet reports whether a record exists for index.
func (d *Data[T]) IsSet(index uint32) bool {
	return d.sparseIndex[index] != 0
}

// Len returns the number of inserted records, excluding the dummy slot.
func (d *Data[T]) Len() int {
	return len(d.denseData) - 1
}
