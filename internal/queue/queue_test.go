package queue

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPopOrder(t *testing.T) {
	q := NewMin(8)

	q.Push(Item{Priority: 3, Node: 30})
	q.Push(Item{Priority: 1, Node: 10})
	q.Push(Item{Priority: 2, Node: 20})

	var got []uint32
	for q.Len() > 0 {
		item, ok := q.Pop()
		require.True(t, ok)
		got = append(got, item.Node)
	}
	assert.Equal(t, []uint32{10, 20, 30}, got)
}

func TestEqualPrioritiesTieOnNodeIndex(t *testing.T) {
	// Equal-priority entries must pop in node-index order no matter how they
	// were interleaved when pushed.
	perms := [][]uint32{
		{5, 1, 3},
		{3, 5, 1},
		{1, 3, 5},
	}

	for _, perm := range perms {
		q := NewMin(4)
		for _, n := range perm {
			q.Push(Item{Priority: 7, Node: n})
		}

		var got []uint32
		for q.Len() > 0 {
			item, _ := q.Pop()
			got = append(got, item.Node)
		}
		assert.Equal(t, []uint32{1, 3, 5}, got, "pushed %v", perm)
	}
}

func TestPopEmpty(t *testing.T) {
	q := NewMin(0)

	_, ok := q.Pop()
	assert.False(t, ok)

	_, ok = q.Top()
	assert.False(t, ok)
}

func TestResetKeepsQueueUsable(t *testing.T) {
	q := NewMin(4)
	q.Push(Item{Priority: 1, Node: 1})
	q.Push(Item{Priority: 2, Node: 2})

	q.Reset()
	assert.Equal(t, 0, q.Len())

	q.Push(Item{Priority: 5, Node: 5})
	item, ok := q.Top()
	require.True(t, ok)
	assert.Equal(t, uint32(5), item.Node)
}

func TestRandomizedAgainstSort(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	q := NewMin(0)
	items := make([]Item, 200)
	for i := range items {
		items[i] = Item{Priority: float32(rng.Intn(50)), Node: uint32(i)}
		q.Push(items[i])
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Priority != items[j].Priority {
			return items[i].Priority < items[j].Priority
		}
		return items[i].Node < items[j].Node
	})

	for _, want := range items {
		got, ok := q.Pop()
		require.True(t, ok)
		assert.Equal(t, want, got)
	}
}
