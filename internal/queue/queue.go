// Package queue provides a reusable min-priority queue for the search open
// set. The queue is value-based for cache locality and zero steady-state
// allocations, and its ordering is a pure function of (priority, node index)
// so identical insert sequences always pop in the identical order.
package queue

// Item is one open-set entry: a node index and the f-cost snapshot taken
// when it was pushed. There is no decrease-key; improving a node pushes a
// second entry and the stale one is discarded when popped.
type Item struct {
	Priority float32
	Node     uint32
}

// Min is a binary min-heap of Items.
type Min struct {
	items []Item
}

// NewMin initializes a min-priority queue with the given capacity.
func NewMin(capacity int) *Min {
	return &Min{items: make([]Item, 0, capacity)}
}

// Len returns the number of queued entries.
func (q *Min) Len() int { return len(q.items) }

// Reset clears the queue for reuse, keeping the backing array.
func (q *Min) Reset() { q.items = q.items[:0] }

// Push inserts an entry while maintaining the heap invariant.
func (q *Min) Push(item Item) {
	q.items = append(q.items, item)
	q.siftUp(len(q.items) - 1)
}

// Pop removes and returns the lowest-priority entry.
func (q *Min) Pop() (Item, bool) {
	n := len(q.items)
	if n == 0 {
		return Item{}, false
	}
	root := q.items[0]
	last := q.items[n-1]
	q.items[n-1] = Item{}
	q.items = q.items[:n-1]
	if n-1 > 0 {
		q.items[0] = last
		q.siftDown(0)
	}
	return root, true
}

// Top returns the lowest-priority entry without removing it.
func (q *Min) Top() (Item, bool) {
	if len(q.items) == 0 {
		return Item{}, false
	}
	return q.items[0], true
}

// less ties equal priorities on the node index. The surrounding lockstep
// simulation requires ordering to be independent of insert history beyond
// the (priority, node) pairs themselves.
func (q *Min) less(i, j int) bool {
	a, b := q.items[i], q.items[j]
	if a.Priority != b.Priority {
		return a.Priority < b.Priority
	}
	return a.Node < b.Node
}

func (q *Min) siftUp(i int) {
	for i > 0 {
		p := (i - 1) / 2
		if !q.less(i, p) {
			return
		}
		q.items[i], q.items[p] = q.items[p], q.items[i]
		i = p
	}
}

func (q *Min) siftDown(i int) {
	n := len(q.items)
	for {
		l := 2*i + 1
		if l >= n {
			return
		}
		best := l
		if r := l + 1; r < n && q.less(r, l) {
			best = r
		}
		if !q.less(best, i) {
			return
		}
		q.items[i], q.items[best] = q.items[best], q.items[i]
		i = best
	}
}
