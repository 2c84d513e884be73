// Package cache provides the shared-path cache. Finished full paths are
// stored under their 64-bit sharing hash so that later requests with the
// same quantized endpoints can reuse the computed waypoints instead of
// searching again.
package cache

import (
	"container/list"
	"sync"
	"sync/atomic"

	"github.com/KyleAnthonyShepherd/spring/model"
)

// PathCache is a count-bounded LRU of finished paths keyed by sharing hash.
// Cached paths are read-only; consumers copy waypoints out via
// model.Path.CopyPoints.
type PathCache struct {
	mu        sync.Mutex
	capacity  int
	items     map[uint64]*list.Element
	evictList *list.List

	hits   atomic.Int64
	misses atomic.Int64
}

type entry struct {
	hash uint64
	path *model.Path
}

// NewPathCache creates a cache holding at most capacity paths.
func NewPathCache(capacity int) *PathCache {
	return &PathCache{
		capacity:  capacity,
		items:     make(map[uint64]*list.Element),
		evictList: list.New(),
	}
}

// Get returns the cached path for hash. Requests carrying model.BadHash
// never share and always miss.
func (c *PathCache) Get(hash uint64) (*model.Path, bool) {
	if hash == model.BadHash {
		return nil, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if ent, ok := c.items[hash]; ok {
		c.hits.Add(1)
		c.evictList.MoveToFront(ent)
		return ent.Value.(*entry).path, true
	}
	c.misses.Add(1)
	return nil, false
}

// Set caches path under hash. Unshareable and non-full paths are refused:
// a partial result is only valid for the request that produced it.
func (c *PathCache) Set(hash uint64, path *model.Path) {
	if hash == model.BadHash || path == nil || !path.IsFullPath() {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if ent, ok := c.items[hash]; ok {
		c.evictList.MoveToFront(ent)
		ent.Value.(*entry).path = path
		return
	}

	for c.evictList.Len() >= c.capacity {
		back := c.evictList.Back()
		if back == nil {
			break
		}
		c.removeElement(back)
	}

	element := c.evictList.PushFront(&entry{hash: hash, path: path})
	c.items[hash] = element
}

// Remove drops the entry for hash, if present.
func (c *PathCache) Remove(hash uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ent, ok := c.items[hash]; ok {
		c.removeElement(ent)
	}
}

// Invalidate removes every entry matching the predicate and returns how many
// were dropped. Used after terrain changes to flush paths whose bounding box
// touches the damaged region.
func (c *PathCache) Invalidate(predicate func(hash uint64, path *model.Path) bool) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	var toRemove []*list.Element
	for _, element := range c.items {
		ent := element.Value.(*entry)
		if predicate(ent.hash, ent.path) {
			toRemove = append(toRemove, element)
		}
	}

	for _, e := range toRemove {
		c.removeElement(e)
	}
	return len(toRemove)
}

// Purge drops every entry.
func (c *PathCache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[uint64]*list.Element)
	c.evictList.Init()
}

// Len returns the current entry count.
func (c *PathCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.evictList.Len()
}

// Stats returns the hit and miss counters.
func (c *PathCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

func (c *PathCache) removeElement(e *list.Element) {
	c.evictList.Remove(e)
	delete(c.items, e.Value.(*entry).hash)
}
