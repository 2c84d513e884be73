package spring

import (
	"context"
	"fmt"
	"io"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/KyleAnthonyShepherd/spring/cache"
	"github.com/KyleAnthonyShepherd/spring/model"
	"github.com/KyleAnthonyShepherd/spring/qtpfs"
)

// LayerSpec binds one movement class to its node layer and movement
// definition. MoveDef may be nil for layers without footprint data; such
// layers never share paths and never take the raw straight-line shortcut.
type LayerSpec struct {
	PathType uint8
	Layer    qtpfs.NodeLayer
	MoveDef  qtpfs.MoveDef
}

type layerState struct {
	layer   qtpfs.NodeLayer
	moveDef qtpfs.MoveDef
}

// request is one queued path request. Requeued live paths keep their
// original ID and endpoints.
type request struct {
	pathID   uint32
	pathType uint8
	src      model.Point
	tgt      model.Point
	owner    any

	// batch-local state
	search *qtpfs.PathSearch
	hash   uint64
	rawOK  bool
	shared bool
	cached *model.Path
}

type liveEntry struct {
	path     *model.Path
	pathType uint8
	src      model.Point
	tgt      model.Point
	owner    any
}

// PathManager is the frame-driven facade over the search core. Requests are
// queued with RequestPath and resolved in batches by Update; terrain changes
// reported through TerrainChange invalidate affected cached and live paths
// before the next batch runs.
//
// All methods are safe for concurrent use. Results are deterministic for a
// given sequence of requests and terrain changes, independent of worker
// count.
type PathManager struct {
	opts   options
	layers map[uint8]layerState
	mapX   int32
	mapZ   int32

	pathCache *cache.PathCache
	change    *MapChangeTrack
	scratch   []*qtpfs.SearchThreadData
	flight    singleflight.Group

	// guards the request queue and the live-path registry
	mu         sync.Mutex
	nextPathID uint32
	livePaths  map[uint32]*liveEntry
	pending    []*request
}

// NewPathManager creates a manager over the given layers. All layers must
// span the same cell grid.
func NewPathManager(layers []LayerSpec, optFns ...Option) (*PathManager, error) {
	if len(layers) == 0 {
		return nil, ErrNoLayers
	}

	opts := applyOptions(optFns)

	m := &PathManager{
		opts:      opts,
		layers:    make(map[uint8]layerState, len(layers)),
		livePaths: make(map[uint32]*liveEntry),
	}

	m.mapX, m.mapZ = layers[0].Layer.MapDims()
	maxNodes := 0

	for _, ls := range layers {
		if _, ok := m.layers[ls.PathType]; ok {
			return nil, fmt.Errorf("duplicate path type %d", ls.PathType)
		}
		x, z := ls.Layer.MapDims()
		if x != m.mapX || z != m.mapZ {
			return nil, fmt.Errorf("layer %d spans %dx%d, want %dx%d", ls.PathType, x, z, m.mapX, m.mapZ)
		}
		m.layers[ls.PathType] = layerState{layer: ls.Layer, moveDef: ls.MoveDef}
		maxNodes = max(maxNodes, ls.Layer.MaxNodesAlloced())
	}

	if opts.pathCacheSize > 0 {
		m.pathCache = cache.NewPathCache(opts.pathCacheSize)
	}
	m.change = newMapChangeTrack(m.mapX, m.mapZ)

	m.scratch = make([]*qtpfs.SearchThreadData, opts.workerCount)
	for i := range m.scratch {
		m.scratch[i] = qtpfs.NewSearchThreadData(maxNodes)
	}

	return m, nil
}

// RequestPath queues a search from src to tgt on the given movement class
// and returns the path ID. The path stays empty until the next Update
// resolves the batch. owner is passed through to MoveDef.RawSearch.
func (m *PathManager) RequestPath(pathType uint8, src, tgt model.Point, owner any) (uint32, error) {
	if _, ok := m.layers[pathType]; !ok {
		return 0, &ErrUnknownPathType{PathType: pathType}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextPathID++
	id := m.nextPathID

	m.livePaths[id] = &liveEntry{
		path:     model.NewPath(id, pathType),
		pathType: pathType,
		src:      src,
		tgt:      tgt,
		owner:    owner,
	}
	m.pending = append(m.pending, &request{
		pathID:   id,
		pathType: pathType,
		src:      src,
		tgt:      tgt,
		owner:    owner,
	})

	return id, nil
}

// GetPath returns the path artifact for id. Before the first Update after
// the request the path has no waypoints and reports neither full nor
// partial.
func (m *PathManager) GetPath(id uint32) (*model.Path, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.livePaths[id]
	if !ok {
		return nil, ErrPathNotFound
	}
	return entry.path, nil
}

// DeletePath removes the path for id from the live registry, so terrain
// changes no longer requeue it.
func (m *PathManager) DeletePath(id uint32) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.livePaths[id]; !ok {
		return ErrPathNotFound
	}
	delete(m.livePaths, id)
	return nil
}

// TerrainChange records that terrain inside the given cell rectangle
// changed. The change takes effect on the next Update: cached paths whose
// bounding box touches the area are dropped and affected live paths are
// searched again. Callers are responsible for updating the node layers
// themselves; the manager only tracks the fallout.
func (m *PathManager) TerrainChange(area model.Rect) {
	m.change.MarkArea(area)
}

// Update resolves all queued requests. Concurrent calls collapse into one
// batch run; every caller observes its result.
func (m *PathManager) Update(ctx context.Context) error {
	_, err, _ := m.flight.Do("update", func() (any, error) {
		return nil, m.update(ctx)
	})
	return err
}

func (m *PathManager) update(ctx context.Context) error {
	start := time.Now()

	m.applyTerrainDamage(ctx)

	m.mu.Lock()
	batch := m.pending
	m.pending = nil
	m.mu.Unlock()

	if len(batch) == 0 {
		return nil
	}

	// Requeued paths carry old IDs; restore ID order so canonical selection
	// and finalization do not depend on arrival interleaving.
	slices.SortFunc(batch, func(a, b *request) int {
		return int(a.pathID) - int(b.pathID)
	})

	m.prepareBatch(batch)

	canonical, execList := m.groupBatch(batch)

	if err := m.executeBatch(ctx, batch, execList); err != nil {
		// put the batch back so a later Update can retry it
		m.mu.Lock()
		for _, req := range batch {
			req.search = nil
			req.rawOK = false
			req.shared = false
		}
		m.pending = append(batch, m.pending...)
		m.mu.Unlock()
		return err
	}

	sharedCount, failed := m.finalizeBatch(ctx, batch, canonical)

	m.opts.metricsCollector.RecordUpdate(len(batch), time.Since(start))
	m.opts.logger.LogUpdate(ctx, len(batch), sharedCount, failed)
	return nil
}

// applyTerrainDamage drains pending damage, drops stale cache entries, and
// requeues live paths crossing a damaged block.
func (m *PathManager) applyTerrainDamage(ctx context.Context) {
	rects := m.change.Drain()
	if len(rects) == 0 {
		return
	}

	dropped := 0
	if m.pathCache != nil {
		dropped = m.pathCache.Invalidate(func(_ uint64, p *model.Path) bool {
			return pathTouchesAny(p, rects)
		})
	}

	m.mu.Lock()

	ids := make([]uint32, 0, len(m.livePaths))
	for id := range m.livePaths {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	requeued := 0
	for _, id := range ids {
		entry := m.livePaths[id]
		// paths without a computed result are still queued
		if !entry.path.IsFullPath() && !entry.path.IsPartialPath() {
			continue
		}
		if !pathTouchesAny(entry.path, rects) {
			continue
		}
		m.pending = append(m.pending, &request{
			pathID:   id,
			pathType: entry.pathType,
			src:      entry.src,
			tgt:      entry.tgt,
			owner:    entry.owner,
		})
		requeued++
	}

	m.mu.Unlock()

	m.opts.metricsCollector.RecordTerrainChange(dropped, requeued)
	m.opts.logger.LogTerrainChange(ctx, dropped, requeued)
}

// pathTouchesAny reports whether the path's waypoint bounding box overlaps
// any of the damaged cell rectangles, compared in world units.
func pathTouchesAny(p *model.Path, rects []model.Rect) bool {
	mins := p.BoundingBoxMins()
	maxs := p.BoundingBoxMaxs()

	for _, r := range rects {
		wx1 := float32(r.X1) * model.SquareSize
		wz1 := float32(r.Z1) * model.SquareSize
		wx2 := float32(r.X2) * model.SquareSize
		wz2 := float32(r.Z2) * model.SquareSize

		if maxs.X >= wx1 && mins.X <= wx2 && maxs.Z >= wz1 && mins.Z <= wz2 {
			return true
		}
	}
	return false
}

// prepareBatch runs the serial per-request setup: the raw straight-line
// attempt, then search construction and hash derivation for everything the
// shortcut did not settle.
func (m *PathManager) prepareBatch(batch []*request) {
	fullMap := model.NewRect(0, 0, m.mapX, m.mapZ)

	for _, req := range batch {
		ls := m.layers[req.pathType]

		if ls.moveDef != nil {
			raw := qtpfs.New(m.opts.searchConfig, ls.moveDef, true)
			raw.Initialize(ls.layer, req.src, req.tgt, fullMap, req.owner)
			raw.InitializeThread(m.scratch[0])
			if raw.Execute() {
				req.search = raw
				req.hash = model.BadHash
				req.rawOK = true
				continue
			}
		}

		s := qtpfs.New(m.opts.searchConfig, ls.moveDef, false)
		s.Initialize(ls.layer, req.src, req.tgt, fullMap, req.owner)
		req.search = s
		req.hash = s.Hash()
	}
}

// groupBatch picks the canonical (lowest-ID) request per sharing hash and
// returns the indices that actually need a graph search.
func (m *PathManager) groupBatch(batch []*request) (map[uint64]int, []int) {
	canonical := make(map[uint64]int)
	var execList []int

	for i, req := range batch {
		if req.rawOK {
			continue
		}

		if req.hash == model.BadHash {
			execList = append(execList, i)
			continue
		}

		if _, ok := canonical[req.hash]; ok {
			req.shared = true
			continue
		}
		canonical[req.hash] = i

		if m.pathCache != nil {
			if p, ok := m.pathCache.Get(req.hash); ok {
				// resolved from cache during finalization
				req.shared = true
				req.cached = p
				continue
			}
		}
		execList = append(execList, i)
	}

	return canonical, execList
}

// executeBatch fans the searches out over the worker pool. Worker w owns
// scratch slot w and the fixed round-robin slice of the exec list, so the
// partition is reproducible and no scratch state is shared.
func (m *PathManager) executeBatch(ctx context.Context, batch []*request, execList []int) error {
	if len(execList) == 0 {
		return nil
	}

	g, ctx := errgroup.WithContext(ctx)

	for w := 0; w < m.opts.workerCount; w++ {
		w := w
		g.Go(func() error {
			td := m.scratch[w]
			for i := w; i < len(execList); i += m.opts.workerCount {
				if err := ctx.Err(); err != nil {
					return err
				}
				req := batch[execList[i]]
				req.search.InitializeThread(td)
				req.search.Execute()
			}
			return nil
		})
	}

	return g.Wait()
}

// finalizeBatch writes results into the live paths in ID order: executed
// searches trace and smooth, shared requests copy the canonical or cached
// waypoints while keeping their own endpoints.
func (m *PathManager) finalizeBatch(ctx context.Context, batch []*request, canonical map[uint64]int) (shared, failed int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	last := time.Now()

	for _, req := range batch {
		entry, ok := m.livePaths[req.pathID]
		if !ok {
			// deleted while queued
			continue
		}

		if req.shared {
			var donor *model.Path

			ci := canonical[req.hash]
			if cReq := batch[ci]; cReq.cached != nil {
				donor = cReq.cached
			} else if !cReq.shared {
				if cEntry, ok := m.livePaths[cReq.pathID]; ok {
					donor = cEntry.path
				}
			}

			if donor != nil && donor.IsFullPath() {
				req.search.SharedFinalize(donor, entry.path)
				m.opts.metricsCollector.RecordSharedPath()
				m.opts.logger.LogSearch(ctx, req.pathID, entry.path.IsFullPath(), entry.path.IsPartialPath(), true)
				shared++
				continue
			}

			// The donor failed or disappeared; fall through and finalize the
			// request's own (unexecuted) search as a failure so the caller
			// can re-request.
		}

		req.search.Finalize(entry.path)

		if !entry.path.IsFullPath() && !entry.path.IsPartialPath() {
			failed++
		}

		if m.pathCache != nil && req.hash != model.BadHash && entry.path.IsFullPath() {
			m.pathCache.Set(req.hash, detachedCopy(entry.path))
		}

		now := time.Now()
		m.opts.metricsCollector.RecordSearch(entry.path.IsFullPath(), entry.path.IsPartialPath(), now.Sub(last))
		m.opts.logger.LogSearch(ctx, req.pathID, entry.path.IsFullPath(), entry.path.IsPartialPath(), false)
		last = now
	}

	return shared, failed
}

// detachedCopy snapshots a path for the cache so later re-searches of the
// live path cannot mutate the cached waypoints.
func detachedCopy(p *model.Path) *model.Path {
	c := model.NewPath(0, p.PathType())
	c.CopyPoints(p)
	c.SetSourcePoint(p.SourcePoint())
	c.SetTargetPoint(p.TargetPoint())
	c.SetHash(p.Hash())
	c.SetBoundingBox()
	c.SetHasFullPath(p.IsFullPath())
	c.SetHasPartialPath(p.IsPartialPath())
	return c
}

// NumQueuedRequests returns how many requests the next Update will resolve.
func (m *PathManager) NumQueuedRequests() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}

// CacheStats returns the shared-path cache hit and miss counters. Both are
// zero when caching is disabled.
func (m *PathManager) CacheStats() (hits, misses int64) {
	if m.pathCache == nil {
		return 0, 0
	}
	return m.pathCache.Stats()
}

// SaveCache writes a compressed snapshot of the shared-path cache to w, so
// a host can warm the cache across restarts of the same map.
func (m *PathManager) SaveCache(ctx context.Context, w io.Writer) error {
	if m.pathCache == nil {
		return nil
	}
	err := m.pathCache.Save(w)
	m.opts.logger.LogSnapshot(ctx, m.pathCache.Len(), err)
	return err
}

// LoadCache replaces the shared-path cache contents with a snapshot
// previously written by SaveCache. Loading a snapshot taken on different
// terrain is safe but useless; the first TerrainChange flushes stale
// entries.
func (m *PathManager) LoadCache(ctx context.Context, r io.Reader) error {
	if m.pathCache == nil {
		return nil
	}
	err := m.pathCache.Load(r)
	m.opts.logger.LogSnapshot(ctx, m.pathCache.Len(), err)
	return err
}
