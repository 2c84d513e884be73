package spring

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
type MetricsCollector interface {
	// RecordSearch is called after each executed (non-shared) search.
	// full and partial report the result quality, duration the time taken.
	RecordSearch(full, partial bool, duration time.Duration)

	// RecordSharedPath is called when a request reuses a path computed for
	// an identical sharing hash instead of searching.
	RecordSharedPath()

	// RecordUpdate is called after each manager update batch.
	// requests is the batch size, duration the total batch time.
	RecordUpdate(requests int, duration time.Duration)

	// RecordTerrainChange is called after each applied terrain change.
	// cacheDropped and pathsRequeued report its fallout.
	RecordTerrainChange(cacheDropped, pathsRequeued int)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordSearch(bool, bool, time.Duration) {}
func (NoopMetricsCollector) RecordSharedPath()                      {}
func (NoopMetricsCollector) RecordUpdate(int, time.Duration)        {}
func (NoopMetricsCollector) RecordTerrainChange(int, int)           {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	SearchCount         atomic.Int64
	SearchFull          atomic.Int64
	SearchPartial       atomic.Int64
	SearchFailed        atomic.Int64
	SearchTotalNanos    atomic.Int64
	SharedPathCount     atomic.Int64
	UpdateCount         atomic.Int64
	UpdateRequests      atomic.Int64
	UpdateTotalNanos    atomic.Int64
	TerrainChangeCount  atomic.Int64
	TerrainCacheDropped atomic.Int64
	TerrainRequeued     atomic.Int64
}

// RecordSearch implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSearch(full, partial bool, duration time.Duration) {
	b.SearchCount.Add(1)
	b.SearchTotalNanos.Add(duration.Nanoseconds())
	switch {
	case full:
		b.SearchFull.Add(1)
	case partial:
		b.SearchPartial.Add(1)
	default:
		b.SearchFailed.Add(1)
	}
}

// RecordSharedPath implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSharedPath() {
	b.SharedPathCount.Add(1)
}

// RecordUpdate implements MetricsCollector.
func (b *BasicMetricsCollector) RecordUpdate(requests int, duration time.Duration) {
	b.UpdateCount.Add(1)
	b.UpdateRequests.Add(int64(requests))
	b.UpdateTotalNanos.Add(duration.Nanoseconds())
}

// RecordTerrainChange implements MetricsCollector.
func (b *BasicMetricsCollector) RecordTerrainChange(cacheDropped, pathsRequeued int) {
	b.TerrainChangeCount.Add(1)
	b.TerrainCacheDropped.Add(int64(cacheDropped))
	b.TerrainRequeued.Add(int64(pathsRequeued))
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		SearchCount:         b.SearchCount.Load(),
		SearchFull:          b.SearchFull.Load(),
		SearchPartial:       b.SearchPartial.Load(),
		SearchFailed:        b.SearchFailed.Load(),
		SearchAvgNanos:      b.getAvgSearchNanos(),
		SharedPathCount:     b.SharedPathCount.Load(),
		UpdateCount:         b.UpdateCount.Load(),
		UpdateRequests:      b.UpdateRequests.Load(),
		TerrainChangeCount:  b.TerrainChangeCount.Load(),
		TerrainCacheDropped: b.TerrainCacheDropped.Load(),
		TerrainRequeued:     b.TerrainRequeued.Load(),
	}
}

func (b *BasicMetricsCollector) getAvgSearchNanos() int64 {
	count := b.SearchCount.Load()
	if count == 0 {
		return 0
	}
	return b.SearchTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	SearchCount         int64
	SearchFull          int64
	SearchPartial       int64
	SearchFailed        int64
	SearchAvgNanos      int64
	SharedPathCount     int64
	UpdateCount         int64
	UpdateRequests      int64
	TerrainChangeCount  int64
	TerrainCacheDropped int64
	TerrainRequeued     int64
}
