// ABOUTME: Allocation and collection statistics plus their metrics registry
// ABOUTME: Stats is a plain snapshot; the registry feeds go-metrics reporters

package heap

import (
	"time"

	"github.com/rcrowley/go-metrics"
)

// Stats summarizes heap activity since the last Init.
type Stats struct {
	NumAllocated   int           // blocks allocated
	BytesAllocated int           // bytes allocated, headers included
	NumCollections int           // completed collections
	NumFreed       int           // blocks reclaimed
	NumGrowths     int           // arena growths
	LiveObjects    int           // blocks alive after the last collection
	LiveBytes      int           // bytes alive after the last collection
	MaxLiveBytes   int           // largest LiveBytes seen
	MaxRoots       int           // deepest stack-root registry
	Threshold      int           // bytes allowed between collections
	ArenaBytes     int           // current arena size
	FreeBytes      int           // bytes on the free list
	TotalPause     time.Duration // time spent collecting
}

// Stats returns a snapshot of the heap counters.
func (h *Heap) Stats() Stats {
	s := h.stats
	s.Threshold = h.threshold
	s.ArenaBytes = len(h.words) * wordSize
	for _, sp := range h.free {
		s.FreeBytes += sp.words * wordSize
	}
	return s
}

// Report logs the statistics at Info on the heap's logger, the way a
// program run with collector statistics enabled reports them at exit.
func (h *Heap) Report() {
	s := h.Stats()
	h.log.Info("Heap statistics",
		"allocated", s.NumAllocated,
		"allocatedBytes", s.BytesAllocated,
		"collections", s.NumCollections,
		"freed", s.NumFreed,
		"growths", s.NumGrowths,
		"liveBytes", s.LiveBytes,
		"maxLiveBytes", s.MaxLiveBytes,
		"maxRoots", s.MaxRoots,
		"threshold", s.Threshold,
		"arenaBytes", s.ArenaBytes,
		"pause", s.TotalPause,
	)
}

type heapMetrics struct {
	registry    metrics.Registry
	allocs      metrics.Counter
	allocBytes  metrics.Counter
	collections metrics.Counter
	growths     metrics.Counter
	live        metrics.Gauge
	threshold   metrics.Gauge
	arena       metrics.Gauge
	pause       metrics.Histogram
}

func newHeapMetrics() *heapMetrics {
	r := metrics.NewRegistry()
	return &heapMetrics{
		registry:    r,
		allocs:      metrics.NewRegisteredCounter("heap/allocs", r),
		allocBytes:  metrics.NewRegisteredCounter("heap/alloc/bytes", r),
		collections: metrics.NewRegisteredCounter("heap/collections", r),
		growths:     metrics.NewRegisteredCounter("heap/growths", r),
		live:        metrics.NewRegisteredGauge("heap/live", r),
		threshold:   metrics.NewRegisteredGauge("heap/threshold", r),
		arena:       metrics.NewRegisteredGauge("heap/arena", r),
		pause:       metrics.NewRegisteredHistogram("heap/pause/us", r, metrics.NewUniformSample(1024)),
	}
}

// publish copies gauge values that change outside the counter paths.
func (h *Heap) publish() {
	h.metrics.live.Update(int64(h.stats.LiveBytes))
	h.metrics.threshold.Update(int64(h.threshold))
	h.metrics.arena.Update(int64(len(h.words) * wordSize))
}

// Metrics returns the registry holding the heap's counters, gauges and the
// collection pause histogram. It is replaced by Init.
func (h *Heap) Metrics() metrics.Registry {
	return h.metrics.registry
}
