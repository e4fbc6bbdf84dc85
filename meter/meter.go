// Package meter provides process-wide memory counters.
//
// A counter is sampled on entry to and exit from a measured extent;
// only the difference between two samples is meaningful.
package meter

import (
	"runtime"
	"sync"
)

// Counter reports a monotonic (or at least slowly varying) byte count.
type Counter interface {
	Bytes() uint64
}

// runtimeCounter reads the cumulative count of bytes allocated on
// the heap, so extents also pay for the garbage they produce.
// [runtime.ReadMemStats] flushes every per-P cache before reading,
// so allocations smaller than a span are visible immediately.
type runtimeCounter struct {
	stats runtime.MemStats
}

var (
	processOnce    sync.Once
	processCounter *runtimeCounter
)

// Runtime returns the process-wide counter backed by the Go runtime.
// Each sample stops the world briefly.
// The returned counter must not be used concurrently.
func Runtime() Counter {
	processOnce.Do(func() {
		processCounter = new(runtimeCounter)
	})
	return processCounter
}

func (rc *runtimeCounter) Bytes() uint64 {
	runtime.ReadMemStats(&rc.stats)
	return rc.stats.TotalAlloc
}

// Manual is a counter driven explicitly by its owner.
// Hosts that account for memory themselves (arenas, pools, mmap regions)
// can report it here. The zero value is ready to use.
type Manual struct {
	bytes uint64
}

// Bytes returns the current count.
func (m *Manual) Bytes() uint64 { return m.bytes }

// Add increases the count by n.
func (m *Manual) Add(n uint64) { m.bytes += n }

// Sub decreases the count by n, stopping at zero.
func (m *Manual) Sub(n uint64) {
	if n > m.bytes {
		m.bytes = 0
		return
	}
	m.bytes -= n
}

// Set replaces the count.
func (m *Manual) Set(n uint64) { m.bytes = n }
