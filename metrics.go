package bitmem

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// Example Prometheus integration:
//
//	type PrometheusCollector struct {
//	    reserveCounter   prometheus.Counter
//	    reserveHistogram prometheus.Histogram
//	}
//
//	func (p *PrometheusCollector) RecordReserve(bits uint64, duration time.Duration, err error) {
//	    p.reserveCounter.Inc()
//	    // ... record error state, duration, etc.
//	}
type MetricsCollector interface {
	// RecordReserve is called after each reservation attempt.
	// bits is the requested size, duration is the total time taken,
	// err is nil if successful.
	RecordReserve(bits uint64, duration time.Duration, err error)

	// RecordResize is called after each resize attempt.
	// oldBits and newBits are the sizes before and after.
	RecordResize(oldBits, newBits uint64, duration time.Duration, err error)

	// RecordRelinquish is called after each relinquish attempt.
	RecordRelinquish(duration time.Duration, err error)

	// RecordSnapshot is called after each snapshot write or load.
	// written is true for writes, false for loads.
	RecordSnapshot(written bool, partitions uint64, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordReserve(uint64, time.Duration, error)        {}
func (NoopMetricsCollector) RecordResize(uint64, uint64, time.Duration, error) {}
func (NoopMetricsCollector) RecordRelinquish(time.Duration, error)             {}
func (NoopMetricsCollector) RecordSnapshot(bool, uint64, time.Duration, error) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	ReserveCount       atomic.Int64
	ReserveErrors      atomic.Int64
	ReserveTotalNanos  atomic.Int64
	ReservedBits       atomic.Int64
	ResizeCount        atomic.Int64
	ResizeErrors       atomic.Int64
	ResizeTotalNanos   atomic.Int64
	RelinquishCount    atomic.Int64
	RelinquishErrors   atomic.Int64
	SnapshotWrites     atomic.Int64
	SnapshotLoads      atomic.Int64
	SnapshotErrors     atomic.Int64
	SnapshotPartitions atomic.Int64
}

// RecordReserve implements MetricsCollector.
func (b *BasicMetricsCollector) RecordReserve(bits uint64, duration time.Duration, err error) {
	b.ReserveCount.Add(1)
	b.ReserveTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.ReserveErrors.Add(1)
		return
	}
	b.ReservedBits.Add(int64(bits))
}

// RecordResize implements MetricsCollector.
func (b *BasicMetricsCollector) RecordResize(oldBits, newBits uint64, duration time.Duration, err error) {
	b.ResizeCount.Add(1)
	b.ResizeTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.ResizeErrors.Add(1)
		return
	}
	b.ReservedBits.Add(int64(newBits) - int64(oldBits))
}

// RecordRelinquish implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRelinquish(duration time.Duration, err error) {
	b.RelinquishCount.Add(1)
	if err != nil {
		b.RelinquishErrors.Add(1)
	}
}

// RecordSnapshot implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSnapshot(written bool, partitions uint64, duration time.Duration, err error) {
	if written {
		b.SnapshotWrites.Add(1)
	} else {
		b.SnapshotLoads.Add(1)
	}
	b.SnapshotPartitions.Add(int64(partitions))
	if err != nil {
		b.SnapshotErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		ReserveCount:       b.ReserveCount.Load(),
		ReserveErrors:      b.ReserveErrors.Load(),
		ReserveAvgNanos:    b.getAvgReserveNanos(),
		ReservedBits:       b.ReservedBits.Load(),
		ResizeCount:        b.ResizeCount.Load(),
		ResizeErrors:       b.ResizeErrors.Load(),
		ResizeAvgNanos:     b.getAvgResizeNanos(),
		RelinquishCount:    b.RelinquishCount.Load(),
		RelinquishErrors:   b.RelinquishErrors.Load(),
		SnapshotWrites:     b.SnapshotWrites.Load(),
		SnapshotLoads:      b.SnapshotLoads.Load(),
		SnapshotErrors:     b.SnapshotErrors.Load(),
		SnapshotPartitions: b.SnapshotPartitions.Load(),
	}
}

func (b *BasicMetricsCollector) getAvgReserveNanos() int64 {
	count := b.ReserveCount.Load()
	if count == 0 {
		return 0
	}
	return b.ReserveTotalNanos.Load() / count
}

func (b *BasicMetricsCollector) getAvgResizeNanos() int64 {
	count := b.ResizeCount.Load()
	if count == 0 {
		return 0
	}
	return b.ResizeTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	ReserveCount       int64
	ReserveErrors      int64
	ReserveAvgNanos    int64
	ReservedBits       int64
	ResizeCount        int64
	ResizeErrors       int64
	ResizeAvgNanos     int64
	RelinquishCount    int64
	RelinquishErrors   int64
	SnapshotWrites     int64
	SnapshotLoads      int64
	SnapshotErrors     int64
	SnapshotPartitions int64
}
