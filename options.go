package bitmem

import (
	"log/slog"

	"github.com/ServusDei/bitmem/bitarray"
	"github.com/ServusDei/bitmem/internal/snapcodec"
)

// CompressionType selects the block compression used for snapshots.
type CompressionType uint8

const (
	// CompressionNone stores snapshot blocks uncompressed.
	CompressionNone CompressionType = CompressionType(snapcodec.CompressionNone)
	// CompressionLZ4 compresses snapshot blocks with LZ4 (fast, moderate ratio).
	CompressionLZ4 CompressionType = CompressionType(snapcodec.CompressionLZ4)
	// CompressionZSTD compresses snapshot blocks with Zstandard (slower, better ratio).
	CompressionZSTD CompressionType = CompressionType(snapcodec.CompressionZSTD)
)

type options struct {
	metricsCollector MetricsCollector
	logger           *Logger
	fatal            bitarray.FatalFunc
	addressSpaceBits uint64
	ioLimitBytes     int64
	compression      CompressionType
}

// Option configures Manager constructor behavior.
type Option func(*options)

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &bitmem.BasicMetricsCollector{}
//	m := bitmem.NewManager(bitmem.WithMetricsCollector(metrics))
//	// ... use m ...
//	stats := metrics.GetStats()
//	fmt.Printf("Reserves: %d, Avg latency: %dns\n", stats.ReserveCount, stats.ReserveAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := bitmem.NewJSONLogger(slog.LevelInfo)
//	m := bitmem.NewManager(bitmem.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithFatalFunc overrides the handler invoked on out-of-bounds content
// access. The default panics. The handler must not return; a handler
// that returns leaves partition state undefined.
func WithFatalFunc(fn bitarray.FatalFunc) Option {
	return func(o *options) {
		o.fatal = fn
	}
}

// WithAddressSpaceLimit caps the total number of bits the manager may
// hold across all live partitions. Reservations and growing resizes
// beyond the cap fail with ErrAddressSpaceExhausted. Zero means
// unlimited.
func WithAddressSpaceLimit(bits uint64) Option {
	return func(o *options) {
		o.addressSpaceBits = bits
	}
}

// WithIOLimit throttles snapshot reads and writes to the given number
// of bytes per second. Zero means unthrottled.
func WithIOLimit(bytesPerSec int64) Option {
	return func(o *options) {
		o.ioLimitBytes = bytesPerSec
	}
}

// WithSnapshotCompression selects the block compression for WriteSnapshot.
// LoadSnapshot always honors the compression recorded in the file header.
func WithSnapshotCompression(ct CompressionType) Option {
	return func(o *options) {
		o.compression = ct
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
		compression:      CompressionNone,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
