package resource

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// ErrAddressSpaceExhausted is returned when the address-space budget
// would be exceeded.
var ErrAddressSpaceExhausted = errors.New("address space exhausted")

// Config holds resource limits.
type Config struct {
	// AddressSpaceBits is the hard limit on the total bits held by live
	// partitions. If 0, no hard limit is enforced (only tracking).
	AddressSpaceBits int64

	// IOLimitBytesPerSec is the maximum snapshot IO throughput.
	// If 0, unlimited.
	IOLimitBytesPerSec int64
}

// Controller manages the partition address-space budget and snapshot IO.
type Controller struct {
	cfg Config

	// Address space
	bitSem   *semaphore.Weighted // nil if unlimited
	bitsUsed atomic.Int64

	// IO
	ioLimiter *rate.Limiter
}

// NewController creates a new resource controller.
func NewController(cfg Config) *Controller {
	c := &Controller{cfg: cfg}

	if cfg.AddressSpaceBits > 0 {
		c.bitSem = semaphore.NewWeighted(cfg.AddressSpaceBits)
	}

	if cfg.IOLimitBytesPerSec > 0 {
		c.ioLimiter = rate.NewLimiter(rate.Limit(cfg.IOLimitBytesPerSec), int(cfg.IOLimitBytesPerSec))
	}

	return c
}

// AcquireBits attempts to reserve bits of address space.
// Returns ErrAddressSpaceExhausted if the limit would be exceeded.
// Non-blocking - callers control retry policy.
func (c *Controller) AcquireBits(bits int64) error {
	if c == nil || bits <= 0 {
		return nil
	}

	if c.bitSem != nil {
		if !c.bitSem.TryAcquire(bits) {
			return ErrAddressSpaceExhausted
		}
	}

	c.bitsUsed.Add(bits)
	return nil
}

// ReleaseBits releases reserved address space.
func (c *Controller) ReleaseBits(bits int64) {
	if c == nil || bits <= 0 {
		return
	}

	if c.bitSem != nil {
		c.bitSem.Release(bits)
	}
	c.bitsUsed.Add(-bits)
}

// BitsUsed returns the bits currently held by live partitions.
func (c *Controller) BitsUsed() int64 {
	if c == nil {
		return 0
	}
	return c.bitsUsed.Load()
}

// BitsLimit returns the configured budget in bits (0 if unlimited).
func (c *Controller) BitsLimit() int64 {
	if c == nil {
		return 0
	}
	return c.cfg.AddressSpaceBits
}

// AcquireIO waits until the IO limit allows the specified number of bytes.
func (c *Controller) AcquireIO(ctx context.Context, bytes int) error {
	if c == nil || c.ioLimiter == nil {
		return nil
	}
	return c.ioLimiter.WaitN(ctx, bytes)
}

// TryAcquireIO attempts to acquire IO tokens without blocking.
func (c *Controller) TryAcquireIO(bytes int) bool {
	if c == nil || c.ioLimiter == nil {
		return true
	}
	return c.ioLimiter.AllowN(time.Now(), bytes)
}

// RateLimitedWriter wraps an io.Writer with the controller's IO limit.
type RateLimitedWriter struct {
	w   io.Writer
	rc  *Controller
	ctx context.Context
}

// NewRateLimitedWriter creates a new RateLimitedWriter.
func NewRateLimitedWriter(ctx context.Context, w io.Writer, rc *Controller) *RateLimitedWriter {
	return &RateLimitedWriter{w: w, rc: rc, ctx: ctx}
}

func (w *RateLimitedWriter) Write(p []byte) (int, error) {
	if err := w.rc.AcquireIO(w.ctx, len(p)); err != nil {
		return 0, err
	}
	return w.w.Write(p)
}

// RateLimitedReader wraps an io.Reader with the controller's IO limit.
type RateLimitedReader struct {
	r   io.Reader
	rc  *Controller
	ctx context.Context
}

// NewRateLimitedReader creates a new RateLimitedReader.
func NewRateLimitedReader(ctx context.Context, r io.Reader, rc *Controller) *RateLimitedReader {
	return &RateLimitedReader{r: r, rc: rc, ctx: ctx}
}

func (r *RateLimitedReader) Read(p []byte) (int, error) {
	// The read size is unknown up front; limit on the buffer size.
	if err := r.rc.AcquireIO(r.ctx, len(p)); err != nil {
		return 0, err
	}
	return r.r.Read(p)
}
