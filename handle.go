package bitmem

// Handle is the value object returned by every partition operation. It
// carries the partition's key and its current placement. A handle is a
// plain value; it holds no reference to backing storage and becomes
// stale after the next Resize or Relinquish of its pair.
type Handle struct {
	// Context and Identifier form the two-part opaque key that is the
	// sole address of the partition.
	Context    uint64
	Identifier uint64

	// BaseBitOffset is the first bit of the partition within the
	// manager's address space.
	BaseBitOffset uint64

	// SizeBits is the partition's current size in bits.
	SizeBits uint64
}

// End returns the first bit past the partition range.
func (h Handle) End() uint64 {
	return h.BaseBitOffset + h.SizeBits
}

// Partitioner is the three-operation boundary contract consumed by an
// external runtime. Manager is the concrete implementation.
type Partitioner interface {
	// Reserve creates a live partition of at least bits bits for an
	// absent (context, identifier) pair.
	Reserve(context, identifier, bits uint64) (Handle, error)

	// Resize grows or shrinks a live partition, preserving the
	// overlapping prefix and zero-filling growth.
	Resize(context, identifier, bits uint64) (Handle, error)

	// Relinquish destroys a live partition. Its pair may be reserved
	// again afterwards.
	Relinquish(context, identifier uint64) error
}
