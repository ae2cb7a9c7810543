package bitmem

import (
	"errors"
	"fmt"
)

var (
	// ErrPartitionExists is returned when Reserve is called for a pair
	// that already has a live partition.
	ErrPartitionExists = errors.New("partition already reserved")

	// ErrPartitionNotFound is returned when Resize or Relinquish is
	// called for a pair with no live partition.
	ErrPartitionNotFound = errors.New("no live partition")

	// ErrAddressSpaceExhausted is returned when the configured budget
	// cannot satisfy a Reserve or Resize. Callers can relinquish other
	// partitions and retry.
	ErrAddressSpaceExhausted = errors.New("address space exhausted")

	// ErrInvalidSize is returned for zero or unrepresentable partition
	// sizes.
	ErrInvalidSize = errors.New("invalid partition size")

	// ErrKeyRange is returned when a context or identifier exceeds the
	// 32 significant bits the pairing function accepts.
	ErrKeyRange = errors.New("context and identifier must fit in 32 bits")

	// ErrSnapshotCorrupt is returned when a snapshot payload cannot be
	// decoded.
	ErrSnapshotCorrupt = errors.New("snapshot corrupt")
)

// PartitionError wraps a lifecycle error with the operation and the
// (context, identifier) pair it concerned.
//
// The underlying sentinel can be accessed via errors.Is / errors.Unwrap.
type PartitionError struct {
	Op         string
	Context    uint64
	Identifier uint64
	Err        error
}

func (e *PartitionError) Error() string {
	return fmt.Sprintf("%s partition (%d, %d): %v", e.Op, e.Context, e.Identifier, e.Err)
}

func (e *PartitionError) Unwrap() error { return e.Err }
