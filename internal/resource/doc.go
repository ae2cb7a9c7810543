// Package resource implements the budget controller for the partition
// address space.
//
// The controller governs two resources:
//
//   - Address space: track and limit the total bits held by live
//     partitions (non-blocking, fail-fast)
//   - IO: rate-limit snapshot reads and writes
//
// # Address-Space Budget
//
// The budget uses a weighted semaphore for the hard limit and an atomic
// counter for usage tracking. AcquireBits is non-blocking and returns
// ErrAddressSpaceExhausted immediately if the limit would be exceeded;
// the caller decides whether to relinquish other partitions and retry:
//
//	rc := resource.NewController(resource.Config{
//	    AddressSpaceBits: 1 << 30,
//	})
//
//	if err := rc.AcquireBits(4096); err != nil {
//	    // ErrAddressSpaceExhausted - free partitions or fail gracefully
//	}
//	defer rc.ReleaseBits(4096)
//
// # Nil Safety
//
// All methods handle a nil Controller gracefully - they become no-ops.
// This allows optional budgeting without nil checks everywhere.
package resource
