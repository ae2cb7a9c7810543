package mem

import (
	"unsafe"
)

// Alignment is the byte alignment of backing storage (one cache line).
const Alignment = 64

// WordsFor returns the number of 64-bit words needed to hold the given
// number of bits. Callers must reject sizes above 2^63 before rounding;
// bits+63 wraps at the top of the uint64 range.
func WordsFor(bits uint64) int {
	return int((bits + 63) / 64) //nolint:gosec // callers bound bits below 2^63
}

// AllocAligned allocates a zeroed byte slice of the given size with
// 64-byte alignment. The returned slice is guaranteed to start at a
// memory address divisible by 64.
//
// Note: This function allocates slightly more memory than requested to
// ensure alignment. The underlying array is kept alive by the returned
// slice.
func AllocAligned(size int) []byte {
	if size == 0 {
		return nil
	}

	// Allocate size + alignment to ensure we can find an aligned offset.
	totalSize := size + Alignment
	buf := make([]byte, totalSize)

	ptr := unsafe.Pointer(&buf[0]) //nolint:gosec // unsafe is required for memory alignment
	addr := uintptr(ptr)
	offset := (Alignment - (addr & (Alignment - 1))) & (Alignment - 1)

	return buf[offset : offset+uintptr(size)]
}

// AllocWords allocates a zeroed uint64 slice of the given length with
// 64-byte alignment.
func AllocWords(words int) []uint64 {
	if words <= 0 {
		return nil
	}

	byteSlice := AllocAligned(words * 8)

	// Safe because AllocAligned guarantees 64-byte alignment, which is
	// also 8-byte aligned (required for uint64).
	ptr := unsafe.Pointer(&byteSlice[0])      //nolint:gosec // unsafe is required for memory alignment
	return unsafe.Slice((*uint64)(ptr), words) //nolint:gosec // unsafe is required for memory alignment
}
