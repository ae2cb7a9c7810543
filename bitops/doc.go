// Package bitops provides pure bit-level arithmetic primitives.
//
// All functions are stateless and operate on uint64 bit strings
// (index 0 = least significant bit).
//
// Provided primitives:
//   - Bit length and divide-free integer logarithms (base 2, 10, e, n)
//   - Divide-free modulus (Mod)
//   - Mask construction and filtering
//   - Integer powers (Pow2, Pow10, PowN)
//   - Fixed-point square wave sampling
//   - Population count and zero counting via selectable kernels
//
// # Kernel Selection
//
// Popcount, LeadingZeros, TrailingZeros and PopcountWords are backed by
// kernel function variables. Portable software implementations are the
// default; platform-specific init() functions switch to hardware-backed
// implementations when the CPU reports support (POPCNT on x86-64, ASIMD
// on ARM64). Set BITMEM_KERNELS=portable|hardware to override.
package bitops
