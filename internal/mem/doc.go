// Package mem provides allocation helpers for partition backing storage.
//
// # Aligned Allocation
//
// Backing words are allocated with 64-byte alignment so that word-granular
// kernels can run over them without crossing cache lines mid-word.
package mem
