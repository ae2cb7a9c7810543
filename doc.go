// Package bitmem implements a manual memory-partitioning model over a
// bit-addressed space.
//
// An unbounded address space is divided into named partitions identified
// by an opaque (context, identifier) pair rather than a raw pointer. A
// partition is created by Reserve, grown or shrunk by Resize and
// destroyed by Relinquish, after which its pair may be reused.
// Placement uses an implicit complete binary tree addressed through
// bit-level arithmetic; occupancy metadata lives in packed bit arrays.
//
// # Error Model
//
// Lifecycle misuse (reserving a live pair, resizing an absent one) and
// address-space exhaustion are recoverable errors the caller can react
// to. Out-of-bounds bit access inside a partition is a programmer
// error and takes the fatal path instead: the configured fatal reporter
// is invoked with the failing operation and index, and does not return.
//
// # Concurrency
//
// A Manager is not safe for concurrent mutation. Callers sharing one
// Manager across goroutines must serialize access externally.
package bitmem
