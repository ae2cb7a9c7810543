// Package bitarray provides a bounds-checked packed-bit array over a flat
// sequence of 64-bit words.
//
// # Error Model
//
// An out-of-range bit index is a programmer error, not a resource error:
// it invokes the array's FatalFunc, which must not return. The default
// reporter panics with a message naming the failing operation and the
// invalid index. Callers that prioritize diagnostics over unwinding can
// inject a reporter that logs and terminates the process instead.
package bitarray
