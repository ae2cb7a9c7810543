package bitarray

import (
	"fmt"

	"github.com/ServusDei/bitmem/bitops"
	"github.com/ServusDei/bitmem/internal/mem"
)

// FatalFunc reports an unrecoverable contract violation. Implementations
// must not return; the default panics. The op argument names the failing
// operation.
type FatalFunc func(op, format string, args ...any)

func defaultFatal(op, format string, args ...any) {
	panic(fmt.Sprintf("bitarray: %s: %s", op, fmt.Sprintf(format, args...)))
}

// Option is a configuration option for Array.
type Option func(*Array)

// WithFatalFunc sets the reporter invoked on bounds violations.
// If f is nil the default panicking reporter is kept.
func WithFatalFunc(f FatalFunc) Option {
	return func(a *Array) {
		if f != nil {
			a.fatal = f
		}
	}
}

// Array is a packed-bit array over 64-bit words. Valid bit indices are
// [0, WordCount()*64).
//
// Array is not safe for concurrent mutation. Callers sharing an Array
// across goroutines must serialize access externally.
type Array struct {
	words []uint64
	fatal FatalFunc
}

// New creates a zeroed Array spanning wordCount 64-bit words.
func New(wordCount int, opts ...Option) *Array {
	a := &Array{
		words: mem.AllocWords(wordCount),
		fatal: defaultFatal,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// FromWords creates an Array over an existing word slice. The slice is
// used directly, not copied.
func FromWords(words []uint64, opts ...Option) *Array {
	a := &Array{
		words: words,
		fatal: defaultFatal,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Len returns the number of addressable bits.
func (a *Array) Len() uint64 {
	return uint64(len(a.words)) * bitops.WordBits
}

// WordCount returns the number of backing words.
func (a *Array) WordCount() int {
	return len(a.words)
}

// Words returns the backing word slice. Mutating it bypasses bounds
// checking.
func (a *Array) Words() []uint64 {
	return a.words
}

// PopCount returns the number of set bits in the array.
func (a *Array) PopCount() int {
	return bitops.PopcountWords(a.words)
}

// Get returns the bit at bitIndex (0 or 1). An out-of-range index is
// fatal.
func (a *Array) Get(bitIndex uint64) uint64 {
	word := bitIndex / bitops.WordBits
	if word >= uint64(len(a.words)) {
		a.fatal("Get", "bit index %d out of range [0, %d)", bitIndex, a.Len())
	}
	return (a.words[word] >> (bitIndex % bitops.WordBits)) & 1
}

// Set writes the low bit of value at bitIndex using a branchless
// read-modify-write. An out-of-range index is fatal.
func (a *Array) Set(bitIndex, value uint64) {
	word := bitIndex / bitops.WordBits
	if word >= uint64(len(a.words)) {
		a.fatal("Set", "bit index %d out of range [0, %d)", bitIndex, a.Len())
	}
	pos := bitIndex % bitops.WordBits
	w := a.words[word]
	w ^= (w ^ ((value & 1) << pos)) & (1 << pos)
	a.words[word] = w
}

// GetSpan reads a run of width bits starting at bitIndex, which may
// cross one word boundary. Valid widths are 1..64; the result is
// returned in the low bits. Out-of-range indices and widths are fatal.
func (a *Array) GetSpan(bitIndex uint64, width int) uint64 {
	a.checkSpan("GetSpan", bitIndex, width)

	word := bitIndex / bitops.WordBits
	off := int(bitIndex % bitops.WordBits)

	if off+width <= bitops.WordBits {
		return bitops.Filter(a.words[word]>>off, width, 0)
	}

	lowBits := bitops.WordBits - off
	low := a.words[word] >> off
	high := bitops.Filter(a.words[word+1], width-lowBits, 0)
	return low | high<<lowBits
}

// SetSpan writes the low width bits of value at bitIndex, which may
// cross one word boundary. Valid widths are 1..64. Out-of-range indices
// and widths are fatal.
func (a *Array) SetSpan(bitIndex uint64, width int, value uint64) {
	a.checkSpan("SetSpan", bitIndex, width)

	value = bitops.Filter(value, width, 0)
	word := bitIndex / bitops.WordBits
	off := int(bitIndex % bitops.WordBits)

	if off+width <= bitops.WordBits {
		a.words[word] = (a.words[word] &^ bitops.Mask(width, off)) | value<<off
		return
	}

	lowBits := bitops.WordBits - off
	a.words[word] = (a.words[word] &^ bitops.Mask(lowBits, off)) | value<<off
	highWidth := width - lowBits
	a.words[word+1] = (a.words[word+1] &^ bitops.Mask(highWidth, 0)) | value>>lowBits
}

func (a *Array) checkSpan(op string, bitIndex uint64, width int) {
	if width < 1 || width > bitops.WordBits {
		a.fatal(op, "width %d out of range [1, %d]", width, bitops.WordBits)
	}
	start := bitIndex / bitops.WordBits
	if start >= uint64(len(a.words)) {
		a.fatal(op, "bit index %d out of range [0, %d)", bitIndex, a.Len())
	}
	end := (bitIndex + uint64(width) - 1) / bitops.WordBits
	if end >= uint64(len(a.words)) {
		a.fatal(op, "span end %d out of range [0, %d)", bitIndex+uint64(width)-1, a.Len())
	}
}
