package bitops

// WordBits is the width in bits of the word type used throughout the
// library.
const WordBits = 64

// BitLength returns the minimum number of bits required to represent x,
// i.e. the smallest n such that x < 2^n. By convention BitLength(0) == 1:
// zero is treated as if its least significant bit were set, so that
// Log2Floor and the logarithm approximations built on top of it stay
// total.
func BitLength(x uint64) int {
	return WordBits - LeadingZeros(x|1)
}

// Log2Floor computes floor(log2(x)) for x >= 1. Log2Floor(0) == 0 by the
// BitLength convention.
func Log2Floor(x uint64) uint64 {
	return uint64(BitLength(x)) - 1
}

// Log10Floor approximates floor(log10(x)) by scaling the bit length of x
// with a rational approximation of log10(2):
//
//	10000/33219 ~= 1/3.32193 ~= log10(2)
//
// The result is divide-free in spirit (one constant division, no
// per-value division by x) and inexact near powers of ten; the accuracy
// is bounded by the precision of the rational constant.
func Log10Floor(x uint64) uint64 {
	return uint64(BitLength(x)) * 10000 / 33219
}

// Digits returns the number of significant base-10 digits of x, derived
// from Log10Floor.
func Digits(x uint64) uint64 {
	return Log10Floor(x) + 1
}

// LnFloor approximates floor(ln(x)) by scaling the bit length of x with
// a rational approximation of log2(e):
//
//	10000000000000000/14426950408889634 ~= 1/1.44269... ~= ln(2)
func LnFloor(x uint64) uint64 {
	const (
		numerator   = 10000000000000000
		denominator = 14426950408889634
	)
	return uint64(BitLength(x)) * numerator / denominator
}

// LogNFloor approximates floor(log_base(x)) as the ratio of the base-2
// logarithms of x and base. Bases below 2 return 0. Like the other
// logarithm helpers this is a bit-length approximation, not an exact
// logarithm.
func LogNFloor(base, x uint64) uint64 {
	if base < 2 {
		return 0
	}
	d := Log2Floor(base)
	if d == 0 {
		return 0
	}
	return Log2Floor(x) / d
}

// Mask builds a contiguous run of `bits` one-bits anchored at bit 0 and
// then shifts it: left for a positive offset, right for a negative
// offset, not at all for offset zero. Runs of 64 or more bits saturate
// to a full word before shifting.
func Mask(bits int, offset int) uint64 {
	var m uint64
	if bits >= WordBits {
		m = ^uint64(0)
	} else if bits > 0 {
		m = (uint64(1) << bits) - 1
	}

	switch {
	case offset > 0:
		if offset >= WordBits {
			return 0
		}
		return m << offset
	case offset < 0:
		if -offset >= WordBits {
			return 0
		}
		return m >> -offset
	default:
		return m
	}
}

// Filter extracts `bits` bits of value at the given offset relative to
// the least significant bit: Filter(v, b, o) == v & Mask(b, o).
func Filter(value uint64, bits int, offset int) uint64 {
	return value & Mask(bits, offset)
}

// ZeroHighBits zeroes all bits of src at or above the given bit index,
// keeping the low `index` bits.
func ZeroHighBits(src uint64, index int) uint64 {
	if index >= WordBits {
		return src
	}
	return src & Mask(index, 0)
}

// SquareWave samples a single-bit square wave of the given periodicity
// at the given time. It evaluates
//
//	sgn( (time mod period) - (period-1)/2 )
//
// and packs the high phase into the top bit of the word: the result is
// 1<<63 when the wave is high and 0 when it is low. A period of 0
// yields the low phase.
func SquareWave(period, time uint64) uint64 {
	if period == 0 {
		return 0
	}
	a := int64(Mod(time, period)) //nolint:gosec // Mod(_, period) < period
	a -= int64((period - 1) >> 1) //nolint:gosec // halved, fits in int64
	if a > 0 {
		return 1 << (WordBits - 1)
	}
	return 0
}

// Pow2 computes 2^exponent by left shift. Exponents of 64 or more
// overflow the word and truncate to 0.
func Pow2(exponent uint64) uint64 {
	if exponent >= WordBits {
		return 0
	}
	return 1 << exponent
}

// pow10 holds every power of ten representable in a uint64.
var pow10 = [20]uint64{
	1,
	10,
	100,
	1000,
	10000,
	100000,
	1000000,
	10000000,
	100000000,
	1000000000,
	10000000000,
	100000000000,
	1000000000000,
	10000000000000,
	100000000000000,
	1000000000000000,
	10000000000000000,
	100000000000000000,
	1000000000000000000,
	10000000000000000000,
}

// Pow10 computes 10^exponent via table lookup. Exponents above 19
// overflow the word and truncate to 0.
func Pow10(exponent uint64) uint64 {
	if exponent >= uint64(len(pow10)) {
		return 0
	}
	return pow10[exponent]
}

// PowN computes base^exponent by square-and-multiply, with truncated
// results on overflow.
func PowN(base, exponent uint64) uint64 {
	result := uint64(1)
	for exponent != 0 {
		if exponent&1 == 1 {
			result *= base
		}
		exponent >>= 1
		base *= base
	}
	return result
}

// spread distributes the bits of x into the even bit positions of a
// uint64 (classic Morton spreading).
func spread(x uint32) uint64 {
	v := uint64(x)
	v = (v | v<<16) & 0x0000FFFF0000FFFF
	v = (v | v<<8) & 0x00FF00FF00FF00FF
	v = (v | v<<4) & 0x0F0F0F0F0F0F0F0F
	v = (v | v<<2) & 0x3333333333333333
	v = (v | v<<1) & 0x5555555555555555
	return v
}

// Interleave bit-interleaves x and y into a single word, with the bits
// of x in the even positions and the bits of y in the odd positions.
// The mapping is a bijection between (x, y) pairs and uint64 values.
func Interleave(x, y uint32) uint64 {
	return spread(x) | spread(y)<<1
}
