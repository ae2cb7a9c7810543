package bitops

import "math/bits"

// Kernel function pointers for the counting primitives. Portable
// implementations are the default; capability detection at init()
// switches to the hardware-backed versions when available.
var (
	kernelPopcount      = popcountPortable
	kernelLeadingZeros  = leadingZerosPortable
	kernelTrailingZeros = trailingZerosPortable
	kernelPopcountWords = popcountWordsPortable
)

// Popcount returns the number of one-bits in x.
func Popcount(x uint64) int {
	return kernelPopcount(x)
}

// LeadingZeros returns the number of leading zero bits in x;
// LeadingZeros(0) == 64.
func LeadingZeros(x uint64) int {
	return kernelLeadingZeros(x)
}

// TrailingZeros returns the number of trailing zero bits in x;
// TrailingZeros(0) == 64.
func TrailingZeros(x uint64) int {
	return kernelTrailingZeros(x)
}

// PopcountWords counts all set bits across words.
func PopcountWords(words []uint64) int {
	return kernelPopcountWords(words)
}

// ==============================================================================
// Hardware-backed implementations
// ==============================================================================
//
// math/bits intrinsics lower to single instructions (POPCNT, LZCNT,
// TZCNT or their ARM64 equivalents) when the capability is present.

func popcountHardware(x uint64) int {
	return bits.OnesCount64(x)
}

func leadingZerosHardware(x uint64) int {
	return bits.LeadingZeros64(x)
}

func trailingZerosHardware(x uint64) int {
	return bits.TrailingZeros64(x)
}

func popcountWordsHardware(words []uint64) int {
	count := 0
	i := 0
	for ; i+4 <= len(words); i += 4 {
		count += bits.OnesCount64(words[i])
		count += bits.OnesCount64(words[i+1])
		count += bits.OnesCount64(words[i+2])
		count += bits.OnesCount64(words[i+3])
	}
	for ; i < len(words); i++ {
		count += bits.OnesCount64(words[i])
	}
	return count
}

// ==============================================================================
// Portable implementations
// ==============================================================================

func popcountPortable(x uint64) int {
	count := 0
	for x != 0 {
		x &= x - 1
		count++
	}
	return count
}

func leadingZerosPortable(x uint64) int {
	if x == 0 {
		return WordBits
	}
	n := 0
	if x > 0xFFFFFFFF {
		x >>= 32
		n += 32
	}
	if x > 0xFFFF {
		x >>= 16
		n += 16
	}
	if x > 0xFF {
		x >>= 8
		n += 8
	}
	if x > 0xF {
		x >>= 4
		n += 4
	}
	if x > 0x3 {
		x >>= 2
		n += 2
	}
	if x > 0x1 {
		n++
	}
	return WordBits - 1 - n
}

func trailingZerosPortable(x uint64) int {
	if x == 0 {
		return WordBits
	}
	n := 0
	for x&1 == 0 {
		x >>= 1
		n++
	}
	return n
}

func popcountWordsPortable(words []uint64) int {
	count := 0
	for _, w := range words {
		count += popcountPortable(w)
	}
	return count
}
