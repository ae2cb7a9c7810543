package bitops

// Mod computes a mod b without a hardware division instruction.
//
// By convention Mod(a, 0) == 0, given that lim_{n -> 0} a mod n = 0.
//
// The reduction works on the split boundary base = 2^(floor(log2(b))+1),
// the smallest power of two strictly greater than b. Because
// floor(base/b) == 1, the modulus identity gives base mod b == base - b,
// so a can be folded as
//
//	a == (a mod base) + (base mod b) * floor(a/base)   (mod b)
//
// which is a single mask, shift and multiply-add per round. Each round
// shrinks a by at least half, so the fold loop runs O(64/log2(base))
// times, and the value entering the final step is below 2*b, so the
// closing subtraction runs at most once.
func Mod(a, b uint64) uint64 {
	if b == 0 {
		return 0
	}

	k := Log2Floor(b)
	if k == WordBits-1 {
		// b occupies the top bit; a mod b needs at most one subtraction.
		if a >= b {
			a -= b
		}
		return a
	}

	shift := k + 1
	base := uint64(1) << shift
	fold := base - b // base mod b
	low := base - 1

	// fold < 2^k and floor(a/base) <= a/2^(k+1), so the multiply-add
	// cannot overflow and strictly decreases a.
	for a >= base {
		a = (a & low) + fold*(a>>shift)
	}

	if a >= b {
		a -= b
	}
	return a
}
