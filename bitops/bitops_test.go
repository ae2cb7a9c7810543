package bitops

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBitLength(t *testing.T) {
	tests := []struct {
		x    uint64
		want int
	}{
		{0, 1},
		{1, 1},
		{2, 2},
		{3, 2},
		{255, 8},
		{256, 9},
		{math.MaxUint64, 64},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, BitLength(tt.x), "BitLength(%d)", tt.x)
	}
}

func TestLog2Floor(t *testing.T) {
	for x := uint64(1); x <= 1<<16; x++ {
		want := uint64(math.Floor(math.Log2(float64(x))))
		require.Equal(t, want, Log2Floor(x), "Log2Floor(%d)", x)
	}

	// Exact powers across the whole word.
	for e := 0; e < 64; e++ {
		assert.Equal(t, uint64(e), Log2Floor(uint64(1)<<e))
	}
}

func TestLog10FloorApproximation(t *testing.T) {
	// The bit-length scaling is deliberately approximate: it is exact at
	// powers of two boundaries but may be off by one between them. Check
	// the error bound rather than exactness.
	for x := uint64(1); x <= 1_000_000; x *= 10 {
		exact := uint64(math.Floor(math.Log10(float64(x))))
		got := Log10Floor(x)
		diff := int64(got) - int64(exact)
		assert.LessOrEqual(t, diff, int64(1), "Log10Floor(%d)", x)
		assert.GreaterOrEqual(t, diff, int64(-1), "Log10Floor(%d)", x)
	}
}

func TestDigits(t *testing.T) {
	assert.Equal(t, uint64(1), Digits(1))
	assert.Equal(t, uint64(2), Digits(16))
	assert.Equal(t, uint64(4), Digits(4096))
}

func TestLnFloorApproximation(t *testing.T) {
	for _, x := range []uint64{1, 2, 8, 1024, 1 << 20, 1 << 40} {
		exact := math.Log(float64(x))
		got := float64(LnFloor(x))
		assert.InDelta(t, exact, got, 1.0, "LnFloor(%d)", x)
	}
}

func TestLogNFloor(t *testing.T) {
	assert.Equal(t, uint64(3), LogNFloor(2, 8))
	assert.Equal(t, uint64(2), LogNFloor(4, 16))
	assert.Equal(t, uint64(0), LogNFloor(0, 100))
	assert.Equal(t, uint64(0), LogNFloor(1, 100))
}

func TestMask(t *testing.T) {
	assert.Equal(t, uint64(0b1111), Mask(4, 0))
	assert.Equal(t, uint64(0b0011), Mask(4, -2))
	assert.Equal(t, uint64(0b111100), Mask(4, 2))
	assert.Equal(t, uint64(0), Mask(0, 0))
	assert.Equal(t, ^uint64(0), Mask(64, 0))
	assert.Equal(t, uint64(0), Mask(64, 64))
	assert.Equal(t, uint64(0), Mask(8, -64))
}

func TestFilter(t *testing.T) {
	for _, tt := range []struct {
		value  uint64
		bits   int
		offset int
	}{
		{0xDEADBEEF, 8, 0},
		{0xDEADBEEF, 8, 8},
		{0xDEADBEEF, 16, -4},
		{^uint64(0), 64, 0},
		{0x12345678, 0, 0},
	} {
		assert.Equal(t, tt.value&Mask(tt.bits, tt.offset), Filter(tt.value, tt.bits, tt.offset))
	}
}

func TestZeroHighBits(t *testing.T) {
	assert.Equal(t, uint64(0x0F), ZeroHighBits(0xFF, 4))
	assert.Equal(t, uint64(0xFF), ZeroHighBits(0xFF, 8))
	assert.Equal(t, uint64(0), ZeroHighBits(0xFF00, 8))
	assert.Equal(t, ^uint64(0), ZeroHighBits(^uint64(0), 64))
	assert.Equal(t, uint64(0), ZeroHighBits(^uint64(0), 0))
}

func TestSquareWave(t *testing.T) {
	const high = uint64(1) << 63

	// Period 2: low at even times, high at odd times.
	for time := uint64(0); time < 16; time++ {
		want := uint64(0)
		if time%2 == 1 {
			want = high
		}
		assert.Equal(t, want, SquareWave(2, time), "SquareWave(2, %d)", time)
	}

	// Period 10: high exactly when (t mod 10) > 4.
	for time := uint64(0); time < 40; time++ {
		want := uint64(0)
		if time%10 > 4 {
			want = high
		}
		assert.Equal(t, want, SquareWave(10, time), "SquareWave(10, %d)", time)
	}

	assert.Equal(t, uint64(0), SquareWave(0, 123))
}

func TestPow2(t *testing.T) {
	for e := uint64(0); e < 64; e++ {
		assert.Equal(t, uint64(1)<<e, Pow2(e))
	}
	assert.Equal(t, uint64(0), Pow2(64))
	assert.Equal(t, uint64(0), Pow2(1000))
}

func TestPow10(t *testing.T) {
	want := uint64(1)
	for e := uint64(0); e <= 19; e++ {
		assert.Equal(t, want, Pow10(e), "Pow10(%d)", e)
		if e < 19 {
			want *= 10
		}
	}
	assert.Equal(t, uint64(0), Pow10(20))
}

func TestPowN(t *testing.T) {
	assert.Equal(t, uint64(1), PowN(7, 0))
	assert.Equal(t, uint64(7), PowN(7, 1))
	assert.Equal(t, uint64(343), PowN(7, 3))
	assert.Equal(t, uint64(1024), PowN(2, 10))
	assert.Equal(t, uint64(0), PowN(0, 5))
}

func TestInterleaveBijective(t *testing.T) {
	seen := make(map[uint64]struct{}, 256*256)
	for x := uint32(0); x < 256; x++ {
		for y := uint32(0); y < 256; y++ {
			v := Interleave(x, y)
			_, dup := seen[v]
			require.False(t, dup, "Interleave(%d, %d) collides", x, y)
			seen[v] = struct{}{}
		}
	}
}

func TestInterleaveLayout(t *testing.T) {
	assert.Equal(t, uint64(0b01), Interleave(1, 0))
	assert.Equal(t, uint64(0b10), Interleave(0, 1))
	assert.Equal(t, uint64(0b11), Interleave(1, 1))
	assert.Equal(t, uint64(0b0101), Interleave(3, 0))
	assert.Equal(t, uint64(0b1010), Interleave(0, 3))
}
