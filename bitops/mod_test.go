package bitops

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestModZeroDivisor(t *testing.T) {
	require.Equal(t, uint64(0), Mod(0, 0))
	require.Equal(t, uint64(0), Mod(12345, 0))
	require.Equal(t, uint64(0), Mod(math.MaxUint64, 0))
}

func TestModSmall(t *testing.T) {
	for a := uint64(0); a < 512; a++ {
		for b := uint64(1); b < 64; b++ {
			require.Equal(t, a%b, Mod(a, b), "Mod(%d, %d)", a, b)
		}
	}
}

func TestModBoundaries(t *testing.T) {
	cases := []struct{ a, b uint64 }{
		{math.MaxUint64, 1},
		{math.MaxUint64, 2},
		{math.MaxUint64, 3},
		{math.MaxUint64, math.MaxUint64},
		{math.MaxUint64, math.MaxUint64 - 1},
		{math.MaxUint64, 1 << 63},          // divisor occupies the top bit
		{math.MaxUint64, (1 << 63) + 1},    // just above the top power of two
		{math.MaxUint64, (1 << 32) - 1},    // mersenne divisor
		{1 << 63, 3},                       // deep fold chain
		{1 << 63, (1 << 31) + 1},           // large fold constant
		{0, 7},
		{6, 7},
		{7, 7},
		{8, 7},
	}
	for _, tt := range cases {
		require.Equal(t, tt.a%tt.b, Mod(tt.a, tt.b), "Mod(%d, %d)", tt.a, tt.b)
	}
}

func TestModRandomized(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 100000; i++ {
		a := rng.Uint64()
		b := rng.Uint64()
		if b == 0 {
			require.Equal(t, uint64(0), Mod(a, b))
			continue
		}
		require.Equal(t, a%b, Mod(a, b), "Mod(%d, %d)", a, b)
	}
}

func TestModPowersOfTwo(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for e := 0; e < 64; e++ {
		b := uint64(1) << e
		for i := 0; i < 100; i++ {
			a := rng.Uint64()
			require.Equal(t, a%b, Mod(a, b), "Mod(%d, 2^%d)", a, e)
		}
	}
}

func BenchmarkMod(b *testing.B) {
	rng := rand.New(rand.NewSource(1))
	as := make([]uint64, 1024)
	bs := make([]uint64, 1024)
	for i := range as {
		as[i] = rng.Uint64()
		bs[i] = rng.Uint64() | 1
	}
	b.ResetTimer()
	var sink uint64
	for i := 0; i < b.N; i++ {
		sink += Mod(as[i%1024], bs[i%1024])
	}
	_ = sink
}
