package bitops

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKernelParity(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	values := []uint64{0, 1, 2, 3, 0xFF, 0xFF00, 1 << 63, ^uint64(0)}
	for i := 0; i < 10000; i++ {
		values = append(values, rng.Uint64())
	}

	for _, v := range values {
		require.Equal(t, popcountHardware(v), popcountPortable(v), "popcount(%#x)", v)
		require.Equal(t, leadingZerosHardware(v), leadingZerosPortable(v), "leadingZeros(%#x)", v)
		require.Equal(t, trailingZerosHardware(v), trailingZerosPortable(v), "trailingZeros(%#x)", v)
	}
}

func TestPopcountWordsParity(t *testing.T) {
	rng := rand.New(rand.NewSource(100))
	for _, n := range []int{0, 1, 3, 4, 5, 64, 1000} {
		words := make([]uint64, n)
		for i := range words {
			words[i] = rng.Uint64()
		}
		require.Equal(t, popcountWordsHardware(words), popcountWordsPortable(words), "n=%d", n)
	}
}

func TestZeroCounts(t *testing.T) {
	assert.Equal(t, 64, LeadingZeros(0))
	assert.Equal(t, 64, TrailingZeros(0))
	assert.Equal(t, 0, Popcount(0))
	assert.Equal(t, 64, Popcount(^uint64(0)))
	assert.Equal(t, 0, LeadingZeros(1<<63))
	assert.Equal(t, 63, TrailingZeros(1<<63))
}

func TestStrategyString(t *testing.T) {
	assert.Equal(t, "portable", Portable.String())
	assert.Equal(t, "hardware", Hardware.String())
	assert.Equal(t, "unknown", Strategy(42).String())
}

func TestParseStrategy(t *testing.T) {
	s, ok := ParseStrategy("Hardware")
	assert.True(t, ok)
	assert.Equal(t, Hardware, s)

	s, ok = ParseStrategy("  portable ")
	assert.True(t, ok)
	assert.Equal(t, Portable, s)

	_, ok = ParseStrategy("avx512")
	assert.False(t, ok)
}

func TestActiveStrategyAvailable(t *testing.T) {
	// Whatever was selected at init must actually be available.
	assert.True(t, isStrategyAvailable(ActiveStrategy()))
}

func TestApplyStrategyRoundTrip(t *testing.T) {
	prev := ActiveStrategy()
	defer applyStrategy(prev)

	applyStrategy(Portable)
	assert.Equal(t, Portable, ActiveStrategy())
	assert.Equal(t, 32, Popcount(0xAAAAAAAAAAAAAAAA))

	applyStrategy(Hardware)
	assert.Equal(t, Hardware, ActiveStrategy())
	assert.Equal(t, 32, Popcount(0xAAAAAAAAAAAAAAAA))
}
