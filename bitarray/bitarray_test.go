package bitarray

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetSetRoundTrip(t *testing.T) {
	a := New(4)
	require.Equal(t, uint64(256), a.Len())

	for bit := uint64(0); bit < a.Len(); bit++ {
		require.Equal(t, uint64(0), a.Get(bit))

		a.Set(bit, 1)
		require.Equal(t, uint64(1), a.Get(bit), "bit %d", bit)

		a.Set(bit, 0)
		require.Equal(t, uint64(0), a.Get(bit), "bit %d", bit)
	}
}

func TestSetOnlyLowBitOfValue(t *testing.T) {
	a := New(1)
	a.Set(5, 0xFF) // only the low bit counts
	assert.Equal(t, uint64(1), a.Get(5))
	assert.Equal(t, uint64(1)<<5, a.Words()[0])

	a.Set(5, 0xFE)
	assert.Equal(t, uint64(0), a.Get(5))
	assert.Equal(t, uint64(0), a.Words()[0])
}

func TestSetDoesNotDisturbNeighbors(t *testing.T) {
	a := New(2)
	a.Set(10, 1)
	a.Set(11, 1)
	a.Set(12, 1)

	a.Set(11, 0)
	assert.Equal(t, uint64(1), a.Get(10))
	assert.Equal(t, uint64(0), a.Get(11))
	assert.Equal(t, uint64(1), a.Get(12))
	assert.Equal(t, 2, a.PopCount())
}

func TestGetOutOfRangeIsFatal(t *testing.T) {
	a := New(2) // 128 bits

	assert.PanicsWithValue(t,
		"bitarray: Get: bit index 128 out of range [0, 128)",
		func() { a.Get(128) },
	)
	assert.PanicsWithValue(t,
		"bitarray: Set: bit index 9999 out of range [0, 128)",
		func() { a.Set(9999, 1) },
	)
}

func TestWithFatalFunc(t *testing.T) {
	var gotOp string
	a := New(1, WithFatalFunc(func(op, format string, args ...any) {
		gotOp = op
		panic("custom fatal")
	}))

	assert.PanicsWithValue(t, "custom fatal", func() { a.Get(64) })
	assert.Equal(t, "Get", gotOp)
}

func TestSpanRoundTripWithinWord(t *testing.T) {
	a := New(2)

	a.SetSpan(4, 8, 0xAB)
	assert.Equal(t, uint64(0xAB), a.GetSpan(4, 8))

	// Full word.
	a2 := New(2)
	a2.SetSpan(0, 64, 0xDEADBEEFCAFEF00D)
	assert.Equal(t, uint64(0xDEADBEEFCAFEF00D), a2.GetSpan(0, 64))
}

func TestSpanAcrossWordBoundary(t *testing.T) {
	a := New(2)

	// 16 bits starting at bit 56: 8 bits in word 0, 8 in word 1.
	a.SetSpan(56, 16, 0xBEEF)
	assert.Equal(t, uint64(0xBEEF), a.GetSpan(56, 16))
	assert.Equal(t, uint64(0xEF)<<56, a.Words()[0])
	assert.Equal(t, uint64(0xBE), a.Words()[1])

	// Overwrite leaves surrounding bits alone.
	a.Set(0, 1)
	a.Set(127, 1)
	a.SetSpan(56, 16, 0x1234)
	assert.Equal(t, uint64(0x1234), a.GetSpan(56, 16))
	assert.Equal(t, uint64(1), a.Get(0))
	assert.Equal(t, uint64(1), a.Get(127))
}

func TestSpanMasksValue(t *testing.T) {
	a := New(2)
	a.SetSpan(3, 4, 0xFFFF) // only 4 bits of the value must land
	assert.Equal(t, uint64(0xF), a.GetSpan(3, 4))
	assert.Equal(t, uint64(0xF)<<3, a.Words()[0])
}

func TestSpanRandomized(t *testing.T) {
	rng := rand.New(rand.NewSource(17))
	a := New(16)

	for i := 0; i < 10000; i++ {
		width := 1 + rng.Intn(64)
		limit := a.Len() - uint64(width)
		bit := uint64(rng.Int63n(int64(limit + 1)))
		value := rng.Uint64()

		a.SetSpan(bit, width, value)
		want := value
		if width < 64 {
			want &= (uint64(1) << width) - 1
		}
		require.Equal(t, want, a.GetSpan(bit, width), "bit=%d width=%d", bit, width)
	}
}

func TestSpanBoundsFatal(t *testing.T) {
	a := New(2) // 128 bits

	assert.Panics(t, func() { a.GetSpan(120, 16) }) // span end out of range
	assert.Panics(t, func() { a.SetSpan(128, 1, 1) })
	assert.Panics(t, func() { a.GetSpan(0, 0) })
	assert.Panics(t, func() { a.GetSpan(0, 65) })
	assert.Panics(t, func() { a.SetSpan(0, -1, 0) })
}

func TestFromWords(t *testing.T) {
	words := []uint64{0b1010, 0}
	a := FromWords(words)

	assert.Equal(t, uint64(0), a.Get(0))
	assert.Equal(t, uint64(1), a.Get(1))
	assert.Equal(t, uint64(1), a.Get(3))
	assert.Equal(t, 2, a.WordCount())

	a.Set(64, 1)
	assert.Equal(t, uint64(1), words[1]) // shares backing storage
}

func TestPopCount(t *testing.T) {
	a := New(4)
	assert.Equal(t, 0, a.PopCount())

	a.Set(0, 1)
	a.Set(63, 1)
	a.Set(64, 1)
	a.Set(255, 1)
	assert.Equal(t, 4, a.PopCount())
}
