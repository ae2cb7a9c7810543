package resource

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquireReleaseBits(t *testing.T) {
	rc := NewController(Config{AddressSpaceBits: 1024})

	require.NoError(t, rc.AcquireBits(512))
	assert.Equal(t, int64(512), rc.BitsUsed())

	require.NoError(t, rc.AcquireBits(512))
	assert.Equal(t, int64(1024), rc.BitsUsed())

	err := rc.AcquireBits(1)
	require.ErrorIs(t, err, ErrAddressSpaceExhausted)

	rc.ReleaseBits(512)
	assert.Equal(t, int64(512), rc.BitsUsed())
	require.NoError(t, rc.AcquireBits(512))
}

func TestUnlimitedBudgetTracksOnly(t *testing.T) {
	rc := NewController(Config{})

	require.NoError(t, rc.AcquireBits(1<<40))
	assert.Equal(t, int64(1<<40), rc.BitsUsed())
	assert.Equal(t, int64(0), rc.BitsLimit())

	rc.ReleaseBits(1 << 40)
	assert.Equal(t, int64(0), rc.BitsUsed())
}

func TestNilControllerIsNoop(t *testing.T) {
	var rc *Controller

	assert.NoError(t, rc.AcquireBits(100))
	rc.ReleaseBits(100)
	assert.Equal(t, int64(0), rc.BitsUsed())
	assert.Equal(t, int64(0), rc.BitsLimit())
	assert.NoError(t, rc.AcquireIO(context.Background(), 100))
	assert.True(t, rc.TryAcquireIO(100))
}

func TestNonPositiveAcquire(t *testing.T) {
	rc := NewController(Config{AddressSpaceBits: 10})
	assert.NoError(t, rc.AcquireBits(0))
	assert.NoError(t, rc.AcquireBits(-5))
	assert.Equal(t, int64(0), rc.BitsUsed())
}

func TestRateLimitedWriter(t *testing.T) {
	rc := NewController(Config{IOLimitBytesPerSec: 1 << 20})
	var buf bytes.Buffer

	w := NewRateLimitedWriter(context.Background(), &buf, rc)
	n, err := w.Write([]byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, "hello", buf.String())
}

func TestRateLimitedReader(t *testing.T) {
	rc := NewController(Config{IOLimitBytesPerSec: 1 << 20})
	r := NewRateLimitedReader(context.Background(), bytes.NewReader([]byte("world")), rc)

	p := make([]byte, 5)
	n, err := r.Read(p)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, "world", string(p))
}
