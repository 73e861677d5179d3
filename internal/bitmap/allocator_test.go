package bitmap_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tinyfs/ssfs/internal/bitmap"
)

func TestNewReservesLeadingBlocks(t *testing.T) {
	a := bitmap.New(10, 3)
	assert.True(t, a.InUse(0))
	assert.True(t, a.InUse(1))
	assert.True(t, a.InUse(2))
	assert.False(t, a.InUse(3))
}

func TestAllocateIsAscendingFirstFit(t *testing.T) {
	a := bitmap.New(10, 3)

	first, ok := a.Allocate()
	require.True(t, ok)
	assert.Equal(t, uint32(3), first)

	second, ok := a.Allocate()
	require.True(t, ok)
	assert.Equal(t, uint32(4), second)

	a.Free(first)
	third, ok := a.Allocate()
	require.True(t, ok)
	assert.Equal(t, uint32(3), third, "a freed low index must be reused before a higher unused one")
}

func TestAllocateExhaustion(t *testing.T) {
	a := bitmap.New(4, 2)
	_, ok := a.Allocate()
	require.True(t, ok)
	_, ok = a.Allocate()
	require.True(t, ok)

	_, ok = a.Allocate()
	assert.False(t, ok)
}

func TestFreeIgnoresSentinelAndOutOfRange(t *testing.T) {
	a := bitmap.New(10, 3)
	a.Free(0)
	a.Free(1) // below FirstDataBlock, but Free only guards against it, shouldn't panic
	a.Free(100)
	assert.True(t, a.InUse(1), "Free must not clear a pre-reserved metadata block")
}

func TestSnapshotReflectsCurrentState(t *testing.T) {
	a := bitmap.New(6, 2)
	index, ok := a.Allocate()
	require.True(t, ok)

	snap := a.Snapshot()
	require.Len(t, snap, 6)
	assert.True(t, snap[index])
	assert.False(t, snap[index+1])
}
