package ssfs_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tinyfs/ssfs"
	"github.com/tinyfs/ssfs/vdisk"
)

func mustMount(t *testing.T, totalBlocks, inodes uint32) *ssfs.Volume {
	device := vdisk.NewMemory(totalBlocks)
	require.Nil(t, ssfs.Format(device, inodes))

	v := ssfs.NewVolume(device)
	require.Nil(t, v.Mount())
	return v
}

func TestFormatRejectsTooFewBlocks(t *testing.T) {
	device := vdisk.NewMemory(1)
	err := ssfs.Format(device, 8)
	require.NotNil(t, err)
	assert.Equal(t, ssfs.ErrOutOfSpace, err.Code)
}

func TestMountUnmountRoundTrip(t *testing.T) {
	v := mustMount(t, 64, 16)
	assert.True(t, v.IsMounted())
	require.Nil(t, v.Unmount())
	assert.False(t, v.IsMounted())
}

func TestDoubleMountFails(t *testing.T) {
	device := vdisk.NewMemory(64)
	require.Nil(t, ssfs.Format(device, 16))

	v := ssfs.NewVolume(device)
	require.Nil(t, v.Mount())
	err := v.Mount()
	require.NotNil(t, err)
	assert.Equal(t, ssfs.ErrDiskAlreadyMounted, err.Code)
}

func TestOperationsRequireMount(t *testing.T) {
	device := vdisk.NewMemory(64)
	require.Nil(t, ssfs.Format(device, 16))
	v := ssfs.NewVolume(device)

	_, err := v.Create()
	require.NotNil(t, err)
	assert.Equal(t, ssfs.ErrDiskNotMounted, err.Code)
}

func TestCreateStatWriteReadDelete(t *testing.T) {
	v := mustMount(t, 64, 16)
	defer v.Unmount()

	i, err := v.Create()
	require.Nil(t, err)

	size, statErr := v.Stat(i)
	require.Nil(t, statErr)
	assert.Equal(t, uint32(0), size)

	payload := []byte("hello, ssfs")
	n, writeErr := v.Write(i, payload, 0)
	require.Nil(t, writeErr)
	assert.Equal(t, len(payload), n)

	size, statErr = v.Stat(i)
	require.Nil(t, statErr)
	assert.Equal(t, uint32(len(payload)), size)

	buf := make([]byte, len(payload))
	read, readErr := v.Read(i, buf, 0)
	require.Nil(t, readErr)
	assert.Equal(t, len(payload), read)
	assert.Equal(t, payload, buf)

	require.Nil(t, v.Delete(i))
	_, statErr = v.Stat(i)
	require.NotNil(t, statErr)
	assert.Equal(t, ssfs.ErrInvalidInode, statErr.Code)
}

func TestWritePastEndZeroFillsGap(t *testing.T) {
	v := mustMount(t, 64, 16)
	defer v.Unmount()

	i, err := v.Create()
	require.Nil(t, err)

	_, writeErr := v.Write(i, []byte("tail"), 2000)
	require.Nil(t, writeErr)

	size, statErr := v.Stat(i)
	require.Nil(t, statErr)
	assert.Equal(t, uint32(2004), size)

	buf := make([]byte, 2004)
	n, readErr := v.Read(i, buf, 0)
	require.Nil(t, readErr)
	assert.Equal(t, 2004, n)

	assert.True(t, bytes.Equal(buf[:2000], make([]byte, 2000)), "gap must read back as zero")
	assert.Equal(t, "tail", string(buf[2000:2004]))
}

func TestReadPastEndOfFileReturnsZero(t *testing.T) {
	v := mustMount(t, 64, 16)
	defer v.Unmount()

	i, err := v.Create()
	require.Nil(t, err)
	_, writeErr := v.Write(i, []byte("abc"), 0)
	require.Nil(t, writeErr)

	buf := make([]byte, 10)
	n, readErr := v.Read(i, buf, 3)
	require.Nil(t, readErr)
	assert.Equal(t, 0, n)
}

func TestWriteNeverShrinksSize(t *testing.T) {
	v := mustMount(t, 64, 16)
	defer v.Unmount()

	i, err := v.Create()
	require.Nil(t, err)

	_, writeErr := v.Write(i, []byte("0123456789"), 0)
	require.Nil(t, writeErr)
	sizeAfterFirst, _ := v.Stat(i)

	_, writeErr = v.Write(i, []byte("x"), 2)
	require.Nil(t, writeErr)
	sizeAfterSecond, _ := v.Stat(i)

	assert.Equal(t, sizeAfterFirst, sizeAfterSecond)
}

func TestDeleteFreesBlocksForReuse(t *testing.T) {
	v := mustMount(t, 64, 16)
	defer v.Unmount()

	i, err := v.Create()
	require.Nil(t, err)
	_, writeErr := v.Write(i, bytes.Repeat([]byte{1}, 3*1024), 0)
	require.Nil(t, writeErr)

	require.Nil(t, v.Delete(i))

	j, err := v.Create()
	require.Nil(t, err)
	_, writeErr = v.Write(j, bytes.Repeat([]byte{2}, 3*1024), 0)
	require.Nil(t, writeErr, "blocks freed by Delete must be available again")
}

func TestCreateReusesSmallestFreeSlot(t *testing.T) {
	v := mustMount(t, 64, 16)
	defer v.Unmount()

	a, err := v.Create()
	require.Nil(t, err)
	b, err := v.Create()
	require.Nil(t, err)
	require.Nil(t, v.Delete(a))

	c, err := v.Create()
	require.Nil(t, err)
	assert.Equal(t, a, c, "Create must reuse the smallest free inode slot")
	assert.NotEqual(t, b, c)
}

func TestOutOfInodes(t *testing.T) {
	// 32 inodes exactly fills one inode block (InodesPerBlock == 32); no
	// rounding-up slack to trip over.
	v := mustMount(t, 256, 32)
	defer v.Unmount()

	for n := 0; n < 32; n++ {
		_, err := v.Create()
		require.Nil(t, err)
	}

	_, err := v.Create()
	require.NotNil(t, err)
	assert.Equal(t, ssfs.ErrOutOfInodes, err.Code)
}

func TestOutOfSpaceDuringWriteLeavesConsistentState(t *testing.T) {
	v := mustMount(t, 10, 4)
	defer v.Unmount()

	i, err := v.Create()
	require.Nil(t, err)

	big := bytes.Repeat([]byte{7}, 64*1024)
	// 8 data blocks follow the single inode block: 4 direct leaves, then one
	// indirect table and 3 leaves reached through it. A write that persisted
	// some bytes reports the short count, not an error.
	n, writeErr := v.Write(i, big, 0)
	require.Nil(t, writeErr)
	assert.Equal(t, 7*1024, n)

	size, statErr := v.Stat(i)
	require.Nil(t, statErr)
	assert.Equal(t, uint32(n), size, "size must reflect exactly what was persisted on a short write")

	require.Nil(t, v.Fsck())
}

func TestPersistenceAcrossRemount(t *testing.T) {
	device := vdisk.NewMemory(64)
	require.Nil(t, ssfs.Format(device, 16))

	v := ssfs.NewVolume(device)
	require.Nil(t, v.Mount())

	i, err := v.Create()
	require.Nil(t, err)
	_, writeErr := v.Write(i, []byte("persisted"), 0)
	require.Nil(t, writeErr)
	require.Nil(t, v.Unmount())

	v2 := ssfs.NewVolume(device)
	require.Nil(t, v2.Mount())
	defer v2.Unmount()

	buf := make([]byte, len("persisted"))
	n, readErr := v2.Read(i, buf, 0)
	require.Nil(t, readErr)
	assert.Equal(t, "persisted", string(buf[:n]))
}

func TestFormatIsIdempotentOnInodeRegion(t *testing.T) {
	device := vdisk.NewMemory(64)
	require.Nil(t, ssfs.Format(device, 16))

	v := ssfs.NewVolume(device)
	require.Nil(t, v.Mount())
	i, err := v.Create()
	require.Nil(t, err)
	require.Nil(t, v.Unmount())

	require.Nil(t, ssfs.Format(device, 16))

	v2 := ssfs.NewVolume(device)
	require.Nil(t, v2.Mount())
	defer v2.Unmount()

	_, statErr := v2.Stat(i)
	require.NotNil(t, statErr, "reformatting must wipe the inode table")
}

func TestFsckCleanOnFreshVolume(t *testing.T) {
	v := mustMount(t, 64, 16)
	defer v.Unmount()

	i, err := v.Create()
	require.Nil(t, err)
	_, writeErr := v.Write(i, bytes.Repeat([]byte{9}, 300*1024), 0)
	require.Nil(t, writeErr)

	assert.Nil(t, v.Fsck())
}

func TestDeterministicAllocationOrder(t *testing.T) {
	d1 := vdisk.NewMemory(64)
	d2 := vdisk.NewMemory(64)
	require.Nil(t, ssfs.Format(d1, 16))
	require.Nil(t, ssfs.Format(d2, 16))
	v1 := ssfs.NewVolume(d1)
	v2 := ssfs.NewVolume(d2)
	require.Nil(t, v1.Mount())
	require.Nil(t, v2.Mount())

	i1, _ := v1.Create()
	i2, _ := v2.Create()
	require.Equal(t, i1, i2)

	_, err1 := v1.Write(i1, bytes.Repeat([]byte{3}, 10*1024), 0)
	_, err2 := v2.Write(i2, bytes.Repeat([]byte{3}, 10*1024), 0)
	require.Nil(t, err1)
	require.Nil(t, err2)

	size1, _ := v1.Stat(i1)
	size2, _ := v2.Stat(i2)
	assert.Equal(t, size1, size2)

	require.Nil(t, v1.Unmount())
	require.Nil(t, v2.Unmount())

	// Identical inode records and pointer tables on both images mean every
	// block was allocated at the same index.
	buf1 := make([]byte, ssfs.BlockSize)
	buf2 := make([]byte, ssfs.BlockSize)
	for b := uint32(0); b < 64; b++ {
		require.NoError(t, d1.ReadBlock(b, buf1))
		require.NoError(t, d2.ReadBlock(b, buf2))
		assert.Equal(t, buf1, buf2, "two identically-formatted volumes given the same operations must allocate identically (block %d)", b)
	}
}
