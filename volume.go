// Package ssfs implements the on-disk allocation and block-addressing engine
// for SSFS: a flat namespace of files identified by integer inode numbers,
// backed by a single block-structured image and a per-inode tree of direct,
// single-indirect, and double-indirect block pointers.
//
// A Volume is the caller-owned handle for one mounted (or not-yet-mounted)
// image; unlike the teacher driver this package is modeled on, no state is
// kept at package scope, so independent Volumes can be used concurrently by
// independent callers (though a single Volume, like the teacher's drivers,
// assumes one caller at a time).
package ssfs

import (
	"github.com/tinyfs/ssfs/internal/bitmap"
)

// Volume is the mount-state handle described in spec.md §4.6/§5: it owns the
// backing BlockDevice, the in-memory block bitmap, and whether it is
// currently mounted. All file operations are methods on *Volume.
type Volume struct {
	device  BlockDevice
	alloc   *bitmap.Allocator
	mounted bool

	numBlocks      uint32
	numInodeBlocks uint32
}

// NewVolume creates an unmounted handle around a storage backend. The backend
// must already be open; Close() is called by Unmount.
func NewVolume(device BlockDevice) *Volume {
	return &Volume{device: device}
}

// IsMounted reports whether file operations may currently be performed.
func (v *Volume) IsMounted() bool {
	return v.mounted
}

func (v *Volume) requireMounted() *Error {
	if !v.mounted {
		return NewError(ErrDiskNotMounted)
	}
	return nil
}

func (v *Volume) requireUnmounted() *Error {
	if v.mounted {
		return NewError(ErrDiskAlreadyMounted)
	}
	return nil
}

func (v *Volume) readBlock(index uint32) ([]byte, *Error) {
	buf := make([]byte, BlockSize)
	if err := v.device.ReadBlock(index, buf); err != nil {
		return nil, wrapBackendError(err)
	}
	return buf, nil
}

func (v *Volume) writeBlock(index uint32, data []byte) *Error {
	if err := v.device.WriteBlock(index, data); err != nil {
		return wrapBackendError(err)
	}
	return nil
}

// allocateZeroBlock allocates and writes an all-zero block, then returns its index.
// Used whenever a new data or indirect block is linked into a pointer tree:
// §3 requires freshly allocated blocks be zero-filled on disk first.
func (v *Volume) allocateZeroBlock() (uint32, *Error) {
	index, ok := v.alloc.Allocate()
	if !ok {
		return 0, NewError(ErrOutOfSpace)
	}
	zero := make([]byte, BlockSize)
	if err := v.writeBlock(index, zero); err != nil {
		v.alloc.Free(index)
		return 0, err
	}
	return index, nil
}

// ceilDiv divides rounding up; used throughout for block/inode-block counts.
func ceilDiv(a, b uint32) uint32 {
	return (a + b - 1) / b
}
