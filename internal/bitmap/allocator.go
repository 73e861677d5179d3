// Package bitmap implements the in-memory block-usage tracker for an SSFS
// volume.
//
// The bitmap is never persisted; it's reconstructed at mount time by
// replaying every reachable pointer in every valid inode's tree.
package bitmap

import (
	"fmt"

	"github.com/boljen/go-bitmap"
)

// Allocator tracks which blocks in [0, TotalBlocks) are in use and hands out
// the smallest available index at or above FirstDataBlock.
//
// Allocation order is strictly ascending by index: the k-th call to Allocate
// between any two snapshots of the bitmap returns the k-th smallest available
// index. This is load-bearing for callers that test allocation determinism.
type Allocator struct {
	bits           bitmap.Bitmap
	TotalBlocks    uint32
	FirstDataBlock uint32
}

// New creates an Allocator over `totalBlocks` blocks, with blocks
// [0, firstDataBlock) pre-reserved (the superblock and inode blocks).
func New(totalBlocks, firstDataBlock uint32) *Allocator {
	a := &Allocator{
		bits:           bitmap.New(int(totalBlocks)),
		TotalBlocks:    totalBlocks,
		FirstDataBlock: firstDataBlock,
	}
	for i := uint32(0); i < firstDataBlock && i < totalBlocks; i++ {
		a.bits.Set(int(i), true)
	}
	return a
}

// InUse reports whether the given block is currently marked allocated.
func (a *Allocator) InUse(index uint32) bool {
	if index >= a.TotalBlocks {
		return false
	}
	return a.bits.Get(int(index))
}

// Reserve marks a block as used without searching for it. Used while
// rebuilding the bitmap during mount.
func (a *Allocator) Reserve(index uint32) {
	if index < a.TotalBlocks {
		a.bits.Set(int(index), true)
	}
}

// Allocate returns the smallest free index at or above FirstDataBlock,
// marking it used. It fails with ErrOutOfSpace-shaped behavior by returning
// ok=false when no block is available; callers translate that into the
// appropriate *ssfs.Error.
func (a *Allocator) Allocate() (index uint32, ok bool) {
	for i := a.FirstDataBlock; i < a.TotalBlocks; i++ {
		if !a.bits.Get(int(i)) {
			a.bits.Set(int(i), true)
			return i, true
		}
	}
	return 0, false
}

// Free clears the in-use flag for `index`. Index 0 (the "none" sentinel) and
// anything outside the allocatable range [FirstDataBlock, TotalBlocks) are
// silently ignored.
func (a *Allocator) Free(index uint32) {
	if index == 0 {
		return
	}
	if index < a.FirstDataBlock || index >= a.TotalBlocks {
		return
	}
	a.bits.Set(int(index), false)
}

// Snapshot returns a copy of the current in-use flags, one bool per block.
// Intended for tests comparing bitmap state before/after a remount.
func (a *Allocator) Snapshot() []bool {
	out := make([]bool, a.TotalBlocks)
	for i := uint32(0); i < a.TotalBlocks; i++ {
		out[i] = a.bits.Get(int(i))
	}
	return out
}

func (a *Allocator) String() string {
	return fmt.Sprintf("Allocator(total=%d, firstData=%d)", a.TotalBlocks, a.FirstDataBlock)
}
