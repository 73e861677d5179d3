package ssfs

import "golang.org/x/exp/slices"

// maxAddressableBlocks is 4 direct + 256 single-indirect + 256*256
// double-indirect block slots (spec.md §3).
const maxAddressableBlocks = 4 + PointersPerBlock + PointersPerBlock*PointersPerBlock

// offsetMapper resolves file-relative byte offsets to physical block indices
// for one inode, allocating intermediate indirect blocks and the leaf data
// block on demand. It tracks every block it allocates during a single Map()
// call so a later failure in the same call can roll the bitmap back
// (spec.md §4.4's ordering contract), grounded on the block-range bookkeeping
// in drivers/common/blockcache.go and the slice helpers
// drivers/common/basedriver/driver.go pulls in from golang.org/x/exp/slices.
type offsetMapper struct {
	v        *Volume
	reserved []uint32
}

func newOffsetMapper(v *Volume) *offsetMapper {
	return &offsetMapper{v: v}
}

func (m *offsetMapper) allocateBlock() (uint32, *Error) {
	index, err := m.v.allocateZeroBlock()
	if err != nil {
		return 0, err
	}
	m.reserved = append(m.reserved, index)
	return index, nil
}

// rollback frees every block this mapper allocated during the call, in
// reverse order, and clears its bookkeeping. It does NOT undo any inode
// pointer field already set in memory — per spec.md §4.4 that propagates to
// the caller as an accepted risk.
func (m *offsetMapper) rollback() {
	reversed := slices.Clone(m.reserved)
	slices.Reverse(reversed)
	for _, index := range reversed {
		m.v.alloc.Free(index)
	}
	m.reserved = nil
}

// Map resolves `offset` within `inode` to a physical block index.
//
//   - If the slot is unallocated and `allocate` is false, it returns
//     (0, false, nil): a hole.
//   - If the slot is unallocated and `allocate` is true, it allocates
//     (zero-filling) the data block, and the indirect/double-indirect blocks
//     needed to reach it, mutating `inode`'s pointer fields in place, and
//     reports fresh=true so the caller knows the block's contents are known
//     to be zero (no read-modify-write needed).
//   - Fails with ErrInvalidOffset for a negative offset or one beyond the
//     addressable range.
func (m *offsetMapper) Map(inode *Inode, offset int64, allocate bool) (index uint32, fresh bool, err *Error) {
	// Blocks allocated by earlier calls are already linked into the tree;
	// rollback covers only this call's allocations.
	m.reserved = nil

	if offset < 0 {
		return 0, false, NewError(ErrInvalidOffset)
	}

	bi := uint64(offset) / BlockSize
	if bi >= uint64(maxAddressableBlocks) {
		return 0, false, NewError(ErrInvalidOffset)
	}

	if bi < 4 {
		return m.resolveSlot(&inode.Direct[bi], allocate)
	}
	bi -= 4

	if bi < PointersPerBlock {
		return m.mapSingleIndirect(&inode.Indirect, uint32(bi), allocate)
	}
	bi -= PointersPerBlock

	j := uint32(bi) / PointersPerBlock
	k := uint32(bi) % PointersPerBlock
	return m.mapDoubleIndirect(&inode.DoubleIndirect, j, k, allocate)
}

// resolveSlot implements the hole/allocate rule for a single pointer slot
// (spec.md §4.4 step 2): return the existing pointer, a hole, or a freshly
// allocated block written into *slot.
func (m *offsetMapper) resolveSlot(slot *uint32, allocate bool) (uint32, bool, *Error) {
	if *slot != 0 {
		return *slot, false, nil
	}
	if !allocate {
		return 0, false, nil
	}

	index, err := m.allocateBlock()
	if err != nil {
		return 0, false, err
	}
	*slot = index
	return index, true, nil
}

// mapSingleIndirect resolves slot `k` of the indirect table referenced by
// *indirectPtr, allocating the table itself if needed.
func (m *offsetMapper) mapSingleIndirect(indirectPtr *uint32, k uint32, allocate bool) (uint32, bool, *Error) {
	if *indirectPtr == 0 {
		if !allocate {
			return 0, false, nil
		}
		index, err := m.allocateBlock()
		if err != nil {
			return 0, false, err
		}
		*indirectPtr = index
	}

	block, err := m.v.readBlock(*indirectPtr)
	if err != nil {
		m.rollback()
		return 0, false, err
	}
	pointers := decodePointerBlock(block)

	leaf := pointers[k]
	if leaf != 0 {
		return leaf, false, nil
	}
	if !allocate {
		return 0, false, nil
	}

	leafIndex, err := m.allocateBlock()
	if err != nil {
		m.rollback()
		return 0, false, err
	}
	pointers[k] = leafIndex
	if err := m.v.writeBlock(*indirectPtr, encodePointerBlock(pointers)); err != nil {
		m.rollback()
		return 0, false, err
	}
	return leafIndex, true, nil
}

// mapDoubleIndirect resolves entry [j][k] of the double-indirect tree rooted
// at *doublePtr, allocating the double-indirect block, the j-th indirect
// block, and the leaf data block as needed, from the leaf outward as
// spec.md §4.4 step 4 requires (each modified indirect block is persisted
// before its parent pointer is committed).
func (m *offsetMapper) mapDoubleIndirect(doublePtr *uint32, j, k uint32, allocate bool) (uint32, bool, *Error) {
	if *doublePtr == 0 {
		if !allocate {
			return 0, false, nil
		}
		index, err := m.allocateBlock()
		if err != nil {
			return 0, false, err
		}
		*doublePtr = index
	}

	diBlock, err := m.v.readBlock(*doublePtr)
	if err != nil {
		m.rollback()
		return 0, false, err
	}
	diPointers := decodePointerBlock(diBlock)

	indirectIndex := diPointers[j]
	if indirectIndex == 0 {
		if !allocate {
			return 0, false, nil
		}
		indirectIndex, err = m.allocateBlock()
		if err != nil {
			m.rollback()
			return 0, false, err
		}
	}

	indirectBlock, err := m.v.readBlock(indirectIndex)
	if err != nil {
		m.rollback()
		return 0, false, err
	}
	leafPointers := decodePointerBlock(indirectBlock)

	leaf := leafPointers[k]
	if leaf != 0 {
		return leaf, false, nil
	}
	if !allocate {
		return 0, false, nil
	}

	leafIndex, err := m.allocateBlock()
	if err != nil {
		m.rollback()
		return 0, false, err
	}

	// Persist the leaf-level indirect block before committing its pointer
	// into the double-indirect block, and the double-indirect block before
	// returning: each level is written child-first.
	leafPointers[k] = leafIndex
	if err := m.v.writeBlock(indirectIndex, encodePointerBlock(leafPointers)); err != nil {
		m.rollback()
		return 0, false, err
	}

	if diPointers[j] != indirectIndex {
		diPointers[j] = indirectIndex
		if err := m.v.writeBlock(*doublePtr, encodePointerBlock(diPointers)); err != nil {
			m.rollback()
			return 0, false, err
		}
	}

	return leafIndex, true, nil
}
