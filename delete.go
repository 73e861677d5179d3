package ssfs

// Delete releases every block reachable from inode `i`'s pointer tree back to
// the allocator and clears the inode. The allocator's bitmap is authoritative
// afterward; SSFS keeps no on-disk free list (spec.md §4.5).
func (v *Volume) Delete(i uint32) *Error {
	if err := v.requireMounted(); err != nil {
		return err
	}

	inode, err := v.validInode(i)
	if err != nil {
		return err
	}

	if err := v.freeInodeTree(inode); err != nil {
		return err
	}

	return v.writeInode(i, Inode{})
}

// freeInodeTree walks inode's direct/indirect/double-indirect pointers,
// freeing every block it finds (data blocks and the indirect tables
// themselves), direct-first then indirect then double-indirect, matching the
// walk order spec.md §4.5 describes.
func (v *Volume) freeInodeTree(inode Inode) *Error {
	for _, d := range inode.Direct {
		v.alloc.Free(d)
	}

	if inode.Indirect != 0 {
		block, err := v.readBlock(inode.Indirect)
		if err != nil {
			return err
		}
		for _, leaf := range decodePointerBlock(block) {
			v.alloc.Free(leaf)
		}
		v.alloc.Free(inode.Indirect)
	}

	if inode.DoubleIndirect != 0 {
		diBlock, err := v.readBlock(inode.DoubleIndirect)
		if err != nil {
			return err
		}
		for _, indirectPtr := range decodePointerBlock(diBlock) {
			if indirectPtr == 0 {
				continue
			}
			block, err := v.readBlock(indirectPtr)
			if err != nil {
				return err
			}
			for _, leaf := range decodePointerBlock(block) {
				v.alloc.Free(leaf)
			}
			v.alloc.Free(indirectPtr)
		}
		v.alloc.Free(inode.DoubleIndirect)
	}

	return nil
}
