package ssfs

// readInode decodes inode `i`, failing with ErrInvalidInode if `i` is out of
// the addressable range [0, NumInodeBlocks*InodesPerBlock).
func (v *Volume) readInode(i uint32) (Inode, *Error) {
	blockIndex, offset, ok := inodeLocation(i, v.numInodeBlocks)
	if !ok {
		return Inode{}, NewError(ErrInvalidInode)
	}

	block, err := v.readBlock(blockIndex)
	if err != nil {
		return Inode{}, err
	}
	return readInodeFromBlock(block, offset)
}

// writeInode does a read-modify-write of the owning inode block, preserving
// the other 31 inodes packed alongside it (spec.md §4.2).
func (v *Volume) writeInode(i uint32, inode Inode) *Error {
	blockIndex, offset, ok := inodeLocation(i, v.numInodeBlocks)
	if !ok {
		return NewError(ErrInvalidInode)
	}

	block, err := v.readBlock(blockIndex)
	if err != nil {
		return err
	}
	if err := writeInodeIntoBlock(block, offset, inode); err != nil {
		return err
	}
	return v.writeBlock(blockIndex, block)
}

// validInode reads inode `i` and fails with ErrInvalidInode if it's either
// out of range or currently free.
func (v *Volume) validInode(i uint32) (Inode, *Error) {
	inode, err := v.readInode(i)
	if err != nil {
		return Inode{}, err
	}
	if !inode.Valid {
		return Inode{}, NewError(ErrInvalidInode)
	}
	return inode, nil
}
