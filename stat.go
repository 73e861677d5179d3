package ssfs

// Stat returns the size, in bytes, of inode `i`. Fails with ErrInvalidInode
// if the inode doesn't exist or is free.
func (v *Volume) Stat(i uint32) (uint32, *Error) {
	if err := v.requireMounted(); err != nil {
		return 0, err
	}

	inode, err := v.validInode(i)
	if err != nil {
		return 0, err
	}
	return inode.Size, nil
}
