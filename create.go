package ssfs

// Create allocates the first free inode slot (valid == 0, smallest number
// first) and marks it valid with size 0. Fails with ErrOutOfInodes if none
// remain.
func (v *Volume) Create() (uint32, *Error) {
	if err := v.requireMounted(); err != nil {
		return 0, err
	}

	total := v.numInodeBlocks * InodesPerBlock
	for i := uint32(0); i < total; i++ {
		inode, err := v.readInode(i)
		if err != nil {
			return 0, err
		}
		if !inode.Valid {
			inode.Valid = true
			inode.Size = 0
			inode.Direct = [4]uint32{}
			inode.Indirect = 0
			inode.DoubleIndirect = 0
			if err := v.writeInode(i, inode); err != nil {
				return 0, err
			}
			return i, nil
		}
	}

	return 0, NewError(ErrOutOfInodes)
}
