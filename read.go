package ssfs

// Read copies up to len(buf) bytes from inode `i` starting at `offset` into
// buf, returning the number of bytes actually copied.
//
// The effective length is clamped to what's actually in the file
// (spec.md §4.5): reading past EOF returns 0 with no error. Offsets that
// land in a hole (an unallocated pointer slot) read back as zero bytes
// without reading a data block (an indirect table on the path to the slot is
// still read), grounded on the block-stride copy
// loop in drivers/common/basicstream.go's ReadAt.
func (v *Volume) Read(i uint32, buf []byte, offset int64) (int, *Error) {
	if err := v.requireMounted(); err != nil {
		return 0, err
	}
	if offset < 0 {
		return 0, NewError(ErrInvalidOffset)
	}

	inode, err := v.validInode(i)
	if err != nil {
		return 0, err
	}

	remaining := int64(inode.Size) - offset
	if remaining <= 0 || len(buf) == 0 {
		return 0, nil
	}
	effective := int64(len(buf))
	if remaining < effective {
		effective = remaining
	}

	mapper := newOffsetMapper(v)
	var copied int64
	for copied < effective {
		curOffset := offset + copied
		blockOffset := curOffset % BlockSize
		chunk := BlockSize - blockOffset
		if chunk > effective-copied {
			chunk = effective - copied
		}

		blockIndex, _, mapErr := mapper.Map(&inode, curOffset, false)
		if mapErr != nil {
			if copied > 0 {
				return int(copied), nil
			}
			return 0, mapErr
		}

		dst := buf[copied : copied+chunk]
		if blockIndex == 0 {
			for j := range dst {
				dst[j] = 0
			}
		} else {
			block, readErr := v.readBlock(blockIndex)
			if readErr != nil {
				if copied > 0 {
					return int(copied), nil
				}
				return 0, readErr
			}
			copy(dst, block[blockOffset:blockOffset+chunk])
		}

		copied += chunk
	}

	return int(copied), nil
}
