package ssfs

// Write writes buf to inode `i` starting at `offset`, growing the file as
// needed. Sizes only ever grow over an inode's lifetime; Write never
// truncates (spec.md §8 property 3).
//
// If `offset` is past the current end of the file, the gap is zero-filled
// first (allocating whatever blocks fall in that range) and the inode's size
// becomes `offset` before any of buf is written.
//
// On a partial failure (typically ErrOutOfSpace), the inode's size is
// updated to reflect exactly the bytes that made it to disk and the inode is
// written back before returning; the return value is the short count of buf
// bytes actually persisted. If none of buf was persisted, the error itself
// is returned instead of a zero count, per spec.md §7 — the short-count
// convention exists specifically so callers can distinguish "wrote
// everything", "wrote some", and "wrote nothing".
func (v *Volume) Write(i uint32, buf []byte, offset int64) (int, *Error) {
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

	mapper := newOffsetMapper(v)

	if int64(inode.Size) < offset {
		reached, zfErr := v.zeroFillGap(mapper, &inode, offset)
		inode.Size = uint32(reached)
		if zfErr != nil {
			// Nothing from buf has been written yet: this is the "zero
			// bytes persisted" case, so the raw error propagates. The
			// inode is still written back so the partially zero-filled
			// prefix of the gap is not lost.
			if writeInodeErr := v.writeInode(i, inode); writeInodeErr != nil && zfErr == nil {
				zfErr = writeInodeErr
			}
			return 0, zfErr
		}
	}

	written, writeErr := v.writeSpan(mapper, &inode, buf, offset)
	if written > 0 {
		newSize := offset + int64(written)
		if newSize > int64(inode.Size) {
			inode.Size = uint32(newSize)
		}
	}

	if writeInodeErr := v.writeInode(i, inode); writeInodeErr != nil {
		if writeErr == nil {
			writeErr = writeInodeErr
		}
	}

	if writeErr != nil && written == 0 {
		return 0, writeErr
	}
	return written, nil
}

// zeroFillGap covers [inode.Size, target) with zero bytes, allocating
// whatever blocks that range touches. A block freshly allocated for the gap
// is already zero on disk and need not be written again; only the tail of a
// pre-existing last block needs an explicit zeroing write. It returns the
// offset actually reached, which is `target` on success or the point of
// failure otherwise.
func (v *Volume) zeroFillGap(mapper *offsetMapper, inode *Inode, target int64) (int64, *Error) {
	cur := int64(inode.Size)
	for cur < target {
		blockOffset := cur % BlockSize
		chunk := BlockSize - blockOffset
		if chunk > target-cur {
			chunk = target - cur
		}

		blockIndex, fresh, err := mapper.Map(inode, cur, true)
		if err != nil {
			return cur, err
		}
		if !fresh {
			block, readErr := v.readBlock(blockIndex)
			if readErr != nil {
				return cur, readErr
			}
			for j := blockOffset; j < blockOffset+chunk; j++ {
				block[j] = 0
			}
			if writeErr := v.writeBlock(blockIndex, block); writeErr != nil {
				return cur, writeErr
			}
		}

		cur += chunk
	}
	return cur, nil
}

// writeSpan writes buf into the file starting at offset, returning the
// number of bytes actually persisted before any error.
func (v *Volume) writeSpan(mapper *offsetMapper, inode *Inode, buf []byte, offset int64) (int, *Error) {
	var written int64
	total := int64(len(buf))

	for written < total {
		curOffset := offset + written
		blockOffset := curOffset % BlockSize
		chunk := BlockSize - blockOffset
		if chunk > total-written {
			chunk = total - written
		}

		blockIndex, fresh, err := mapper.Map(inode, curOffset, true)
		if err != nil {
			return int(written), err
		}

		var block []byte
		if fresh {
			block = make([]byte, BlockSize)
		} else {
			block, err = v.readBlock(blockIndex)
			if err != nil {
				return int(written), err
			}
		}

		copy(block[blockOffset:blockOffset+chunk], buf[written:written+chunk])
		if err := v.writeBlock(blockIndex, block); err != nil {
			return int(written), err
		}

		written += chunk
	}

	return int(written), nil
}
