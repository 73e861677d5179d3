package ssfs

import (
	"github.com/tinyfs/ssfs/internal/bitmap"
)

// Mount opens the image's superblock, verifies it, and reconstructs the
// in-memory block bitmap by scanning every inode and walking its pointer
// tree (spec.md §4.6). It requires the Volume not already be mounted.
func (v *Volume) Mount() *Error {
	if err := v.requireUnmounted(); err != nil {
		return err
	}

	block0, err := v.readBlock(0)
	if err != nil {
		return err
	}

	sb, decErr := decodeSuperblock(block0)
	if decErr != nil {
		return decErr
	}

	v.numBlocks = sb.NumBlocks
	v.numInodeBlocks = sb.NumInodeBlocks
	v.alloc = bitmap.New(sb.NumBlocks, sb.NumInodeBlocks+1)

	for i := uint32(0); i < sb.NumInodeBlocks*InodesPerBlock; i++ {
		inode, err := v.readInode(i)
		if err != nil {
			return err
		}
		if !inode.Valid {
			continue
		}
		if err := v.reserveInodeTree(inode); err != nil {
			return err
		}
	}

	v.mounted = true
	return nil
}

// reserveInodeTree marks every block reachable from a valid inode's pointer
// tree as in-use in the freshly built bitmap, per spec.md §4.6.
func (v *Volume) reserveInodeTree(inode Inode) *Error {
	for _, d := range inode.Direct {
		if d != 0 {
			v.alloc.Reserve(d)
		}
	}

	if inode.Indirect != 0 {
		v.alloc.Reserve(inode.Indirect)
		block, err := v.readBlock(inode.Indirect)
		if err != nil {
			return err
		}
		for _, p := range decodePointerBlock(block) {
			if p != 0 {
				v.alloc.Reserve(p)
			}
		}
	}

	if inode.DoubleIndirect != 0 {
		v.alloc.Reserve(inode.DoubleIndirect)
		diBlock, err := v.readBlock(inode.DoubleIndirect)
		if err != nil {
			return err
		}
		for _, indirectPtr := range decodePointerBlock(diBlock) {
			if indirectPtr == 0 {
				continue
			}
			v.alloc.Reserve(indirectPtr)
			block, err := v.readBlock(indirectPtr)
			if err != nil {
				return err
			}
			for _, p := range decodePointerBlock(block) {
				if p != 0 {
					v.alloc.Reserve(p)
				}
			}
		}
	}

	return nil
}

// Unmount flushes pending writes and releases the Volume's in-memory state.
// The backend is closed regardless of whether Sync fails; the sync error, if
// any, is still returned to the caller.
func (v *Volume) Unmount() *Error {
	if err := v.requireMounted(); err != nil {
		return err
	}

	syncErr := v.device.Sync()

	v.alloc = nil
	v.mounted = false
	closeErr := v.device.Close()

	if syncErr != nil {
		return wrapBackendError(syncErr)
	}
	if closeErr != nil {
		return wrapBackendError(closeErr)
	}
	return nil
}
