package ssfs

import (
	"github.com/noxer/bytewriter"
)

// Format writes a fresh superblock and zeroed inode blocks to `device`,
// coercing `inodes` up to at least 1. It does not require (or perform) a
// mount, and it does not touch any data blocks beyond the inode region: an
// existing image's data blocks are left as-is (spec.md §4.6).
//
// The whole superblock-plus-inode-blocks region is laid out into one
// pre-sized buffer through a single io.Writer pass before any block is
// written out, the same sequential-layout idiom
// file_systems/unixv1/format.go uses bytewriter for.
func Format(device BlockDevice, inodes uint32) *Error {
	if inodes == 0 {
		inodes = 1
	}
	numInodeBlocks := ceilDiv(inodes, InodesPerBlock)

	totalBlocks := device.TotalBlocks()
	if totalBlocks <= numInodeBlocks+1 {
		return NewErrorWithMessage(
			ErrOutOfSpace,
			"image has no room for a data block after the superblock and inode blocks",
		)
	}

	sb := Superblock{
		NumBlocks:      totalBlocks,
		NumInodeBlocks: numInodeBlocks,
		BlockSize:      BlockSize,
	}

	region := make([]byte, BlockSize*(1+numInodeBlocks))
	writer := bytewriter.New(region)
	if _, err := writer.Write(encodeSuperblock(sb)); err != nil {
		return wrapBackendError(err)
	}
	// The inode blocks following the superblock are already zero from
	// make(); nothing further to write into them.

	for b := uint32(0); b <= numInodeBlocks; b++ {
		blockData := region[b*BlockSize : (b+1)*BlockSize]
		if err := device.WriteBlock(b, blockData); err != nil {
			return wrapBackendError(err)
		}
	}

	if err := device.Sync(); err != nil {
		return wrapBackendError(err)
	}
	return nil
}
