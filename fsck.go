package ssfs

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// Fsck walks every valid inode's pointer tree and checks it against the
// invariants spec.md §3 states, collecting every violation it finds instead
// of stopping at the first — a supplemental consistency check the
// distillation's operation list doesn't name but the invariants themselves
// imply. Grounded on hashicorp/go-multierror's accumulate-everything idiom,
// the same dependency the teacher's go.mod carries for aggregating
// validation failures.
//
// A nil return means the volume is internally consistent.
func (v *Volume) Fsck() error {
	if err := v.requireMounted(); err != nil {
		return err
	}

	var result *multierror.Error
	seen := make(map[uint32]uint32) // block index -> owning inode number
	leafCounts := make(map[uint32]uint32)

	checkPointer := func(owner uint32, block uint32, isLeaf bool) {
		if block == 0 {
			return
		}
		if block <= v.numInodeBlocks || block >= v.numBlocks {
			result = multierror.Append(result, fmt.Errorf(
				"inode %d: pointer %d outside allocatable range (%d, %d)",
				owner, block, v.numInodeBlocks, v.numBlocks,
			))
			return
		}
		if prevOwner, ok := seen[block]; ok && prevOwner != owner {
			result = multierror.Append(result, fmt.Errorf(
				"block %d reachable from both inode %d and inode %d (aliasing)",
				block, prevOwner, owner,
			))
		} else {
			seen[block] = owner
		}
		if !v.alloc.InUse(block) {
			result = multierror.Append(result, fmt.Errorf(
				"block %d reachable from inode %d but not marked used", block, owner,
			))
		}
		if isLeaf {
			leafCounts[owner]++
		}
	}

	total := v.numInodeBlocks * InodesPerBlock
	for i := uint32(0); i < total; i++ {
		inode, err := v.readInode(i)
		if err != nil {
			result = multierror.Append(result, err)
			continue
		}
		if !inode.Valid {
			continue
		}

		for _, d := range inode.Direct {
			checkPointer(i, d, true)
		}

		if inode.Indirect != 0 {
			checkPointer(i, inode.Indirect, false)
			block, err := v.readBlock(inode.Indirect)
			if err != nil {
				result = multierror.Append(result, err)
			} else {
				for _, leaf := range decodePointerBlock(block) {
					checkPointer(i, leaf, true)
				}
			}
		}

		if inode.DoubleIndirect != 0 {
			checkPointer(i, inode.DoubleIndirect, false)
			diBlock, err := v.readBlock(inode.DoubleIndirect)
			if err != nil {
				result = multierror.Append(result, err)
			} else {
				for _, indirectPtr := range decodePointerBlock(diBlock) {
					if indirectPtr == 0 {
						continue
					}
					checkPointer(i, indirectPtr, false)
					block, err := v.readBlock(indirectPtr)
					if err != nil {
						result = multierror.Append(result, err)
						continue
					}
					for _, leaf := range decodePointerBlock(block) {
						checkPointer(i, leaf, true)
					}
				}
			}
		}

		maxBytes := uint64(leafCounts[i]) * BlockSize
		if uint64(inode.Size) > maxBytes {
			result = multierror.Append(result, fmt.Errorf(
				"inode %d: size %d exceeds %d bytes reachable from its tree",
				i, inode.Size, maxBytes,
			))
		}
	}

	for b := v.numInodeBlocks + 1; b < v.numBlocks; b++ {
		if _, reachable := seen[b]; !reachable && v.alloc.InUse(b) {
			result = multierror.Append(result, fmt.Errorf(
				"block %d marked used but not reachable from any valid inode", b,
			))
		}
	}

	if result == nil {
		return nil
	}
	return result.ErrorOrNil()
}
