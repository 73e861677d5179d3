package ssfs

import (
	"bytes"
	"encoding/binary"
)

// InodesPerBlock is how many 32-byte inode records fit in one 1024-byte
// block.
const InodesPerBlock = BlockSize / 32

// rawInode is the on-disk 32-byte inode layout, little-endian. Grounded on
// file_systems/unixv1's RawInode: a plain fixed-width struct round-tripped
// with encoding/binary rather than hand-rolled offset math, which also gets
// the zero-padding at the tail for free.
type rawInode struct {
	Valid          uint8
	Size           uint32
	Direct         [4]uint32
	Indirect       uint32
	DoubleIndirect uint32
	_              [3]byte // pad out to 32 bytes
}

// Inode is the decoded in-memory form of one inode record.
type Inode struct {
	Valid          bool
	Size           uint32
	Direct         [4]uint32
	Indirect       uint32
	DoubleIndirect uint32
}

func (in *Inode) toRaw() rawInode {
	raw := rawInode{Size: in.Size, Direct: in.Direct, Indirect: in.Indirect, DoubleIndirect: in.DoubleIndirect}
	if in.Valid {
		raw.Valid = 1
	}
	return raw
}

func rawToInode(raw rawInode) Inode {
	return Inode{
		Valid:          raw.Valid != 0,
		Size:           raw.Size,
		Direct:         raw.Direct,
		Indirect:       raw.Indirect,
		DoubleIndirect: raw.DoubleIndirect,
	}
}

// inodeLocation returns which inode block contains inode `i`, and the byte
// offset of its 32-byte record within that block.
func inodeLocation(i, numInodeBlocks uint32) (block uint32, offset uint32, ok bool) {
	if i >= numInodeBlocks*InodesPerBlock {
		return 0, 0, false
	}
	// Block 0 is the superblock, so inode blocks start at index 1.
	return 1 + i/InodesPerBlock, (i % InodesPerBlock) * 32, true
}

// readInodeFromBlock decodes the inode at the given offset within a full inode block
// buffer.
func readInodeFromBlock(blockData []byte, offset uint32) (Inode, *Error) {
	var raw rawInode
	r := bytes.NewReader(blockData[offset : offset+32])
	if err := binary.Read(r, binary.LittleEndian, &raw); err != nil {
		return Inode{}, wrapBackendError(err)
	}
	return rawToInode(raw), nil
}

// writeInodeIntoBlock encodes `in` into a 32-byte slot at `offset` within
// `blockData`, leaving the rest of the block untouched.
func writeInodeIntoBlock(blockData []byte, offset uint32, in Inode) *Error {
	buf := new(bytes.Buffer)
	buf.Grow(32)
	raw := in.toRaw()
	if err := binary.Write(buf, binary.LittleEndian, &raw); err != nil {
		return wrapBackendError(err)
	}
	copy(blockData[offset:offset+32], buf.Bytes())
	return nil
}
