package ssfs

import (
	"bytes"
	"encoding/binary"
)

// magic is the 16-byte literal every SSFS image must start with.
var magic = [16]byte{
	0xF0, 0x55, 0x4C, 0x49, 0x45, 0x47, 0x45, 0x49,
	0x4E, 0x46, 0x4F, 0x30, 0x39, 0x34, 0x30, 0x0F,
}

// rawSuperblock is the on-disk layout of block 0, little-endian, zero-padded
// out to BlockSize. Grounded on the fixed-width little-endian superblock
// structs seen across the pack (e.g. ext4's Superblock): a plain struct
// decoded with encoding/binary rather than manual offset arithmetic.
type rawSuperblock struct {
	Magic          [16]byte
	NumBlocks      uint32
	NumInodeBlocks uint32
	BlockSize      uint32
}

// Superblock is the decoded, validated form of block 0.
type Superblock struct {
	NumBlocks      uint32
	NumInodeBlocks uint32
	BlockSize      uint32
}

func encodeSuperblock(sb Superblock) []byte {
	raw := rawSuperblock{
		Magic:          magic,
		NumBlocks:      sb.NumBlocks,
		NumInodeBlocks: sb.NumInodeBlocks,
		BlockSize:      sb.BlockSize,
	}

	buf := new(bytes.Buffer)
	buf.Grow(BlockSize)
	// binary.Write on a fixed-size struct with no error possible for these
	// field types; ignore the error the same way the teacher's format code
	// does for in-memory buffers.
	_ = binary.Write(buf, binary.LittleEndian, &raw)

	block := make([]byte, BlockSize)
	copy(block, buf.Bytes())
	return block
}

// decodeSuperblock parses block 0. It fails with ErrCorruptImage if the magic
// doesn't match exactly, or if the stored block size isn't 1024 (this
// implementation's resolution of spec.md's open question on that field).
func decodeSuperblock(block []byte) (Superblock, *Error) {
	var raw rawSuperblock
	if err := binary.Read(bytes.NewReader(block), binary.LittleEndian, &raw); err != nil {
		return Superblock{}, NewError(ErrCorruptImage).Wrap(err)
	}

	if raw.Magic != magic {
		return Superblock{}, NewErrorWithMessage(ErrCorruptImage, "magic mismatch")
	}
	if raw.BlockSize != BlockSize {
		return Superblock{}, NewErrorWithMessage(
			ErrCorruptImage,
			"unsupported block size in superblock",
		)
	}

	return Superblock{
		NumBlocks:      raw.NumBlocks,
		NumInodeBlocks: raw.NumInodeBlocks,
		BlockSize:      raw.BlockSize,
	}, nil
}
