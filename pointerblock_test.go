package ssfs

import "testing"

func TestPointerBlockRoundTrip(t *testing.T) {
	var pointers [PointersPerBlock]uint32
	pointers[0] = 7
	pointers[255] = 99999

	encoded := encodePointerBlock(pointers)
	if len(encoded) != BlockSize {
		t.Fatalf("encoded block has length %d, want %d", len(encoded), BlockSize)
	}

	decoded := decodePointerBlock(encoded)
	if decoded != pointers {
		t.Fatalf("round trip mismatch: got %v, want %v", decoded, pointers)
	}
}

func TestInodeCodecRoundTrip(t *testing.T) {
	in := Inode{
		Valid:          true,
		Size:           12345,
		Direct:         [4]uint32{1, 2, 3, 4},
		Indirect:       5,
		DoubleIndirect: 6,
	}

	block := make([]byte, BlockSize)
	if err := writeInodeIntoBlock(block, 32, in); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	decoded, err := readInodeFromBlock(block, 32)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decoded != in {
		t.Fatalf("round trip mismatch: got %+v, want %+v", decoded, in)
	}
}

func TestInodeLocation(t *testing.T) {
	block, offset, ok := inodeLocation(0, 2)
	if !ok || block != 1 || offset != 0 {
		t.Fatalf("inode 0: got (block=%d, offset=%d, ok=%v)", block, offset, ok)
	}

	block, offset, ok = inodeLocation(InodesPerBlock, 2)
	if !ok || block != 2 || offset != 0 {
		t.Fatalf("inode InodesPerBlock: got (block=%d, offset=%d, ok=%v)", block, offset, ok)
	}

	_, _, ok = inodeLocation(InodesPerBlock*2, 2)
	if ok {
		t.Fatal("expected inode beyond the inode region to be rejected")
	}
}
