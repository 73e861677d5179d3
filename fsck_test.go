package ssfs

import (
	"testing"
)

func TestFsckDetectsAliasing(t *testing.T) {
	device := newMemDevice(4096)
	if err := Format(device, 64); err != nil {
		t.Fatalf("format failed: %v", err)
	}
	v := NewVolume(device)
	if err := v.Mount(); err != nil {
		t.Fatalf("mount failed: %v", err)
	}
	defer v.Unmount()

	a, err := v.Create()
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	b, err := v.Create()
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	inodeA, err := v.readInode(a)
	if err != nil {
		t.Fatalf("readInode failed: %v", err)
	}
	shared, zErr := v.allocateZeroBlock()
	if zErr != nil {
		t.Fatalf("allocateZeroBlock failed: %v", zErr)
	}
	inodeA.Direct[0] = shared
	inodeA.Size = BlockSize
	if err := v.writeInode(a, inodeA); err != nil {
		t.Fatalf("writeInode failed: %v", err)
	}

	inodeB, err := v.readInode(b)
	if err != nil {
		t.Fatalf("readInode failed: %v", err)
	}
	inodeB.Direct[0] = shared
	inodeB.Size = BlockSize
	if err := v.writeInode(b, inodeB); err != nil {
		t.Fatalf("writeInode failed: %v", err)
	}

	if fsckErr := v.Fsck(); fsckErr == nil {
		t.Fatal("expected Fsck to report the aliased block")
	}
}

func TestFsckRequiresMount(t *testing.T) {
	device := newMemDevice(64)
	if err := Format(device, 16); err != nil {
		t.Fatalf("format failed: %v", err)
	}
	v := NewVolume(device)

	err := v.Fsck()
	if err == nil {
		t.Fatal("expected an error when checking an unmounted volume")
	}
}
