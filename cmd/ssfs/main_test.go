package main

import "testing"

func TestResolveFormatSpecNumeric(t *testing.T) {
	inodes, totalBlocks, err := resolveFormatSpec("128")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inodes != 128 {
		t.Fatalf("inodes = %d, want 128", inodes)
	}
	if totalBlocks == 0 {
		t.Fatal("expected a nonzero default block count")
	}
}

func TestResolveFormatSpecPreset(t *testing.T) {
	inodes, totalBlocks, err := resolveFormatSpec("tiny")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inodes != 16 || totalBlocks != 64 {
		t.Fatalf("got inodes=%d totalBlocks=%d, want 16, 64", inodes, totalBlocks)
	}
}

func TestResolveFormatSpecUnknown(t *testing.T) {
	_, _, err := resolveFormatSpec("not-a-thing")
	if err == nil {
		t.Fatal("expected an error for an unrecognized spec")
	}
}
