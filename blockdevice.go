package ssfs

// BlockSize is the fixed size, in bytes, of every block in an SSFS image.
// Spec-mandated; not configurable.
const BlockSize = 1024

// BlockDevice is the storage backend contract the core consumes (§6.2). It
// never sees inode numbers, offsets, or file semantics — only fixed-size
// blocks by index.
//
// Implementations live outside the core (see package vdisk); the core only
// depends on this interface.
type BlockDevice interface {
	// TotalBlocks reports the size of the backing store, in blocks.
	TotalBlocks() uint32

	// ReadBlock fills buf (which must be exactly BlockSize bytes) with the
	// contents of the block at `index`.
	ReadBlock(index uint32, buf []byte) error

	// WriteBlock writes buf (exactly BlockSize bytes) to the block at
	// `index`.
	WriteBlock(index uint32, buf []byte) error

	// Sync flushes any buffered writes to durable storage.
	Sync() error

	// Close releases the backend. The device must not be used afterward.
	Close() error
}
