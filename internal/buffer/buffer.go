// Package buffer implements random-access transfer buffers backed either by a
// fixed contiguous array or by a chain of fixed-size pool blocks.
package buffer

import (
	"errors"
	"io"
	"iter"
)

const (
	KiB = 1024
	MiB = KiB * KiB
)

var (
	ErrOffsetOutOfBounds = errors.New("offset is out of bounds")
	ErrSizeExceeded      = errors.New("write exceeds buffer max size")
	ErrNoMemory          = errors.New("block pool exhausted")
	ErrUnwritten         = errors.New("read of unwritten region")
)

// BlockPooler defines the contract for a bounded memory pool of fixed-size blocks.
type BlockPooler interface {
	BlockSize() int              // Returns the size of every block, in bytes.
	Get() (block []byte, ok bool) // Get retrieves a free block; ok is false when the pool is exhausted.
	Put(block []byte)             // Put returns a block to the pool.
}

// Sized is a random-access source with a known logical length.
type Sized interface {
	io.ReaderAt
	Len() int
}

// Buffer is the capability shared by static and dynamic transfer buffers.
//
// Writes may arrive in any offset order. Len reports the highest offset ever
// written plus one; reads never go past it. A read that runs into a byte below
// Len that was never written stops there with ErrUnwritten, whichever kind of
// buffer holds the content.
type Buffer interface {
	Sized
	io.WriterAt
	MaxSize() int // Hard cap on Len.
	Reset()       // Drops all content; safe to call repeatedly.

	// Blocks returns an iterator over the stored content in ascending order,
	// paired with each piece's absolute start offset. Unwritten bytes inside a
	// piece are zero; regions not covered by any piece were never written.
	Blocks() iter.Seq2[int, []byte]

	written() extents
}

// calcPosition translates a global offset to a block index and a position within that block.
func calcPosition(blockSize int, offset int) (blockIdx int, pos int) {
	return offset / blockSize, offset % blockSize
}

// calcOffset translates a block index and position to a global offset.
func calcOffset(blockSize int, blockIdx int, pos int) int {
	return blockIdx*blockSize + pos
}
