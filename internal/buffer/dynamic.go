package buffer

import (
	"cmp"
	"fmt"
	"io"
	"iter"
	"slices"
	"strconv"
)

// block is a pool block placed at a fixed position of the logical buffer.
type block struct {
	idx  int    // Block index; the block covers [idx*blockSize, (idx+1)*blockSize).
	data []byte // Pool memory, len == blockSize.
}

// Dynamic represents a resizable gather/scatter buffer.
//
// Its content is spread over a chain of fixed-size blocks taken from a shared
// pool. Blocks are allocated lazily for the regions that are written, so writes
// can arrive in any offset order, e.g. [50,60) before [0,10). The chain is kept
// sorted by block offset and no two blocks cover the same region.
type Dynamic[P BlockPooler] struct {
	pool      P
	blockSize int

	// blocks is ordered from lower to higher buffer offset.
	blocks []block

	spans       extents // Written regions.
	maxWritePos int // Highest offset ever written + 1.
	maxSize     int // Hard cap on maxWritePos.
}

// NewDynamic creates a new dynamic buffer limited to maxSize bytes.
//
// The head block is allocated up front, so creating a buffer is charged
// against the pool. The error is ErrNoMemory if the pool is exhausted.
func NewDynamic[P BlockPooler](pool P, maxSize int) (*Dynamic[P], error) {
	blockSize := pool.BlockSize()
	if blockSize <= 0 {
		panic(fmt.Errorf("invalid block size %d", blockSize))
	}
	if maxSize <= 0 {
		panic(fmt.Errorf("invalid max size %d", maxSize))
	}
	b := &Dynamic[P]{
		pool:      pool,
		blockSize: blockSize,
		maxSize:   maxSize,
	}
	if !b.insertBlock(0, 0) {
		return nil, ErrNoMemory
	}
	return b, nil
}

// Len returns the logical length of the buffer.
func (b *Dynamic[P]) Len() int {
	return b.maxWritePos
}

func (b *Dynamic[P]) MaxSize() int {
	return b.maxSize
}

// NumBlocks returns the number of pool blocks held by the buffer.
func (b *Dynamic[P]) NumBlocks() int {
	return len(b.blocks)
}

// find returns the chain position of the block with the given index, or the
// position where it would be inserted.
func (b *Dynamic[P]) find(blockIdx int) (pos int, found bool) {
	return slices.BinarySearchFunc(b.blocks, blockIdx, func(bl block, idx int) int {
		return cmp.Compare(bl.idx, idx)
	})
}

// insertBlock allocates a zeroed block from the pool and inserts it at chain position pos.
// It returns false if the pool is exhausted.
func (b *Dynamic[P]) insertBlock(pos int, blockIdx int) bool {
	data, ok := b.pool.Get()
	if !ok {
		return false
	}
	data = data[:b.blockSize]
	clear(data) // Pool blocks are recycled as-is.
	b.blocks = slices.Insert(b.blocks, pos, block{idx: blockIdx, data: data})
	return true
}

// WriteAt writes p at the absolute offset off and returns the number of bytes stored.
// It implements the [io.WriterAt] interface.
//
// Bytes beyond the max size are dropped and the error is ErrSizeExceeded.
// If the pool runs out of blocks the write stops early and the error is ErrNoMemory;
// the bytes stored so far remain in the buffer.
func (b *Dynamic[P]) WriteAt(p []byte, off int64) (n int, err error) {
	if off < 0 {
		return 0, ErrOffsetOutOfBounds
	}
	if len(p) == 0 {
		return 0, nil // No-op; empty bytes.
	}
	if off >= int64(b.maxSize) {
		return 0, ErrSizeExceeded
	}
	data := p
	if rem := b.maxSize - int(off); len(data) > rem {
		data = data[:rem]
		err = ErrSizeExceeded
	}

	blockIdx, pos := calcPosition(b.blockSize, int(off))
	ci, found := b.find(blockIdx)
	for n < len(data) {
		if !found && !b.insertBlock(ci, blockIdx) {
			err = ErrNoMemory
			break
		}
		n += copy(b.blocks[ci].data[pos:], data[n:])

		// The successor block, if allocated, sits right after ci in the chain.
		blockIdx++
		ci++
		pos = 0
		found = ci < len(b.blocks) && b.blocks[ci].idx == blockIdx
	}
	if n > 0 {
		b.spans.add(int(off), int(off)+n)
		b.maxWritePos = max(b.maxWritePos, int(off)+n)
	}
	return n, err
}

// ReadAt reads len(p) bytes starting at the absolute offset off.
// It implements the [io.ReaderAt] interface.
//
// Reads stop at Len; the error is [io.EOF] if fewer bytes than requested were available.
// The error is ErrUnwritten if the read runs into a byte that was never written.
func (b *Dynamic[P]) ReadAt(p []byte, off int64) (n int, err error) {
	if off < 0 {
		return 0, ErrOffsetOutOfBounds
	}
	if len(p) == 0 {
		return 0, nil
	}
	if off >= int64(b.maxWritePos) {
		return 0, io.EOF
	}
	avail, err := b.spans.readable(int(off), len(p), b.maxWritePos)
	data := p[:avail]

	blockIdx, pos := calcPosition(b.blockSize, int(off))
	ci, found := b.find(blockIdx)
	for n < len(data) {
		if !found {
			return n, fmt.Errorf("written block %d missing from chain: %w", blockIdx, ErrUnwritten)
		}
		n += copy(data[n:], b.blocks[ci].data[pos:])
		blockIdx++
		ci++
		pos = 0
		found = ci < len(b.blocks) && b.blocks[ci].idx == blockIdx
	}
	return n, err
}

// Blocks returns an iterator over the content of each block below Len, in
// ascending order, paired with the block's absolute start offset.
// The yielded slices alias pool memory and are only valid until the next write or reset.
func (b *Dynamic[P]) Blocks() iter.Seq2[int, []byte] {
	return func(yield func(int, []byte) bool) {
		for _, bl := range b.blocks {
			start := calcOffset(b.blockSize, bl.idx, 0)
			if start >= b.maxWritePos {
				return
			}
			end := min(start+b.blockSize, b.maxWritePos)
			if !yield(start, bl.data[:end-start]) {
				return
			}
		}
	}
}

// Reset releases all blocks back to the pool.
func (b *Dynamic[P]) Reset() {
	for i := range b.blocks {
		b.pool.Put(b.blocks[i].data)
	}
	b.blocks = nil // Unreference slice headers.
	b.spans = b.spans[:0]
	b.maxWritePos = 0
}

func (b *Dynamic[P]) written() extents {
	return b.spans
}

// checkChain verifies that the chain is sorted and that no blocks overlap.
func (b *Dynamic[P]) checkChain() error {
	for i := 1; i < len(b.blocks); i++ {
		if b.blocks[i-1].idx >= b.blocks[i].idx {
			return fmt.Errorf("block %d at index %d is not after block %d", i, b.blocks[i].idx, b.blocks[i-1].idx)
		}
	}
	if b.maxWritePos > b.maxSize {
		return fmt.Errorf("max write position %d exceeds max size %d", b.maxWritePos, b.maxSize)
	}
	if n := len(b.spans); n > 0 && b.spans[n-1].hi != b.maxWritePos {
		return fmt.Errorf("last written span ends at %d, not at max write position %d", b.spans[n-1].hi, b.maxWritePos)
	}
	for _, s := range b.spans {
		for idx := s.lo / b.blockSize; idx <= (s.hi-1)/b.blockSize; idx++ {
			if _, found := b.find(idx); !found {
				return fmt.Errorf("written span [%d,%d) has no block %d", s.lo, s.hi, idx)
			}
		}
	}
	return nil
}

// Print outputs a visual representation of the buffer for debugging purposes.
// It prints each block as a row of space-separated hexadecimal values, prefixed
// by the block's start offset.
func (b *Dynamic[P]) Print(w io.Writer) {
	if b == nil {
		return
	}
	fmt.Fprintf(w, "--- Dynamic buffer (len %d, max %d) ---\n", b.maxWritePos, b.maxSize)
	if len(b.blocks) == 0 {
		fmt.Fprintf(w, "(empty)\n")
		return
	}

	// The width is the number of digits in the highest block offset.
	paddingWidth := len(strconv.Itoa(calcOffset(b.blockSize, b.blocks[len(b.blocks)-1].idx, 0)))
	for _, bl := range b.blocks {
		fmt.Fprintf(w, "%*d: [% x]\n", paddingWidth, calcOffset(b.blockSize, bl.idx, 0), bl.data)
	}
}
