package buffer

import (
	"io"
	"iter"
)

// Static represents a fixed-capacity buffer over a preallocated byte slice.
// Content is never allocated; writes beyond its capacity are truncated.
type Static struct {
	data        []byte
	spans       extents // Written regions.
	maxWritePos int
}

// NewStatic creates a new, empty static buffer over data.
// The capacity of the buffer is len(data), and data is expected to be zeroed.
func NewStatic(data []byte) *Static {
	return &Static{data: data}
}

func (b *Static) Len() int {
	return b.maxWritePos
}

// MaxSize returns the fixed capacity of the buffer.
func (b *Static) MaxSize() int {
	return len(b.data)
}

// Bytes returns the first Len bytes of the buffer; unwritten bytes are zero.
// The slice is only valid until the next reset.
func (b *Static) Bytes() []byte {
	return b.data[:b.maxWritePos]
}

// WriteAt writes p at the absolute offset off.
// Bytes beyond the capacity are dropped and the error is ErrSizeExceeded.
func (b *Static) WriteAt(p []byte, off int64) (n int, err error) {
	if off < 0 {
		return 0, ErrOffsetOutOfBounds
	}
	if len(p) == 0 {
		return 0, nil
	}
	if off >= int64(len(b.data)) {
		return 0, ErrSizeExceeded
	}
	n = copy(b.data[off:], p)
	if n < len(p) {
		err = ErrSizeExceeded
	}
	b.spans.add(int(off), int(off)+n)
	b.maxWritePos = max(b.maxWritePos, int(off)+n)
	return n, err
}

// ReadAt reads len(p) bytes starting at the absolute offset off.
// The error is [io.EOF] if fewer bytes than requested were written, and
// ErrUnwritten if the read runs into a byte that was never written.
func (b *Static) ReadAt(p []byte, off int64) (n int, err error) {
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
	return copy(p[:avail], b.data[off:]), err
}

// Blocks yields the first Len bytes of the buffer as a single piece.
func (b *Static) Blocks() iter.Seq2[int, []byte] {
	return func(yield func(int, []byte) bool) {
		if b.maxWritePos > 0 {
			yield(0, b.data[:b.maxWritePos])
		}
	}
}

func (b *Static) written() extents {
	return b.spans
}

// Reset zeroes the written region so that unwritten bytes always read as zero.
func (b *Static) Reset() {
	clear(b.data[:b.maxWritePos])
	b.spans = b.spans[:0]
	b.maxWritePos = 0
}

// MigrateFrom replaces the content of the buffer with the content of src,
// including which regions of it were written.
//
// It returns false, leaving the buffer untouched, if src does not fit.
// On success the caller owns releasing src.
func (b *Static) MigrateFrom(src Buffer) bool {
	if src.Len() > len(b.data) {
		return false
	}
	b.Reset()
	for off, data := range src.Blocks() {
		copy(b.data[off:], data)
	}
	b.spans = append(b.spans, src.written()...)
	b.maxWritePos = src.Len()
	return true
}
