package xferbuf

import (
	"errors"

	"github.com/holmberd/go-xferbuf/internal/buffer"
)

var ErrStaleBuffer = errors.New("buffer handle is stale")

// Reader reads a buffer sequentially.
type Reader = buffer.Reader

// Buffer is a borrowed reference to a transfer buffer owned by a Manager.
//
// A Buffer stays valid until its key is removed or the manager migrates its
// content to other storage; after that every operation fails with
// ErrStaleBuffer and the buffer must be looked up again. Use an Accessor to
// resolve the key on every call instead.
type Buffer[P buffer.BlockPooler] struct {
	e   *entry[P]
	gen uint64
}

func newBuffer[P buffer.BlockPooler](e *entry[P]) Buffer[P] {
	return Buffer[P]{e: e, gen: e.gen}
}

// IsValid reports whether the handle still refers to its buffer.
func (b Buffer[P]) IsValid() bool {
	return b.e != nil && b.e.gen == b.gen
}

// Key returns the key of the buffer, or an empty key if the handle is stale.
func (b Buffer[P]) Key() Key {
	if !b.IsValid() {
		return emptyKey
	}
	return b.e.key
}

// IsStatic reports whether the buffer lives in a preallocated static slot.
func (b Buffer[P]) IsStatic() bool {
	return b.IsValid() && b.e.static != nil
}

// Len returns the highest offset written plus one, or 0 if the handle is stale.
func (b Buffer[P]) Len() int {
	if !b.IsValid() {
		return 0
	}
	return b.e.buf().Len()
}

func (b Buffer[P]) MaxSize() int {
	if !b.IsValid() {
		return 0
	}
	return b.e.buf().MaxSize()
}

// WriteAt writes p at the absolute offset off. Offsets may arrive in any order.
//
// The returned count only covers the bytes actually stored. The error is
// ErrSizeExceeded if p was truncated at the max size, and ErrNoMemory if the
// block pool ran out; the transfer can then not complete.
func (b Buffer[P]) WriteAt(p []byte, off int64) (n int, err error) {
	if !b.IsValid() {
		return 0, ErrStaleBuffer
	}
	return b.e.buf().WriteAt(p, off)
}

// ReadAt reads len(p) bytes starting at the absolute offset off.
// The error is [io.EOF] if fewer bytes were written, and ErrUnwritten if the
// read runs into a region that was never written.
func (b Buffer[P]) ReadAt(p []byte, off int64) (n int, err error) {
	if !b.IsValid() {
		return 0, ErrStaleBuffer
	}
	return b.e.buf().ReadAt(p, off)
}

// NewReader returns a reader over the buffer content, starting at offset 0.
func (b Buffer[P]) NewReader() *Reader {
	return buffer.NewReader(b)
}

// Sum64 returns the xxhash digest of the buffer content.
func (b Buffer[P]) Sum64() uint64 {
	if !b.IsValid() {
		return 0
	}
	return buffer.Sum64(b.e.buf())
}
