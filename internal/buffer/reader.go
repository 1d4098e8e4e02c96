package buffer

import (
	"errors"
	"io"
)

// Reader reads the content of a buffer sequentially, from its start.
// It implements the [io.Reader], [io.ByteReader] and [io.Seeker] interface.
type Reader struct {
	b       Sized   // Source buffer.
	off     int64   // Offset of the next read.
	byteBuf [1]byte // Reusable single byte buffer.
}

func NewReader(b Sized) *Reader {
	return &Reader{b: b}
}

func (r *Reader) Offset() int64 {
	return r.off
}

// Reset resets the reader to the start of the buffer.
func (r *Reader) Reset() *Reader {
	r.off = 0
	return r
}

func (r *Reader) IsEOF() bool {
	return r.off >= int64(r.b.Len())
}

// Read reads data from the buffer into p and returns the number of bytes read.
// Errors other than [io.EOF] come from the buffer, e.g. ErrUnwritten for a gap.
func (r *Reader) Read(p []byte) (n int, err error) {
	if len(p) == 0 {
		return 0, nil // No-op
	}
	if r.IsEOF() {
		return 0, io.EOF
	}
	n, err = r.b.ReadAt(p, r.off)
	r.off += int64(n)
	if err == io.EOF && n > 0 {
		err = nil // Short read; the next call reports EOF.
	}
	return n, err
}

// ReadByte reads a single byte from the buffer.
func (r *Reader) ReadByte() (byte, error) {
	n, err := r.b.ReadAt(r.byteBuf[:], r.off)
	if n == 0 {
		if err == nil {
			err = io.EOF
		}
		return 0, err
	}
	r.off++
	return r.byteBuf[0], nil
}

// Seek sets the offset for the next read.
// It implements the [io.Seeker] interface.
//
// Seeking to an offset before the start of the buffer is an error.
// Seeking past the end is allowed; subsequent reads return [io.EOF].
func (r *Reader) Seek(offset int64, whence int) (int64, error) {
	var newOffset int64
	switch whence {
	case io.SeekStart:
		newOffset = offset
	case io.SeekCurrent:
		newOffset = r.off + offset
	case io.SeekEnd:
		newOffset = int64(r.b.Len()) + offset // Offset is expected to be negative.
	default:
		return 0, errors.New("invalid whence")
	}
	if newOffset < 0 {
		return 0, errors.New("invalid offset: cannot be negative")
	}
	r.off = newOffset
	return newOffset, nil
}
