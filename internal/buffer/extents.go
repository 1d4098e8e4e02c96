package buffer

import (
	"cmp"
	"io"
	"slices"
)

// span is a written region [lo, hi) of a buffer.
type span struct {
	lo, hi int
}

// extents records which regions of a buffer were written.
// Spans are sorted, disjoint and never adjacent; touching spans are merged.
type extents []span

// searchEnd returns the position of the first span ending at or after off.
func (e extents) searchEnd(off int) int {
	i, _ := slices.BinarySearchFunc(e, off, func(s span, off int) int {
		return cmp.Compare(s.hi, off)
	})
	return i
}

// add marks [lo, hi) as written.
func (e *extents) add(lo, hi int) {
	if lo >= hi {
		return
	}
	s := *e
	i := s.searchEnd(lo)
	j := i
	for ; j < len(s) && s[j].lo <= hi; j++ {
		lo = min(lo, s[j].lo)
		hi = max(hi, s[j].hi)
	}
	*e = slices.Replace(s, i, j, span{lo: lo, hi: hi})
}

// writtenUntil returns the end of the written span containing off, or off
// itself if the byte at off was never written.
func (e extents) writtenUntil(off int) int {
	i := e.searchEnd(off + 1)
	if i < len(e) && e[i].lo <= off {
		return e[i].hi
	}
	return off
}

// readable clamps a read of n bytes at off to the written region.
// It returns the number of bytes that can be read and the error to report:
// [io.EOF] at Len, ErrUnwritten at a gap.
func (e extents) readable(off, n, length int) (int, error) {
	end := e.writtenUntil(off)
	switch {
	case off+n <= end:
		return n, nil
	case end >= length:
		return end - off, io.EOF
	default:
		return end - off, ErrUnwritten
	}
}
