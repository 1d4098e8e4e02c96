package buffer

import "github.com/cespare/xxhash/v2"

var zeros [256]byte

// Sum64 returns the xxhash digest of the first Len bytes of b, with bytes that
// were never written hashed as zeros.
//
// Static and dynamic buffers holding the same writes have the same digest, so
// the digest does not change across a migration.
func Sum64(b Buffer) uint64 {
	d := xxhash.New()
	pos := 0
	for off, data := range b.Blocks() {
		writeZeros(d, off-pos)
		d.Write(data)
		pos = off + len(data)
	}
	writeZeros(d, b.Len()-pos)
	return d.Sum64()
}

func writeZeros(d *xxhash.Digest, n int) {
	for n > 0 {
		k := min(n, len(zeros))
		d.Write(zeros[:k])
		n -= k
	}
}
