package xferbuf

import "github.com/holmberd/go-xferbuf/internal/buffer"

// entry binds a key to a buffer. Exactly one of static and dynamic is set.
type entry[P buffer.BlockPooler] struct {
	key Key

	// gen is bumped whenever the entry's content stops belonging to its
	// current handles: on reset, migration and release.
	gen uint64

	static  *buffer.Static
	dynamic *buffer.Dynamic[P]
}

func (e *entry[P]) buf() buffer.Buffer {
	if e.static != nil {
		return e.static
	}
	return e.dynamic
}

func (e *entry[P]) isEmpty() bool {
	return e.key.IsEmpty()
}

// reset clears the entry's content and assigns it a new key.
// Resetting with emptyKey frees a static entry for reuse.
func (e *entry[P]) reset(key Key) {
	e.key = key
	e.gen++
	e.buf().Reset()
}

// migrateFrom moves the content and key of the dynamic entry src into the
// static entry e, then releases src. It returns false, leaving both entries
// untouched, if the content does not fit.
func (e *entry[P]) migrateFrom(src *entry[P]) bool {
	if e.static == nil || src.dynamic == nil {
		return false
	}
	if !e.static.MigrateFrom(src.dynamic) {
		return false
	}
	e.key = src.key
	e.gen++
	src.reset(emptyKey) // Releases the source blocks.
	return true
}
