package xferbuf

import (
	"errors"

	"github.com/holmberd/go-xferbuf/internal/buffer"
)

// Accessor binds a manager and a key, so callers need not repeat the key.
//
// Unlike a Buffer handle, ReadAt, WriteAt and Len resolve the key on every
// call and keep working after the manager migrates the buffer.
type Accessor[P buffer.BlockPooler] struct {
	m   *Manager[P]
	key Key
}

// NewAccessor creates a new accessor for key.
// It panics if key is empty.
func NewAccessor[P buffer.BlockPooler](m *Manager[P], key Key) *Accessor[P] {
	if key.IsEmpty() {
		panic(errors.New("accessor key cannot be empty"))
	}
	return &Accessor[P]{m: m, key: key}
}

func (a *Accessor[P]) Key() Key {
	return a.key
}

func (a *Accessor[P]) Access() (Buffer[P], bool) {
	return a.m.Access(a.key)
}

func (a *Accessor[P]) Create() (Buffer[P], error) {
	return a.m.Create(a.key)
}

func (a *Accessor[P]) Remove() {
	a.m.Remove(a.key)
}

// Len returns the length of the buffer, or 0 if there is none.
func (a *Accessor[P]) Len() int {
	b, _ := a.m.Access(a.key)
	return b.Len()
}

// WriteAt writes p at the absolute offset off of the key's buffer.
// The error is ErrNotFound if the key has no buffer.
func (a *Accessor[P]) WriteAt(p []byte, off int64) (n int, err error) {
	b, ok := a.m.Access(a.key)
	if !ok {
		return 0, ErrNotFound
	}
	return b.WriteAt(p, off)
}

// ReadAt reads len(p) bytes starting at the absolute offset off of the key's buffer.
// The error is ErrNotFound if the key has no buffer.
func (a *Accessor[P]) ReadAt(p []byte, off int64) (n int, err error) {
	b, ok := a.m.Access(a.key)
	if !ok {
		return 0, ErrNotFound
	}
	return b.ReadAt(p, off)
}

// NewReader returns a reader over the key's buffer that survives migration.
func (a *Accessor[P]) NewReader() *Reader {
	return buffer.NewReader(a)
}
