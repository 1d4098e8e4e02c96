// Package xferbuf implements a bounded-memory buffer manager for reassembling
// multi-part transfers.
//
// Every in-flight transfer, identified by a Key, gets a buffer that can be
// written out of order and read back once complete. Buffers are served from a
// fixed number of preallocated static slots first, and from dynamic buffers
// built of blocks from a shared, bounded BlockPool otherwise. Whenever a static
// slot frees up, the manager migrates a dynamic buffer into it to relieve the pool.
//
// A Manager is not safe for concurrent use.
package xferbuf

import (
	"context"
	"errors"
	"log/slog"
	"slices"

	"github.com/holmberd/go-xferbuf/internal/buffer"
)

var (
	ErrKeyEmpty          = errors.New("key cannot be empty")
	ErrKeyExists         = errors.New("buffer already exists for key")
	ErrDisabled          = errors.New("buffer manager is disabled")
	ErrNotFound          = errors.New("no buffer for key")
	ErrNoMemory          = buffer.ErrNoMemory
	ErrSizeExceeded      = buffer.ErrSizeExceeded
	ErrUnwritten         = buffer.ErrUnwritten
	ErrOffsetOutOfBounds = buffer.ErrOffsetOutOfBounds
)

// Stats represents manager stats.
type Stats struct {
	StaticBuffers  int    // Static buffers in use.
	DynamicBuffers int    // Dynamic buffers in use.
	DynamicBlocks  int    // Pool blocks held by dynamic buffers.
	Migrations     uint64 // Dynamic buffers migrated into static slots.
	Exhaustions    uint64 // Create calls rejected because the pool was exhausted.
}

// Manager owns the static and dynamic transfer buffers.
type Manager[P buffer.BlockPooler] struct {
	logger *slog.Logger
	pool   P
	config Config

	// static holds the preallocated entries, all backed by a single array.
	static []entry[P]

	// dynamic holds the dynamic entries, oldest first.
	dynamic []*entry[P]

	migrations  uint64
	exhaustions uint64
}

// New creates a new buffer manager drawing dynamic buffers from pool.
// A nil logger discards all logs.
func New[P buffer.BlockPooler](pool P, logger *slog.Logger, config Config) (*Manager[P], error) {
	if err := config.Validate(pool); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	m := &Manager[P]{
		logger: logger,
		pool:   pool,
		config: config,
		static: make([]entry[P], config.NumStatic),
	}
	size := config.StaticSize
	backing := make([]byte, config.NumStatic*size)
	for i := range m.static {
		m.static[i].key = emptyKey
		m.static[i].static = buffer.NewStatic(backing[i*size : (i+1)*size : (i+1)*size])
	}
	return m, nil
}

// IsDisabled reports whether the manager was configured to never hand out buffers.
func (m *Manager[P]) IsDisabled() bool {
	return m.config.isDisabled()
}

func (m *Manager[P]) findStatic(key Key) *entry[P] {
	for i := range m.static {
		if m.static[i].key == key {
			return &m.static[i]
		}
	}
	return nil
}

func (m *Manager[P]) findDynamic(key Key) (int, *entry[P]) {
	for i, e := range m.dynamic {
		if e.key == key {
			return i, e
		}
	}
	return -1, nil
}

func (m *Manager[P]) find(key Key) *entry[P] {
	if e := m.findStatic(key); e != nil {
		return e
	}
	_, e := m.findDynamic(key)
	return e
}

func (m *Manager[P]) firstFreeStatic() *entry[P] {
	for i := range m.static {
		if m.static[i].isEmpty() {
			return &m.static[i]
		}
	}
	return nil
}

// Access returns the buffer for key.
// The ok result indicates whether a buffer exists. It never allocates.
func (m *Manager[P]) Access(key Key) (b Buffer[P], ok bool) {
	if key.IsEmpty() {
		return Buffer[P]{}, false
	}
	e := m.find(key)
	if e == nil {
		return Buffer[P]{}, false
	}
	return newBuffer(e), true
}

// Create creates an empty buffer for key, preferring a free static slot.
//
// The error is ErrNoMemory if no static slot is free and the block pool is
// exhausted; this is expected under load and means the transfer cannot be
// buffered now. Creating a buffer for a key that already has one is an error.
func (m *Manager[P]) Create(key Key) (Buffer[P], error) {
	if key.IsEmpty() {
		return Buffer[P]{}, ErrKeyEmpty
	}
	if m.IsDisabled() {
		return Buffer[P]{}, ErrDisabled
	}
	if m.find(key) != nil {
		m.logger.Error("Refusing to create duplicate transfer buffer", "key", key)
		return Buffer[P]{}, ErrKeyExists
	}

	if e := m.firstFreeStatic(); e != nil {
		e.reset(key)
	} else {
		d, err := buffer.NewDynamic(m.pool, m.config.MaxBufSize)
		if err != nil {
			m.exhaustions++
			m.logger.Debug("No memory for dynamic transfer buffer", "key", key, "dynamicBuffers", len(m.dynamic))
			return Buffer[P]{}, err
		}
		m.dynamic = append(m.dynamic, &entry[P]{key: key, dynamic: d})
	}

	m.optimizeStorage()

	// Optimization may have moved the new buffer.
	b, _ := m.Access(key)
	return b, nil
}

// Remove removes the buffer for key, releasing its memory.
// Removing a key without a buffer is a no-op.
func (m *Manager[P]) Remove(key Key) {
	if key.IsEmpty() {
		return
	}
	if e := m.findStatic(key); e != nil {
		e.reset(emptyKey)
	} else if i, e := m.findDynamic(key); e != nil {
		e.reset(emptyKey)
		m.dynamic = slices.Delete(m.dynamic, i, i+1)
	}
	m.optimizeStorage()
}

// optimizeStorage migrates dynamic buffers into free static slots, oldest
// first, as long as both exist. A buffer only moves into a slot at least as
// large as its own max size, so migration never lowers the cap of a transfer.
func (m *Manager[P]) optimizeStorage() {
	for len(m.dynamic) > 0 {
		s := m.firstFreeStatic()
		if s == nil {
			return
		}
		i := slices.IndexFunc(m.dynamic, func(e *entry[P]) bool {
			return e.dynamic.MaxSize() <= s.static.MaxSize()
		})
		if i < 0 {
			return
		}
		src := m.dynamic[i]
		if m.logger.Enabled(context.Background(), slog.LevelDebug) {
			m.logger.Debug(
				"Migrating dynamic transfer buffer to static storage",
				"key", src.key,
				"len", src.dynamic.Len(),
				"blocks", src.dynamic.NumBlocks(),
				"digest", buffer.Sum64(src.dynamic),
			)
		}
		if !s.migrateFrom(src) {
			return
		}
		m.dynamic = slices.Delete(m.dynamic, i, i+1)
		m.migrations++
	}
}

// IsEmpty reports whether no buffers are in use.
func (m *Manager[P]) IsEmpty() bool {
	return m.NumStaticBuffers() == 0 && m.NumDynamicBuffers() == 0
}

// NumStaticBuffers returns the number of static buffers in use.
func (m *Manager[P]) NumStaticBuffers() int {
	n := 0
	for i := range m.static {
		if !m.static[i].isEmpty() {
			n++
		}
	}
	return n
}

// NumDynamicBuffers returns the number of dynamic buffers in use.
func (m *Manager[P]) NumDynamicBuffers() int {
	return len(m.dynamic)
}

// UpdateStats adds the manager's stats to s.
func (m *Manager[P]) UpdateStats(s *Stats) {
	s.StaticBuffers += m.NumStaticBuffers()
	s.DynamicBuffers += len(m.dynamic)
	for _, e := range m.dynamic {
		s.DynamicBlocks += e.dynamic.NumBlocks()
	}
	s.Migrations += m.migrations
	s.Exhaustions += m.exhaustions
}

// Clear removes all buffers, releasing every dynamic buffer to the pool.
func (m *Manager[P]) Clear() {
	for i := range m.static {
		if !m.static[i].isEmpty() {
			m.static[i].reset(emptyKey)
		}
	}
	for _, e := range m.dynamic {
		e.reset(emptyKey)
	}
	clear(m.dynamic)
	m.dynamic = m.dynamic[:0]
}
