package xferbuf

import (
	"fmt"
	"log/slog"
	"sync"
	"unsafe"

	"golang.org/x/sys/unix"
)

// BlockPool is a thread-safe, bounded pool of fixed-size memory blocks.
//
// All blocks are carved out of a single region allocated off-heap when the pool
// is created, so the pool never grows and Get fails once every block is in use.
// Blocks are tracked by their index in the region.
type BlockPool struct {
	mu        sync.Mutex
	logger    *slog.Logger
	region    []byte
	blockSize int
	free      []int32 // Stack of free block indexes.
	inUse     []bool  // inUse[i] is set while block i is handed out.
}

// NewBlockPool creates a new pool with all blocks free.
func NewBlockPool(logger *slog.Logger, config BlockPoolConfig) (*BlockPool, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	// Use unix.Mmap to allocate virtual memory that is not part of the Go heap.
	// This keeps the region out of reach of the GOGC.
	size := config.BlockSize * config.NumBlocks
	region, err := unix.Mmap(-1, 0, size,
		unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_ANON|unix.MAP_PRIVATE,
	)
	if err != nil {
		return nil, fmt.Errorf("cannot allocate %d bytes via mmap for %d blocks: %w", size, config.NumBlocks, err)
	}

	p := &BlockPool{
		logger:    logger,
		region:    region,
		blockSize: config.BlockSize,
		free:      make([]int32, config.NumBlocks),
		inUse:     make([]bool, config.NumBlocks),
	}
	// Lowest indexes are on top of the stack.
	for i := range p.free {
		p.free[i] = int32(config.NumBlocks - 1 - i)
	}
	return p, nil
}

func (p *BlockPool) BlockSize() int {
	return p.blockSize
}

// NumBlocks returns the total number of blocks in the pool.
func (p *BlockPool) NumBlocks() int {
	return len(p.inUse)
}

// NumFree returns the number of available blocks.
func (p *BlockPool) NumFree() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.free)
}

// Get retrieves a free block. The block content is whatever its previous user left.
// ok is false if the pool is exhausted.
func (p *BlockPool) Get() (block []byte, ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.free) == 0 {
		return nil, false
	}
	n := len(p.free) - 1
	idx := int(p.free[n])
	p.free = p.free[:n]
	p.inUse[idx] = true
	start := idx * p.blockSize
	end := start + p.blockSize
	return p.region[start:end:end], true
}

// Put returns a block to the pool.
// It does nothing if c is nil, was not handed out by this pool, or is already free.
func (p *BlockPool) Put(c []byte) {
	if c == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	idx, ok := p.indexOf(c)
	if !ok {
		p.logger.Error("ignoring release of foreign block", "size", cap(c))
		return
	}
	if !p.inUse[idx] {
		p.logger.Error("ignoring double release of block", "index", idx)
		return
	}
	p.inUse[idx] = false
	p.free = append(p.free, int32(idx))
}

// indexOf returns the index of the block starting at the first byte of c.
// It assumes the caller holds the mutex.
func (p *BlockPool) indexOf(c []byte) (int, bool) {
	if cap(c) == 0 || len(p.region) == 0 {
		return 0, false
	}
	base := uintptr(unsafe.Pointer(unsafe.SliceData(p.region)))
	off := uintptr(unsafe.Pointer(unsafe.SliceData(c))) - base // Wraps around if c is below the region.
	if off >= uintptr(len(p.region)) || off%uintptr(p.blockSize) != 0 {
		return 0, false
	}
	return int(off / uintptr(p.blockSize)), true
}

// Close releases the memory of the pool back to the operating system.
// Blocks still in use must not be accessed afterwards.
func (p *BlockPool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.region == nil {
		return nil
	}
	if inUse := len(p.inUse) - len(p.free); inUse > 0 {
		p.logger.Warn("closing block pool with blocks in use", "inUse", inUse)
	}
	err := unix.Munmap(p.region)
	p.region = nil
	p.free = nil
	return err
}
