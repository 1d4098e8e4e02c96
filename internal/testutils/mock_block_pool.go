package testutils

import "sync/atomic"

const MockBlockSize = 16

// MockBlockPool is a heap-backed block pool that counts allocations.
// Capacity limits the number of blocks in use at once; zero means unlimited.
type MockBlockPool struct {
	Capacity int

	getCalls    atomic.Int64
	putCalls    atomic.Int64
	failedCalls atomic.Int64
}

func (p *MockBlockPool) BlockSize() int {
	return MockBlockSize
}

// Get returns a block filled with garbage, like a recycled block would be.
func (p *MockBlockPool) Get() ([]byte, bool) {
	if p.Capacity > 0 && p.BlocksInUse() >= int64(p.Capacity) {
		p.failedCalls.Add(1)
		return nil, false
	}
	p.getCalls.Add(1)
	b := make([]byte, MockBlockSize)
	for i := range b {
		b[i] = 0xAA
	}
	return b, true
}

func (p *MockBlockPool) Put(c []byte) {
	p.putCalls.Add(1)
}

func (p *MockBlockPool) GetCalls() int64 {
	return p.getCalls.Load()
}

func (p *MockBlockPool) PutCalls() int64 {
	return p.putCalls.Load()
}

// FailedCalls returns the number of Get calls rejected for lack of capacity.
func (p *MockBlockPool) FailedCalls() int64 {
	return p.failedCalls.Load()
}

func (p *MockBlockPool) BlocksInUse() int64 {
	return p.GetCalls() - p.PutCalls()
}

func (p *MockBlockPool) Reset() {
	p.getCalls.Store(0)
	p.putCalls.Store(0)
	p.failedCalls.Store(0)
}
