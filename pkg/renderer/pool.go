package renderer

import (
	"sync"
)

// BufferPool is a typed free list for Planes buffers. Allocation is bounded
// by a fixed capacity so the pipeline cannot grow its working set without
// bound; when the pool is exhausted Take fails instead of allocating. Each
// taken buffer has exactly one owner until it is returned.
type BufferPool struct {
	mu        sync.Mutex
	free      []*Planes
	allocated int
	capacity  int
	width     int
	height    int
}

// NewBufferPool creates a pool dispensing width x height buffers, allocating
// at most capacity of them over its lifetime (until Reset)
func NewBufferPool(width, height, capacity int) *BufferPool {
	return &BufferPool{
		capacity: capacity,
		width:    width,
		height:   height,
	}
}

// Take returns a zeroed buffer and true, reusing a returned buffer when one
// is available and allocating otherwise. It returns nil and false when all
// capacity is live.
func (p *BufferPool) Take() (*Planes, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if n := len(p.free); n > 0 {
		buf := p.free[n-1]
		p.free[n-1] = nil
		p.free = p.free[:n-1]
		buf.Reset()
		return buf, true
	}
	if p.allocated >= p.capacity {
		return nil, false
	}
	p.allocated++
	return NewPlanes(p.width, p.height), true
}

// Return hands a buffer back to the pool. The caller must not retain any
// reference after returning.
func (p *BufferPool) Return(buf *Planes) {
	if buf == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.free = append(p.free, buf)
}

// Live reports how many buffers are currently taken and not yet returned
func (p *BufferPool) Live() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.allocated - len(p.free)
}

// Capacity returns the allocation ceiling
func (p *BufferPool) Capacity() int {
	return p.capacity
}

// Reset drops the free list so subsequent takes allocate fresh buffers.
// All live buffers must have been returned first.
func (p *BufferPool) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.allocated -= len(p.free)
	p.free = nil
}
