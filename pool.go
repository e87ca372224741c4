package cmdstream

import "sync"

// Allocator hands out reusable command buffers. After warmup, recording a
// frame does not allocate stream storage.
//
// Usage:
//
//	alloc := cmdstream.NewAllocator(cmdstream.WithValidation(debug))
//	cb := alloc.Get()
//	defer alloc.Put(cb)
//	cb.Begin()
//	// record...
type Allocator struct {
	opts options
	pool sync.Pool
}

// NewAllocator creates an allocator whose command buffers are built with
// opts.
func NewAllocator(opts ...Option) *Allocator {
	a := &Allocator{opts: applyOptions(opts)}
	a.pool.New = func() any {
		cb := &CommandBuffer{}
		cb.init(a.opts)
		return cb
	}
	return a
}

// Get returns a command buffer in the Initial state.
func (a *Allocator) Get() *CommandBuffer {
	cb := a.pool.Get().(*CommandBuffer)
	cb.Reset()
	return cb
}

// Put returns cb to the allocator. cb must not be used, replayed or
// submitted afterwards.
func (a *Allocator) Put(cb *CommandBuffer) {
	if cb == nil {
		return
	}
	cb.Reset()
	a.pool.Put(cb)
}

// Warmup preallocates count command buffers.
func (a *Allocator) Warmup(count int) {
	cbs := make([]*CommandBuffer, count)
	for i := range cbs {
		cbs[i] = a.Get()
	}
	for _, cb := range cbs {
		a.Put(cb)
	}
}
