// Package bufferpool provides reusable receive buffers for sessions. The
// pool keeps a bounded free list and grows on demand; buffers handed out by
// Acquire must be returned with Release once the receiver is done with them.
package bufferpool

// Pool supplies fixed-size byte buffers for receive operations. Acquire and
// Release must be safe for concurrent use by all sessions sharing the pool.
type Pool interface {
	// Acquire returns a buffer from the pool, allocating a fresh one when
	// the free list is empty.
	//
	// Returns:
	//   - A byte slice of the pool's configured buffer size
	Acquire() []byte

	// Release returns a buffer to the pool for reuse. Buffers of the wrong
	// size are discarded; releasing into a full free list is a no-op.
	//
	// Parameters:
	//   - buf: The buffer to return; must not be used after Release
	Release(buf []byte)
}

// SlabPool is a channel-backed Pool. The free list is pre-allocated at
// construction so the initial allocation count also bounds how many buffers
// the pool retains; demand beyond it is served by plain allocation and the
// excess is dropped on Release for the GC to reclaim.
type SlabPool struct {
	free chan []byte
	size int
}

// NewSlabPool creates a SlabPool of buffers of the given size, pre-allocating
// initialCount buffers into the free list.
//
// Parameters:
//   - size: Byte size of every buffer handed out by Acquire; values < 1 are
//     raised to 1
//   - initialCount: Number of buffers to pre-allocate and retain; values < 1
//     are raised to 1
//
// Returns:
//   - A new SlabPool ready for concurrent use
func NewSlabPool(size int, initialCount int) *SlabPool {
	if size < 1 {
		size = 1
	}
	if initialCount < 1 {
		initialCount = 1
	}

	p := &SlabPool{
		free: make(chan []byte, initialCount),
		size: size,
	}

	for i := 0; i < initialCount; i++ {
		p.free <- make([]byte, size)
	}

	return p
}

// Acquire implements Pool.
func (p *SlabPool) Acquire() []byte {
	select {
	case buf := <-p.free:
		return buf
	default:
		return make([]byte, p.size)
	}
}

// Release implements Pool.
func (p *SlabPool) Release(buf []byte) {
	if len(buf) != p.size {
		return
	}

	select {
	case p.free <- buf:
	default:
	}
}

// BufferSize returns the byte size of buffers handed out by the pool.
func (p *SlabPool) BufferSize() int {
	return p.size
}
