package bufferpool

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSlabPool(t *testing.T) {
	t.Run("returns non-nil pool with configured size", func(t *testing.T) {
		p := NewSlabPool(4096, 8)
		require.NotNil(t, p)
		assert.Equal(t, 4096, p.BufferSize())
	})

	t.Run("raises degenerate arguments to 1", func(t *testing.T) {
		p := NewSlabPool(0, 0)
		require.NotNil(t, p)
		assert.Equal(t, 1, p.BufferSize())
		assert.Len(t, p.Acquire(), 1)
	})
}

func TestSlabPool_Acquire(t *testing.T) {
	t.Run("buffers have the configured size", func(t *testing.T) {
		p := NewSlabPool(128, 2)
		assert.Len(t, p.Acquire(), 128)
	})

	t.Run("grows beyond the initial allocation", func(t *testing.T) {
		p := NewSlabPool(16, 2)
		for i := 0; i < 10; i++ {
			buf := p.Acquire()
			assert.Len(t, buf, 16)
		}
	})
}

func TestSlabPool_Release(t *testing.T) {
	t.Run("released buffer is reused", func(t *testing.T) {
		p := NewSlabPool(32, 1)
		// Drain the pre-allocated buffer so the free list is empty.
		first := p.Acquire()
		p.Release(first)

		got := p.Acquire()
		assert.Same(t, &first[0], &got[0], "expected the released buffer back")
	})

	t.Run("wrong-sized buffer is discarded", func(t *testing.T) {
		p := NewSlabPool(32, 1)
		p.Acquire() // empty the free list
		p.Release(make([]byte, 8))

		got := p.Acquire()
		assert.Len(t, got, 32)
	})

	t.Run("release into a full free list is a no-op", func(t *testing.T) {
		p := NewSlabPool(32, 1)
		p.Release(make([]byte, 32))
		p.Release(make([]byte, 32))
		assert.Len(t, p.Acquire(), 32)
	})
}

func TestSlabPool_concurrent(t *testing.T) {
	p := NewSlabPool(64, 4)

	const n = 100
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				buf := p.Acquire()
				assert.Len(t, buf, 64)
				p.Release(buf)
			}
		}()
	}
	wg.Wait()
}
