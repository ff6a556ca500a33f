package keygen

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGenerator(t *testing.T) {
	t.Run("returns non-nil generator", func(t *testing.T) {
		gen := NewGenerator(0)
		require.NotNil(t, gen)
	})

	t.Run("first Next returns startValue+1 when startValue is 0", func(t *testing.T) {
		gen := NewGenerator(0)
		got := gen.Next()
		assert.Equal(t, SessionKey(1), got)
	})

	t.Run("first Next returns startValue+1 when startValue is non-zero", func(t *testing.T) {
		gen := NewGenerator(100)
		got := gen.Next()
		assert.Equal(t, SessionKey(101), got)
	})
}

func TestGenerator_Next_sequential(t *testing.T) {
	t.Run("keys are monotonic starting from 1", func(t *testing.T) {
		gen := NewGenerator(0)
		for want := uint32(1); want <= 10; want++ {
			got := gen.Next()
			assert.Equal(t, SessionKey(want), got)
		}
	})

	t.Run("no duplicate keys in sequence", func(t *testing.T) {
		gen := NewGenerator(0)
		seen := make(map[SessionKey]bool)
		for i := 0; i < 100; i++ {
			key := gen.Next()
			assert.False(t, seen[key], "duplicate key %d", key)
			seen[key] = true
		}
	})

	t.Run("zero is never produced from a zero start", func(t *testing.T) {
		gen := NewGenerator(0)
		for i := 0; i < 100; i++ {
			assert.NotEqual(t, SessionKey(0), gen.Next())
		}
	})
}

func TestGenerator_Next_concurrent(t *testing.T) {
	t.Run("concurrent Next calls produce unique keys", func(t *testing.T) {
		gen := NewGenerator(0)
		const n = 500
		keys := make([]SessionKey, n)
		var wg sync.WaitGroup
		wg.Add(n)
		for i := 0; i < n; i++ {
			go func(idx int) {
				defer wg.Done()
				keys[idx] = gen.Next()
			}(i)
		}
		wg.Wait()

		seen := make(map[SessionKey]bool)
		for _, key := range keys {
			assert.False(t, seen[key], "duplicate key %d", key)
			seen[key] = true
		}
		assert.Len(t, seen, n)
	})

	t.Run("concurrent Next calls stay in range", func(t *testing.T) {
		gen := NewGenerator(0)
		const n = 200
		keys := make([]SessionKey, n)
		var wg sync.WaitGroup
		wg.Add(n)
		for i := 0; i < n; i++ {
			go func(idx int) {
				defer wg.Done()
				keys[idx] = gen.Next()
			}(i)
		}
		wg.Wait()

		for _, key := range keys {
			assert.GreaterOrEqual(t, uint32(key), uint32(1))
			assert.LessOrEqual(t, uint32(key), uint32(n))
		}
	})
}

func TestGenerator_multiple_generators_independent(t *testing.T) {
	gen1 := NewGenerator(0)
	gen2 := NewGenerator(0)

	assert.Equal(t, SessionKey(1), gen1.Next())
	assert.Equal(t, SessionKey(1), gen2.Next())

	// Each generator has its own sequence
	assert.Equal(t, SessionKey(2), gen1.Next())
	assert.Equal(t, SessionKey(2), gen2.Next())
}
