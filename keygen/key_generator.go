package keygen

import (
	"strconv"
	"sync/atomic"
)

// SessionKey identifies one accepted connection. It is used both as the
// session registry key and as the routing handle passed to send/broadcast.
// The zero value is reserved and never produced by a Generator, so it can
// be used to mean "no session".
type SessionKey uint32

// String returns the key's decimal representation.
func (k SessionKey) String() string {
	return strconv.FormatUint(uint64(k), 10)
}

// Generator produces unique SessionKeys in a concurrency-safe manner. Each
// call to Next returns the next key. The starting value is set at construction
// and the first Next() returns startValue+1.
type Generator struct {
	start uint32
	key   atomic.Uint32
}

// NewGenerator creates a Generator that will generate keys starting from
// startValue+1. The generator is safe for concurrent use.
//
// Parameters:
//   - startValue: The value to initialize the counter to; the first Next()
//     will return startValue+1
//
// Returns:
//   - A new Generator instance
func NewGenerator(startValue uint32) *Generator {
	gen := &Generator{
		start: startValue,
	}
	gen.key.Store(startValue)
	return gen
}

// Next returns the next unique session key by atomically incrementing the
// internal counter. It is safe for concurrent use by multiple goroutines.
//
// Returns:
//   - The next SessionKey
func (g *Generator) Next() SessionKey {
	return SessionKey(g.key.Add(1))
}
